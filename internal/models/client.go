// Package models defines the bank client entities persisted in the database.
package models

import "time"

// Client is a bank client owning zero or more accounts.
//
// ID <= 0 means the client has not been persisted yet; the database assigns
// the identity on insert.
type Client struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"created_at"`
	Accounts  []*Account `json:"accounts"`
}

// IsNew reports whether the client still lacks a durable identity.
func (c *Client) IsNew() bool {
	return c.ID <= 0
}

// HasAccounts reports whether at least one account is attached.
func (c *Client) HasAccounts() bool {
	return len(c.Accounts) > 0
}
