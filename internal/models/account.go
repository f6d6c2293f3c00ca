package models

// Account is a bank account owned by exactly one client.
type Account struct {
	ID       int64 `json:"id"`
	ClientID int64 `json:"client_id"`
	// Number is the external account number, unique across all clients.
	Number string `json:"number"`
	// Balance is kept in minor currency units.
	Balance int64 `json:"balance"`
}
