package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClient_IsNew(t *testing.T) {
	tests := []struct {
		id   int64
		want bool
	}{
		{-1, true},
		{0, true},
		{1, false},
		{42, false},
	}

	for _, tt := range tests {
		c := &Client{ID: tt.id}
		assert.Equal(t, tt.want, c.IsNew(), "id=%d", tt.id)
	}
}

func TestClient_HasAccounts(t *testing.T) {
	assert.False(t, (&Client{}).HasAccounts())
	assert.False(t, (&Client{Accounts: []*Account{}}).HasAccounts())
	assert.True(t, (&Client{Accounts: []*Account{{Number: "LV01"}}}).HasAccounts())
}
