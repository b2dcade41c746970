package models

import "time"

// AccountSummary is the projection returned by open/close operations.
// RegisteredAt is set on open, UnregisteredAt on close; the other is omitted.
type AccountSummary struct {
	UserID         int64      `json:"userId"`
	AccountNumber  string     `json:"accountNumber"`
	RegisteredAt   *time.Time `json:"registeredAt,omitempty"`
	UnregisteredAt *time.Time `json:"unregisteredAt,omitempty"`
}

// AccountInfo is the per-account row of the list-by-user projection.
type AccountInfo struct {
	AccountNumber string `json:"accountNumber"`
	Balance       int64  `json:"balance"`
}
