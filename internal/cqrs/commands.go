package cqrs

// OpenAccountCommand opens a new account for a user with an initial balance
// in the currency's smallest unit.
type OpenAccountCommand struct {
	UserID         int64
	InitialBalance int64
}

// CloseAccountCommand unregisters an account identified by its number on
// behalf of the requesting user.
type CloseAccountCommand struct {
	UserID        int64
	AccountNumber string
}
