package cqrs

// GetAccountQuery fetches a single account by its server-assigned id.
type GetAccountQuery struct {
	ID int64
}

// ListAccountsQuery fetches the account/balance projection for a user.
type ListAccountsQuery struct {
	UserID int64
}
