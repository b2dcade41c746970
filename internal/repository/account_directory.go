package repository

// AccountDirectory combines the write and read repositories into the single
// data-access boundary the command service consumes: lookup, counting, and
// persistence of accounts.
type AccountDirectory struct {
	*AccountWriteRepository
	*AccountReadRepository
}

func NewAccountDirectory(write *AccountWriteRepository, read *AccountReadRepository) *AccountDirectory {
	return &AccountDirectory{write, read}
}
