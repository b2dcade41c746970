package models

import "errors"

// ErrorCode identifies a business-rule violation. Every rule maps to
// exactly one code; codes are stable and safe to expose to clients.
type ErrorCode string

const (
	CodeUserNotFound        ErrorCode = "USER_NOT_FOUND"
	CodeAccountNotFound     ErrorCode = "ACCOUNT_NOT_FOUND"
	CodeMaxAccountPerUser   ErrorCode = "MAX_ACCOUNT_PER_USER"
	CodeOwnerMismatch       ErrorCode = "USER_ACCOUNT_MISMATCH"
	CodeAlreadyUnregistered ErrorCode = "ACCOUNT_ALREADY_UNREGISTERED"
	CodeBalanceNotEmpty     ErrorCode = "BALANCE_NOT_EMPTY"
	CodeDuplicateNumber     ErrorCode = "DUPLICATE_ACCOUNT_NUMBER"
)

// AccountError is a typed domain failure carrying a code and a
// human-readable description. It is terminal for the current call; callers
// decide whether to retry or surface it unchanged.
type AccountError struct {
	Code    ErrorCode
	Message string
}

func (e *AccountError) Error() string { return e.Message }

// Is lets errors.Is match any AccountError against the package sentinel
// of the same code.
func (e *AccountError) Is(target error) bool {
	var ae *AccountError
	if errors.As(target, &ae) {
		return e.Code == ae.Code
	}
	return false
}

// NewAccountError builds an AccountError for code with its canonical
// description.
func NewAccountError(code ErrorCode) *AccountError {
	return &AccountError{Code: code, Message: descriptions[code]}
}

var descriptions = map[ErrorCode]string{
	CodeUserNotFound:        "user not found",
	CodeAccountNotFound:     "account not found",
	CodeMaxAccountPerUser:   "a user may hold at most 5 active accounts",
	CodeOwnerMismatch:       "account is owned by a different user",
	CodeAlreadyUnregistered: "account is already unregistered",
	CodeBalanceNotEmpty:     "account balance must be zero to unregister",
	CodeDuplicateNumber:     "account number already exists",
}

// Sentinels for errors.Is checks.
var (
	ErrUserNotFound           = NewAccountError(CodeUserNotFound)
	ErrAccountNotFound        = NewAccountError(CodeAccountNotFound)
	ErrMaxAccountsPerUser     = NewAccountError(CodeMaxAccountPerUser)
	ErrOwnerMismatch          = NewAccountError(CodeOwnerMismatch)
	ErrAccountAlreadyClosed   = NewAccountError(CodeAlreadyUnregistered)
	ErrBalanceNotEmpty        = NewAccountError(CodeBalanceNotEmpty)
	ErrDuplicateAccountNumber = NewAccountError(CodeDuplicateNumber)
)

// ErrInvalidArgument covers malformed input caught inside the core (a
// negative account id). It is deliberately not part of the AccountError
// family: it signals a caller bug, not a domain-rule violation.
var ErrInvalidArgument = errors.New("invalid argument")
