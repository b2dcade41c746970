package models

import "time"

// AccountStatus is the lifecycle state of an account.
// The only legal transition is StatusInUse -> StatusUnregistered, once.
type AccountStatus string

const (
	StatusInUse        AccountStatus = "IN_USE"
	StatusUnregistered AccountStatus = "UNREGISTERED"
)

// AccountUser is the identity a bank account belongs to. Users are created
// and removed by the user service; this service only resolves them.
type AccountUser struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Account is the write model for a bank account. Balance is held in the
// currency's smallest unit. Closed accounts are retained for audit reads,
// never physically deleted.
type Account struct {
	ID             int64         `json:"id"`
	UserID         int64         `json:"userId"`
	AccountNumber  string        `json:"accountNumber"`
	Status         AccountStatus `json:"status"`
	Balance        int64         `json:"balance"`
	RegisteredAt   time.Time     `json:"registeredAt"`
	UnregisteredAt *time.Time    `json:"unregisteredAt,omitempty"`
	CreatedAt      time.Time     `json:"createdTimestamp"`
	UpdatedAt      time.Time     `json:"updatedTimestamp"`
}
