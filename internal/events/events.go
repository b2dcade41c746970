package events

import "time"

// Event types
const (
	AccountOpened       = "account.opened"
	AccountUnregistered = "account.unregistered"
)

// Stream names
const (
	AccountEventsStream = "account.events"
)

// Event is the envelope written to the stream.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

type AccountOpenedEvent struct {
	AccountNumber  string    `json:"accountNumber"`
	UserID         int64     `json:"userId"`
	InitialBalance int64     `json:"initialBalance"`
	RegisteredAt   time.Time `json:"registeredAt"`
}

type AccountUnregisteredEvent struct {
	AccountNumber  string    `json:"accountNumber"`
	UserID         int64     `json:"userId"`
	UnregisteredAt time.Time `json:"unregisteredAt"`
}
