package model

import "time"

// Viewing statuses. A viewing is created pending; cancellation is the only
// transition in scope and it is terminal.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

type Viewing struct {
	ID        string
	ListingID string
	UserID    string
	StartTime time.Time
	EndTime   time.Time
	Status    string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
