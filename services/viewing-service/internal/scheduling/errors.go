package scheduling

import "errors"

// Every failure a caller can hit, as sentinels so handlers can map them to
// status codes without string matching. Store implementations are expected to
// return ErrSlotConflict for storage-level overlap rejections and
// ErrViewingNotFound when an owner-scoped cancel matches no row.
var (
	ErrInvalidInterval     = errors.New("end time must be after start time")
	ErrLeadTime            = errors.New("viewing must be scheduled at least 24 hours in advance")
	ErrDurationOutOfRange  = errors.New("viewing duration must be between 30 minutes and 2 hours")
	ErrBusinessHours       = errors.New("viewings can only be scheduled between 9 AM and 6 PM")
	ErrListingNotFound     = errors.New("listing not found")
	ErrSlotConflict        = errors.New("there is already a viewing scheduled for this time slot")
	ErrViewingNotFound     = errors.New("viewing not found or not owned by you")
	ErrInvalidSlotDuration = errors.New("slot duration must be between 30 and 120 minutes")
)
