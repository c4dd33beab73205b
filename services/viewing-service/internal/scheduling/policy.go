package scheduling

import "time"

// Policy holds the business rules a requested interval is validated against.
// Location anchors the business-hours window; viewings live in a single
// configured timezone.
type Policy struct {
	MinLeadTime time.Duration
	MinDuration time.Duration
	MaxDuration time.Duration
	OpenHour    int
	CloseHour   int
	Location    *time.Location
}

func DefaultPolicy(loc *time.Location) Policy {
	if loc == nil {
		loc = time.UTC
	}
	return Policy{
		MinLeadTime: 24 * time.Hour,
		MinDuration: 30 * time.Minute,
		MaxDuration: 2 * time.Hour,
		OpenHour:    9,
		CloseHour:   18,
		Location:    loc,
	}
}

// ValidateInterval applies the scheduling preconditions in order, returning
// the first violation: interval shape, lead time, duration, business hours.
func (p Policy) ValidateInterval(now, start, end time.Time) error {
	if !end.After(start) {
		return ErrInvalidInterval
	}
	if start.Before(now.Add(p.MinLeadTime)) {
		return ErrLeadTime
	}
	duration := end.Sub(start)
	if duration < p.MinDuration || duration > p.MaxDuration {
		return ErrDurationOutOfRange
	}

	localStart := start.In(p.Location)
	opens := time.Date(localStart.Year(), localStart.Month(), localStart.Day(), p.OpenHour, 0, 0, 0, p.Location)
	closes := time.Date(localStart.Year(), localStart.Month(), localStart.Day(), p.CloseHour, 0, 0, 0, p.Location)
	// Ending exactly at closing time is allowed; anything past it is not.
	if localStart.Before(opens) || end.In(p.Location).After(closes) {
		return ErrBusinessHours
	}
	return nil
}

// DayWindow returns the open/close instants for the calendar day containing
// the given date in the policy's location.
func (p Policy) DayWindow(date time.Time) (time.Time, time.Time) {
	local := date.In(p.Location)
	opens := time.Date(local.Year(), local.Month(), local.Day(), p.OpenHour, 0, 0, 0, p.Location)
	closes := time.Date(local.Year(), local.Month(), local.Day(), p.CloseHour, 0, 0, 0, p.Location)
	return opens, closes
}
