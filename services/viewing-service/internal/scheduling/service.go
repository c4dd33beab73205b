package scheduling

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/md-rashed-zaman/propview/services/viewing-service/internal/availability"
	"github.com/md-rashed-zaman/propview/services/viewing-service/internal/model"
)

// ListingResolver is the read-only catalog collaborator. The scheduler never
// creates or mutates listings.
type ListingResolver interface {
	Resolve(ctx context.Context, listingID string) (model.Listing, bool, error)
}

// Store is the viewing ledger. Create must return ErrSlotConflict when the
// storage uniqueness constraint rejects the interval, and Cancel must return
// ErrViewingNotFound when no row matches id+owner. Cancelling an already
// cancelled viewing must succeed without recording another cancellation:
// downstream consumers see at most one cancelled event per viewing.
type Store interface {
	CountOverlapping(ctx context.Context, listingID string, start, end time.Time) (int, error)
	Create(ctx context.Context, v model.Viewing) (model.Viewing, error)
	ListForDay(ctx context.Context, listingID string, dayStart, dayEnd time.Time) ([]model.Viewing, error)
	ListByUser(ctx context.Context, userID string) ([]model.Viewing, error)
	Cancel(ctx context.Context, viewingID, userID string) (model.Viewing, error)
}

type Scheduler struct {
	listings ListingResolver
	store    Store
	policy   Policy
	now      func() time.Time
	logger   *slog.Logger
}

func NewScheduler(listings ListingResolver, store Store, policy Policy, now func() time.Time, logger *slog.Logger) *Scheduler {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		listings: listings,
		store:    store,
		policy:   policy,
		now:      now,
		logger:   logger,
	}
}

type ScheduleRequest struct {
	ListingID string
	UserID    string
	StartTime time.Time
	EndTime   time.Time
	Notes     string
}

// Schedule validates the request, checks the ledger for overlap and persists
// a pending viewing. The application-level overlap count is a fast-path
// courtesy; the storage constraint is the arbiter under concurrency, and its
// rejection surfaces as the same ErrSlotConflict. No retries.
func (s *Scheduler) Schedule(ctx context.Context, req ScheduleRequest) (model.Viewing, error) {
	if err := s.policy.ValidateInterval(s.now(), req.StartTime, req.EndTime); err != nil {
		return model.Viewing{}, err
	}

	_, found, err := s.listings.Resolve(ctx, req.ListingID)
	if err != nil {
		return model.Viewing{}, fmt.Errorf("resolve listing: %w", err)
	}
	if !found {
		return model.Viewing{}, ErrListingNotFound
	}

	overlapping, err := s.store.CountOverlapping(ctx, req.ListingID, req.StartTime, req.EndTime)
	if err != nil {
		return model.Viewing{}, fmt.Errorf("overlap check: %w", err)
	}
	if overlapping > 0 {
		return model.Viewing{}, ErrSlotConflict
	}

	created, err := s.store.Create(ctx, model.Viewing{
		ListingID: req.ListingID,
		UserID:    req.UserID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Status:    model.StatusPending,
		Notes:     req.Notes,
	})
	if err != nil {
		return model.Viewing{}, err
	}

	s.logger.Info("viewing scheduled",
		"viewing_id", created.ID,
		"listing_id", created.ListingID,
		"start_time", created.StartTime.UTC().Format(time.RFC3339),
	)
	return created, nil
}

// AvailableSlots returns the annotated candidate windows for a listing on the
// given calendar day. Cancelled viewings do not block slots.
func (s *Scheduler) AvailableSlots(ctx context.Context, listingID string, date time.Time, duration time.Duration) ([]availability.Slot, error) {
	if duration < s.policy.MinDuration || duration > s.policy.MaxDuration {
		return nil, ErrInvalidSlotDuration
	}

	_, found, err := s.listings.Resolve(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("resolve listing: %w", err)
	}
	if !found {
		return nil, ErrListingNotFound
	}

	dayStart, dayEnd := s.policy.DayWindow(date)
	viewings, err := s.store.ListForDay(ctx, listingID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("load day viewings: %w", err)
	}

	busy := make([]availability.Interval, 0, len(viewings))
	for _, v := range viewings {
		if v.Status == model.StatusCancelled {
			continue
		}
		busy = append(busy, availability.Interval{Start: v.StartTime, End: v.EndTime})
	}

	return availability.DaySlots(dayStart, dayEnd, duration, busy), nil
}

// ViewingsFor returns the caller's viewings, any status, ordered by start time.
func (s *Scheduler) ViewingsFor(ctx context.Context, userID string) ([]model.Viewing, error) {
	return s.store.ListByUser(ctx, userID)
}

// Cancel marks the viewing cancelled. The lookup is scoped to the owner, so a
// missing viewing and a foreign one both surface as ErrViewingNotFound.
// Re-cancelling an already cancelled viewing succeeds as a no-op.
func (s *Scheduler) Cancel(ctx context.Context, viewingID, userID string) (model.Viewing, error) {
	cancelled, err := s.store.Cancel(ctx, viewingID, userID)
	if err != nil {
		return model.Viewing{}, err
	}
	s.logger.Info("viewing cancelled", "viewing_id", cancelled.ID, "listing_id", cancelled.ListingID)
	return cancelled, nil
}
