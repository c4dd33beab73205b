package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/md-rashed-zaman/propview/libs/db"
	"github.com/md-rashed-zaman/propview/services/viewing-service/internal/model"
	"github.com/md-rashed-zaman/propview/services/viewing-service/internal/outbox"
	"github.com/md-rashed-zaman/propview/services/viewing-service/internal/scheduling"
)

// ViewingRepository owns the viewings table. It satisfies scheduling.Store:
// constraint violations and owner-scoped misses are translated into the
// scheduling sentinels here so the core never sees pgx errors.
type ViewingRepository struct {
	pool       *db.Pool
	outboxRepo *outbox.Repository
}

func NewViewingRepository(pool *db.Pool, outboxRepo *outbox.Repository) *ViewingRepository {
	return &ViewingRepository{pool: pool, outboxRepo: outboxRepo}
}

const viewingColumns = `id::text, listing_id::text, user_id::text, start_time, end_time, status, notes, created_at, updated_at`

func scanViewing(row pgx.Row) (model.Viewing, error) {
	var v model.Viewing
	err := row.Scan(
		&v.ID,
		&v.ListingID,
		&v.UserID,
		&v.StartTime,
		&v.EndTime,
		&v.Status,
		&v.Notes,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	return v, err
}

func (r *ViewingRepository) CountOverlapping(ctx context.Context, listingID string, start, end time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM viewings
		WHERE listing_id = $1
			AND status <> 'cancelled'
			AND start_time < $3
			AND end_time > $2
	`, listingID, start, end).Scan(&n)
	return n, err
}

// Create inserts the viewing and its scheduled event in one transaction, so
// the event is never published for a write the constraint rejected.
func (r *ViewingRepository) Create(ctx context.Context, v model.Viewing) (model.Viewing, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return model.Viewing{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	created, err := scanViewing(tx.QueryRow(ctx, `
		INSERT INTO viewings (listing_id, user_id, start_time, end_time, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+viewingColumns+`
	`, v.ListingID, v.UserID, v.StartTime, v.EndTime, v.Status, v.Notes))
	if err != nil {
		if isExclusionViolation(err) {
			return model.Viewing{}, scheduling.ErrSlotConflict
		}
		return model.Viewing{}, err
	}

	if err := r.insertEvent(ctx, tx, "viewing.scheduled.v1", created); err != nil {
		return model.Viewing{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		if isExclusionViolation(err) {
			return model.Viewing{}, scheduling.ErrSlotConflict
		}
		return model.Viewing{}, err
	}
	return created, nil
}

func (r *ViewingRepository) ListForDay(ctx context.Context, listingID string, dayStart, dayEnd time.Time) ([]model.Viewing, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+viewingColumns+`
		FROM viewings
		WHERE listing_id = $1
			AND status <> 'cancelled'
			AND start_time >= $2
			AND start_time < $3
		ORDER BY start_time ASC
	`, listingID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	return collectViewings(rows)
}

func (r *ViewingRepository) ListByUser(ctx context.Context, userID string) ([]model.Viewing, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+viewingColumns+`
		FROM viewings
		WHERE user_id = $1
		ORDER BY start_time ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	return collectViewings(rows)
}

// Cancel flips status for the row matching both id and owner. A foreign or
// missing viewing both come back as ErrViewingNotFound. An already cancelled
// viewing short-circuits before the update, so repeating a cancel succeeds
// without writing a second cancellation event.
func (r *ViewingRepository) Cancel(ctx context.Context, viewingID, userID string) (model.Viewing, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return model.Viewing{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	current, err := scanViewing(tx.QueryRow(ctx, `
		SELECT `+viewingColumns+`
		FROM viewings
		WHERE id = $1 AND user_id = $2
		FOR UPDATE
	`, viewingID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Viewing{}, scheduling.ErrViewingNotFound
		}
		return model.Viewing{}, err
	}
	if current.Status == model.StatusCancelled {
		return current, tx.Commit(ctx)
	}

	cancelled, err := scanViewing(tx.QueryRow(ctx, `
		UPDATE viewings
		SET status = 'cancelled',
			updated_at = now()
		WHERE id = $1
		RETURNING `+viewingColumns+`
	`, current.ID))
	if err != nil {
		return model.Viewing{}, err
	}

	if err := r.insertEvent(ctx, tx, "viewing.cancelled.v1", cancelled); err != nil {
		return model.Viewing{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return model.Viewing{}, err
	}
	return cancelled, nil
}

func (r *ViewingRepository) insertEvent(ctx context.Context, tx pgx.Tx, eventType string, v model.Viewing) error {
	if r.outboxRepo == nil {
		return nil
	}
	payload, err := json.Marshal(map[string]any{
		"viewing_id": v.ID,
		"listing_id": v.ListingID,
		"user_id":    v.UserID,
		"start_time": v.StartTime.UTC().Format(time.RFC3339),
		"end_time":   v.EndTime.UTC().Format(time.RFC3339),
		"status":     v.Status,
	})
	if err != nil {
		return err
	}
	return r.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "viewing",
		AggregateID:   v.ID,
		EventType:     eventType,
		Payload:       payload,
	})
}

// Postgres reports an EXCLUDE constraint rejection as SQLSTATE 23P01.
func isExclusionViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23P01"
}

func collectViewings(rows pgx.Rows) ([]model.Viewing, error) {
	defer rows.Close()
	var viewings []model.Viewing
	for rows.Next() {
		v, err := scanViewing(rows)
		if err != nil {
			return nil, err
		}
		viewings = append(viewings, v)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return viewings, nil
}
