package storage

import (
	"context"
	"fmt"

	"github.com/md-rashed-zaman/propview/libs/db"
)

// schema is an ordered list of idempotent DDL statements. The exclusion
// constraint on viewings is what makes double booking impossible under
// concurrency: two inserts for overlapping non-cancelled intervals on the
// same listing cannot both commit.
var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS btree_gist`,
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,
	`CREATE TABLE IF NOT EXISTS users (
		id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS listings (
		id                  UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		unit_id             TEXT NOT NULL,
		building_id         TEXT NOT NULL,
		compound_id         TEXT NOT NULL,
		price               BIGINT NOT NULL,
		built_up_area       INTEGER NOT NULL DEFAULT 0,
		total_built_up_area INTEGER NOT NULL DEFAULT 0,
		land_area           INTEGER NOT NULL DEFAULT 0,
		beds                INTEGER NOT NULL DEFAULT 0,
		bathrooms           INTEGER NOT NULL DEFAULT 0,
		amenities           TEXT[] NOT NULL DEFAULT '{}',
		availability_days   TEXT[] NOT NULL DEFAULT '{}',
		created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS viewings (
		id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		listing_id UUID NOT NULL REFERENCES listings(id),
		user_id    UUID NOT NULL REFERENCES users(id),
		start_time TIMESTAMPTZ NOT NULL,
		end_time   TIMESTAMPTZ NOT NULL,
		status     TEXT NOT NULL DEFAULT 'pending',
		notes      TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CHECK (start_time < end_time),
		CONSTRAINT viewings_no_overlap EXCLUDE USING gist (
			listing_id WITH =,
			tstzrange(start_time, end_time) WITH &&
		) WHERE (status <> 'cancelled')
	)`,
	`CREATE INDEX IF NOT EXISTS viewings_user_id_idx ON viewings (user_id)`,
	`CREATE TABLE IF NOT EXISTS outbox_events (
		id             BIGSERIAL PRIMARY KEY,
		event_id       UUID NOT NULL DEFAULT gen_random_uuid(),
		aggregate_type TEXT NOT NULL,
		aggregate_id   TEXT NOT NULL,
		event_type     TEXT NOT NULL,
		payload        JSONB NOT NULL,
		traceparent    TEXT NOT NULL DEFAULT '',
		tracestate     TEXT NOT NULL DEFAULT '',
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		published_at   TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS outbox_events_unpublished_idx ON outbox_events (id) WHERE published_at IS NULL`,
}

// EnsureSchema applies the DDL statements in order. Every statement is
// idempotent, so startup can run this unconditionally.
func EnsureSchema(ctx context.Context, pool *db.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement: %w", err)
		}
	}
	return nil
}
