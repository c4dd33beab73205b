package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/propview/libs/db"
	"github.com/md-rashed-zaman/propview/services/viewing-service/internal/model"
)

type ListingRepository struct {
	pool *db.Pool
}

func NewListingRepository(pool *db.Pool) *ListingRepository {
	return &ListingRepository{pool: pool}
}

const listingColumns = `id::text, unit_id, building_id, compound_id, price, built_up_area, total_built_up_area, land_area, beds, bathrooms, amenities, availability_days, created_at`

func scanListing(row pgx.Row) (model.Listing, error) {
	var l model.Listing
	err := row.Scan(
		&l.ID,
		&l.UnitID,
		&l.BuildingID,
		&l.CompoundID,
		&l.Price,
		&l.BuiltUpArea,
		&l.TotalBuiltUpArea,
		&l.LandArea,
		&l.Beds,
		&l.Bathrooms,
		&l.Amenities,
		&l.AvailabilityDays,
		&l.CreatedAt,
	)
	return l, err
}

// Resolve satisfies scheduling.ListingResolver: found=false for an unknown id,
// errors only for real storage failures.
func (r *ListingRepository) Resolve(ctx context.Context, listingID string) (model.Listing, bool, error) {
	l, err := scanListing(r.pool.QueryRow(ctx, `
		SELECT `+listingColumns+`
		FROM listings
		WHERE id = $1
	`, listingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Listing{}, false, nil
		}
		return model.Listing{}, false, err
	}
	return l, true, nil
}

func (r *ListingRepository) ListAll(ctx context.Context) ([]model.Listing, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+listingColumns+`
		FROM listings
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []model.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return listings, nil
}

func (r *ListingRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM listings`).Scan(&n)
	return n, err
}

func (r *ListingRepository) Insert(ctx context.Context, l model.Listing) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO listings
			(id, unit_id, building_id, compound_id, price, built_up_area, total_built_up_area, land_area, beds, bathrooms, amenities, availability_days)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, l.ID, l.UnitID, l.BuildingID, l.CompoundID, l.Price, l.BuiltUpArea, l.TotalBuiltUpArea, l.LandArea, l.Beds, l.Bathrooms, l.Amenities, l.AvailabilityDays)
	return err
}
