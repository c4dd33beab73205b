package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/md-rashed-zaman/propview/services/viewing-service/internal/model"
	"github.com/md-rashed-zaman/propview/services/viewing-service/internal/storage"
)

var sampleListings = []model.Listing{
	{
		UnitID:           "UNIT-101",
		BuildingID:       "BLD-001",
		Price:            2500000,
		BuiltUpArea:      120,
		TotalBuiltUpArea: 150,
		LandArea:         200,
		Beds:             3,
		Bathrooms:        2,
		Amenities:        []string{"Swimming Pool", "Gym", "Security", "Parking"},
		AvailabilityDays: []string{"Saturday", "Sunday"},
	},
	{
		UnitID:           "UNIT-202",
		BuildingID:       "BLD-002",
		Price:            1800000,
		BuiltUpArea:      85,
		TotalBuiltUpArea: 100,
		LandArea:         150,
		Beds:             2,
		Bathrooms:        2,
		Amenities:        []string{"Garden", "Playground", "24/7 Security", "Underground Parking"},
		AvailabilityDays: []string{"Monday", "Tuesday", "Thursday"},
	},
	{
		UnitID:           "UNIT-303",
		BuildingID:       "BLD-003",
		Price:            4500000,
		BuiltUpArea:      200,
		TotalBuiltUpArea: 250,
		LandArea:         300,
		Beds:             4,
		Bathrooms:        3,
		Amenities:        []string{"Private Pool", "Smart Home", "Garden", "Security", "Parking"},
		AvailabilityDays: []string{"Saturday", "Sunday", "Monday", "Tuesday", "Wednesday", "Thursday"},
	},
	{
		UnitID:           "UNIT-404",
		BuildingID:       "BLD-004",
		Price:            1200000,
		BuiltUpArea:      65,
		TotalBuiltUpArea: 80,
		LandArea:         100,
		Beds:             1,
		Bathrooms:        1,
		Amenities:        []string{"Security", "Parking", "Gym"},
		AvailabilityDays: []string{"Saturday", "Sunday", "Monday", "Tuesday", "Wednesday", "Thursday"},
	},
	{
		UnitID:           "UNIT-505",
		BuildingID:       "BLD-005",
		Price:            3200000,
		BuiltUpArea:      150,
		TotalBuiltUpArea: 180,
		LandArea:         250,
		Beds:             3,
		Bathrooms:        3,
		Amenities:        []string{"Swimming Pool", "Gym", "Security", "Parking", "Garden", "Playground"},
		AvailabilityDays: []string{"Saturday", "Sunday", "Monday", "Tuesday", "Wednesday", "Thursday"},
	},
}

// Listings populates the catalog with sample units when it is empty. A
// non-empty catalog is left untouched so repeated startups stay idempotent.
func Listings(ctx context.Context, repo *storage.ListingRepository, logger *slog.Logger) error {
	count, err := repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("count listings: %w", err)
	}
	if count > 0 {
		logger.Info("listing seed skipped", "existing", count)
		return nil
	}

	for _, l := range sampleListings {
		l.ID = uuid.NewString()
		l.CompoundID = uuid.NewString()
		if err := repo.Insert(ctx, l); err != nil {
			return fmt.Errorf("seed listing %s: %w", l.UnitID, err)
		}
	}
	logger.Info("listing seed applied", "inserted", len(sampleListings))
	return nil
}
