package model

import "time"

// Listing is a catalog unit available for viewing. Scheduling only cares that
// it exists; the attributes are carried for the catalog endpoints.
type Listing struct {
	ID               string
	UnitID           string
	BuildingID       string
	CompoundID       string
	Price            int64
	BuiltUpArea      int
	TotalBuiltUpArea int
	LandArea         int
	Beds             int
	Bathrooms        int
	Amenities        []string
	AvailabilityDays []string
	CreatedAt        time.Time
}
