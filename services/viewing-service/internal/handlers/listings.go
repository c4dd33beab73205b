package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/md-rashed-zaman/propview/services/viewing-service/internal/model"
	"github.com/md-rashed-zaman/propview/services/viewing-service/internal/storage"
)

type ListingHandler struct {
	listings *storage.ListingRepository
}

func NewListingHandler(listings *storage.ListingRepository) *ListingHandler {
	return &ListingHandler{listings: listings}
}

type listingItem struct {
	ID               string   `json:"id"`
	UnitID           string   `json:"unit_id"`
	BuildingID       string   `json:"building_id"`
	CompoundID       string   `json:"compound_id"`
	Price            int64    `json:"price"`
	BuiltUpArea      int      `json:"built_up_area"`
	TotalBuiltUpArea int      `json:"total_built_up_area"`
	LandArea         int      `json:"land_area"`
	Beds             int      `json:"beds"`
	Bathrooms        int      `json:"bathrooms"`
	Amenities        []string `json:"amenities"`
	AvailabilityDays []string `json:"availability_days"`
	CreatedAt        string   `json:"created_at"`
}

func toListingItem(l model.Listing) listingItem {
	return listingItem{
		ID:               l.ID,
		UnitID:           l.UnitID,
		BuildingID:       l.BuildingID,
		CompoundID:       l.CompoundID,
		Price:            l.Price,
		BuiltUpArea:      l.BuiltUpArea,
		TotalBuiltUpArea: l.TotalBuiltUpArea,
		LandArea:         l.LandArea,
		Beds:             l.Beds,
		Bathrooms:        l.Bathrooms,
		Amenities:        l.Amenities,
		AvailabilityDays: l.AvailabilityDays,
		CreatedAt:        l.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *ListingHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	listings, err := h.listings.ListAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list listings")
		return
	}

	items := make([]listingItem, 0, len(listings))
	for _, l := range listings {
		items = append(items, toListingItem(l))
	}
	writeData(w, http.StatusOK, items, "")
}

func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if !validID(id) {
		writeError(w, http.StatusBadRequest, "id must be a valid id")
		return
	}

	listing, found, err := h.listings.Resolve(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load listing")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "listing not found")
		return
	}
	writeData(w, http.StatusOK, toListingItem(listing), "")
}
