package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/md-rashed-zaman/propview/services/viewing-service/internal/availability"
	"github.com/md-rashed-zaman/propview/services/viewing-service/internal/model"
	"github.com/md-rashed-zaman/propview/services/viewing-service/internal/scheduling"
)

const defaultSlotMinutes = 30

// validID screens ids before they reach the database: a malformed value in a
// uuid column raises a cast error that would otherwise surface as a 500.
func validID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

type ViewingHandler struct {
	scheduler *scheduling.Scheduler
	location  *time.Location
}

func NewViewingHandler(scheduler *scheduling.Scheduler, location *time.Location) *ViewingHandler {
	if location == nil {
		location = time.UTC
	}
	return &ViewingHandler{scheduler: scheduler, location: location}
}

type scheduleRequest struct {
	ListingID string `json:"listing_id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Notes     string `json:"notes"`
}

type viewingItem struct {
	ID        string `json:"id"`
	ListingID string `json:"listing_id"`
	UserID    string `json:"user_id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Status    string `json:"status"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toViewingItem(v model.Viewing) viewingItem {
	return viewingItem{
		ID:        v.ID,
		ListingID: v.ListingID,
		UserID:    v.UserID,
		StartTime: v.StartTime.UTC().Format(time.RFC3339),
		EndTime:   v.EndTime.UTC().Format(time.RFC3339),
		Status:    v.Status,
		Notes:     v.Notes,
		CreatedAt: v.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: v.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type slotItem struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Available bool   `json:"available"`
}

func toSlotItems(slots []availability.Slot) []slotItem {
	items := make([]slotItem, 0, len(slots))
	for _, s := range slots {
		items = append(items, slotItem{
			StartTime: s.Start.UTC().Format(time.RFC3339),
			EndTime:   s.End.UTC().Format(time.RFC3339),
			Available: s.Available,
		})
	}
	return items
}

func (h *ViewingHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	userID := userIDFromContext(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if !validID(req.ListingID) {
		writeError(w, http.StatusBadRequest, "listing_id must be a valid id")
		return
	}
	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "start_time must be RFC3339")
		return
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "end_time must be RFC3339")
		return
	}

	created, err := h.scheduler.Schedule(r.Context(), scheduling.ScheduleRequest{
		ListingID: req.ListingID,
		UserID:    userID,
		StartTime: start,
		EndTime:   end,
		Notes:     req.Notes,
	})
	if err != nil {
		writeSchedulingError(w, err)
		return
	}
	writeData(w, http.StatusCreated, toViewingItem(created), "Viewing scheduled successfully")
}

func (h *ViewingHandler) Slots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()
	listingID := strings.TrimSpace(q.Get("listing_id"))
	if !validID(listingID) {
		writeError(w, http.StatusBadRequest, "listing_id must be a valid id")
		return
	}
	date, err := time.ParseInLocation("2006-01-02", q.Get("date"), h.location)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	minutes := defaultSlotMinutes
	if raw := q.Get("duration_minutes"); raw != "" {
		minutes, err = strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "duration_minutes must be an integer")
			return
		}
	}

	slots, err := h.scheduler.AvailableSlots(r.Context(), listingID, date, time.Duration(minutes)*time.Minute)
	if err != nil {
		writeSchedulingError(w, err)
		return
	}
	writeData(w, http.StatusOK, toSlotItems(slots), "")
}

func (h *ViewingHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	userID := userIDFromContext(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	viewings, err := h.scheduler.ViewingsFor(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list viewings")
		return
	}

	items := make([]viewingItem, 0, len(viewings))
	for _, v := range viewings {
		items = append(items, toViewingItem(v))
	}
	writeData(w, http.StatusOK, items, "")
}

type cancelRequest struct {
	ViewingID string `json:"viewing_id"`
}

func (h *ViewingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	userID := userIDFromContext(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if !validID(req.ViewingID) {
		writeError(w, http.StatusBadRequest, "viewing_id must be a valid id")
		return
	}

	cancelled, err := h.scheduler.Cancel(r.Context(), req.ViewingID, userID)
	if err != nil {
		writeSchedulingError(w, err)
		return
	}
	writeData(w, http.StatusOK, toViewingItem(cancelled), "Viewing cancelled successfully")
}
