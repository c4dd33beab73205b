package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/md-rashed-zaman/propview/libs/auth"
	"github.com/md-rashed-zaman/propview/services/viewing-service/internal/model"
	"github.com/md-rashed-zaman/propview/services/viewing-service/internal/scheduling"
)

type stubCatalog struct {
	ids map[string]bool
}

func (s *stubCatalog) Resolve(_ context.Context, listingID string) (model.Listing, bool, error) {
	if s.ids[listingID] {
		return model.Listing{ID: listingID}, true, nil
	}
	return model.Listing{}, false, nil
}

type stubStore struct {
	viewings []model.Viewing
}

func (s *stubStore) CountOverlapping(_ context.Context, listingID string, start, end time.Time) (int, error) {
	n := 0
	for _, v := range s.viewings {
		if v.ListingID != listingID || v.Status == model.StatusCancelled {
			continue
		}
		if v.StartTime.Before(end) && start.Before(v.EndTime) {
			n++
		}
	}
	return n, nil
}

func (s *stubStore) Create(_ context.Context, v model.Viewing) (model.Viewing, error) {
	v.ID = uuid.NewString()
	v.CreatedAt = time.Now()
	v.UpdatedAt = v.CreatedAt
	s.viewings = append(s.viewings, v)
	return v, nil
}

func (s *stubStore) ListForDay(_ context.Context, listingID string, dayStart, dayEnd time.Time) ([]model.Viewing, error) {
	var out []model.Viewing
	for _, v := range s.viewings {
		if v.ListingID == listingID && v.StartTime.Before(dayEnd) && dayStart.Before(v.EndTime) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *stubStore) ListByUser(_ context.Context, userID string) ([]model.Viewing, error) {
	var out []model.Viewing
	for _, v := range s.viewings {
		if v.UserID == userID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *stubStore) Cancel(_ context.Context, viewingID, userID string) (model.Viewing, error) {
	for i, v := range s.viewings {
		if v.ID == viewingID && v.UserID == userID {
			s.viewings[i].Status = model.StatusCancelled
			return s.viewings[i], nil
		}
	}
	return model.Viewing{}, scheduling.ErrViewingNotFound
}

const (
	testSecret     = "handler-test-secret"
	knownListingID = "7a3f1e52-9b64-4c8d-8f20-5d1c9e7b4a36"
	ghostListingID = "0d9b6c41-2e73-49fa-b1c8-6a5e0f3d7c92"
)

func newTestHandler(t *testing.T, store *stubStore) *ViewingHandler {
	t.Helper()
	now := func() time.Time {
		return time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	}
	catalog := &stubCatalog{ids: map[string]bool{knownListingID: true}}
	sched := scheduling.NewScheduler(catalog, store, scheduling.DefaultPolicy(time.UTC), now, nil)
	return NewViewingHandler(sched, time.UTC)
}

func bearerFor(t *testing.T, userID string) string {
	t.Helper()
	now := time.Now()
	token, err := auth.SignHS256(auth.Claims{
		Sub: userID,
		Exp: now.Add(time.Hour).Unix(),
		Iat: now.Unix(),
	}, testSecret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return "Bearer " + token
}

func doAuthed(t *testing.T, h http.HandlerFunc, method, target, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Authorization", bearerFor(t, userID))
	rec := httptest.NewRecorder()
	RequireAuth(testSecret, h).ServeHTTP(rec, req)
	return rec
}

func TestScheduleViewing_Created(t *testing.T) {
	store := &stubStore{}
	h := newTestHandler(t, store)

	body := `{"listing_id":"` + knownListingID + `","start_time":"2026-03-12T10:00:00Z","end_time":"2026-03-12T10:30:00Z","notes":"first visit"}`
	rec := doAuthed(t, h.Schedule, http.MethodPost, "/api/v1/viewings/schedule", "user-1", body)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data    viewingItem `json:"data"`
		Message string      `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Message != "Viewing scheduled successfully" {
		t.Errorf("message = %q", resp.Message)
	}
	if resp.Data.Status != model.StatusPending {
		t.Errorf("status = %q, want %q", resp.Data.Status, model.StatusPending)
	}
	if resp.Data.UserID != "user-1" {
		t.Errorf("user_id = %q, want claim subject", resp.Data.UserID)
	}
	if len(store.viewings) != 1 {
		t.Fatalf("stored %d viewings, want 1", len(store.viewings))
	}
}

func TestScheduleViewing_ErrorStatuses(t *testing.T) {
	cases := []struct {
		name string
		body string
		want int
	}{
		{
			name: "lead time too short",
			body: `{"listing_id":"` + knownListingID + `","start_time":"2026-03-10T15:00:00Z","end_time":"2026-03-10T15:30:00Z"}`,
			want: http.StatusBadRequest,
		},
		{
			name: "outside business hours",
			body: `{"listing_id":"` + knownListingID + `","start_time":"2026-03-12T07:00:00Z","end_time":"2026-03-12T07:30:00Z"}`,
			want: http.StatusBadRequest,
		},
		{
			name: "unknown listing",
			body: `{"listing_id":"` + ghostListingID + `","start_time":"2026-03-12T10:00:00Z","end_time":"2026-03-12T10:30:00Z"}`,
			want: http.StatusNotFound,
		},
		{
			name: "malformed listing id",
			body: `{"listing_id":"nope","start_time":"2026-03-12T10:00:00Z","end_time":"2026-03-12T10:30:00Z"}`,
			want: http.StatusBadRequest,
		},
		{
			name: "malformed timestamp",
			body: `{"listing_id":"` + knownListingID + `","start_time":"tomorrow","end_time":"2026-03-12T10:30:00Z"}`,
			want: http.StatusBadRequest,
		},
		{
			name: "missing listing id",
			body: `{"start_time":"2026-03-12T10:00:00Z","end_time":"2026-03-12T10:30:00Z"}`,
			want: http.StatusBadRequest,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestHandler(t, &stubStore{})
			rec := doAuthed(t, h.Schedule, http.MethodPost, "/api/v1/viewings/schedule", "user-1", tc.body)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d; body %s", rec.Code, tc.want, rec.Body.String())
			}
		})
	}
}

func TestScheduleViewing_Conflict(t *testing.T) {
	store := &stubStore{}
	h := newTestHandler(t, store)

	body := `{"listing_id":"` + knownListingID + `","start_time":"2026-03-12T10:00:00Z","end_time":"2026-03-12T10:30:00Z"}`
	if rec := doAuthed(t, h.Schedule, http.MethodPost, "/api/v1/viewings/schedule", "user-1", body); rec.Code != http.StatusCreated {
		t.Fatalf("first booking: status = %d", rec.Code)
	}
	rec := doAuthed(t, h.Schedule, http.MethodPost, "/api/v1/viewings/schedule", "user-2", body)
	if rec.Code != http.StatusConflict {
		t.Fatalf("second booking: status = %d, want 409; body %s", rec.Code, rec.Body.String())
	}
}

func TestSlots_DefaultDuration(t *testing.T) {
	h := newTestHandler(t, &stubStore{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/viewings/slots?listing_id="+knownListingID+"&date=2026-03-12", nil)
	h.Slots(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data []slotItem `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Data) != 18 {
		t.Fatalf("got %d slots, want 18 for a 9h day at 30min", len(resp.Data))
	}
	for _, s := range resp.Data {
		if !s.Available {
			t.Fatalf("slot %s unexpectedly busy on empty day", s.StartTime)
		}
	}
}

func TestSlots_BadDuration(t *testing.T) {
	h := newTestHandler(t, &stubStore{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/viewings/slots?listing_id="+knownListingID+"&date=2026-03-12&duration_minutes=15", nil)
	h.Slots(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body %s", rec.Code, rec.Body.String())
	}
}

func TestSlots_MalformedListingID(t *testing.T) {
	h := newTestHandler(t, &stubStore{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/viewings/slots?listing_id=abc&date=2026-03-12", nil)
	h.Slots(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for a non-uuid listing id; body %s", rec.Code, rec.Body.String())
	}
}

func TestCancelViewing_MalformedID(t *testing.T) {
	h := newTestHandler(t, &stubStore{})

	rec := doAuthed(t, h.Cancel, http.MethodPost, "/api/v1/viewings/cancel", "user-1", `{"viewing_id":"not-a-uuid"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for a non-uuid viewing id; body %s", rec.Code, rec.Body.String())
	}
}

func TestCancelViewing_OwnershipAnd404(t *testing.T) {
	store := &stubStore{}
	h := newTestHandler(t, store)

	body := `{"listing_id":"` + knownListingID + `","start_time":"2026-03-12T10:00:00Z","end_time":"2026-03-12T10:30:00Z"}`
	doAuthed(t, h.Schedule, http.MethodPost, "/api/v1/viewings/schedule", "user-1", body)
	id := store.viewings[0].ID

	cancelBody := `{"viewing_id":"` + id + `"}`
	if rec := doAuthed(t, h.Cancel, http.MethodPost, "/api/v1/viewings/cancel", "user-2", cancelBody); rec.Code != http.StatusNotFound {
		t.Fatalf("foreign cancel: status = %d, want 404", rec.Code)
	}
	rec := doAuthed(t, h.Cancel, http.MethodPost, "/api/v1/viewings/cancel", "user-1", cancelBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("owner cancel: status = %d; body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data    viewingItem `json:"data"`
		Message string      `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Message != "Viewing cancelled successfully" {
		t.Errorf("message = %q", resp.Message)
	}
	if resp.Data.Status != model.StatusCancelled {
		t.Errorf("status = %q, want %q", resp.Data.Status, model.StatusCancelled)
	}
}

func TestListViewings_ScopedToCaller(t *testing.T) {
	store := &stubStore{
		viewings: []model.Viewing{
			{ID: "v1", ListingID: knownListingID, UserID: "user-1", Status: model.StatusPending},
			{ID: "v2", ListingID: knownListingID, UserID: "user-2", Status: model.StatusPending},
		},
	}
	h := newTestHandler(t, store)

	rec := doAuthed(t, h.List, http.MethodGet, "/api/v1/viewings", "user-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data []viewingItem `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].ID != "v1" {
		t.Fatalf("got %+v, want only the caller's viewing", resp.Data)
	}
}

func TestRequireAuth_RejectsBadTokens(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	cases := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "not bearer", header: "Basic abc"},
		{name: "garbage token", header: "Bearer not.a.jwt"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/viewings", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			RequireAuth(testSecret, next).ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
		})
	}

	t.Run("wrong secret", func(t *testing.T) {
		token, err := auth.SignHS256(auth.Claims{Sub: "user-1", Exp: time.Now().Add(time.Hour).Unix()}, "other-secret")
		if err != nil {
			t.Fatal(err)
		}
		req := httptest.NewRequest(http.MethodGet, "/api/v1/viewings", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		RequireAuth(testSecret, next).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})
}
