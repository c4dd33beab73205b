package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/md-rashed-zaman/propview/services/viewing-service/internal/scheduling"
)

// API envelope: success responses wrap their payload as {"data": ..,
// "message": ..}; failures carry {"message", "error", "statusCode"}.

type envelope struct {
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

type errorBody struct {
	Message    string `json:"message"`
	Error      string `json:"error"`
	StatusCode int    `json:"statusCode"`
}

func writeData(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Data: data, Message: message})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{
		Message:    message,
		Error:      http.StatusText(status),
		StatusCode: status,
	})
}

// writeSchedulingError maps the scheduling taxonomy onto status codes. The
// cancel outcome stays a single 404 whether the viewing is missing or owned
// by someone else.
func writeSchedulingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, scheduling.ErrInvalidInterval),
		errors.Is(err, scheduling.ErrLeadTime),
		errors.Is(err, scheduling.ErrDurationOutOfRange),
		errors.Is(err, scheduling.ErrBusinessHours),
		errors.Is(err, scheduling.ErrInvalidSlotDuration):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, scheduling.ErrListingNotFound),
		errors.Is(err, scheduling.ErrViewingNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, scheduling.ErrSlotConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
