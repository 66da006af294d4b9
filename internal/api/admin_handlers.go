package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	httperrors "github.com/samueljjenkins/servicehomie-sub001/internal/errors"
	"github.com/samueljjenkins/servicehomie-sub001/internal/repository"
	"github.com/samueljjenkins/servicehomie-sub001/internal/service"
)

// AdminHandler is the cross-tenant operations surface.
type AdminHandler struct {
	Bookings *service.BookingService
}

func NewAdminHandler(bookings *service.BookingService) *AdminHandler {
	return &AdminHandler{Bookings: bookings}
}

func (h *AdminHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	list, err := h.Bookings.List(r.Context(),
		r.URL.Query().Get("tenant"),
		r.URL.Query().Get("date"),
		r.URL.Query().Get("status"))
	if err != nil {
		httperrors.Write(w, err)
		return
	}
	writeJSON(w, list)
}

// UpdateBookingStatus lets an admin force a transition; the same status
// machine as the customer/technician paths still applies.
func (h *AdminHandler) UpdateBookingStatus(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.Write(w, httperrors.Validation("", "invalid request body"))
		return
	}
	var err error
	switch req.Status {
	case service.BookingCompleted:
		err = h.Bookings.Complete(r.Context(), code)
	case service.BookingCancelled:
		err = h.Bookings.Cancel(r.Context(), code)
	default:
		httperrors.Write(w, httperrors.Validation("status", "status must be completed or cancelled"))
		return
	}
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			httperrors.Write(w, httperrors.NotFound("booking not found"))
			return
		}
		httperrors.Write(w, err)
		return
	}
	writeJSON(w, map[string]string{"message": "Booking updated"})
}

// DeleteBooking is the raw row delete the admin pages expose. Normal flows
// cancel instead.
func (h *AdminHandler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		httperrors.Write(w, httperrors.Validation("id", "invalid booking id"))
		return
	}
	if err := h.Bookings.DeleteByID(r.Context(), id); err != nil {
		httperrors.Write(w, err)
		return
	}
	writeJSON(w, map[string]string{"message": "Booking deleted"})
}
