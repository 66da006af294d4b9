package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/samueljjenkins/servicehomie-sub001/internal/entities"
	httperrors "github.com/samueljjenkins/servicehomie-sub001/internal/errors"
	"github.com/samueljjenkins/servicehomie-sub001/internal/repository"
	"github.com/samueljjenkins/servicehomie-sub001/internal/service"
)

// BookingHandler serves the customer-facing booking surface.
type BookingHandler struct {
	Bookings *service.BookingService
	Tenants  *service.TenantService
}

func NewBookingHandler(bookings *service.BookingService, tenants *service.TenantService) *BookingHandler {
	return &BookingHandler{Bookings: bookings, Tenants: tenants}
}

// resolveTenant applies the query-then-route-then-fallback precedence and
// makes sure the tenant row exists.
func (h *BookingHandler) resolveTenant(w http.ResponseWriter, r *http.Request) (string, bool) {
	res, err := h.Tenants.Resolve(r.Context(), r.URL.Query().Get("tenant"), mux.Vars(r)["tenant"])
	if err != nil {
		httperrors.Write(w, httperrors.Internal("could not resolve tenant"))
		return "", false
	}
	return res.ID, true
}

func (h *BookingHandler) ListDays(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.resolveTenant(w, r)
	if !ok {
		return
	}
	writeJSON(w, h.Bookings.ListCandidateDays(tenantID))
}

func (h *BookingHandler) ListSlots(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.resolveTenant(w, r)
	if !ok {
		return
	}
	slots, err := h.Bookings.ListSlots(r.Context(), tenantID, r.URL.Query().Get("date"))
	if err != nil {
		httperrors.Write(w, err)
		return
	}
	writeJSON(w, slots)
}

func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.resolveTenant(w, r)
	if !ok {
		return
	}
	var req entities.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.Write(w, httperrors.Validation("", "invalid request body"))
		return
	}
	resp, err := h.Bookings.Create(r.Context(), tenantID, req)
	if err != nil {
		httperrors.Write(w, err)
		return
	}
	writeJSON(w, resp)
}

func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	booking, err := h.Bookings.GetByCode(r.Context(), code, r.URL.Query().Get("email"))
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			httperrors.Write(w, httperrors.NotFound("booking not found"))
			return
		}
		httperrors.Write(w, err)
		return
	}
	writeJSON(w, booking)
}

func (h *BookingHandler) RescheduleBooking(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	var req entities.RescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.Write(w, httperrors.Validation("", "invalid request body"))
		return
	}
	if err := h.Bookings.Reschedule(r.Context(), code, req); err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			httperrors.Write(w, httperrors.NotFound("booking not found"))
			return
		}
		httperrors.Write(w, err)
		return
	}
	writeJSON(w, map[string]string{"message": "Booking rescheduled"})
}

func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	if err := h.Bookings.Cancel(r.Context(), code); err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			httperrors.Write(w, httperrors.NotFound("booking not found"))
			return
		}
		httperrors.Write(w, err)
		return
	}
	writeJSON(w, map[string]string{"message": "Booking cancelled"})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
