package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/samueljjenkins/servicehomie-sub001/internal/entities"
	httperrors "github.com/samueljjenkins/servicehomie-sub001/internal/errors"
	"github.com/samueljjenkins/servicehomie-sub001/internal/schedule"
	"github.com/samueljjenkins/servicehomie-sub001/internal/service"
)

// AvailabilityHandler is the technician dashboard's weekly schedule editor.
// The tenant comes from the authenticated technician's profile, which the
// profile middleware has already resolved into the request context.
type AvailabilityHandler struct {
	Availability *service.AvailabilityService
}

func NewAvailabilityHandler(availability *service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{Availability: availability}
}

func dayFromRequest(day int) (time.Weekday, *httperrors.HTTPError) {
	if day < 0 || day > 6 {
		return 0, httperrors.Validation("day", "day must be 0 (Sunday) through 6 (Saturday)")
	}
	return time.Weekday(day), nil
}

func (h *AvailabilityHandler) GetWeekly(w http.ResponseWriter, r *http.Request) {
	tenantID := TenantFromContext(r)
	weekly, err := h.Availability.Get(r.Context(), tenantID)
	if err != nil {
		httperrors.Write(w, err)
		return
	}
	writeJSON(w, entities.AvailabilityResponse{TenantID: tenantID, Weekly: weekly})
}

func (h *AvailabilityHandler) UpdateWindow(w http.ResponseWriter, r *http.Request) {
	var req entities.UpdateWindowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.Write(w, httperrors.Validation("", "invalid request body"))
		return
	}
	day, herr := dayFromRequest(req.Day)
	if herr != nil {
		httperrors.Write(w, herr)
		return
	}
	tenantID := TenantFromContext(r)
	weekly, err := h.Availability.UpdateWindow(r.Context(), tenantID, day, req.Index, req.Field, req.Value)
	if err != nil {
		httperrors.Write(w, err)
		return
	}
	writeJSON(w, entities.AvailabilityResponse{TenantID: tenantID, Weekly: weekly})
}

func (h *AvailabilityHandler) AddWindow(w http.ResponseWriter, r *http.Request) {
	h.windowOp(w, r, func(tenantID string, req entities.WindowRequest, day time.Weekday) (schedule.Weekly, error) {
		return h.Availability.AddWindow(r.Context(), tenantID, day)
	})
}

func (h *AvailabilityHandler) RemoveWindow(w http.ResponseWriter, r *http.Request) {
	h.windowOp(w, r, func(tenantID string, req entities.WindowRequest, day time.Weekday) (schedule.Weekly, error) {
		return h.Availability.RemoveWindow(r.Context(), tenantID, day, req.Index)
	})
}

func (h *AvailabilityHandler) ToggleDay(w http.ResponseWriter, r *http.Request) {
	h.windowOp(w, r, func(tenantID string, req entities.WindowRequest, day time.Weekday) (schedule.Weekly, error) {
		return h.Availability.ToggleDay(r.Context(), tenantID, day)
	})
}

func (h *AvailabilityHandler) windowOp(w http.ResponseWriter, r *http.Request, op func(string, entities.WindowRequest, time.Weekday) (schedule.Weekly, error)) {
	var req entities.WindowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.Write(w, httperrors.Validation("", "invalid request body"))
		return
	}
	day, herr := dayFromRequest(req.Day)
	if herr != nil {
		httperrors.Write(w, herr)
		return
	}
	tenantID := TenantFromContext(r)
	weekly, err := op(tenantID, req, day)
	if err != nil {
		httperrors.Write(w, err)
		return
	}
	writeJSON(w, entities.AvailabilityResponse{TenantID: tenantID, Weekly: weekly})
}
