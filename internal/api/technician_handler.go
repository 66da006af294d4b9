package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/samueljjenkins/servicehomie-sub001/internal/auth"
	"github.com/samueljjenkins/servicehomie-sub001/internal/db"
	"github.com/samueljjenkins/servicehomie-sub001/internal/entities"
	httperrors "github.com/samueljjenkins/servicehomie-sub001/internal/errors"
	"github.com/samueljjenkins/servicehomie-sub001/internal/repository"
	"github.com/samueljjenkins/servicehomie-sub001/internal/service"
	"github.com/samueljjenkins/servicehomie-sub001/internal/tenant"
)

type contextKey string

const profileKey contextKey = "technician_profile"

func profileFromContext(r *http.Request) *db.TechnicianProfile {
	p, _ := r.Context().Value(profileKey).(*db.TechnicianProfile)
	return p
}

// TenantFromContext returns the tenant owning the current dashboard request:
// the authenticated technician's tenant when a profile was resolved, else
// the usual query/route resolution (demo mode mounts the dashboard routes
// without auth).
func TenantFromContext(r *http.Request) string {
	if p := profileFromContext(r); p != nil {
		return p.TenantID
	}
	return tenant.Resolve(r.URL.Query().Get("tenant"), mux.Vars(r)["tenant"]).ID
}

// TechnicianHandler serves the technician dashboard: subscription lifecycle,
// tenant profile, and the technician's bookings.
type TechnicianHandler struct {
	Profiles      *repository.TechnicianRepository
	Subscriptions *service.SubscriptionService
	Bookings      *service.BookingService
	Tenants       *service.TenantService

	// GateBypass disables the entitlement gate. Debug escape hatch only.
	GateBypass bool
}

func NewTechnicianHandler(profiles *repository.TechnicianRepository, subscriptions *service.SubscriptionService, bookings *service.BookingService, tenants *service.TenantService, gateBypass bool) *TechnicianHandler {
	if gateBypass {
		log.Println("WARNING: subscription gate bypass is enabled; dashboard access is NOT gated")
	}
	return &TechnicianHandler{
		Profiles:      profiles,
		Subscriptions: subscriptions,
		Bookings:      bookings,
		Tenants:       tenants,
		GateBypass:    gateBypass,
	}
}

// ProfileMiddleware resolves the authenticated user id to a technician
// profile and stores it in the request context.
func (h *TechnicianHandler) ProfileMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := auth.UserID(r.Context())
		profile, err := h.Profiles.GetByUserID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, repository.ErrProfileNotFound) {
				httperrors.Write(w, httperrors.NotFound("technician profile not found"))
				return
			}
			httperrors.Write(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), profileKey, profile)))
	})
}

// GateMiddleware enforces the entitlement gate: an active subscription with
// a provider subscription id, or no dashboard.
func (h *TechnicianHandler) GateMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		profile := profileFromContext(r)
		if h.GateBypass {
			log.Printf("subscription gate bypassed for profile %d (%s)", profile.ID, r.URL.Path)
			next.ServeHTTP(w, r)
			return
		}
		hasAccess, err := h.Subscriptions.HasAccess(r.Context(), profile.ID)
		if err != nil {
			httperrors.Write(w, err)
			return
		}
		if !hasAccess {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusPaymentRequired)
			json.NewEncoder(w).Encode(map[string]string{
				"error":    "no active subscription",
				"redirect": "/subscription-required",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *TechnicianHandler) GetSubscription(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r)
	sub, err := h.Subscriptions.Get(r.Context(), profile.ID)
	if err != nil {
		if errors.Is(err, repository.ErrSubscriptionNotFound) {
			writeJSON(w, entities.SubscriptionResponse{TechnicianProfileID: profile.ID, Status: "none"})
			return
		}
		httperrors.Write(w, err)
		return
	}
	writeJSON(w, sub)
}

func (h *TechnicianHandler) StartCheckout(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r)
	url, err := h.Subscriptions.StartCheckout(r.Context(), profile.ID)
	if err != nil {
		log.Printf("Error starting subscription checkout for profile %d: %v", profile.ID, err)
		httperrors.Write(w, httperrors.External("could not start checkout"))
		return
	}
	writeJSON(w, map[string]string{"url": url})
}

func (h *TechnicianHandler) CancelSubscription(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r)
	if err := h.Subscriptions.CancelAtPeriodEnd(r.Context(), profile.ID); err != nil {
		log.Printf("Error cancelling subscription for profile %d: %v", profile.ID, err)
		httperrors.Write(w, httperrors.External("could not cancel subscription"))
		return
	}
	writeJSON(w, map[string]string{"message": "Subscription will cancel at period end"})
}

func (h *TechnicianHandler) BillingPortal(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r)
	url, err := h.Subscriptions.BillingPortalURL(r.Context(), profile.ID)
	if err != nil {
		log.Printf("Error creating billing portal session for profile %d: %v", profile.ID, err)
		httperrors.Write(w, httperrors.External("could not open billing portal"))
		return
	}
	writeJSON(w, map[string]string{"url": url})
}

func (h *TechnicianHandler) ReconcileSubscription(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r)
	active, err := h.Subscriptions.Reconcile(r.Context(), profile.ID)
	if err != nil {
		log.Printf("Error reconciling subscription for profile %d: %v", profile.ID, err)
		httperrors.Write(w, httperrors.External("could not reconcile subscription"))
		return
	}
	writeJSON(w, map[string]bool{"active": active})
}

func (h *TechnicianHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	list, err := h.Bookings.List(r.Context(), TenantFromContext(r), r.URL.Query().Get("date"), r.URL.Query().Get("status"))
	if err != nil {
		httperrors.Write(w, err)
		return
	}
	writeJSON(w, list)
}

func (h *TechnicianHandler) CompleteBooking(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	if err := h.Bookings.Complete(r.Context(), code); err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			httperrors.Write(w, httperrors.NotFound("booking not found"))
			return
		}
		httperrors.Write(w, err)
		return
	}
	writeJSON(w, map[string]string{"message": "Booking completed"})
}

func (h *TechnicianHandler) UpdateTenant(w http.ResponseWriter, r *http.Request) {
	var req entities.UpdateTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.Write(w, httperrors.Validation("", "invalid request body"))
		return
	}
	if err := h.Tenants.Update(r.Context(), TenantFromContext(r), req); err != nil {
		httperrors.Write(w, err)
		return
	}
	writeJSON(w, map[string]string{"message": "Profile updated"})
}
