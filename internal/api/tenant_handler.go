package api

import (
	"net/http"

	"github.com/gorilla/mux"

	httperrors "github.com/samueljjenkins/servicehomie-sub001/internal/errors"
	"github.com/samueljjenkins/servicehomie-sub001/internal/service"
)

// TenantHandler serves the public tenant surface: who is this booking page
// for, and what do they offer.
type TenantHandler struct {
	Tenants *service.TenantService
}

func NewTenantHandler(tenants *service.TenantService) *TenantHandler {
	return &TenantHandler{Tenants: tenants}
}

func (h *TenantHandler) GetTenant(w http.ResponseWriter, r *http.Request) {
	res, err := h.Tenants.Resolve(r.Context(), r.URL.Query().Get("tenant"), mux.Vars(r)["tenant"])
	if err != nil {
		httperrors.Write(w, httperrors.Internal("could not resolve tenant"))
		return
	}
	writeJSON(w, res)
}

func (h *TenantHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	res, err := h.Tenants.Resolve(r.Context(), r.URL.Query().Get("tenant"), mux.Vars(r)["tenant"])
	if err != nil {
		httperrors.Write(w, httperrors.Internal("could not resolve tenant"))
		return
	}
	services, err := h.Tenants.ListServices(r.Context(), res.ID)
	if err != nil {
		httperrors.Write(w, err)
		return
	}
	writeJSON(w, services)
}
