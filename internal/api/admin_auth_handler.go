package api

import (
	"encoding/json"
	"net/http"

	httperrors "github.com/samueljjenkins/servicehomie-sub001/internal/errors"
	"github.com/samueljjenkins/servicehomie-sub001/internal/service"
)

type AdminAuthHandler struct {
	service service.AdminAuthService
}

func NewAdminAuthHandler(svc service.AdminAuthService) *AdminAuthHandler {
	return &AdminAuthHandler{service: svc}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

func (h *AdminAuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.Write(w, httperrors.Validation("", "invalid request body"))
		return
	}

	token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httperrors.Write(w, httperrors.Unauthorized("invalid credentials"))
		return
	}
	writeJSON(w, LoginResponse{Token: token})
}

func (h *AdminAuthHandler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.Write(w, httperrors.Validation("", "invalid request body"))
		return
	}
	if err := h.service.CreateAdmin(r.Context(), req.Email, req.Password); err != nil {
		httperrors.Write(w, err)
		return
	}
	writeJSON(w, map[string]string{"message": "Admin registered successfully"})
}
