package api

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	svix "github.com/svix/svix-webhooks/go"

	"github.com/samueljjenkins/servicehomie-sub001/internal/repository"
	"github.com/samueljjenkins/servicehomie-sub001/internal/service"
)

// IdentityWebhookHandler provisions technician profiles from the identity
// provider's user events. Payloads are trusted only after svix signature
// verification.
type IdentityWebhookHandler struct {
	webhook  *svix.Webhook
	Profiles *repository.TechnicianRepository
	Subs     service.SubscriptionStore
	Tenants  *service.TenantService
}

func NewIdentityWebhookHandler(secret string, profiles *repository.TechnicianRepository, subs service.SubscriptionStore, tenants *service.TenantService) (*IdentityWebhookHandler, error) {
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return nil, err
	}
	return &IdentityWebhookHandler{webhook: wh, Profiles: profiles, Subs: subs, Tenants: tenants}, nil
}

type identityEvent struct {
	Type string `json:"type"`
	Data struct {
		ID             string `json:"id"`
		Username       string `json:"username"`
		FirstName      string `json:"first_name"`
		LastName       string `json:"last_name"`
		EmailAddresses []struct {
			EmailAddress string `json:"email_address"`
		} `json:"email_addresses"`
	} `json:"data"`
}

func (h *IdentityWebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	if err := h.webhook.Verify(payload, r.Header); err != nil {
		log.Printf("Identity webhook signature verification failed: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var event identityEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		log.Printf("Error parsing identity event: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch event.Type {
	case "user.created", "user.updated":
		if err := h.provision(r, event); err != nil {
			log.Printf("Error provisioning technician for user %s: %v", event.Data.ID, err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	case "user.deleted":
		// Profile rows are kept for booking history; the account is dead at
		// the identity provider so no dashboard login can reach it.
		log.Printf("Identity user %s deleted, keeping technician profile", event.Data.ID)
	default:
		log.Printf("Unhandled identity event type: %s", event.Type)
	}

	w.WriteHeader(http.StatusOK)
}

// provision upserts the technician profile plus the implicit status=none
// subscription record every profile starts with. Safe to replay.
func (h *IdentityWebhookHandler) provision(r *http.Request, event identityEvent) error {
	email := ""
	if len(event.Data.EmailAddresses) > 0 {
		email = event.Data.EmailAddresses[0].EmailAddress
	}
	name := event.Data.FirstName
	if event.Data.LastName != "" {
		name += " " + event.Data.LastName
	}

	// The user's own tenant: the username when it is a usable slug, the
	// demo fallback otherwise.
	tenantRes, err := h.Tenants.Resolve(r.Context(), event.Data.Username, "")
	if err != nil {
		return err
	}

	profile, err := h.Profiles.UpsertByUserID(r.Context(), event.Data.ID, tenantRes.ID, name, email)
	if err != nil {
		return err
	}
	return h.Subs.EnsureForProfile(r.Context(), profile.ID)
}
