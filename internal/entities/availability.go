package entities

import (
	"time"

	"github.com/samueljjenkins/servicehomie-sub001/internal/schedule"
)

type AvailabilityResponse struct {
	TenantID string          `json:"tenant_id"`
	Weekly   schedule.Weekly `json:"weekly"`
}

type UpdateWindowRequest struct {
	Day   int    `json:"day"`
	Index int    `json:"index"`
	Field string `json:"field"`
	Value string `json:"value"`
}

type WindowRequest struct {
	Day   int `json:"day"`
	Index int `json:"index,omitempty"`
}

type DaysResponse struct {
	TenantID string   `json:"tenant_id"`
	Days     []string `json:"days"`
}

type SlotResponse struct {
	Start time.Time `json:"start"`
	Label string    `json:"label"` // HH:MM for display
}

type SlotsResponse struct {
	TenantID string         `json:"tenant_id"`
	Date     string         `json:"date"`
	Slots    []SlotResponse `json:"slots"`
}
