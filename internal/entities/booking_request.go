package entities

import "time"

type BookingRequest struct {
	Service       string `json:"service"`
	Date          string `json:"date"` // YYYY-MM-DD
	Time          string `json:"time"` // HH:MM
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
}

type RescheduleRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type BookingResponse struct {
	Code          string    `json:"code"`
	TenantID      string    `json:"tenant_id"`
	Service       string    `json:"service"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	CustomerPhone string    `json:"customer_phone"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CheckoutResponse is returned after a booking intent is recorded; the
// customer is redirected to the external checkout URL.
type CheckoutResponse struct {
	Code    string `json:"code"`
	URL     string `json:"url"`
	Message string `json:"message"`
}
