package db

import "time"

type Tenant struct {
	ID          int
	CompanyID   string // external platform company id, doubles as the slug
	Name        string
	Description string
	LogoURL     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type TechnicianProfile struct {
	ID        int
	TenantID  string
	UserID    string // identity-provider user id
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AvailabilityRule is one flat persisted window. The weekly map is folded
// from, and flattened to, rows of this shape.
type AvailabilityRule struct {
	ID        int
	TenantID  string
	DayOfWeek int // 0=Sunday .. 6=Saturday
	StartTime string
	EndTime   string
}

type Service struct {
	ID       int
	TenantID string
	Name     string
	Price    int // cents
}

type Booking struct {
	ID              int
	Code            string
	TenantID        string
	Service         string
	Date            string // YYYY-MM-DD, naive local
	StartTime       string // HH:MM
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	Status          string
	StripeSessionID string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type TechnicianSubscription struct {
	ID                   int
	TechnicianProfileID  int
	Status               string
	StripeSubscriptionID string
	StripeCustomerID     string
	StartDate            *time.Time
	EndDate              *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type AdminUser struct {
	ID           int
	Email        string
	PasswordHash string
}
