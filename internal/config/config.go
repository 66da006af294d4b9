package config

import "os"

// Config collects every environment-supplied setting the server needs.
// godotenv loads .env in main before Load runs.
type Config struct {
	Port    string
	SiteURL string

	DatabaseURL    string
	LocalStorePath string

	StripeSecretKey       string
	StripeWebhookSecret   string
	SubscriptionPriceID   string
	CheckoutRedirectURL   string
	IdentityWebhookSecret string

	JWTSecret string

	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioFromNumber  string

	// SubscriptionGateBypass disables the dashboard entitlement gate. Debug
	// escape hatch only; every bypassed request is logged.
	SubscriptionGateBypass bool
}

func Load() Config {
	return Config{
		Port:                   getenv("PORT", "8080"),
		SiteURL:                getenv("SITE_URL", "http://localhost:3000"),
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		LocalStorePath:         getenv("LOCAL_STORE_PATH", "servicehomie.db"),
		StripeSecretKey:        os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret:    os.Getenv("STRIPE_WEBHOOK_SECRET"),
		SubscriptionPriceID:    os.Getenv("STRIPE_SUBSCRIPTION_PRICE_ID"),
		CheckoutRedirectURL:    os.Getenv("CHECKOUT_REDIRECT_URL"),
		IdentityWebhookSecret:  os.Getenv("IDENTITY_WEBHOOK_SECRET"),
		JWTSecret:              os.Getenv("JWT_SECRET"),
		SendGridAPIKey:         os.Getenv("SENDGRID_API_KEY"),
		SendGridFromEmail:      os.Getenv("SENDGRID_FROM_EMAIL"),
		SendGridFromName:       getenv("SENDGRID_FROM_NAME", "Service Homie"),
		TwilioAccountSID:       os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:        os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromNumber:       os.Getenv("TWILIO_FROM_NUMBER"),
		SubscriptionGateBypass: os.Getenv("SUBSCRIPTION_GATE_BYPASS") == "true",
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
