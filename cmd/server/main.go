package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/stripe/stripe-go/v82"

	"github.com/samueljjenkins/servicehomie-sub001/internal/api"
	"github.com/samueljjenkins/servicehomie-sub001/internal/auth"
	"github.com/samueljjenkins/servicehomie-sub001/internal/config"
	"github.com/samueljjenkins/servicehomie-sub001/internal/repository"
	"github.com/samueljjenkins/servicehomie-sub001/internal/service"
)

func main() {
	godotenv.Load()
	cfg := config.Load()
	stripe.Key = cfg.StripeSecretKey

	r := mux.NewRouter()
	r.Use(api.MetricsMiddleware)
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	if cfg.DatabaseURL == "" {
		log.Println("DATABASE_URL not set, running in demo mode with local availability store")
		runDemo(cfg, r)
		return
	}

	database, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := database.Ping(); err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	availabilityRepo := repository.NewAvailabilityRepository(database)
	bookingRepo := repository.NewBookingRepository(database)
	subscriptionRepo := repository.NewSubscriptionRepository(database)
	tenantRepo := repository.NewTenantRepository(database)
	technicianRepo := repository.NewTechnicianRepository(database)
	adminAuthRepo := repository.NewAdminAuthRepository(database)

	stripeSvc := service.NewStripeService(cfg.SiteURL, cfg.SubscriptionPriceID, cfg.CheckoutRedirectURL)
	senderSvc := service.NewSenderService(cfg)
	tenantSvc := service.NewTenantService(tenantRepo)
	availabilitySvc := service.NewAvailabilityService(availabilityRepo)
	bookingSvc := service.NewBookingService(bookingRepo, availabilityRepo, stripeSvc, senderSvc)
	subscriptionSvc := service.NewSubscriptionService(subscriptionRepo, technicianRepo, stripeSvc)
	adminAuthSvc := service.NewAdminAuthService(adminAuthRepo, cfg.JWTSecret)
	jobSvc := service.NewJobService(bookingRepo, subscriptionSvc)

	bookingHandler := api.NewBookingHandler(bookingSvc, tenantSvc)
	tenantHandler := api.NewTenantHandler(tenantSvc)
	availabilityHandler := api.NewAvailabilityHandler(availabilitySvc)
	technicianHandler := api.NewTechnicianHandler(technicianRepo, subscriptionSvc, bookingSvc, tenantSvc, cfg.SubscriptionGateBypass)
	adminHandler := api.NewAdminHandler(bookingSvc)
	adminAuthHandler := api.NewAdminAuthHandler(adminAuthSvc)
	stripeHandler := api.NewStripeWebhookHandler(cfg.StripeWebhookSecret, bookingSvc, subscriptionSvc)

	// Public booking surface
	r.HandleFunc("/api/t/{tenant}", tenantHandler.GetTenant).Methods("GET")
	r.HandleFunc("/api/t/{tenant}/services", tenantHandler.ListServices).Methods("GET")
	r.HandleFunc("/api/t/{tenant}/days", bookingHandler.ListDays).Methods("GET")
	r.HandleFunc("/api/t/{tenant}/slots", bookingHandler.ListSlots).Methods("GET")
	r.HandleFunc("/api/t/{tenant}/bookings", bookingHandler.CreateBooking).Methods("POST")
	r.HandleFunc("/api/bookings/{code}", bookingHandler.GetBooking).Methods("GET")
	r.HandleFunc("/api/bookings/{code}", bookingHandler.RescheduleBooking).Methods("PUT")
	r.HandleFunc("/api/bookings/{code}", bookingHandler.CancelBooking).Methods("DELETE")
	r.HandleFunc("/api/checkout/booking", stripeHandler.GetBookingBySessionHandler).Methods("GET")

	// Webhooks
	r.HandleFunc("/webhooks/stripe", stripeHandler.HandleWebhook).Methods("POST")
	if cfg.IdentityWebhookSecret != "" {
		identityHandler, err := api.NewIdentityWebhookHandler(cfg.IdentityWebhookSecret, technicianRepo, subscriptionRepo, tenantSvc)
		if err != nil {
			log.Fatalf("Failed to init identity webhook handler: %v", err)
		}
		r.HandleFunc("/webhooks/identity", identityHandler.HandleWebhook).Methods("POST")
	}

	// Technician dashboard (authenticated; entitlement-gated past the
	// subscription management endpoints themselves)
	technician := r.PathPrefix("/api/technician").Subrouter()
	technician.Use(auth.TechnicianAuthMiddleware(cfg.JWTSecret))
	technician.Use(technicianHandler.ProfileMiddleware)
	technician.HandleFunc("/subscription", technicianHandler.GetSubscription).Methods("GET")
	technician.HandleFunc("/subscription/checkout", technicianHandler.StartCheckout).Methods("POST")
	technician.HandleFunc("/subscription/cancel", technicianHandler.CancelSubscription).Methods("POST")
	technician.HandleFunc("/subscription/reconcile", technicianHandler.ReconcileSubscription).Methods("POST")
	technician.HandleFunc("/subscription/portal", technicianHandler.BillingPortal).Methods("GET")

	dashboard := technician.PathPrefix("/dashboard").Subrouter()
	dashboard.Use(technicianHandler.GateMiddleware)
	dashboard.HandleFunc("/bookings", technicianHandler.ListBookings).Methods("GET")
	dashboard.HandleFunc("/bookings/{code}/complete", technicianHandler.CompleteBooking).Methods("POST")
	dashboard.HandleFunc("/profile", technicianHandler.UpdateTenant).Methods("PUT")
	dashboard.HandleFunc("/availability", availabilityHandler.GetWeekly).Methods("GET")
	dashboard.HandleFunc("/availability/window", availabilityHandler.UpdateWindow).Methods("PUT")
	dashboard.HandleFunc("/availability/window", availabilityHandler.AddWindow).Methods("POST")
	dashboard.HandleFunc("/availability/window/remove", availabilityHandler.RemoveWindow).Methods("POST")
	dashboard.HandleFunc("/availability/toggle", availabilityHandler.ToggleDay).Methods("POST")

	// Admin endpoints (protected)
	r.HandleFunc("/admin/login", adminAuthHandler.Login).Methods("POST")
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(auth.AdminAuthMiddleware(cfg.JWTSecret))
	admin.HandleFunc("/register", adminAuthHandler.CreateAdmin).Methods("POST")
	admin.HandleFunc("/bookings", adminHandler.ListBookings).Methods("GET")
	admin.HandleFunc("/bookings/{code}/status", adminHandler.UpdateBookingStatus).Methods("PUT")
	admin.HandleFunc("/bookings/{id}", adminHandler.DeleteBooking).Methods("DELETE")

	startCron(jobSvc)
	serve(cfg, r)
}

// runDemo serves just the availability editor and slot browsing against the
// local bbolt store. Payments, subscriptions and persistence-backed booking
// flows need a real database.
func runDemo(cfg config.Config, r *mux.Router) {
	store, err := repository.OpenLocalAvailabilityStore(cfg.LocalStorePath)
	if err != nil {
		log.Fatalf("Failed to open local store: %v", err)
	}
	defer store.Close()

	tenantSvc := service.NewTenantService(nil)
	availabilitySvc := service.NewAvailabilityService(store)
	bookingSvc := service.NewBookingService(nil, store, nil, nil)

	bookingHandler := api.NewBookingHandler(bookingSvc, tenantSvc)
	tenantHandler := api.NewTenantHandler(tenantSvc)
	availabilityHandler := api.NewAvailabilityHandler(availabilitySvc)

	r.HandleFunc("/api/t/{tenant}", tenantHandler.GetTenant).Methods("GET")
	r.HandleFunc("/api/t/{tenant}/days", bookingHandler.ListDays).Methods("GET")
	r.HandleFunc("/api/t/{tenant}/slots", bookingHandler.ListSlots).Methods("GET")
	r.HandleFunc("/api/t/{tenant}/availability", availabilityHandler.GetWeekly).Methods("GET")
	r.HandleFunc("/api/t/{tenant}/availability/window", availabilityHandler.UpdateWindow).Methods("PUT")
	r.HandleFunc("/api/t/{tenant}/availability/window", availabilityHandler.AddWindow).Methods("POST")
	r.HandleFunc("/api/t/{tenant}/availability/window/remove", availabilityHandler.RemoveWindow).Methods("POST")
	r.HandleFunc("/api/t/{tenant}/availability/toggle", availabilityHandler.ToggleDay).Methods("POST")

	serve(cfg, r)
}

func startCron(jobs *service.JobService) {
	c := cron.New()
	c.AddFunc("@hourly", func() {
		if err := jobs.PurgeStalePendingBookings(context.Background()); err != nil {
			log.Printf("Cron job: purge failed: %v", err)
		}
	})
	c.AddFunc("0 3 * * *", func() {
		if err := jobs.ReconcileSubscriptions(context.Background()); err != nil {
			log.Printf("Cron job: reconciliation failed: %v", err)
		}
	})
	c.Start()
}

func serve(cfg config.Config, r *mux.Router) {
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{cfg.SiteURL}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)
	log.Printf("Server running on port %s", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, cors(handlers.LoggingHandler(os.Stdout, r))))
}
