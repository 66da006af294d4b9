package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/samueljjenkins/servicehomie-sub001/internal/db"
	"github.com/samueljjenkins/servicehomie-sub001/internal/entities"
	httperrors "github.com/samueljjenkins/servicehomie-sub001/internal/errors"
	"github.com/samueljjenkins/servicehomie-sub001/internal/repository"
	"github.com/samueljjenkins/servicehomie-sub001/internal/schedule"
)

const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCompleted = "completed"
	BookingCancelled = "cancelled"

	dateLayout = "2006-01-02"

	// CandidateDays is the rolling booking horizon shown to customers.
	CandidateDays = 14

	// depositAmountCents is the flat checkout amount collected per booking.
	depositAmountCents = 5000
)

type BookingStore interface {
	Create(ctx context.Context, b *db.Booking) error
	GetByCode(ctx context.Context, code string) (*db.Booking, error)
	GetBySessionID(ctx context.Context, sessionID string) (*db.Booking, error)
	List(ctx context.Context, tenantID, date, status string) ([]db.Booking, error)
	UpdateStatus(ctx context.Context, code, status string) error
	UpdateStatusBySessionID(ctx context.Context, sessionID, status string) error
	Reschedule(ctx context.Context, code, date, startTime string) error
	DeleteByID(ctx context.Context, id int) error
}

// BookingCheckout is the payment-provider surface booking intake needs.
type BookingCheckout interface {
	CreateBookingCheckout(ctx context.Context, email, bookingCode, serviceName string, amount int64) (url, sessionID string, err error)
}

// Notifier delivers non-critical booking notifications. Implementations must
// not block the request path.
type Notifier interface {
	NotifyBooking(booking entities.BookingResponse, status string)
}

type BookingService struct {
	Bookings     BookingStore
	Availability repository.AvailabilityStore
	Checkout     BookingCheckout
	Sender       Notifier
}

func NewBookingService(bookings BookingStore, availability repository.AvailabilityStore, checkout BookingCheckout, sender Notifier) *BookingService {
	return &BookingService{Bookings: bookings, Availability: availability, Checkout: checkout, Sender: sender}
}

// ListCandidateDays returns the rolling horizon of selectable days starting
// today.
func (s *BookingService) ListCandidateDays(tenantID string) entities.DaysResponse {
	days := schedule.NextCalendarDays(CandidateDays, time.Now())
	out := entities.DaysResponse{TenantID: tenantID, Days: make([]string, 0, len(days))}
	for _, d := range days {
		out.Days = append(out.Days, d.Format(dateLayout))
	}
	return out
}

// ListSlots derives the bookable start times for one day from the tenant's
// weekly schedule. No cross-check against existing bookings is made; double
// booking prevention is an acknowledged gap.
func (s *BookingService) ListSlots(ctx context.Context, tenantID, date string) (*entities.SlotsResponse, error) {
	day, err := time.ParseInLocation(dateLayout, date, time.Local)
	if err != nil {
		return nil, httperrors.Validation("date", "date must be YYYY-MM-DD")
	}
	weekly, err := s.Availability.Load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	slots := schedule.GenerateSlots(day, weekly, schedule.SlotInterval, time.Now())
	resp := &entities.SlotsResponse{TenantID: tenantID, Date: date, Slots: make([]entities.SlotResponse, 0, len(slots))}
	for _, slot := range slots {
		resp.Slots = append(resp.Slots, entities.SlotResponse{Start: slot, Label: slot.Format("15:04")})
	}
	return resp, nil
}

// Create records the booking intent and hands the customer to checkout. The
// booking stays pending until the payment webhook confirms it.
func (s *BookingService) Create(ctx context.Context, tenantID string, req entities.BookingRequest) (*entities.CheckoutResponse, error) {
	if err := validateBookingRequest(req); err != nil {
		return nil, err
	}

	code := fmt.Sprintf("%08X", time.Now().UnixNano()%100000000)
	url, sessionID, err := s.Checkout.CreateBookingCheckout(ctx, req.CustomerEmail, code, req.Service, depositAmountCents)
	if err != nil {
		log.Printf("Error creating booking checkout: %v", err)
		return nil, httperrors.External("could not start checkout")
	}

	booking := &db.Booking{
		Code:            code,
		TenantID:        tenantID,
		Service:         req.Service,
		Date:            req.Date,
		StartTime:       req.Time,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		Status:          BookingPending,
		StripeSessionID: sessionID,
		CreatedAt:       time.Now().UTC(),
		UpdatedAt:       time.Now().UTC(),
	}
	if err := s.Bookings.Create(ctx, booking); err != nil {
		log.Printf("Error creating booking in repository: %v", err)
		return nil, err
	}

	return &entities.CheckoutResponse{Code: code, URL: url, Message: "Booking received, complete payment to confirm."}, nil
}

// GetByCode looks a booking up for the customer; the email must match.
func (s *BookingService) GetByCode(ctx context.Context, code, email string) (*entities.BookingResponse, error) {
	booking, err := s.Bookings.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if booking.CustomerEmail != email {
		return nil, repository.ErrBookingNotFound
	}
	resp := toBookingResponse(booking)
	return &resp, nil
}

func (s *BookingService) GetBySessionID(ctx context.Context, sessionID string) (*entities.BookingResponse, error) {
	booking, err := s.Bookings.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	resp := toBookingResponse(booking)
	return &resp, nil
}

func (s *BookingService) List(ctx context.Context, tenantID, date, status string) (*entities.BookingsList, error) {
	bookings, err := s.Bookings.List(ctx, tenantID, date, status)
	if err != nil {
		return nil, err
	}
	list := &entities.BookingsList{Total: len(bookings), Bookings: make([]entities.BookingResponse, 0, len(bookings))}
	for i := range bookings {
		list.Bookings = append(list.Bookings, toBookingResponse(&bookings[i]))
	}
	return list, nil
}

// Reschedule moves a booking to a new date and time. Status is unchanged.
func (s *BookingService) Reschedule(ctx context.Context, code string, req entities.RescheduleRequest) error {
	if _, err := time.Parse(dateLayout, req.Date); err != nil {
		return httperrors.Validation("date", "date must be YYYY-MM-DD")
	}
	if _, err := schedule.MinutesOfDay(req.Time); err != nil {
		return httperrors.Validation("time", "time must be HH:MM")
	}
	booking, err := s.Bookings.GetByCode(ctx, code)
	if err != nil {
		return err
	}
	if booking.Status == BookingCancelled || booking.Status == BookingCompleted {
		return httperrors.Validation("status", "only pending or confirmed bookings can be rescheduled")
	}
	return s.Bookings.Reschedule(ctx, code, req.Date, req.Time)
}

// Cancel flips the booking to cancelled. Cancellation is a status, not a
// deletion.
func (s *BookingService) Cancel(ctx context.Context, code string) error {
	return s.transition(ctx, code, BookingCancelled)
}

// Complete is the technician/admin transition confirmed -> completed.
func (s *BookingService) Complete(ctx context.Context, code string) error {
	return s.transition(ctx, code, BookingCompleted)
}

func (s *BookingService) transition(ctx context.Context, code, to string) error {
	booking, err := s.Bookings.GetByCode(ctx, code)
	if err != nil {
		return err
	}
	if !CanTransition(booking.Status, to) {
		return httperrors.Validation("status", fmt.Sprintf("cannot move booking from %s to %s", booking.Status, to))
	}
	if err := s.Bookings.UpdateStatus(ctx, code, to); err != nil {
		return err
	}
	if to == BookingCancelled && s.Sender != nil {
		resp := toBookingResponse(booking)
		resp.Status = to
		s.Sender.NotifyBooking(resp, to)
	}
	return nil
}

// ConfirmBySession handles the paid checkout webhook: pending -> confirmed,
// then notifications.
func (s *BookingService) ConfirmBySession(ctx context.Context, sessionID string) error {
	if err := s.Bookings.UpdateStatusBySessionID(ctx, sessionID, BookingConfirmed); err != nil {
		return err
	}
	booking, err := s.Bookings.GetBySessionID(ctx, sessionID)
	if err != nil {
		return err
	}
	if s.Sender != nil {
		resp := toBookingResponse(booking)
		s.Sender.NotifyBooking(resp, BookingConfirmed)
	}
	return nil
}

func (s *BookingService) DeleteByID(ctx context.Context, id int) error {
	return s.Bookings.DeleteByID(ctx, id)
}

// CanTransition encodes the booking status machine: pending -> confirmed ->
// completed, with cancellation allowed from pending and confirmed.
func CanTransition(from, to string) bool {
	switch to {
	case BookingConfirmed:
		return from == BookingPending
	case BookingCompleted:
		return from == BookingConfirmed
	case BookingCancelled:
		return from == BookingPending || from == BookingConfirmed
	default:
		return false
	}
}

func validateBookingRequest(req entities.BookingRequest) error {
	if req.Service == "" {
		return httperrors.Validation("service", "service is required")
	}
	if req.CustomerName == "" {
		return httperrors.Validation("customer_name", "name is required")
	}
	if req.CustomerEmail == "" {
		return httperrors.Validation("customer_email", "email is required")
	}
	if _, err := time.Parse(dateLayout, req.Date); err != nil {
		return httperrors.Validation("date", "date must be YYYY-MM-DD")
	}
	if _, err := schedule.MinutesOfDay(req.Time); err != nil {
		return httperrors.Validation("time", "time must be HH:MM")
	}
	return nil
}

func toBookingResponse(b *db.Booking) entities.BookingResponse {
	return entities.BookingResponse{
		Code:          b.Code,
		TenantID:      b.TenantID,
		Service:       b.Service,
		Date:          b.Date,
		Time:          b.StartTime,
		CustomerName:  b.CustomerName,
		CustomerEmail: b.CustomerEmail,
		CustomerPhone: b.CustomerPhone,
		Status:        b.Status,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}
