package service

import (
	"fmt"
	"log"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/samueljjenkins/servicehomie-sub001/internal/config"
	"github.com/samueljjenkins/servicehomie-sub001/internal/entities"
)

// SenderService delivers booking emails and SMS. Delivery is best-effort and
// asynchronous; a failed notification is logged, never surfaced to the
// customer.
type SenderService struct {
	cfg config.Config
}

func NewSenderService(cfg config.Config) *SenderService {
	return &SenderService{cfg: cfg}
}

func (s *SenderService) NotifyBooking(booking entities.BookingResponse, status string) {
	go func() {
		if err := s.sendBookingEmail(booking, status); err != nil {
			log.Printf("Failed to send booking email for %s: %v", booking.Code, err)
		}
	}()
	go func() {
		if err := s.sendBookingSMS(booking, status); err != nil {
			log.Printf("Failed to send booking SMS for %s: %v", booking.Code, err)
		}
	}()
}

func (s *SenderService) sendBookingEmail(booking entities.BookingResponse, status string) error {
	if s.cfg.SendGridAPIKey == "" || s.cfg.SendGridFromEmail == "" {
		return fmt.Errorf("SendGrid is not configured, skipping email")
	}

	data := entities.BookingEmailData{
		CustomerName:  booking.CustomerName,
		BookingCode:   booking.Code,
		Service:       booking.Service,
		DateFormatted: booking.Date,
		TimeFormatted: booking.Time,
		Status:        status,
	}
	subject := fmt.Sprintf("Your booking is %s - Code: %s", data.Status, data.BookingCode)
	body := fmt.Sprintf(
		"Hello %s,\n\nYour booking is %s.\n\n"+
			"Booking Details:\n"+
			"Booking Code: %s\n"+
			"Service: %s\n"+
			"Date: %s at %s\n\n"+
			"Thank you for booking with Service Homie.",
		data.CustomerName, data.Status, data.BookingCode, data.Service, data.DateFormatted, data.TimeFormatted,
	)

	from := mail.NewEmail(s.cfg.SendGridFromName, s.cfg.SendGridFromEmail)
	to := mail.NewEmail(booking.CustomerName, booking.CustomerEmail)
	message := mail.NewSingleEmail(from, subject, to, body, "")

	client := sendgrid.NewSendClient(s.cfg.SendGridAPIKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf("SendGrid returned status %d: %s", response.StatusCode, response.Body)
	}
	log.Printf("Booking email sent to %s (code %s, status %s)", booking.CustomerEmail, booking.Code, status)
	return nil
}

func (s *SenderService) sendBookingSMS(booking entities.BookingResponse, status string) error {
	if s.cfg.TwilioAccountSID == "" || s.cfg.TwilioAuthToken == "" || s.cfg.TwilioFromNumber == "" {
		return fmt.Errorf("Twilio is not configured, skipping SMS")
	}
	if booking.CustomerPhone == "" {
		return nil
	}

	message := fmt.Sprintf("Service Homie: booking %s is %s!\n%s at %s.\nMore details in your email.",
		booking.Code, status, booking.Date, booking.Time)

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: s.cfg.TwilioAccountSID,
		Password: s.cfg.TwilioAuthToken,
	})

	params := &openapi.CreateMessageParams{}
	params.SetTo(booking.CustomerPhone)
	params.SetFrom(s.cfg.TwilioFromNumber)
	params.SetBody(message)

	if _, err := client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}
	log.Printf("Booking SMS sent to %s (code %s, status %s)", booking.CustomerPhone, booking.Code, status)
	return nil
}
