package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/samueljjenkins/servicehomie-sub001/internal/db"
)

var ErrBookingNotFound = errors.New("booking not found")

type BookingRepository struct {
	DB *sql.DB
}

func NewBookingRepository(database *sql.DB) *BookingRepository {
	return &BookingRepository{DB: database}
}

const bookingColumns = `id, code, tenant_id, service, date, start_time, customer_name, customer_email, customer_phone, status, stripe_session_id, created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }) (*db.Booking, error) {
	var b db.Booking
	err := row.Scan(
		&b.ID, &b.Code, &b.TenantID, &b.Service, &b.Date, &b.StartTime,
		&b.CustomerName, &b.CustomerEmail, &b.CustomerPhone, &b.Status,
		&b.StripeSessionID, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("error scanning booking: %w", err)
	}
	return &b, nil
}

func (r *BookingRepository) Create(ctx context.Context, b *db.Booking) error {
	query := `
		INSERT INTO bookings
		(code, tenant_id, service, date, start_time, customer_name, customer_email, customer_phone, status, stripe_session_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`
	return r.DB.QueryRowContext(ctx, query,
		b.Code, b.TenantID, b.Service, b.Date, b.StartTime,
		b.CustomerName, b.CustomerEmail, b.CustomerPhone,
		b.Status, b.StripeSessionID, b.CreatedAt, b.UpdatedAt,
	).Scan(&b.ID)
}

func (r *BookingRepository) GetByCode(ctx context.Context, code string) (*db.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE code = $1`
	return scanBooking(r.DB.QueryRowContext(ctx, query, code))
}

func (r *BookingRepository) GetBySessionID(ctx context.Context, sessionID string) (*db.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE stripe_session_id = $1`
	return scanBooking(r.DB.QueryRowContext(ctx, query, sessionID))
}

// List filters by tenant, date and status; empty filters match everything.
// Tenant-less listing is the admin's cross-tenant view.
func (r *BookingRepository) List(ctx context.Context, tenantID, date, status string) ([]db.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE ($1 = '' OR tenant_id = $1)
		  AND ($2 = '' OR date = $2)
		  AND ($3 = '' OR status = $3)
		ORDER BY date, start_time`
	rows, err := r.DB.QueryContext(ctx, query, tenantID, date, status)
	if err != nil {
		return nil, fmt.Errorf("error listing bookings: %w", err)
	}
	defer rows.Close()

	var bookings []db.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, code, status string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE bookings SET status = $2, updated_at = NOW() WHERE code = $1`, code, status)
	if err != nil {
		return fmt.Errorf("error updating booking %s status: %w", code, err)
	}
	return requireRow(res)
}

func (r *BookingRepository) UpdateStatusBySessionID(ctx context.Context, sessionID, status string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE bookings SET status = $2, updated_at = NOW() WHERE stripe_session_id = $1`, sessionID, status)
	if err != nil {
		return fmt.Errorf("error updating booking by session %s: %w", sessionID, err)
	}
	return requireRow(res)
}

// Reschedule moves a booking's date and time; status is untouched.
func (r *BookingRepository) Reschedule(ctx context.Context, code, date, startTime string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE bookings SET date = $2, start_time = $3, updated_at = NOW() WHERE code = $1`,
		code, date, startTime)
	if err != nil {
		return fmt.Errorf("error rescheduling booking %s: %w", code, err)
	}
	return requireRow(res)
}

func (r *BookingRepository) DeleteByID(ctx context.Context, id int) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting booking %d: %w", id, err)
	}
	return nil
}

// DeletePendingOlderThan purges abandoned checkouts left in pending state.
func (r *BookingRepository) DeletePendingOlderThan(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM bookings WHERE status = 'pending' AND created_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("error purging stale pending bookings: %w", err)
	}
	return res.RowsAffected()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return nil
	}
	if n == 0 {
		return ErrBookingNotFound
	}
	return nil
}
