package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/samueljjenkins/servicehomie-sub001/internal/db"
)

type TechnicianRepository struct {
	DB *sql.DB
}

func NewTechnicianRepository(database *sql.DB) *TechnicianRepository {
	return &TechnicianRepository{DB: database}
}

// UpsertByUserID provisions a profile for an identity-provider user.
// Idempotent so redelivered user.created webhooks are harmless.
func (r *TechnicianRepository) UpsertByUserID(ctx context.Context, userID, tenantID, name, email string) (*db.TechnicianProfile, error) {
	var p db.TechnicianProfile
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO technician_profiles (user_id, tenant_id, name, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email, updated_at = NOW()
		RETURNING id, tenant_id, user_id, name, email, created_at, updated_at`,
		userID, tenantID, name, email,
	).Scan(&p.ID, &p.TenantID, &p.UserID, &p.Name, &p.Email, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("error upserting technician profile for user %s: %w", userID, err)
	}
	return &p, nil
}

func (r *TechnicianRepository) GetByUserID(ctx context.Context, userID string) (*db.TechnicianProfile, error) {
	var p db.TechnicianProfile
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, tenant_id, user_id, name, email, created_at, updated_at
		FROM technician_profiles WHERE user_id = $1`, userID,
	).Scan(&p.ID, &p.TenantID, &p.UserID, &p.Name, &p.Email, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("error querying technician profile for user %s: %w", userID, err)
	}
	return &p, nil
}

func (r *TechnicianRepository) GetByID(ctx context.Context, id int) (*db.TechnicianProfile, error) {
	var p db.TechnicianProfile
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, tenant_id, user_id, name, email, created_at, updated_at
		FROM technician_profiles WHERE id = $1`, id,
	).Scan(&p.ID, &p.TenantID, &p.UserID, &p.Name, &p.Email, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("error querying technician profile %d: %w", id, err)
	}
	return &p, nil
}
