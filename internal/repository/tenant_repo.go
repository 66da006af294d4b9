package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/samueljjenkins/servicehomie-sub001/internal/db"
)

var ErrTenantNotFound = errors.New("tenant not found")

type TenantRepository struct {
	DB *sql.DB
}

func NewTenantRepository(database *sql.DB) *TenantRepository {
	return &TenantRepository{DB: database}
}

// Upsert creates the tenant on first access, keyed by the external company
// id. Returns the stored row either way.
func (r *TenantRepository) Upsert(ctx context.Context, companyID, name string) (*db.Tenant, error) {
	var t db.Tenant
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO tenants (company_id, name, description, logo_url, created_at, updated_at)
		VALUES ($1, $2, '', '', NOW(), NOW())
		ON CONFLICT (company_id) DO UPDATE SET updated_at = NOW()
		RETURNING id, company_id, name, description, logo_url, created_at, updated_at`,
		companyID, name,
	).Scan(&t.ID, &t.CompanyID, &t.Name, &t.Description, &t.LogoURL, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("error upserting tenant %s: %w", companyID, err)
	}
	return &t, nil
}

func (r *TenantRepository) GetByCompanyID(ctx context.Context, companyID string) (*db.Tenant, error) {
	var t db.Tenant
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, company_id, name, description, logo_url, created_at, updated_at
		FROM tenants WHERE company_id = $1`, companyID,
	).Scan(&t.ID, &t.CompanyID, &t.Name, &t.Description, &t.LogoURL, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("error querying tenant %s: %w", companyID, err)
	}
	return &t, nil
}

func (r *TenantRepository) Update(ctx context.Context, companyID, name, description, logoURL string) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE tenants SET name = $2, description = $3, logo_url = $4, updated_at = NOW()
		WHERE company_id = $1`, companyID, name, description, logoURL)
	if err != nil {
		return fmt.Errorf("error updating tenant %s: %w", companyID, err)
	}
	return nil
}

func (r *TenantRepository) ListServices(ctx context.Context, tenantID string) ([]db.Service, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, tenant_id, name, price FROM services WHERE tenant_id = $1 ORDER BY name`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("error listing services for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	var services []db.Service
	for rows.Next() {
		var s db.Service
		if err := rows.Scan(&s.ID, &s.TenantID, &s.Name, &s.Price); err != nil {
			return nil, fmt.Errorf("error scanning service: %w", err)
		}
		services = append(services, s)
	}
	return services, rows.Err()
}
