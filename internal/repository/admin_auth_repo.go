package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/samueljjenkins/servicehomie-sub001/internal/db"
)

type AdminAuthRepository struct {
	DB *sql.DB
}

func NewAdminAuthRepository(database *sql.DB) *AdminAuthRepository {
	return &AdminAuthRepository{DB: database}
}

func (r *AdminAuthRepository) GetByEmail(ctx context.Context, email string) (*db.AdminUser, error) {
	var admin db.AdminUser
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, email, password_hash FROM admin_users WHERE email = $1`, email,
	).Scan(&admin.ID, &admin.Email, &admin.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying admin user: %w", err)
	}
	return &admin, nil
}

func (r *AdminAuthRepository) Create(ctx context.Context, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("error hashing admin password: %w", err)
	}
	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO admin_users (email, password_hash) VALUES ($1, $2)`, email, string(hash))
	if err != nil {
		return fmt.Errorf("error creating admin user: %w", err)
	}
	return nil
}
