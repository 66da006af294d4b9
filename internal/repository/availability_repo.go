package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/samueljjenkins/servicehomie-sub001/internal/db"
	"github.com/samueljjenkins/servicehomie-sub001/internal/schedule"
)

// AvailabilityStore bridges the in-memory weekly schedule and whatever is
// persisting it. The Postgres implementation is the real one; the bbolt
// implementation covers demo deployments with no database configured.
type AvailabilityStore interface {
	Load(ctx context.Context, tenantID string) (schedule.Weekly, error)
	Save(ctx context.Context, tenantID string, weekly schedule.Weekly) error
}

type AvailabilityRepository struct {
	DB *sql.DB
}

func NewAvailabilityRepository(database *sql.DB) *AvailabilityRepository {
	return &AvailabilityRepository{DB: database}
}

func (r *AvailabilityRepository) Load(ctx context.Context, tenantID string) (schedule.Weekly, error) {
	query := `
		SELECT id, tenant_id, day_of_week, start_time, end_time
		FROM availability
		WHERE tenant_id = $1
		ORDER BY day_of_week, start_time`
	rows, err := r.DB.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("error querying availability for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	var rules []db.AvailabilityRule
	for rows.Next() {
		var rule db.AvailabilityRule
		if err := rows.Scan(&rule.ID, &rule.TenantID, &rule.DayOfWeek, &rule.StartTime, &rule.EndTime); err != nil {
			return nil, fmt.Errorf("error scanning availability rule: %w", err)
		}
		rules = append(rules, rule)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating availability rows: %w", err)
	}
	return FoldRules(rules), nil
}

// Save replaces all of a tenant's availability rows in one transaction so a
// concurrent reader never observes the half-empty state between the delete
// and the inserts. Two concurrent saves still race last-write-wins; known
// limitation for a single-operator dashboard.
func (r *AvailabilityRepository) Save(ctx context.Context, tenantID string, weekly schedule.Weekly) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting availability save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM availability WHERE tenant_id = $1`, tenantID); err != nil {
		return fmt.Errorf("error clearing availability for tenant %s: %w", tenantID, err)
	}
	for _, rule := range FlattenWeekly(tenantID, weekly) {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO availability (tenant_id, day_of_week, start_time, end_time) VALUES ($1, $2, $3, $4)`,
			rule.TenantID, rule.DayOfWeek, rule.StartTime, rule.EndTime)
		if err != nil {
			return fmt.Errorf("error inserting availability rule: %w", err)
		}
	}
	return tx.Commit()
}

// FoldRules turns flat per-row windows into the 7-key weekly map. Days with
// no rows stay present and empty.
func FoldRules(rules []db.AvailabilityRule) schedule.Weekly {
	weekly := schedule.DefaultWeekly()
	for _, rule := range rules {
		if rule.DayOfWeek < 0 || rule.DayOfWeek > 6 {
			continue
		}
		day := time.Weekday(rule.DayOfWeek)
		weekly[day] = append(weekly[day], schedule.TimeWindow{Start: rule.StartTime, End: rule.EndTime})
	}
	return weekly
}

// FlattenWeekly is the inverse of FoldRules: one row per window, empty days
// produce nothing.
func FlattenWeekly(tenantID string, weekly schedule.Weekly) []db.AvailabilityRule {
	var rules []db.AvailabilityRule
	for d := time.Sunday; d <= time.Saturday; d++ {
		for _, tw := range weekly[d] {
			rules = append(rules, db.AvailabilityRule{
				TenantID:  tenantID,
				DayOfWeek: int(d),
				StartTime: tw.Start,
				EndTime:   tw.End,
			})
		}
	}
	return rules
}
