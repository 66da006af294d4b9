package repository

import (
	"context"
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/samueljjenkins/servicehomie-sub001/internal/schedule"
)

var availabilityBucket = []byte("availability")

// LocalAvailabilityStore keeps the weekly schedule in a single-file bbolt
// database keyed by tenant id. Demo-mode substitute for Postgres: same
// single-process persistence semantics, zero cross-device sync.
type LocalAvailabilityStore struct {
	db *bolt.DB
}

func OpenLocalAvailabilityStore(path string) (*LocalAvailabilityStore, error) {
	database, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("error opening local store %s: %w", path, err)
	}
	err = database.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(availabilityBucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("error creating availability bucket: %w", err)
	}
	return &LocalAvailabilityStore{db: database}, nil
}

func (s *LocalAvailabilityStore) Close() error {
	return s.db.Close()
}

func (s *LocalAvailabilityStore) Load(_ context.Context, tenantID string) (schedule.Weekly, error) {
	weekly := schedule.DefaultWeekly()
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(availabilityBucket).Get([]byte(tenantID))
		if raw == nil {
			return nil
		}
		return json.Unmarshal(raw, &weekly)
	})
	if err != nil {
		return nil, fmt.Errorf("error loading local availability for tenant %s: %w", tenantID, err)
	}
	// Unmarshal may drop days that were absent in stored JSON.
	for d, windows := range schedule.DefaultWeekly() {
		if weekly[d] == nil {
			weekly[d] = windows
		}
	}
	return weekly, nil
}

func (s *LocalAvailabilityStore) Save(_ context.Context, tenantID string, weekly schedule.Weekly) error {
	raw, err := json.Marshal(weekly)
	if err != nil {
		return fmt.Errorf("error encoding availability for tenant %s: %w", tenantID, err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(availabilityBucket).Put([]byte(tenantID), raw)
	})
	if err != nil {
		return fmt.Errorf("error saving local availability for tenant %s: %w", tenantID, err)
	}
	return nil
}
