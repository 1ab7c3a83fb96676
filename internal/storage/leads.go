package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"leadpipe/internal/models"
)

// ErrNotFound is returned when no cached record exists for a lead id.
var ErrNotFound = errors.New("lead not found")

const leadKeyPrefix = "lead:"

// LeadStore caches finalized lead records in Redis so later
// questionnaire submissions can recover the Amanda score without a
// round trip through the sinks.
type LeadStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewLeadStore(client *redis.Client, ttl time.Duration) *LeadStore {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &LeadStore{client: client, ttl: ttl}
}

func (s *LeadStore) Save(ctx context.Context, rec *models.LeadRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal lead record: %w", err)
	}
	if err := s.client.Set(ctx, leadKeyPrefix+rec.LeadID, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("cache lead record: %w", err)
	}
	return nil
}

func (s *LeadStore) Get(ctx context.Context, leadID string) (*models.LeadRecord, error) {
	raw, err := s.client.Get(ctx, leadKeyPrefix+leadID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read lead record: %w", err)
	}
	var rec models.LeadRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode lead record: %w", err)
	}
	return &rec, nil
}
