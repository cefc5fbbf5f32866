package otp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/domain"
	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/store"
)

// Store keeps at most one record per email.
type Store interface {
	// Load returns (nil, nil) when no record exists.
	Load(ctx context.Context, email string) (*domain.OtpRecord, error)
	// Save overwrites the record for rec.Email; keep is how long the backend retains it.
	Save(ctx context.Context, rec *domain.OtpRecord, keep time.Duration) error
	Delete(ctx context.Context, email string) error
}

const keyPrefix = "otp:register:"

// KVStore stores records as JSON under otp:register:<email>.
type KVStore struct {
	kv store.KV
}

func NewKVStore(kv store.KV) *KVStore {
	return &KVStore{kv: kv}
}

func recordKey(email string) string {
	return keyPrefix + email
}

func (s *KVStore) Load(ctx context.Context, email string) (*domain.OtpRecord, error) {
	raw, err := s.kv.Get(ctx, recordKey(email))
	if err != nil {
		if errors.Is(err, store.ErrMiss) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load otp record: %w", err)
	}
	var rec domain.OtpRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("failed to decode otp record: %w", err)
	}
	return &rec, nil
}

func (s *KVStore) Save(ctx context.Context, rec *domain.OtpRecord, keep time.Duration) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode otp record: %w", err)
	}
	if err := s.kv.Set(ctx, recordKey(rec.Email), string(b), keep); err != nil {
		return fmt.Errorf("failed to save otp record: %w", err)
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, email string) error {
	if err := s.kv.Del(ctx, recordKey(email)); err != nil {
		return fmt.Errorf("failed to delete otp record: %w", err)
	}
	return nil
}
