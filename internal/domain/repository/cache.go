package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sangkips/tableorder-api/internal/domain/entity"
)

// ErrCacheMiss is returned by caches when no value is stored
var ErrCacheMiss = errors.New("cache miss")

// SettingsCache stores the resolved settings snapshot between requests
type SettingsCache interface {
	Get(ctx context.Context) (*entity.SettingsSnapshot, error)
	Set(ctx context.Context, snapshot *entity.SettingsSnapshot) error
	Invalidate(ctx context.Context) error
}

// OTPChallenge is a pending phone verification
type OTPChallenge struct {
	CodeHash    string    `json:"code_hash"`
	TableNumber int       `json:"table_number"`
	Attempts    int       `json:"attempts"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// OTPStore keeps pending phone verifications until they expire
type OTPStore interface {
	Save(ctx context.Context, phone string, challenge *OTPChallenge, ttl time.Duration) error
	// Get returns ErrCacheMiss when there is no live challenge for the phone
	Get(ctx context.Context, phone string) (*OTPChallenge, error)
	// IncrementAttempts records a wrong code and returns the new attempt count
	IncrementAttempts(ctx context.Context, phone string) (int, error)
	Delete(ctx context.Context, phone string) error
}
