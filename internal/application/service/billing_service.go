package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/sangkips/tableorder-api/internal/domain/billing"
	"github.com/sangkips/tableorder-api/internal/domain/entity"
	"github.com/sangkips/tableorder-api/internal/infrastructure/metrics"
	"github.com/shopspring/decimal"
)

const (
	settingsAttempts = 3
	settingsBackoff  = 100 * time.Millisecond
)

// SettingsProvider supplies the settings snapshot a bill is computed against
type SettingsProvider interface {
	Snapshot(ctx context.Context) (*entity.SettingsSnapshot, error)
}

// BillingService wraps the bill calculation with settings retrieval
type BillingService struct {
	settings SettingsProvider
	attempts int
	backoff  time.Duration
}

// NewBillingService creates a new billing service
func NewBillingService(settings SettingsProvider) *BillingService {
	return &BillingService{
		settings: settings,
		attempts: settingsAttempts,
		backoff:  settingsBackoff,
	}
}

// WithRetry overrides the settings retry policy
func (s *BillingService) WithRetry(attempts int, backoff time.Duration) *BillingService {
	if attempts < 1 {
		attempts = 1
	}
	s.attempts = attempts
	s.backoff = backoff
	return s
}

// Settings reads the settings snapshot, retrying with linear backoff. When the
// store stays unavailable the defaults are returned and usedDefaults is true.
// Only context cancellation is returned as an error.
func (s *BillingService) Settings(ctx context.Context) (snapshot *entity.SettingsSnapshot, usedDefaults bool, err error) {
	var lastErr error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		snapshot, lastErr = s.settings.Snapshot(ctx)
		if lastErr == nil {
			return snapshot, false, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, false, ctxErr
		}
		if attempt == s.attempts {
			break
		}

		timer := time.NewTimer(s.backoff * time.Duration(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, false, ctx.Err()
		case <-timer.C:
		}
	}

	log.Printf("settings unavailable after %d attempts, using defaults: %v", s.attempts, lastErr)
	metrics.SettingsFallbacks.Inc()
	return &entity.SettingsSnapshot{
		Billing:    billing.DefaultSettings(),
		Restaurant: entity.DefaultRestaurantInfo(),
	}, true, nil
}

// BillResult is a computed bill with the settings it was computed against
type BillResult struct {
	Bill                 *billing.DiscountedBill
	Snapshot             *entity.SettingsSnapshot
	ComputedWithDefaults bool
}

// Calculate prices a cart under the current settings. A discount, when non-zero,
// is shown as its own line below the final total.
func (s *BillingService) Calculate(ctx context.Context, items []billing.LineItem, discount decimal.Decimal, couponCode string) (*BillResult, error) {
	snapshot, usedDefaults, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}

	bill, err := s.CalculateWith(snapshot.Billing, items, discount, couponCode)
	if err != nil {
		return nil, err
	}
	if usedDefaults {
		metrics.BillsComputed.WithLabelValues("defaults").Inc()
	}

	return &BillResult{
		Bill:                 bill,
		Snapshot:             snapshot,
		ComputedWithDefaults: usedDefaults,
	}, nil
}

// CalculateWith prices a cart against an already resolved settings value
func (s *BillingService) CalculateWith(settings billing.Settings, items []billing.LineItem, discount decimal.Decimal, couponCode string) (*billing.DiscountedBill, error) {
	bill, err := billing.CalculateBill(items, settings)
	if err != nil {
		if errors.Is(err, billing.ErrInvalidInput) {
			metrics.BillsComputed.WithLabelValues("invalid").Inc()
		}
		return nil, err
	}
	metrics.BillsComputed.WithLabelValues("ok").Inc()

	return billing.ApplyDiscount(bill, discount, couponCode)
}
