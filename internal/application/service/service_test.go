package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sangkips/tableorder-api/internal/domain/entity"
	"github.com/sangkips/tableorder-api/internal/domain/enum"
	"github.com/sangkips/tableorder-api/internal/infrastructure/cache"
	"github.com/sangkips/tableorder-api/internal/infrastructure/database"
	"github.com/sangkips/tableorder-api/internal/infrastructure/events"
	"github.com/sangkips/tableorder-api/internal/infrastructure/repository"
	"github.com/sangkips/tableorder-api/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testNow = time.Date(2026, 10, 16, 13, 30, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open("file:svc_"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	require.NoError(t, database.SeedDefaultData(db))
	return db
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got.String())
}

func assertStatus(t *testing.T, want int, err error) {
	t.Helper()
	require.Error(t, err)
	appErr := apperror.GetAppError(err)
	require.NotNil(t, appErr, "expected an app error, got %v", err)
	assert.Equal(t, want, appErr.Code, appErr.Message)
}

func newSettingsService(db *gorm.DB) *SettingsService {
	return NewSettingsService(repository.NewSettingsRepository(db), cache.NoopSettingsCache{})
}

func seedMenuItem(t *testing.T, db *gorm.DB, name, price string, available bool) *entity.MenuItem {
	t.Helper()
	ctx := context.Background()
	categories := repository.NewCategoryRepository(db)
	category, err := categories.GetByName(ctx, "Mains")
	require.NoError(t, err)
	if category == nil {
		category = &entity.Category{Name: "Mains", IsActive: true}
		require.NoError(t, categories.Create(ctx, category))
	}
	item := &entity.MenuItem{
		CategoryID:  category.ID,
		Name:        name,
		Price:       dec(price),
		FoodType:    enum.FoodTypeVeg,
		IsAvailable: available,
		GSTRate:     dec("5"),
		AddOns:      []entity.AddOn{{Name: "Extra Cheese", Price: dec("20")}},
	}
	menuRepo := repository.NewMenuItemRepository(db)
	require.NoError(t, menuRepo.Create(ctx, item))
	stored, err := menuRepo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	return stored
}

func seedCoupon(t *testing.T, db *gorm.DB, code, phone string, expires time.Time) *entity.Coupon {
	t.Helper()
	ctx := context.Background()
	repo := repository.NewCouponRepository(db)
	couponType, err := repo.GetTypeByName(ctx, enum.CouponTypeCampaign)
	require.NoError(t, err)
	coupon := &entity.Coupon{
		Code:               code,
		TypeID:             couponType.ID,
		CustomerPhone:      phone,
		DiscountType:       enum.DiscountTypeFixed,
		DiscountValue:      dec("50"),
		MinimumOrderAmount: dec("100"),
		ExpiresAt:          expires,
		GeneratedBy:        "admin",
	}
	require.NoError(t, repo.Create(ctx, coupon))
	return coupon
}

// failingSettings fails a fixed number of times before delegating
type failingSettings struct {
	mu       sync.Mutex
	failures int
	calls    int
	next     SettingsProvider
}

func (f *failingSettings) Snapshot(ctx context.Context) (*entity.SettingsSnapshot, error) {
	f.mu.Lock()
	f.calls++
	fail := f.calls <= f.failures
	f.mu.Unlock()
	if fail || f.next == nil {
		return nil, errors.New("settings store unavailable")
	}
	return f.next.Snapshot(ctx)
}

type sentMessage struct {
	phone string
	body  string
}

type fakeSender struct {
	err  error
	sent []sentMessage
}

func (f *fakeSender) SendText(_ context.Context, phone, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMessage{phone: phone, body: body})
	return nil
}

type publishedEvent struct {
	eventType events.EventType
	key       string
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, eventType events.EventType, key string, _ interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{eventType: eventType, key: key})
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []events.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.eventType)
	}
	return out
}

type recordingPrinter struct {
	printed []*entity.BillReceipt
}

func (p *recordingPrinter) PrintBill(receipt *entity.BillReceipt) error {
	p.printed = append(p.printed, receipt)
	return nil
}
