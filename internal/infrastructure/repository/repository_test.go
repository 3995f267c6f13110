package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tableorder-api/internal/domain/entity"
	"github.com/sangkips/tableorder-api/internal/domain/enum"
	domainRepo "github.com/sangkips/tableorder-api/internal/domain/repository"
	"github.com/sangkips/tableorder-api/internal/infrastructure/database"
	"github.com/sangkips/tableorder-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
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

func seedMenuItem(t *testing.T, db *gorm.DB, name string, price string, available bool) *entity.MenuItem {
	t.Helper()
	ctx := context.Background()
	categories := NewCategoryRepository(db)
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
	require.NoError(t, NewMenuItemRepository(db).Create(ctx, item))
	return item
}

func TestMenuItemRepository_ListAndUpdate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewMenuItemRepository(db)

	paneer := seedMenuItem(t, db, "Paneer Tikka", "180", true)
	seedMenuItem(t, db, "Veg Biryani", "220", false)

	items, total, err := repo.List(ctx, &domainRepo.MenuItemFilterParams{AvailableOnly: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "Paneer Tikka", items[0].Name)
	assert.Len(t, items[0].AddOns, 1)

	items, _, err = repo.List(ctx, &domainRepo.MenuItemFilterParams{Search: "BIRYANI"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.False(t, items[0].IsAvailable)

	paneer.AddOns = []entity.AddOn{{Name: "Mint Chutney", Price: dec("10")}, {Name: "Butter", Price: dec("15")}}
	paneer.Price = dec("190")
	require.NoError(t, repo.Update(ctx, paneer))

	reloaded, err := repo.GetByID(ctx, paneer.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.Price.Equal(dec("190")))
	assert.Len(t, reloaded.AddOns, 2)

	require.NoError(t, repo.SetAvailability(ctx, paneer.ID, false))
	assert.ErrorIs(t, repo.SetAvailability(ctx, uuid.New(), true), gorm.ErrRecordNotFound)

	got, err := repo.GetByIDs(ctx, []uuid.UUID{paneer.ID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.False(t, got[0].IsAvailable)
}

func newOrder(sessionPhone string, table int, total string) *entity.Order {
	return &entity.Order{
		SessionID:      entity.SessionIDFor(sessionPhone, table),
		TableNumber:    table,
		CustomerPhone:  sessionPhone,
		Status:         enum.OrderStatusPending,
		OriginalTotal:  dec(total),
		DiscountAmount: decimal.Zero,
		Total:          dec(total),
		Items: []entity.OrderItem{{
			MenuItemName: "Masala Dosa",
			Quantity:     2,
			ItemPrice:    dec("100"),
			GSTRate:      dec("5"),
			LineTotal:    dec("200"),
		}},
	}
}

func TestOrderRepository_SessionAndSettle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewOrderRepository(db)

	first := newOrder("9876543210", 4, "230")
	second := newOrder("9876543210", 4, "115")
	other := newOrder("9123456780", 5, "50")
	for _, o := range []*entity.Order{first, second, other} {
		require.NoError(t, repo.Create(ctx, o))
	}

	orders, err := repo.ListBySession(ctx, "9876543210_table_4", true)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Len(t, orders[0].Items, 1)

	paidAt := time.Date(2026, 3, 14, 20, 30, 0, 0, time.UTC)
	settlement := &domainRepo.Settlement{
		OrderIDs:      []uuid.UUID{first.ID, second.ID},
		PaymentMethod: "cash",
		PaidAt:        paidAt,
		Records: []entity.PaymentRecord{
			{OrderID: first.ID, TableNumber: 4, TotalAmount: dec("230"), PaymentMethod: "cash", OrderDate: paidAt, PaymentDate: paidAt, PaymentDay: "2026-03-14", PaymentHour: 20},
			{OrderID: second.ID, TableNumber: 4, TotalAmount: dec("115"), PaymentMethod: "cash", OrderDate: paidAt, PaymentDate: paidAt, PaymentDay: "2026-03-14", PaymentHour: 20},
		},
	}
	require.NoError(t, repo.Settle(ctx, settlement))

	orders, err = repo.ListBySession(ctx, "9876543210_table_4", true)
	require.NoError(t, err)
	assert.Empty(t, orders)

	paid, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.OrderStatusCompleted, paid.Status)
	assert.True(t, paid.ReadyToPay)
	assert.True(t, paid.IsPaid())

	// Paying again must not duplicate analytics rows
	settlement.Records = []entity.PaymentRecord{{OrderID: uuid.New(), TotalAmount: dec("1"), PaymentMethod: "cash", PaymentDay: "2026-03-14"}}
	assert.ErrorIs(t, repo.Settle(ctx, settlement), domainRepo.ErrAlreadySettled)

	var records int64
	db.Model(&entity.PaymentRecord{}).Count(&records)
	assert.Equal(t, int64(2), records)

	table := 5
	list, total, err := repo.List(ctx, &domainRepo.OrderFilterParams{
		Pagination:  pagination.DefaultPagination(),
		TableNumber: &table,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, other.ID, list[0].ID)
}

func newCoupon(t *testing.T, db *gorm.DB, code string, expires time.Time) *entity.Coupon {
	t.Helper()
	ctx := context.Background()
	repo := NewCouponRepository(db)
	couponType, err := repo.GetTypeByName(ctx, enum.CouponTypeCampaign)
	require.NoError(t, err)
	coupon := &entity.Coupon{
		Code:               code,
		TypeID:             couponType.ID,
		CustomerPhone:      "9876543210",
		DiscountType:       enum.DiscountTypeFixed,
		DiscountValue:      dec("50"),
		MinimumOrderAmount: dec("100"),
		ExpiresAt:          expires,
		GeneratedBy:        "admin",
	}
	require.NoError(t, repo.Create(ctx, coupon))
	return coupon
}

func TestCouponRepository_RedeemOnce(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewCouponRepository(db)
	coupon := newCoupon(t, db, "SAVE50AB", time.Now().Add(24*time.Hour))

	usage := func() *entity.CouponUsage {
		return &entity.CouponUsage{
			CouponID:        coupon.ID,
			OrderID:         uuid.New(),
			CustomerPhone:   coupon.CustomerPhone,
			OriginalTotal:   dec("230"),
			DiscountApplied: dec("50"),
			FinalTotal:      dec("180"),
			UsedAt:          time.Now(),
		}
	}

	require.NoError(t, repo.Redeem(ctx, usage()))
	assert.ErrorIs(t, repo.Redeem(ctx, usage()), domainRepo.ErrCouponAlreadyUsed)

	got, err := repo.GetByCode(ctx, "save50ab")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.IsUsed)
	assert.NotNil(t, got.UsedInOrderID)

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalUsedCoupons)
	assert.True(t, stats.TotalSavingsProvided.Equal(dec("50")))
}

func TestOrderRepository_CreateWithCoupon(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	orders := NewOrderRepository(db)
	coupon := newCoupon(t, db, "TABLE4AB", time.Now().Add(24*time.Hour))

	usage := func() *entity.CouponUsage {
		return &entity.CouponUsage{
			CouponID:        coupon.ID,
			CustomerPhone:   coupon.CustomerPhone,
			OriginalTotal:   dec("230"),
			DiscountApplied: dec("50"),
			FinalTotal:      dec("180"),
			UsedAt:          time.Now(),
		}
	}

	first := newOrder("9876543210", 4, "180")
	require.NoError(t, orders.CreateWithCoupon(ctx, first, usage()))

	// The losing order is rolled back together with the redemption
	second := newOrder("9876543210", 4, "180")
	assert.ErrorIs(t, orders.CreateWithCoupon(ctx, second, usage()), domainRepo.ErrCouponAlreadyUsed)

	got, err := orders.GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	redeemed, err := NewCouponRepository(db).GetByID(ctx, coupon.ID)
	require.NoError(t, err)
	require.NotNil(t, redeemed.UsedInOrderID)
	assert.Equal(t, first.ID, *redeemed.UsedInOrderID)
}

func TestCouponRepository_ListByStatus(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewCouponRepository(db)
	now := time.Now()

	newCoupon(t, db, "FRESH001", now.Add(48*time.Hour))
	newCoupon(t, db, "STALE001", now.Add(-time.Hour))
	used := newCoupon(t, db, "USED0001", now.Add(48*time.Hour))
	require.NoError(t, repo.Redeem(ctx, &entity.CouponUsage{
		CouponID: used.ID, OrderID: uuid.New(), CustomerPhone: used.CustomerPhone,
		OriginalTotal: dec("100"), DiscountApplied: dec("50"), FinalTotal: dec("50"), UsedAt: now,
	}))

	count := func(status enum.CouponStatus) int64 {
		_, total, err := repo.List(ctx, &domainRepo.CouponFilterParams{
			Pagination: pagination.DefaultPagination(),
			Status:     &status,
			Now:        now,
		})
		require.NoError(t, err)
		return total
	}
	assert.Equal(t, int64(1), count(enum.CouponStatusUsed))
	assert.Equal(t, int64(1), count(enum.CouponStatusUnused))
	assert.Equal(t, int64(1), count(enum.CouponStatusExpired))

	coupons, total, err := repo.List(ctx, &domainRepo.CouponFilterParams{Search: "stale", Type: "campaign"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.NotNil(t, coupons[0].Type)
	assert.Equal(t, enum.CouponTypeCampaign, coupons[0].Type.Name)
}

func TestCustomerRepository_UpsertAndTiers(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewCustomerRepository(db)

	table := 3
	first := &entity.Customer{Phone: "9876543210", LastTableNumber: &table}
	require.NoError(t, repo.Upsert(ctx, first))
	id := first.ID

	table = 7
	again := &entity.Customer{Phone: "9876543210", LastTableNumber: &table}
	require.NoError(t, repo.Upsert(ctx, again))
	assert.Equal(t, id, again.ID)
	assert.Equal(t, 7, *again.LastTableNumber)

	for i := 0; i < 10; i++ {
		require.NoError(t, repo.RecordOrder(ctx, "9876543210", dec("100.50"), 7, time.Now()))
	}
	require.NoError(t, repo.Upsert(ctx, &entity.Customer{Phone: "9123456780"}))
	require.NoError(t, repo.Upsert(ctx, &entity.Customer{Phone: "9000000001"}))
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.RecordOrder(ctx, "9000000001", dec("10"), 1, time.Now()))
	}

	vip, err := repo.GetByPhone(ctx, "9876543210")
	require.NoError(t, err)
	assert.Equal(t, 10, vip.TotalOrders)
	assert.True(t, vip.TotalSpent.Equal(dec("1005")))
	assert.Equal(t, entity.CustomerTierVIP, vip.Tier())

	counts, err := repo.TierCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, &domainRepo.CustomerTierCounts{Total: 3, New: 1, Regular: 1, VIP: 1}, counts)

	list, total, err := repo.List(ctx, &domainRepo.CustomerFilterParams{
		Pagination: pagination.DefaultPagination(),
		SortBy:     "total_orders",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, "9876543210", list[0].Phone)
}

func TestSettingsRepository_Upsert(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewSettingsRepository(db)

	require.NoError(t, repo.Upsert(ctx, []entity.GlobalSetting{
		{SettingKey: "service_charge_enabled", SettingValue: "false", SettingType: enum.SettingTypeBoolean},
		{SettingKey: "happy_hour", SettingValue: "17", SettingType: enum.SettingTypeNumber},
	}))

	rows, err := repo.GetByKeys(ctx, []string{"service_charge_enabled", "happy_hour", "missing"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		if row.SettingKey == "service_charge_enabled" {
			enabled, err := row.Bool()
			require.NoError(t, err)
			assert.False(t, enabled)
		}
	}

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(entity.DefaultGlobalSettings())+1)
}

func TestAnalyticsRepository_Aggregates(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	orders := NewOrderRepository(db)
	analytics := NewAnalyticsRepository(db)

	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	pay := func(phone string, table int, total string, hour int) {
		o := newOrder(phone, table, total)
		require.NoError(t, orders.Create(ctx, o))
		at := day.Add(time.Duration(hour) * time.Hour)
		require.NoError(t, orders.Settle(ctx, &domainRepo.Settlement{
			OrderIDs:      []uuid.UUID{o.ID},
			PaymentMethod: "cash",
			PaidAt:        at,
			Records: []entity.PaymentRecord{{
				OrderID: o.ID, TableNumber: table, CustomerPhone: phone, TotalAmount: dec(total),
				PaymentMethod: "cash", OrderDate: at, PaymentDate: at,
				PaymentDay: at.Format("2006-01-02"), PaymentHour: at.Hour(),
			}},
		}))
	}
	pay("9876543210", 1, "230", 13)
	pay("9876543210", 1, "100", 13)
	pay("9123456780", 2, "70.50", 20)

	revenue, err := analytics.GetRevenue(ctx, day, day.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(3), revenue.Orders)
	assert.True(t, revenue.Revenue.Equal(dec("400.5")), revenue.Revenue.String())

	daily, err := analytics.GetDailySummary(ctx, day.Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, daily, 1)
	assert.Equal(t, "2026-03-14", daily[0].Date)
	assert.Equal(t, int64(2), daily[0].UniqueCustomers)
	assert.Equal(t, int64(2), daily[0].TablesServed)

	items, err := analytics.GetPopularItems(ctx, day, 5)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(6), items[0].TotalQuantity)

	tables, err := analytics.GetTablePerformance(ctx, day)
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, 1, tables[0].TableNumber)
	assert.True(t, tables[0].AverageOrderValue.Equal(dec("165")))

	hours, err := analytics.GetHourlyDistribution(ctx, day)
	require.NoError(t, err)
	require.Len(t, hours, 2)
	assert.Equal(t, 13, hours[0].Hour)
	assert.Equal(t, int64(2), hours[0].OrderCount)
}

func TestIdempotencyRepository_Scoped(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewIdempotencyRepository(db)

	require.NoError(t, repo.Create(ctx, &entity.IdempotencyKey{
		Key: "abc", Scope: "9876543210_table_4", Endpoint: "POST /api/v1/orders",
		ResponseCode: 201, ResponseBody: `{}`, ExpiresAt: time.Now().Add(time.Hour),
	}))
	require.NoError(t, repo.Create(ctx, &entity.IdempotencyKey{
		Key: "abc", Scope: "9123456780_table_1", Endpoint: "POST /api/v1/orders",
		ResponseCode: 201, ExpiresAt: time.Now().Add(-time.Hour),
	}))

	got, err := repo.GetByKey(ctx, "abc", "9876543210_table_4")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 201, got.ResponseCode)

	deleted, err := repo.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}
