package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tableorder-api/internal/domain/entity"
	"github.com/sangkips/tableorder-api/internal/domain/enum"
	"github.com/sangkips/tableorder-api/internal/infrastructure/events"
	"github.com/sangkips/tableorder-api/internal/infrastructure/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const dinerPhone = "9876543210"

type orderFixture struct {
	db        *gorm.DB
	orders    *OrderService
	coupons   *CouponService
	dashboard *DashboardService
	publisher *recordingPublisher
	printer   *recordingPrinter
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	db := newTestDB(t)
	settings := newSettingsService(db)
	publisher := &recordingPublisher{}
	printer := &recordingPrinter{}

	orderRepo := repository.NewOrderRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	require.NoError(t, customerRepo.Upsert(context.Background(), &entity.Customer{Phone: dinerPhone}))

	coupons := NewCouponService(repository.NewCouponRepository(db), orderRepo, settings, &fakeSender{}, publisher)
	coupons.now = func() time.Time { return testNow }

	orders := NewOrderService(
		orderRepo,
		repository.NewMenuItemRepository(db),
		customerRepo,
		coupons,
		NewBillingService(settings),
		publisher,
		printer,
		time.UTC,
	)
	orders.now = func() time.Time { return testNow }

	dashboard := NewDashboardService(repository.NewAnalyticsRepository(db), orderRepo, customerRepo, time.UTC)
	dashboard.now = func() time.Time { return testNow }

	return &orderFixture{
		db:        db,
		orders:    orders,
		coupons:   coupons,
		dashboard: dashboard,
		publisher: publisher,
		printer:   printer,
	}
}

func placeInput(items ...OrderItemInput) *PlaceOrderInput {
	return &PlaceOrderInput{
		Phone:       dinerPhone,
		TableNumber: 4,
		Items:       items,
	}
}

func TestOrderService_PlaceOrderPricesFromMenu(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	paneer := seedMenuItem(t, f.db, "Paneer Tikka", "180", true)

	out, err := f.orders.PlaceOrder(ctx, placeInput(OrderItemInput{
		MenuItemID:     paneer.ID,
		Quantity:       2,
		SelectedAddOns: []uuid.UUID{paneer.AddOns[0].ID},
	}))
	require.NoError(t, err)

	// (180 + 20) x 2 = 400, GST 2.5% + 2.5%, service 10%
	assertDec(t, "400", out.Bill.Subtotal)
	assertDec(t, "10", out.Bill.CGSTAmount)
	assertDec(t, "40", out.Bill.ServiceChargeAmount)
	assertDec(t, "460", out.Bill.FinalTotal)
	assert.False(t, out.ComputedWithDefaults)

	order := out.Order
	assert.Equal(t, enum.OrderStatusPending, order.Status)
	assert.Equal(t, "9876543210_table_4", order.SessionID)
	assertDec(t, "460", order.OriginalTotal)
	assertDec(t, "0", order.DiscountAmount)
	assertDec(t, "460", order.Total)
	require.Len(t, order.Items, 1)
	assertDec(t, "400", order.Items[0].LineTotal)
	assert.Equal(t, "Extra Cheese", order.Items[0].SelectedAddOns[0].Name)
	assert.Equal(t, []events.EventType{events.EventTypeOrderPlaced}, f.publisher.types())
}

func TestOrderService_PlaceOrderRejectsBadItems(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	paneer := seedMenuItem(t, f.db, "Paneer Tikka", "180", true)
	biryani := seedMenuItem(t, f.db, "Veg Biryani", "220", false)

	tests := []struct {
		name string
		item OrderItemInput
	}{
		{"unknown item", OrderItemInput{MenuItemID: uuid.New(), Quantity: 1}},
		{"unavailable item", OrderItemInput{MenuItemID: biryani.ID, Quantity: 1}},
		{"zero quantity", OrderItemInput{MenuItemID: paneer.ID, Quantity: 0}},
		{"unknown add-on", OrderItemInput{MenuItemID: paneer.ID, Quantity: 1, SelectedAddOns: []uuid.UUID{uuid.New()}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.orders.PlaceOrder(ctx, placeInput(tt.item))
			assertStatus(t, http.StatusUnprocessableEntity, err)
		})
	}

	_, err := f.orders.PlaceOrder(ctx, placeInput())
	assertStatus(t, http.StatusUnprocessableEntity, err)
}

func TestOrderService_PlaceOrderWithCoupon(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	paneer := seedMenuItem(t, f.db, "Paneer Tikka", "180", true)
	coupon := seedCoupon(t, f.db, "SAVE50AB", dinerPhone, testNow.Add(24*time.Hour))

	input := placeInput(OrderItemInput{MenuItemID: paneer.ID, Quantity: 1})
	input.CouponCode = "save50ab"

	out, err := f.orders.PlaceOrder(ctx, input)
	require.NoError(t, err)
	assertDec(t, "207", out.Order.OriginalTotal)
	assertDec(t, "50", out.Order.DiscountAmount)
	assertDec(t, "157", out.Order.Total)
	assert.Equal(t, "SAVE50AB", *out.Order.CouponCode)
	assert.Equal(t, coupon.ID, *out.Order.CouponID)
	assert.Equal(t, []events.EventType{events.EventTypeOrderPlaced, events.EventTypeCouponRedeemed}, f.publisher.types())

	// the coupon is single use
	_, err = f.orders.PlaceOrder(ctx, input)
	assertStatus(t, http.StatusUnprocessableEntity, err)
}

func TestOrderService_PlaceOrderCouponForAnotherPhone(t *testing.T) {
	f := newOrderFixture(t)
	paneer := seedMenuItem(t, f.db, "Paneer Tikka", "180", true)
	seedCoupon(t, f.db, "OTHER123", "9123456780", testNow.Add(24*time.Hour))

	input := placeInput(OrderItemInput{MenuItemID: paneer.ID, Quantity: 1})
	input.CouponCode = "OTHER123"

	_, err := f.orders.PlaceOrder(context.Background(), input)
	assertStatus(t, http.StatusUnprocessableEntity, err)
}

func TestOrderService_BillAndPay(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	paneer := seedMenuItem(t, f.db, "Paneer Tikka", "180", true)
	seedCoupon(t, f.db, "SAVE50AB", dinerPhone, testNow.Add(24*time.Hour))

	first := placeInput(OrderItemInput{MenuItemID: paneer.ID, Quantity: 2, SelectedAddOns: []uuid.UUID{paneer.AddOns[0].ID}})
	first.CouponCode = "SAVE50AB"
	placed, err := f.orders.PlaceOrder(ctx, first)
	require.NoError(t, err)
	_, err = f.orders.PlaceOrder(ctx, placeInput(OrderItemInput{MenuItemID: paneer.ID, Quantity: 1}))
	require.NoError(t, err)

	sessionID := placed.Order.SessionID
	receipt, err := f.orders.GetBill(ctx, sessionID)
	require.NoError(t, err)

	// 400 + 180 = 580, GST 14.5 + 14.5, service 58, discount 50
	assertDec(t, "580", receipt.Bill.Subtotal)
	assertDec(t, "14.5", receipt.Bill.CGSTAmount)
	assertDec(t, "58", receipt.Bill.ServiceChargeAmount)
	assertDec(t, "667", receipt.Bill.FinalTotal)
	assertDec(t, "50", receipt.Bill.Discount)
	assertDec(t, "617", receipt.Bill.PayableTotal)
	assert.Len(t, receipt.Items, 2)
	assert.Len(t, receipt.OrderIDs, 2)
	assert.Equal(t, "DYU Art Cafe", receipt.Restaurant.Name)
	assert.False(t, receipt.Paid)

	_, err = f.orders.PayBill(ctx, sessionID, "bitcoin", false)
	assertStatus(t, http.StatusUnprocessableEntity, err)

	paid, err := f.orders.PayBill(ctx, sessionID, PaymentMethodUPI, true)
	require.NoError(t, err)
	assert.True(t, paid.Paid)
	assert.Equal(t, PaymentMethodUPI, paid.PaymentMethod)
	assertDec(t, "617", paid.Bill.PayableTotal)
	require.Len(t, f.printer.printed, 1)
	assert.Contains(t, f.publisher.types(), events.EventTypeBillPaid)

	orders, err := f.orders.SessionOrders(ctx, sessionID)
	require.NoError(t, err)
	for _, o := range orders {
		assert.Equal(t, enum.OrderStatusCompleted, o.Status)
		assert.True(t, o.IsPaid())
		assert.True(t, o.ReadyToPay)
	}

	var records []entity.PaymentRecord
	require.NoError(t, f.db.Order("total_amount DESC").Find(&records).Error)
	require.Len(t, records, 2)
	assertDec(t, "410", records[0].TotalAmount)
	assertDec(t, "50", records[0].DiscountAmount)
	assertDec(t, "207", records[1].TotalAmount)
	assert.Equal(t, "2026-10-16", records[0].PaymentDay)
	assert.Equal(t, 13, records[0].PaymentHour)

	// nothing left to pay
	_, err = f.orders.PayBill(ctx, sessionID, PaymentMethodCash, false)
	assertStatus(t, http.StatusNotFound, err)

	stats, err := f.dashboard.GetDashboardStats(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TodayOrders)
	assertDec(t, "617", stats.TodayRevenue)
	assertDec(t, "308.5", stats.AverageOrderValue)
	assert.Equal(t, int64(0), stats.PendingOrders)
}

func TestOrderService_UpdateOrderStatus(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	paneer := seedMenuItem(t, f.db, "Paneer Tikka", "180", true)

	out, err := f.orders.PlaceOrder(ctx, placeInput(OrderItemInput{MenuItemID: paneer.ID, Quantity: 1}))
	require.NoError(t, err)
	id := out.Order.ID

	order, err := f.orders.UpdateOrderStatus(ctx, id, enum.OrderStatusPreparing)
	require.NoError(t, err)
	assert.Equal(t, enum.OrderStatusPreparing, order.Status)

	_, err = f.orders.UpdateOrderStatus(ctx, id, enum.OrderStatusPending)
	assertStatus(t, http.StatusUnprocessableEntity, err)

	_, err = f.orders.UpdateOrderStatus(ctx, uuid.New(), enum.OrderStatusReady)
	assertStatus(t, http.StatusNotFound, err)

	assert.Contains(t, f.publisher.types(), events.EventTypeOrderStatusChanged)
}

func TestOrderService_ListOrders(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	paneer := seedMenuItem(t, f.db, "Paneer Tikka", "180", true)

	for i := 0; i < 3; i++ {
		_, err := f.orders.PlaceOrder(ctx, placeInput(OrderItemInput{MenuItemID: paneer.ID, Quantity: 1}))
		require.NoError(t, err)
	}

	result, err := f.orders.ListOrders(ctx, &OrderListInput{Status: "pending"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.Pagination.Total)
	assert.Len(t, result.Items, 3)

	_, err = f.orders.ListOrders(ctx, &OrderListInput{Status: "cooking"})
	assertStatus(t, http.StatusUnprocessableEntity, err)
}

func TestOrderService_OrderReceipt(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	paneer := seedMenuItem(t, f.db, "Paneer Tikka", "180", true)

	out, err := f.orders.PlaceOrder(ctx, placeInput(OrderItemInput{MenuItemID: paneer.ID, Quantity: 3}))
	require.NoError(t, err)

	receipt, err := f.orders.OrderReceipt(ctx, out.Order.ID)
	require.NoError(t, err)
	require.Len(t, receipt.Items, 1)
	assert.Equal(t, 3, receipt.Items[0].Quantity)
	assertDec(t, "540", receipt.Items[0].Total)
	assertDec(t, "621", receipt.Bill.PayableTotal)
}
