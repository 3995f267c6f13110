package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tableorder-api/internal/domain/billing"
	"github.com/sangkips/tableorder-api/internal/domain/entity"
	"github.com/sangkips/tableorder-api/internal/domain/enum"
	"github.com/sangkips/tableorder-api/internal/domain/repository"
	"github.com/sangkips/tableorder-api/internal/infrastructure/events"
	"github.com/sangkips/tableorder-api/internal/infrastructure/metrics"
	"github.com/sangkips/tableorder-api/pkg/apperror"
	"github.com/sangkips/tableorder-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// Payment methods accepted when settling a bill
const (
	PaymentMethodCash = "cash"
	PaymentMethodCard = "card"
	PaymentMethodUPI  = "upi"
)

const maxItemQuantity = 50

// BillPrinter prints a settled bill
type BillPrinter interface {
	PrintBill(receipt *entity.BillReceipt) error
}

// OrderService handles diner orders, table bills and the admin order board
type OrderService struct {
	orderRepo     repository.OrderRepository
	menuRepo      repository.MenuItemRepository
	customerRepo  repository.CustomerRepository
	couponService *CouponService
	billing       *BillingService
	publisher     events.Publisher
	printer       BillPrinter
	location      *time.Location
	now           func() time.Time
}

// NewOrderService creates a new order service. Payment days and hours are
// recorded in loc.
func NewOrderService(
	orderRepo repository.OrderRepository,
	menuRepo repository.MenuItemRepository,
	customerRepo repository.CustomerRepository,
	couponService *CouponService,
	billingService *BillingService,
	publisher events.Publisher,
	printer BillPrinter,
	loc *time.Location,
) *OrderService {
	if loc == nil {
		loc = time.UTC
	}
	return &OrderService{
		orderRepo:     orderRepo,
		menuRepo:      menuRepo,
		customerRepo:  customerRepo,
		couponService: couponService,
		billing:       billingService,
		publisher:     publisher,
		printer:       printer,
		location:      loc,
		now:           time.Now,
	}
}

// OrderItemInput represents one cart line sent by the diner
type OrderItemInput struct {
	MenuItemID     uuid.UUID
	Quantity       int
	SelectedAddOns []uuid.UUID
	Notes          *string
}

// PlaceOrderInput represents a diner's order submission
type PlaceOrderInput struct {
	Phone        string
	TableNumber  int
	SessionID    string
	CustomerName *string
	CouponCode   string
	Items        []OrderItemInput
}

// PlaceOrderOutput is the stored order with the bill it was charged at
type PlaceOrderOutput struct {
	Order                *entity.Order           `json:"order"`
	Bill                 *billing.DiscountedBill `json:"bill"`
	ComputedWithDefaults bool                    `json:"computedWithDefaults"`
}

// PlaceOrder prices the cart from the menu, applies an optional coupon and
// stores the order as pending.
func (s *OrderService) PlaceOrder(ctx context.Context, input *PlaceOrderInput) (*PlaceOrderOutput, error) {
	if len(input.Items) == 0 {
		return nil, apperror.NewFieldError("items", "at least one item is required")
	}

	items, lines, err := s.priceItems(ctx, input.Items)
	if err != nil {
		return nil, err
	}

	snapshot, usedDefaults, err := s.billing.Settings(ctx)
	if err != nil {
		return nil, err
	}

	bill, err := s.billing.CalculateWith(snapshot.Billing, lines, decimal.Zero, "")
	if err != nil {
		return nil, err
	}

	var validation *CouponValidation
	couponCode := strings.ToUpper(strings.TrimSpace(input.CouponCode))
	if couponCode != "" {
		validation, err = s.couponService.ValidateCoupon(ctx, couponCode, input.Phone, bill.FinalTotal)
		if err != nil {
			return nil, err
		}
		if !validation.IsValid {
			return nil, apperror.NewFieldError("couponCode", validation.Error)
		}
		bill, err = s.billing.CalculateWith(snapshot.Billing, lines, validation.DiscountAmount, couponCode)
		if err != nil {
			return nil, err
		}
	}

	sessionID := input.SessionID
	if sessionID == "" {
		sessionID = entity.SessionIDFor(input.Phone, input.TableNumber)
	}

	order := &entity.Order{
		SessionID:      sessionID,
		TableNumber:    input.TableNumber,
		CustomerPhone:  input.Phone,
		CustomerName:   input.CustomerName,
		Status:         enum.OrderStatusPending,
		OriginalTotal:  bill.FinalTotal,
		DiscountAmount: bill.Discount,
		Total:          bill.PayableTotal,
		Items:          items,
	}
	if customer, err := s.customerRepo.GetByPhone(ctx, input.Phone); err == nil && customer != nil {
		order.CustomerID = &customer.ID
	}

	var usage *entity.CouponUsage
	if validation != nil {
		order.CouponID = validation.CouponID
		order.CouponCode = &couponCode
		usage = &entity.CouponUsage{
			CouponID:        *validation.CouponID,
			CustomerPhone:   input.Phone,
			OriginalTotal:   bill.FinalTotal,
			DiscountApplied: bill.Discount,
			FinalTotal:      bill.PayableTotal,
			UsedAt:          s.now(),
		}
		if err := s.orderRepo.CreateWithCoupon(ctx, order, usage); err != nil {
			if errors.Is(err, repository.ErrCouponAlreadyUsed) {
				return nil, apperror.NewConflictError("Coupon has already been used")
			}
			return nil, err
		}
	} else if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	if err := s.customerRepo.RecordOrder(ctx, input.Phone, order.Total, input.TableNumber, s.now()); err != nil {
		log.Printf("failed to record order %s for customer %s: %v", order.ID, input.Phone, err)
	}

	metrics.OrdersPlaced.Inc()
	s.publish(ctx, events.EventTypeOrderPlaced, sessionID, map[string]interface{}{
		"order_id":       order.ID,
		"session_id":     sessionID,
		"table_number":   order.TableNumber,
		"customer_phone": order.CustomerPhone,
		"item_count":     len(order.Items),
		"total":          order.Total,
	})
	if usage != nil {
		s.couponService.publishRedeemed(ctx, usage, couponCode)
	}

	return &PlaceOrderOutput{
		Order:                order,
		Bill:                 bill,
		ComputedWithDefaults: usedDefaults,
	}, nil
}

// priceItems builds order lines from current menu data. Client prices are never used.
func (s *OrderService) priceItems(ctx context.Context, inputs []OrderItemInput) ([]entity.OrderItem, []billing.LineItem, error) {
	ids := make([]uuid.UUID, 0, len(inputs))
	for _, in := range inputs {
		ids = append(ids, in.MenuItemID)
	}

	menuItems, err := s.menuRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	menuMap := make(map[uuid.UUID]*entity.MenuItem, len(menuItems))
	for i := range menuItems {
		menuMap[menuItems[i].ID] = &menuItems[i]
	}

	var fieldErrors []apperror.FieldError
	items := make([]entity.OrderItem, 0, len(inputs))
	lines := make([]billing.LineItem, 0, len(inputs))

	for i, in := range inputs {
		field := fmt.Sprintf("items[%d]", i)
		if in.Quantity < 1 || in.Quantity > maxItemQuantity {
			fieldErrors = append(fieldErrors, apperror.FieldError{
				Field:   field + ".quantity",
				Message: fmt.Sprintf("must be between 1 and %d", maxItemQuantity),
			})
			continue
		}

		menuItem, ok := menuMap[in.MenuItemID]
		if !ok {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: field + ".menuItemId", Message: "menu item not found"})
			continue
		}
		if !menuItem.IsAvailable {
			fieldErrors = append(fieldErrors, apperror.FieldError{
				Field:   field + ".menuItemId",
				Message: menuItem.Name + " is currently unavailable",
			})
			continue
		}

		selected := make(entity.AddOnSelections, 0, len(in.SelectedAddOns))
		missing := false
		for _, addOnID := range in.SelectedAddOns {
			addOn := menuItem.FindAddOn(addOnID)
			if addOn == nil {
				fieldErrors = append(fieldErrors, apperror.FieldError{Field: field + ".selectedAddOns", Message: "unknown add-on " + addOnID.String()})
				missing = true
				continue
			}
			selected = append(selected, entity.SelectedAddOn{ID: addOn.ID, Name: addOn.Name, Price: addOn.Price})
		}
		if missing {
			continue
		}

		menuItemID := menuItem.ID
		item := entity.OrderItem{
			MenuItemID:     &menuItemID,
			MenuItemName:   menuItem.Name,
			Quantity:       in.Quantity,
			ItemPrice:      menuItem.Price,
			GSTRate:        menuItem.GSTRate,
			IsTaxIncluded:  menuItem.IsTaxIncluded,
			SelectedAddOns: selected,
			Notes:          in.Notes,
		}
		line := lineItemFor(&item)
		item.LineTotal = billing.GrossLineTotal(line).Round(billing.MoneyPlaces)

		items = append(items, item)
		lines = append(lines, line)
	}
	if len(fieldErrors) > 0 {
		return nil, nil, apperror.NewValidationError(fieldErrors)
	}

	return items, lines, nil
}

// lineItemFor converts a stored order line back into a billing line
func lineItemFor(item *entity.OrderItem) billing.LineItem {
	addOns := make([]billing.AddOn, 0, len(item.SelectedAddOns))
	for _, a := range item.SelectedAddOns {
		addOns = append(addOns, billing.AddOn{Name: a.Name, Price: a.Price})
	}
	return billing.LineItem{
		Name:          item.MenuItemName,
		UnitPrice:     item.ItemPrice,
		Quantity:      item.Quantity,
		AddOns:        addOns,
		GSTRate:       item.GSTRate,
		IsTaxIncluded: item.IsTaxIncluded,
	}
}

// SessionOrders returns every order of a table session, oldest first
func (s *OrderService) SessionOrders(ctx context.Context, sessionID string) ([]entity.Order, error) {
	return s.orderRepo.ListBySession(ctx, sessionID, false)
}

// GetBill composes the bill for the session's unpaid orders
func (s *OrderService) GetBill(ctx context.Context, sessionID string) (*entity.BillReceipt, error) {
	orders, err := s.unpaidOrders(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	snapshot, usedDefaults, err := s.billing.Settings(ctx)
	if err != nil {
		return nil, err
	}
	return s.buildReceipt(sessionID, orders, snapshot, usedDefaults)
}

// PayBill settles the session's unpaid orders. One analytics row is written
// per order and the orders are marked completed.
func (s *OrderService) PayBill(ctx context.Context, sessionID, paymentMethod string, print bool) (*entity.BillReceipt, error) {
	if paymentMethod == "" {
		paymentMethod = PaymentMethodCash
	}
	switch paymentMethod {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodUPI:
	default:
		return nil, apperror.NewFieldError("paymentMethod", "must be cash, card or upi")
	}

	orders, err := s.unpaidOrders(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	snapshot, usedDefaults, err := s.billing.Settings(ctx)
	if err != nil {
		return nil, err
	}
	receipt, err := s.buildReceipt(sessionID, orders, snapshot, usedDefaults)
	if err != nil {
		return nil, err
	}

	paidAt := s.now()
	local := paidAt.In(s.location)
	settlement := &repository.Settlement{
		PaymentMethod: paymentMethod,
		PaidAt:        paidAt,
		OrderIDs:      make([]uuid.UUID, 0, len(orders)),
		Records:       make([]entity.PaymentRecord, 0, len(orders)),
	}
	for i := range orders {
		order := &orders[i]
		bill, err := s.billing.CalculateWith(snapshot.Billing, orderLines(order), order.DiscountAmount, couponCodeOf(order))
		if err != nil {
			return nil, err
		}
		settlement.OrderIDs = append(settlement.OrderIDs, order.ID)
		settlement.Records = append(settlement.Records, entity.PaymentRecord{
			OrderID:                 order.ID,
			TableNumber:             order.TableNumber,
			CustomerPhone:           order.CustomerPhone,
			Subtotal:                bill.Subtotal,
			CGSTAmount:              bill.CGSTAmount,
			SGSTAmount:              bill.SGSTAmount,
			ServiceChargeAmount:     bill.ServiceChargeAmount,
			ServiceChargePercentage: bill.ServiceChargePercentage,
			DiscountAmount:          bill.Discount,
			TotalAmount:             bill.PayableTotal,
			PaymentMethod:           paymentMethod,
			OrderDate:               order.CreatedAt,
			PaymentDate:             paidAt,
			PaymentDay:              local.Format("2006-01-02"),
			PaymentHour:             local.Hour(),
		})
	}

	if err := s.orderRepo.Settle(ctx, settlement); err != nil {
		if errors.Is(err, repository.ErrAlreadySettled) {
			return nil, apperror.NewConflictError("Bill has already been paid")
		}
		return nil, err
	}

	receipt.Paid = true
	receipt.PaymentMethod = paymentMethod
	receipt.IssuedAt = paidAt

	s.publish(ctx, events.EventTypeBillPaid, sessionID, map[string]interface{}{
		"session_id":     sessionID,
		"table_number":   receipt.TableNumber,
		"customer_phone": receipt.CustomerPhone,
		"order_ids":      receipt.OrderIDs,
		"payment_method": paymentMethod,
		"total":          receipt.Bill.PayableTotal,
	})

	if print && s.printer != nil {
		if err := s.printer.PrintBill(receipt); err != nil {
			log.Printf("failed to print bill for session %s: %v", sessionID, err)
		}
	}

	return receipt, nil
}

func (s *OrderService) unpaidOrders(ctx context.Context, sessionID string) ([]entity.Order, error) {
	orders, err := s.orderRepo.ListBySession(ctx, sessionID, true)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, apperror.NewNotFoundError("Unpaid orders")
	}
	return orders, nil
}

// buildReceipt recomputes the session bill from stored order lines. Order
// discounts are summed into one discount line.
func (s *OrderService) buildReceipt(sessionID string, orders []entity.Order, snapshot *entity.SettingsSnapshot, usedDefaults bool) (*entity.BillReceipt, error) {
	var lines []billing.LineItem
	discount := decimal.Zero
	var codes []string
	orderIDs := make([]string, 0, len(orders))

	for i := range orders {
		lines = append(lines, orderLines(&orders[i])...)
		discount = discount.Add(orders[i].DiscountAmount)
		if code := couponCodeOf(&orders[i]); code != "" {
			codes = append(codes, code)
		}
		orderIDs = append(orderIDs, orders[i].ID.String())
	}

	bill, err := s.billing.CalculateWith(snapshot.Billing, lines, discount, strings.Join(codes, ", "))
	if err != nil {
		return nil, err
	}

	first := &orders[0]
	receipt := &entity.BillReceipt{
		Restaurant:           snapshot.Restaurant,
		SessionID:            sessionID,
		TableNumber:          first.TableNumber,
		CustomerPhone:        first.CustomerPhone,
		OrderIDs:             orderIDs,
		Items:                aggregateItems(lines),
		Bill:                 *bill,
		ComputedWithDefaults: usedDefaults,
		IssuedAt:             s.now(),
	}
	for i := range orders {
		if orders[i].CustomerName != nil && *orders[i].CustomerName != "" {
			receipt.CustomerName = *orders[i].CustomerName
			break
		}
	}
	return receipt, nil
}

func orderLines(order *entity.Order) []billing.LineItem {
	lines := make([]billing.LineItem, 0, len(order.Items))
	for i := range order.Items {
		lines = append(lines, lineItemFor(&order.Items[i]))
	}
	return lines
}

func couponCodeOf(order *entity.Order) string {
	if order.CouponCode == nil {
		return ""
	}
	return *order.CouponCode
}

// aggregateItems merges identical lines (same item, price and add-ons) across orders
func aggregateItems(lines []billing.LineItem) []entity.ReceiptItem {
	index := make(map[string]int)
	var items []entity.ReceiptItem

	for _, line := range lines {
		names := make([]string, 0, len(line.AddOns))
		for _, a := range line.AddOns {
			names = append(names, a.Name)
		}
		sort.Strings(names)
		key := line.Name + "|" + line.UnitPrice.String() + "|" + strings.Join(names, ",")

		unit := line.UnitPrice
		for _, a := range line.AddOns {
			unit = unit.Add(a.Price)
		}

		if i, ok := index[key]; ok {
			items[i].Quantity += line.Quantity
			items[i].Total = items[i].Total.Add(billing.GrossLineTotal(line).Round(billing.MoneyPlaces))
			continue
		}
		index[key] = len(items)
		items = append(items, entity.ReceiptItem{
			Name:      line.Name,
			Quantity:  line.Quantity,
			UnitPrice: unit.Round(billing.MoneyPlaces),
			AddOns:    names,
			Total:     billing.GrossLineTotal(line).Round(billing.MoneyPlaces),
		})
	}
	return items
}

// OrderListInput represents the admin order list filters
type OrderListInput struct {
	Pagination    *pagination.PaginationParams
	Status        string
	TableNumber   *int
	CustomerPhone string
	StartDate     *time.Time
	EndDate       *time.Time
	SortOrder     string
}

// ListOrders returns a page of orders for the admin board
func (s *OrderService) ListOrders(ctx context.Context, input *OrderListInput) (*pagination.PaginatedResult[entity.Order], error) {
	if input.Pagination == nil {
		input.Pagination = pagination.DefaultPagination()
	}
	input.Pagination.Validate()

	params := &repository.OrderFilterParams{
		Pagination:    input.Pagination,
		TableNumber:   input.TableNumber,
		CustomerPhone: strings.TrimSpace(input.CustomerPhone),
		StartDate:     input.StartDate,
		EndDate:       input.EndDate,
		SortOrder:     input.SortOrder,
	}
	if input.Status != "" {
		status, err := enum.ParseOrderStatus(input.Status)
		if err != nil {
			return nil, apperror.NewFieldError("status", "must be pending, preparing, ready or completed")
		}
		params.Status = &status
	}

	orders, total, err := s.orderRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(input.Pagination.Page, input.Pagination.Limit, total)
	return pagination.NewPaginatedResult(orders, pag), nil
}

// GetOrder retrieves an order with its items
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}
	return order, nil
}

// OrderReceipt composes a receipt for a single order, paid or not
func (s *OrderService) OrderReceipt(ctx context.Context, id uuid.UUID) (*entity.BillReceipt, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	snapshot, usedDefaults, err := s.billing.Settings(ctx)
	if err != nil {
		return nil, err
	}
	receipt, err := s.buildReceipt(order.SessionID, []entity.Order{*order}, snapshot, usedDefaults)
	if err != nil {
		return nil, err
	}
	if order.PaidAt != nil {
		receipt.Paid = true
		receipt.IssuedAt = *order.PaidAt
	}
	if order.PaymentMethod != nil {
		receipt.PaymentMethod = *order.PaymentMethod
	}
	return receipt, nil
}

// UpdateOrderStatus moves an order forward through the kitchen flow
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status enum.OrderStatus) (*entity.Order, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(status) {
		return nil, apperror.NewUnprocessableError(
			fmt.Sprintf("Cannot move order from %s to %s", order.Status, status))
	}

	previous := order.Status
	if err := s.orderRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	order.Status = status

	s.publish(ctx, events.EventTypeOrderStatusChanged, order.SessionID, map[string]interface{}{
		"order_id":     order.ID,
		"session_id":   order.SessionID,
		"table_number": order.TableNumber,
		"from":         previous.String(),
		"to":           status.String(),
	})

	return order, nil
}

func (s *OrderService) publish(ctx context.Context, eventType events.EventType, key string, payload interface{}) {
	if err := s.publisher.Publish(ctx, eventType, key, payload); err != nil {
		log.Printf("failed to publish %s for %s: %v", eventType, key, err)
	}
}
