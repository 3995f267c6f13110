package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tableorder-api/internal/domain/entity"
	"github.com/sangkips/tableorder-api/internal/domain/enum"
	"github.com/sangkips/tableorder-api/internal/domain/repository"
	"github.com/sangkips/tableorder-api/internal/infrastructure/events"
	"github.com/sangkips/tableorder-api/internal/infrastructure/metrics"
	"github.com/sangkips/tableorder-api/internal/infrastructure/notify"
	"github.com/sangkips/tableorder-api/pkg/apperror"
	"github.com/sangkips/tableorder-api/pkg/pagination"
	"github.com/sangkips/tableorder-api/pkg/utils"
	"github.com/shopspring/decimal"
)

const (
	couponCodeLength   = 8
	couponCodeAttempts = 10
)

// CouponService handles coupon validation, redemption and admin management
type CouponService struct {
	couponRepo repository.CouponRepository
	orderRepo  repository.OrderRepository
	settings   SettingsProvider
	sender     notify.Sender
	publisher  events.Publisher
	now        func() time.Time
}

// NewCouponService creates a new coupon service
func NewCouponService(
	couponRepo repository.CouponRepository,
	orderRepo repository.OrderRepository,
	settings SettingsProvider,
	sender notify.Sender,
	publisher events.Publisher,
) *CouponService {
	return &CouponService{
		couponRepo: couponRepo,
		orderRepo:  orderRepo,
		settings:   settings,
		sender:     sender,
		publisher:  publisher,
		now:        time.Now,
	}
}

// CouponValidation is the outcome of checking a coupon against an order total.
// Error is set when IsValid is false.
type CouponValidation struct {
	IsValid        bool            `json:"isValid"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	CouponID       *uuid.UUID      `json:"couponId,omitempty"`
	FinalTotal     decimal.Decimal `json:"finalTotal"`
	Error          string          `json:"error,omitempty"`

	coupon *entity.Coupon
}

func invalidCoupon(result, message string, orderTotal decimal.Decimal) *CouponValidation {
	metrics.CouponValidations.WithLabelValues(result).Inc()
	return &CouponValidation{
		IsValid:        false,
		DiscountAmount: decimal.Zero,
		FinalTotal:     orderTotal,
		Error:          message,
	}
}

// ValidateCoupon checks a code for a phone number and order total. Business
// rejections are reported in the result, not as errors.
func (s *CouponService) ValidateCoupon(ctx context.Context, code, phone string, orderTotal decimal.Decimal) (*CouponValidation, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, apperror.NewFieldError("couponCode", "is required")
	}
	if orderTotal.IsNegative() {
		return nil, apperror.NewFieldError("orderTotal", "must not be negative")
	}

	coupon, err := s.couponRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	switch {
	case coupon == nil:
		return invalidCoupon("not_found", "Invalid coupon code", orderTotal), nil
	case coupon.IsUsed:
		return invalidCoupon("used", "Coupon has already been used", orderTotal), nil
	case coupon.IsExpired(s.now()):
		return invalidCoupon("expired", "Coupon has expired", orderTotal), nil
	case coupon.CustomerPhone != phone:
		return invalidCoupon("phone_mismatch", "Coupon is not valid for this phone number", orderTotal), nil
	case orderTotal.LessThan(coupon.MinimumOrderAmount):
		return invalidCoupon("below_minimum",
			fmt.Sprintf("Minimum order amount of ₹%s required", coupon.MinimumOrderAmount.StringFixed(2)), orderTotal), nil
	}

	discount := coupon.DiscountFor(orderTotal)
	metrics.CouponValidations.WithLabelValues("valid").Inc()
	return &CouponValidation{
		IsValid:        true,
		DiscountAmount: discount,
		CouponID:       &coupon.ID,
		FinalTotal:     orderTotal.Sub(discount),
		coupon:         coupon,
	}, nil
}

// ApplyCoupon marks a coupon used by an existing order and records the usage
func (s *CouponService) ApplyCoupon(ctx context.Context, couponID, orderID uuid.UUID) (*entity.Coupon, error) {
	coupon, err := s.couponRepo.GetByID(ctx, couponID)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, apperror.NewNotFoundError("Coupon")
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}
	if order.CustomerPhone != coupon.CustomerPhone {
		return nil, apperror.NewUnprocessableError("Coupon is not valid for this phone number")
	}

	usage := &entity.CouponUsage{
		CouponID:        coupon.ID,
		OrderID:         order.ID,
		CustomerPhone:   order.CustomerPhone,
		OriginalTotal:   order.OriginalTotal,
		DiscountApplied: order.OriginalTotal.Sub(order.Total),
		FinalTotal:      order.Total,
		UsedAt:          s.now(),
	}
	if err := s.couponRepo.Redeem(ctx, usage); err != nil {
		if errors.Is(err, repository.ErrCouponAlreadyUsed) {
			return nil, apperror.NewConflictError("Coupon has already been used")
		}
		return nil, err
	}
	s.publishRedeemed(ctx, usage, coupon.Code)

	return s.couponRepo.GetByID(ctx, couponID)
}

func (s *CouponService) publishRedeemed(ctx context.Context, usage *entity.CouponUsage, code string) {
	payload := map[string]interface{}{
		"coupon_id":        usage.CouponID,
		"code":             code,
		"order_id":         usage.OrderID,
		"customer_phone":   usage.CustomerPhone,
		"discount_applied": usage.DiscountApplied,
	}
	if err := s.publisher.Publish(ctx, events.EventTypeCouponRedeemed, usage.OrderID.String(), payload); err != nil {
		log.Printf("failed to publish %s for order %s: %v", events.EventTypeCouponRedeemed, usage.OrderID, err)
	}
}

// CouponListInput represents the admin coupon list filters
type CouponListInput struct {
	Pagination *pagination.PaginationParams
	Search     string
	Type       string
	Status     string
}

// CouponListResult is a page of coupons with redemption totals
type CouponListResult struct {
	Coupons              []entity.Coupon
	Pagination           *pagination.Pagination
	TotalSavingsProvided decimal.Decimal
	TotalUsedCoupons     int64
}

// ListCoupons returns a filtered page of coupons and overall redemption stats
func (s *CouponService) ListCoupons(ctx context.Context, input *CouponListInput) (*CouponListResult, error) {
	if input.Pagination == nil {
		input.Pagination = pagination.DefaultPagination()
	}
	input.Pagination.Validate()

	params := &repository.CouponFilterParams{
		Pagination: input.Pagination,
		Search:     strings.TrimSpace(input.Search),
		Type:       strings.ToUpper(strings.TrimSpace(input.Type)),
		Now:        s.now(),
	}
	if input.Status != "" {
		status := enum.CouponStatus(input.Status)
		switch status {
		case enum.CouponStatusUsed, enum.CouponStatusUnused, enum.CouponStatusExpired:
			params.Status = &status
		default:
			return nil, apperror.NewFieldError("status", "must be one of used, unused, expired")
		}
	}

	coupons, total, err := s.couponRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	stats, err := s.couponRepo.Stats(ctx)
	if err != nil {
		return nil, err
	}

	return &CouponListResult{
		Coupons:              coupons,
		Pagination:           pagination.NewPagination(input.Pagination.Page, input.Pagination.Limit, total),
		TotalSavingsProvided: stats.TotalSavingsProvided,
		TotalUsedCoupons:     stats.TotalUsedCoupons,
	}, nil
}

// ListCouponTypes returns the coupon families for the admin coupon form
func (s *CouponService) ListCouponTypes(ctx context.Context) ([]entity.CouponType, error) {
	return s.couponRepo.ListTypes(ctx)
}

// CreateCouponInput represents the input for an admin campaign coupon
type CreateCouponInput struct {
	CustomerPhone         string
	DiscountType          enum.DiscountType
	DiscountValue         decimal.Decimal
	MinimumOrderAmount    decimal.Decimal
	MaximumDiscountAmount *decimal.Decimal
	ExpiresAt             time.Time
	SendWhatsApp          bool
}

// CreateCoupon issues a campaign coupon and optionally notifies the customer.
// A failed notification does not fail the creation.
func (s *CouponService) CreateCoupon(ctx context.Context, input *CreateCouponInput) (*entity.Coupon, error) {
	if fieldErrors := validateCouponInput(input, s.now()); len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError(fieldErrors)
	}

	couponType, err := s.couponRepo.GetTypeByName(ctx, enum.CouponTypeCampaign)
	if err != nil {
		return nil, err
	}
	if couponType == nil {
		return nil, apperror.NewBadRequestError("Campaign coupon type not found")
	}

	code, err := s.uniqueCode(ctx)
	if err != nil {
		return nil, err
	}

	coupon := &entity.Coupon{
		Code:               code,
		TypeID:             couponType.ID,
		CustomerPhone:      input.CustomerPhone,
		DiscountType:       input.DiscountType,
		DiscountValue:      input.DiscountValue,
		MinimumOrderAmount: input.MinimumOrderAmount,
		ExpiresAt:          input.ExpiresAt,
		GeneratedBy:        "admin",
	}
	if input.MaximumDiscountAmount != nil {
		coupon.MaximumDiscountAmount = decimal.NewNullDecimal(*input.MaximumDiscountAmount)
	}

	if err := s.couponRepo.Create(ctx, coupon); err != nil {
		return nil, err
	}
	coupon.Type = couponType

	if input.SendWhatsApp {
		s.notify(ctx, coupon)
	}

	return coupon, nil
}

func (s *CouponService) uniqueCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < couponCodeAttempts; attempt++ {
		code, err := utils.GenerateCouponCode(couponCodeLength)
		if err != nil {
			return "", err
		}
		exists, err := s.couponRepo.ExistsByCode(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", apperror.NewAppError(http.StatusInternalServerError, "Failed to generate unique coupon code")
}

func (s *CouponService) notify(ctx context.Context, coupon *entity.Coupon) {
	restaurant := entity.DefaultRestaurantInfo().Name
	if snapshot, err := s.settings.Snapshot(ctx); err == nil {
		restaurant = snapshot.Restaurant.Name
	}

	body := notify.CouponMessage(restaurant, coupon, enum.CouponTypeCampaign)
	if err := s.sender.SendText(ctx, coupon.CustomerPhone, body); err != nil {
		log.Printf("Error sending WhatsApp coupon %s: %v", coupon.Code, err)
		return
	}

	sentAt := s.now()
	if err := s.couponRepo.MarkWhatsAppSent(ctx, coupon.ID, sentAt); err != nil {
		log.Printf("failed to mark coupon %s as sent: %v", coupon.Code, err)
		return
	}
	coupon.WhatsAppSent = true
	coupon.WhatsAppSentAt = &sentAt
}

func validateCouponInput(input *CreateCouponInput, now time.Time) []apperror.FieldError {
	var errs []apperror.FieldError
	add := func(field, message string) {
		errs = append(errs, apperror.FieldError{Field: field, Message: message})
	}

	if !utils.IsValidPhone(input.CustomerPhone) {
		add("customerPhone", "must be a valid 10 digit mobile number")
	}
	if !input.DiscountType.Valid() {
		add("discountType", "must be percentage or fixed")
	}
	if !input.DiscountValue.IsPositive() {
		add("discountValue", "must be greater than 0")
	} else if input.DiscountType == enum.DiscountTypePercentage && input.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
		add("discountValue", "must not exceed 100 for percentage coupons")
	}
	if input.MinimumOrderAmount.IsNegative() {
		add("minimumOrderAmount", "must not be negative")
	}
	if input.MaximumDiscountAmount != nil && !input.MaximumDiscountAmount.IsPositive() {
		add("maximumDiscountAmount", "must be greater than 0")
	}
	if !input.ExpiresAt.After(now) {
		add("expiresAt", "must be in the future")
	}
	return errs
}
