package request

import (
	"time"

	"github.com/shopspring/decimal"
)

// ValidateCouponRequest checks a code against an order total
type ValidateCouponRequest struct {
	CouponCode    string          `json:"couponCode" binding:"required"`
	CustomerPhone string          `json:"customerPhone"`
	OrderTotal    decimal.Decimal `json:"orderTotal"`
}

// ApplyCouponRequest redeems a coupon for an existing order
type ApplyCouponRequest struct {
	CouponID string `json:"couponId" binding:"required,uuid"`
	OrderID  string `json:"orderId" binding:"required,uuid"`
}

// CreateCouponRequest issues a campaign coupon for one phone number
type CreateCouponRequest struct {
	CustomerPhone         string           `json:"customerPhone" binding:"required"`
	DiscountType          string           `json:"discountType" binding:"required,oneof=percentage fixed"`
	DiscountValue         decimal.Decimal  `json:"discountValue"`
	MinimumOrderAmount    decimal.Decimal  `json:"minimumOrderAmount"`
	MaximumDiscountAmount *decimal.Decimal `json:"maximumDiscountAmount"`
	ExpiresAt             time.Time        `json:"expiresAt" binding:"required"`
	SendWhatsApp          bool             `json:"sendWhatsApp"`
}
