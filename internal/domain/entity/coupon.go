package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tableorder-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CouponType is a coupon family such as WELCOME or CAMPAIGN
type CouponType struct {
	ID          uint                `gorm:"primary_key" json:"id"`
	Name        enum.CouponTypeName `gorm:"size:50;not null;uniqueIndex" json:"name"`
	Description *string             `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// TableName returns the table name for the CouponType model
func (CouponType) TableName() string {
	return "coupon_types"
}

// Coupon is a single-use discount issued to one phone number
type Coupon struct {
	ID                    uuid.UUID           `gorm:"type:uuid;primary_key" json:"id"`
	Code                  string              `gorm:"size:20;not null;uniqueIndex" json:"code"`
	TypeID                uint                `gorm:"not null;index" json:"type_id"`
	CustomerPhone         string              `gorm:"size:15;not null;index" json:"customer_phone"`
	DiscountType          enum.DiscountType   `gorm:"size:20;not null" json:"discount_type"`
	DiscountValue         decimal.Decimal     `gorm:"type:decimal(10,2);not null" json:"discount_value"`
	MinimumOrderAmount    decimal.Decimal     `gorm:"type:decimal(10,2);not null" json:"minimum_order_amount"`
	MaximumDiscountAmount decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"maximum_discount_amount"`
	ExpiresAt             time.Time           `gorm:"not null;index" json:"expires_at"`
	IsUsed                bool                `gorm:"not null;index" json:"is_used"`
	UsedAt                *time.Time          `json:"used_at,omitempty"`
	UsedInOrderID         *uuid.UUID          `gorm:"type:uuid" json:"used_in_order_id,omitempty"`
	GeneratedBy           string              `gorm:"size:50;not null" json:"generated_by"`
	WhatsAppSent          bool                `gorm:"column:whatsapp_sent;not null" json:"whatsapp_sent"`
	WhatsAppSentAt        *time.Time          `gorm:"column:whatsapp_sent_at" json:"whatsapp_sent_at,omitempty"`
	CreatedAt             time.Time           `json:"created_at"`
	UpdatedAt             time.Time           `json:"updated_at"`

	// Relationships
	Type *CouponType `gorm:"foreignKey:TypeID" json:"coupon_type,omitempty"`
}

// BeforeCreate generates a UUID before creating a new coupon
func (c *Coupon) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Coupon model
func (Coupon) TableName() string {
	return "coupons"
}

// IsExpired checks the coupon against the given instant
func (c *Coupon) IsExpired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// DiscountFor returns the discount this coupon gives on an order total.
// Percentage discounts honour the maximum cap; fixed discounts never exceed
// the order total.
func (c *Coupon) DiscountFor(orderTotal decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch c.DiscountType {
	case enum.DiscountTypePercentage:
		discount = orderTotal.Mul(c.DiscountValue).Div(decimal.NewFromInt(100))
		if c.MaximumDiscountAmount.Valid && discount.GreaterThan(c.MaximumDiscountAmount.Decimal) {
			discount = c.MaximumDiscountAmount.Decimal
		}
	default:
		discount = c.DiscountValue
	}
	if discount.GreaterThan(orderTotal) {
		discount = orderTotal
	}
	return discount.Round(2)
}

// CouponUsage records what a redeemed coupon was worth
type CouponUsage struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	CouponID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"coupon_id"`
	OrderID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	CustomerPhone   string          `gorm:"size:15;not null" json:"customer_phone"`
	OriginalTotal   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"original_total"`
	DiscountApplied decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"discount_applied"`
	FinalTotal      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"final_total"`
	UsedAt          time.Time       `gorm:"not null" json:"used_at"`
}

// BeforeCreate generates a UUID before creating a usage record
func (u *CouponUsage) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the CouponUsage model
func (CouponUsage) TableName() string {
	return "coupon_usage_history"
}
