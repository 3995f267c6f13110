package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentRecord is the analytics row written when a bill is paid
type PaymentRecord struct {
	ID                      uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	OrderID                 uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"order_id"`
	TableNumber             int             `gorm:"not null;index" json:"table_number"`
	CustomerPhone           string          `gorm:"size:15;index" json:"customer_phone"`
	Subtotal                decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	CGSTAmount              decimal.Decimal `gorm:"column:cgst_amount;type:decimal(10,2);not null" json:"cgst_amount"`
	SGSTAmount              decimal.Decimal `gorm:"column:sgst_amount;type:decimal(10,2);not null" json:"sgst_amount"`
	ServiceChargeAmount     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"service_charge_amount"`
	ServiceChargePercentage decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"service_charge_percentage"`
	DiscountAmount          decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"discount_amount"`
	TotalAmount             decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	PaymentMethod           string          `gorm:"size:50;not null" json:"payment_method"`
	OrderDate               time.Time       `gorm:"not null" json:"order_date"`
	PaymentDate             time.Time       `gorm:"not null;index" json:"payment_date"`
	PaymentDay              string          `gorm:"size:10;not null;index" json:"payment_day"` // YYYY-MM-DD in restaurant time
	PaymentHour             int             `gorm:"not null" json:"payment_hour"`
	CreatedAt               time.Time       `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new payment record
func (p *PaymentRecord) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the PaymentRecord model
func (PaymentRecord) TableName() string {
	return "analytics"
}
