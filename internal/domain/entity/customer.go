package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Customer tiers derived from order count
const (
	CustomerTierNew     = "new"
	CustomerTierRegular = "regular"
	CustomerTierVIP     = "vip"
)

// Customer is a diner identified by a verified phone number
type Customer struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Phone           string          `gorm:"size:15;not null;uniqueIndex" json:"phone"`
	FirstName       *string         `gorm:"size:255" json:"first_name,omitempty"`
	LastName        *string         `gorm:"size:255" json:"last_name,omitempty"`
	TotalOrders     int             `gorm:"not null;default:0" json:"total_orders"`
	TotalSpent      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_spent"`
	LastOrderDate   *time.Time      `gorm:"index" json:"last_order_date,omitempty"`
	LastTableNumber *int            `json:"last_table_number,omitempty"`
	VerifiedAt      *time.Time      `json:"verified_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new customer
func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}

// Tier buckets customers by how often they ordered
func (c *Customer) Tier() string {
	switch {
	case c.TotalOrders >= 10:
		return CustomerTierVIP
	case c.TotalOrders >= 2:
		return CustomerTierRegular
	default:
		return CustomerTierNew
	}
}
