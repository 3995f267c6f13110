package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tableorder-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order is one submission from a table session
type Order struct {
	ID             uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	SessionID      string           `gorm:"size:100;not null;index" json:"session_id"`
	TableNumber    int              `gorm:"not null;index" json:"table_number"`
	CustomerPhone  string           `gorm:"size:15;not null;index" json:"customer_phone"`
	CustomerName   *string          `gorm:"size:255" json:"customer_name,omitempty"`
	CustomerID     *uuid.UUID       `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	Status         enum.OrderStatus `gorm:"not null;default:0;index" json:"status"`
	OriginalTotal  decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"original_total"`
	DiscountAmount decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"discount_amount"`
	Total          decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"total"`
	CouponID       *uuid.UUID       `gorm:"type:uuid" json:"coupon_id,omitempty"`
	CouponCode     *string          `gorm:"size:20" json:"coupon_code,omitempty"`
	ReadyToPay     bool             `gorm:"not null" json:"ready_to_pay"`
	PaymentMethod  *string          `gorm:"size:50" json:"payment_method,omitempty"`
	PaidAt         *time.Time       `json:"paid_at,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
	DeletedAt      gorm.DeletedAt   `gorm:"index" json:"-"`

	// Relationships
	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// BeforeCreate generates a UUID before creating a new order
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// IsPaid reports whether the bill for this order was settled
func (o *Order) IsPaid() bool {
	return o.PaidAt != nil
}

// SessionIDFor builds the table session identifier shared by a diner's orders.
func SessionIDFor(phone string, tableNumber int) string {
	return fmt.Sprintf("%s_table_%d", phone, tableNumber)
}

// OrderItem is a priced line of an order. Menu data is copied in so the line
// survives menu edits and deletions.
type OrderItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	OrderID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	MenuItemID     *uuid.UUID      `gorm:"type:uuid;index" json:"menu_item_id,omitempty"`
	MenuItemName   string          `gorm:"size:255;not null" json:"menu_item_name"`
	Quantity       int             `gorm:"not null" json:"quantity"`
	ItemPrice      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"item_price"`
	GSTRate        decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"gst_rate"`
	IsTaxIncluded  bool            `gorm:"not null" json:"is_tax_included"`
	SelectedAddOns AddOnSelections `gorm:"type:text" json:"selected_add_ons"`
	Notes          *string         `gorm:"type:text" json:"notes,omitempty"`
	LineTotal      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"line_total"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new order item
func (oi *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if oi.ID == uuid.Nil {
		oi.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}

// SelectedAddOn is an add-on snapshot stored with the order line
type SelectedAddOn struct {
	ID    uuid.UUID       `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// AddOnSelections is persisted as a JSON text column
type AddOnSelections []SelectedAddOn

func (a AddOnSelections) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (a *AddOnSelections) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*a = AddOnSelections{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported add-on selections type %T", value)
	}
	if len(raw) == 0 {
		*a = AddOnSelections{}
		return nil
	}
	return json.Unmarshal(raw, a)
}
