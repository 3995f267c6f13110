package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tableorder-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Category groups menu items on the menu page
type Category struct {
	ID           uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name         string         `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Description  *string        `gorm:"type:text" json:"description,omitempty"`
	DisplayOrder int            `gorm:"not null;default:0;index" json:"display_order"`
	IsActive     bool           `gorm:"not null" json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	MenuItems []MenuItem `gorm:"foreignKey:CategoryID" json:"menu_items,omitempty"`
}

// BeforeCreate generates a UUID before creating a new category
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Category model
func (Category) TableName() string {
	return "categories"
}

// MenuItem is a dish or drink that can be ordered
type MenuItem struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	CategoryID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"category_id"`
	Name          string          `gorm:"size:255;not null" json:"name"`
	Description   *string         `gorm:"type:text" json:"description,omitempty"`
	Price         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	ImageURL      *string         `gorm:"size:500" json:"image_url,omitempty"`
	FoodType      enum.FoodType   `gorm:"size:20;not null" json:"food_type"`
	IsAvailable   bool            `gorm:"not null" json:"is_available"`
	GSTRate       decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"gst_rate"`
	IsTaxIncluded bool            `gorm:"not null" json:"is_tax_included"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	AddOns   []AddOn   `gorm:"foreignKey:MenuItemID;constraint:OnDelete:CASCADE" json:"add_ons"`
}

// BeforeCreate generates a UUID before creating a new menu item
func (m *MenuItem) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the MenuItem model
func (MenuItem) TableName() string {
	return "menu_items"
}

// FindAddOn returns the add-on with the given id, or nil.
func (m *MenuItem) FindAddOn(id uuid.UUID) *AddOn {
	for i := range m.AddOns {
		if m.AddOns[i].ID == id {
			return &m.AddOns[i]
		}
	}
	return nil
}

// AddOn is an optional extra for a menu item, priced per unit
type AddOn struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	MenuItemID uuid.UUID       `gorm:"type:uuid;not null;index" json:"menu_item_id"`
	Name       string          `gorm:"size:255;not null" json:"name"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new add-on
func (a *AddOn) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the AddOn model
func (AddOn) TableName() string {
	return "add_ons"
}
