package request

import (
	"github.com/shopspring/decimal"
)

// CategoryRequest represents a category create or update request
type CategoryRequest struct {
	Name         string  `json:"name" binding:"required,max=255"`
	Description  *string `json:"description"`
	DisplayOrder int     `json:"displayOrder"`
	IsActive     *bool   `json:"isActive"`
}

// AddOnRequest is one optional extra on a menu item
type AddOnRequest struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// MenuItemRequest represents a menu item create or update request.
// Prices and rates accept JSON numbers or numeric strings.
type MenuItemRequest struct {
	CategoryID    string           `json:"categoryId" binding:"required,uuid"`
	Name          string           `json:"name" binding:"required,max=255"`
	Description   *string          `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	ImageURL      *string          `json:"imageUrl"`
	FoodType      string           `json:"foodType"`
	IsAvailable   *bool            `json:"isAvailable"`
	GSTRate       *decimal.Decimal `json:"gstRate"`
	IsTaxIncluded bool             `json:"isTaxIncluded"`
	AddOns        []AddOnRequest   `json:"addOns"`
}

// AvailabilityRequest toggles whether a menu item can be ordered
type AvailabilityRequest struct {
	IsAvailable *bool `json:"isAvailable" binding:"required"`
}
