package entity

import (
	"fmt"
	"strconv"
	"time"

	"github.com/sangkips/tableorder-api/internal/domain/billing"
	"github.com/sangkips/tableorder-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// GlobalSetting is one typed key/value row of restaurant configuration
type GlobalSetting struct {
	ID           uint             `gorm:"primary_key" json:"id"`
	SettingKey   string           `gorm:"size:100;not null;uniqueIndex" json:"setting_key"`
	SettingValue string           `gorm:"type:text;not null" json:"setting_value"`
	SettingType  enum.SettingType `gorm:"size:20;not null" json:"setting_type"`
	Description  *string          `gorm:"type:text" json:"description,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// TableName returns the table name for the GlobalSetting model
func (GlobalSetting) TableName() string {
	return "global_settings"
}

// Decimal parses a number setting
func (s *GlobalSetting) Decimal() (decimal.Decimal, error) {
	if s.SettingType != enum.SettingTypeNumber {
		return decimal.Zero, fmt.Errorf("setting %s is %s, not number", s.SettingKey, s.SettingType)
	}
	return decimal.NewFromString(s.SettingValue)
}

// Bool parses a boolean setting
func (s *GlobalSetting) Bool() (bool, error) {
	if s.SettingType != enum.SettingTypeBoolean {
		return false, fmt.Errorf("setting %s is %s, not boolean", s.SettingKey, s.SettingType)
	}
	return strconv.ParseBool(s.SettingValue)
}

// Restaurant meta keys shown on bills and the diner app.
const (
	KeyRestaurantName    = "restaurant_name"
	KeyRestaurantAddress = "restaurant_address"
	KeyRestaurantPhone   = "restaurant_phone"
	KeyRestaurantGSTIN   = "restaurant_gstin"
	KeyNumberOfTables    = "number_of_tables"
)

// DefaultRestaurantInfo is used for any restaurant key missing from the store.
func DefaultRestaurantInfo() RestaurantInfo {
	return RestaurantInfo{
		Name:           "DYU Art Cafe",
		Address:        "123 Main Street, City, State - 123456",
		Phone:          "+91 9876543210",
		GSTIN:          "22AAAAA0000A1Z5",
		NumberOfTables: 15,
	}
}

// DefaultGlobalSettings returns the rows seeded into an empty store.
func DefaultGlobalSettings() []GlobalSetting {
	b := billing.DefaultSettings()
	r := DefaultRestaurantInfo()
	describe := func(s string) *string { return &s }

	return []GlobalSetting{
		{SettingKey: billing.KeyServiceChargePercentage, SettingValue: b.ServiceChargePercentage.String(), SettingType: enum.SettingTypeNumber, Description: describe("Service charge percentage applied on the pre-tax subtotal")},
		{SettingKey: billing.KeyServiceChargeEnabled, SettingValue: strconv.FormatBool(b.ServiceChargeEnabled), SettingType: enum.SettingTypeBoolean, Description: describe("Whether service charge is added to bills")},
		{SettingKey: billing.KeyCGSTRate, SettingValue: b.CGSTRate.String(), SettingType: enum.SettingTypeNumber, Description: describe("Central GST rate")},
		{SettingKey: billing.KeySGSTRate, SettingValue: b.SGSTRate.String(), SettingType: enum.SettingTypeNumber, Description: describe("State GST rate")},
		{SettingKey: billing.KeyDefaultGSTRate, SettingValue: b.DefaultGSTRate.String(), SettingType: enum.SettingTypeNumber, Description: describe("GST rate for menu items without their own rate")},
		{SettingKey: KeyRestaurantName, SettingValue: r.Name, SettingType: enum.SettingTypeString},
		{SettingKey: KeyRestaurantAddress, SettingValue: r.Address, SettingType: enum.SettingTypeString},
		{SettingKey: KeyRestaurantPhone, SettingValue: r.Phone, SettingType: enum.SettingTypeString},
		{SettingKey: KeyRestaurantGSTIN, SettingValue: r.GSTIN, SettingType: enum.SettingTypeString},
		{SettingKey: KeyNumberOfTables, SettingValue: strconv.Itoa(r.NumberOfTables), SettingType: enum.SettingTypeNumber},
	}
}

// SettingsSnapshot is the resolved view of the settings store.
// Defaulted lists the keys that fell back to built-in values.
type SettingsSnapshot struct {
	Billing    billing.Settings `json:"billing"`
	Restaurant RestaurantInfo   `json:"restaurant"`
	Defaulted  []string         `json:"defaulted,omitempty"`
}
