package billing

import "github.com/shopspring/decimal"

// Setting keys as stored in the global_settings table.
const (
	KeyServiceChargePercentage = "service_charge_percentage"
	KeyServiceChargeEnabled    = "service_charge_enabled"
	KeyCGSTRate                = "cgst_rate"
	KeySGSTRate                = "sgst_rate"
	KeyDefaultGSTRate          = "default_gst_rate"
)

// Settings is the snapshot a single bill calculation runs against.
type Settings struct {
	CGSTRate                decimal.Decimal `json:"cgstRate"`
	SGSTRate                decimal.Decimal `json:"sgstRate"`
	ServiceChargeEnabled    bool            `json:"serviceChargeEnabled"`
	ServiceChargePercentage decimal.Decimal `json:"serviceChargePercentage"`
	DefaultGSTRate          decimal.Decimal `json:"defaultGstRate"`
}

// DefaultSettings returns the rates used when the store has no value.
func DefaultSettings() Settings {
	return Settings{
		CGSTRate:                decimal.RequireFromString("2.5"),
		SGSTRate:                decimal.RequireFromString("2.5"),
		ServiceChargeEnabled:    true,
		ServiceChargePercentage: decimal.NewFromInt(10),
		DefaultGSTRate:          decimal.NewFromInt(5),
	}
}

// PartialSettings holds whatever the settings store returned. Nil fields are
// missing and get their default in ResolveSettings.
type PartialSettings struct {
	CGSTRate                *decimal.Decimal
	SGSTRate                *decimal.Decimal
	ServiceChargeEnabled    *bool
	ServiceChargePercentage *decimal.Decimal
	DefaultGSTRate          *decimal.Decimal
}

// ResolveSettings fills missing fields from DefaultSettings and reports the
// keys that were defaulted. It does not validate values; CalculateBill does.
func ResolveSettings(p PartialSettings) (Settings, []string) {
	s := DefaultSettings()
	var defaulted []string

	if p.CGSTRate != nil {
		s.CGSTRate = *p.CGSTRate
	} else {
		defaulted = append(defaulted, KeyCGSTRate)
	}
	if p.SGSTRate != nil {
		s.SGSTRate = *p.SGSTRate
	} else {
		defaulted = append(defaulted, KeySGSTRate)
	}
	if p.ServiceChargeEnabled != nil {
		s.ServiceChargeEnabled = *p.ServiceChargeEnabled
	} else {
		defaulted = append(defaulted, KeyServiceChargeEnabled)
	}
	if p.ServiceChargePercentage != nil {
		s.ServiceChargePercentage = *p.ServiceChargePercentage
	} else {
		defaulted = append(defaulted, KeyServiceChargePercentage)
	}
	if p.DefaultGSTRate != nil {
		s.DefaultGSTRate = *p.DefaultGSTRate
	} else {
		defaulted = append(defaulted, KeyDefaultGSTRate)
	}

	return s, defaulted
}
