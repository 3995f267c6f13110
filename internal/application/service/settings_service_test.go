package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/sangkips/tableorder-api/internal/domain/billing"
	"github.com/sangkips/tableorder-api/internal/domain/entity"
	"github.com/sangkips/tableorder-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSnapshot_MissingAndInvalidKeys(t *testing.T) {
	rows := []entity.GlobalSetting{
		{SettingKey: billing.KeyCGSTRate, SettingValue: "9", SettingType: enum.SettingTypeNumber},
		{SettingKey: billing.KeySGSTRate, SettingValue: "abc", SettingType: enum.SettingTypeNumber},
		{SettingKey: billing.KeyServiceChargeEnabled, SettingValue: "false", SettingType: enum.SettingTypeBoolean},
		{SettingKey: entity.KeyRestaurantName, SettingValue: "Spice Route", SettingType: enum.SettingTypeString},
		{SettingKey: entity.KeyNumberOfTables, SettingValue: "250", SettingType: enum.SettingTypeNumber},
	}

	snapshot := BuildSnapshot(rows)

	assertDec(t, "9", snapshot.Billing.CGSTRate)
	assertDec(t, "2.5", snapshot.Billing.SGSTRate)
	assert.False(t, snapshot.Billing.ServiceChargeEnabled)
	assert.Equal(t, "Spice Route", snapshot.Restaurant.Name)
	assert.Equal(t, 15, snapshot.Restaurant.NumberOfTables)
	assert.Contains(t, snapshot.Defaulted, billing.KeySGSTRate)
	assert.Contains(t, snapshot.Defaulted, entity.KeyNumberOfTables)
	assert.Contains(t, snapshot.Defaulted, entity.KeyRestaurantGSTIN)
	assert.NotContains(t, snapshot.Defaulted, billing.KeyCGSTRate)
}

func TestBuildSnapshot_OutOfRangeValuesUseDefaults(t *testing.T) {
	rows := []entity.GlobalSetting{
		{SettingKey: billing.KeyCGSTRate, SettingValue: "-2", SettingType: enum.SettingTypeNumber},
		{SettingKey: billing.KeySGSTRate, SettingValue: "140", SettingType: enum.SettingTypeNumber},
		{SettingKey: billing.KeyServiceChargePercentage, SettingValue: "-5", SettingType: enum.SettingTypeNumber},
		{SettingKey: billing.KeyServiceChargeEnabled, SettingValue: "true", SettingType: enum.SettingTypeBoolean},
		{SettingKey: billing.KeyDefaultGSTRate, SettingValue: "12", SettingType: enum.SettingTypeNumber},
	}

	snapshot := BuildSnapshot(rows)

	assertDec(t, "2.5", snapshot.Billing.CGSTRate)
	assertDec(t, "2.5", snapshot.Billing.SGSTRate)
	assertDec(t, "10", snapshot.Billing.ServiceChargePercentage)
	assertDec(t, "12", snapshot.Billing.DefaultGSTRate)
	assert.Subset(t, snapshot.Defaulted, []string{billing.KeyCGSTRate, billing.KeySGSTRate, billing.KeyServiceChargePercentage})
	assert.NotContains(t, snapshot.Defaulted, billing.KeyDefaultGSTRate)

	// the resolved settings always price a bill
	bill, err := billing.CalculateBill([]billing.LineItem{
		{UnitPrice: decimal.NewFromInt(100), Quantity: 1, GSTRate: snapshot.Billing.DefaultGSTRate},
	}, snapshot.Billing)
	require.NoError(t, err)
	assertDec(t, "115", bill.FinalTotal)
}

func TestSettingsService_SeededSnapshot(t *testing.T) {
	db := newTestDB(t)
	svc := newSettingsService(db)

	snapshot, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snapshot.Defaulted)
	assertDec(t, "10", snapshot.Billing.ServiceChargePercentage)
	assert.True(t, snapshot.Billing.ServiceChargeEnabled)
}

func TestSettingsService_UpdateSettings(t *testing.T) {
	db := newTestDB(t)
	svc := newSettingsService(db)
	ctx := context.Background()

	_, err := svc.UpdateSettings(ctx, []UpdateSettingInput{
		{Key: billing.KeyServiceChargeEnabled, Value: "false"},
		{Key: billing.KeyCGSTRate, Value: "6"},
		{Key: entity.KeyNumberOfTables, Value: "20"},
	})
	require.NoError(t, err)

	snapshot, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.False(t, snapshot.Billing.ServiceChargeEnabled)
	assertDec(t, "6", snapshot.Billing.CGSTRate)
	assert.Equal(t, 20, snapshot.Restaurant.NumberOfTables)
}

func TestSettingsService_UpdateSettingsValidation(t *testing.T) {
	db := newTestDB(t)
	svc := newSettingsService(db)
	ctx := context.Background()

	tests := []struct {
		name  string
		input UpdateSettingInput
	}{
		{"gst above 100", UpdateSettingInput{Key: billing.KeySGSTRate, Value: "101"}},
		{"negative service charge", UpdateSettingInput{Key: billing.KeyServiceChargePercentage, Value: "-1"}},
		{"not a boolean", UpdateSettingInput{Key: billing.KeyServiceChargeEnabled, Value: "maybe"}},
		{"fractional tables", UpdateSettingInput{Key: entity.KeyNumberOfTables, Value: "4.5"}},
		{"wrong type", UpdateSettingInput{Key: billing.KeyCGSTRate, Value: "5", Type: enum.SettingTypeString}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateSettings(ctx, []UpdateSettingInput{tt.input})
			assertStatus(t, http.StatusUnprocessableEntity, err)
		})
	}

	_, err := svc.UpdateSettings(ctx, nil)
	assertStatus(t, http.StatusBadRequest, err)
}
