package billing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func settingsWith(serviceCharge bool) Settings {
	s := DefaultSettings()
	s.ServiceChargeEnabled = serviceCharge
	return s
}

type wantBill struct {
	subtotal, cgst, sgst, totalGst, service, final string
}

func assertBill(t *testing.T, want wantBill, got *BillCalculation) {
	t.Helper()
	assert.Equal(t, want.subtotal, got.Subtotal.StringFixed(2), "subtotal")
	assert.Equal(t, want.cgst, got.CGSTAmount.StringFixed(2), "cgstAmount")
	assert.Equal(t, want.sgst, got.SGSTAmount.StringFixed(2), "sgstAmount")
	assert.Equal(t, want.totalGst, got.TotalGST.StringFixed(2), "totalGst")
	assert.Equal(t, want.service, got.ServiceChargeAmount.StringFixed(2), "serviceChargeAmount")
	assert.Equal(t, want.final, got.FinalTotal.StringFixed(2), "finalTotal")
}

func TestCalculateBill(t *testing.T) {
	tests := []struct {
		name     string
		items    []LineItem
		settings Settings
		want     wantBill
	}{
		{
			name:     "empty cart",
			items:    nil,
			settings: settingsWith(true),
			want:     wantBill{"0.00", "0.00", "0.00", "0.00", "0.00", "0.00"},
		},
		{
			name: "tax exclusive with service charge",
			items: []LineItem{
				{UnitPrice: d("100"), Quantity: 2, GSTRate: d("18"), IsTaxIncluded: false},
			},
			settings: settingsWith(true),
			want:     wantBill{"200.00", "5.00", "5.00", "10.00", "20.00", "230.00"},
		},
		{
			name: "tax included extraction",
			items: []LineItem{
				{UnitPrice: d("105"), Quantity: 1, GSTRate: d("5"), IsTaxIncluded: true},
			},
			settings: settingsWith(false),
			want:     wantBill{"100.00", "2.50", "2.50", "5.00", "0.00", "105.00"},
		},
		{
			name: "add-ons are part of the gross line",
			items: []LineItem{
				{UnitPrice: d("50"), Quantity: 3, AddOns: []AddOn{{Name: "Extra cheese", Price: d("20")}}},
			},
			settings: settingsWith(false),
			want:     wantBill{"210.00", "5.25", "5.25", "10.50", "0.00", "220.50"},
		},
		{
			name: "zero gst rate on tax included item",
			items: []LineItem{
				{UnitPrice: d("80"), Quantity: 1, GSTRate: decimal.Zero, IsTaxIncluded: true},
			},
			settings: settingsWith(false),
			want:     wantBill{"80.00", "2.00", "2.00", "4.00", "0.00", "84.00"},
		},
		{
			name: "rounding happens once at the end",
			items: []LineItem{
				{UnitPrice: d("33.33"), Quantity: 1},
			},
			settings: settingsWith(true),
			want:     wantBill{"33.33", "0.83", "0.83", "1.67", "3.33", "38.33"},
		},
		{
			name: "mixed cart",
			items: []LineItem{
				{UnitPrice: d("105"), Quantity: 2, GSTRate: d("5"), IsTaxIncluded: true},
				{UnitPrice: d("60"), Quantity: 1, AddOns: []AddOn{{Name: "Dip", Price: d("15")}}, GSTRate: d("5")},
			},
			settings: settingsWith(true),
			want:     wantBill{"275.00", "6.88", "6.88", "13.75", "27.50", "316.25"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateBill(tt.items, tt.settings)
			require.NoError(t, err)
			assertBill(t, tt.want, got)
			assert.Equal(t, tt.settings.ServiceChargeEnabled, got.IsServiceChargeEnabled)
			assert.True(t, tt.settings.ServiceChargePercentage.Equal(got.ServiceChargePercentage))
		})
	}
}

func TestCalculateBill_Deterministic(t *testing.T) {
	items := []LineItem{
		{UnitPrice: d("99.99"), Quantity: 3, GSTRate: d("12"), IsTaxIncluded: true,
			AddOns: []AddOn{{Name: "Syrup", Price: d("10.01")}}},
	}
	settings := settingsWith(true)

	first, err := CalculateBill(items, settings)
	require.NoError(t, err)
	second, err := CalculateBill(items, settings)
	require.NoError(t, err)

	assert.Equal(t, first.FinalTotal.String(), second.FinalTotal.String())
	assert.Equal(t, first.Subtotal.String(), second.Subtotal.String())
	assert.True(t, items[0].UnitPrice.Equal(d("99.99")), "input must not be mutated")
}

func TestCalculateBill_InvalidInput(t *testing.T) {
	valid := LineItem{UnitPrice: d("10"), Quantity: 1, GSTRate: d("5")}

	tests := []struct {
		name     string
		items    []LineItem
		settings func(*Settings)
		field    string
	}{
		{"negative unit price", []LineItem{{UnitPrice: d("-1"), Quantity: 1}}, nil, "items[0].unitPrice"},
		{"zero quantity", []LineItem{{UnitPrice: d("1"), Quantity: 0}}, nil, "items[0].quantity"},
		{"negative add-on", []LineItem{{UnitPrice: d("1"), Quantity: 1, AddOns: []AddOn{{Price: d("-2")}}}}, nil, "items[0].addOns[0].price"},
		{"negative item gst", []LineItem{{UnitPrice: d("1"), Quantity: 1, GSTRate: d("-5")}}, nil, "items[0].gstRate"},
		{"item gst above 100", []LineItem{valid, {UnitPrice: d("1"), Quantity: 1, GSTRate: d("101")}}, nil, "items[1].gstRate"},
		{"negative cgst", []LineItem{valid}, func(s *Settings) { s.CGSTRate = d("-0.5") }, "cgstRate"},
		{"sgst above 100", []LineItem{valid}, func(s *Settings) { s.SGSTRate = d("150") }, "sgstRate"},
		{"negative service charge", []LineItem{valid}, func(s *Settings) { s.ServiceChargePercentage = d("-10") }, "serviceChargePercentage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := DefaultSettings()
			if tt.settings != nil {
				tt.settings(&settings)
			}

			got, err := CalculateBill(tt.items, settings)
			require.Error(t, err)
			assert.Nil(t, got)
			assert.True(t, errors.Is(err, ErrInvalidInput))

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			fields := make([]string, 0, len(verr.Fields))
			for _, f := range verr.Fields {
				fields = append(fields, f.Field)
			}
			assert.Contains(t, fields, tt.field)
			assert.Equal(t, 422, verr.AppError().Code)
		})
	}
}

func TestCalculateBill_LargeServiceChargeAllowed(t *testing.T) {
	settings := settingsWith(true)
	settings.ServiceChargePercentage = d("150")

	got, err := CalculateBill([]LineItem{{UnitPrice: d("10"), Quantity: 1}}, settings)
	require.NoError(t, err)
	assert.Equal(t, "15.00", got.ServiceChargeAmount.StringFixed(2))
}

func TestResolveSettings(t *testing.T) {
	cgst := d("6")
	enabled := false

	got, defaulted := ResolveSettings(PartialSettings{CGSTRate: &cgst, ServiceChargeEnabled: &enabled})

	assert.True(t, got.CGSTRate.Equal(d("6")))
	assert.True(t, got.SGSTRate.Equal(d("2.5")))
	assert.False(t, got.ServiceChargeEnabled)
	assert.True(t, got.ServiceChargePercentage.Equal(d("10")))
	assert.True(t, got.DefaultGSTRate.Equal(d("5")))
	assert.ElementsMatch(t, []string{KeySGSTRate, KeyServiceChargePercentage, KeyDefaultGSTRate}, defaulted)
}

func TestResolveSettings_AllMissing(t *testing.T) {
	got, defaulted := ResolveSettings(PartialSettings{})
	assert.Equal(t, DefaultSettings(), got)
	assert.Len(t, defaulted, 5)
}

func TestApplyDiscount(t *testing.T) {
	bill, err := CalculateBill([]LineItem{{UnitPrice: d("100"), Quantity: 2}}, settingsWith(true))
	require.NoError(t, err)

	got, err := ApplyDiscount(bill, d("30"), "SAVE30")
	require.NoError(t, err)

	assert.Equal(t, "200.00", got.Subtotal.StringFixed(2), "discount must not touch the taxable subtotal")
	assert.Equal(t, "10.00", got.TotalGST.StringFixed(2))
	assert.Equal(t, "230.00", got.FinalTotal.StringFixed(2))
	assert.Equal(t, "30.00", got.Discount.StringFixed(2))
	assert.Equal(t, "200.00", got.PayableTotal.StringFixed(2))
	assert.Equal(t, "SAVE30", got.CouponCode)
}

func TestApplyDiscount_CappedAtFinalTotal(t *testing.T) {
	bill, err := CalculateBill([]LineItem{{UnitPrice: d("10"), Quantity: 1}}, settingsWith(false))
	require.NoError(t, err)

	got, err := ApplyDiscount(bill, d("50"), "")
	require.NoError(t, err)
	assert.Equal(t, "10.50", got.Discount.StringFixed(2))
	assert.True(t, got.PayableTotal.IsZero())

	_, err = ApplyDiscount(bill, d("-1"), "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
