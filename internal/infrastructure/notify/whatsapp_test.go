package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sangkips/tableorder-api/internal/config"
	"github.com/sangkips/tableorder-api/internal/domain/entity"
	"github.com/sangkips/tableorder-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhatsAppClient_SendText(t *testing.T) {
	var got textMessage
	var auth, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		path = r.URL.Path
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewWhatsAppClient(&config.WhatsAppConfig{
		AccessToken:   "token-1",
		PhoneNumberID: "1055",
		APIBaseURL:    srv.URL + "/",
	})
	require.NoError(t, client.SendText(context.Background(), "9876543210", "hello"))

	assert.Equal(t, "Bearer token-1", auth)
	assert.Equal(t, "/1055/messages", path)
	assert.Equal(t, "919876543210", got.To)
	assert.Equal(t, "text", got.Type)
	assert.Equal(t, "hello", got.Text.Body)
}

func TestWhatsAppClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"bad token"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewWhatsAppClient(&config.WhatsAppConfig{AccessToken: "x", PhoneNumberID: "1", APIBaseURL: srv.URL})
	err := client.SendText(context.Background(), "9876543210", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestWhatsAppClient_DevelopmentMode(t *testing.T) {
	client := NewWhatsAppClient(&config.WhatsAppConfig{APIBaseURL: "http://127.0.0.1:1"})
	assert.False(t, client.Configured())
	assert.NoError(t, client.SendText(context.Background(), "9876543210", "logged only"))
}

func TestCouponMessage(t *testing.T) {
	coupon := &entity.Coupon{
		Code:                  "AB12CD34",
		DiscountType:          enum.DiscountTypePercentage,
		DiscountValue:         decimal.NewFromInt(15),
		MinimumOrderAmount:    decimal.NewFromInt(300),
		MaximumDiscountAmount: decimal.NewNullDecimal(decimal.NewFromInt(100)),
		ExpiresAt:             time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC),
	}

	msg := CouponMessage("DYU Art Cafe", coupon, enum.CouponTypeCampaign)
	assert.Contains(t, msg, "*AB12CD34*")
	assert.Contains(t, msg, "15% off (up to ₹100.00)")
	assert.Contains(t, msg, "Minimum order: ₹300.00")
	assert.Contains(t, msg, "30 Apr 2026")
	assert.Contains(t, msg, "special offer from DYU Art Cafe")
}

func TestInternationalNumber(t *testing.T) {
	assert.Equal(t, "919876543210", InternationalNumber("9876543210"))
	assert.Equal(t, "919876543210", InternationalNumber("+919876543210"))
}
