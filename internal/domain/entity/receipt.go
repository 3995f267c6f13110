package entity

import (
	"time"

	"github.com/sangkips/tableorder-api/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// RestaurantInfo is the header printed at the top of a bill.
type RestaurantInfo struct {
	Name           string `json:"name"`
	Address        string `json:"address"`
	Phone          string `json:"phone"`
	GSTIN          string `json:"gstin"`
	NumberOfTables int    `json:"numberOfTables"`
}

// ReceiptItem is a single aggregated line on a bill.
type ReceiptItem struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	AddOns    []string        `json:"addOns,omitempty"`
	Total     decimal.Decimal `json:"total"`
}

// BillReceipt is a value object for the bill of a table session.
// It is composed from orders and settings at request time, never stored.
type BillReceipt struct {
	Restaurant           RestaurantInfo         `json:"restaurant"`
	SessionID            string                 `json:"sessionId"`
	TableNumber          int                    `json:"tableNumber"`
	CustomerPhone        string                 `json:"customerPhone"`
	CustomerName         string                 `json:"customerName,omitempty"`
	OrderIDs             []string               `json:"orderIds"`
	Items                []ReceiptItem          `json:"items"`
	Bill                 billing.DiscountedBill `json:"bill"`
	ComputedWithDefaults bool                   `json:"computedWithDefaults"`
	Paid                 bool                   `json:"paid"`
	PaymentMethod        string                 `json:"paymentMethod,omitempty"`
	IssuedAt             time.Time              `json:"issuedAt"`
}
