package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// DailySummaryResult represents paid business for a single day
type DailySummaryResult struct {
	Date            string          `json:"date"`
	TotalOrders     int64           `json:"total_orders"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	UniqueCustomers int64           `json:"unique_customers"`
	TablesServed    int64           `json:"tables_served"`
}

// PopularItemResult represents a menu item's sales performance
type PopularItemResult struct {
	MenuItemName  string          `json:"menu_item_name"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	OrderCount    int64           `json:"order_count"`
}

// TablePerformanceResult represents revenue earned per table
type TablePerformanceResult struct {
	TableNumber       int             `json:"table_number"`
	TotalOrders       int64           `json:"total_orders"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
}

// HourlyResult represents paid orders per hour of day
type HourlyResult struct {
	Hour         int             `json:"hour"`
	OrderCount   int64           `json:"order_count"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

// RevenueTotals is a revenue aggregate over a time window
type RevenueTotals struct {
	Orders  int64
	Revenue decimal.Decimal
}

// AnalyticsRepository defines interface for analytics/aggregation queries.
// All queries read paid bills from the analytics table.
type AnalyticsRepository interface {
	// GetRevenue returns paid order count and revenue in [from, to)
	GetRevenue(ctx context.Context, from, to time.Time) (*RevenueTotals, error)

	// GetDailySummary returns one row per day since the given instant, newest first
	GetDailySummary(ctx context.Context, since time.Time) ([]DailySummaryResult, error)

	// GetPopularItems returns the best selling items by quantity
	GetPopularItems(ctx context.Context, since time.Time, limit int) ([]PopularItemResult, error)

	// GetTablePerformance returns revenue per table
	GetTablePerformance(ctx context.Context, since time.Time) ([]TablePerformanceResult, error)

	// GetHourlyDistribution returns paid orders grouped by hour of payment
	GetHourlyDistribution(ctx context.Context, since time.Time) ([]HourlyResult, error)
}
