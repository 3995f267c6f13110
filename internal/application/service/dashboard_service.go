package service

import (
	"context"
	"time"

	"github.com/sangkips/tableorder-api/internal/domain/enum"
	"github.com/sangkips/tableorder-api/internal/domain/repository"
	"github.com/sangkips/tableorder-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

const (
	defaultSummaryDays = 7
	maxSummaryDays     = 90
	popularItemsLimit  = 10
	allTimeAnalytics   = 100 * 365 * 24 * time.Hour
)

// DashboardService provides dashboard statistics from paid bills
type DashboardService struct {
	analyticsRepo repository.AnalyticsRepository
	orderRepo     repository.OrderRepository
	customerRepo  repository.CustomerRepository
	location      *time.Location
	now           func() time.Time
}

// NewDashboardService creates a new dashboard service. Days start at
// midnight in loc.
func NewDashboardService(
	analyticsRepo repository.AnalyticsRepository,
	orderRepo repository.OrderRepository,
	customerRepo repository.CustomerRepository,
	loc *time.Location,
) *DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardService{
		analyticsRepo: analyticsRepo,
		orderRepo:     orderRepo,
		customerRepo:  customerRepo,
		location:      loc,
		now:           time.Now,
	}
}

// DashboardStats represents dashboard statistics
type DashboardStats struct {
	TodayRevenue      decimal.Decimal                     `json:"today_revenue"`
	TodayOrders       int64                               `json:"today_orders"`
	TotalRevenue      decimal.Decimal                     `json:"total_revenue"`
	TotalOrders       int64                               `json:"total_orders"`
	AverageOrderValue decimal.Decimal                     `json:"average_order_value"`
	PendingOrders     int64                               `json:"pending_orders"`
	Customers         *repository.CustomerTierCounts      `json:"customers"`
	DailySummary      []repository.DailySummaryResult     `json:"daily_summary"`
	PopularItems      []repository.PopularItemResult      `json:"popular_items"`
	TablePerformance  []repository.TablePerformanceResult `json:"table_performance"`
	HourlyBreakdown   []repository.HourlyResult           `json:"hourly_breakdown"`
}

// GetDashboardStats returns dashboard statistics over the last days days.
// Out of range values use the default window.
func (s *DashboardService) GetDashboardStats(ctx context.Context, days int) (*DashboardStats, error) {
	if days < 1 || days > maxSummaryDays {
		days = defaultSummaryDays
	}

	now := s.now().In(s.location)
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)
	since := startOfDay.AddDate(0, 0, -(days - 1))

	stats := &DashboardStats{}

	today, err := s.analyticsRepo.GetRevenue(ctx, startOfDay, startOfDay.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	stats.TodayRevenue = today.Revenue
	stats.TodayOrders = today.Orders

	total, err := s.analyticsRepo.GetRevenue(ctx, now.Add(-allTimeAnalytics), now.Add(time.Minute))
	if err != nil {
		return nil, err
	}
	stats.TotalRevenue = total.Revenue
	stats.TotalOrders = total.Orders
	stats.AverageOrderValue = averageOf(total.Revenue, total.Orders)

	pending := enum.OrderStatusPending
	_, pendingCount, err := s.orderRepo.List(ctx, &repository.OrderFilterParams{
		Pagination: &pagination.PaginationParams{Page: 1, Limit: 1},
		Status:     &pending,
	})
	if err != nil {
		return nil, err
	}
	stats.PendingOrders = pendingCount

	if stats.Customers, err = s.customerRepo.TierCounts(ctx); err != nil {
		return nil, err
	}
	if stats.DailySummary, err = s.analyticsRepo.GetDailySummary(ctx, since); err != nil {
		return nil, err
	}
	if stats.PopularItems, err = s.analyticsRepo.GetPopularItems(ctx, since, popularItemsLimit); err != nil {
		return nil, err
	}
	if stats.TablePerformance, err = s.analyticsRepo.GetTablePerformance(ctx, since); err != nil {
		return nil, err
	}
	if stats.HourlyBreakdown, err = s.analyticsRepo.GetHourlyDistribution(ctx, since); err != nil {
		return nil, err
	}

	return stats, nil
}

func averageOf(revenue decimal.Decimal, orders int64) decimal.Decimal {
	if orders == 0 {
		return decimal.Zero
	}
	return revenue.Div(decimal.NewFromInt(orders)).Round(2)
}
