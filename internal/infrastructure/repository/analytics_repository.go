package repository

import (
	"context"
	"time"

	domainRepo "github.com/sangkips/tableorder-api/internal/domain/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(db *gorm.DB) domainRepo.AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) GetRevenue(ctx context.Context, from, to time.Time) (*domainRepo.RevenueTotals, error) {
	var row struct {
		Orders  int64
		Revenue decimal.NullDecimal
	}

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			COUNT(*) as orders,
			SUM(total_amount) as revenue
		FROM analytics
		WHERE payment_date >= ? AND payment_date < ?
	`, from, to).Scan(&row).Error
	if err != nil {
		return nil, err
	}

	totals := &domainRepo.RevenueTotals{Orders: row.Orders, Revenue: decimal.Zero}
	if row.Revenue.Valid {
		totals.Revenue = row.Revenue.Decimal
	}
	return totals, nil
}

func (r *analyticsRepository) GetDailySummary(ctx context.Context, since time.Time) ([]domainRepo.DailySummaryResult, error) {
	var results []domainRepo.DailySummaryResult

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			payment_day as date,
			COUNT(*) as total_orders,
			COALESCE(SUM(total_amount), 0) as total_revenue,
			COUNT(DISTINCT customer_phone) as unique_customers,
			COUNT(DISTINCT table_number) as tables_served
		FROM analytics
		WHERE payment_date >= ?
		GROUP BY payment_day
		ORDER BY payment_day DESC
	`, since).Scan(&results).Error

	if err != nil {
		return nil, err
	}

	return results, nil
}

func (r *analyticsRepository) GetPopularItems(ctx context.Context, since time.Time, limit int) ([]domainRepo.PopularItemResult, error) {
	var results []domainRepo.PopularItemResult

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			oi.menu_item_name as menu_item_name,
			COALESCE(SUM(oi.quantity), 0) as total_quantity,
			COALESCE(SUM(oi.line_total), 0) as total_revenue,
			COUNT(DISTINCT oi.order_id) as order_count
		FROM order_items oi
		JOIN analytics a ON a.order_id = oi.order_id
		WHERE a.payment_date >= ?
		GROUP BY oi.menu_item_name
		ORDER BY total_quantity DESC, total_revenue DESC
		LIMIT ?
	`, since, limit).Scan(&results).Error

	if err != nil {
		return nil, err
	}

	return results, nil
}

func (r *analyticsRepository) GetTablePerformance(ctx context.Context, since time.Time) ([]domainRepo.TablePerformanceResult, error) {
	var rows []struct {
		TableNumber  int
		TotalOrders  int64
		TotalRevenue decimal.Decimal
	}

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			table_number,
			COUNT(*) as total_orders,
			COALESCE(SUM(total_amount), 0) as total_revenue
		FROM analytics
		WHERE payment_date >= ?
		GROUP BY table_number
		ORDER BY total_revenue DESC
	`, since).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	// Average computed here so rounding does not depend on the SQL dialect
	results := make([]domainRepo.TablePerformanceResult, 0, len(rows))
	for _, row := range rows {
		avg := decimal.Zero
		if row.TotalOrders > 0 {
			avg = row.TotalRevenue.Div(decimal.NewFromInt(row.TotalOrders)).Round(2)
		}
		results = append(results, domainRepo.TablePerformanceResult{
			TableNumber:       row.TableNumber,
			TotalOrders:       row.TotalOrders,
			TotalRevenue:      row.TotalRevenue,
			AverageOrderValue: avg,
		})
	}
	return results, nil
}

func (r *analyticsRepository) GetHourlyDistribution(ctx context.Context, since time.Time) ([]domainRepo.HourlyResult, error) {
	var results []domainRepo.HourlyResult

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			payment_hour as hour,
			COUNT(*) as order_count,
			COALESCE(SUM(total_amount), 0) as total_revenue
		FROM analytics
		WHERE payment_date >= ?
		GROUP BY payment_hour
		ORDER BY payment_hour ASC
	`, since).Scan(&results).Error

	if err != nil {
		return nil, err
	}

	return results, nil
}
