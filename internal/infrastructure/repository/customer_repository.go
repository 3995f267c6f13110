package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tableorder-api/internal/domain/entity"
	domainRepo "github.com/sangkips/tableorder-api/internal/domain/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var customerSortColumns = map[string]string{
	"last_order_date": "last_order_date",
	"total_spent":     "total_spent",
	"total_orders":    "total_orders",
}

type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *gorm.DB) domainRepo.CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	var customer entity.Customer
	err := r.db.WithContext(ctx).First(&customer, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &customer, err
}

func (r *customerRepository) GetByPhone(ctx context.Context, phone string) (*entity.Customer, error) {
	var customer entity.Customer
	err := r.db.WithContext(ctx).First(&customer, "phone = ?", phone).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &customer, err
}

func (r *customerRepository) Upsert(ctx context.Context, customer *entity.Customer) error {
	updates := []string{"verified_at", "last_table_number", "updated_at"}
	if customer.FirstName != nil {
		updates = append(updates, "first_name")
	}
	if customer.LastName != nil {
		updates = append(updates, "last_name")
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "phone"}},
		DoUpdates: clause.AssignmentColumns(updates),
	}).Create(customer).Error
	if err != nil {
		return err
	}

	// On conflict the generated id is not the stored one, reload it
	stored, err := r.GetByPhone(ctx, customer.Phone)
	if err != nil {
		return err
	}
	if stored != nil {
		*customer = *stored
	}
	return nil
}

func (r *customerRepository) RecordOrder(ctx context.Context, phone string, amount decimal.Decimal, tableNumber int, at time.Time) error {
	return r.db.WithContext(ctx).Model(&entity.Customer{}).
		Where("phone = ?", phone).
		Updates(map[string]interface{}{
			"total_orders":      gorm.Expr("total_orders + ?", 1),
			"total_spent":       gorm.Expr("total_spent + ?", amount),
			"last_order_date":   at,
			"last_table_number": tableNumber,
		}).Error
}

func (r *customerRepository) List(ctx context.Context, params *domainRepo.CustomerFilterParams) ([]entity.Customer, int64, error) {
	var customers []entity.Customer
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Customer{}).
		Scopes(ContainsFold(params.Search, "phone", "first_name", "last_name"))

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy, ok := customerSortColumns[params.SortBy]
	if !ok {
		sortBy = "last_order_date"
	}

	err := query.Scopes(Paginate(params.Pagination)).
		Order(clause.OrderByColumn{Column: clause.Column{Name: sortBy}, Desc: sortDirection(params.SortOrder) == "DESC"}).
		Order("created_at DESC").
		Find(&customers).Error

	return customers, total, err
}

func (r *customerRepository) TierCounts(ctx context.Context) (*domainRepo.CustomerTierCounts, error) {
	var row struct {
		Total       int64
		TierNew     int64
		TierRegular int64
		TierVip     int64
	}
	err := r.db.WithContext(ctx).Model(&entity.Customer{}).
		Select(`COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN total_orders < 2 THEN 1 ELSE 0 END), 0) AS tier_new,
			COALESCE(SUM(CASE WHEN total_orders BETWEEN 2 AND 9 THEN 1 ELSE 0 END), 0) AS tier_regular,
			COALESCE(SUM(CASE WHEN total_orders >= 10 THEN 1 ELSE 0 END), 0) AS tier_vip`).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &domainRepo.CustomerTierCounts{
		Total:   row.Total,
		New:     row.TierNew,
		Regular: row.TierRegular,
		VIP:     row.TierVip,
	}, nil
}
