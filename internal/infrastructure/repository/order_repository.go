package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/tableorder-api/internal/domain/entity"
	"github.com/sangkips/tableorder-api/internal/domain/enum"
	domainRepo "github.com/sangkips/tableorder-api/internal/domain/repository"
	"gorm.io/gorm"
)

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) domainRepo.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(order).Error
	})
}

func (r *orderRepository) CreateWithCoupon(ctx context.Context, order *entity.Order, usage *entity.CouponUsage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		usage.OrderID = order.ID
		return redeemCoupon(tx, usage)
	})
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	var order entity.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &order, err
}

func (r *orderRepository) List(ctx context.Context, params *domainRepo.OrderFilterParams) ([]entity.Order, int64, error) {
	var orders []entity.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Order{}).
		Scopes(Between("created_at", params.StartDate, params.EndDate))

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	if params.TableNumber != nil {
		query = query.Where("table_number = ?", *params.TableNumber)
	}

	if params.CustomerPhone != "" {
		query = query.Where("customer_phone = ?", params.CustomerPhone)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Scopes(Paginate(params.Pagination)).
		Preload("Items").
		Order("created_at " + sortDirection(params.SortOrder)).
		Find(&orders).Error

	return orders, total, err
}

func (r *orderRepository) ListBySession(ctx context.Context, sessionID string, unpaidOnly bool) ([]entity.Order, error) {
	var orders []entity.Order
	query := r.db.WithContext(ctx).Where("session_id = ?", sessionID)
	if unpaidOnly {
		query = query.Where("paid_at IS NULL")
	}
	err := query.Preload("Items").Order("created_at ASC").Find(&orders).Error
	return orders, err
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.OrderStatus) error {
	return r.db.WithContext(ctx).Model(&entity.Order{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// Settle pays every order in one transaction. The paid_at IS NULL guard makes
// a concurrent second payment fail instead of double counting revenue.
func (r *orderRepository) Settle(ctx context.Context, s *domainRepo.Settlement) error {
	if len(s.OrderIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entity.Order{}).
			Where("id IN ? AND paid_at IS NULL", s.OrderIDs).
			Updates(map[string]interface{}{
				"status":         enum.OrderStatusCompleted,
				"ready_to_pay":   true,
				"payment_method": s.PaymentMethod,
				"paid_at":        s.PaidAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != int64(len(s.OrderIDs)) {
			return domainRepo.ErrAlreadySettled
		}
		if len(s.Records) > 0 {
			if err := tx.Create(&s.Records).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
