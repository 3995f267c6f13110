package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tableorder-api/internal/domain/entity"
	"github.com/sangkips/tableorder-api/internal/domain/enum"
	"github.com/sangkips/tableorder-api/pkg/pagination"
)

// OrderRepository defines the interface for order data operations
type OrderRepository interface {
	// Create inserts the order and its items in one transaction
	Create(ctx context.Context, order *entity.Order) error
	// CreateWithCoupon inserts the order and redeems the coupon in one
	// transaction. It fails with ErrCouponAlreadyUsed if the coupon was taken.
	CreateWithCoupon(ctx context.Context, order *entity.Order, usage *entity.CouponUsage) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	List(ctx context.Context, params *OrderFilterParams) ([]entity.Order, int64, error)
	// ListBySession returns the session's orders with items, oldest first
	ListBySession(ctx context.Context, sessionID string, unpaidOnly bool) ([]entity.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enum.OrderStatus) error
	// Settle marks orders completed and paid and stores one payment record per
	// order, all in one transaction. Orders already paid are left untouched and
	// reported through ErrAlreadySettled.
	Settle(ctx context.Context, settlement *Settlement) error
}

// Settlement describes the payment of a table session's orders
type Settlement struct {
	OrderIDs      []uuid.UUID
	PaymentMethod string
	PaidAt        time.Time
	Records       []entity.PaymentRecord
}

// OrderFilterParams contains filtering parameters for order queries
type OrderFilterParams struct {
	Pagination    *pagination.PaginationParams
	Status        *enum.OrderStatus
	TableNumber   *int
	CustomerPhone string
	StartDate     *time.Time
	EndDate       *time.Time
	SortOrder     string
}
