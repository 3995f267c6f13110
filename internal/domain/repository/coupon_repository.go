package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tableorder-api/internal/domain/entity"
	"github.com/sangkips/tableorder-api/internal/domain/enum"
	"github.com/sangkips/tableorder-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// CouponRepository defines the interface for coupon data operations
type CouponRepository interface {
	Create(ctx context.Context, coupon *entity.Coupon) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Coupon, error)
	GetByCode(ctx context.Context, code string) (*entity.Coupon, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	List(ctx context.Context, params *CouponFilterParams) ([]entity.Coupon, int64, error)
	// Redeem flips is_used guarded by is_used = false and writes the usage
	// history row in the same transaction.
	Redeem(ctx context.Context, usage *entity.CouponUsage) error
	MarkWhatsAppSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error
	Stats(ctx context.Context) (*CouponStats, error)

	GetTypeByName(ctx context.Context, name enum.CouponTypeName) (*entity.CouponType, error)
	ListTypes(ctx context.Context) ([]entity.CouponType, error)
}

// CouponFilterParams contains filtering parameters for coupon queries
type CouponFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string // matches code or customer phone
	Type       string
	Status     *enum.CouponStatus
	Now        time.Time
}

// CouponStats aggregates coupon redemption totals
type CouponStats struct {
	TotalSavingsProvided decimal.Decimal
	TotalUsedCoupons     int64
}
