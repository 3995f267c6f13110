package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tableorder-api/internal/domain/entity"
	"github.com/sangkips/tableorder-api/internal/domain/enum"
	domainRepo "github.com/sangkips/tableorder-api/internal/domain/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type couponRepository struct {
	db *gorm.DB
}

// NewCouponRepository creates a new coupon repository
func NewCouponRepository(db *gorm.DB) domainRepo.CouponRepository {
	return &couponRepository{db: db}
}

func (r *couponRepository) Create(ctx context.Context, coupon *entity.Coupon) error {
	return r.db.WithContext(ctx).Omit("Type").Create(coupon).Error
}

func (r *couponRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Coupon, error) {
	var coupon entity.Coupon
	err := r.db.WithContext(ctx).Preload("Type").First(&coupon, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &coupon, err
}

func (r *couponRepository) GetByCode(ctx context.Context, code string) (*entity.Coupon, error) {
	var coupon entity.Coupon
	err := r.db.WithContext(ctx).Preload("Type").
		First(&coupon, "code = ?", strings.ToUpper(code)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &coupon, err
}

func (r *couponRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Coupon{}).
		Where("code = ?", strings.ToUpper(code)).
		Count(&count).Error
	return count > 0, err
}

func (r *couponRepository) List(ctx context.Context, params *domainRepo.CouponFilterParams) ([]entity.Coupon, int64, error) {
	var coupons []entity.Coupon
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Coupon{}).
		Scopes(ContainsFold(params.Search, "code", "customer_phone"))

	if params.Type != "" {
		query = query.Where("type_id IN (?)",
			r.db.Model(&entity.CouponType{}).Select("id").Where("name = ?", strings.ToUpper(params.Type)))
	}

	if params.Status != nil {
		now := params.Now
		if now.IsZero() {
			now = time.Now()
		}
		switch *params.Status {
		case enum.CouponStatusUsed:
			query = query.Where("is_used = ?", true)
		case enum.CouponStatusUnused:
			query = query.Where("is_used = ? AND expires_at > ?", false, now)
		case enum.CouponStatusExpired:
			query = query.Where("is_used = ? AND expires_at <= ?", false, now)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Scopes(Paginate(params.Pagination)).
		Preload("Type").
		Order("created_at DESC").
		Find(&coupons).Error

	return coupons, total, err
}

// Redeem marks the coupon used and records the usage. The is_used guard
// lets exactly one concurrent redemption win.
func (r *couponRepository) Redeem(ctx context.Context, usage *entity.CouponUsage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return redeemCoupon(tx, usage)
	})
}

// redeemCoupon flips is_used only while it is still false, so of two
// concurrent redemptions exactly one succeeds.
func redeemCoupon(tx *gorm.DB, usage *entity.CouponUsage) error {
	result := tx.Model(&entity.Coupon{}).
		Where("id = ? AND is_used = ?", usage.CouponID, false).
		Updates(map[string]interface{}{
			"is_used":          true,
			"used_at":          usage.UsedAt,
			"used_in_order_id": usage.OrderID,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainRepo.ErrCouponAlreadyUsed
	}
	return tx.Create(usage).Error
}

func (r *couponRepository) MarkWhatsAppSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	return r.db.WithContext(ctx).Model(&entity.Coupon{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"whatsapp_sent":    true,
			"whatsapp_sent_at": sentAt,
		}).Error
}

func (r *couponRepository) Stats(ctx context.Context) (*domainRepo.CouponStats, error) {
	var row struct {
		TotalSavings decimal.NullDecimal
		UsedCount    int64
	}
	err := r.db.WithContext(ctx).Model(&entity.CouponUsage{}).
		Select("SUM(discount_applied) AS total_savings, COUNT(*) AS used_count").
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	stats := &domainRepo.CouponStats{TotalUsedCoupons: row.UsedCount}
	if row.TotalSavings.Valid {
		stats.TotalSavingsProvided = row.TotalSavings.Decimal
	}
	return stats, nil
}

func (r *couponRepository) GetTypeByName(ctx context.Context, name enum.CouponTypeName) (*entity.CouponType, error) {
	var couponType entity.CouponType
	err := r.db.WithContext(ctx).First(&couponType, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &couponType, err
}

func (r *couponRepository) ListTypes(ctx context.Context) ([]entity.CouponType, error) {
	var types []entity.CouponType
	err := r.db.WithContext(ctx).Order("id ASC").Find(&types).Error
	return types, err
}
