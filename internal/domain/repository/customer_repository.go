package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tableorder-api/internal/domain/entity"
	"github.com/sangkips/tableorder-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// CustomerRepository defines the interface for customer data operations
type CustomerRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error)
	GetByPhone(ctx context.Context, phone string) (*entity.Customer, error)
	// Upsert creates the customer on first verification and refreshes the
	// last table and verification time afterwards.
	Upsert(ctx context.Context, customer *entity.Customer) error
	// RecordOrder bumps order counters after an order is placed
	RecordOrder(ctx context.Context, phone string, amount decimal.Decimal, tableNumber int, at time.Time) error
	List(ctx context.Context, params *CustomerFilterParams) ([]entity.Customer, int64, error)
	TierCounts(ctx context.Context) (*CustomerTierCounts, error)
}

// CustomerFilterParams contains filtering parameters for customer queries
type CustomerFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string // phone or name
	SortBy     string // last_order_date, total_spent or total_orders
	SortOrder  string
}

// CustomerTierCounts holds the number of customers per loyalty tier
type CustomerTierCounts struct {
	Total   int64 `json:"total"`
	New     int64 `json:"new"`
	Regular int64 `json:"regular"`
	VIP     int64 `json:"vip"`
}
