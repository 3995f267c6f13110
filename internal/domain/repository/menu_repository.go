package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/tableorder-api/internal/domain/entity"
	"github.com/sangkips/tableorder-api/internal/domain/enum"
	"github.com/sangkips/tableorder-api/pkg/pagination"
)

// MenuItemRepository defines the interface for menu item data operations
type MenuItemRepository interface {
	Create(ctx context.Context, item *entity.MenuItem) error
	// CreateBatch inserts items with their add-ons in one transaction (menu seeding)
	CreateBatch(ctx context.Context, items []entity.MenuItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.MenuItem, error)
	// GetByIDs retrieves multiple menu items with add-ons in a single query (prevents N+1)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.MenuItem, error)
	// Update saves the item and replaces its add-ons
	Update(ctx context.Context, item *entity.MenuItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *MenuItemFilterParams) ([]entity.MenuItem, int64, error)
	SetAvailability(ctx context.Context, id uuid.UUID, available bool) error
	Count(ctx context.Context) (int64, error)
}

// MenuItemFilterParams contains filtering parameters for menu queries
type MenuItemFilterParams struct {
	Pagination    *pagination.PaginationParams // nil returns every match
	Search        string
	CategoryID    *uuid.UUID
	FoodType      *enum.FoodType
	AvailableOnly bool
}

// CategoryRepository defines the interface for category data operations
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	GetByName(ctx context.Context, name string) (*entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns categories ordered by display order
	List(ctx context.Context, activeOnly bool) ([]entity.Category, error)
	// CountItems returns how many menu items reference the category
	CountItems(ctx context.Context, id uuid.UUID) (int64, error)
}
