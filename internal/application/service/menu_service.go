package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/tableorder-api/internal/domain/billing"
	"github.com/sangkips/tableorder-api/internal/domain/entity"
	"github.com/sangkips/tableorder-api/internal/domain/enum"
	"github.com/sangkips/tableorder-api/internal/domain/repository"
	"github.com/sangkips/tableorder-api/internal/infrastructure/seed"
	"github.com/sangkips/tableorder-api/pkg/apperror"
	"github.com/sangkips/tableorder-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// MenuService handles menu item operations
type MenuService struct {
	menuRepo     repository.MenuItemRepository
	categoryRepo repository.CategoryRepository
	settings     SettingsProvider
}

// NewMenuService creates a new menu service
func NewMenuService(
	menuRepo repository.MenuItemRepository,
	categoryRepo repository.CategoryRepository,
	settings SettingsProvider,
) *MenuService {
	return &MenuService{
		menuRepo:     menuRepo,
		categoryRepo: categoryRepo,
		settings:     settings,
	}
}

// AddOnInput represents an add-on on a menu item
type AddOnInput struct {
	Name  string
	Price decimal.Decimal
}

// MenuItemInput represents the create and update menu item input
type MenuItemInput struct {
	CategoryID    uuid.UUID
	Name          string
	Description   *string
	Price         decimal.Decimal
	ImageURL      *string
	FoodType      enum.FoodType
	IsAvailable   bool
	GSTRate       *decimal.Decimal // nil uses default_gst_rate
	IsTaxIncluded bool
	AddOns        []AddOnInput
}

// CreateMenuItem creates a menu item with its add-ons
func (s *MenuService) CreateMenuItem(ctx context.Context, input *MenuItemInput) (*entity.MenuItem, error) {
	item := &entity.MenuItem{}
	if err := s.apply(ctx, item, input); err != nil {
		return nil, err
	}

	if err := s.menuRepo.Create(ctx, item); err != nil {
		return nil, err
	}

	return s.menuRepo.GetByID(ctx, item.ID)
}

// GetMenuItem retrieves a menu item by ID
func (s *MenuService) GetMenuItem(ctx context.Context, id uuid.UUID) (*entity.MenuItem, error) {
	item, err := s.menuRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperror.NewNotFoundError("Menu item")
	}
	return item, nil
}

// UpdateMenuItem replaces a menu item's fields and add-ons
func (s *MenuService) UpdateMenuItem(ctx context.Context, id uuid.UUID, input *MenuItemInput) (*entity.MenuItem, error) {
	item, err := s.GetMenuItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, item, input); err != nil {
		return nil, err
	}

	if err := s.menuRepo.Update(ctx, item); err != nil {
		return nil, err
	}

	return s.menuRepo.GetByID(ctx, id)
}

// DeleteMenuItem deletes a menu item. Past orders keep the item name.
func (s *MenuService) DeleteMenuItem(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetMenuItem(ctx, id); err != nil {
		return err
	}
	return s.menuRepo.Delete(ctx, id)
}

// SetAvailability toggles whether diners can order the item
func (s *MenuService) SetAvailability(ctx context.Context, id uuid.UUID, available bool) (*entity.MenuItem, error) {
	if _, err := s.GetMenuItem(ctx, id); err != nil {
		return nil, err
	}
	if err := s.menuRepo.SetAvailability(ctx, id, available); err != nil {
		return nil, err
	}
	return s.GetMenuItem(ctx, id)
}

// MenuListInput represents the admin menu list filters
type MenuListInput struct {
	Pagination *pagination.PaginationParams
	Search     string
	CategoryID *uuid.UUID
	FoodType   string
}

// ListMenuItems returns a page of menu items for the admin dashboard
func (s *MenuService) ListMenuItems(ctx context.Context, input *MenuListInput) (*pagination.PaginatedResult[entity.MenuItem], error) {
	if input.Pagination == nil {
		input.Pagination = pagination.DefaultPagination()
	}
	input.Pagination.Validate()

	foodType, err := parseFoodTypeFilter(input.FoodType)
	if err != nil {
		return nil, err
	}

	items, total, err := s.menuRepo.List(ctx, &repository.MenuItemFilterParams{
		Pagination: input.Pagination,
		Search:     strings.TrimSpace(input.Search),
		CategoryID: input.CategoryID,
		FoodType:   foodType,
	})
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(input.Pagination.Page, input.Pagination.Limit, total)
	return pagination.NewPaginatedResult(items, pag), nil
}

// MenuSection is one category of the public menu with its available items
type MenuSection struct {
	Category entity.Category   `json:"category"`
	Items    []entity.MenuItem `json:"items"`
}

// PublicMenu returns available items grouped by active category, in display order.
// Categories with no matching items are left out.
func (s *MenuService) PublicMenu(ctx context.Context, search, foodType string) ([]MenuSection, error) {
	ft, err := parseFoodTypeFilter(foodType)
	if err != nil {
		return nil, err
	}

	categories, err := s.categoryRepo.List(ctx, true)
	if err != nil {
		return nil, err
	}

	items, _, err := s.menuRepo.List(ctx, &repository.MenuItemFilterParams{
		Search:        strings.TrimSpace(search),
		FoodType:      ft,
		AvailableOnly: true,
	})
	if err != nil {
		return nil, err
	}

	byCategory := make(map[uuid.UUID][]entity.MenuItem, len(categories))
	for _, item := range items {
		item.Category = nil
		byCategory[item.CategoryID] = append(byCategory[item.CategoryID], item)
	}

	sections := make([]MenuSection, 0, len(categories))
	for _, category := range categories {
		if len(byCategory[category.ID]) == 0 {
			continue
		}
		sections = append(sections, MenuSection{
			Category: category,
			Items:    byCategory[category.ID],
		})
	}
	return sections, nil
}

// SeedMenu loads a menu file into an empty menu. It does nothing when items
// already exist and reports how many items were created.
func (s *MenuService) SeedMenu(ctx context.Context, file *seed.MenuFile) (int, error) {
	count, err := s.menuRepo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	defaultGST := s.defaultGSTRate(ctx)
	categories, err := file.ToEntities(defaultGST)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, c := range categories {
		items := c.MenuItems
		c.MenuItems = nil

		category, err := s.categoryRepo.GetByName(ctx, c.Name)
		if err != nil {
			return created, err
		}
		if category == nil {
			category = &c
			if err := s.categoryRepo.Create(ctx, category); err != nil {
				return created, fmt.Errorf("seed category %s: %w", c.Name, err)
			}
		}

		for i := range items {
			items[i].CategoryID = category.ID
		}
		if err := s.menuRepo.CreateBatch(ctx, items); err != nil {
			return created, fmt.Errorf("seed items for %s: %w", c.Name, err)
		}
		created += len(items)
	}

	log.Printf("Seeded %d menu items in %d categories", created, len(categories))
	return created, nil
}

func (s *MenuService) apply(ctx context.Context, item *entity.MenuItem, input *MenuItemInput) error {
	var fieldErrors []apperror.FieldError
	add := func(field, message string) {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: field, Message: message})
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		add("name", "is required")
	}
	if input.Price.IsNegative() {
		add("price", "must not be negative")
	}
	foodType := input.FoodType
	if foodType == "" {
		foodType = enum.FoodTypeVeg
	}
	if !foodType.Valid() {
		add("foodType", "must be veg or non-veg")
	}
	if input.GSTRate != nil && (input.GSTRate.IsNegative() || input.GSTRate.GreaterThan(decimal.NewFromInt(100))) {
		add("gstRate", "must be between 0 and 100")
	}
	for i, a := range input.AddOns {
		if strings.TrimSpace(a.Name) == "" {
			add(fmt.Sprintf("addOns[%d].name", i), "is required")
		}
		if a.Price.IsNegative() {
			add(fmt.Sprintf("addOns[%d].price", i), "must not be negative")
		}
	}

	if input.CategoryID == uuid.Nil {
		add("categoryId", "is required")
	} else {
		category, err := s.categoryRepo.GetByID(ctx, input.CategoryID)
		if err != nil {
			return err
		}
		if category == nil {
			add("categoryId", "category not found")
		}
	}
	if len(fieldErrors) > 0 {
		return apperror.NewValidationError(fieldErrors)
	}

	gstRate := s.defaultGSTRate(ctx)
	if input.GSTRate != nil {
		gstRate = *input.GSTRate
	}

	item.CategoryID = input.CategoryID
	item.Name = name
	item.Description = input.Description
	item.Price = input.Price
	item.ImageURL = input.ImageURL
	item.FoodType = foodType
	item.IsAvailable = input.IsAvailable
	item.GSTRate = gstRate
	item.IsTaxIncluded = input.IsTaxIncluded
	item.Category = nil

	addOns := make([]entity.AddOn, 0, len(input.AddOns))
	for _, a := range input.AddOns {
		addOns = append(addOns, entity.AddOn{Name: strings.TrimSpace(a.Name), Price: a.Price})
	}
	item.AddOns = addOns

	return nil
}

func (s *MenuService) defaultGSTRate(ctx context.Context) decimal.Decimal {
	snapshot, err := s.settings.Snapshot(ctx)
	if err != nil {
		log.Printf("using built-in default GST rate: %v", err)
		return billing.DefaultSettings().DefaultGSTRate
	}
	return snapshot.Billing.DefaultGSTRate
}

func parseFoodTypeFilter(raw string) (*enum.FoodType, error) {
	if raw == "" {
		return nil, nil
	}
	ft := enum.FoodType(raw)
	if !ft.Valid() {
		return nil, apperror.NewFieldError("food_type", "must be veg or non-veg")
	}
	return &ft, nil
}
