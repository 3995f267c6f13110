package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/tableorder-api/internal/domain/entity"
	"github.com/sangkips/tableorder-api/internal/domain/repository"
	"github.com/sangkips/tableorder-api/pkg/apperror"
)

// CategoryService handles category-related operations
type CategoryService struct {
	categoryRepo repository.CategoryRepository
}

// NewCategoryService creates a new category service
func NewCategoryService(categoryRepo repository.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// CategoryInput represents the create and update category input
type CategoryInput struct {
	Name         string
	Description  *string
	DisplayOrder int
	IsActive     bool
}

// CreateCategory creates a new category
func (s *CategoryService) CreateCategory(ctx context.Context, input *CategoryInput) (*entity.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.NewFieldError("name", "is required")
	}

	existing, err := s.categoryRepo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Category with this name already exists")
	}

	category := &entity.Category{
		Name:         name,
		Description:  input.Description,
		DisplayOrder: input.DisplayOrder,
		IsActive:     input.IsActive,
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

// GetCategory retrieves a category by ID
func (s *CategoryService) GetCategory(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, apperror.NewNotFoundError("Category")
	}
	return category, nil
}

// ListCategories lists categories by display order
func (s *CategoryService) ListCategories(ctx context.Context, activeOnly bool) ([]entity.Category, error) {
	return s.categoryRepo.List(ctx, activeOnly)
}

// UpdateCategory updates a category
func (s *CategoryService) UpdateCategory(ctx context.Context, id uuid.UUID, input *CategoryInput) (*entity.Category, error) {
	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.NewFieldError("name", "is required")
	}
	if name != category.Name {
		existing, err := s.categoryRepo.GetByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != category.ID {
			return nil, apperror.NewConflictError("Category with this name already exists")
		}
	}

	category.Name = name
	category.Description = input.Description
	category.DisplayOrder = input.DisplayOrder
	category.IsActive = input.IsActive

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

// DeleteCategory deletes a category that has no menu items
func (s *CategoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetCategory(ctx, id); err != nil {
		return err
	}

	count, err := s.categoryRepo.CountItems(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperror.NewConflictError("Category still has menu items")
	}

	return s.categoryRepo.Delete(ctx, id)
}
