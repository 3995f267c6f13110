package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/tableorder-api/internal/domain/entity"
	"github.com/sangkips/tableorder-api/internal/domain/repository"
	"github.com/sangkips/tableorder-api/pkg/apperror"
	"github.com/sangkips/tableorder-api/pkg/pagination"
)

// CustomerService handles customer lookups for the admin dashboard
type CustomerService struct {
	customerRepo repository.CustomerRepository
}

// NewCustomerService creates a new customer service
func NewCustomerService(customerRepo repository.CustomerRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

// CustomerView is a customer with its loyalty tier
type CustomerView struct {
	entity.Customer
	Tier string `json:"tier"`
}

// CustomerListInput represents the customer list filters
type CustomerListInput struct {
	Pagination *pagination.PaginationParams
	Search     string
	SortBy     string
	SortOrder  string
}

// CustomerListResult is a page of customers with tier totals
type CustomerListResult struct {
	Customers  []CustomerView                 `json:"customers"`
	Pagination *pagination.Pagination         `json:"pagination"`
	Stats      *repository.CustomerTierCounts `json:"stats"`
}

var customerSortColumns = map[string]bool{
	"last_order_date": true,
	"total_spent":     true,
	"total_orders":    true,
}

// ListCustomers returns a page of customers and how many fall in each tier
func (s *CustomerService) ListCustomers(ctx context.Context, input *CustomerListInput) (*CustomerListResult, error) {
	if input.Pagination == nil {
		input.Pagination = pagination.DefaultPagination()
	}
	input.Pagination.Validate()

	sortBy := input.SortBy
	if sortBy == "" {
		sortBy = "last_order_date"
	}
	if !customerSortColumns[sortBy] {
		return nil, apperror.NewFieldError("sortBy", "must be last_order_date, total_spent or total_orders")
	}
	sortOrder := strings.ToLower(input.SortOrder)
	if sortOrder != "asc" {
		sortOrder = "desc"
	}

	customers, total, err := s.customerRepo.List(ctx, &repository.CustomerFilterParams{
		Pagination: input.Pagination,
		Search:     strings.TrimSpace(input.Search),
		SortBy:     sortBy,
		SortOrder:  sortOrder,
	})
	if err != nil {
		return nil, err
	}

	stats, err := s.customerRepo.TierCounts(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]CustomerView, 0, len(customers))
	for i := range customers {
		views = append(views, CustomerView{Customer: customers[i], Tier: customers[i].Tier()})
	}

	return &CustomerListResult{
		Customers:  views,
		Pagination: pagination.NewPagination(input.Pagination.Page, input.Pagination.Limit, total),
		Stats:      stats,
	}, nil
}

// GetCustomer retrieves a customer by ID
func (s *CustomerService) GetCustomer(ctx context.Context, id uuid.UUID) (*CustomerView, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}
	return &CustomerView{Customer: *customer, Tier: customer.Tier()}, nil
}
