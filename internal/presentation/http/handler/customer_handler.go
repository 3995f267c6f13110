package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/tableorder-api/internal/application/service"
	"github.com/sangkips/tableorder-api/internal/presentation/http/dto/response"
)

// CustomerHandler handles customer-related HTTP requests
type CustomerHandler struct {
	customerService *service.CustomerService
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(customerService *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// List handles listing customers with tier totals
// @Router /admin/customers [get]
func (h *CustomerHandler) List(c *gin.Context) {
	result, err := h.customerService.ListCustomers(c.Request.Context(), &service.CustomerListInput{
		Pagination: pageParams(c),
		Search:     c.Query("search"),
		SortBy:     c.Query("sortBy"),
		SortOrder:  c.Query("sortOrder"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Customers retrieved successfully", result)
}

// Get handles getting a single customer
// @Router /admin/customers/{id} [get]
func (h *CustomerHandler) Get(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	customer, err := h.customerService.GetCustomer(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Customer retrieved successfully", customer)
}
