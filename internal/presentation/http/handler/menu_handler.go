package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/tableorder-api/internal/application/service"
	"github.com/sangkips/tableorder-api/internal/domain/enum"
	"github.com/sangkips/tableorder-api/internal/presentation/http/dto/request"
	"github.com/sangkips/tableorder-api/internal/presentation/http/dto/response"
)

// MenuHandler handles menu item HTTP requests
type MenuHandler struct {
	menuService *service.MenuService
}

// NewMenuHandler creates a new menu handler
func NewMenuHandler(menuService *service.MenuService) *MenuHandler {
	return &MenuHandler{menuService: menuService}
}

// PublicMenu returns available items grouped by category for diners
// @Router /menu [get]
func (h *MenuHandler) PublicMenu(c *gin.Context) {
	sections, err := h.menuService.PublicMenu(c.Request.Context(), c.Query("search"), c.Query("food_type"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Menu retrieved successfully", sections)
}

// List handles listing menu items for the admin dashboard
// @Router /admin/menu [get]
func (h *MenuHandler) List(c *gin.Context) {
	input := &service.MenuListInput{
		Pagination: pageParams(c),
		Search:     c.Query("search"),
		FoodType:   c.Query("food_type"),
	}
	if raw := c.Query("category_id"); raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "Invalid category_id")
			return
		}
		input.CategoryID = &categoryID
	}

	result, err := h.menuService.ListMenuItems(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Menu items retrieved successfully", result)
}

func menuItemInput(req *request.MenuItemRequest) *service.MenuItemInput {
	categoryID, _ := uuid.Parse(req.CategoryID)
	isAvailable := true
	if req.IsAvailable != nil {
		isAvailable = *req.IsAvailable
	}

	addOns := make([]service.AddOnInput, 0, len(req.AddOns))
	for _, a := range req.AddOns {
		addOns = append(addOns, service.AddOnInput{Name: a.Name, Price: a.Price})
	}

	return &service.MenuItemInput{
		CategoryID:    categoryID,
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		ImageURL:      req.ImageURL,
		FoodType:      enum.FoodType(req.FoodType),
		IsAvailable:   isAvailable,
		GSTRate:       req.GSTRate,
		IsTaxIncluded: req.IsTaxIncluded,
		AddOns:        addOns,
	}
}

// Create handles menu item creation
// @Router /admin/menu [post]
func (h *MenuHandler) Create(c *gin.Context) {
	var req request.MenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	item, err := h.menuService.CreateMenuItem(c.Request.Context(), menuItemInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Menu item created successfully", item)
}

// Get handles getting a single menu item
// @Router /admin/menu/{id} [get]
func (h *MenuHandler) Get(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	item, err := h.menuService.GetMenuItem(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Menu item retrieved successfully", item)
}

// Update handles menu item update
// @Router /admin/menu/{id} [put]
func (h *MenuHandler) Update(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req request.MenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	item, err := h.menuService.UpdateMenuItem(c.Request.Context(), id, menuItemInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Menu item updated successfully", item)
}

// SetAvailability marks a menu item in or out of stock
// @Router /admin/menu/{id}/availability [patch]
func (h *MenuHandler) SetAvailability(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req request.AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	item, err := h.menuService.SetAvailability(c.Request.Context(), id, *req.IsAvailable)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Availability updated successfully", item)
}

// Delete handles menu item deletion. Past orders keep the item name.
// @Router /admin/menu/{id} [delete]
func (h *MenuHandler) Delete(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	if err := h.menuService.DeleteMenuItem(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Menu item deleted successfully", nil)
}

// CategoryHandler handles category HTTP requests
type CategoryHandler struct {
	categoryService *service.CategoryService
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categoryService *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// List returns categories in display order. active=true leaves out hidden ones.
// @Router /admin/categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	activeOnly, _ := strconv.ParseBool(c.DefaultQuery("active", "false"))

	categories, err := h.categoryService.ListCategories(c.Request.Context(), activeOnly)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Categories retrieved successfully", categories)
}

func categoryInput(req *request.CategoryRequest) *service.CategoryInput {
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	return &service.CategoryInput{
		Name:         req.Name,
		Description:  req.Description,
		DisplayOrder: req.DisplayOrder,
		IsActive:     isActive,
	}
}

// Create handles category creation
// @Router /admin/categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	var req request.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	category, err := h.categoryService.CreateCategory(c.Request.Context(), categoryInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Category created successfully", category)
}

// Update handles category update
// @Router /admin/categories/{id} [put]
func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req request.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	category, err := h.categoryService.UpdateCategory(c.Request.Context(), id, categoryInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Category updated successfully", category)
}

// Delete handles category deletion. Categories that still hold items are kept.
// @Router /admin/categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	if err := h.categoryService.DeleteCategory(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Category deleted successfully", nil)
}
