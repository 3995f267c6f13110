package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/tableorder-api/internal/application/service"
	"github.com/sangkips/tableorder-api/internal/domain/enum"
	"github.com/sangkips/tableorder-api/internal/presentation/http/dto/request"
	"github.com/sangkips/tableorder-api/internal/presentation/http/dto/response"
	"github.com/sangkips/tableorder-api/pkg/apperror"
)

// OrderHandler handles order and bill HTTP requests for diners and staff
type OrderHandler struct {
	orderService *service.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// PlaceOrder handles a diner's order for the current table session
// @Router /orders [post]
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	session := GetTableSession(c)
	if session == nil {
		response.Unauthorized(c, "Table session required")
		return
	}

	var req request.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	items := make([]service.OrderItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		menuItemID, _ := uuid.Parse(item.MenuItemID)
		addOns := make([]uuid.UUID, 0, len(item.SelectedAddOns))
		for _, raw := range item.SelectedAddOns {
			addOnID, _ := uuid.Parse(raw)
			addOns = append(addOns, addOnID)
		}

		input := service.OrderItemInput{
			MenuItemID:     menuItemID,
			Quantity:       item.Quantity,
			SelectedAddOns: addOns,
		}
		if notes := strings.TrimSpace(item.Notes); notes != "" {
			input.Notes = &notes
		}
		items = append(items, input)
	}

	input := &service.PlaceOrderInput{
		Phone:       session.Phone,
		TableNumber: session.TableNumber,
		SessionID:   session.SessionID,
		CouponCode:  req.CouponCode,
		Items:       items,
	}
	if name := strings.TrimSpace(req.CustomerName); name != "" {
		input.CustomerName = &name
	}

	output, err := h.orderService.PlaceOrder(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Order placed successfully", output)
}

// SessionOrders lists the orders of the current table session
// @Router /orders/session [get]
func (h *OrderHandler) SessionOrders(c *gin.Context) {
	session := GetTableSession(c)
	if session == nil {
		response.Unauthorized(c, "Table session required")
		return
	}

	orders, err := h.orderService.SessionOrders(c.Request.Context(), session.SessionID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Orders retrieved successfully", orders)
}

// GetBill returns the bill for the session's unpaid orders
// @Router /bill [get]
func (h *OrderHandler) GetBill(c *gin.Context) {
	session := GetTableSession(c)
	if session == nil {
		response.Unauthorized(c, "Table session required")
		return
	}
	h.bill(c, session.SessionID)
}

// PayBill settles the current table session
// @Router /bill/pay [post]
func (h *OrderHandler) PayBill(c *gin.Context) {
	session := GetTableSession(c)
	if session == nil {
		response.Unauthorized(c, "Table session required")
		return
	}
	h.pay(c, session.SessionID)
}

// SessionBill returns the bill of any table session for staff
// @Router /admin/bills/{sessionId} [get]
func (h *OrderHandler) SessionBill(c *gin.Context) {
	h.bill(c, c.Param("sessionId"))
}

// SettleBill settles a table session at the counter
// @Router /admin/bills/{sessionId}/pay [post]
func (h *OrderHandler) SettleBill(c *gin.Context) {
	h.pay(c, c.Param("sessionId"))
}

func (h *OrderHandler) bill(c *gin.Context, sessionID string) {
	receipt, err := h.orderService.GetBill(c.Request.Context(), sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bill retrieved successfully", receipt)
}

func (h *OrderHandler) pay(c *gin.Context, sessionID string) {
	var req request.PayBillRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid request body")
			return
		}
	}

	receipt, err := h.orderService.PayBill(c.Request.Context(), sessionID, req.PaymentMethod, req.Print)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bill paid successfully", receipt)
}

// List handles listing orders for the admin board
// @Router /admin/orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	input := &service.OrderListInput{
		Pagination:    pageParams(c),
		Status:        c.Query("status"),
		CustomerPhone: c.Query("phone"),
		SortOrder:     c.Query("sort_order"),
	}

	if raw := c.Query("table"); raw != "" {
		table, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, apperror.NewFieldError("table", "must be a number"))
			return
		}
		input.TableNumber = &table
	}

	if raw := c.Query("start_date"); raw != "" {
		startDate, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, apperror.NewFieldError("start_date", "must be YYYY-MM-DD"))
			return
		}
		input.StartDate = &startDate
	}

	if raw := c.Query("end_date"); raw != "" {
		endDate, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, apperror.NewFieldError("end_date", "must be YYYY-MM-DD"))
			return
		}
		// inclusive of the whole end day
		endDate = endDate.Add(24*time.Hour - time.Nanosecond)
		input.EndDate = &endDate
	}

	result, err := h.orderService.ListOrders(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Orders retrieved successfully", result)
}

// Get handles getting a single order
// @Router /admin/orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order retrieved successfully", order)
}

// UpdateStatus moves an order forward on the kitchen board
// @Router /admin/orders/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req request.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	status, err := enum.ParseOrderStatus(req.Status)
	if err != nil {
		response.Error(c, apperror.NewFieldError("status", "must be one of pending, preparing, ready, completed"))
		return
	}

	order, err := h.orderService.UpdateOrderStatus(c.Request.Context(), id, status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order status updated successfully", order)
}
