package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/tableorder-api/internal/application/service"
	"github.com/sangkips/tableorder-api/internal/domain/enum"
	"github.com/sangkips/tableorder-api/internal/presentation/http/dto/request"
	"github.com/sangkips/tableorder-api/internal/presentation/http/dto/response"
)

// CouponHandler handles coupon HTTP requests
type CouponHandler struct {
	couponService *service.CouponService
	orderService  *service.OrderService
}

// NewCouponHandler creates a new coupon handler
func NewCouponHandler(couponService *service.CouponService, orderService *service.OrderService) *CouponHandler {
	return &CouponHandler{
		couponService: couponService,
		orderService:  orderService,
	}
}

// Validate checks a code against an order total. Diners always validate for
// their own verified phone number.
// @Router /coupons/validate [post]
func (h *CouponHandler) Validate(c *gin.Context) {
	var req request.ValidateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	phone := req.CustomerPhone
	if session := GetTableSession(c); session != nil {
		phone = session.Phone
	}

	result, err := h.couponService.ValidateCoupon(c.Request.Context(), req.CouponCode, phone, req.OrderTotal)
	if err != nil {
		response.Error(c, err)
		return
	}

	message := "Coupon is valid"
	if !result.IsValid {
		message = result.Error
	}
	response.OK(c, message, result)
}

// Apply redeems a coupon for an existing order. Diners may only apply
// coupons to orders of their own table session.
// @Router /coupons/apply [post]
func (h *CouponHandler) Apply(c *gin.Context) {
	var req request.ApplyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	couponID, _ := uuid.Parse(req.CouponID)
	orderID, _ := uuid.Parse(req.OrderID)

	if session := GetTableSession(c); session != nil {
		order, err := h.orderService.GetOrder(c.Request.Context(), orderID)
		if err != nil {
			response.Error(c, err)
			return
		}
		if order.SessionID != session.SessionID {
			response.Forbidden(c, "Order belongs to another table session")
			return
		}
	}

	coupon, err := h.couponService.ApplyCoupon(c.Request.Context(), couponID, orderID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Coupon applied successfully", coupon)
}

// List handles listing coupons with redemption totals
// @Router /admin/coupons [get]
func (h *CouponHandler) List(c *gin.Context) {
	result, err := h.couponService.ListCoupons(c.Request.Context(), &service.CouponListInput{
		Pagination: pageParams(c),
		Search:     c.Query("search"),
		Type:       c.Query("type"),
		Status:     c.Query("status"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Coupons retrieved successfully", gin.H{
		"coupons":    result.Coupons,
		"pagination": result.Pagination,
		"stats": gin.H{
			"totalSavingsProvided": result.TotalSavingsProvided,
			"totalUsedCoupons":     result.TotalUsedCoupons,
		},
	})
}

// Types returns the coupon families for filters and the create form
// @Router /admin/coupons/types [get]
func (h *CouponHandler) Types(c *gin.Context) {
	types, err := h.couponService.ListCouponTypes(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Coupon types retrieved successfully", types)
}

// Create issues a campaign coupon
// @Router /admin/coupons [post]
func (h *CouponHandler) Create(c *gin.Context) {
	var req request.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	coupon, err := h.couponService.CreateCoupon(c.Request.Context(), &service.CreateCouponInput{
		CustomerPhone:         req.CustomerPhone,
		DiscountType:          enum.DiscountType(req.DiscountType),
		DiscountValue:         req.DiscountValue,
		MinimumOrderAmount:    req.MinimumOrderAmount,
		MaximumDiscountAmount: req.MaximumDiscountAmount,
		ExpiresAt:             req.ExpiresAt,
		SendWhatsApp:          req.SendWhatsApp,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Coupon created successfully", coupon)
}
