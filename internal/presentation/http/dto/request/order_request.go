package request

// OrderItemRequest is one line of a diner's cart. Prices are never taken
// from the client.
type OrderItemRequest struct {
	MenuItemID     string   `json:"menuItemId" binding:"required,uuid"`
	Quantity       int      `json:"quantity" binding:"required"`
	SelectedAddOns []string `json:"selectedAddOns" binding:"dive,uuid"`
	Notes          string   `json:"notes" binding:"max=500"`
}

// PlaceOrderRequest represents a diner's order
type PlaceOrderRequest struct {
	CustomerName string             `json:"customerName" binding:"max=255"`
	CouponCode   string             `json:"couponCode" binding:"max=20"`
	Items        []OrderItemRequest `json:"items" binding:"required,dive"`
}

// UpdateOrderStatusRequest moves an order along the kitchen board
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// PayBillRequest settles the unpaid orders of a table session
type PayBillRequest struct {
	PaymentMethod string `json:"paymentMethod"`
	Print         bool   `json:"print"`
}
