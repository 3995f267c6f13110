package request

// PrintReceiptRequest is the request body for reprinting a receipt.
// ID is an order id for type order, or a table session id for type session.
type PrintReceiptRequest struct {
	Type string `json:"type" binding:"required,oneof=order session"`
	ID   string `json:"id" binding:"required"`
}
