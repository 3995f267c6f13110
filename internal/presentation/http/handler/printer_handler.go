package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/tableorder-api/internal/application/service"
	"github.com/sangkips/tableorder-api/internal/domain/entity"
	"github.com/sangkips/tableorder-api/internal/presentation/http/dto/request"
	"github.com/sangkips/tableorder-api/internal/presentation/http/dto/response"
)

// PrinterHandler handles printer-related HTTP requests.
type PrinterHandler struct {
	printerService *service.PrinterService
	orderService   *service.OrderService
}

// NewPrinterHandler creates a new printer handler.
func NewPrinterHandler(printerService *service.PrinterService, orderService *service.OrderService) *PrinterHandler {
	return &PrinterHandler{
		printerService: printerService,
		orderService:   orderService,
	}
}

// GetStatus returns the current printer connection status.
// @Router /admin/printer/status [get]
func (h *PrinterHandler) GetStatus(c *gin.Context) {
	response.OK(c, "Printer status retrieved", h.printerService.GetStatus())
}

// TestPrint sends a sample bill to the printer.
// @Router /admin/printer/test [post]
func (h *PrinterHandler) TestPrint(c *gin.Context) {
	receipt, err := h.printerService.TestPrint()
	if err != nil {
		// the sample bill is still useful when the printer is unreachable
		response.OK(c, "Test print failed", gin.H{
			"receipt": receipt,
			"warning": err.Error(),
		})
		return
	}

	response.OK(c, "Test page sent to printer", gin.H{"receipt": receipt})
}

// PrintReceipt reprints the receipt of one order or of a table session's
// unpaid orders.
// @Router /admin/printer/print [post]
func (h *PrinterHandler) PrintReceipt(c *gin.Context) {
	var req request.PrintReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	var (
		receipt *entity.BillReceipt
		err     error
	)
	switch req.Type {
	case "order":
		id, parseErr := uuid.Parse(req.ID)
		if parseErr != nil {
			response.BadRequest(c, "Invalid ID format")
			return
		}
		receipt, err = h.orderService.OrderReceipt(ctx, id)
	case "session":
		receipt, err = h.orderService.GetBill(ctx, req.ID)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.printerService.PrintBill(receipt); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt sent to printer", receipt)
}
