package service

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sangkips/tableorder-api/internal/domain/billing"
	"github.com/sangkips/tableorder-api/internal/domain/entity"
	"github.com/sangkips/tableorder-api/pkg/printer"
	"github.com/shopspring/decimal"
)

// PrinterService handles receipt formatting and thermal printing.
type PrinterService struct {
	printer     printer.Printer
	printerType string
	width       int
	location    *time.Location
}

// NewPrinterService creates a new printer service.
func NewPrinterService(p printer.Printer, printerType string, charWidth int, loc *time.Location) *PrinterService {
	if charWidth <= 0 {
		charWidth = printer.Width58mm
	}
	if loc == nil {
		loc = time.UTC
	}
	return &PrinterService{
		printer:     p,
		printerType: printerType,
		width:       charWidth,
		location:    loc,
	}
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
}

// GetStatus returns printer connection status.
func (s *PrinterService) GetStatus() *PrinterStatus {
	return &PrinterStatus{
		Configured: s.printerType != printer.TypeNone && s.printerType != "",
		Connected:  s.printer.IsConnected(),
		Type:       s.printerType,
	}
}

// TestPrint sends a sample bill to the printer and returns it.
func (s *PrinterService) TestPrint() (*entity.BillReceipt, error) {
	settings := billing.DefaultSettings()
	lines := []billing.LineItem{
		{Name: "Test Item 1", UnitPrice: decimal.NewFromInt(100), Quantity: 1, GSTRate: settings.DefaultGSTRate},
		{Name: "Test Item 2", UnitPrice: decimal.NewFromInt(50), Quantity: 2, GSTRate: settings.DefaultGSTRate},
	}
	bill, err := billing.CalculateBill(lines, settings)
	if err != nil {
		return nil, err
	}
	discounted, err := billing.ApplyDiscount(bill, decimal.Zero, "")
	if err != nil {
		return nil, err
	}

	receipt := &entity.BillReceipt{
		Restaurant:  entity.RestaurantInfo{Name: "PRINTER TEST"},
		SessionID:   "TEST-001",
		TableNumber: 1,
		Items:       aggregateItems(lines),
		Bill:        *discounted,
		IssuedAt:    time.Now(),
	}

	if err := s.printer.Print(s.FormatBill(receipt)); err != nil {
		return receipt, fmt.Errorf("test print failed: %w", err)
	}
	return receipt, nil
}

// PrintBill prints a bill receipt.
func (s *PrinterService) PrintBill(receipt *entity.BillReceipt) error {
	if err := s.printer.Print(s.FormatBill(receipt)); err != nil {
		log.Printf("Printer error (session %s): %v", receipt.SessionID, err)
		return fmt.Errorf("failed to print receipt: %w", err)
	}
	return nil
}

// FormatBill converts a bill receipt into ESC/POS bytes.
func (s *PrinterService) FormatBill(r *entity.BillReceipt) []byte {
	doc := printer.NewDocument(s.width)

	// Header
	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		SetFontSize(printer.FontDouble).
		Text(r.Restaurant.Name).
		SetFontSize(printer.FontNormal).
		SetBold(false)

	if r.Restaurant.Address != "" {
		doc.Text(r.Restaurant.Address)
	}
	if r.Restaurant.Phone != "" {
		doc.TextF("Ph: %s", r.Restaurant.Phone)
	}
	if r.Restaurant.GSTIN != "" {
		doc.TextF("GSTIN: %s", r.Restaurant.GSTIN)
	}

	doc.SetAlign(printer.AlignLeft).
		Separator('-')

	doc.KeyValue("Table:", fmt.Sprintf("%d", r.TableNumber)).
		KeyValue("Date:", r.IssuedAt.In(s.location).Format("02-01-2006 15:04"))
	if r.CustomerName != "" {
		doc.KeyValue("Guest:", r.CustomerName)
	}
	if r.CustomerPhone != "" {
		doc.KeyValue("Phone:", r.CustomerPhone)
	}
	if r.PaymentMethod != "" {
		doc.KeyValue("Payment:", strings.ToUpper(r.PaymentMethod))
	}

	doc.Separator('-')

	// Items
	for _, item := range r.Items {
		doc.ItemLine(item.Quantity, item.Name, money(item.Total))
		if len(item.AddOns) > 0 {
			doc.TextF("  + %s", strings.Join(item.AddOns, ", "))
		}
		if item.Quantity > 1 {
			doc.TextF("  @ %s each", money(item.UnitPrice))
		}
	}

	doc.Separator('-')

	// Totals
	b := r.Bill
	doc.KeyValue("Subtotal:", money(b.Subtotal)).
		KeyValue("CGST:", money(b.CGSTAmount)).
		KeyValue("SGST:", money(b.SGSTAmount))
	if b.IsServiceChargeEnabled {
		doc.KeyValue(fmt.Sprintf("Service (%s%%):", b.ServiceChargePercentage.String()), money(b.ServiceChargeAmount))
	}
	if b.Discount.IsPositive() {
		label := "Discount:"
		if b.CouponCode != "" {
			label = fmt.Sprintf("Discount (%s):", b.CouponCode)
		}
		doc.KeyValue(label, "-"+money(b.Discount))
	}
	doc.SetBold(true).
		KeyValue("TOTAL:", money(b.PayableTotal)).
		SetBold(false)

	doc.Separator('-')

	// Footer
	doc.SetAlign(printer.AlignCenter).
		LineFeed().
		Text("Thank you for dining with us!").
		LineFeed().
		SetAlign(printer.AlignLeft)

	doc.FeedLines(3).
		PartialCut()

	return doc.Bytes()
}

func money(d decimal.Decimal) string {
	return "Rs." + d.StringFixed(2)
}
