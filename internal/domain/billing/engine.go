// Package billing computes restaurant bills: the tax-exclusive subtotal,
// CGST and SGST on it, the optional service charge and the final total.
//
// All arithmetic runs on shopspring/decimal. Intermediate values are never
// rounded; every monetary output is rounded to two places, half away from
// zero, once the whole bill has been computed.
package billing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of decimal places on every monetary output.
const MoneyPlaces = 2

var (
	hundred     = decimal.NewFromInt(100)
	maxGSTRate  = decimal.NewFromInt(100)
	decimalZero = decimal.Zero
)

// AddOn is a per-unit extra priced on top of the item.
type AddOn struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// LineItem is one cart entry.
type LineItem struct {
	Name          string          `json:"name,omitempty"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	Quantity      int             `json:"quantity"`
	AddOns        []AddOn         `json:"addOns"`
	GSTRate       decimal.Decimal `json:"gstRate"`
	IsTaxIncluded bool            `json:"isTaxIncluded"`
}

// BillCalculation is the breakdown handed to receipts and analytics.
type BillCalculation struct {
	Subtotal                decimal.Decimal `json:"subtotal"`
	CGSTAmount              decimal.Decimal `json:"cgstAmount"`
	SGSTAmount              decimal.Decimal `json:"sgstAmount"`
	TotalGST                decimal.Decimal `json:"totalGst"`
	ServiceChargeAmount     decimal.Decimal `json:"serviceChargeAmount"`
	ServiceChargePercentage decimal.Decimal `json:"serviceChargePercentage"`
	FinalTotal              decimal.Decimal `json:"finalTotal"`
	IsServiceChargeEnabled  bool            `json:"isServiceChargeEnabled"`
}

// GrossLineTotal returns (unit price + add-ons) x quantity, unrounded.
func GrossLineTotal(item LineItem) decimal.Decimal {
	unit := item.UnitPrice
	for _, a := range item.AddOns {
		unit = unit.Add(a.Price)
	}
	return unit.Mul(decimal.NewFromInt(int64(item.Quantity)))
}

// TaxableBase returns the tax-exclusive amount of a line. Tax-included lines
// have GST extracted at the item's own rate; add-ons share that treatment.
func TaxableBase(item LineItem) decimal.Decimal {
	gross := GrossLineTotal(item)
	if !item.IsTaxIncluded || item.GSTRate.IsZero() {
		return gross
	}
	divisor := decimal.NewFromInt(1).Add(item.GSTRate.Div(hundred))
	return gross.Div(divisor)
}

// CalculateBill turns a cart into a bill. The item GST rate is only used to
// extract tax from tax-included prices; CGST and SGST are always charged at
// the settings rates over the whole subtotal.
func CalculateBill(items []LineItem, settings Settings) (*BillCalculation, error) {
	if err := validate(items, settings); err != nil {
		return nil, err
	}

	subtotal := decimalZero
	for _, item := range items {
		subtotal = subtotal.Add(TaxableBase(item))
	}

	cgst := subtotal.Mul(settings.CGSTRate).Div(hundred)
	sgst := subtotal.Mul(settings.SGSTRate).Div(hundred)
	totalGST := cgst.Add(sgst)

	serviceCharge := decimalZero
	if settings.ServiceChargeEnabled {
		serviceCharge = subtotal.Mul(settings.ServiceChargePercentage).Div(hundred)
	}

	final := subtotal.Add(totalGST).Add(serviceCharge)

	return &BillCalculation{
		Subtotal:                round(subtotal),
		CGSTAmount:              round(cgst),
		SGSTAmount:              round(sgst),
		TotalGST:                round(totalGST),
		ServiceChargeAmount:     round(serviceCharge),
		ServiceChargePercentage: settings.ServiceChargePercentage,
		FinalTotal:              round(final),
		IsServiceChargeEnabled:  settings.ServiceChargeEnabled,
	}, nil
}

// DiscountedBill is a bill with a coupon discount shown as its own line.
// The discount never changes the taxable subtotal.
type DiscountedBill struct {
	BillCalculation
	Discount     decimal.Decimal `json:"discount"`
	CouponCode   string          `json:"couponCode,omitempty"`
	PayableTotal decimal.Decimal `json:"payableTotal"`
}

// ApplyDiscount subtracts a discount from the final total. The discount is
// capped at the final total so the payable amount never goes negative.
func ApplyDiscount(bill *BillCalculation, discount decimal.Decimal, couponCode string) (*DiscountedBill, error) {
	if discount.IsNegative() {
		var errs fieldErrors
		errs.add("discount", "must not be negative")
		return nil, errs.err()
	}
	discount = round(discount)
	if discount.GreaterThan(bill.FinalTotal) {
		discount = bill.FinalTotal
	}
	return &DiscountedBill{
		BillCalculation: *bill,
		Discount:        discount,
		CouponCode:      couponCode,
		PayableTotal:    bill.FinalTotal.Sub(discount),
	}, nil
}

func round(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

func validate(items []LineItem, s Settings) error {
	var errs fieldErrors

	checkGSTRate := func(field string, rate decimal.Decimal) {
		if rate.IsNegative() {
			errs.add(field, "must not be negative")
		} else if rate.GreaterThan(maxGSTRate) {
			errs.add(field, "must not exceed 100")
		}
	}

	checkGSTRate("cgstRate", s.CGSTRate)
	checkGSTRate("sgstRate", s.SGSTRate)
	if s.ServiceChargePercentage.IsNegative() {
		errs.add("serviceChargePercentage", "must not be negative")
	}

	for i, item := range items {
		prefix := fmt.Sprintf("items[%d].", i)
		if item.UnitPrice.IsNegative() {
			errs.add(prefix+"unitPrice", "must not be negative")
		}
		if item.Quantity < 1 {
			errs.add(prefix+"quantity", "must be at least 1")
		}
		checkGSTRate(prefix+"gstRate", item.GSTRate)
		for j, a := range item.AddOns {
			if a.Price.IsNegative() {
				errs.add(fmt.Sprintf("%saddOns[%d].price", prefix, j), "must not be negative")
			}
		}
	}

	return errs.err()
}
