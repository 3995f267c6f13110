package notify

import (
	"fmt"
	"strings"

	"github.com/sangkips/tableorder-api/internal/domain/entity"
	"github.com/sangkips/tableorder-api/internal/domain/enum"
)

// CouponMessage renders the WhatsApp text for a freshly issued coupon.
func CouponMessage(restaurant string, coupon *entity.Coupon, typeName enum.CouponTypeName) string {
	var discount string
	if coupon.DiscountType == enum.DiscountTypePercentage {
		discount = coupon.DiscountValue.String() + "% off"
		if coupon.MaximumDiscountAmount.Valid {
			discount += " (up to ₹" + coupon.MaximumDiscountAmount.Decimal.StringFixed(2) + ")"
		}
	} else {
		discount = "₹" + coupon.DiscountValue.StringFixed(2) + " off"
	}

	var intro string
	switch typeName {
	case enum.CouponTypeWelcome:
		intro = fmt.Sprintf("Welcome to %s! Thanks for dining with us.", restaurant)
	case enum.CouponTypeLoyalty:
		intro = fmt.Sprintf("Thank you for being a regular at %s!", restaurant)
	case enum.CouponTypeCampaign:
		intro = fmt.Sprintf("A special offer from %s, just for you.", restaurant)
	default:
		intro = fmt.Sprintf("You have a new coupon from %s.", restaurant)
	}

	var b strings.Builder
	b.WriteString(intro)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Coupon code: *%s*\n", coupon.Code)
	fmt.Fprintf(&b, "Discount: %s\n", discount)
	if coupon.MinimumOrderAmount.IsPositive() {
		fmt.Fprintf(&b, "Minimum order: ₹%s\n", coupon.MinimumOrderAmount.StringFixed(2))
	}
	fmt.Fprintf(&b, "Valid until: %s\n\n", coupon.ExpiresAt.Format("02 Jan 2006"))
	b.WriteString("Show this code at checkout on your next visit.")
	return b.String()
}
