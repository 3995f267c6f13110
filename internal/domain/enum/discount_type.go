package enum

// DiscountType is how a coupon reduces the bill
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

func (t DiscountType) Valid() bool {
	return t == DiscountTypePercentage || t == DiscountTypeFixed
}

// CouponTypeName groups coupons by campaign
type CouponTypeName string

const (
	CouponTypeWelcome  CouponTypeName = "WELCOME"
	CouponTypeLoyalty  CouponTypeName = "LOYALTY"
	CouponTypeCampaign CouponTypeName = "CAMPAIGN"
)

// CouponStatus is the admin list filter
type CouponStatus string

const (
	CouponStatusUsed    CouponStatus = "used"
	CouponStatusUnused  CouponStatus = "unused"
	CouponStatusExpired CouponStatus = "expired"
)
