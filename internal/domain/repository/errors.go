package repository

import "errors"

var (
	// ErrCouponAlreadyUsed is returned when a redemption loses the race for a coupon
	ErrCouponAlreadyUsed = errors.New("coupon already used")
	// ErrAlreadySettled is returned when a settlement touches an order that was already paid
	ErrAlreadySettled = errors.New("order already settled")
)
