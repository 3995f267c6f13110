package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tableorder"

var (
	// BillsComputed counts bill calculations by outcome (ok, invalid, defaults).
	BillsComputed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bills_computed_total",
		Help:      "Bill calculations by outcome.",
	}, []string{"outcome"})

	// SettingsFallbacks counts bills computed with default settings because the store failed.
	SettingsFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "settings_fallbacks_total",
		Help:      "Bills computed with default settings after the settings store failed.",
	})

	// CouponValidations counts coupon checks by result reason.
	CouponValidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "coupon_validations_total",
		Help:      "Coupon validations by result.",
	}, []string{"result"})

	// OrdersPlaced counts orders accepted from tables.
	OrdersPlaced = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_placed_total",
		Help:      "Orders placed by diners.",
	})

	// HTTPRequestDuration observes request latency per route.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
