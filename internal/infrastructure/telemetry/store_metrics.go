package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Common attribute keys shared by store metrics.
var (
	AttrPaymentResult = attribute.Key("payment_result")
	AttrOrderStatus   = attribute.Key("order_status")
	AttrCacheResult   = attribute.Key("cache_result")
	AttrLoginResult   = attribute.Key("login_result")
)

// StoreMetrics records business-level metrics for the storefront.
type StoreMetrics struct {
	ordersPlaced     metric.Int64Counter
	orderTransitions metric.Int64Counter
	paymentAttempts  metric.Int64Counter
	checkoutDuration metric.Float64Histogram
	browseCacheHits  metric.Int64Counter
	loginAttempts    metric.Int64Counter
}

// NewStoreMetrics creates the instrument set on the given meter.
func NewStoreMetrics(meter metric.Meter) (*StoreMetrics, error) {
	m := &StoreMetrics{}
	var err error

	if m.ordersPlaced, err = meter.Int64Counter(
		"store.orders.placed",
		metric.WithDescription("Number of orders successfully placed"),
		metric.WithUnit("{order}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create orders placed counter: %w", err)
	}

	if m.orderTransitions, err = meter.Int64Counter(
		"store.orders.transitions",
		metric.WithDescription("Order status transitions"),
		metric.WithUnit("{transition}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create order transitions counter: %w", err)
	}

	if m.paymentAttempts, err = meter.Int64Counter(
		"store.payments.attempts",
		metric.WithDescription("Payment attempts by result"),
		metric.WithUnit("{attempt}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create payment attempts counter: %w", err)
	}

	if m.checkoutDuration, err = meter.Float64Histogram(
		"store.checkout.duration",
		metric.WithDescription("End-to-end checkout duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	); err != nil {
		return nil, fmt.Errorf("failed to create checkout duration histogram: %w", err)
	}

	if m.browseCacheHits, err = meter.Int64Counter(
		"store.browse.cache",
		metric.WithDescription("Browse cache lookups by result"),
		metric.WithUnit("{lookup}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create browse cache counter: %w", err)
	}

	if m.loginAttempts, err = meter.Int64Counter(
		"store.auth.logins",
		metric.WithDescription("Login attempts by result"),
		metric.WithUnit("{attempt}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create login attempts counter: %w", err)
	}

	return m, nil
}

// RecordOrderPlaced increments the placed-order counter.
func (m *StoreMetrics) RecordOrderPlaced(ctx context.Context) {
	m.ordersPlaced.Add(ctx, 1)
}

// RecordOrderTransition records a status transition.
func (m *StoreMetrics) RecordOrderTransition(ctx context.Context, status string) {
	m.orderTransitions.Add(ctx, 1, metric.WithAttributes(AttrOrderStatus.String(status)))
}

// RecordPaymentAttempt records a payment attempt with its result
// ("captured", "declined", "error").
func (m *StoreMetrics) RecordPaymentAttempt(ctx context.Context, result string) {
	m.paymentAttempts.Add(ctx, 1, metric.WithAttributes(AttrPaymentResult.String(result)))
}

// RecordCheckoutDuration records the end-to-end checkout latency.
func (m *StoreMetrics) RecordCheckoutDuration(ctx context.Context, d time.Duration) {
	m.checkoutDuration.Record(ctx, d.Seconds())
}

// RecordBrowseCache records a browse cache lookup ("hit" or "miss").
func (m *StoreMetrics) RecordBrowseCache(ctx context.Context, result string) {
	m.browseCacheHits.Add(ctx, 1, metric.WithAttributes(AttrCacheResult.String(result)))
}

// RecordLoginAttempt records a login attempt ("success", "failed", "locked").
func (m *StoreMetrics) RecordLoginAttempt(ctx context.Context, result string) {
	m.loginAttempts.Add(ctx, 1, metric.WithAttributes(AttrLoginResult.String(result)))
}
