package db

import (
	"context"

	"github.com/fr0stylo/payhook/internal/db/queries"
)

// CreatePaymentEvent inserts one payment event row and returns it.
// The UNIQUE constraint on event_id is the idempotency arbiter; callers map
// the constraint violation, this layer passes the driver error through.
func (c *Database) CreatePaymentEvent(ctx context.Context, params queries.CreatePaymentEventParams) (queries.PaymentEvent, error) {
	return c.Queries.CreatePaymentEvent(ctx, params)
}

// GetPaymentEventByEventID fetches one event by its sender-assigned id.
func (c *Database) GetPaymentEventByEventID(ctx context.Context, eventID string) (queries.PaymentEvent, error) {
	return c.Queries.GetPaymentEventByEventID(ctx, eventID)
}

// ListPaymentEventsByPaymentID returns a payment's events ordered by received_at ascending.
func (c *Database) ListPaymentEventsByPaymentID(ctx context.Context, paymentID string) ([]queries.PaymentEvent, error) {
	return c.Queries.ListPaymentEventsByPaymentID(ctx, paymentID)
}

// ListRecentPaymentEvents returns the newest events first.
func (c *Database) ListRecentPaymentEvents(ctx context.Context, limit, offset int64) ([]queries.PaymentEvent, error) {
	return c.Queries.ListRecentPaymentEvents(ctx, queries.ListRecentPaymentEventsParams{Limit: limit, Offset: offset})
}

// ListPaymentSummaries returns the latest event per payment_id with event counts.
func (c *Database) ListPaymentSummaries(ctx context.Context, limit, offset int64) ([]queries.ListPaymentSummariesRow, error) {
	return c.Queries.ListPaymentSummaries(ctx, queries.ListPaymentSummariesParams{Limit: limit, Offset: offset})
}

// CountPaymentEvents returns the total number of stored events.
func (c *Database) CountPaymentEvents(ctx context.Context) (int64, error) {
	return c.Queries.CountPaymentEvents(ctx)
}
