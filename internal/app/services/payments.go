package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fr0stylo/payhook/internal/app/ports"
)

// ErrPaymentNotFound indicates no events exist for the payment id.
var ErrPaymentNotFound = errors.New("payment not found")

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

// EventSummary is the compact per-event view returned by the events listing.
type EventSummary struct {
	EventType  string    `json:"event_type"`
	ReceivedAt time.Time `json:"received_at"`
}

// PaymentDetails aggregates one payment's observed history.
type PaymentDetails struct {
	PaymentID     string               `json:"payment_id"`
	TotalEvents   int                  `json:"total_events"`
	EventTypes    []string             `json:"event_types"`
	FirstEventAt  time.Time            `json:"first_event_at"`
	LastEventAt   time.Time            `json:"last_event_at"`
	CurrentStatus string               `json:"current_status"`
	Events        []ports.PaymentEvent `json:"events"`
}

// IngestStatus is the webhook endpoint health summary.
type IngestStatus struct {
	TotalEvents int64
	LastEventAt time.Time
}

// PaymentQueryService serves the read side over stored events. Ordering
// within a payment follows received_at, i.e. arrival order at this service,
// not provider-side event time; that is a documented limitation, not a bug.
type PaymentQueryService struct {
	store ports.EventStore
}

// NewPaymentQueryService constructs the read-side service.
func NewPaymentQueryService(store ports.EventStore) *PaymentQueryService {
	return &PaymentQueryService{store: store}
}

// PaymentEvents returns a payment's event summaries ordered by received_at
// ascending, or ErrPaymentNotFound when the payment has no events.
func (s *PaymentQueryService) PaymentEvents(ctx context.Context, paymentID string) ([]EventSummary, error) {
	events, err := s.store.FindByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("list payment events: %w", err)
	}
	if len(events) == 0 {
		return nil, ErrPaymentNotFound
	}

	summaries := make([]EventSummary, 0, len(events))
	for _, event := range events {
		summaries = append(summaries, EventSummary{EventType: event.EventType, ReceivedAt: event.ReceivedAt})
	}
	return summaries, nil
}

// PaymentDetails returns the aggregated view of one payment.
func (s *PaymentQueryService) PaymentDetails(ctx context.Context, paymentID string) (PaymentDetails, error) {
	events, err := s.store.FindByPaymentID(ctx, paymentID)
	if err != nil {
		return PaymentDetails{}, fmt.Errorf("list payment events: %w", err)
	}
	if len(events) == 0 {
		return PaymentDetails{}, ErrPaymentNotFound
	}

	seen := make(map[string]struct{})
	types := make([]string, 0, len(events))
	for _, event := range events {
		if _, ok := seen[event.EventType]; ok {
			continue
		}
		seen[event.EventType] = struct{}{}
		types = append(types, event.EventType)
	}

	last := events[len(events)-1]
	return PaymentDetails{
		PaymentID:     paymentID,
		TotalEvents:   len(events),
		EventTypes:    types,
		FirstEventAt:  events[0].ReceivedAt,
		LastEventAt:   last.ReceivedAt,
		CurrentStatus: last.EventType,
		Events:        events,
	}, nil
}

// ListPayments returns the latest event per payment, newest first. The
// grouping happens in a single windowed store query, so pages stay
// consistent under concurrent writes.
func (s *PaymentQueryService) ListPayments(ctx context.Context, limit, offset int64) ([]ports.PaymentSummary, error) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if offset < 0 {
		offset = 0
	}

	summaries, err := s.store.ListPaymentSummaries(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list payment summaries: %w", err)
	}
	return summaries, nil
}

// Status reports ingestion stats for monitoring.
func (s *PaymentQueryService) Status(ctx context.Context) (IngestStatus, error) {
	total, err := s.store.CountEvents(ctx)
	if err != nil {
		return IngestStatus{}, fmt.Errorf("count events: %w", err)
	}

	status := IngestStatus{TotalEvents: total}
	recent, err := s.store.ListRecent(ctx, 1, 0)
	if err != nil {
		return IngestStatus{}, fmt.Errorf("list recent events: %w", err)
	}
	if len(recent) > 0 {
		status.LastEventAt = recent[0].ReceivedAt
	}
	return status, nil
}
