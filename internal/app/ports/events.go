package ports

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var (
	// ErrEventNotFound indicates no stored event matches the lookup key.
	ErrEventNotFound = errors.New("payment event not found")
	// ErrDuplicateEvent indicates the store already holds a row for the event_id.
	// It is raised by the store's uniqueness constraint, never by in-process state.
	ErrDuplicateEvent = errors.New("payment event already recorded")
)

// PaymentEvent is one stored webhook event. Rows are append-only: once
// admitted an event is never updated or deleted.
type PaymentEvent struct {
	ID         int64
	EventID    string
	PaymentID  string
	EventType  string
	Payload    json.RawMessage
	ReceivedAt time.Time
}

// NewPaymentEvent is one admission request. Payload carries the received body
// verbatim; ReceivedAt is assigned by the server clock at admission.
type NewPaymentEvent struct {
	EventID    string
	PaymentID  string
	EventType  string
	Payload    json.RawMessage
	ReceivedAt time.Time
}

// PaymentSummary is the latest observed state of one payment.
type PaymentSummary struct {
	PaymentID       string
	LatestEventType string
	LastUpdated     time.Time
	EventCount      int64
}

// EventStore is the durable storage contract the admission pipeline consumes.
// Insert must fail with ErrDuplicateEvent when event_id already exists.
type EventStore interface {
	FindByEventID(ctx context.Context, eventID string) (PaymentEvent, error)
	Insert(ctx context.Context, event NewPaymentEvent) (PaymentEvent, error)
	FindByPaymentID(ctx context.Context, paymentID string) ([]PaymentEvent, error)
	ListRecent(ctx context.Context, limit, offset int64) ([]PaymentEvent, error)
	ListPaymentSummaries(ctx context.Context, limit, offset int64) ([]PaymentSummary, error)
	CountEvents(ctx context.Context) (int64, error)
}
