package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/fr0stylo/payhook/internal/app/ports"
	"github.com/fr0stylo/payhook/internal/db/queries"
)

type eventDatabase interface {
	CreatePaymentEvent(ctx context.Context, params queries.CreatePaymentEventParams) (queries.PaymentEvent, error)
	GetPaymentEventByEventID(ctx context.Context, eventID string) (queries.PaymentEvent, error)
	ListPaymentEventsByPaymentID(ctx context.Context, paymentID string) ([]queries.PaymentEvent, error)
	ListRecentPaymentEvents(ctx context.Context, limit, offset int64) ([]queries.PaymentEvent, error)
	ListPaymentSummaries(ctx context.Context, limit, offset int64) ([]queries.ListPaymentSummariesRow, error)
	CountPaymentEvents(ctx context.Context) (int64, error)
}

// EventStore adapts the sqlc payment event queries to the storage port.
type EventStore struct {
	db eventDatabase
}

// NewEventStore constructs the sqlite-backed event store.
func NewEventStore(database eventDatabase) *EventStore {
	return &EventStore{db: database}
}

// FindByEventID fetches one event, mapping missing rows to ErrEventNotFound.
func (s *EventStore) FindByEventID(ctx context.Context, eventID string) (ports.PaymentEvent, error) {
	row, err := s.db.GetPaymentEventByEventID(ctx, eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ports.PaymentEvent{}, ports.ErrEventNotFound
		}
		return ports.PaymentEvent{}, fmt.Errorf("get event by event_id: %w", err)
	}
	return mapEvent(row)
}

// Insert appends one event. A UNIQUE violation on event_id surfaces as
// ports.ErrDuplicateEvent so callers can treat redelivery as a non-error.
func (s *EventStore) Insert(ctx context.Context, event ports.NewPaymentEvent) (ports.PaymentEvent, error) {
	row, err := s.db.CreatePaymentEvent(ctx, queries.CreatePaymentEventParams{
		EventID:    event.EventID,
		PaymentID:  event.PaymentID,
		EventType:  event.EventType,
		Payload:    string(event.Payload),
		ReceivedAt: event.ReceivedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		if isUniqueViolation(err) {
			return ports.PaymentEvent{}, fmt.Errorf("insert event %q: %w", event.EventID, ports.ErrDuplicateEvent)
		}
		return ports.PaymentEvent{}, fmt.Errorf("insert event: %w", err)
	}
	return mapEvent(row)
}

// FindByPaymentID returns a payment's events ordered by received_at ascending.
func (s *EventStore) FindByPaymentID(ctx context.Context, paymentID string) ([]ports.PaymentEvent, error) {
	rows, err := s.db.ListPaymentEventsByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("list events by payment_id: %w", err)
	}
	return mapEvents(rows)
}

// ListRecent returns the newest events first.
func (s *EventStore) ListRecent(ctx context.Context, limit, offset int64) ([]ports.PaymentEvent, error) {
	rows, err := s.db.ListRecentPaymentEvents(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list recent events: %w", err)
	}
	return mapEvents(rows)
}

// ListPaymentSummaries returns the latest event per payment via a windowed query.
func (s *EventStore) ListPaymentSummaries(ctx context.Context, limit, offset int64) ([]ports.PaymentSummary, error) {
	rows, err := s.db.ListPaymentSummaries(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list payment summaries: %w", err)
	}

	summaries := make([]ports.PaymentSummary, 0, len(rows))
	for _, row := range rows {
		lastUpdated, err := parseTimestamp(row.ReceivedAt)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, ports.PaymentSummary{
			PaymentID:       row.PaymentID,
			LatestEventType: row.EventType,
			LastUpdated:     lastUpdated,
			EventCount:      row.EventCount,
		})
	}
	return summaries, nil
}

// CountEvents returns the total number of stored events.
func (s *EventStore) CountEvents(ctx context.Context) (int64, error) {
	count, err := s.db.CountPaymentEvents(ctx)
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return count, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	default:
		return false
	}
}

func mapEvent(row queries.PaymentEvent) (ports.PaymentEvent, error) {
	receivedAt, err := parseTimestamp(row.ReceivedAt)
	if err != nil {
		return ports.PaymentEvent{}, err
	}
	return ports.PaymentEvent{
		ID:         row.ID,
		EventID:    row.EventID,
		PaymentID:  row.PaymentID,
		EventType:  row.EventType,
		Payload:    []byte(row.Payload),
		ReceivedAt: receivedAt,
	}, nil
}

func mapEvents(rows []queries.PaymentEvent) ([]ports.PaymentEvent, error) {
	events := make([]ports.PaymentEvent, 0, len(rows))
	for _, row := range rows {
		event, err := mapEvent(row)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

func parseTimestamp(value string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored timestamp %q: %w", value, err)
	}
	return parsed, nil
}

var _ ports.EventStore = (*EventStore)(nil)
