package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fr0stylo/payhook/internal/app/ports"
	"github.com/fr0stylo/payhook/internal/db"
)

func newTestStore(t *testing.T) *EventStore {
	t.Helper()

	database, err := db.New(filepath.Join(t.TempDir(), "payhook-test"))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	return NewEventStore(database)
}

func newEvent(eventID, paymentID, eventType string, receivedAt time.Time) ports.NewPaymentEvent {
	return ports.NewPaymentEvent{
		EventID:    eventID,
		PaymentID:  paymentID,
		EventType:  eventType,
		Payload:    []byte(fmt.Sprintf(`{"event_id":%q,"payment_id":%q,"event_type":%q}`, eventID, paymentID, eventType)),
		ReceivedAt: receivedAt,
	}
}

func TestInsertAndFindRoundTrip(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	receivedAt := time.Date(2025, 4, 10, 16, 30, 0, 123456000, time.UTC)

	inserted, err := store.Insert(ctx, newEvent("evt_rt", "pay_rt", "payment_captured", receivedAt))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if inserted.ID == 0 {
		t.Fatal("expected assigned row id")
	}

	found, err := store.FindByEventID(ctx, "evt_rt")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found.ID != inserted.ID || found.PaymentID != "pay_rt" || found.EventType != "payment_captured" {
		t.Fatalf("round trip mismatch: %+v", found)
	}
	if !found.ReceivedAt.Equal(receivedAt) {
		t.Fatalf("received_at mismatch: got %v want %v", found.ReceivedAt, receivedAt)
	}
	if string(found.Payload) != string(inserted.Payload) {
		t.Fatalf("payload mismatch: %s", found.Payload)
	}
}

func TestInsertDuplicateEventID(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if _, err := store.Insert(ctx, newEvent("evt_dup", "pay_1", "payment_authorized", now)); err != nil {
		t.Fatalf("first insert: %v", err)
	}

	_, err := store.Insert(ctx, newEvent("evt_dup", "pay_2", "payment_captured", now.Add(time.Second)))
	if !errors.Is(err, ports.ErrDuplicateEvent) {
		t.Fatalf("expected ErrDuplicateEvent, got %v", err)
	}

	// The original row must be untouched.
	found, err := store.FindByEventID(ctx, "evt_dup")
	if err != nil {
		t.Fatalf("find after duplicate: %v", err)
	}
	if found.PaymentID != "pay_1" || found.EventType != "payment_authorized" {
		t.Fatalf("original row mutated: %+v", found)
	}
}

func TestFindByEventIDNotFound(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	_, err := store.FindByEventID(context.Background(), "evt_missing")
	if !errors.Is(err, ports.ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}
}

func TestFindByPaymentIDOrdering(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)

	// Inserted out of arrival order on purpose.
	inserts := []ports.NewPaymentEvent{
		newEvent("evt_o2", "pay_ord", "payment_captured", base.Add(time.Minute)),
		newEvent("evt_o1", "pay_ord", "payment_authorized", base),
		newEvent("evt_o3", "pay_ord", "payment_refunded", base.Add(2*time.Minute)),
		newEvent("evt_other", "pay_other", "payment_failed", base),
	}
	for _, event := range inserts {
		if _, err := store.Insert(ctx, event); err != nil {
			t.Fatalf("insert %s: %v", event.EventID, err)
		}
	}

	events, err := store.FindByPaymentID(ctx, "pay_ord")
	if err != nil {
		t.Fatalf("find by payment: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	want := []string{"evt_o1", "evt_o2", "evt_o3"}
	for i, event := range events {
		if event.EventID != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], event.EventID)
		}
	}
}

func TestListPaymentSummariesWindowedQuery(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)

	inserts := []ports.NewPaymentEvent{
		newEvent("evt_s1", "pay_a", "payment_authorized", base),
		newEvent("evt_s2", "pay_a", "payment_captured", base.Add(time.Minute)),
		newEvent("evt_s3", "pay_b", "payment_failed", base.Add(2*time.Minute)),
	}
	for _, event := range inserts {
		if _, err := store.Insert(ctx, event); err != nil {
			t.Fatalf("insert %s: %v", event.EventID, err)
		}
	}

	summaries, err := store.ListPaymentSummaries(ctx, 10, 0)
	if err != nil {
		t.Fatalf("list summaries: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}

	if summaries[0].PaymentID != "pay_b" || summaries[0].LatestEventType != "payment_failed" || summaries[0].EventCount != 1 {
		t.Fatalf("unexpected first summary: %+v", summaries[0])
	}
	if summaries[1].PaymentID != "pay_a" || summaries[1].LatestEventType != "payment_captured" || summaries[1].EventCount != 2 {
		t.Fatalf("unexpected second summary: %+v", summaries[1])
	}
}

func TestListRecentNewestFirst(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		event := newEvent(fmt.Sprintf("evt_r%d", i), "pay_r", "payment_captured", base.Add(time.Duration(i)*time.Second))
		if _, err := store.Insert(ctx, event); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	recent, err := store.ListRecent(ctx, 2, 0)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 events, got %d", len(recent))
	}
	if recent[0].EventID != "evt_r4" || recent[1].EventID != "evt_r3" {
		t.Fatalf("unexpected ordering: %s, %s", recent[0].EventID, recent[1].EventID)
	}

	count, err := store.CountEvents(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 5 {
		t.Fatalf("expected 5 events, got %d", count)
	}
}

func TestConcurrentInsertSameEventID(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	const workers = 16
	results := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			_, err := store.Insert(ctx, newEvent("evt_race", "pay_race", "payment_captured", now))
			results[slot] = err
		}(i)
	}
	wg.Wait()

	var ok, dup int
	for _, err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ports.ErrDuplicateEvent):
			dup++
		default:
			t.Fatalf("unexpected insert error: %v", err)
		}
	}
	if ok != 1 {
		t.Fatalf("expected exactly one successful insert, got %d", ok)
	}
	if dup != workers-1 {
		t.Fatalf("expected %d duplicate errors, got %d", workers-1, dup)
	}

	count, err := store.CountEvents(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected single row after race, got %d", count)
	}
}
