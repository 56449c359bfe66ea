package services

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/fr0stylo/payhook/internal/app/ports"
	"github.com/fr0stylo/payhook/internal/ratelimit"
)

// AdmissionStatus is the terminal state of one admission attempt.
type AdmissionStatus string

const (
	// StatusAdmitted means a new event row was created.
	StatusAdmitted AdmissionStatus = "admitted"
	// StatusDuplicate means a row for the event_id already existed.
	// Duplicates are a normal outcome of provider redelivery, not errors.
	StatusDuplicate AdmissionStatus = "duplicate"
	// StatusRejected means the request was refused before admission.
	StatusRejected AdmissionStatus = "rejected"
)

// RejectReason classifies why an admission attempt was refused.
type RejectReason string

const (
	ReasonRateLimited      RejectReason = "RATE_LIMITED"
	ReasonUnauthenticated  RejectReason = "UNAUTHENTICATED"
	ReasonMalformedJSON    RejectReason = "MALFORMED_JSON"
	ReasonMissingField     RejectReason = "MISSING_FIELD"
	ReasonInvalidField     RejectReason = "INVALID_FIELD"
	ReasonStoreUnavailable RejectReason = "STORE_UNAVAILABLE"
)

// Transient reports whether the rejection is an infrastructure fault the
// sender's redelivery mechanism should retry, as opposed to a client error.
func (r RejectReason) Transient() bool {
	return r == ReasonStoreUnavailable
}

// AdmitCommand is transport-agnostic webhook admission input. Body carries
// the exact bytes as transmitted; signatures are computed over them without
// normalization.
type AdmitCommand struct {
	Body            []byte
	SignatureHeader string
	SourceIP        string
	Now             time.Time
}

// Outcome is the result of one admission attempt. Event is populated for
// admitted and duplicate outcomes; Reason, Field and RetryAfter describe
// rejections.
type Outcome struct {
	Status     AdmissionStatus
	Event      ports.PaymentEvent
	Reason     RejectReason
	Field      string
	RetryAfter time.Duration
}

// EventTypes are the accepted payment lifecycle event types.
var EventTypes = []string{
	"payment_authorized",
	"payment_captured",
	"payment_failed",
	"payment_refunded",
	"payment_disputed",
}

type webhookPayload struct {
	EventID   string `json:"event_id" validate:"required,max=255"`
	EventType string `json:"event_type" validate:"required,oneof=payment_authorized payment_captured payment_failed payment_refunded payment_disputed"`
	PaymentID string `json:"payment_id" validate:"required,max=255"`
}

// AdmissionService converts a signed webhook delivery into at most one
// stored event. The store's uniqueness constraint on event_id is the only
// idempotency arbiter; no in-process lock serializes admissions.
type AdmissionService struct {
	verifier *SignatureVerifier
	limiter  *ratelimit.Limiter
	store    ports.EventStore
	validate *validator.Validate
	now      func() time.Time
}

// NewAdmissionService constructs the admission pipeline.
func NewAdmissionService(verifier *SignatureVerifier, limiter *ratelimit.Limiter, store ports.EventStore) *AdmissionService {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &AdmissionService{
		verifier: verifier,
		limiter:  limiter,
		store:    store,
		validate: validate,
		now:      time.Now,
	}
}

// WithClock overrides the admission clock. Intended for tests.
func (s *AdmissionService) WithClock(now func() time.Time) *AdmissionService {
	s.now = now
	return s
}

// Admit runs the pipeline: rate limit, signature verification over the raw
// body, payload validation, then idempotent insert guarded by the store's
// uniqueness constraint.
func (s *AdmissionService) Admit(ctx context.Context, cmd AdmitCommand) Outcome {
	now := cmd.Now
	if now.IsZero() {
		now = s.now()
	}

	// Rate limiting is pure in-memory bookkeeping and never waits on the
	// store; its locks are released before any I/O below.
	if ok, retryAfter := s.limiter.Allow(cmd.SourceIP, now); !ok {
		return Outcome{Status: StatusRejected, Reason: ReasonRateLimited, RetryAfter: retryAfter}
	}

	if !s.verifier.VerifyHeader(cmd.Body, cmd.SignatureHeader) {
		return Outcome{Status: StatusRejected, Reason: ReasonUnauthenticated}
	}

	payload, rejection := s.parsePayload(cmd.Body)
	if rejection != nil {
		return *rejection
	}

	// Optimistic pre-check: the fast path for sequential redelivery. The
	// insert below remains guarded by the constraint because a concurrent
	// racer can slip between this lookup and the insert.
	existing, err := s.store.FindByEventID(ctx, payload.EventID)
	if err == nil {
		return Outcome{Status: StatusDuplicate, Event: existing}
	}
	if !errors.Is(err, ports.ErrEventNotFound) {
		return Outcome{Status: StatusRejected, Reason: ReasonStoreUnavailable}
	}

	event, err := s.store.Insert(ctx, ports.NewPaymentEvent{
		EventID:    payload.EventID,
		PaymentID:  payload.PaymentID,
		EventType:  payload.EventType,
		Payload:    json.RawMessage(cmd.Body),
		ReceivedAt: now.UTC(),
	})
	if err == nil {
		return Outcome{Status: StatusAdmitted, Event: event}
	}

	if errors.Is(err, ports.ErrDuplicateEvent) {
		// Lost the race: a concurrent delivery created the row between the
		// pre-check and the insert. Re-read and report the single record.
		existing, readErr := s.store.FindByEventID(ctx, payload.EventID)
		if readErr != nil {
			return Outcome{Status: StatusRejected, Reason: ReasonStoreUnavailable}
		}
		return Outcome{Status: StatusDuplicate, Event: existing}
	}

	// Includes context timeouts: the outcome is unknown and the sender is
	// expected to redeliver, which is safe because admission is idempotent.
	return Outcome{Status: StatusRejected, Reason: ReasonStoreUnavailable}
}

func (s *AdmissionService) parsePayload(body []byte) (webhookPayload, *Outcome) {
	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return payload, &Outcome{Status: StatusRejected, Reason: ReasonInvalidField, Field: typeErr.Field}
		}
		return payload, &Outcome{Status: StatusRejected, Reason: ReasonMalformedJSON}
	}

	if err := s.validate.Struct(payload); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			first := fieldErrs[0]
			reason := ReasonInvalidField
			if first.Tag() == "required" {
				reason = ReasonMissingField
			}
			return payload, &Outcome{Status: StatusRejected, Reason: reason, Field: first.Field()}
		}
		return payload, &Outcome{Status: StatusRejected, Reason: ReasonMalformedJSON}
	}

	return payload, nil
}
