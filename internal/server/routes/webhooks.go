package routes

import (
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fr0stylo/payhook/internal/app/services"
)

const (
	// SignatureHeader is the primary HMAC signature header.
	SignatureHeader = "X-Webhook-Signature"
	// HubSignatureHeader is the GitHub-style fallback signature header.
	HubSignatureHeader = "X-Hub-Signature-256"

	maxPayloadBytes = 1 << 20
)

// WebhookRoutes registers webhook endpoints.
type WebhookRoutes struct {
	admission *services.AdmissionService
	queries   *services.PaymentQueryService
}

// NewWebhookRoutes constructs webhook routes.
func NewWebhookRoutes(admission *services.AdmissionService, queries *services.PaymentQueryService) *WebhookRoutes {
	return &WebhookRoutes{admission: admission, queries: queries}
}

// RegisterRoutes registers webhook endpoints.
func (w *WebhookRoutes) RegisterRoutes(s *echo.Echo) {
	s.POST("/webhook/payments", w.handlePaymentWebhook)
	s.GET("/webhook/status", w.handleStatus)
}

func (w *WebhookRoutes) handlePaymentWebhook(c echo.Context) error {
	req := c.Request()
	ctx := req.Context()

	contentType := strings.TrimSpace(req.Header.Get(echo.HeaderContentType))
	if !strings.HasPrefix(contentType, echo.MIMEApplicationJSON) {
		return errorJSON(c, http.StatusBadRequest, "Invalid JSON payload", "Content-Type must be application/json")
	}

	// The signature covers the exact bytes as transmitted, so the body is
	// read raw and never re-serialized.
	body, err := io.ReadAll(io.LimitReader(req.Body, maxPayloadBytes))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "Bad Request", "Unable to read request body")
	}

	outcome := w.admission.Admit(ctx, services.AdmitCommand{
		Body:            body,
		SignatureHeader: signatureHeader(req),
		SourceIP:        c.RealIP(),
	})

	switch outcome.Status {
	case services.StatusAdmitted:
		slog.InfoContext(ctx, "Webhook event admitted",
			"event_id", outcome.Event.EventID,
			"event_type", outcome.Event.EventType,
			"payment_id", outcome.Event.PaymentID,
			"db_id", outcome.Event.ID,
		)
		return c.JSON(http.StatusOK, map[string]any{
			"message": "Event processed successfully",
			"event":   eventView(outcome.Event, false),
		})

	case services.StatusDuplicate:
		slog.InfoContext(ctx, "Duplicate event detected, returning existing event",
			"event_id", outcome.Event.EventID,
			"existing_id", outcome.Event.ID,
		)
		return c.JSON(http.StatusOK, map[string]any{
			"message":   "Event already processed",
			"event":     eventView(outcome.Event, true),
			"duplicate": true,
		})

	default:
		return w.writeRejection(c, outcome)
	}
}

func (w *WebhookRoutes) writeRejection(c echo.Context, outcome services.Outcome) error {
	ctx := c.Request().Context()

	switch outcome.Reason {
	case services.ReasonRateLimited:
		retryAfter := int(math.Ceil(outcome.RetryAfter.Seconds()))
		if retryAfter < 1 {
			retryAfter = 1
		}
		slog.WarnContext(ctx, "Rate limit exceeded", "ip", c.RealIP(), "retry_after", retryAfter)
		c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
		return c.JSON(http.StatusTooManyRequests, map[string]any{
			"error":       "Too Many Requests",
			"message":     "Rate limit exceeded. Please try again later.",
			"retry_after": retryAfter,
		})

	case services.ReasonUnauthenticated:
		slog.WarnContext(ctx, "Invalid webhook signature", "ip", c.RealIP())
		return errorJSON(c, http.StatusForbidden, "Forbidden", "Invalid webhook signature")

	case services.ReasonMalformedJSON:
		return errorJSON(c, http.StatusBadRequest, "Invalid JSON", "Request body must be a valid JSON object")

	case services.ReasonMissingField:
		return c.JSON(http.StatusBadRequest, map[string]any{
			"error":          "Missing required fields",
			"message":        "The following fields are required: " + outcome.Field,
			"missing_fields": []string{outcome.Field},
		})

	case services.ReasonInvalidField:
		return c.JSON(http.StatusBadRequest, map[string]any{
			"error":   "Validation failed",
			"message": "Invalid value for field: " + outcome.Field,
			"field":   outcome.Field,
		})

	case services.ReasonStoreUnavailable:
		slog.ErrorContext(ctx, "Event store unavailable during admission")
		return errorJSON(c, http.StatusServiceUnavailable, "Service Unavailable", "Event store is unavailable, please retry")

	default:
		return errorJSON(c, http.StatusInternalServerError, "Internal Server Error", "Unexpected admission outcome")
	}
}

func (w *WebhookRoutes) handleStatus(c echo.Context) error {
	status, err := w.queries.Status(c.Request().Context())
	if err != nil {
		return errorJSON(c, http.StatusServiceUnavailable, "Service Unavailable", "Unable to read ingestion status")
	}

	response := map[string]any{
		"status":       "operational",
		"message":      "Webhook endpoint is ready to receive events",
		"total_events": status.TotalEvents,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	}
	if !status.LastEventAt.IsZero() {
		response["last_event_at"] = status.LastEventAt.Format(time.RFC3339Nano)
	}
	return c.JSON(http.StatusOK, response)
}

func signatureHeader(req *http.Request) string {
	for _, name := range []string{SignatureHeader, HubSignatureHeader, "Authorization"} {
		if value := strings.TrimSpace(req.Header.Get(name)); value != "" {
			return value
		}
	}
	return ""
}
