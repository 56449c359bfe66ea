package routes

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fr0stylo/payhook/internal/app/services"
)

// PaymentRoutes registers the read-side payment endpoints.
type PaymentRoutes struct {
	queries *services.PaymentQueryService
}

// NewPaymentRoutes constructs payment routes.
func NewPaymentRoutes(queries *services.PaymentQueryService) *PaymentRoutes {
	return &PaymentRoutes{queries: queries}
}

// RegisterRoutes registers payment endpoints.
func (p *PaymentRoutes) RegisterRoutes(s *echo.Echo) {
	s.GET("/payments", p.handleListPayments)
	s.GET("/payments/:payment_id", p.handlePaymentDetails)
	s.GET("/payments/:payment_id/events", p.handlePaymentEvents)
}

func (p *PaymentRoutes) handleListPayments(c echo.Context) error {
	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)

	payments, err := p.queries.ListPayments(c.Request().Context(), limit, offset)
	if err != nil {
		return errorJSON(c, http.StatusServiceUnavailable, "Service Unavailable", "Unable to list payments")
	}

	views := make([]map[string]any, 0, len(payments))
	for _, payment := range payments {
		views = append(views, map[string]any{
			"payment_id":        payment.PaymentID,
			"latest_event_type": payment.LatestEventType,
			"last_updated":      payment.LastUpdated.Format(time.RFC3339Nano),
			"event_count":       payment.EventCount,
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"payments": views,
		"pagination": map[string]any{
			"limit":  limit,
			"offset": offset,
			"total":  len(views),
		},
	})
}

func (p *PaymentRoutes) handlePaymentDetails(c echo.Context) error {
	paymentID := c.Param("payment_id")
	if !validPaymentID(paymentID) {
		return errorJSON(c, http.StatusBadRequest, "Validation failed", "payment_id must be a non-empty string of at most 255 characters")
	}

	details, err := p.queries.PaymentDetails(c.Request().Context(), paymentID)
	if err != nil {
		if errors.Is(err, services.ErrPaymentNotFound) {
			return errorJSON(c, http.StatusNotFound, "Not Found", "Payment not found: "+paymentID)
		}
		return errorJSON(c, http.StatusServiceUnavailable, "Service Unavailable", "Unable to load payment details")
	}

	events := make([]map[string]any, 0, len(details.Events))
	for _, event := range details.Events {
		events = append(events, eventView(event, true))
	}

	return c.JSON(http.StatusOK, map[string]any{
		"payment_id":     details.PaymentID,
		"total_events":   details.TotalEvents,
		"event_types":    details.EventTypes,
		"first_event_at": details.FirstEventAt.Format(time.RFC3339Nano),
		"last_event_at":  details.LastEventAt.Format(time.RFC3339Nano),
		"current_status": details.CurrentStatus,
		"events":         events,
	})
}

func (p *PaymentRoutes) handlePaymentEvents(c echo.Context) error {
	paymentID := c.Param("payment_id")
	if !validPaymentID(paymentID) {
		return errorJSON(c, http.StatusBadRequest, "Validation failed", "payment_id must be a non-empty string of at most 255 characters")
	}

	summaries, err := p.queries.PaymentEvents(c.Request().Context(), paymentID)
	if err != nil {
		if errors.Is(err, services.ErrPaymentNotFound) {
			return c.JSON(http.StatusNotFound, map[string]any{
				"error":      "No events found",
				"message":    "No events found for payment ID: " + paymentID,
				"payment_id": paymentID,
			})
		}
		return errorJSON(c, http.StatusServiceUnavailable, "Service Unavailable", "Unable to list payment events")
	}

	return c.JSON(http.StatusOK, summaries)
}

func queryInt(c echo.Context, name string, fallback int64) int64 {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return value
}
