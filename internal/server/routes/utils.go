package routes

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fr0stylo/payhook/internal/app/ports"
)

func errorJSON(c echo.Context, status int, errLabel, message string) error {
	return c.JSON(status, map[string]any{
		"error":   errLabel,
		"message": message,
	})
}

// eventView shapes one stored event for API responses. The verbatim payload
// is included only where the original body is useful (duplicates, details).
func eventView(event ports.PaymentEvent, includePayload bool) map[string]any {
	view := map[string]any{
		"id":          event.ID,
		"event_id":    event.EventID,
		"payment_id":  event.PaymentID,
		"event_type":  event.EventType,
		"received_at": event.ReceivedAt.Format(time.RFC3339Nano),
	}
	if includePayload {
		view["payload"] = event.Payload
	}
	return view
}

func validPaymentID(paymentID string) bool {
	return paymentID != "" && len(paymentID) <= 255
}
