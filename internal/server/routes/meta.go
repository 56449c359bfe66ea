package routes

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// MetaRoutes serves the health check and the endpoint index.
type MetaRoutes struct {
	dbPing func() error
}

// NewMetaRoutes constructs meta routes. dbPing may be nil when no store
// health probe is available.
func NewMetaRoutes(dbPing func() error) *MetaRoutes {
	return &MetaRoutes{dbPing: dbPing}
}

// RegisterRoutes registers meta endpoints.
func (m *MetaRoutes) RegisterRoutes(s *echo.Echo) {
	s.GET("/health", m.handleHealth)
	s.GET("/", m.handleIndex)
}

func (m *MetaRoutes) handleHealth(c echo.Context) error {
	if m.dbPing != nil {
		if err := m.dbPing(); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]any{
				"status":    "unhealthy",
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			})
		}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (m *MetaRoutes) handleIndex(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"service": "payhook",
		"endpoints": map[string]string{
			"POST /webhook/payments":           "Receive signed payment webhook events",
			"GET /webhook/status":              "Webhook ingestion status",
			"GET /payments":                    "List payments with their latest event",
			"GET /payments/:payment_id":        "Payment details and full event history",
			"GET /payments/:payment_id/events": "Event summaries for a payment",
			"GET /health":                      "Service health check",
		},
	})
}
