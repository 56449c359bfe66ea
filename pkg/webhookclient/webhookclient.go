// Package webhookclient delivers signed payment webhook events to a payhook
// server. It signs the exact bytes it sends, so servers can verify the
// signature over the raw body without re-serialization.
package webhookclient

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SignatureHeader is the header carrying the HMAC-SHA256 signature.
const SignatureHeader = "X-Webhook-Signature"

// Client sends payment events to one payhook endpoint.
type Client struct {
	Endpoint   string
	Secret     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Event is one payment lifecycle event to deliver. Extra fields are carried
// alongside the required ones and stored verbatim by the server.
type Event struct {
	EventID   string
	PaymentID string
	EventType string
	Extra     map[string]any
}

// BuildEventBody serializes an event into the wire payload.
func BuildEventBody(event Event) ([]byte, error) {
	eventID := strings.TrimSpace(event.EventID)
	paymentID := strings.TrimSpace(event.PaymentID)
	eventType := strings.TrimSpace(event.EventType)
	if eventID == "" || paymentID == "" || eventType == "" {
		return nil, fmt.Errorf("event_id, payment_id and event_type are required")
	}

	payload := map[string]any{
		"event_id":   eventID,
		"payment_id": paymentID,
		"event_type": eventType,
	}
	for key, value := range event.Extra {
		if _, reserved := payload[key]; reserved {
			continue
		}
		payload[key] = value
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return body, nil
}

// Sign computes the hex HMAC-SHA256 of body under secret.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Send delivers the event and returns an error for any non-2xx response.
func (c Client) Send(ctx context.Context, event Event) error {
	body, err := BuildEventBody(event)
	if err != nil {
		return err
	}
	return c.SendBody(ctx, body)
}

// SendBody delivers pre-serialized payload bytes, signing them as-is.
func (c Client) SendBody(ctx context.Context, body []byte) error {
	endpoint := strings.TrimSpace(c.Endpoint)
	secret := strings.TrimSpace(c.Secret)
	if endpoint == "" || secret == "" {
		return fmt.Errorf("endpoint and secret are required")
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		timeout := c.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	requestURL := strings.TrimRight(endpoint, "/") + "/webhook/payments"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set(SignatureHeader, Sign(body, secret))
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		payload, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("webhook rejected: status=%s body=%s", resp.Status, strings.TrimSpace(string(payload)))
	}
	return nil
}
