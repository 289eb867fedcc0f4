package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// ProbeResult is the synchronous outcome of a test delivery.
type ProbeResult struct {
	Ok        bool   `json:"ok"`
	HTTPCode  int    `json:"http_code,omitempty"`
	LatencyMs int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

type probePayload struct {
	Event          string         `json:"event"`
	Data           probeBody      `json:"data"`
	SubscriptionID string         `json:"subscription_id"`
}

type probeBody struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// TestProbe sends a synthetic signed webhook to the subscription's endpoint
// and reports the result without creating a delivery row or touching stats.
// The probe works against inactive subscriptions so an endpoint can be
// verified before enabling it.
func TestProbe(ctx context.Context, courier *Application, tenantID string, id pgtype.UUID) (ProbeResult, error) {
	sub, err := GetSubscription(ctx, courier, tenantID, id)
	if err != nil {
		return ProbeResult{}, err
	}

	body, err := json.Marshal(probePayload{
		Event: "webhook.test",
		Data: probeBody{
			Message:   "Test webhook delivery",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
		SubscriptionID: UuidToString(sub.ID),
	})
	if err != nil {
		return ProbeResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sub.Url, bytes.NewReader(body))
	if err != nil {
		return ProbeResult{Error: err.Error()}, nil
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Signature", SignPayload(sub.Secret, body))
	req.Header.Set("X-Webhook-Event", "webhook.test")

	client := &http.Client{Timeout: courier.Config.DeliveryTimeout}
	started := time.Now()
	resp, err := client.Do(req)
	latency := time.Since(started).Milliseconds()
	if err != nil {
		return ProbeResult{LatencyMs: latency, Error: err.Error()}, nil
	}
	resp.Body.Close()

	return ProbeResult{
		Ok:        classifyStatus(resp.StatusCode) == success,
		HTTPCode:  resp.StatusCode,
		LatencyMs: latency,
	}, nil
}
