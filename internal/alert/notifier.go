package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
)

// Notifier posts alert events to a webhook endpoint, best-effort: one
// attempt per event, a bounded timeout, and no retries. An unreachable
// endpoint or a non-2xx response is reported as an unconfirmed delivery,
// never as an error to the caller, since the evaluation already succeeded.
//
// A circuit breaker stops the notifier from stalling every evaluation for
// the full timeout while the endpoint is down: after a run of failures,
// deliveries are skipped outright until the breaker half-opens.
type Notifier struct {
	url        string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[int]
	logger     *slog.Logger
}

// NewNotifier creates a webhook notifier for url. A zero timeout falls back
// to 10 seconds.
func NewNotifier(url string, timeout time.Duration, logger *slog.Logger) *Notifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[int](gobreaker.Settings{
		Name: "alert-webhook",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		Timeout: 30 * time.Second,
	})

	return &Notifier{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		breaker:    breaker,
		logger:     logger,
	}
}

// Deliver posts the event as JSON. It returns true only when the endpoint
// confirmed receipt with a 2xx status; every failure mode returns false.
func (n *Notifier) Deliver(ctx context.Context, ev Event) bool {
	status, err := n.breaker.Execute(func() (int, error) {
		return n.post(ctx, ev)
	})
	if err != nil {
		n.logger.Warn("alert delivery unconfirmed",
			"event_id", ev.ID,
			"station_id", ev.StationID,
			"error", err,
		)
		return false
	}
	n.logger.Info("alert delivered",
		"event_id", ev.ID,
		"station_id", ev.StationID,
		"status", status,
	)
	return true
}

func (n *Notifier) post(ctx context.Context, ev Event) (int, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return 0, fmt.Errorf("marshal alert event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// Each attempt gets its own delivery ID so receivers can tell a
	// replayed event from a duplicated HTTP request.
	req.Header.Set("X-Delivery-ID", uuid.NewString())

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("post alert event: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck // draining for connection reuse

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return resp.StatusCode, nil
}
