package heartbeat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Runner is the device-side half of the heartbeat tracker. While a push
// subscription is active it signals liveness: once immediately, then on a
// fixed interval, and on demand whenever the app returns to the
// foreground (Wake).
type Runner struct {
	serverURL string
	endpoint  string
	interval  time.Duration
	client    *http.Client
	wake      chan struct{}
}

// NewRunner creates a heartbeat runner for one subscription endpoint.
func NewRunner(serverURL, endpoint string, interval time.Duration) *Runner {
	return &Runner{
		serverURL: serverURL,
		endpoint:  endpoint,
		interval:  interval,
		client:    &http.Client{Timeout: 10 * time.Second},
		wake:      make(chan struct{}, 1),
	}
}

// Wake triggers an immediate heartbeat, used on foreground transitions.
// Non-blocking; coalesces with a pending wake.
func (r *Runner) Wake() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Run beats immediately, then on every interval tick or wake signal,
// until the context is cancelled.
func (r *Runner) Run(ctx context.Context) {
	if err := r.Beat(ctx); err != nil {
		log.Printf("heartbeat failed: %v", err)
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
		case <-r.wake:
		case <-ctx.Done():
			return
		}
		if err := r.Beat(ctx); err != nil {
			log.Printf("heartbeat failed: %v", err)
		}
	}
}

type beatRequest struct {
	Endpoint string `json:"endpoint"`
}

type beatResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Beat sends one heartbeat carrying only the subscription endpoint.
func (r *Runner) Beat(ctx context.Context) error {
	body, err := json.Marshal(beatRequest{Endpoint: r.endpoint})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.serverURL+"/api/heartbeat", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var parsed beatResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&parsed); err != nil {
		return err
	}
	if !parsed.Success {
		// "not registered" is soft: the server never creates a record
		// from a heartbeat, and the device never unsubscribes over it.
		return fmt.Errorf("server rejected heartbeat: %s", parsed.Error)
	}
	return nil
}
