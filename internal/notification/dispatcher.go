package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/google/uuid"

	"devocional-backend/internal/model"
	"devocional-backend/internal/presence"
	"devocional-backend/internal/store"
)

// Sender defines the interface for sending a web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is the real implementation using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// Payload is the notification content delivered to devices.
type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body,omitempty"`
	URL   string `json:"url,omitempty"`
}

// Result summarizes one dispatched batch.
type Result struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// Dispatcher fans a notification out to the targeted subscriptions over a
// bounded worker pool, prunes endpoints that report a terminal status, and
// records an audit entry.
type Dispatcher struct {
	store   store.Store
	devices *presence.Cache
	webpush *webpush.Options
	workers int
	sender  Sender
}

// NewDispatcher creates a dispatcher with the given fan-out bound.
func NewDispatcher(s store.Store, devices *presence.Cache, webpushOptions *webpush.Options, workers int) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	return &Dispatcher{
		store:   s,
		devices: devices,
		webpush: webpushOptions,
		workers: workers,
		sender:  &WebPushSender{},
	}
}

// SetSender replaces the transport. Used by tests.
func (d *Dispatcher) SetSender(s Sender) {
	d.sender = s
}

// Send delivers the payload to every subscription matching the target.
// Individual delivery failures never abort the batch: transient failures
// only count, terminal failures (404/410) additionally prune the
// subscription in one bulk update after all attempts complete.
func (d *Dispatcher) Send(ctx context.Context, target Target, payload Payload) (Result, error) {
	if payload.Title == "" {
		return Result{}, fmt.Errorf("notification title is required")
	}
	if err := target.Validate(); err != nil {
		return Result{}, err
	}

	subs, err := d.store.ListSubscriptions(ctx)
	if err != nil {
		return Result{}, err
	}

	var matched []model.Subscription
	for _, sub := range subs {
		if target.Matches(sub) {
			matched = append(matched, sub)
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Result{}, err
	}

	var (
		mu     sync.Mutex
		result Result
		dead   []string
	)

	jobs := make(chan model.Subscription)
	var wg sync.WaitGroup
	for i := 0; i < d.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sub := range jobs {
				ok, terminal := d.deliver(sub, body)
				mu.Lock()
				if ok {
					result.Sent++
				} else {
					result.Failed++
					if terminal {
						dead = append(dead, sub.Endpoint)
					}
				}
				mu.Unlock()
			}
		}()
	}
	for _, sub := range matched {
		jobs <- sub
	}
	close(jobs)
	wg.Wait()

	// Pruning happens once, after the join, so it never races the fan-out.
	if len(dead) > 0 {
		log.Printf("Pruning %d expired subscriptions", len(dead))
		if err := d.store.DeleteByEndpoints(ctx, dead); err != nil {
			log.Printf("Failed to prune expired subscriptions: %v", err)
		}
		d.devices.RemoveEndpoints(dead)
	}

	entry := &model.NotificationLog{
		ID:        uuid.NewString(),
		Title:     payload.Title,
		Target:    target.String(),
		Sent:      result.Sent,
		Failed:    result.Failed,
		CreatedAt: time.Now().UTC(),
	}
	if err := d.store.SaveNotificationLog(ctx, entry); err != nil {
		log.Printf("Failed to save notification log: %v", err)
	}

	log.Printf("Notification %q to %s: %d sent, %d failed", payload.Title, target, result.Sent, result.Failed)
	return result, nil
}

// deliver attempts one push. The second return value reports whether the
// failure was terminal (endpoint permanently gone).
func (d *Dispatcher) deliver(sub model.Subscription, payload []byte) (ok, terminal bool) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := d.sender.Send(payload, wpSub, d.webpush)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return false, false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return true, false
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		log.Printf("Subscription for endpoint %s is expired (status %d)", sub.Endpoint, resp.StatusCode)
		return false, true
	default:
		log.Printf("Push to %s failed with status %d", sub.Endpoint, resp.StatusCode)
		return false, false
	}
}
