// devicesim registers a fake device against a running backend and keeps
// it alive with heartbeats. Useful for exercising the presence tracking
// and targeted sends without a real browser.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"devocional-backend/internal/heartbeat"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "backend base URL")
	endpoint := flag.String("endpoint", "", "push endpoint to register (generated when empty)")
	interval := flag.Duration("interval", 2*time.Minute, "heartbeat interval")
	ua := flag.String("ua", "Mozilla/5.0 (Linux; Android 13; Pixel 7) Chrome/120.0 Mobile Safari/537.36", "user agent to present")
	flag.Parse()

	ep := *endpoint
	if ep == "" {
		ep = fmt.Sprintf("https://push.example/sim-%d", time.Now().UnixNano())
	}

	if err := register(*server, ep, *ua); err != nil {
		log.Fatalf("registration failed: %v", err)
	}
	log.Printf("registered device with endpoint %s", ep)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		cancel()
	}()

	runner := heartbeat.NewRunner(*server, ep, *interval)
	runner.Run(ctx)
	log.Println("device simulator stopped")
}

func register(server, endpoint, ua string) error {
	payload := map[string]any{
		"endpoint": endpoint,
		"keys": map[string]string{
			"p256dh": "sim-p256dh-key",
			"auth":   "sim-auth-secret",
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, server+"/api/subscribe", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", ua)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var parsed struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
		ID      string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return err
	}
	if !parsed.Success {
		return fmt.Errorf("server rejected registration: %s", parsed.Error)
	}
	log.Printf("assigned device id %s", parsed.ID)
	return nil
}
