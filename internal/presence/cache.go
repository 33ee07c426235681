package presence

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"devocional-backend/internal/model"
)

// Entry is the read-optimized projection of one subscription, with the
// computed presence fields attached.
type Entry struct {
	model.Subscription
	IsOnline      bool   `json:"isOnline"`
	LastSeenLabel string `json:"lastSeenLabel"`
}

// Cache is an in-memory device-id keyed projection over the subscription
// store. It is not a source of truth: it must be updated on every
// registration, heartbeat, and deletion. Handlers run concurrently, so
// access is guarded by a RWMutex.
type Cache struct {
	mu              sync.RWMutex
	devices         map[string]model.Subscription
	onlineThreshold time.Duration
}

// NewCache creates an empty device cache.
func NewCache(onlineThreshold time.Duration) *Cache {
	return &Cache{
		devices:         make(map[string]model.Subscription),
		onlineThreshold: onlineThreshold,
	}
}

// Load replaces the whole projection, typically from the store at startup.
func (c *Cache) Load(subs []model.Subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.devices = make(map[string]model.Subscription, len(subs))
	for _, s := range subs {
		c.devices[s.DeviceID] = s
	}
}

// Put inserts or refreshes one device.
func (c *Cache) Put(sub model.Subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.devices[sub.DeviceID] = sub
}

// Remove drops one device from the projection.
func (c *Cache) Remove(deviceID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.devices, deviceID)
}

// RemoveEndpoints drops every device whose endpoint is in the given set.
// Used after the dispatcher prunes dead subscriptions in bulk.
func (c *Cache) RemoveEndpoints(endpoints []string) {
	if len(endpoints) == 0 {
		return
	}
	gone := make(map[string]struct{}, len(endpoints))
	for _, e := range endpoints {
		gone[e] = struct{}{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for id, sub := range c.devices {
		if _, ok := gone[sub.Endpoint]; ok {
			delete(c.devices, id)
		}
	}
}

// Len returns the number of tracked devices.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.devices)
}

// Snapshot returns all devices with presence computed at the given time,
// newest contact first.
func (c *Cache) Snapshot(now time.Time) []Entry {
	c.mu.RLock()
	entries := make([]Entry, 0, len(c.devices))
	for _, sub := range c.devices {
		entries = append(entries, Entry{
			Subscription:  sub,
			IsOnline:      c.isOnline(now, sub.LastSeen),
			LastSeenLabel: Label(now.Sub(sub.LastSeen)),
		})
	}
	c.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].LastSeen.After(entries[j].LastSeen)
	})
	return entries
}

// OnlineCount returns how many devices are currently online.
func (c *Cache) OnlineCount(now time.Time) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, sub := range c.devices {
		if c.isOnline(now, sub.LastSeen) {
			n++
		}
	}
	return n
}

func (c *Cache) isOnline(now time.Time, lastSeen time.Time) bool {
	return now.Sub(lastSeen) < c.onlineThreshold
}

// Label renders an elapsed time as the display bucket shown in the admin
// panel. Purely presentational.
func Label(elapsed time.Duration) string {
	minutes := int(elapsed.Minutes())
	switch {
	case minutes < 5:
		return "En línea"
	case minutes < 60:
		return fmt.Sprintf("Hace %dmin", minutes)
	case minutes < 1440:
		return fmt.Sprintf("Hace %dh", minutes/60)
	default:
		return fmt.Sprintf("Hace %dd", minutes/1440)
	}
}
