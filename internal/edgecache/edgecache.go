// Package edgecache is the server-side rendition of the PWA's offline
// cache layer: an intercepting handler in front of the asset upstream
// with two independently versioned partitions. Static assets are served
// network-first with cache fallback; audio is cache-first, since a
// published devotional audio file never changes.
package edgecache

import (
	"bytes"
	"net/http"
	"path"
	"strings"
	"sync"

	"github.com/patrickmn/go-cache"

	"devocional-backend/config"
)

const apiPrefix = "/api/"

var audioExtensions = map[string]struct{}{
	".mp3": {}, ".m4a": {}, ".ogg": {}, ".wav": {}, ".aac": {},
}

type cachedResponse struct {
	status  int
	headers http.Header
	body    []byte
}

// responseRecorder captures the upstream response so it can be cached
// and replayed.
type responseRecorder struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newRecorder() *responseRecorder {
	return &responseRecorder{header: make(http.Header), status: http.StatusOK}
}

func (r *responseRecorder) Header() http.Header        { return r.header }
func (r *responseRecorder) WriteHeader(status int)     { r.status = status }
func (r *responseRecorder) Write(b []byte) (int, error) { return r.body.Write(b) }

func (r *responseRecorder) snapshot() cachedResponse {
	return cachedResponse{
		status:  r.status,
		headers: r.header.Clone(),
		body:    r.body.Bytes(),
	}
}

// Handler routes requests between the upstream and the cache partitions.
type Handler struct {
	cfg      config.EdgeCacheConfig
	upstream http.Handler
	deny     map[string]struct{}

	mu         sync.Mutex
	partitions map[string]*cache.Cache
}

// New creates the handler and activates the configured partition versions.
func New(cfg config.EdgeCacheConfig, upstream http.Handler) *Handler {
	h := &Handler{
		cfg:        cfg,
		upstream:   upstream,
		deny:       make(map[string]struct{}, len(cfg.DenyList)),
		partitions: make(map[string]*cache.Cache),
	}
	for _, p := range cfg.DenyList {
		h.deny[p] = struct{}{}
	}
	h.Activate()
	return h
}

func (h *Handler) staticName() string { return "static-" + h.cfg.StaticVersion }
func (h *Handler) audioName() string  { return "audio-" + h.cfg.AudioVersion }

// Activate drops every partition whose versioned name no longer matches
// the current configuration and ensures the current ones exist. The
// aggressive client-side force-reload has no server equivalent; clients
// observe the flip through the X-Cache-Version header.
func (h *Handler) Activate() {
	h.mu.Lock()
	defer h.mu.Unlock()

	current := map[string]struct{}{h.staticName(): {}, h.audioName(): {}}
	for name := range h.partitions {
		if _, keep := current[name]; !keep {
			delete(h.partitions, name)
		}
	}
	for name := range current {
		if _, ok := h.partitions[name]; !ok {
			h.partitions[name] = cache.New(cache.NoExpiration, 0)
		}
	}
}

// SetVersions switches the active partition versions and re-activates.
func (h *Handler) SetVersions(staticVersion, audioVersion string) {
	h.mu.Lock()
	h.cfg.StaticVersion = staticVersion
	h.cfg.AudioVersion = audioVersion
	h.mu.Unlock()
	h.Activate()
}

func (h *Handler) partition(name string) *cache.Cache {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.partitions[name]
}

// ServeHTTP applies the routing rules in priority order.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Cache-Version", h.cfg.StaticVersion)

	// 1. Non-http(s) schemes and 2. mutating methods pass through untouched.
	if scheme := r.URL.Scheme; scheme != "" && scheme != "http" && scheme != "https" {
		h.upstream.ServeHTTP(w, r)
		return
	}
	if r.Method != http.MethodGet {
		h.upstream.ServeHTTP(w, r)
		return
	}

	p := r.URL.Path

	// 3. API data must always be fresh. 4. Branding assets are replaced
	// in place by the admin, so a cached copy would go stale.
	if strings.HasPrefix(p, apiPrefix) {
		h.upstream.ServeHTTP(w, r)
		return
	}
	if _, denied := h.deny[p]; denied {
		h.upstream.ServeHTTP(w, r)
		return
	}

	// 5. Audio: cache-first, populate on miss.
	if isAudioPath(p) {
		h.cacheFirst(w, r, h.partition(h.audioName()))
		return
	}

	// 6. Everything else: network-first with cache fallback.
	h.networkFirst(w, r, h.partition(h.staticName()))
}

func isAudioPath(p string) bool {
	if strings.HasPrefix(p, "/audio/") {
		return true
	}
	_, ok := audioExtensions[strings.ToLower(path.Ext(p))]
	return ok
}

func (h *Handler) cacheFirst(w http.ResponseWriter, r *http.Request, part *cache.Cache) {
	key := r.URL.Path
	if hit, found := part.Get(key); found {
		writeCached(w, hit.(cachedResponse), "HIT")
		return
	}

	rec := newRecorder()
	h.upstream.ServeHTTP(rec, r)
	resp := rec.snapshot()
	if resp.status >= 200 && resp.status < 300 {
		part.Set(key, resp, cache.NoExpiration)
	}
	writeCached(w, resp, "MISS")
}

func (h *Handler) networkFirst(w http.ResponseWriter, r *http.Request, part *cache.Cache) {
	key := r.URL.Path

	rec := newRecorder()
	h.upstream.ServeHTTP(rec, r)
	resp := rec.snapshot()

	if resp.status >= 200 && resp.status < 300 {
		part.Set(key, resp, cache.NoExpiration)
		writeCached(w, resp, "MISS")
		return
	}

	if hit, found := part.Get(key); found {
		writeCached(w, hit.(cachedResponse), "HIT")
		return
	}

	// Full-page navigations fall back to the cached index document when
	// both the network and the direct lookup fail.
	if isNavigation(r) {
		if hit, found := part.Get(h.cfg.IndexPath); found {
			writeCached(w, hit.(cachedResponse), "FALLBACK")
			return
		}
	}

	writeCached(w, resp, "MISS")
}

func isNavigation(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func writeCached(w http.ResponseWriter, resp cachedResponse, verdict string) {
	for k, v := range resp.headers {
		w.Header()[k] = v
	}
	w.Header().Set("X-Cache", verdict)
	w.WriteHeader(resp.status)
	w.Write(resp.body)
}
