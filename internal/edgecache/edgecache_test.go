package edgecache

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	gocache "github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devocional-backend/config"
)

type upstreamStub struct {
	hits      int32
	responses map[string]func(w http.ResponseWriter, r *http.Request)
}

func (u *upstreamStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&u.hits, 1)
	if fn, ok := u.responses[r.URL.Path]; ok {
		fn(w, r)
		return
	}
	w.Write([]byte("upstream:" + r.URL.Path))
}

func (u *upstreamStub) count() int32 { return atomic.LoadInt32(&u.hits) }

func newTestHandler(upstream http.Handler) *Handler {
	cfg := config.EdgeCacheConfig{
		StaticVersion: "v3",
		AudioVersion:  "v1",
		DenyList:      []string{"/img/logo.png", "/img/pastor.jpg"},
		IndexPath:     "/index.html",
	}
	return New(cfg, upstream)
}

func get(h http.Handler, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestAudio_CacheFirst(t *testing.T) {
	upstream := &upstreamStub{}
	h := newTestHandler(upstream)

	first := get(h, "/audio/2026-08-28.mp3", nil)
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Equal(t, int32(1), upstream.count())

	second := get(h, "/audio/2026-08-28.mp3", nil)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, "upstream:/audio/2026-08-28.mp3", second.Body.String())
	assert.Equal(t, int32(1), upstream.count(), "a cached audio file must not hit the network again")
}

func TestAudio_ExtensionMatching(t *testing.T) {
	upstream := &upstreamStub{}
	h := newTestHandler(upstream)

	get(h, "/media/devocional.MP3", nil)
	get(h, "/media/devocional.MP3", nil)
	assert.Equal(t, int32(1), upstream.count(), "extension match is case-insensitive")
}

func TestAudio_ErrorNotCached(t *testing.T) {
	upstream := &upstreamStub{responses: map[string]func(w http.ResponseWriter, r *http.Request){
		"/audio/missing.mp3": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		},
	}}
	h := newTestHandler(upstream)

	get(h, "/audio/missing.mp3", nil)
	get(h, "/audio/missing.mp3", nil)
	assert.Equal(t, int32(2), upstream.count(), "failed responses must not populate the cache")
}

func TestAPI_AlwaysBypassesCache(t *testing.T) {
	upstream := &upstreamStub{}
	h := newTestHandler(upstream)

	// Poison both partitions for the API path, simulating an earlier bug.
	poisoned := cachedResponse{status: http.StatusOK, headers: http.Header{}, body: []byte("stale")}
	h.partition(h.staticName()).Set("/api/devices", poisoned, gocache.NoExpiration)
	h.partition(h.audioName()).Set("/api/devices", poisoned, gocache.NoExpiration)

	for i := 0; i < 3; i++ {
		w := get(h, "/api/devices", nil)
		assert.Equal(t, "upstream:/api/devices", w.Body.String(), "API data must always come from the network")
	}
	assert.Equal(t, int32(3), upstream.count())
}

func TestDenyList_AlwaysNetwork(t *testing.T) {
	upstream := &upstreamStub{}
	h := newTestHandler(upstream)

	get(h, "/img/logo.png", nil)
	get(h, "/img/logo.png", nil)
	assert.Equal(t, int32(2), upstream.count(), "deny-listed branding assets are never cached")
}

func TestNonGET_PassesThrough(t *testing.T) {
	upstream := &upstreamStub{}
	h := newTestHandler(upstream)

	req := httptest.NewRequest(http.MethodPost, "/audio/2026-08-28.mp3", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	req = httptest.NewRequest(http.MethodPost, "/audio/2026-08-28.mp3", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, int32(2), upstream.count())
	assert.Empty(t, w.Header().Get("X-Cache"))
}

func TestStatic_NetworkFirstWithCacheFallback(t *testing.T) {
	healthy := true
	upstream := &upstreamStub{responses: map[string]func(w http.ResponseWriter, r *http.Request){
		"/app.js": func(w http.ResponseWriter, r *http.Request) {
			if healthy {
				w.Write([]byte("fresh-js"))
				return
			}
			w.WriteHeader(http.StatusBadGateway)
		},
	}}
	h := newTestHandler(upstream)

	first := get(h, "/app.js", nil)
	assert.Equal(t, "fresh-js", first.Body.String())

	// Network down: serve the cached copy.
	healthy = false
	second := get(h, "/app.js", nil)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, "fresh-js", second.Body.String())
}

func TestStatic_NavigationFallsBackToIndex(t *testing.T) {
	healthy := true
	upstream := &upstreamStub{responses: map[string]func(w http.ResponseWriter, r *http.Request){
		"/index.html": func(w http.ResponseWriter, r *http.Request) {
			if healthy {
				w.Write([]byte("<html>app</html>"))
				return
			}
			w.WriteHeader(http.StatusBadGateway)
		},
		"/nunca-visitada": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		},
	}}
	h := newTestHandler(upstream)

	// Prime the index, then take the network down.
	get(h, "/index.html", map[string]string{"Accept": "text/html"})
	healthy = false

	w := get(h, "/nunca-visitada", map[string]string{"Accept": "text/html"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "FALLBACK", w.Header().Get("X-Cache"))
	assert.Equal(t, "<html>app</html>", w.Body.String())

	// A non-navigation request gets the failure straight through.
	w = get(h, "/nunca-visitada", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestActivate_DropsStalePartitions(t *testing.T) {
	upstream := &upstreamStub{}
	h := newTestHandler(upstream)

	get(h, "/audio/a.mp3", nil)
	get(h, "/app.js", nil)
	require.Equal(t, int32(2), upstream.count())

	// Bump only the audio version: the audio partition is wiped, the
	// static one survives.
	h.SetVersions("v3", "v2")

	get(h, "/audio/a.mp3", nil)
	assert.Equal(t, int32(3), upstream.count(), "audio must be refetched after its version bump")

	w := get(h, "/app.js", nil)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"), "static is network-first, so a healthy upstream answers")
	assert.Equal(t, int32(4), upstream.count())
}

func TestVersionHeaderExposed(t *testing.T) {
	h := newTestHandler(&upstreamStub{})
	w := get(h, "/app.js", nil)
	assert.Equal(t, "v3", w.Header().Get("X-Cache-Version"))
}
