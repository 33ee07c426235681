package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"devocional-backend/config"
	"devocional-backend/internal/model"
)

func newTestResolver(serverURL string) *Resolver {
	return NewResolver(config.GeoConfig{
		Enabled:   true,
		LookupURL: serverURL + "/json/%s",
		Timeout:   2 * time.Second,
	})
}

func TestResolve_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/json/190.160.1.1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","country":"Chile","countryCode":"CL","city":"Santiago"}`))
	}))
	defer server.Close()

	r := newTestResolver(server.URL)
	loc := r.Resolve(context.Background(), "190.160.1.1")

	assert.Equal(t, "Chile", loc.Country)
	assert.Equal(t, "CL", loc.CountryCode)
	assert.Equal(t, "Santiago", loc.City)
	assert.True(t, loc.Resolved)
}

func TestResolve_FailureReturnsSentinel(t *testing.T) {
	testCases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "service error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
		},
		{
			name: "lookup rejected",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"status":"fail"}`))
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`not json`))
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(tc.handler)
			defer server.Close()

			r := newTestResolver(server.URL)
			loc := r.Resolve(context.Background(), "8.8.8.8")

			assert.Equal(t, model.UnknownLocation(), loc)
		})
	}
}

func TestResolve_MalformedIP(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
	}))
	defer server.Close()

	r := newTestResolver(server.URL)
	loc := r.Resolve(context.Background(), "not-an-ip")

	assert.Equal(t, model.UnknownLocation(), loc)
	assert.Equal(t, int32(0), atomic.LoadInt32(&requests), "malformed IPs must not reach the service")
}

func TestResolve_CachesPerIP(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.Write([]byte(`{"status":"success","country":"Peru","countryCode":"PE","city":"Lima"}`))
	}))
	defer server.Close()

	r := newTestResolver(server.URL)
	for i := 0; i < 5; i++ {
		loc := r.Resolve(context.Background(), "200.48.0.1")
		assert.Equal(t, "Peru", loc.Country)
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&requests), "repeat lookups must be served from cache")
}

func TestResolve_FailuresAreCachedToo(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	r := newTestResolver(server.URL)
	r.Resolve(context.Background(), "1.2.3.4")
	loc := r.Resolve(context.Background(), "1.2.3.4")

	assert.Equal(t, model.UnknownLocation(), loc)
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests))
}

func TestResolve_Disabled(t *testing.T) {
	r := NewResolver(config.GeoConfig{Enabled: false})
	loc := r.Resolve(context.Background(), "8.8.8.8")

	assert.Equal(t, "Desconocido", loc.Country)
	assert.Equal(t, "??", loc.CountryCode)
	assert.False(t, loc.Resolved, "a disabled resolver never attempts the lookup")
}
