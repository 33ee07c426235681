package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"

	"github.com/patrickmn/go-cache"

	"devocional-backend/config"
	"devocional-backend/internal/model"
)

// Resolver maps client IPs to locations via a remote geo-IP service.
// Results are cached per IP for the process lifetime; lookups are
// best-effort and degrade to the Desconocido sentinel on any failure.
type Resolver struct {
	cfg    config.GeoConfig
	client *http.Client
	cache  *cache.Cache
}

// NewResolver creates a resolver with its own bounded-timeout HTTP client.
func NewResolver(cfg config.GeoConfig) *Resolver {
	return &Resolver{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		// No eviction: the per-process address space is small in this
		// domain. Flagged as a limitation, not a bug.
		cache: cache.New(cache.NoExpiration, 0),
	}
}

type lookupResponse struct {
	Status      string `json:"status"`
	Country     string `json:"country"`
	CountryCode string `json:"countryCode"`
	City        string `json:"city"`
}

// Resolve returns the location for an IP. It never returns an error:
// registration and heartbeat flows must not block on geo enrichment.
func (r *Resolver) Resolve(ctx context.Context, ip string) model.Location {
	if !r.cfg.Enabled || ip == "" {
		// Same sentinel values, but Resolved stays false: the lookup was
		// never attempted, as opposed to attempted-and-unknown.
		loc := model.UnknownLocation()
		loc.Resolved = false
		return loc
	}

	if cached, found := r.cache.Get(ip); found {
		return cached.(model.Location)
	}

	loc, err := r.lookup(ctx, ip)
	if err != nil {
		log.Printf("geo lookup for %s failed: %v", ip, err)
		loc = model.UnknownLocation()
	}
	r.cache.Set(ip, loc, cache.NoExpiration)
	return loc
}

func (r *Resolver) lookup(ctx context.Context, ip string) (model.Location, error) {
	if net.ParseIP(ip) == nil {
		return model.Location{}, fmt.Errorf("malformed ip %q", ip)
	}

	url := fmt.Sprintf(r.cfg.LookupURL, ip)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return model.Location{}, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return model.Location{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.Location{}, fmt.Errorf("geo service returned status %d", resp.StatusCode)
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return model.Location{}, err
	}
	if body.Status != "success" || body.Country == "" {
		return model.Location{}, fmt.Errorf("geo service rejected lookup: %q", body.Status)
	}

	return model.Location{
		Country:     body.Country,
		CountryCode: body.CountryCode,
		City:        body.City,
		Resolved:    true,
	}, nil
}
