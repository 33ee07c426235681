package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Push       PushConfig       `yaml:"push"`
	Geo        GeoConfig        `yaml:"geo"`
	Presence   PresenceConfig   `yaml:"presence"`
	Heartbeat  HeartbeatConfig  `yaml:"heartbeat"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Dispatcher DispatcherConfig `yaml:"dispatcher"`
	EdgeCache  EdgeCacheConfig  `yaml:"edge_cache"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	AdminToken      string  `yaml:"admin_token"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// GeoConfig holds the geo-IP lookup configuration.
type GeoConfig struct {
	Enabled        bool          `yaml:"enabled"`
	LookupURL      string        `yaml:"lookup_url"` // %s is replaced by the IP
	TimeoutSeconds int           `yaml:"timeout_seconds"`
	Timeout        time.Duration `yaml:"-"`
}

// PresenceConfig controls the online/offline classification.
type PresenceConfig struct {
	OnlineThresholdMinutes int           `yaml:"online_threshold_minutes"`
	OnlineThreshold        time.Duration `yaml:"-"`
}

// HeartbeatConfig controls the client heartbeat cadence and the
// persistence throttle on the server side.
type HeartbeatConfig struct {
	IntervalSeconds  int           `yaml:"interval_seconds"`
	Interval         time.Duration `yaml:"-"`
	FlushProbability float64       `yaml:"flush_probability"`
}

// SchedulerConfig holds the daily notification scheduler configuration.
type SchedulerConfig struct {
	Enabled        bool   `yaml:"enabled"`
	GMTOffsetHours int    `yaml:"gmt_offset_hours"`
	WindowMinutes  int    `yaml:"window_minutes"`
	FallbackTitle  string `yaml:"fallback_title"`
}

// DispatcherConfig holds the notification fan-out configuration.
type DispatcherConfig struct {
	Workers int `yaml:"workers"`
}

// EdgeCacheConfig holds the asset cache proxy configuration. The proxy
// is only mounted when AssetDir is set; otherwise the server is API-only.
type EdgeCacheConfig struct {
	AssetDir      string   `yaml:"asset_dir"`
	StaticVersion string   `yaml:"static_version"`
	AudioVersion  string   `yaml:"audio_version"`
	DenyList      []string `yaml:"deny_list"`
	IndexPath     string   `yaml:"index_path"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	ApplyDefaults(&cfg)
	return &cfg, nil
}

// ApplyDefaults fills in zero-valued fields with sane defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 30
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.Geo.LookupURL == "" {
		cfg.Geo.LookupURL = "http://ip-api.com/json/%s?fields=status,country,countryCode,city"
	}
	if cfg.Geo.TimeoutSeconds <= 0 {
		cfg.Geo.TimeoutSeconds = 5
	}
	cfg.Geo.Timeout = time.Duration(cfg.Geo.TimeoutSeconds) * time.Second

	if cfg.Presence.OnlineThresholdMinutes <= 0 {
		cfg.Presence.OnlineThresholdMinutes = 5
	}
	cfg.Presence.OnlineThreshold = time.Duration(cfg.Presence.OnlineThresholdMinutes) * time.Minute

	if cfg.Heartbeat.IntervalSeconds <= 0 {
		cfg.Heartbeat.IntervalSeconds = 120
	}
	cfg.Heartbeat.Interval = time.Duration(cfg.Heartbeat.IntervalSeconds) * time.Second
	if cfg.Heartbeat.FlushProbability <= 0 || cfg.Heartbeat.FlushProbability > 1 {
		cfg.Heartbeat.FlushProbability = 0.1
	}

	if cfg.Scheduler.WindowMinutes <= 0 {
		cfg.Scheduler.WindowMinutes = 5
	}
	if cfg.Scheduler.FallbackTitle == "" {
		cfg.Scheduler.FallbackTitle = "Devocional de hoy"
	}

	if cfg.Dispatcher.Workers <= 0 {
		log.Printf("dispatcher.workers is not set or invalid; defaulting to 8")
		cfg.Dispatcher.Workers = 8
	}

	if cfg.EdgeCache.StaticVersion == "" {
		cfg.EdgeCache.StaticVersion = "v1"
	}
	if cfg.EdgeCache.AudioVersion == "" {
		cfg.EdgeCache.AudioVersion = "v1"
	}
	if cfg.EdgeCache.IndexPath == "" {
		cfg.EdgeCache.IndexPath = "/index.html"
	}
}
