package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"devocional-backend/config"
	"devocional-backend/internal/api"
	"devocional-backend/internal/db"
	"devocional-backend/internal/edgecache"
	"devocional-backend/internal/geo"
	"devocional-backend/internal/notification"
	"devocional-backend/internal/presence"
	"devocional-backend/internal/scheduler"
	"devocional-backend/internal/store"
)

func main() {
	logger := log.New(os.Stdout, "devocional-backend ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	if cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "" {
		logger.Fatalf("VAPID keys must be configured. Please generate them and add them to your config file.")
	}

	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	logger.Println("data store initialized")

	// Rebuild the in-memory device projection from the store.
	devices := presence.NewCache(cfg.Presence.OnlineThreshold)
	subs, err := appStore.ListSubscriptions(ctx)
	if err != nil {
		logger.Fatalf("failed to load subscriptions: %v", err)
	}
	devices.Load(subs)
	logger.Printf("device cache rebuilt with %d subscriptions", devices.Len())

	resolver := geo.NewResolver(cfg.Geo)
	dispatcher := notification.NewDispatcher(appStore, devices, &webpushOptions, cfg.Dispatcher.Workers)

	if cfg.Scheduler.Enabled {
		daily := scheduler.NewDaily(cfg.Scheduler, appStore, dispatcher)
		daily.Start()
		defer daily.Stop()
	}

	handler := api.NewHandler(cfg, appStore, devices, resolver, dispatcher, &webpushOptions)
	router := api.NewRouter(handler)

	// When an asset directory is configured, the cache proxy fronts both
	// the API and the static files; API paths always pass through.
	var root http.Handler = router
	if cfg.EdgeCache.AssetDir != "" {
		assets := http.FileServer(http.Dir(cfg.EdgeCache.AssetDir))
		upstream := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/api/") {
				router.ServeHTTP(w, r)
				return
			}
			assets.ServeHTTP(w, r)
		})
		root = edgecache.New(cfg.EdgeCache, upstream)
		logger.Printf("asset cache enabled over %s (static %s, audio %s)",
			cfg.EdgeCache.AssetDir, cfg.EdgeCache.StaticVersion, cfg.EdgeCache.AudioVersion)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: root,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
