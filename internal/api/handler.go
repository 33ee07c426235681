package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"devocional-backend/config"
	"devocional-backend/internal/geo"
	"devocional-backend/internal/notification"
	"devocional-backend/internal/presence"
	"devocional-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	cfg        *config.Config
	store      store.Store
	devices    *presence.Cache
	geo        *geo.Resolver
	dispatcher *notification.Dispatcher
	webpush    *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(cfg *config.Config, s store.Store, devices *presence.Cache, resolver *geo.Resolver, dispatcher *notification.Dispatcher, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		cfg:        cfg,
		store:      s,
		devices:    devices,
		geo:        resolver,
		dispatcher: dispatcher,
		webpush:    webpushOptions,
	}
}
