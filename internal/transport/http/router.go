// Package httptransport assembles the gateway's HTTP surface: device and
// terminal routes under /api/iot, the pinning relay under /api, plus health
// and metrics.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cardhandler "tapbank/internal/card/handler"
	dispatchhandler "tapbank/internal/dispatch/handler"
	"tapbank/internal/platform/health"
	"tapbank/internal/platform/middleware"
	pinhandler "tapbank/internal/pin/handler"
	poshandler "tapbank/internal/pos/handler"
	"tapbank/pkg/platform/middleware/requesttime"
)

// Config carries the transport-level knobs the router needs.
type Config struct {
	DeviceAuth     middleware.DeviceAuthConfig
	AdminToken     string
	AllowedOrigins []string
}

// Handlers are the per-module HTTP layers the router mounts.
type Handlers struct {
	Card     *cardhandler.Handler
	POS      *poshandler.Handler
	Dispatch *dispatchhandler.Handler
	Pin      *pinhandler.Handler
	Health   *health.Handler
}

// NewRouter wires all endpoints with the shared middleware stack.
func NewRouter(cfg Config, h Handlers, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(requesttime.Middleware)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.DeviceKeyHeader, middleware.AdminTokenHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	h.Health.Register(r)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.ContentTypeJSON)

		// Device and terminal surface. The rate limit keeps a misbehaving
		// terminal from hammering the ledger; only the routes a card
		// reader calls present the pre-shared device key.
		api.Route("/iot", func(iot chi.Router) {
			iot.Use(httprate.LimitByIP(120, time.Minute))

			h.Card.Register(iot)
			h.POS.Register(iot)

			iot.Group(func(device chi.Router) {
				device.Use(middleware.RequireDeviceKey(cfg.DeviceAuth, logger))
				h.Dispatch.Register(device)
				h.POS.RegisterDevice(device)
			})

			iot.Group(func(admin chi.Router) {
				admin.Use(middleware.RequireAdminToken(cfg.AdminToken, logger))
				h.Card.RegisterAdmin(admin)
				h.Card.RegisterDebug(admin)
				h.POS.RegisterDebug(admin)
			})
		})

		// Pinning relay. The dashboards call this without the device key;
		// the Pinata token stays server-side.
		api.Group(func(relay chi.Router) {
			relay.Use(httprate.LimitByIP(60, time.Minute))

			h.Pin.Register(relay)

			relay.Group(func(admin chi.Router) {
				admin.Use(middleware.RequireAdminToken(cfg.AdminToken, logger))
				h.Pin.RegisterAdmin(admin)
			})
		})
	})

	return r
}
