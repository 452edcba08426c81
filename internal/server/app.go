// Package server assembles the catalog, cart and auth surfaces into one
// HTTP handler.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"storefront/internal/auth"
	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/pkg/kit"
)

const readyTimeout = 2 * time.Second

type Deps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string

	ClientOrigin    string
	TrustPathUserID bool

	Catalog  catalog.Store
	Cart     *cart.Store
	Users    auth.UserStore
	Sessions *auth.Sessions
	Yandex   *auth.YandexOAuth
}

func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	setupMiddleware(r, deps)
	setupMetrics(r, deps)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", readyz(deps))

	catalogSrv := &catalog.Server{Store: deps.Catalog, Log: deps.Log}
	cartSrv := &cart.Server{
		Store:           deps.Cart,
		Sessions:        deps.Sessions,
		Log:             deps.Log,
		TrustPathUserID: deps.TrustPathUserID,
	}
	authSrv := &auth.Server{
		Log:          deps.Log,
		Users:        deps.Users,
		Sessions:     deps.Sessions,
		Yandex:       deps.Yandex,
		ClientOrigin: deps.ClientOrigin,
	}

	api := chi.NewRouter()
	api.Use(corsMiddleware(deps.ClientOrigin))
	api.Mount("/products", catalogSrv.Routes())
	api.Get("/categories", catalogSrv.CategoriesHandler())
	api.Mount("/cart", cartSrv.Routes())
	api.Mount("/auth", authSrv.Routes())

	r.Mount("/api/v1", api)
	return r
}

func setupMiddleware(r *chi.Mux, deps Deps) {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(deps.Log))
}

func setupMetrics(r *chi.Mux, deps Deps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service, kit.RoutePatternOrPath))

	deps.Registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "cart_active_users",
			Help: "Carts currently held in the store",
		},
		func() float64 { return float64(deps.Cart.Len()) },
	))

	if !deps.MetricsEnabled {
		return
	}

	r.With(kit.MetricsAuth(deps.MetricsToken)).
		Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}

func corsMiddleware(origin string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{origin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	})
	return c.Handler
}

func readyz(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		if err := deps.Catalog.Ping(ctx); err != nil {
			if deps.Log != nil {
				deps.Log.Warn("readyz failed: catalog", zap.Error(err))
			}
			kit.WriteError(w, r, http.StatusServiceUnavailable, "catalog not ready", nil)
			return
		}

		if err := deps.Users.Ping(ctx); err != nil {
			if deps.Log != nil {
				deps.Log.Warn("readyz failed: users", zap.Error(err))
			}
			kit.WriteError(w, r, http.StatusServiceUnavailable, "users not ready", nil)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}
