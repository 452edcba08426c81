package main

import (
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"storefront/internal/auth"
	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/server"
	"storefront/pkg/kit"
)

func main() {
	service := "storefront"
	log := kit.NewLogger(service)
	defer func() { _ = log.Sync() }()

	cfg, err := LoadConfig()
	if err != nil {
		log.Fatal("config", zap.Error(err))
	}

	catalogStore, userStore, closeDB, err := buildStores(cfg)
	if err != nil {
		log.Fatal("init stores failed", zap.Error(err))
	}
	defer closeDB()

	cartStore := cart.NewStore(cfg.CartMaxUsers, cfg.CartTTL)
	sessions := auth.NewSessions(cfg.SessionSecret, cfg.SessionTTL, cfg.CookieSecure)

	var yandex *auth.YandexOAuth
	if cfg.Yandex.ClientID != "" {
		yandex = auth.NewYandexOAuth(cfg.Yandex)
		log.Info("yandex oauth enabled")
	}

	h := server.NewHandler(server.Deps{
		Log:      log,
		Service:  service,
		Registry: prometheus.NewRegistry(),

		MetricsEnabled: cfg.MetricsEnabled,
		MetricsToken:   cfg.MetricsToken,

		ClientOrigin:    cfg.ClientOrigin,
		TrustPathUserID: cfg.CartTrustPathUser,

		Catalog:  catalogStore,
		Cart:     cartStore,
		Users:    userStore,
		Sessions: sessions,
		Yandex:   yandex,
	})

	if err := kit.RunHTTPServer(":"+cfg.Port, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func buildStores(cfg Config) (catalog.Store, auth.UserStore, func(), error) {
	if cfg.DatabaseURL == "" {
		cs, err := catalog.NewMemStore()
		if err != nil {
			return nil, nil, nil, err
		}
		return cs, auth.NewMemStore(), func() {}, nil
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	return catalog.NewPostgresStore(db), auth.NewPostgresStore(db), func() { _ = db.Close() }, nil
}
