package main

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"storefront/internal/auth"
	"storefront/internal/cart"
)

type Config struct {
	Port         string
	ClientOrigin string
	DatabaseURL  string

	SessionSecret string
	SessionTTL    time.Duration
	CookieSecure  bool

	CartMaxUsers      int
	CartTTL           time.Duration
	CartTrustPathUser bool

	MetricsEnabled bool
	MetricsToken   string

	Yandex auth.OAuthConfig
}

// LoadConfig reads the environment, after loading a .env file when one is
// present.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:         env("PORT", "8080"),
		ClientOrigin: env("CLIENT_ORIGIN", "http://localhost:5174"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),

		SessionSecret: os.Getenv("SESSION_SECRET"),
		SessionTTL:    envDuration("SESSION_TTL", auth.DefaultSessionTTL),
		CookieSecure:  envBool("COOKIE_SECURE", false),

		CartMaxUsers:      envInt("CART_MAX_USERS", cart.DefaultMaxUsers),
		CartTTL:           envDuration("CART_TTL", cart.DefaultTTL),
		CartTrustPathUser: envBool("CART_TRUST_PATH_USER", false),

		MetricsEnabled: envBool("METRICS_ENABLED", false),
		MetricsToken:   os.Getenv("METRICS_TOKEN"),

		Yandex: auth.OAuthConfig{
			ClientID:     os.Getenv("YANDEX_CLIENT_ID"),
			ClientSecret: os.Getenv("YANDEX_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("YANDEX_REDIRECT_URI"),
		},
	}

	if len(cfg.SessionSecret) < 32 {
		return Config{}, errors.New("SESSION_SECRET is required and must be at least 32 chars")
	}
	if cfg.Yandex.ClientID != "" && (cfg.Yandex.ClientSecret == "" || cfg.Yandex.RedirectURL == "") {
		return Config{}, errors.New("YANDEX_CLIENT_SECRET and YANDEX_REDIRECT_URI must be set with YANDEX_CLIENT_ID")
	}

	return cfg, nil
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envDuration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envBool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
