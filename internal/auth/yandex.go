package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/yandex"
)

const yandexUserInfoURL = "https://login.yandex.ru/info?format=json"

type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// YandexOAuth runs the authorization-code exchange against Yandex ID and
// resolves the token to an external identity.
type YandexOAuth struct {
	cfg         *oauth2.Config
	userInfoURL string
}

func NewYandexOAuth(c OAuthConfig) *YandexOAuth {
	return &YandexOAuth{
		cfg: &oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			RedirectURL:  c.RedirectURL,
			Endpoint:     yandex.Endpoint,
			Scopes:       []string{"login:email", "login:info"},
		},
		userInfoURL: yandexUserInfoURL,
	}
}

func (y *YandexOAuth) AuthCodeURL(state string) string {
	return y.cfg.AuthCodeURL(state)
}

type ExternalIdentity struct {
	Provider string
	ID       string
	Email    string
}

// Exchange swaps the authorization code for a token and fetches the
// user's Yandex profile.
func (y *YandexOAuth) Exchange(ctx context.Context, code string) (ExternalIdentity, error) {
	tok, err := y.cfg.Exchange(ctx, code)
	if err != nil {
		return ExternalIdentity{}, fmt.Errorf("exchange code: %w", err)
	}

	resp, err := y.cfg.Client(ctx, tok).Get(y.userInfoURL)
	if err != nil {
		return ExternalIdentity{}, fmt.Errorf("fetch user info: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return ExternalIdentity{}, fmt.Errorf("user info status %d", resp.StatusCode)
	}

	var info struct {
		ID           string `json:"id"`
		DefaultEmail string `json:"default_email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return ExternalIdentity{}, fmt.Errorf("decode user info: %w", err)
	}
	if info.ID == "" {
		return ExternalIdentity{}, fmt.Errorf("user info missing id")
	}

	return ExternalIdentity{
		Provider: "yandex",
		ID:       info.ID,
		Email:    info.DefaultEmail,
	}, nil
}
