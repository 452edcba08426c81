package auth

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/pkg/kit"
)

const (
	maxBodyBytes   = 1 << 20
	minPasswordLen = 8

	loginLimitPerMin    = 5
	registerLimitPerMin = 3
	limitWindow         = 60 * time.Second

	stateCookie = "sf_oauth_state"
	stateTTL    = 10 * time.Minute
)

type Server struct {
	Log      *zap.Logger
	Users    UserStore
	Sessions *Sessions

	// Yandex is nil when OAuth login is not configured; the routes are
	// simply not registered.
	Yandex *YandexOAuth

	// ClientOrigin is where the OAuth callback redirects after issuing
	// the session.
	ClientOrigin string
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	loginLimiter := kit.NewIPRateLimiter(loginLimitPerMin, limitWindow)
	registerLimiter := kit.NewIPRateLimiter(registerLimitPerMin, limitWindow)

	r.With(registerLimiter.Middleware).Post("/register", s.handleRegister)
	r.With(loginLimiter.Middleware).Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)
	r.Get("/me", s.handleMe)

	if s.Yandex != nil {
		r.Get("/yandex/login", s.handleYandexLogin)
		r.Get("/yandex/callback", s.handleYandexCallback)
	}

	return r
}

type credentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsReq, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req credentialsReq
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return credentialsReq{}, false
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Password = strings.TrimSpace(req.Password)

	if req.Email == "" || req.Password == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "email/password required", nil)
		return credentialsReq{}, false
	}
	return req, true
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeCredentials(w, r)
	if !ok {
		return
	}
	if len(req.Password) < minPasswordLen {
		kit.WriteError(w, r, http.StatusBadRequest, "password too short", map[string]any{"min_len": minPasswordLen})
		return
	}

	id := "u_" + uuid.NewString()
	if err := s.Users.Create(r.Context(), req.Email, req.Password, "user", id); err != nil {
		kit.WriteError(w, r, http.StatusConflict, err.Error(), nil)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

type userResp struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeCredentials(w, r)
	if !ok {
		return
	}

	u, err := s.Users.Verify(r.Context(), req.Email, req.Password)
	if err != nil {
		kit.WriteError(w, r, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}

	if err := s.Sessions.Issue(w, u.ID); err != nil {
		s.Log.Error("session issue", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	kit.WriteJSON(w, http.StatusOK, userResp{UserID: u.ID, Email: u.Email})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.Sessions.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.Sessions.ResolveUserID(r)
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "unauthenticated", nil)
		return
	}
	kit.WriteJSON(w, http.StatusOK, map[string]any{"user_id": uid})
}

func (s *Server) handleYandexLogin(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int(stateTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, s.Yandex.AuthCodeURL(state), http.StatusFound)
}

func (s *Server) handleYandexCallback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	c, err := r.Cookie(stateCookie)
	if err != nil || state == "" || c.Value != state {
		kit.WriteError(w, r, http.StatusBadRequest, "state mismatch", nil)
		return
	}

	// One-shot state: drop the cookie whether or not the exchange works.
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})

	code := r.URL.Query().Get("code")
	if code == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "missing code", nil)
		return
	}

	ident, err := s.Yandex.Exchange(r.Context(), code)
	if err != nil {
		s.Log.Warn("yandex exchange failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusBadGateway, "oauth exchange failed", nil)
		return
	}

	u, err := s.Users.FindOrCreateExternal(r.Context(), ident.Provider, ident.ID, ident.Email, "u_"+uuid.NewString())
	if err != nil {
		s.Log.Error("upsert external user", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	if err := s.Sessions.Issue(w, u.ID); err != nil {
		s.Log.Error("session issue", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	target := s.ClientOrigin
	if target == "" {
		target = "/"
	}
	http.Redirect(w, r, target, http.StatusFound)
}
