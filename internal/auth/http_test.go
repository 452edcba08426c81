package auth_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/auth"
)

func newAuthTS(t *testing.T) *httptest.Server {
	t.Helper()

	s := &auth.Server{
		Log:      zap.NewNop(),
		Users:    auth.NewMemStore(),
		Sessions: auth.NewSessions(testSecret, time.Hour, false),
	}

	ts := httptest.NewServer(s.Routes())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()

	b, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()

	for _, c := range resp.Cookies() {
		if c.Name == auth.SessionCookie {
			return c
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

func TestAuthAPI_RegisterLoginMeLogout(t *testing.T) {
	ts := newAuthTS(t)
	creds := map[string]any{"email": "User@Example.com", "password": "password123"}

	resp := postJSON(t, ts.URL+"/register", creds)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = postJSON(t, ts.URL+"/login", creds)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var u struct {
		UserID string `json:"user_id"`
		Email  string `json:"email"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&u))
	assert.NotEmpty(t, u.UserID)
	assert.Equal(t, "user@example.com", u.Email)

	c := sessionCookie(t, resp)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/me", nil)
	require.NoError(t, err)
	req.AddCookie(c)
	meResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer meResp.Body.Close()
	require.Equal(t, http.StatusOK, meResp.StatusCode)

	var me struct {
		UserID string `json:"user_id"`
	}
	require.NoError(t, json.NewDecoder(meResp.Body).Decode(&me))
	assert.Equal(t, u.UserID, me.UserID)

	outResp := postJSON(t, ts.URL+"/logout", nil)
	require.Equal(t, http.StatusNoContent, outResp.StatusCode)
	assert.Negative(t, sessionCookie(t, outResp).MaxAge)
}

func TestAuthAPI_MeWithoutSession(t *testing.T) {
	ts := newAuthTS(t)

	resp, err := http.Get(ts.URL + "/me")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthAPI_RegisterValidation(t *testing.T) {
	ts := newAuthTS(t)

	resp := postJSON(t, ts.URL+"/register", map[string]any{"email": "a@b.c", "password": "short"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, ts.URL+"/register", map[string]any{"email": "", "password": "password123"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAuthAPI_DuplicateEmailConflicts(t *testing.T) {
	ts := newAuthTS(t)
	creds := map[string]any{"email": "dup@example.com", "password": "password123"}

	resp := postJSON(t, ts.URL+"/register", creds)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = postJSON(t, ts.URL+"/register", creds)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAuthAPI_BadCredentials(t *testing.T) {
	ts := newAuthTS(t)

	resp := postJSON(t, ts.URL+"/register", map[string]any{"email": "x@example.com", "password": "password123"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = postJSON(t, ts.URL+"/login", map[string]any{"email": "x@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthAPI_LoginRateLimited(t *testing.T) {
	ts := newAuthTS(t)
	creds := map[string]any{"email": "rl@example.com", "password": "wrong-password"}

	for i := 0; i < 5; i++ {
		resp := postJSON(t, ts.URL+"/login", creds)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	resp := postJSON(t, ts.URL+"/login", creds)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}
