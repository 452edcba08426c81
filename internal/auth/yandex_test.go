package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// fakeIdP stands in for Yandex ID: a token endpoint and a userinfo
// endpoint bound to one access token.
func fakeIdP(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"tok-123","token_type":"Bearer","expires_in":3600}`)
	})
	mux.HandleFunc("/info", func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Authorization"), "tok-123") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"yx-42","default_email":"person@yandex.ru"}`)
	})

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func testYandex(t *testing.T) *YandexOAuth {
	t.Helper()

	idp := fakeIdP(t)
	y := NewYandexOAuth(OAuthConfig{
		ClientID:     "cid",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost/cb",
	})
	y.cfg.Endpoint = oauth2.Endpoint{
		AuthURL:  idp.URL + "/authorize",
		TokenURL: idp.URL + "/token",
	}
	y.userInfoURL = idp.URL + "/info"
	return y
}

func TestYandexOAuth_Exchange(t *testing.T) {
	y := testYandex(t)

	ident, err := y.Exchange(context.Background(), "code-1")
	require.NoError(t, err)

	assert.Equal(t, "yandex", ident.Provider)
	assert.Equal(t, "yx-42", ident.ID)
	assert.Equal(t, "person@yandex.ru", ident.Email)
}

func TestYandexOAuth_AuthCodeURLCarriesState(t *testing.T) {
	y := testYandex(t)

	u := y.AuthCodeURL("state-xyz")
	assert.Contains(t, u, "state=state-xyz")
	assert.Contains(t, u, "client_id=cid")
}

func TestYandexCallback_FullFlow(t *testing.T) {
	s := &Server{
		Log:          zap.NewNop(),
		Users:        NewMemStore(),
		Sessions:     NewSessions("0123456789abcdef0123456789abcdef", time.Hour, false),
		Yandex:       testYandex(t),
		ClientOrigin: "http://localhost:5174",
	}

	ts := httptest.NewServer(s.Routes())
	t.Cleanup(ts.Close)

	client := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}

	// Start: redirect to the provider with a state cookie.
	startResp, err := client.Get(ts.URL + "/yandex/login")
	require.NoError(t, err)
	defer startResp.Body.Close()
	require.Equal(t, http.StatusFound, startResp.StatusCode)

	var state *http.Cookie
	for _, c := range startResp.Cookies() {
		if c.Name == stateCookie {
			state = c
		}
	}
	require.NotNil(t, state)
	assert.Contains(t, startResp.Header.Get("Location"), "state="+state.Value)

	// Callback with matching state: session issued, redirect to client.
	req, err := http.NewRequest(http.MethodGet, ts.URL+"/yandex/callback?state="+state.Value+"&code=code-1", nil)
	require.NoError(t, err)
	req.AddCookie(state)

	cbResp, err := client.Do(req)
	require.NoError(t, err)
	defer cbResp.Body.Close()
	require.Equal(t, http.StatusFound, cbResp.StatusCode)
	assert.Equal(t, "http://localhost:5174", cbResp.Header.Get("Location"))

	var session *http.Cookie
	for _, c := range cbResp.Cookies() {
		if c.Name == SessionCookie {
			session = c
		}
	}
	require.NotNil(t, session)

	verify := httptest.NewRequest(http.MethodGet, "/", nil)
	verify.AddCookie(session)
	uid, ok := s.Sessions.ResolveUserID(verify)
	require.True(t, ok)
	assert.NotEmpty(t, uid)
}

func TestYandexCallback_StateMismatch(t *testing.T) {
	s := &Server{
		Log:      zap.NewNop(),
		Users:    NewMemStore(),
		Sessions: NewSessions("0123456789abcdef0123456789abcdef", time.Hour, false),
		Yandex:   testYandex(t),
	}

	ts := httptest.NewServer(s.Routes())
	t.Cleanup(ts.Close)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/yandex/callback?state=forged&code=code-1", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: stateCookie, Value: "genuine"})

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMemStore_FindOrCreateExternalIsStable(t *testing.T) {
	s := NewMemStore()

	u1, err := s.FindOrCreateExternal(context.Background(), "yandex", "yx-42", "a@yandex.ru", "u_new1")
	require.NoError(t, err)
	assert.Equal(t, "u_new1", u1.ID)

	// Same identity again: same local user, refreshed email, newID unused.
	u2, err := s.FindOrCreateExternal(context.Background(), "yandex", "yx-42", "b@yandex.ru", "u_new2")
	require.NoError(t, err)
	assert.Equal(t, "u_new1", u2.ID)
	assert.Equal(t, "b@yandex.ru", u2.Email)
}
