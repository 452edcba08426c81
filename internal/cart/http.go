package cart

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"storefront/internal/catalog"
	"storefront/pkg/kit"
)

const maxAddBody = 1 << 20

// SessionResolver maps a request to a user ID. Absence means the request
// is unauthenticated; the surface turns that into a 401 before the store
// is ever called.
type SessionResolver interface {
	ResolveUserID(r *http.Request) (string, bool)
}

type Server struct {
	Store    *Store
	Sessions SessionResolver
	Log      *zap.Logger

	// TrustPathUserID enables the unauthenticated variant that takes the
	// user ID from the URL instead of the session cookie.
	TrustPathUserID bool
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	if s.TrustPathUserID {
		r.Get("/{userID}", s.get)
		r.Post("/{userID}", s.add)
		r.Delete("/{userID}/{productID}", s.removeOne)
		return r
	}

	r.Get("/", s.get)
	r.Post("/", s.add)
	r.Delete("/{productID}", s.removeOne)
	return r
}

func (s *Server) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	if s.TrustPathUserID {
		id := chi.URLParam(r, "userID")
		if id == "" {
			kit.WriteError(w, r, http.StatusBadRequest, "missing user id", nil)
			return "", false
		}
		return id, true
	}

	id, ok := s.Sessions.ResolveUserID(r)
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "unauthenticated", nil)
		return "", false
	}
	return id, true
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.userID(w, r)
	if !ok {
		return
	}
	kit.WriteJSON(w, http.StatusOK, s.Store.Get(uid))
}

func (s *Server) add(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.userID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAddBody)
	defer func() { _ = r.Body.Close() }()

	var p catalog.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}
	if p.ID == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "missing product id", nil)
		return
	}

	c, err := s.Store.AddItem(uid, p)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, c)
}

func (s *Server) removeOne(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.userID(w, r)
	if !ok {
		return
	}

	pid := chi.URLParam(r, "productID")
	c, err := s.Store.RemoveOne(uid, pid)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, c)
}

func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidArgument):
		kit.WriteError(w, r, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		kit.WriteError(w, r, http.StatusNotFound, "item not found", nil)
	default:
		if s.Log != nil {
			s.Log.Error("cart store failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}
