package catalog

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"storefront/pkg/kit"
)

type Server struct {
	Store Store
	Log   *zap.Logger
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/", s.list)
	r.Get("/{id}", s.get)

	return r
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	products, err := s.Store.ListSortedByID(r.Context())
	if err != nil {
		if s.Log != nil {
			s.Log.Error("list products failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	kit.WriteJSON(w, http.StatusOK, products)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, ok, err := s.Store.Get(r.Context(), id)
	if err != nil {
		if s.Log != nil {
			s.Log.Error("get product failed", zap.Error(err), zap.String("id", id))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

type Category struct {
	Name     string    `json:"name"`
	Products []Product `json:"products"`
}

type Grouping struct {
	Group      string     `json:"group"`
	Categories []Category `json:"categories"`
}

// CategoriesHandler returns the catalog grouped by category group and
// category. Presentation only; the flat product list is the source of truth.
func (s *Server) CategoriesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := s.Store.ListSortedByID(r.Context())
		if err != nil {
			if s.Log != nil {
				s.Log.Error("list products failed", zap.Error(err))
			}
			kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
			return
		}
		kit.WriteJSON(w, http.StatusOK, groupProducts(products))
	}
}

func groupProducts(products []Product) []Grouping {
	byGroup := map[string]map[string][]Product{}
	for _, p := range products {
		cats, ok := byGroup[p.CategoryGroup]
		if !ok {
			cats = map[string][]Product{}
			byGroup[p.CategoryGroup] = cats
		}
		cats[p.Category] = append(cats[p.Category], p)
	}

	out := make([]Grouping, 0, len(byGroup))
	for group, cats := range byGroup {
		g := Grouping{Group: group, Categories: make([]Category, 0, len(cats))}
		for name, ps := range cats {
			g.Categories = append(g.Categories, Category{Name: name, Products: ps})
		}
		sort.Slice(g.Categories, func(i, j int) bool { return g.Categories[i].Name < g.Categories[j].Name })
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Group < out[j].Group })
	return out
}
