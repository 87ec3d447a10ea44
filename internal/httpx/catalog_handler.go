package httpx

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phampho1103/UITPAY-Web/internal/catalog"
)

type CatalogHandler struct {
	Catalog *catalog.Service
}

func (h *CatalogHandler) Register(r chi.Router) {
	c := h.Catalog
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", listOf(c.Products))
			r.Post("/", createOf(c.SaveProduct))
			r.Get("/{id}", getOf(c.Product))
			r.Put("/{id}", updateOf(func(ctx context.Context, id string, p catalog.Product) (catalog.Product, error) {
				p.ProductID = id
				return c.SaveProduct(ctx, p)
			}))
			r.Delete("/{id}", deleteOf(c.DeleteProduct))
		})
		r.Route("/shops", func(r chi.Router) {
			r.Get("/", listOf(c.Shops))
			r.Post("/", createOf(c.CreateShop))
			r.Get("/{id}", getOf(c.Shop))
			r.Put("/{id}", updateOf(c.UpdateShop))
			r.Delete("/{id}", deleteOf(c.DeleteShop))
		})
		r.Route("/banners", func(r chi.Router) {
			r.Get("/", listOf(c.Banners))
			r.Post("/", createOf(c.CreateBanner))
			r.Get("/{id}", getOf(c.Banner))
			r.Put("/{id}", updateOf(c.UpdateBanner))
			r.Delete("/{id}", deleteOf(c.DeleteBanner))
		})
		r.Route("/posts", func(r chi.Router) {
			r.Get("/", listOf(c.Posts))
			r.Post("/", createOf(c.CreatePost))
			r.Get("/{id}", getOf(c.Post))
			r.Put("/{id}", updateOf(c.UpdatePost))
			r.Delete("/{id}", deleteOf(c.DeletePost))
		})
	})
}

func listOf[T any](fn func(context.Context) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := fn(r.Context())
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getOf[T any](fn func(context.Context, string) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := fn(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func createOf[T any](fn func(context.Context, T) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in T
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
		out, err := fn(r.Context(), in)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, out)
	}
}

func updateOf[T any](fn func(context.Context, string, T) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in T
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
		out, err := fn(r.Context(), chi.URLParam(r, "id"), in)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func deleteOf(fn func(context.Context, string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
