package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phampho1103/UITPAY-Web/internal/catalog"
	"github.com/phampho1103/UITPAY-Web/internal/docstore"
)

func newCatalogServer() http.Handler {
	r := NewRouter()
	(&CatalogHandler{Catalog: &catalog.Service{Docs: docstore.NewMemory()}}).Register(r)
	return r
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCatalog_ProductLifecycle(t *testing.T) {
	h := newCatalogServer()

	rec := do(h, http.MethodPost, "/products", `{"productid":"p1","name":"Banh mi","price":15000}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(h, http.MethodPut, "/products/p1", `{"name":"Banh mi thit","price":20000}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(h, http.MethodGet, "/products/p1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var p catalog.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "p1", p.ProductID)
	assert.Equal(t, "Banh mi thit", p.Name)
	assert.Equal(t, "20000", p.Price.String())

	rec = do(h, http.MethodDelete, "/products/p1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(h, http.MethodGet, "/products/p1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCatalog_BadInput(t *testing.T) {
	h := newCatalogServer()

	rec := do(h, http.MethodPost, "/shops", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h, http.MethodPost, "/shops", `{"address":"no name"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "name is required")

	rec = do(h, http.MethodPut, "/banners/missing", `{"imageUrl":"https://img"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCatalog_PostsList(t *testing.T) {
	h := newCatalogServer()

	rec := do(h, http.MethodPost, "/posts", `{"title":"A","content":"x","date":"2024-01-01T00:00:00Z"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = do(h, http.MethodPost, "/posts", `{"title":"B","content":"y","date":"2025-01-01T00:00:00Z"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(h, http.MethodGet, "/posts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var posts []catalog.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &posts))
	require.Len(t, posts, 2)
	assert.Equal(t, "B", posts[0].Title)
}
