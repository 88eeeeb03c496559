package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MorseWayne/catalog_shop/internal/api"
	"github.com/MorseWayne/catalog_shop/internal/config"
	"github.com/MorseWayne/catalog_shop/internal/domain"
	"github.com/MorseWayne/catalog_shop/internal/limiter"
	"github.com/MorseWayne/catalog_shop/internal/resp"
	"github.com/MorseWayne/catalog_shop/internal/web"
)

type stubCatalog struct{}

func (stubCatalog) ListProducts(_ context.Context, spec *domain.FilterSpec) (*domain.PagedResult, error) {
	return &domain.PagedResult{Products: []*domain.Product{}, Page: spec.Page, PageSize: spec.PageSize}, nil
}

func (stubCatalog) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	if id != "D001" {
		return nil, domain.ErrProductNotFound
	}
	return &domain.Product{ProductID: id, Title: "Floral Maxi", Price: 1299, Currency: "INR"}, nil
}

func (stubCatalog) ListCategories(context.Context) ([]*domain.Category, error) {
	return []*domain.Category{{ID: 1, Name: "Dresses"}}, nil
}

type stubFilters struct{}

func (stubFilters) GetFilters(_ context.Context, id int64) (*domain.FiltersResponse, error) {
	return &domain.FiltersResponse{Category: &domain.Category{ID: id}}, nil
}

type stubSearch struct{}

func (stubSearch) Search(_ context.Context, req *domain.SearchRequest) (*domain.SearchResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &domain.SearchResponse{Success: true, ResponseText: "Here are some dresses"}, nil
}

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

func newTestServer(t *testing.T, deps *Dependencies) http.Handler {
	t.Helper()
	lg := zap.NewNop()
	pages, err := web.NewHandler(stubCatalog{}, stubFilters{}, lg)
	require.NoError(t, err)

	full := &Dependencies{
		ProductHandler: api.NewProductHandler(stubCatalog{}, lg),
		FilterHandler:  api.NewFilterHandler(stubFilters{}, lg),
		SearchHandler:  api.NewSearchHandler(stubSearch{}, lg),
		PageHandler:    pages,
		DB:             pinger{},
	}
	if deps != nil {
		full.SearchLimiter = deps.SearchLimiter
		if deps.DB != nil {
			full.DB = deps.DB
		}
	}

	cfg := &config.Config{
		App:  config.AppConfig{Env: "test", RequestTimeout: 5 * time.Second},
		CORS: config.CORSConfig{AllowedOrigins: []string{"*"}, AllowedMethods: []string{"GET", "POST"}},
	}
	return New().Setup(cfg, full, lg)
}

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) resp.Envelope {
	t.Helper()
	var env resp.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func TestRoutes(t *testing.T) {
	h := newTestServer(t, nil)

	tests := []struct {
		name   string
		method string
		target string
		body   string
		status int
		code   int
	}{
		{"list products", http.MethodGet, "/products?page=1", "", http.StatusOK, resp.CodeOK},
		{"product by path param", http.MethodGet, "/products/D001", "", http.StatusOK, resp.CodeOK},
		{"product not found", http.MethodGet, "/products/NOPE", "", http.StatusNotFound, resp.CodeNotFound},
		{"categories", http.MethodGet, "/categories", "", http.StatusOK, resp.CodeOK},
		{"filters", http.MethodGet, "/filters?category_id=1", "", http.StatusOK, resp.CodeOK},
		{"filters without category", http.MethodGet, "/filters", "", http.StatusBadRequest, resp.CodeInvalidParam},
		{"search", http.MethodPost, "/search", `{"query":"red dress"}`, http.StatusOK, resp.CodeOK},
		{"search empty query", http.MethodPost, "/search", `{"query":"  "}`, http.StatusBadRequest, resp.CodeInvalidParam},
		{"healthz", http.MethodGet, "/healthz", "", http.StatusOK, resp.CodeOK},
		{"unknown route", http.MethodGet, "/nope", "", http.StatusNotFound, resp.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			env := decode(t, rec)
			assert.Equal(t, tt.code, env.Code)
			assert.NotEmpty(t, env.RequestID)
			assert.Equal(t, env.RequestID, rec.Header().Get("X-Request-ID"))
		})
	}
}

func TestPages(t *testing.T) {
	h := newTestServer(t, nil)

	rec := serve(h, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	rec = serve(h, http.MethodGet, "/product/D001", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Floral Maxi")

	rec = serve(h, http.MethodGet, "/product/NOPE", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthz_DatabaseDown(t *testing.T) {
	h := newTestServer(t, &Dependencies{DB: pinger{err: errors.New("connection refused")}})

	rec := serve(h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestSearch_RateLimited(t *testing.T) {
	lim := limiter.NewMemoryLimiter(&limiter.Config{Rate: 1, Window: time.Minute, KeyPrefix: "test"})
	h := newTestServer(t, &Dependencies{SearchLimiter: lim})

	rec := serve(h, http.MethodPost, "/search", `{"query":"red dress"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(h, http.MethodPost, "/search", `{"query":"red dress"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, resp.CodeTooManyRequests, decode(t, rec).Code)

	// 其他路由不受影响
	rec = serve(h, http.MethodGet, "/products", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/search", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST", rec.Header().Get("Access-Control-Allow-Methods"))
}
