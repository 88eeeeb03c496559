package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MorseWayne/catalog_shop/internal/domain"
	"github.com/MorseWayne/catalog_shop/internal/resp"
)

func newCatalogServer(t *testing.T, lastQuery *url.Values) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /products", func(w http.ResponseWriter, r *http.Request) {
		if lastQuery != nil {
			*lastQuery = r.URL.Query()
		}
		resp.OK(w, domain.PagedResult{
			Products: []*domain.Product{{ProductID: "D001", Title: "Floral Maxi", Brand: "Acme", Price: 500, Currency: "INR", StockStatus: domain.StockInStock}},
			Total:    1,
			Page:     1,
			PageSize: 20,
		}, "rid", "")
	})
	mux.HandleFunc("GET /products/{id}", func(w http.ResponseWriter, r *http.Request) {
		resp.Error(w, http.StatusNotFound, resp.CodeNotFound, "product not found", "rid", "")
	})
	mux.HandleFunc("GET /categories", func(w http.ResponseWriter, r *http.Request) {
		resp.OK(w, []domain.Category{{ID: 1, Name: "Dresses"}}, "rid", "")
	})
	mux.HandleFunc("GET /filters", func(w http.ResponseWriter, r *http.Request) {
		resp.OK(w, domain.FiltersResponse{
			Category: &domain.Category{ID: 1, Name: "Dresses"},
			Filters: []domain.FilterDescriptor{{
				AttributeName:  "color",
				FilterType:     domain.FilterMultiSelect,
				Options:        []domain.FilterOption{{Value: "Blue", Label: "Blue", Count: 5}},
				HasMoreOptions: true,
				TotalOptions:   12,
			}},
		}, "rid", "")
	})
	mux.HandleFunc("POST /search", func(w http.ResponseWriter, r *http.Request) {
		var req domain.SearchRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		resp.OK(w, domain.SearchResponse{Success: true, ResponseText: "echo: " + req.Query, SessionID: req.SessionID}, "rid", "")
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"products", "product", "categories", "filters", "chat", "import"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, "", "categories", "--format", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestProducts_FlagsBecomeQuery(t *testing.T) {
	var got url.Values
	srv := newCatalogServer(t, &got)

	out, err := execute(t, "", "products", "--server", srv.URL,
		"--category", "1", "--brand", "Acme",
		"--select", "color=Red", "--select", "color=Navy Blue",
		"--range", "rating=4:", "--toggle", "skin_friendly",
		"--sort", "price_asc", "--page", "2")
	require.NoError(t, err)

	assert.Equal(t, "1", got.Get("category_id"))
	assert.Equal(t, "Acme", got.Get("brand"))
	assert.Equal(t, "price", got.Get("sort_by"))
	assert.Equal(t, "asc", got.Get("sort_order"))
	assert.Equal(t, "2", got.Get("page"))
	assert.JSONEq(t, `{"color":["Red","Navy Blue"],"rating":{"min":4},"skin_friendly":true}`, got.Get("filters"))

	assert.Contains(t, out, "D001")
	assert.Contains(t, out, "₹500")
	assert.Contains(t, out, "Page 1 of 1 (1 products)")
}

func TestProducts_InvalidFlags(t *testing.T) {
	srv := newCatalogServer(t, nil)
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"sort", []string{"--sort", "cheapest"}, "invalid sort"},
		{"select", []string{"--select", "color"}, "invalid --select"},
		{"range", []string{"--range", "rating=4"}, "invalid --range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"products", "--server", srv.URL}, tt.args...)
			_, err := execute(t, "", args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestProduct_NotFound(t *testing.T) {
	srv := newCatalogServer(t, nil)
	_, err := execute(t, "", "product", "NOPE", "--server", srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "product not found")
}

func TestCategories_JSON(t *testing.T) {
	srv := newCatalogServer(t, nil)
	out, err := execute(t, "", "categories", "--server", srv.URL, "--format", "json")
	require.NoError(t, err)

	var categories []domain.Category
	require.NoError(t, json.Unmarshal([]byte(out), &categories))
	require.Len(t, categories, 1)
	assert.Equal(t, "Dresses", categories[0].Name)
}

func TestFilters(t *testing.T) {
	srv := newCatalogServer(t, nil)
	out, err := execute(t, "", "filters", "1", "--server", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "Blue (5) ... 12 total")

	_, err = execute(t, "", "filters", "abc", "--server", srv.URL)
	require.Error(t, err)
}

func TestChat(t *testing.T) {
	srv := newCatalogServer(t, nil)

	out, err := execute(t, "", "chat", "--server", srv.URL, "red", "dresses")
	require.NoError(t, err)
	assert.Contains(t, out, "echo: red dresses")

	out, err = execute(t, "first\n\nsecond\nquit\nthird\n", "chat", "--server", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "echo: first")
	assert.Contains(t, out, "echo: second")
	assert.NotContains(t, out, "echo: third")
}

func TestImport(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DB_DRIVER", "sqlite3")
	t.Setenv("DB_PATH", filepath.Join(dir, "catalog.db"))
	t.Setenv("MIGRATIONS_DIR", filepath.Join("..", "..", "migrations", "sqlite3"))
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_ENCODING", "console")

	testdata := filepath.Join("..", "importer", "testdata")
	out, err := execute(t, "", "import",
		"--file", filepath.Join(testdata, "catalog.csv"),
		"--attributes", filepath.Join(testdata, "attributes.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 3 products (1 skipped, 1 failed)")
	assert.Contains(t, out, "line 4")
}
