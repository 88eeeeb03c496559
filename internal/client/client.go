package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/MorseWayne/catalog_shop/internal/domain"
)

// DefaultTimeout 未指定 http.Client 时的请求超时
const DefaultTimeout = 15 * time.Second

// APIError 服务端返回的非零业务码
type APIError struct {
	Status  int
	Code    int
	Message string
	Field   string
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("api error %d (status %d, field %s): %s", e.Code, e.Status, e.Field, e.Message)
	}
	return fmt.Sprintf("api error %d (status %d): %s", e.Code, e.Status, e.Message)
}

// NotFound 是否为资源不存在
func (e *APIError) NotFound() bool {
	return e.Status == http.StatusNotFound
}

// envelope 与服务端响应体结构一致，data 延迟解析
type envelope struct {
	Code      int             `json:"code"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	RequestID string          `json:"request_id"`
}

// Client 目录 HTTP API 的类型化客户端
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

// New 创建客户端；httpClient 为 nil 时使用带默认超时的客户端
func New(baseURL string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: scheme and host are required", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{baseURL: u, http: httpClient}, nil
}

// ListProducts GET /products
func (c *Client) ListProducts(ctx context.Context, q url.Values) (*domain.PagedResult, error) {
	var out domain.PagedResult
	if err := c.do(ctx, http.MethodGet, "/products", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetProduct GET /products/{product_id}
func (c *Client) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	var out domain.Product
	if err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(productID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListCategories GET /categories
func (c *Client) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	var out []*domain.Category
	if err := c.do(ctx, http.MethodGet, "/categories", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetFilters GET /filters?category_id=
func (c *Client) GetFilters(ctx context.Context, categoryID int64) (*domain.FiltersResponse, error) {
	q := url.Values{"category_id": {strconv.FormatInt(categoryID, 10)}}
	var out domain.FiltersResponse
	if err := c.do(ctx, http.MethodGet, "/filters", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Search POST /search
func (c *Client) Search(ctx context.Context, req *domain.SearchRequest) (*domain.SearchResponse, error) {
	var out domain.SearchResponse
	if err := c.do(ctx, http.MethodPost, "/search", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, body, out any) error {
	// path 为已转义的路径
	u := *c.baseURL
	u.RawPath = strings.TrimRight(c.baseURL.EscapedPath(), "/") + path
	unescaped, err := url.PathUnescape(u.RawPath)
	if err != nil {
		return fmt.Errorf("invalid request path %q: %w", path, err)
	}
	u.Path = unescaped
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if env.Code != 0 || resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode, Code: env.Code, Message: env.Message}
		var fe struct {
			Field string `json:"field"`
		}
		if len(env.Data) > 0 && json.Unmarshal(env.Data, &fe) == nil {
			apiErr.Field = fe.Field
		}
		return apiErr
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}
