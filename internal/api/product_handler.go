// Package api 提供目录查询、过滤描述与聊天搜索的HTTP API处理器实现。
package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/MorseWayne/catalog_shop/internal/middleware"
	"github.com/MorseWayne/catalog_shop/internal/query"
	"github.com/MorseWayne/catalog_shop/internal/resp"
	"github.com/MorseWayne/catalog_shop/internal/service"
)

// ProductHandler 商品与分类相关的HTTP处理器
type ProductHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewProductHandler 创建商品处理器实例
func NewProductHandler(catalogService service.CatalogService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// ListProducts 获取商品列表
// GET /products?page=&page_size=&brand=&stock_status=&category_id=&min_price=&max_price=&sort_by=&sort_order=&filters=
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	spec, err := query.DecodeFilterSpec(r.URL.Query())
	if err != nil {
		writeError(w, r, h.logger, "list products", err)
		return
	}

	result, err := h.catalogService.ListProducts(r.Context(), spec)
	if err != nil {
		writeError(w, r, h.logger, "list products", err)
		return
	}

	h.logger.Debug("products listed",
		zap.String("request_id", reqID),
		zap.String("spec", query.Describe(spec)),
		zap.Int64("total", result.Total),
	)
	resp.OK(w, result, reqID, "")
}

// GetProduct 获取商品详情
// GET /products/{product_id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	product, err := h.catalogService.GetProduct(r.Context(), r.PathValue("product_id"))
	if err != nil {
		writeError(w, r, h.logger, "get product", err)
		return
	}

	resp.OK(w, product, reqID, "")
}

// ListCategories 获取分类列表
// GET /categories
func (h *ProductHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	categories, err := h.catalogService.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, h.logger, "list categories", err)
		return
	}

	resp.OK(w, categories, reqID, "")
}
