package api

import (
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/MorseWayne/catalog_shop/internal/domain"
	"github.com/MorseWayne/catalog_shop/internal/middleware"
	"github.com/MorseWayne/catalog_shop/internal/resp"
	"github.com/MorseWayne/catalog_shop/internal/service"
)

// FilterHandler 动态过滤描述处理器
type FilterHandler struct {
	filterService service.FilterService
	logger        *zap.Logger
}

// NewFilterHandler 创建过滤描述处理器实例
func NewFilterHandler(filterService service.FilterService, logger *zap.Logger) *FilterHandler {
	return &FilterHandler{
		filterService: filterService,
		logger:        logger,
	}
}

// GetFilters 获取分类下的过滤控件描述
// GET /filters?category_id=
func (h *FilterHandler) GetFilters(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	raw := strings.TrimSpace(r.URL.Query().Get("category_id"))
	if raw == "" {
		writeError(w, r, h.logger, "get filters", domain.NewValidationError("category_id", "is required"))
		return
	}
	categoryID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || categoryID < 1 {
		writeError(w, r, h.logger, "get filters", domain.NewValidationError("category_id", "must be a positive integer, got %q", raw))
		return
	}

	filters, err := h.filterService.GetFilters(r.Context(), categoryID)
	if err != nil {
		writeError(w, r, h.logger, "get filters", err)
		return
	}

	resp.OK(w, filters, reqID, "")
}
