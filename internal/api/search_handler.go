package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/MorseWayne/catalog_shop/internal/domain"
	"github.com/MorseWayne/catalog_shop/internal/middleware"
	"github.com/MorseWayne/catalog_shop/internal/resp"
	"github.com/MorseWayne/catalog_shop/internal/service"
)

// maxSearchBodyBytes 聊天请求体上限
const maxSearchBodyBytes = 16 << 10

// SearchHandler 聊天搜索转发处理器
type SearchHandler struct {
	searchService service.SearchService
	logger        *zap.Logger
}

// NewSearchHandler 创建聊天搜索处理器实例
func NewSearchHandler(searchService service.SearchService, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
		logger:        logger,
	}
}

// Search 转发聊天消息
// POST /search
// 上游失败时仍返回 200，data.success=false 并携带通用提示
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	var req domain.SearchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSearchBodyBytes)).Decode(&req); err != nil {
		h.logger.Warn("invalid request body", zap.String("request_id", reqID), zap.Error(err))
		resp.ErrorWithData(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid request body", fieldError{Field: "body"}, reqID, "")
		return
	}

	result, err := h.searchService.Search(r.Context(), &req)
	if err != nil {
		writeError(w, r, h.logger, "search", err)
		return
	}

	resp.OK(w, result, reqID, "")
}
