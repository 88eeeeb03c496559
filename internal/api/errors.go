package api

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/MorseWayne/catalog_shop/internal/domain"
	"github.com/MorseWayne/catalog_shop/internal/middleware"
	"github.com/MorseWayne/catalog_shop/internal/resp"
)

// genericErrorMessage 内部错误对外统一提示，不暴露细节
const genericErrorMessage = "something went wrong, please try again"

// fieldError 校验失败时随响应返回的出错字段
type fieldError struct {
	Field string `json:"field"`
}

// writeError 按错误类型映射响应：校验错误 400，不存在 404，超时 504，其余 500。
func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, op string, err error) {
	reqID := middleware.RequestIDFromContext(r.Context())

	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		logger.Warn(op+" rejected", zap.String("request_id", reqID), zap.String("field", ve.Field), zap.Error(err))
		resp.ErrorWithData(w, http.StatusBadRequest, resp.CodeInvalidParam, ve.Error(), fieldError{Field: ve.Field}, reqID, "")

	case errors.Is(err, domain.ErrProductNotFound), errors.Is(err, domain.ErrCategoryNotFound):
		resp.Error(w, http.StatusNotFound, resp.CodeNotFound, err.Error(), reqID, "")

	case r.Context().Err() != nil:
		logger.Error(op+" timed out", zap.String("request_id", reqID), zap.Error(err))
		middleware.HandleTimeout(w, r)

	default:
		logger.Error(op+" failed", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, genericErrorMessage, reqID, "")
	}
}
