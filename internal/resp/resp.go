// Package resp 定义统一的 JSON 响应封装：{code, message, data, request_id}。
package resp

import (
	"encoding/json"
	"net/http"
)

// 业务错误码，0 表示成功。
const (
	CodeOK              = 0
	CodeInvalidParam    = 40001
	CodeNotFound        = 40401
	CodeTooManyRequests = 42901
	CodeInternalError   = 50001
	CodeUpstreamError   = 50201
	CodeTimeout         = 50401
)

// Envelope 响应体结构。
type Envelope struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	TraceID   string `json:"trace_id,omitempty"`
}

// OK 写入成功响应（HTTP 200）。
func OK(w http.ResponseWriter, data any, requestID, traceID string) {
	write(w, http.StatusOK, Envelope{
		Code:      CodeOK,
		Message:   "ok",
		Data:      data,
		RequestID: requestID,
		TraceID:   traceID,
	})
}

// Error 写入错误响应。
func Error(w http.ResponseWriter, status, code int, message, requestID, traceID string) {
	ErrorWithData(w, status, code, message, nil, requestID, traceID)
}

// ErrorWithData 写入携带附加数据（如出错字段）的错误响应。
func ErrorWithData(w http.ResponseWriter, status, code int, message string, data any, requestID, traceID string) {
	write(w, status, Envelope{
		Code:      code,
		Message:   message,
		Data:      data,
		RequestID: requestID,
		TraceID:   traceID,
	})
}

// HTTPStatusFromCode 将业务码映射为 HTTP 状态码。
func HTTPStatusFromCode(code int) int {
	switch code {
	case CodeOK:
		return http.StatusOK
	case CodeInvalidParam:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	case CodeUpstreamError:
		return http.StatusBadGateway
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func write(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
