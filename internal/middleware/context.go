// Package middleware 提供 HTTP 中间件：请求 ID、恢复、超时、CORS、访问日志等。
// 中间件均为 func(http.Handler) http.Handler，由 Chain 按声明顺序组装。
package middleware

import (
	"context"
	"net/http"
)

// contextKey 用于在上下文中存取特定键，避免与外部键冲突。
type contextKey string

// 约定的上下文键集合。
const (
	contextKeyRequestID contextKey = "request_id"
)

// Middleware 标准库风格的中间件
type Middleware func(http.Handler) http.Handler

// Chain 按参数顺序包装 handler，第一个中间件位于最外层。
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// withRequestID 将请求 ID 写入上下文。
func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, id)
}

// RequestIDFromContext 从上下文中读取请求 ID（可能为空）。
func RequestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(contextKeyRequestID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
