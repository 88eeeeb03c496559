package domain

import (
	"strings"
	"unicode/utf8"
)

// 聊天搜索请求约束
const (
	MaxSearchQueryLength = 500
	SearchFailureMessage = "Something went wrong. Please try again."
)

// SearchRequest POST /search 请求体
type SearchRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id,omitempty"`
}

// Validate 校验查询文本长度（去除首尾空白后 1..500 个字符）
func (r *SearchRequest) Validate() error {
	q := strings.TrimSpace(r.Query)
	if q == "" {
		return NewValidationError("query", "must not be empty")
	}
	if utf8.RuneCountInString(q) > MaxSearchQueryLength {
		return NewValidationError("query", "must be at most %d characters", MaxSearchQueryLength)
	}
	r.Query = q
	return nil
}

// SearchProduct 外部搜索服务返回的商品卡片
type SearchProduct struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Price       string   `json:"price,omitempty"`
	KeyFeatures []string `json:"key_features,omitempty"`
}

// SearchMetadata 搜索结果统计
type SearchMetadata struct {
	TotalResults     int `json:"total_results"`
	RecommendedCount int `json:"recommended_count"`
}

// SearchResponse 外部搜索服务的响应，除 success 外均为可选字段
type SearchResponse struct {
	Success             bool            `json:"success"`
	ResponseText        string          `json:"response_text,omitempty"`
	Products            []SearchProduct `json:"products,omitempty"`
	RecommendedProducts []SearchProduct `json:"recommended_products,omitempty"`
	FollowUpQuestions   []string        `json:"follow_up_questions,omitempty"`
	SessionID           string          `json:"session_id,omitempty"`
	Metadata            *SearchMetadata `json:"metadata,omitempty"`
	ErrorMessage        string          `json:"error_message,omitempty"`
}

// SearchFailure 构造对用户展示的通用失败响应
func SearchFailure(sessionID string) *SearchResponse {
	return &SearchResponse{
		Success:      false,
		ResponseText: SearchFailureMessage,
		SessionID:    sessionID,
		ErrorMessage: SearchFailureMessage,
	}
}
