package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/MorseWayne/catalog_shop/internal/domain"
)

// maxSearchResponseBytes 上游响应体读取上限
const maxSearchResponseBytes = 1 << 20

// SearchService 将聊天消息转发给外部搜索/推荐服务
type SearchService interface {
	// Search 校验失败返回 *domain.ValidationError；上游任何失败都折叠为 Success=false 的响应而非错误
	Search(ctx context.Context, req *domain.SearchRequest) (*domain.SearchResponse, error)
}

// SearchServiceConfig 搜索转发配置
type SearchServiceConfig struct {
	URL     string
	Timeout time.Duration
}

type searchService struct {
	config *SearchServiceConfig
	client *http.Client
	logger *zap.Logger
}

// NewSearchService 创建搜索转发服务；client 为 nil 时使用按超时配置的默认客户端
func NewSearchService(config *SearchServiceConfig, client *http.Client, logger *zap.Logger) SearchService {
	if client == nil {
		client = &http.Client{Timeout: config.Timeout}
	}
	return &searchService{
		config: config,
		client: client,
		logger: logger,
	}
}

// Search 单次请求上游，不重试
func (s *searchService) Search(ctx context.Context, req *domain.SearchRequest) (*domain.SearchResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if s.config.URL == "" {
		s.logger.Error("search upstream not configured", zap.String("session_id", req.SessionID))
		return domain.SearchFailure(req.SessionID), nil
	}

	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := s.relay(ctx, req)
	if err != nil {
		s.logger.Error("search relay failed",
			zap.String("session_id", req.SessionID),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return domain.SearchFailure(req.SessionID), nil
	}

	if result.SessionID == "" {
		result.SessionID = req.SessionID
	}
	s.logger.Info("search relayed",
		zap.String("session_id", result.SessionID),
		zap.Bool("success", result.Success),
		zap.Int("products", len(result.Products)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

func (s *searchService) relay(ctx context.Context, req *domain.SearchRequest) (*domain.SearchResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode search request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	httpResp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("search upstream unreachable: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(httpResp.Body, maxSearchResponseBytes))
		return nil, fmt.Errorf("search upstream returned status %d", httpResp.StatusCode)
	}

	var result domain.SearchResponse
	if err := json.NewDecoder(io.LimitReader(httpResp.Body, maxSearchResponseBytes)).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	return &result, nil
}
