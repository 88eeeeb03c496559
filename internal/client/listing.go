package client

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"github.com/MorseWayne/catalog_shop/internal/domain"
)

// ErrStaleResponse 响应到达时已有更新的请求发出，该响应被丢弃
var ErrStaleResponse = errors.New("stale listing response")

// ProductLister 列表查询能力，*Client 实现该接口
type ProductLister interface {
	ListProducts(ctx context.Context, q url.Values) (*domain.PagedResult, error)
}

// ListingSession 持有当前控件状态与请求代次。
// 每次 Fetch 递增代次；只有最新代次的响应会被采纳，迟到的旧响应返回 ErrStaleResponse。
type ListingSession struct {
	lister ProductLister

	mu         sync.Mutex
	state      FilterState
	generation uint64
	result     *domain.PagedResult
}

// NewListingSession 创建列表会话
func NewListingSession(lister ProductLister, initial FilterState) *ListingSession {
	return &ListingSession{lister: lister, state: initial}
}

// State 当前控件状态
func (s *ListingSession) State() FilterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Result 最近一次被采纳的结果
func (s *ListingSession) Result() *domain.PagedResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Fetch 以 state 发起查询并成为当前状态
func (s *ListingSession) Fetch(ctx context.Context, state FilterState) (*domain.PagedResult, error) {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.state = state
	s.mu.Unlock()

	result, err := s.lister.ListProducts(ctx, Encode(state))

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return nil, ErrStaleResponse
	}
	if err != nil {
		return nil, err
	}
	s.result = result
	return result, nil
}

// Refresh 以当前状态重新查询
func (s *ListingSession) Refresh(ctx context.Context) (*domain.PagedResult, error) {
	return s.Fetch(ctx, s.State())
}

// Apply 在当前状态上应用修改并查询
func (s *ListingSession) Apply(ctx context.Context, change func(FilterState) FilterState) (*domain.PagedResult, error) {
	return s.Fetch(ctx, change(s.State()))
}

// Clear 清空控件并查询
func (s *ListingSession) Clear(ctx context.Context) (*domain.PagedResult, error) {
	return s.Apply(ctx, FilterState.Clear)
}

// NextPage 翻到下一页；已在最后一页时返回当前结果
func (s *ListingSession) NextPage(ctx context.Context) (*domain.PagedResult, error) {
	s.mu.Lock()
	result, state := s.result, s.state
	s.mu.Unlock()

	page := max(state.Page, 1)
	if result != nil && page >= result.TotalPages() {
		return result, nil
	}
	return s.Fetch(ctx, state.WithPage(page+1))
}

// PrevPage 翻到上一页；已在第一页时返回当前结果
func (s *ListingSession) PrevPage(ctx context.Context) (*domain.PagedResult, error) {
	s.mu.Lock()
	result, state := s.result, s.state
	s.mu.Unlock()

	page := max(state.Page, 1)
	if page <= 1 {
		return result, nil
	}
	return s.Fetch(ctx, state.WithPage(page-1))
}
