package client

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/MorseWayne/catalog_shop/internal/domain"
)

// ErrChatBusy 上一条消息尚未返回时再次发送
var ErrChatBusy = errors.New("chat is busy with a previous message")

// Searcher 聊天搜索能力，*Client 实现该接口
type Searcher interface {
	Search(ctx context.Context, req *domain.SearchRequest) (*domain.SearchResponse, error)
}

// Role 对话角色
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message 对话记录中的一条消息
type Message struct {
	Role     Role
	Text     string
	Response *domain.SearchResponse // 仅助手消息携带
}

// ChatSession 聊天侧栏的会话：维护可见的对话记录与会话 ID。
// 每条消息只请求一次，不重试；忙碌标记保证同一时刻只有一条消息在途。
type ChatSession struct {
	searcher Searcher
	busy     atomic.Bool

	mu         sync.Mutex
	sessionID  string
	transcript []Message
}

// NewChatSession 创建会话并生成会话 ID
func NewChatSession(searcher Searcher) *ChatSession {
	return &ChatSession{searcher: searcher, sessionID: uuid.NewString()}
}

// SessionID 会话 ID
func (c *ChatSession) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Busy 是否有消息在途
func (c *ChatSession) Busy() bool {
	return c.busy.Load()
}

// Transcript 对话记录副本
func (c *ChatSession) Transcript() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.transcript))
	copy(out, c.transcript)
	return out
}

// Send 发送一条消息。空消息直接忽略；传输失败时以通用失败提示作为助手回复记入对话。
func (c *ChatSession) Send(ctx context.Context, text string) (*domain.SearchResponse, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.NewValidationError("query", "must not be empty")
	}
	if !c.busy.CompareAndSwap(false, true) {
		return nil, ErrChatBusy
	}
	defer c.busy.Store(false)

	c.append(Message{Role: RoleUser, Text: text})
	sessionID := c.SessionID()

	result, err := c.searcher.Search(ctx, &domain.SearchRequest{Query: text, SessionID: sessionID})
	if err != nil {
		result = domain.SearchFailure(sessionID)
	}
	// 上游可能分配新的会话 ID，后续消息沿用
	if result.SessionID != "" && result.SessionID != sessionID {
		c.mu.Lock()
		c.sessionID = result.SessionID
		c.mu.Unlock()
	}

	reply := result.ResponseText
	if !result.Success && reply == "" {
		reply = domain.SearchFailureMessage
	}
	c.append(Message{Role: RoleAssistant, Text: reply, Response: result})
	return result, err
}

func (c *ChatSession) append(m Message) {
	c.mu.Lock()
	c.transcript = append(c.transcript, m)
	c.mu.Unlock()
}
