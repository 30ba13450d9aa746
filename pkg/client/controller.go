package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"shopmate-backend/pkg/logger"
)

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

type MessageStatus string

const (
	StatusSending MessageStatus = "sending"
	StatusDone    MessageStatus = "done"
	StatusError   MessageStatus = "error"
)

var (
	// ErrEmptyMessage 输入为空或全空白
	ErrEmptyMessage = errors.New("message cannot be empty")
	// ErrExchangeInFlight 已有一轮对话在进行中
	ErrExchangeInFlight = errors.New("another exchange is already in flight")
)

// ChatMessage 对话视图里的一条消息
type ChatMessage struct {
	ID        string
	Role      MessageRole
	Content   string
	CreatedAt time.Time
	Status    MessageStatus
	Records   []ProductRecord
	Raw       map[string]interface{}
	Err       error
}

// 一轮对话的四种收尾方式，彼此互斥，先到先得
type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeTimeout
	outcomeCancelled
	outcomeFailure
)

// Controller 驱动对话的请求生命周期：同一时刻只允许一轮交换在途，
// 网络结果、超时和主动取消三者赛跑，谁先到谁定结局，迟到的结果丢弃
type Controller struct {
	cfg       Config
	transport *ChatClient
	sessions  *SessionStore

	mu       sync.Mutex
	messages []ChatMessage
	sending  bool
	cancelFn context.CancelFunc
	exchange int
}

func NewController(cfg Config) *Controller {
	cfg = cfg.Normalize()
	return &Controller{
		cfg:       cfg,
		transport: NewChatClient(cfg.BaseURL, cfg.Debug),
		sessions:  NewSessionStore(cfg.SessionPath),
	}
}

type sendResult struct {
	res *ChatResult
	err error
}

// Send 发送一条用户消息并阻塞到本轮交换收尾。
// 返回错误仅代表门禁拒绝（空输入、并发交换），此时对话状态不变；
// 网络失败、超时、取消都记在返回的助手消息上
func (c *Controller) Send(ctx context.Context, text string) (*ChatMessage, error) {
	if !hasText(text) {
		return nil, ErrEmptyMessage
	}

	c.mu.Lock()
	if c.sending {
		c.mu.Unlock()
		return nil, ErrExchangeInFlight
	}
	c.sending = true
	c.exchange++
	seq := c.exchange

	exchCtx, cancel := context.WithCancel(ctx)
	c.cancelFn = cancel

	now := time.Now()
	c.appendLocked(ChatMessage{
		ID:        uuid.New().String(),
		Role:      RoleUser,
		Content:   text,
		CreatedAt: now,
		Status:    StatusDone,
	})
	placeholderID := uuid.New().String()
	c.appendLocked(ChatMessage{
		ID:        placeholderID,
		Role:      RoleAssistant,
		CreatedAt: now,
		Status:    StatusSending,
	})
	c.mu.Unlock()

	token := c.sessions.GetOrCreate()

	resultCh := make(chan sendResult, 1)
	go func() {
		res, err := c.transport.Send(exchCtx, token, text)
		resultCh <- sendResult{res: res, err: err}
	}()

	timer := time.NewTimer(c.cfg.Timeout)
	defer timer.Stop()
	defer cancel()

	select {
	case r := <-resultCh:
		if r.err != nil {
			if exchCtx.Err() == context.Canceled {
				return c.resolve(seq, placeholderID, outcomeCancelled, nil, nil), nil
			}
			return c.resolve(seq, placeholderID, outcomeFailure, nil, r.err), nil
		}
		return c.resolve(seq, placeholderID, outcomeSuccess, r.res, nil), nil

	case <-timer.C:
		cancel()
		return c.resolve(seq, placeholderID, outcomeTimeout, nil, nil), nil

	case <-exchCtx.Done():
		return c.resolve(seq, placeholderID, outcomeCancelled, nil, nil), nil
	}
}

// resolve 为一轮交换记录结局。只有仍在途且序号匹配的交换才会落账,
// 其余调用视为迟到结果直接丢弃
func (c *Controller) resolve(seq int, placeholderID string, o outcome, res *ChatResult, cause error) *ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.exchange || !c.sending {
		logger.Debug("Discarding late exchange result")
		return nil
	}
	c.sending = false
	c.cancelFn = nil

	idx := c.indexOfLocked(placeholderID)
	if idx < 0 {
		// 占位消息被容量裁剪挤掉了，结局无处落账
		return nil
	}
	msg := &c.messages[idx]

	switch o {
	case outcomeSuccess:
		msg.Status = StatusDone
		msg.Content = res.Reply
		msg.Records = ExtractRecords(res.RawResponse)
		msg.Raw = res.RawResponse
		if token := ValidateToken(res.SessionID); token != "" {
			c.sessions.Save(token)
		} else {
			logger.Warnf("Server returned invalid session id %q, keeping previous token", res.SessionID)
		}
	case outcomeTimeout:
		msg.Status = StatusError
		msg.Err = fmt.Errorf("request timed out after %g seconds", c.cfg.Timeout.Seconds())
		msg.Content = msg.Err.Error()
	case outcomeCancelled:
		msg.Status = StatusError
		msg.Err = errors.New("request cancelled")
		msg.Content = msg.Err.Error()
	case outcomeFailure:
		msg.Status = StatusError
		msg.Err = cause
		msg.Content = cause.Error()
	}

	result := *msg
	return &result
}

// NewSession 丢弃当前会话：中止在途交换，清空消息列表和持久化令牌，
// 下一轮交换拿到的是全新令牌
func (c *Controller) NewSession() {
	c.Cancel()

	c.mu.Lock()
	c.messages = nil
	c.mu.Unlock()

	c.sessions.Clear()
}

// Cancel 中止在途交换，空闲时调用无效果
func (c *Controller) Cancel() {
	c.mu.Lock()
	cancel := c.cancelFn
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Close 释放控制器，取消一切在途工作
func (c *Controller) Close() {
	c.Cancel()
}

// Messages 返回当前消息列表的副本
func (c *Controller) Messages() []ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make([]ChatMessage, len(c.messages))
	copy(result, c.messages)
	return result
}

// Sending 是否有交换在途
func (c *Controller) Sending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sending
}

// SessionToken 当前会话令牌
func (c *Controller) SessionToken() string {
	return c.sessions.GetOrCreate()
}

func (c *Controller) appendLocked(msg ChatMessage) {
	c.messages = append(c.messages, msg)
	if over := len(c.messages) - c.cfg.MaxMessages; over > 0 {
		c.messages = append(c.messages[:0], c.messages[over:]...)
	}
}

func (c *Controller) indexOfLocked(id string) int {
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].ID == id {
			return i
		}
	}
	return -1
}

func hasText(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return true
		}
	}
	return false
}
