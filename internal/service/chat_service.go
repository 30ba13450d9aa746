package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"shopmate-backend/internal/config"
	"shopmate-backend/internal/model"
	"shopmate-backend/internal/storage"
	"shopmate-backend/pkg/logger"
)

// AgentRunner 智能体运行接口，测试时注入假实现
type AgentRunner interface {
	Run(ctx context.Context, history []*schema.Message, userMessage string) (string, []model.AgentEvent, error)
}

type ChatService struct {
	storage storage.Storage
	agent   AgentRunner
	config  *config.SessionConfig
}

func NewChatService(cfg *config.Config, agent AgentRunner) *ChatService {
	var store storage.Storage

	if cfg.Storage.Type == "disk" {
		store = storage.NewDiskStorage(cfg.Storage.DataDir, cfg.Storage.CacheSize)
	} else {
		store = storage.NewMemoryStorage()
	}

	if err := store.Init(); err != nil {
		logger.Errorf("Failed to initialize storage: %v", err)
		store = storage.NewMemoryStorage()
		store.Init()
	}

	cs := &ChatService{
		storage: store,
		agent:   agent,
		config:  &cfg.Session,
	}

	go cs.cleanupOldSessions()

	return cs
}

// Chat 执行一轮对话：确保会话存在、落库用户消息、运行智能体、落库回复
func (s *ChatService) Chat(ctx context.Context, sessionID, message string) (*model.ChatResponse, error) {
	session, err := s.EnsureSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure session: %w", err)
	}

	maxHistory := 20
	if cfg := config.Get(); cfg != nil && cfg.Agent.MaxHistory > 0 {
		maxHistory = cfg.Agent.MaxHistory
	}

	stored, err := s.storage.GetMessages(session.ID)
	if err != nil && err != storage.ErrSessionNotFound {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	history := historyFromMessages(stored, maxHistory)

	if _, err := s.AddMessage(session.ID, "user", message); err != nil {
		return nil, err
	}

	reply, events, err := s.agent.Run(ctx, history, message)
	if err != nil {
		return nil, err
	}

	if reply == "" {
		reply = ExtractReply(events)
	}

	if _, err := s.AddMessage(session.ID, "assistant", reply); err != nil {
		logger.Errorf("Failed to persist assistant reply: %v", err)
	}

	return &model.ChatResponse{
		SessionID: session.ID,
		Reply:     reply,
		RawResponse: map[string]interface{}{
			"events": events,
		},
	}, nil
}

// EnsureSession 已知会话直接复用，未知或为空则按需创建；
// 请求带了 ID 但查不到时沿用该 ID 新建，客户端令牌保持稳定
func (s *ChatService) EnsureSession(sessionID string) (*model.Session, error) {
	if sessionID != "" {
		session, err := s.storage.GetSession(sessionID)
		if err == nil {
			return session, nil
		}
		if err != storage.ErrSessionNotFound {
			return nil, fmt.Errorf("failed to get session: %w", err)
		}
	}

	id := sessionID
	if id == "" {
		id = uuid.New().String()
	}

	session := &model.Session{
		ID:        id,
		Title:     "新对话 " + time.Now().Format("2006-01-02 15:04"),
		Messages:  make([]model.Message, 0),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.storage.CreateSession(session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

func (s *ChatService) CreateSession(title string) (*model.Session, error) {
	if title == "" {
		title = "新对话 " + time.Now().Format("2006-01-02 15:04")
	}

	session := &model.Session{
		ID:        uuid.New().String(),
		Title:     title,
		Messages:  make([]model.Message, 0),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.storage.CreateSession(session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

func (s *ChatService) GetSession(sessionID string) (*model.Session, error) {
	session, err := s.storage.GetSession(sessionID)
	if err != nil {
		if err == storage.ErrSessionNotFound {
			return nil, fmt.Errorf("session not found: %s", sessionID)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

func (s *ChatService) GetSessionMessages(sessionID string) ([]model.Message, error) {
	messages, err := s.storage.GetMessages(sessionID)
	if err != nil {
		if err == storage.ErrSessionNotFound {
			return nil, fmt.Errorf("session not found: %s", sessionID)
		}
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}

	result := make([]model.Message, len(messages))
	for i, msg := range messages {
		result[i] = *msg
	}

	return result, nil
}

func (s *ChatService) AddMessage(sessionID, role, content string) (*model.Message, error) {
	session, err := s.storage.GetSession(sessionID)
	if err != nil {
		if err == storage.ErrSessionNotFound {
			return nil, fmt.Errorf("session not found: %s", sessionID)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	message := &model.Message{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}

	if err := s.storage.AddMessage(sessionID, message); err != nil {
		return nil, fmt.Errorf("failed to add message: %w", err)
	}

	// 第一条用户消息顶替默认标题
	messages, _ := s.storage.GetMessages(sessionID)
	if role == "user" && len(messages) == 1 && strings.HasPrefix(session.Title, "新对话") {
		session.Title = s.truncateString(content, 30)
		session.UpdatedAt = time.Now()
		s.storage.UpdateSession(session)
	}

	return message, nil
}

func (s *ChatService) UpdateSessionTitle(sessionID, title string) error {
	session, err := s.storage.GetSession(sessionID)
	if err != nil {
		if err == storage.ErrSessionNotFound {
			return fmt.Errorf("session not found: %s", sessionID)
		}
		return fmt.Errorf("failed to get session: %w", err)
	}

	session.Title = title
	session.UpdatedAt = time.Now()

	if err := s.storage.UpdateSession(session); err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	return nil
}

func (s *ChatService) GetAllSessions() ([]*model.Session, error) {
	sessions, err := s.storage.ListSessions()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	return sessions, nil
}

func (s *ChatService) DeleteSession(sessionID string) error {
	if err := s.storage.DeleteSession(sessionID); err != nil {
		if err == storage.ErrSessionNotFound {
			return fmt.Errorf("session not found: %s", sessionID)
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

func (s *ChatService) ClearAllSessions() error {
	sessions, err := s.storage.ListSessions()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	for _, session := range sessions {
		if err := s.storage.DeleteSession(session.ID); err != nil {
			logger.Errorf("Failed to delete session %s: %v", session.ID, err)
		}
	}

	return nil
}

func (s *ChatService) cleanupOldSessions() {
	ticker := time.NewTicker(s.config.CleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		sessions, err := s.storage.ListSessions()
		if err != nil {
			logger.Errorf("Failed to list sessions for cleanup: %v", err)
			continue
		}

		cutoff := time.Now().Add(-s.config.TTL)
		for _, session := range sessions {
			if session.UpdatedAt.Before(cutoff) {
				if err := s.storage.DeleteSession(session.ID); err != nil {
					logger.Errorf("Failed to delete expired session %s: %v", session.ID, err)
				} else {
					logger.Infof("Cleaned up expired session: %s", session.ID)
				}
			}
		}
	}
}

func (s *ChatService) truncateString(str string, maxLen int) string {
	runes := []rune(str)
	if len(runes) <= maxLen {
		return str
	}
	return string(runes[:maxLen]) + "..."
}

// GetStorage 返回存储实例，用于其他服务共享
func (s *ChatService) GetStorage() storage.Storage {
	return s.storage
}
