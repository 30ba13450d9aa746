package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"shopmate-backend/internal/config"
	"shopmate-backend/internal/model"
	"shopmate-backend/internal/service"
	"shopmate-backend/pkg/logger"
)

// ChatExecutor 对话执行接口，测试时注入假实现
type ChatExecutor interface {
	Chat(ctx context.Context, sessionID, message string) (*model.ChatResponse, error)
	CreateSession(title string) (*model.Session, error)
	GetSession(sessionID string) (*model.Session, error)
	GetSessionMessages(sessionID string) ([]model.Message, error)
	GetAllSessions() ([]*model.Session, error)
	DeleteSession(sessionID string) error
	ClearAllSessions() error
	UpdateSessionTitle(sessionID, title string) error
}

var _ ChatExecutor = (*service.ChatService)(nil)

type ChatHandler struct {
	chatService ChatExecutor
}

func NewChatHandler(chatService ChatExecutor) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

// Chat 处理一轮对话请求
func (h *ChatHandler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message cannot be empty"})
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message cannot be empty"})
		return
	}

	timeout := 60 * time.Second
	if cfg := config.Get(); cfg != nil && cfg.Agent.RunTimeout > 0 {
		timeout = cfg.Agent.RunTimeout
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	resp, err := h.chatService.Chat(ctx, req.SessionID, req.Message)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			logger.Warnf("Agent run timed out for session %s", req.SessionID)
			c.JSON(http.StatusGatewayTimeout, gin.H{"error": "agent run timed out"})
			return
		}
		logger.Errorf("Chat failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ChatHandler) CreateSession(c *gin.Context) {
	var req model.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req.Title = ""
	}

	session, err := h.chatService.CreateSession(req.Title)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, session)
}

func (h *ChatHandler) GetSession(c *gin.Context) {
	sessionID := c.Param("session_id")

	session, err := h.chatService.GetSession(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, model.SessionResponse{
		SessionID:    session.ID,
		Title:        session.Title,
		CreatedAt:    session.CreatedAt,
		UpdatedAt:    session.UpdatedAt,
		MessageCount: len(session.Messages),
	})
}

func (h *ChatHandler) GetMessages(c *gin.Context) {
	sessionID := c.Param("session_id")

	messages, err := h.chatService.GetSessionMessages(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"messages":   messages,
	})
}

func (h *ChatHandler) GetSessionList(c *gin.Context) {
	sessions, err := h.chatService.GetAllSessions()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
	})
}

func (h *ChatHandler) DeleteSession(c *gin.Context) {
	sessionID := c.Param("session_id")

	if err := h.chatService.DeleteSession(sessionID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Session deleted successfully"})
}

func (h *ChatHandler) ClearAllSessions(c *gin.Context) {
	if err := h.chatService.ClearAllSessions(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "All sessions cleared successfully"})
}

func (h *ChatHandler) UpdateSessionTitle(c *gin.Context) {
	sessionID := c.Param("session_id")

	var req struct {
		Title string `json:"title" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.chatService.UpdateSessionTitle(sessionID, req.Title); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Title updated successfully"})
}
