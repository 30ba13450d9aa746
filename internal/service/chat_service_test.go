package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopmate-backend/internal/config"
	"shopmate-backend/internal/model"
	"shopmate-backend/internal/storage"
)

// fakeRunner 记录收到的输入并返回固定结果
type fakeRunner struct {
	gotHistory []*schema.Message
	gotMessage string
	reply      string
	events     []model.AgentEvent
	err        error
}

func (f *fakeRunner) Run(ctx context.Context, history []*schema.Message, userMessage string) (string, []model.AgentEvent, error) {
	f.gotHistory = history
	f.gotMessage = userMessage
	return f.reply, f.events, f.err
}

func newTestChatService(runner AgentRunner) *ChatService {
	store := storage.NewMemoryStorage()
	store.Init()

	return &ChatService{
		storage: store,
		agent:   runner,
		config: &config.SessionConfig{
			TTL:             24 * time.Hour,
			CleanupInterval: time.Hour,
		},
	}
}

func TestChatCreatesSessionAndPersistsMessages(t *testing.T) {
	runner := &fakeRunner{reply: "The Pixel 8a is a solid choice."}
	svc := newTestChatService(runner)

	resp, err := svc.Chat(context.Background(), "", "recommend a phone")
	require.NoError(t, err)
	require.NotEmpty(t, resp.SessionID)
	assert.Equal(t, "The Pixel 8a is a solid choice.", resp.Reply)
	assert.Equal(t, "recommend a phone", runner.gotMessage)

	messages, err := svc.GetSessionMessages(resp.SessionID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "user", messages[0].Role)
	assert.Equal(t, "assistant", messages[1].Role)

	// 第一条用户消息顶替默认标题
	session, err := svc.GetSession(resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "recommend a phone", session.Title)
}

func TestChatKeepsRequestedSessionID(t *testing.T) {
	svc := newTestChatService(&fakeRunner{reply: "ok"})

	resp, err := svc.Chat(context.Background(), "client-token-1", "hello")
	require.NoError(t, err)
	assert.Equal(t, "client-token-1", resp.SessionID)

	// 第二轮复用同一会话，历史被传给智能体
	runner := &fakeRunner{reply: "again"}
	svc.agent = runner
	resp, err = svc.Chat(context.Background(), "client-token-1", "next question")
	require.NoError(t, err)
	assert.Equal(t, "client-token-1", resp.SessionID)
	require.Len(t, runner.gotHistory, 2)
	assert.Equal(t, "hello", runner.gotHistory[0].Content)
}

func TestChatFallsBackToExtractedReply(t *testing.T) {
	runner := &fakeRunner{
		reply: "",
		events: []model.AgentEvent{
			textEvent("user", "q", false),
			textEvent(agentAuthor, "extracted answer", true),
		},
	}
	svc := newTestChatService(runner)

	resp, err := svc.Chat(context.Background(), "", "q")
	require.NoError(t, err)
	assert.Equal(t, "extracted answer", resp.Reply)
}

func TestChatPropagatesAgentError(t *testing.T) {
	svc := newTestChatService(&fakeRunner{err: errors.New("model generation failed")})

	_, err := svc.Chat(context.Background(), "", "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model generation failed")
}

func TestSessionCRUD(t *testing.T) {
	svc := newTestChatService(&fakeRunner{reply: "ok"})

	session, err := svc.CreateSession("phone hunt")
	require.NoError(t, err)
	assert.Equal(t, "phone hunt", session.Title)

	require.NoError(t, svc.UpdateSessionTitle(session.ID, "flagship hunt"))
	got, err := svc.GetSession(session.ID)
	require.NoError(t, err)
	assert.Equal(t, "flagship hunt", got.Title)

	sessions, err := svc.GetAllSessions()
	require.NoError(t, err)
	assert.Len(t, sessions, 1)

	require.NoError(t, svc.DeleteSession(session.ID))
	_, err = svc.GetSession(session.ID)
	assert.Error(t, err)

	assert.Error(t, svc.DeleteSession("missing"))
}

func TestClearAllSessions(t *testing.T) {
	svc := newTestChatService(&fakeRunner{reply: "ok"})

	for i := 0; i < 3; i++ {
		_, err := svc.CreateSession("")
		require.NoError(t, err)
	}

	require.NoError(t, svc.ClearAllSessions())
	sessions, err := svc.GetAllSessions()
	require.NoError(t, err)
	assert.Empty(t, sessions)
}
