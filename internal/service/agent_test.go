package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"

	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopmate-backend/internal/catalog"
	"shopmate-backend/internal/model"
	"shopmate-backend/internal/tools"
	"shopmate-backend/pkg/logger"
)

// scriptedChatModel 按脚本依次吐出应答，替代真实模型
type scriptedChatModel struct {
	responses []*schema.Message
	calls     int
}

func (m *scriptedChatModel) Generate(ctx context.Context, messages []*schema.Message, opts ...einoModel.Option) (*schema.Message, error) {
	if m.calls >= len(m.responses) {
		return nil, errors.New("no scripted response left")
	}
	resp := m.responses[m.calls]
	m.calls++
	return resp, nil
}

func (m *scriptedChatModel) Stream(ctx context.Context, messages []*schema.Message, opts ...einoModel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

func (m *scriptedChatModel) BindTools(ts []*schema.ToolInfo) error {
	return nil
}

func newTestAgent(t *testing.T, chatModel einoModel.ChatModel) *AgentService {
	t.Helper()

	cat, err := catalog.Load("")
	require.NoError(t, err)

	toolset := tools.Registry(cat)
	toolInfos, err := tools.Infos(context.Background(), toolset)
	require.NoError(t, err)

	invokable := make(map[string]tool.InvokableTool, len(toolset))
	for i, tl := range toolset {
		invokable[toolInfos[i].Name] = tl.(tool.InvokableTool)
	}

	return &AgentService{
		toolset:   toolset,
		toolInfos: toolInfos,
		invokable: invokable,
		chatModel: chatModel,
	}
}

func toolCallMessage(name, args string) *schema.Message {
	return &schema.Message{
		Role: schema.Assistant,
		ToolCalls: []schema.ToolCall{{
			ID:   "call-1",
			Type: "function",
			Function: schema.FunctionCall{
				Name:      name,
				Arguments: args,
			},
		}},
	}
}

func TestAgentRunDirectReply(t *testing.T) {
	agent := newTestAgent(t, &scriptedChatModel{responses: []*schema.Message{
		{Role: schema.Assistant, Content: "Happy to help with phones!"},
	}})

	reply, events, err := agent.Run(context.Background(), nil, "hello")
	require.NoError(t, err)
	assert.Equal(t, "Happy to help with phones!", reply)

	// 用户事件 + 最终回复事件
	require.Len(t, events, 2)
	assert.Equal(t, "user", events[0].Author)
	assert.True(t, events[1].IsFinalResponse)
}

func TestAgentRunWithToolCall(t *testing.T) {
	agent := newTestAgent(t, &scriptedChatModel{responses: []*schema.Message{
		toolCallMessage("get_phone_details", `{"phone_id": "pixel-8a"}`),
		{Role: schema.Assistant, Content: "The Pixel 8a costs ₹29,999."},
	}})

	reply, events, err := agent.Run(context.Background(), nil, "tell me about the pixel 8a")
	require.NoError(t, err)
	assert.Equal(t, "The Pixel 8a costs ₹29,999.", reply)

	// 用户、工具调用、工具结果、最终回复
	require.Len(t, events, 4)

	callEvent := events[1]
	require.NotNil(t, callEvent.Content)
	require.NotNil(t, callEvent.Content.Parts[0].FunctionCall)
	assert.Equal(t, "get_phone_details", callEvent.Content.Parts[0].FunctionCall.Name)

	respEvent := events[2]
	require.NotNil(t, respEvent.Content.Parts[0].FunctionResponse)
	response := respEvent.Content.Parts[0].FunctionResponse.Response
	assert.Equal(t, true, response["success"])
	phone := response["phone"].(map[string]interface{})
	assert.Equal(t, "Google Pixel 8a", phone["model"])
}

func TestAgentRunUnknownToolRecovers(t *testing.T) {
	agent := newTestAgent(t, &scriptedChatModel{responses: []*schema.Message{
		toolCallMessage("teleport_phone", `{}`),
		{Role: schema.Assistant, Content: "Sorry, I could not do that."},
	}})

	reply, events, err := agent.Run(context.Background(), nil, "teleport me a phone")
	require.NoError(t, err)
	assert.Equal(t, "Sorry, I could not do that.", reply)

	respEvent := events[2]
	response := respEvent.Content.Parts[0].FunctionResponse.Response
	assert.Equal(t, false, response["success"])
}

func TestAgentRunDebugLogging(t *testing.T) {
	agent := newTestAgent(t, &scriptedChatModel{responses: []*schema.Message{
		toolCallMessage("list_all_phones", `{}`),
		{Role: schema.Assistant, Content: "done"},
	}})
	agent.logDebug = true

	require.NoError(t, logger.Init("debug", "text"))
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(os.Stdout) })

	_, _, err := agent.Run(context.Background(), nil, "show everything")
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "Model response (round 0)")
	assert.Contains(t, buf.String(), "Tool list_all_phones returned")
}

func TestAgentRunExhaustsRounds(t *testing.T) {
	// 永远只发工具调用，耗尽轮次后应报错
	responses := make([]*schema.Message, 0, 8)
	for i := 0; i < 8; i++ {
		responses = append(responses, toolCallMessage("list_all_phones", `{}`))
	}
	agent := newTestAgent(t, &scriptedChatModel{responses: responses})

	_, events, err := agent.Run(context.Background(), nil, "loop forever")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tool rounds without a final response")
	assert.NotEmpty(t, events)
}

func textEvent(author, text string, final bool) model.AgentEvent {
	return model.AgentEvent{
		Author:          author,
		IsFinalResponse: final,
		Content: &model.EventContent{
			Parts: []model.EventPart{{Text: text}},
		},
	}
}

func TestExtractReplyPrefersFinalResponse(t *testing.T) {
	events := []model.AgentEvent{
		textEvent("user", "question", false),
		textEvent(agentAuthor, "thinking out loud", false),
		textEvent(agentAuthor, "the real answer", true),
	}
	assert.Equal(t, "the real answer", ExtractReply(events))
}

func TestExtractReplyFallsBackToLastAgentText(t *testing.T) {
	events := []model.AgentEvent{
		textEvent("user", "question", false),
		textEvent(agentAuthor, "first attempt", false),
		textEvent(agentAuthor, "latest text", false),
	}
	assert.Equal(t, "latest text", ExtractReply(events))
}

func TestExtractReplyIgnoresUserText(t *testing.T) {
	events := []model.AgentEvent{
		textEvent("user", "only user text", false),
	}
	assert.Equal(t, "", ExtractReply(events))
}

func TestExtractReplySkipsEmptyFinal(t *testing.T) {
	events := []model.AgentEvent{
		textEvent(agentAuthor, "useful text", false),
		textEvent(agentAuthor, "", true),
	}
	assert.Equal(t, "useful text", ExtractReply(events))
}

func TestHistoryFromMessages(t *testing.T) {
	msgs := []*model.Message{
		{Role: "user", Content: "one"},
		{Role: "assistant", Content: "two"},
		{Role: "user", Content: "three"},
		{Role: "assistant", Content: "four"},
	}

	history := historyFromMessages(msgs, 2)
	require.Len(t, history, 2)
	assert.Equal(t, schema.User, history[0].Role)
	assert.Equal(t, "three", history[0].Content)
	assert.Equal(t, schema.Assistant, history[1].Role)
	assert.Equal(t, "four", history[1].Content)

	// 0 表示不限制
	assert.Len(t, historyFromMessages(msgs, 0), 4)
}

func TestToolResponseEventWrapsNonJSON(t *testing.T) {
	event := newToolResponseEvent("some_tool", "plain text output")
	response := event.Content.Parts[0].FunctionResponse.Response
	assert.Equal(t, "plain text output", response["output"])

	raw, err := json.Marshal(event)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "function_response")
}
