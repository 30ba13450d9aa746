package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"shopmate-backend/internal/catalog"
	"shopmate-backend/internal/config"
	"shopmate-backend/internal/model"
	"shopmate-backend/internal/tools"
	"shopmate-backend/pkg/logger"
)

// agentAuthor 事件作者名，前端据此区分用户消息和智能体消息
const agentAuthor = "mobile_shopping_agent"

const defaultSystemPrompt = `You are a friendly and knowledgeable mobile phone shopping assistant.
Help customers find the right phone by searching the catalogue, explaining
specifications, and comparing models. Always use the provided tools to look up
real data instead of guessing. Prices are in Indian rupees.`

// AgentService 运行工具调用循环：模型生成、执行工具、回填结果，直到产出最终回复
type AgentService struct {
	toolset   []tool.BaseTool
	toolInfos []*schema.ToolInfo
	invokable map[string]tool.InvokableTool
	chatModel einoModel.ChatModel
	logDebug  bool
}

// NewAgentService 在手机目录上注册工具并初始化对话模型
func NewAgentService(ctx context.Context, cat *catalog.Catalog) (*AgentService, error) {
	toolset := tools.Registry(cat)

	toolInfos, err := tools.Infos(ctx, toolset)
	if err != nil {
		return nil, fmt.Errorf("failed to collect tool infos: %w", err)
	}

	invokable := make(map[string]tool.InvokableTool, len(toolset))
	for i, t := range toolset {
		inv, ok := t.(tool.InvokableTool)
		if !ok {
			return nil, fmt.Errorf("tool %s is not invokable", toolInfos[i].Name)
		}
		invokable[toolInfos[i].Name] = inv
	}

	chatModel, err := model.NewAgentModel(ctx, toolInfos)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	logDebug := false
	if cfg := config.Get(); cfg != nil {
		logDebug = cfg.Agent.LogDebug
	}

	return &AgentService{
		toolset:   toolset,
		toolInfos: toolInfos,
		invokable: invokable,
		chatModel: chatModel,
		logDebug:  logDebug,
	}, nil
}

// Run 执行一轮对话，返回回复文本和完整事件列表
func (s *AgentService) Run(ctx context.Context, history []*schema.Message, userMessage string) (string, []model.AgentEvent, error) {
	cfg := config.Get()

	maxRounds := 6
	systemPrompt := defaultSystemPrompt
	if cfg != nil {
		if cfg.Agent.MaxToolRounds > 0 {
			maxRounds = cfg.Agent.MaxToolRounds
		}
		if cfg.Agent.SystemPrompt != "" {
			systemPrompt = cfg.Agent.SystemPrompt
		}
	}

	messages := make([]*schema.Message, 0, len(history)+2)
	messages = append(messages, schema.SystemMessage(systemPrompt))
	messages = append(messages, history...)
	messages = append(messages, schema.UserMessage(userMessage))

	events := []model.AgentEvent{newUserEvent(userMessage)}

	for round := 0; round < maxRounds; round++ {
		resp, err := s.chatModel.Generate(ctx, messages)
		if err != nil {
			return "", events, fmt.Errorf("model generation failed: %w", err)
		}

		if s.logDebug {
			logger.Debugf("Model response (round %d): %d tool call(s), content %q", round, len(resp.ToolCalls), resp.Content)
		}

		if len(resp.ToolCalls) == 0 {
			events = append(events, newFinalEvent(resp.Content))
			return resp.Content, events, nil
		}

		events = append(events, newToolCallEvent(resp))
		messages = append(messages, resp)

		for _, call := range resp.ToolCalls {
			result := s.runTool(ctx, call)

			events = append(events, newToolResponseEvent(call.Function.Name, result))
			messages = append(messages, &schema.Message{
				Role:       schema.Tool,
				Content:    result,
				ToolCallID: call.ID,
				Name:       call.Function.Name,
			})
		}
	}

	return "", events, fmt.Errorf("agent exceeded %d tool rounds without a final response", maxRounds)
}

// runTool 执行单个工具调用，失败时返回 success:false 负载而非中断整轮对话
func (s *AgentService) runTool(ctx context.Context, call schema.ToolCall) string {
	name := call.Function.Name

	inv, ok := s.invokable[name]
	if !ok {
		logger.Warnf("Model requested unknown tool: %s", name)
		payload, _ := json.Marshal(map[string]interface{}{
			"success": false,
			"error":   fmt.Sprintf("unknown tool: %s", name),
		})
		return string(payload)
	}

	logger.Infof("Invoking tool %s with args: %s", name, call.Function.Arguments)

	result, err := inv.InvokableRun(ctx, call.Function.Arguments)
	if err != nil {
		logger.Errorf("Tool %s failed: %v", name, err)
		payload, _ := json.Marshal(map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
		return string(payload)
	}

	if s.logDebug {
		logger.Debugf("Tool %s returned: %s", name, result)
	}

	return result
}

func newUserEvent(text string) model.AgentEvent {
	return model.AgentEvent{
		ID:     uuid.New().String(),
		Author: "user",
		Content: &model.EventContent{
			Role:  "user",
			Parts: []model.EventPart{{Text: text}},
		},
		Timestamp: time.Now().Unix(),
	}
}

func newFinalEvent(text string) model.AgentEvent {
	return model.AgentEvent{
		ID:     uuid.New().String(),
		Author: agentAuthor,
		Content: &model.EventContent{
			Role:  "model",
			Parts: []model.EventPart{{Text: text}},
		},
		IsFinalResponse: true,
		Timestamp:       time.Now().Unix(),
	}
}

func newToolCallEvent(msg *schema.Message) model.AgentEvent {
	parts := make([]model.EventPart, 0, len(msg.ToolCalls)+1)
	if msg.Content != "" {
		parts = append(parts, model.EventPart{Text: msg.Content})
	}
	for _, call := range msg.ToolCalls {
		args := map[string]interface{}{}
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			logger.Warnf("Failed to parse tool call arguments for %s: %v", call.Function.Name, err)
		}
		parts = append(parts, model.EventPart{
			FunctionCall: &model.FunctionCall{
				Name: call.Function.Name,
				Args: args,
			},
		})
	}

	return model.AgentEvent{
		ID:     uuid.New().String(),
		Author: agentAuthor,
		Content: &model.EventContent{
			Role:  "model",
			Parts: parts,
		},
		Timestamp: time.Now().Unix(),
	}
}

// newToolResponseEvent 把工具返回的 JSON 原样挂进 function_response，
// 前端记录抽取直接遍历这里的负载
func newToolResponseEvent(name, result string) model.AgentEvent {
	response := map[string]interface{}{}
	if err := json.Unmarshal([]byte(result), &response); err != nil {
		response = map[string]interface{}{"output": result}
	}

	return model.AgentEvent{
		ID:     uuid.New().String(),
		Author: agentAuthor,
		Content: &model.EventContent{
			Role:  "user",
			Parts: []model.EventPart{{
				FunctionResponse: &model.FunctionResponse{
					Name:     name,
					Response: response,
				},
			}},
		},
		Timestamp: time.Now().Unix(),
	}
}

// ExtractReply 从事件列表提取回复文本：倒序找最终回复事件，
// 找不到再倒序找最后一条非用户文本
func ExtractReply(events []model.AgentEvent) string {
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		if e.IsFinalResponse && e.Content != nil {
			if text := firstText(e.Content.Parts); text != "" {
				return text
			}
		}
	}
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		if e.Author != "user" && e.Content != nil {
			if text := firstText(e.Content.Parts); text != "" {
				return text
			}
		}
	}
	return ""
}

func firstText(parts []model.EventPart) string {
	for _, p := range parts {
		if p.Text != "" {
			return p.Text
		}
	}
	return ""
}

// historyFromMessages 把存储的消息转换为模型输入格式
func historyFromMessages(messages []*model.Message, maxMessages int) []*schema.Message {
	startIdx := 0
	if maxMessages > 0 && len(messages) > maxMessages {
		startIdx = len(messages) - maxMessages
	}
	recent := messages[startIdx:]

	result := make([]*schema.Message, 0, len(recent))
	for _, msg := range recent {
		role := schema.User
		if msg.Role == "assistant" {
			role = schema.Assistant
		}
		result = append(result, &schema.Message{
			Role:    role,
			Content: msg.Content,
		})
	}
	return result
}
