package model

import (
	"context"
	"fmt"
	"io"

	"shopmate-backend/internal/config"

	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	openai "github.com/sashabaranov/go-openai"
)

// openaiChatModel 兼容 OpenAI 接口的模型适配器（自建网关、代理均可走此路径）
type openaiChatModel struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	tools       []openai.Tool
}

func newOpenAIChatModel(ctx context.Context, cfg config.OpenAIConfig) (*openaiChatModel, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &openaiChatModel{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

// 实现eino.ChatModel接口
func (m *openaiChatModel) Generate(ctx context.Context, messages []*schema.Message, opts ...einoModel.Option) (*schema.Message, error) {
	req := openai.ChatCompletionRequest{
		Model:       m.model,
		Messages:    m.convertMessages(messages),
		Temperature: m.temperature,
		Tools:       m.tools,
	}
	if m.maxTokens > 0 {
		req.MaxTokens = m.maxTokens
	}

	resp, err := m.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from model")
	}

	choice := resp.Choices[0].Message
	out := &schema.Message{
		Role:    schema.Assistant,
		Content: choice.Content,
	}
	for _, tc := range choice.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, schema.ToolCall{
			ID:   tc.ID,
			Type: string(tc.Type),
			Function: schema.FunctionCall{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			},
		})
	}

	return out, nil
}

func (m *openaiChatModel) Stream(ctx context.Context, messages []*schema.Message, opts ...einoModel.Option) (*schema.StreamReader[*schema.Message], error) {
	stream, err := m.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:    m.model,
		Messages: m.convertMessages(messages),
		Stream:   true,
	})
	if err != nil {
		return nil, err
	}

	reader, writer := schema.Pipe[*schema.Message](100)

	go func() {
		defer writer.Close()
		defer stream.Close()

		for {
			response, err := stream.Recv()
			if err != nil {
				if err == io.EOF {
					return
				}
				writer.Send(nil, err)
				return
			}

			if len(response.Choices) > 0 && response.Choices[0].Delta.Content != "" {
				writer.Send(&schema.Message{
					Role:    schema.Assistant,
					Content: response.Choices[0].Delta.Content,
				}, nil)
			}
		}
	}()

	return reader, nil
}

func (m *openaiChatModel) BindTools(tools []*schema.ToolInfo) error {
	converted := make([]openai.Tool, 0, len(tools))
	for _, info := range tools {
		def := &openai.FunctionDefinition{
			Name:        info.Name,
			Description: info.Desc,
		}

		if info.ParamsOneOf != nil {
			openAPISchema, err := info.ParamsOneOf.ToOpenAPIV3()
			if err != nil {
				return fmt.Errorf("failed to convert params for tool %s: %w", info.Name, err)
			}
			def.Parameters = openAPISchema
		}

		converted = append(converted, openai.Tool{
			Type:     openai.ToolTypeFunction,
			Function: def,
		})
	}

	m.tools = converted
	return nil
}

// 消息格式转换
func (m *openaiChatModel) convertMessages(messages []*schema.Message) []openai.ChatCompletionMessage {
	var result []openai.ChatCompletionMessage
	for _, msg := range messages {
		role := "user"
		switch msg.Role {
		case schema.Assistant:
			role = "assistant"
		case schema.System:
			role = "system"
		case schema.Tool:
			role = "tool"
		}

		// 跳过空的assistant消息，避免上游接口报错
		if role == "assistant" && msg.Content == "" && len(msg.ToolCalls) == 0 {
			continue
		}

		converted := openai.ChatCompletionMessage{
			Role:       role,
			Content:    msg.Content,
			ToolCallID: msg.ToolCallID,
			Name:       msg.Name,
		}
		for _, tc := range msg.ToolCalls {
			converted.ToolCalls = append(converted.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolType(tc.Type),
				Function: openai.FunctionCall{
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
			})
		}

		result = append(result, converted)
	}

	return result
}
