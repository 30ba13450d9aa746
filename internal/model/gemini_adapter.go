package model

import (
	"context"
	"encoding/json"
	"fmt"

	"shopmate-backend/internal/config"

	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/uuid"
	"google.golang.org/genai"
)

// geminiChatModel 基于 google genai SDK 实现 eino.ChatModel 接口
type geminiChatModel struct {
	client      *genai.Client
	model       string
	maxTokens   int
	temperature float32
	decls       []*genai.FunctionDeclaration
}

func newGeminiChatModel(ctx context.Context, cfg config.GeminiConfig) (*geminiChatModel, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiChatModel{
		client:      client,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

func (m *geminiChatModel) Generate(ctx context.Context, messages []*schema.Message, opts ...einoModel.Option) (*schema.Message, error) {
	contents, system := m.convertMessages(messages)

	generateConfig := &genai.GenerateContentConfig{}
	temp := m.temperature
	generateConfig.Temperature = &temp
	if m.maxTokens > 0 {
		generateConfig.MaxOutputTokens = int32(m.maxTokens)
	}
	if system != "" {
		generateConfig.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}
	if len(m.decls) > 0 {
		generateConfig.Tools = []*genai.Tool{
			{FunctionDeclarations: m.decls},
		}
	}

	resp, err := m.client.Models.GenerateContent(ctx, m.model, contents, generateConfig)
	if err != nil {
		return nil, fmt.Errorf("gemini generate failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("empty response from gemini")
	}

	out := &schema.Message{Role: schema.Assistant}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			out.Content += part.Text
		}
		if part.FunctionCall != nil {
			args, err := json.Marshal(part.FunctionCall.Args)
			if err != nil {
				args = []byte("{}")
			}
			out.ToolCalls = append(out.ToolCalls, schema.ToolCall{
				ID:   uuid.New().String(),
				Type: "function",
				Function: schema.FunctionCall{
					Name:      part.FunctionCall.Name,
					Arguments: string(args),
				},
			})
		}
	}

	return out, nil
}

// Stream Gemini 适配器不做增量流式，按单条消息透传
func (m *geminiChatModel) Stream(ctx context.Context, messages []*schema.Message, opts ...einoModel.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, messages, opts...)
	if err != nil {
		return nil, err
	}

	reader, writer := schema.Pipe[*schema.Message](1)
	writer.Send(msg, nil)
	writer.Close()
	return reader, nil
}

func (m *geminiChatModel) BindTools(tools []*schema.ToolInfo) error {
	decls := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, info := range tools {
		decl := &genai.FunctionDeclaration{
			Name:        info.Name,
			Description: info.Desc,
		}

		if info.ParamsOneOf != nil {
			openAPISchema, err := info.ParamsOneOf.ToOpenAPIV3()
			if err != nil {
				return fmt.Errorf("failed to convert params for tool %s: %w", info.Name, err)
			}
			decl.Parameters = convertSchema(openAPISchema)
		}

		decls = append(decls, decl)
	}

	m.decls = decls
	return nil
}

// convertMessages 将 eino 消息转换为 genai contents；system 消息抽出作为指令
func (m *geminiChatModel) convertMessages(messages []*schema.Message) ([]*genai.Content, string) {
	var contents []*genai.Content
	system := ""

	for _, msg := range messages {
		switch msg.Role {
		case schema.System:
			if system != "" {
				system += "\n"
			}
			system += msg.Content

		case schema.User:
			contents = append(contents, &genai.Content{
				Role:  "user",
				Parts: []*genai.Part{{Text: msg.Content}},
			})

		case schema.Assistant:
			var parts []*genai.Part
			if msg.Content != "" {
				parts = append(parts, &genai.Part{Text: msg.Content})
			}
			for _, tc := range msg.ToolCalls {
				var args map[string]any
				if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
					args = map[string]any{}
				}
				parts = append(parts, &genai.Part{
					FunctionCall: &genai.FunctionCall{
						Name: tc.Function.Name,
						Args: args,
					},
				})
			}
			if len(parts) > 0 {
				contents = append(contents, &genai.Content{Role: "model", Parts: parts})
			}

		case schema.Tool:
			var response map[string]any
			if err := json.Unmarshal([]byte(msg.Content), &response); err != nil {
				response = map[string]any{"output": msg.Content}
			}
			contents = append(contents, &genai.Content{
				Role: "user",
				Parts: []*genai.Part{{
					FunctionResponse: &genai.FunctionResponse{
						Name:     msg.Name,
						Response: response,
					},
				}},
			})
		}
	}

	return contents, system
}

// convertSchema openapi3 -> genai schema（只覆盖工具参数用到的子集）
func convertSchema(s *openapi3.Schema) *genai.Schema {
	if s == nil {
		return nil
	}

	out := &genai.Schema{Description: s.Description}

	switch s.Type {
	case "object":
		out.Type = genai.TypeObject
		if len(s.Properties) > 0 {
			out.Properties = make(map[string]*genai.Schema, len(s.Properties))
			for name, ref := range s.Properties {
				if ref != nil {
					out.Properties[name] = convertSchema(ref.Value)
				}
			}
		}
		out.Required = s.Required
	case "array":
		out.Type = genai.TypeArray
		if s.Items != nil {
			out.Items = convertSchema(s.Items.Value)
		}
	case "string":
		out.Type = genai.TypeString
	case "integer":
		out.Type = genai.TypeInteger
	case "number":
		out.Type = genai.TypeNumber
	case "boolean":
		out.Type = genai.TypeBoolean
	default:
		out.Type = genai.TypeString
	}

	return out
}
