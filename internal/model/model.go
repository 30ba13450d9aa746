package model

import (
	"context"
	"fmt"

	"shopmate-backend/internal/config"

	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// NewAgentModel 创建 Agent 使用的对话模型（支持工具绑定）
func NewAgentModel(ctx context.Context, toolsInfo []*schema.ToolInfo) (einoModel.ChatModel, error) {
	cfg := config.Get()

	var chatModel einoModel.ChatModel
	var err error

	switch cfg.Model.Provider {
	case "gemini":
		chatModel, err = newGeminiChatModel(ctx, cfg.Gemini)
	case "openai":
		chatModel, err = newOpenAIChatModel(ctx, cfg.OpenAI)
	default:
		return nil, fmt.Errorf("unsupported model provider: %s", cfg.Model.Provider)
	}

	if err != nil {
		return nil, err
	}

	// 绑定工具
	if len(toolsInfo) > 0 {
		if err := chatModel.BindTools(toolsInfo); err != nil {
			return nil, fmt.Errorf("failed to bind tools: %w", err)
		}
	}

	return chatModel, nil
}
