package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"shopmate-backend/internal/catalog"
)

// ListPhonesTool implements tool.InvokableTool for listing the full catalogue
type ListPhonesTool struct {
	cat *catalog.Catalog
}

func (t *ListPhonesTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name:        "list_all_phones",
		Desc:        "列出目录中全部在售手机。",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
	}, nil
}

func (t *ListPhonesTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	phones := t.cat.All()

	formatted := make([]map[string]interface{}, 0, len(phones))
	for i := range phones {
		p := &phones[i]
		formatted = append(formatted, map[string]interface{}{
			"id":        p.ID,
			"model":     p.Model,
			"brand":     p.Brand,
			"price":     FormatPrice(p.Price),
			"processor": p.Processor,
			"ram":       fmt.Sprintf("%dGB", p.RAM),
			"camera":    p.Camera.Rear,
			"battery":   fmt.Sprintf("%dmAh", p.Battery),
			"rating":    fmt.Sprintf("%.1f⭐", p.Rating),
			"spotlight": spotlight(p),
		})
	}

	resultBytes, _ := json.Marshal(map[string]interface{}{
		"success": true,
		"total":   len(phones),
		"phones":  formatted,
		"message": fmt.Sprintf("Here are all %d available phones", len(phones)),
	})
	return string(resultBytes), nil
}
