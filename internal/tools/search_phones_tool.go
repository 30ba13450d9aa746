package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"shopmate-backend/internal/catalog"
)

// SearchPhonesTool implements tool.InvokableTool for filtered phone search
type SearchPhonesTool struct {
	cat *catalog.Catalog
}

func (t *SearchPhonesTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: "search_phones_by_filters",
		Desc: "按多种条件搜索在售手机。例如\"3万以内的手机\"对应 max_price=30000，\"8GB内存的三星手机\"对应 brand=Samsung、min_ram=8。",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"max_price": {
				Type:     schema.Integer,
				Desc:     "最高价格（卢比）",
				Required: false,
			},
			"min_price": {
				Type:     schema.Integer,
				Desc:     "最低价格（卢比）",
				Required: false,
			},
			"brand": {
				Type:     schema.String,
				Desc:     "品牌名，如 Google、Samsung、Apple",
				Required: false,
			},
			"min_ram": {
				Type:     schema.Integer,
				Desc:     "最小内存（GB）",
				Required: false,
			},
			"battery_threshold": {
				Type:     schema.Integer,
				Desc:     "最小电池容量（mAh）",
				Required: false,
			},
			"refresh_rate": {
				Type:     schema.Integer,
				Desc:     "最低刷新率（Hz）",
				Required: false,
			},
		}),
	}, nil
}

func (t *SearchPhonesTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	var params map[string]interface{}
	if err := json.Unmarshal([]byte(argumentsInJSON), &params); err != nil {
		return "", fmt.Errorf("failed to parse arguments: %w", err)
	}

	filter := catalog.Filter{}
	if v, ok := params["max_price"].(float64); ok {
		filter.MaxPrice = int(v)
	}
	if v, ok := params["min_price"].(float64); ok {
		filter.MinPrice = int(v)
	}
	if v, ok := params["brand"].(string); ok {
		filter.Brand = v
	}
	if v, ok := params["min_ram"].(float64); ok {
		filter.MinRAM = int(v)
	}
	if v, ok := params["battery_threshold"].(float64); ok {
		filter.MinBattery = int(v)
	}
	if v, ok := params["refresh_rate"].(float64); ok {
		filter.MinRefreshRate = int(v)
	}

	results := t.cat.Search(filter)

	formatted := make([]map[string]interface{}, 0, len(results))
	for i := range results {
		p := &results[i]
		formatted = append(formatted, map[string]interface{}{
			"id":           p.ID,
			"model":        p.Model,
			"brand":        p.Brand,
			"price":        FormatPrice(p.Price),
			"processor":    p.Processor,
			"ram":          fmt.Sprintf("%dGB", p.RAM),
			"storage":      fmt.Sprintf("%dGB", p.Storage),
			"display":      p.Display,
			"refresh_rate": fmt.Sprintf("%dHz", p.RefreshRate),
			"battery":      fmt.Sprintf("%dmAh", p.Battery),
			"rating":       fmt.Sprintf("%.1f⭐", p.Rating),
			"spotlight":    spotlight(p),
		})
	}

	resultBytes, _ := json.Marshal(map[string]interface{}{
		"success": true,
		"count":   len(results),
		"phones":  formatted,
		"message": fmt.Sprintf("Found %d phone(s) matching your criteria", len(results)),
	})
	return string(resultBytes), nil
}
