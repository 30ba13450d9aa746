package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"shopmate-backend/internal/catalog"
)

// PhoneDetailsTool implements tool.InvokableTool for full specification lookup
type PhoneDetailsTool struct {
	cat *catalog.Catalog
}

func (t *PhoneDetailsTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: "get_phone_details",
		Desc: "获取指定手机的完整规格参数。例如\"介绍一下 Pixel 8a\"对应 phone_id=pixel-8a。",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"phone_id": {
				Type:     schema.String,
				Desc:     "手机标识，如 pixel-8a、oneplus-12r，也可传型号名",
				Required: true,
			},
		}),
	}, nil
}

func (t *PhoneDetailsTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	var params map[string]interface{}
	if err := json.Unmarshal([]byte(argumentsInJSON), &params); err != nil {
		return "", fmt.Errorf("failed to parse arguments: %w", err)
	}

	phoneID, _ := params["phone_id"].(string)

	phone, err := t.cat.Resolve(phoneID)
	if err != nil {
		resultBytes, _ := json.Marshal(map[string]interface{}{
			"success": false,
			"error":   fmt.Sprintf("Phone '%s' not found in database", phoneID),
			"message": "Please check the phone ID and try again",
		})
		return string(resultBytes), nil
	}

	resultBytes, _ := json.Marshal(map[string]interface{}{
		"success": true,
		"phone": map[string]interface{}{
			"model":     phone.Model,
			"brand":     phone.Brand,
			"price":     FormatPrice(phone.Price),
			"processor": phone.Processor,
			"specifications": map[string]interface{}{
				"memory": map[string]interface{}{
					"ram":     fmt.Sprintf("%dGB", phone.RAM),
					"storage": fmt.Sprintf("%dGB", phone.Storage),
				},
				"display": map[string]interface{}{
					"size":         phone.Display,
					"refresh_rate": fmt.Sprintf("%dHz", phone.RefreshRate),
				},
				"camera": map[string]interface{}{
					"rear":     phone.Camera.Rear,
					"front":    phone.Camera.Front,
					"features": strings.Join(phone.Camera.Features, ", "),
				},
				"battery": map[string]interface{}{
					"capacity": fmt.Sprintf("%dmAh", phone.Battery),
					"charging": phone.Charging,
				},
				"connectivity": map[string]interface{}{
					"5g":               yesNo(phone.FiveG),
					"water_resistance": phone.WaterResistance,
				},
			},
			"spotlight": spotlight(phone),
			"weight":    fmt.Sprintf("%dg", phone.Weight),
			"rating":    fmt.Sprintf("%.1f⭐", phone.Rating),
		},
	})
	return string(resultBytes), nil
}
