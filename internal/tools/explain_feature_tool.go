package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
)

// ExplainFeatureTool implements tool.InvokableTool for the feature glossary
type ExplainFeatureTool struct{}

// 固定术语表，覆盖导购对话里最常被问到的概念
var featureExplanations = map[string]map[string]interface{}{
	"OIS": {
		"name":           "Optical Image Stabilization",
		"description":    "Uses physical lenses to compensate for hand movement, reducing blur in photos and videos",
		"benefit":        "Better low-light photography and smoother videos",
		"phones_with_it": []string{"Pixel 8a", "OnePlus 12R", "iPhone 15", "Xiaomi 14"},
	},
	"EIS": {
		"name":           "Electronic Image Stabilization",
		"description":    "Uses software to crop and shift frames to reduce blur, works with digital processing",
		"benefit":        "Works for all cameras, no physical hardware needed",
		"phones_with_it": []string{"Most modern phones"},
	},
	"OIS vs EIS": {
		"name":        "OIS vs EIS Comparison",
		"description": "OIS (Optical) uses physical lens movement - more effective but expensive. EIS (Electronic) uses software processing - faster but crops the image slightly. Many flagship phones use BOTH for best results.",
		"benefit":     "OIS is generally better for photography, EIS for video",
	},
	"5G": {
		"name":             "5G Connectivity",
		"description":      "Fifth-generation mobile network technology offering much faster speeds than 4G LTE",
		"benefit":          "Faster downloads, lower latency, better for streaming and gaming",
		"speed_comparison": "4G LTE: ~100Mbps, 5G: ~1-10Gbps",
	},
	"OLED": {
		"name":        "OLED Display",
		"description": "Organic Light-Emitting Diode - each pixel emits its own light",
		"benefits":    []string{"Perfect blacks", "Better contrast", "Faster response time", "Better colors"},
		"vs_LCD":      "OLED is generally superior but more expensive",
	},
	"LCD": {
		"name":        "LCD Display",
		"description": "Liquid Crystal Display - uses backlight with color filters",
		"benefits":    []string{"More affordable", "Longer lifespan", "Less power-intensive"},
		"comparison":  "Still good quality, but not as vibrant as OLED",
	},
	"Refresh Rate": {
		"name":        "Display Refresh Rate",
		"description": "How many times per second the display updates (measured in Hz)",
		"common_rates": map[string]string{
			"60Hz":  "Standard, smooth for most uses",
			"90Hz":  "Better for gaming, slightly smoother scrolling",
			"120Hz": "Premium, very smooth for everything",
			"144Hz": "High-end gaming phones",
		},
	},
	"RAM": {
		"name":        "Random Access Memory",
		"description": "Temporary memory used by apps and OS for quick access to data",
		"guidance": map[string]string{
			"4GB":   "Basic tasks",
			"6-8GB": "General use, gaming",
			"12GB+": "Heavy multitasking, gaming, video editing",
		},
	},
}

func (t *ExplainFeatureTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: "explain_phone_feature",
		Desc: "解释手机技术术语。例如\"OIS 是什么\"对应 feature=OIS，\"OIS 和 EIS 有什么区别\"对应 feature=OIS vs EIS。",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"feature": {
				Type:     schema.String,
				Desc:     "要解释的术语，如 OIS、EIS、5G、OLED、Refresh Rate",
				Required: true,
			},
		}),
	}, nil
}

func (t *ExplainFeatureTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	var params map[string]interface{}
	if err := json.Unmarshal([]byte(argumentsInJSON), &params); err != nil {
		return "", fmt.Errorf("failed to parse arguments: %w", err)
	}

	feature, _ := params["feature"].(string)
	featureLower := strings.ToLower(feature)

	var matched map[string]interface{}
	for key, explanation := range featureExplanations {
		if strings.ToLower(key) == featureLower {
			matched = explanation
			break
		}
	}
	if matched == nil {
		for key, explanation := range featureExplanations {
			keyLower := strings.ToLower(key)
			if strings.Contains(featureLower, keyLower) || strings.Contains(keyLower, featureLower) {
				matched = explanation
				break
			}
		}
	}

	if matched == nil {
		available := make([]string, 0, len(featureExplanations))
		for key := range featureExplanations {
			available = append(available, key)
		}
		resultBytes, _ := json.Marshal(map[string]interface{}{
			"success":            false,
			"error":              fmt.Sprintf("Feature '%s' explanation not found", feature),
			"message":            fmt.Sprintf("Available explanations: %s", strings.Join(available, ", ")),
			"available_features": available,
		})
		return string(resultBytes), nil
	}

	resultBytes, _ := json.Marshal(map[string]interface{}{
		"success": true,
		"feature": matched,
	})
	return string(resultBytes), nil
}
