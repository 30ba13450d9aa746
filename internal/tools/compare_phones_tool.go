package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"shopmate-backend/internal/catalog"
)

// ComparePhonesTool implements tool.InvokableTool for side-by-side comparison
type ComparePhonesTool struct {
	cat *catalog.Catalog
}

func (t *ComparePhonesTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: "compare_phones",
		Desc: "并排对比两到三部手机。例如\"Pixel 8a 和 OnePlus 12R 哪个好\"对应 phone_id_1=pixel-8a、phone_id_2=oneplus-12r。",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"phone_id_1": {
				Type:     schema.String,
				Desc:     "第一部手机的标识",
				Required: true,
			},
			"phone_id_2": {
				Type:     schema.String,
				Desc:     "第二部手机的标识",
				Required: true,
			},
			"phone_id_3": {
				Type:     schema.String,
				Desc:     "可选的第三部手机标识",
				Required: false,
			},
		}),
	}, nil
}

func (t *ComparePhonesTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	var params map[string]interface{}
	if err := json.Unmarshal([]byte(argumentsInJSON), &params); err != nil {
		return "", fmt.Errorf("failed to parse arguments: %w", err)
	}

	id1, _ := params["phone_id_1"].(string)
	id2, _ := params["phone_id_2"].(string)
	id3, _ := params["phone_id_3"].(string)

	phone1, err1 := t.cat.Resolve(id1)
	phone2, err2 := t.cat.Resolve(id2)
	if err1 != nil || err2 != nil {
		resultBytes, _ := json.Marshal(map[string]interface{}{
			"success": false,
			"error":   "One or more phones not found",
			"message": "Please check the phone IDs and try again",
		})
		return string(resultBytes), nil
	}

	phones := []*catalog.Phone{phone1, phone2}
	if id3 != "" {
		if phone3, err := t.cat.Resolve(id3); err == nil {
			phones = append(phones, phone3)
		}
	}

	models := make([]string, len(phones))
	records := make([]map[string]interface{}, len(phones))
	table := map[string][]string{
		"Price":            make([]string, len(phones)),
		"Processor":        make([]string, len(phones)),
		"RAM":              make([]string, len(phones)),
		"Storage":          make([]string, len(phones)),
		"Display":          make([]string, len(phones)),
		"Refresh Rate":     make([]string, len(phones)),
		"Rear Camera":      make([]string, len(phones)),
		"Front Camera":     make([]string, len(phones)),
		"Battery":          make([]string, len(phones)),
		"Charging":         make([]string, len(phones)),
		"5G Support":       make([]string, len(phones)),
		"Water Resistance": make([]string, len(phones)),
		"Rating":           make([]string, len(phones)),
	}
	for i, p := range phones {
		models[i] = p.Model
		records[i] = map[string]interface{}{
			"id":        p.ID,
			"model":     p.Model,
			"brand":     p.Brand,
			"price":     FormatPrice(p.Price),
			"spotlight": spotlight(p),
		}
		table["Price"][i] = FormatPrice(p.Price)
		table["Processor"][i] = p.Processor
		table["RAM"][i] = fmt.Sprintf("%dGB", p.RAM)
		table["Storage"][i] = fmt.Sprintf("%dGB", p.Storage)
		table["Display"][i] = p.Display
		table["Refresh Rate"][i] = fmt.Sprintf("%dHz", p.RefreshRate)
		table["Rear Camera"][i] = p.Camera.Rear
		table["Front Camera"][i] = p.Camera.Front
		table["Battery"][i] = fmt.Sprintf("%dmAh", p.Battery)
		table["Charging"][i] = p.Charging
		table["5G Support"][i] = yesNo(p.FiveG)
		table["Water Resistance"][i] = p.WaterResistance
		table["Rating"][i] = fmt.Sprintf("%.1f⭐", p.Rating)
	}

	resultBytes, _ := json.Marshal(map[string]interface{}{
		"success":          true,
		"phones":           models,
		"records":          records,
		"comparison_table": table,
	})
	return string(resultBytes), nil
}
