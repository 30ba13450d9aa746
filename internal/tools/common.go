package tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"shopmate-backend/internal/catalog"
)

// Registry 返回在售手机目录上注册的全部工具
func Registry(cat *catalog.Catalog) []tool.BaseTool {
	return []tool.BaseTool{
		&SearchPhonesTool{cat: cat},
		&PhoneDetailsTool{cat: cat},
		&ListPhonesTool{cat: cat},
		&ComparePhonesTool{cat: cat},
		&ExplainFeatureTool{},
	}
}

// Infos 收集工具声明，供模型绑定
func Infos(ctx context.Context, ts []tool.BaseTool) ([]*schema.ToolInfo, error) {
	infos := make([]*schema.ToolInfo, 0, len(ts))
	for _, t := range ts {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get tool info: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// FormatPrice 按西式千分位渲染价格文本，如 ₹29,999
func FormatPrice(price int) string {
	s := strconv.Itoa(price)
	if len(s) <= 3 {
		return "₹" + s
	}

	var b strings.Builder
	b.WriteString("₹")
	first := len(s) % 3
	if first > 0 {
		b.WriteString(s[:first])
	}
	for i := first; i < len(s); i += 3 {
		if b.Len() > len("₹") {
			b.WriteString(",")
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// spotlight 构造一部手机的亮点规格摘要，前端对比视图直接消费这些键
func spotlight(p *catalog.Phone) map[string]interface{} {
	return map[string]interface{}{
		"price":        FormatPrice(p.Price),
		"display":      fmt.Sprintf("%s %dHz", p.Display, p.RefreshRate),
		"performance":  p.Processor,
		"ram":          fmt.Sprintf("%dGB", p.RAM),
		"storage":      fmt.Sprintf("%dGB", p.Storage),
		"battery":      fmt.Sprintf("%dmAh, %s", p.Battery, p.Charging),
		"rear_camera":  p.Camera.Rear,
		"front_camera": p.Camera.Front,
		"software":     p.OS,
	}
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
