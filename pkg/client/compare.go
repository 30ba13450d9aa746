package client

import (
	"sort"
	"strings"
)

// Placeholder 对比表里缺失值的占位符
const Placeholder = "—"

// maxHighlights 单条记录最多展示的亮点数
const maxHighlights = 4

type compareAttr struct {
	Label string
	Keys  []string
	// Field 记录上的标量字段兜底，规格树里查不到时用
	Field func(ProductRecord) string
}

// compareAttrs 对比表的行定义，顺序即展示顺序
var compareAttrs = []compareAttr{
	{"Price", []string{"price", "price_text", "cost"}, func(r ProductRecord) string { return r.Price }},
	{"Display", []string{"display", "screen", "display_size"}, nil},
	{"Performance", []string{"performance", "processor", "chipset", "cpu"}, nil},
	{"RAM", []string{"ram", "memory"}, nil},
	{"Storage", []string{"storage", "internal_storage", "rom"}, nil},
	{"Battery", []string{"battery", "battery_capacity"}, nil},
	{"Rear Camera", []string{"rear_camera", "camera", "main_camera"}, nil},
	{"Front Camera", []string{"front_camera", "selfie_camera"}, nil},
	{"Software", []string{"software", "os", "operating_system"}, nil},
}

// highlightAttrs 亮点只取硬件维度，价格和系统留给对比表
var highlightAttrs = compareAttrs[1:8]

// ComparisonRow 对比表中的一行，Values 与入参记录一一对应
type ComparisonRow struct {
	Label  string   `json:"label"`
	Values []string `json:"values"`
}

// BuildComparison 为一组记录构建固定行序的对比表。
// 缺失值用占位符补齐，所有记录都缺的行整行略去。
// 记录数量不做限制，2到3条的门槛由调用方把握
func BuildComparison(records []ProductRecord) []ComparisonRow {
	var rows []ComparisonRow
	for _, attr := range compareAttrs {
		values := make([]string, len(records))
		allMissing := true
		for i, rec := range records {
			v := lookupAttr(rec, attr.Keys)
			if v == "" && attr.Field != nil {
				v = attr.Field(rec)
			}
			if v == "" {
				v = Placeholder
			} else {
				allMissing = false
			}
			values[i] = v
		}
		if allMissing {
			continue
		}
		rows = append(rows, ComparisonRow{Label: attr.Label, Values: values})
	}
	return rows
}

// BuildHighlights 取一条记录的前几个可展示亮点，格式 "Label: value"
func BuildHighlights(rec ProductRecord) []string {
	var highlights []string
	for _, attr := range highlightAttrs {
		v := lookupAttr(rec, attr.Keys)
		if v == "" {
			continue
		}
		highlights = append(highlights, attr.Label+": "+v)
		if len(highlights) >= maxHighlights {
			break
		}
	}
	return highlights
}

// lookupAttr 先查亮点摘要再查完整规格，规格里再向下探一层嵌套,
// 嵌套层按键名排序保证取值稳定
func lookupAttr(rec ProductRecord, keys []string) string {
	if v := lookupIn(rec.Spotlight, keys, true); v != "" {
		return v
	}
	return lookupIn(rec.Specs, keys, true)
}

func lookupIn(m map[string]interface{}, keys []string, descend bool) string {
	if m == nil {
		return ""
	}

	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s := attrValue(v); s != "" {
				return s
			}
		}
	}

	if !descend {
		return ""
	}

	nested := make([]string, 0, len(m))
	for k := range m {
		if _, ok := m[k].(map[string]interface{}); ok {
			nested = append(nested, k)
		}
	}
	sort.Strings(nested)
	for _, k := range nested {
		if v := lookupIn(m[k].(map[string]interface{}), keys, false); v != "" {
			return v
		}
	}
	return ""
}

// attrValue 亮点值可以是文本，也可以是文本列表（逗号拼接）
func attrValue(v interface{}) string {
	switch val := v.(type) {
	case []interface{}:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := stringify(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return stringify(v)
	}
}
