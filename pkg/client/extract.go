package client

import (
	"sort"
	"strconv"
	"strings"
)

// ProductRecord 从应答负载里识别出的一条商品记录
type ProductRecord struct {
	ID        string                 `json:"id,omitempty"`
	Name      string                 `json:"name"`
	Brand     string                 `json:"brand,omitempty"`
	Price     string                 `json:"price,omitempty"`
	Image     string                 `json:"image,omitempty"`
	Spotlight map[string]interface{} `json:"spotlight,omitempty"`
	Specs     map[string]interface{} `json:"specs,omitempty"`
}

// recordKeys 是商品字段的全部候选键名。后端工具、比价接口和历史版本
// 的负载用词不一，识别和取值都只认这一张表
var recordKeys = struct {
	ID        []string
	Name      []string
	Brand     []string
	Price     []string
	Image     []string
	Spotlight []string
	Specs     []string
}{
	ID:        []string{"id", "phone_id", "product_id", "sku"},
	Name:      []string{"model", "name", "title", "product_name"},
	Brand:     []string{"brand", "manufacturer", "maker"},
	Price:     []string{"price", "price_text", "cost", "mrp"},
	Image:     []string{"image", "image_url", "thumbnail", "img"},
	Spotlight: []string{"spotlight", "highlights", "key_specs"},
	Specs:     []string{"specs", "specifications", "details"},
}

// ExtractRecords 在整个应答信封上做启发式遍历，收集看起来像商品的对象。
// 先对整棵树做一遍父先于子的深度优先，再单独扫一遍 events 数组；
// 第二遍按键去重后是幂等的，保留它是为了确保事件负载不被上层结构遮蔽
func ExtractRecords(payload map[string]interface{}) []ProductRecord {
	var records []ProductRecord
	seen := make(map[string]struct{})

	collect := func(r ProductRecord) {
		key := r.ID
		if key == "" {
			key = r.Brand + "|" + r.Name
		}
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		records = append(records, r)
	}

	walkValue(payload, collect)

	if events, ok := payload["events"].([]interface{}); ok {
		for _, e := range events {
			walkValue(e, collect)
		}
	}

	return records
}

func walkValue(v interface{}, collect func(ProductRecord)) {
	switch node := v.(type) {
	case map[string]interface{}:
		if isRecordCandidate(node) {
			collect(toRecord(node))
		}
		keys := make([]string, 0, len(node))
		for k := range node {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			walkValue(node[k], collect)
		}
	case []interface{}:
		for _, item := range node {
			walkValue(item, collect)
		}
	}
}

// isRecordCandidate 判定一个对象是否像商品：要有名称或品牌键，
// 还要至少带一个价格、图片、亮点或规格键
func isRecordCandidate(m map[string]interface{}) bool {
	if !hasAnyKey(m, recordKeys.Name) && !hasAnyKey(m, recordKeys.Brand) {
		return false
	}
	return hasAnyKey(m, recordKeys.Price) ||
		hasAnyKey(m, recordKeys.Image) ||
		hasAnyKey(m, recordKeys.Spotlight) ||
		hasAnyKey(m, recordKeys.Specs)
}

func hasAnyKey(m map[string]interface{}, keys []string) bool {
	for _, k := range keys {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

func toRecord(m map[string]interface{}) ProductRecord {
	return ProductRecord{
		ID:        firstString(m, recordKeys.ID),
		Name:      firstString(m, recordKeys.Name),
		Brand:     firstString(m, recordKeys.Brand),
		Price:     firstString(m, recordKeys.Price),
		Image:     firstString(m, recordKeys.Image),
		Spotlight: firstMap(m, recordKeys.Spotlight),
		Specs:     firstMap(m, recordKeys.Specs),
	}
}

func firstString(m map[string]interface{}, keys []string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s := stringify(v); s != "" {
				return s
			}
		}
	}
	return ""
}

func firstMap(m map[string]interface{}, keys []string) map[string]interface{} {
	for _, k := range keys {
		if v, ok := m[k].(map[string]interface{}); ok {
			return v
		}
	}
	return nil
}

// stringify 把标量负载转成展示文本，复合值不参与
func stringify(v interface{}) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}
