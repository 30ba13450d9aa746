package main

import (
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	g "github.com/serpapi/google-search-results-golang"

	"shopmate-backend/internal/catalog"
	"shopmate-backend/internal/config"
	"shopmate-backend/pkg/logger"
)

const maxFetchRetries = 3

// 一次性导入命令：从购物搜索接口抓取手机条目，归一化后合并进目录文件。
// 抓到的记录按 ID 覆盖内置种子数据。
func main() {
	var (
		configPath string
		query      string
		country    string
		limit      int
		outPath    string
	)
	flag.StringVar(&configPath, "config", "./configs/config.yaml", "配置文件路径")
	flag.StringVar(&query, "query", "mobile phone", "搜索关键词")
	flag.StringVar(&country, "country", "", "国家代码，如 in、us")
	flag.IntVar(&limit, "limit", 0, "最多导入条数，0 表示用配置值")
	flag.StringVar(&outPath, "out", "", "目录输出路径，默认用配置的 catalog.data_path")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := logger.Init(cfg.Log.Level, "text"); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	apiKey := cfg.Ingest.APIKey
	if apiKey == "" {
		logger.Fatal("Ingest API key is not configured (set SHOPMATE_INGEST_API_KEY or SERPAPI_KEY)")
	}
	if country == "" {
		country = cfg.Ingest.Country
	}
	if limit <= 0 {
		limit = cfg.Ingest.Limit
	}
	if outPath == "" {
		outPath = cfg.Catalog.DataPath
	}
	if outPath == "" {
		logger.Fatal("No output path: pass -out or set catalog.data_path")
	}

	results, err := fetchShoppingResults(apiKey, query, country)
	if err != nil {
		logger.Fatalf("Fetch failed: %v", err)
	}
	logger.Infof("Fetched %d shopping results for %q", len(results), query)

	cat, err := catalog.Load(outPath)
	if err != nil {
		logger.Fatalf("Failed to load catalog: %v", err)
	}

	imported := 0
	for _, item := range results {
		if limit > 0 && imported >= limit {
			break
		}
		phone, ok := normalizeResult(item)
		if !ok {
			continue
		}
		cat.Upsert(phone)
		imported++
	}

	if err := cat.Save(); err != nil {
		logger.Fatalf("Failed to save catalog: %v", err)
	}
	logger.Infof("Imported %d phones, catalog now has %d entries at %s", imported, cat.Count(), outPath)
}

// fetchShoppingResults 调购物搜索接口，网络类错误做有上限的指数退避重试
func fetchShoppingResults(apiKey, query, country string) ([]map[string]interface{}, error) {
	parameter := map[string]string{
		"engine": "google_shopping",
		"q":      query,
	}
	if country != "" {
		parameter["gl"] = country
	}

	var lastErr error
	for attempt := 0; attempt <= maxFetchRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(500*(1<<uint(attempt-1))) * time.Millisecond
			if backoff > 2*time.Second {
				backoff = 2 * time.Second
			}
			logger.Warnf("Retrying fetch (attempt %d/%d) after %v", attempt+1, maxFetchRetries+1, backoff)
			time.Sleep(backoff)
		}

		search := g.NewGoogleSearch(parameter, apiKey)
		data, err := search.GetJSON()
		if err != nil {
			lastErr = err
			msg := err.Error()
			retryable := strings.Contains(msg, "timeout") ||
				strings.Contains(msg, "503") ||
				strings.Contains(msg, "502") ||
				strings.Contains(msg, "500")
			if retryable && attempt < maxFetchRetries {
				continue
			}
			return nil, fmt.Errorf("shopping search failed: %w", err)
		}

		raw, ok := data["shopping_results"].([]interface{})
		if !ok {
			return nil, fmt.Errorf("no shopping_results in response")
		}

		results := make([]map[string]interface{}, 0, len(raw))
		for _, item := range raw {
			if m, ok := item.(map[string]interface{}); ok {
				results = append(results, m)
			}
		}
		return results, nil
	}

	return nil, fmt.Errorf("shopping search failed after %d attempts: %w", maxFetchRetries+1, lastErr)
}

// normalizeResult 把一条购物搜索结果转成目录记录，标题为空的丢弃
func normalizeResult(item map[string]interface{}) (catalog.Phone, bool) {
	title, _ := item["title"].(string)
	title = strings.TrimSpace(title)
	if title == "" {
		return catalog.Phone{}, false
	}

	phone := catalog.Phone{
		ID:    slugify(title),
		Model: title,
		Brand: firstWord(title),
	}

	if v, ok := item["extracted_price"].(float64); ok {
		phone.Price = int(v)
	} else if text, ok := item["price"].(string); ok {
		phone.Price = parsePriceText(text)
	}
	if v, ok := item["thumbnail"].(string); ok {
		phone.Image = v
	}
	if v, ok := item["rating"].(float64); ok {
		phone.Rating = v
	}

	return phone, true
}

// slugify 标题转 ID：小写，非字母数字折叠成连字符
func slugify(title string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func firstWord(title string) string {
	fields := strings.Fields(title)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// parsePriceText 从价格文本里抠出整数部分，如 "₹29,999.00" → 29999
func parsePriceText(text string) int {
	var digits strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
		if r == '.' {
			break
		}
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0
	}
	return n
}
