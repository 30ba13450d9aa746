package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shopmate-backend/pkg/logger"
)

// DefaultTimeout 未配置超时覆盖时的单次请求上限
const DefaultTimeout = 120000 * time.Millisecond

// DefaultMaxMessages 对话消息列表的默认容量上限
const DefaultMaxMessages = 50

// Config 客户端配置，零值字段在 Normalize 时填入默认值
type Config struct {
	BaseURL     string
	Timeout     time.Duration
	Debug       bool
	MaxMessages int
	SessionPath string
}

// Normalize 填默认值并去掉 BaseURL 的尾部斜杠
func (c Config) Normalize() Config {
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:8080"
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxMessages <= 0 {
		c.MaxMessages = DefaultMaxMessages
	}
	return c
}

// TimeoutFromMillis 解析毫秒数文本作为超时覆盖，非正整数回退默认值
func TimeoutFromMillis(raw string) time.Duration {
	ms, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || ms <= 0 {
		return DefaultTimeout
	}
	return time.Duration(ms) * time.Millisecond
}

// ChatResult 一轮对话的应答
type ChatResult struct {
	SessionID   string                 `json:"session_id"`
	Reply       string                 `json:"reply"`
	RawResponse map[string]interface{} `json:"raw_response"`
}

type chatRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

// ChatClient 对话接口的 HTTP 传输层。自身不设超时，
// 取消和限时全部由调用方的 context 驱动
type ChatClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewChatClient 创建传输层，debug 打开时逐请求记录调试日志
func NewChatClient(baseURL string, debug bool) *ChatClient {
	httpClient := newHTTPClient()
	if debug {
		httpClient.Transport = &debugTransport{next: httpClient.Transport}
	}
	return &ChatClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// newHTTPClient 共用的 HTTP 客户端。不设整体超时，截止时间由每次请求的
// context 控制
func newHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// debugTransport 包裹传输层，记录每次请求的方法、地址、状态码和耗时
type debugTransport struct {
	next http.RoundTripper
}

func (d *debugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := d.next.RoundTrip(req)
	if err != nil {
		logger.Debugf("%s %s failed after %v: %v", req.Method, req.URL, time.Since(start), err)
		return nil, err
	}
	logger.Debugf("%s %s -> %d (%v)", req.Method, req.URL, resp.StatusCode, time.Since(start))
	return resp, nil
}

// Send 发送一条消息并等待完整应答
func (c *ChatClient) Send(ctx context.Context, sessionID, message string) (*ChatResult, error) {
	body, err := json.Marshal(chatRequest{SessionID: sessionID, Message: message})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(resp.Body)
		text := strings.TrimSpace(string(data))
		if text != "" {
			return nil, fmt.Errorf("%s", text)
		}
		return nil, fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	var result ChatResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}
