package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopmate-backend/pkg/logger"
)

func TestConfigNormalize(t *testing.T) {
	cfg := Config{}.Normalize()
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultMaxMessages, cfg.MaxMessages)

	cfg = Config{BaseURL: "http://example.com/", Timeout: time.Second, MaxMessages: 10}.Normalize()
	assert.Equal(t, "http://example.com", cfg.BaseURL)
	assert.Equal(t, time.Second, cfg.Timeout)
	assert.Equal(t, 10, cfg.MaxMessages)
}

func TestTimeoutFromMillis(t *testing.T) {
	assert.Equal(t, 5*time.Second, TimeoutFromMillis("5000"))
	assert.Equal(t, 250*time.Millisecond, TimeoutFromMillis(" 250 "))
	assert.Equal(t, DefaultTimeout, TimeoutFromMillis(""))
	assert.Equal(t, DefaultTimeout, TimeoutFromMillis("abc"))
	assert.Equal(t, DefaultTimeout, TimeoutFromMillis("-100"))
	assert.Equal(t, DefaultTimeout, TimeoutFromMillis("0"))
}

func TestChatClientSend(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "tok-1", req.SessionID)
		assert.Equal(t, "hi", req.Message)

		json.NewEncoder(w).Encode(ChatResult{SessionID: "tok-1", Reply: "hello"})
	}))
	defer server.Close()

	result, err := NewChatClient(server.URL+"/", false).Send(context.Background(), "tok-1", "hi")
	require.NoError(t, err)
	assert.Equal(t, "hello", result.Reply)
	assert.Equal(t, "tok-1", result.SessionID)
}

func TestChatClientSendErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "message cannot be empty", http.StatusBadRequest)
	}))
	defer server.Close()

	_, err := NewChatClient(server.URL, false).Send(context.Background(), "", "hi")
	require.Error(t, err)
	assert.Equal(t, "message cannot be empty", err.Error())
}

func TestChatClientSendStatusFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := NewChatClient(server.URL, false).Send(context.Background(), "", "hi")
	require.Error(t, err)
	assert.Equal(t, "request failed with status 502", err.Error())
}

func TestChatClientDebugLogsRequests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ChatResult{SessionID: "tok-1", Reply: "hello"})
	}))
	defer server.Close()

	require.NoError(t, logger.Init("debug", "text"))
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(os.Stdout) })

	_, err := NewChatClient(server.URL, true).Send(context.Background(), "tok-1", "hi")
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "POST")
	assert.Contains(t, buf.String(), "200")
}

func TestChatClientDebugOffStaysQuiet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ChatResult{SessionID: "tok-1", Reply: "hello"})
	}))
	defer server.Close()

	require.NoError(t, logger.Init("debug", "text"))
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(os.Stdout) })

	_, err := NewChatClient(server.URL, false).Send(context.Background(), "tok-1", "hi")
	require.NoError(t, err)

	assert.NotContains(t, buf.String(), server.URL)
}
