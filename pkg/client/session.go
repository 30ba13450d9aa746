package client

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"shopmate-backend/pkg/logger"
)

// 这些值曾经被前端序列化写坏过，读到任何一个都视为没有令牌
var tokenBlacklist = map[string]struct{}{
	"":          {},
	"undefined": {},
	"null":      {},
	"nan":       {},
}

// SessionStore 落盘的会话令牌存储。所有方法只记日志不返回错误：
// 拿不到持久令牌时就发一个新的，会话连续性是尽力而为
type SessionStore struct {
	mu   sync.Mutex
	path string
}

// NewSessionStore 创建令牌存储，path 为空时使用用户配置目录下的固定位置
func NewSessionStore(path string) *SessionStore {
	if path == "" {
		path = defaultSessionPath()
	}
	return &SessionStore{path: path}
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		logger.Warnf("Failed to resolve user config dir: %v", err)
		dir = os.TempDir()
	}
	return filepath.Join(dir, "shopmate", "session")
}

// GetOrCreate 返回已保存的有效令牌，没有或已损坏则生成新令牌并回写
func (s *SessionStore) GetOrCreate() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err == nil {
		if token := ValidateToken(string(data)); token != "" {
			return token
		}
		logger.Warnf("Stored session token is invalid, regenerating")
	} else if !os.IsNotExist(err) {
		logger.Warnf("Failed to read session token: %v", err)
	}

	token := generateToken()
	s.persist(token)
	return token
}

// Save 校验并持久化新令牌，无效令牌忽略并保留旧值
func (s *SessionStore) Save(raw string) {
	token := ValidateToken(raw)
	if token == "" {
		logger.Warnf("Refusing to save invalid session token: %q", raw)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.persist(token)
}

// Clear 删除已保存的令牌
func (s *SessionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		logger.Warnf("Failed to clear session token: %v", err)
	}
}

func (s *SessionStore) persist(token string) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		logger.Warnf("Failed to create session dir: %v", err)
		return
	}
	if err := os.WriteFile(s.path, []byte(token), 0600); err != nil {
		logger.Warnf("Failed to persist session token: %v", err)
	}
}

// ValidateToken 清洗原始令牌文本：去空白、去包裹引号、拒绝黑名单值。
// 返回空字符串表示无效
func ValidateToken(raw string) string {
	token := strings.TrimSpace(raw)
	for len(token) >= 2 {
		first, last := token[0], token[len(token)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			token = strings.TrimSpace(token[1 : len(token)-1])
			continue
		}
		break
	}

	if _, bad := tokenBlacklist[strings.ToLower(token)]; bad {
		return ""
	}
	return token
}

func generateToken() string {
	id, err := uuid.NewRandom()
	if err != nil {
		// 随机源失效时退化为时间戳令牌，唯一性弱一些但可用
		return fmt.Sprintf("session-%d-%06d", time.Now().UnixNano(), rand.Intn(1000000))
	}
	return id.String()
}
