package config

import (
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Model   ModelConfig   `mapstructure:"model"`
	Gemini  GeminiConfig  `mapstructure:"gemini"`
	OpenAI  OpenAIConfig  `mapstructure:"openai"`
	Agent   AgentConfig   `mapstructure:"agent"`
	CORS    CORSConfig    `mapstructure:"cors"`
	Log     LogConfig     `mapstructure:"log"`
	Session SessionConfig `mapstructure:"session"`
	Storage StorageConfig `mapstructure:"storage"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Client  ClientConfig  `mapstructure:"client"`
	Ingest  IngestConfig  `mapstructure:"ingest"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxHeaderBytes int           `mapstructure:"max_header_bytes"`
}

// ModelConfig 选择模型提供方：gemini 或 openai（OpenAI兼容接口）
type ModelConfig struct {
	Provider string `mapstructure:"provider"`
}

type GeminiConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float32       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type OpenAIConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float32       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type AgentConfig struct {
	SystemPrompt  string        `mapstructure:"system_prompt"`
	MaxHistory    int           `mapstructure:"max_history_messages"`
	MaxToolRounds int           `mapstructure:"max_tool_rounds"`
	RunTimeout    time.Duration `mapstructure:"run_timeout"`
	LogDebug      bool          `mapstructure:"log_debug"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type SessionConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

type StorageConfig struct {
	Type      string `mapstructure:"type"`
	DataDir   string `mapstructure:"data_dir"`
	CacheSize int    `mapstructure:"cache_size"`
}

// CatalogConfig 手机目录数据文件；文件缺失时使用内置种子数据
type CatalogConfig struct {
	DataPath string `mapstructure:"data_path"`
}

// ClientConfig 终端聊天客户端使用的配置
type ClientConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	TimeoutMS   string `mapstructure:"timeout_ms"`
	Debug       bool   `mapstructure:"debug"`
	MaxMessages int    `mapstructure:"max_messages"`
	SessionPath string `mapstructure:"session_path"`
}

type IngestConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Country string `mapstructure:"country"`
	Limit   int    `mapstructure:"limit"`
}

var cfg *Config

func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()
	viper.SetEnvPrefix("SHOPMATE")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg = &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}

	// 配置文件优先，缺省时回退环境变量
	if cfg.Gemini.APIKey == "" {
		if apiKey := os.Getenv("GOOGLE_API_KEY"); apiKey != "" {
			cfg.Gemini.APIKey = apiKey
		}
		if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
			cfg.Gemini.APIKey = apiKey
		}
	}
	if cfg.OpenAI.APIKey == "" {
		if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
			cfg.OpenAI.APIKey = apiKey
		}
	}
	if cfg.Ingest.APIKey == "" {
		if apiKey := os.Getenv("SERPAPI_KEY"); apiKey != "" {
			cfg.Ingest.APIKey = apiKey
		}
	}

	applyDefaults(cfg)

	return cfg, nil
}

func applyDefaults(c *Config) {
	if c.Model.Provider == "" {
		c.Model.Provider = "gemini"
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash"
	}
	if c.Agent.MaxToolRounds <= 0 {
		c.Agent.MaxToolRounds = 6
	}
	if c.Agent.MaxHistory <= 0 {
		c.Agent.MaxHistory = 20
	}
	if c.Agent.RunTimeout <= 0 {
		c.Agent.RunTimeout = 60 * time.Second
	}
	if c.Session.CleanupInterval <= 0 {
		c.Session.CleanupInterval = 10 * time.Minute
	}
	if c.Session.TTL <= 0 {
		c.Session.TTL = 24 * time.Hour
	}
}

func Get() *Config {
	return cfg
}
