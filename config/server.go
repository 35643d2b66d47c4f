package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

var DefaultServerConfig = ServerConfig{
	Debug:    false,
	BindAddr: "0.0.0.0:8000",
	MongoDB:  DefaultMongoDBConfig,
	LLM:      DefaultLLMConfig,
	RAG:      DefaultRAGConfig,
	Redis:    DefaultRedisConfig,
	Log:      zap.NewProductionConfig(),
}

type ServerConfig struct {
	Debug    bool          `yaml:"debug"`
	BindAddr string        `yaml:"bind_addr"`
	MongoDB  MongoDBConfig `yaml:"mongodb"`
	LLM      LLMConfig     `yaml:"llm"`
	RAG      RAGConfig     `yaml:"rag"`
	Redis    RedisConfig   `yaml:"redis"`
	Log      zap.Config    `yaml:"log"`
}

func (cfg ServerConfig) Validate() error {
	if cfg.BindAddr == "" {
		return fmt.Errorf("'bind_addr' is required")
	}
	if err := cfg.MongoDB.Validate(); err != nil {
		return fmt.Errorf("validate 'mongodb' field: %w", err)
	}
	if err := cfg.LLM.Validate(); err != nil {
		return fmt.Errorf("validate 'llm' field: %w", err)
	}
	if err := cfg.RAG.Validate(); err != nil {
		return fmt.Errorf("validate 'rag' field: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from the process environment.
// lookup has the signature of os.LookupEnv.
func (cfg *ServerConfig) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && v != "" {
				*dst = v
				return
			}
		}
	}
	set(&cfg.BindAddr, "BIND_ADDR")
	set(&cfg.MongoDB.URI, "MONGO_URI")
	set(&cfg.MongoDB.DB, "MONGO_DB")
	set(&cfg.RAG.URL, "RAG_SERVER_URL")
	set(&cfg.Redis.URL, "REDIS_URL")
	set(&cfg.LLM.Provider, "LLM_PROVIDER")
	set(&cfg.LLM.Model, "LLM_MODEL")
	switch strings.ToLower(cfg.LLM.Provider) {
	case LLMProviderOpenAI:
		set(&cfg.LLM.APIKey, "OPENAI_API_KEY")
	case LLMProviderAnthropic:
		set(&cfg.LLM.APIKey, "ANTHROPIC_API_KEY")
	default:
		set(&cfg.LLM.APIKey, "GEMINI_API_KEY", "GOOGLE_API_KEY")
	}
}

var DefaultMongoDBConfig = MongoDBConfig{
	URI:                   "mongodb://localhost:27017",
	DB:                    "stackable",
	UserCollection:        "users",
	AchievementCollection: "achievements",
	QuestCollection:       "quests",
	ActivityCollection:    "activity",
	TokenCollection:       "tokens",
	TradeCollection:       "trades",
}

type MongoDBConfig struct {
	URI                   string `yaml:"uri"`
	DB                    string `yaml:"db"`
	UserCollection        string `yaml:"user_collection"`
	AchievementCollection string `yaml:"achievement_collection"`
	QuestCollection       string `yaml:"quest_collection"`
	ActivityCollection    string `yaml:"activity_collection"`
	TokenCollection       string `yaml:"token_collection"`
	TradeCollection       string `yaml:"trade_collection"`
}

func (cfg MongoDBConfig) Validate() error {
	if cfg.URI == "" {
		return fmt.Errorf("'uri' is required")
	}
	if cfg.DB == "" {
		return fmt.Errorf("'db' is required")
	}
	return nil
}

const (
	LLMProviderGemini    = "gemini"
	LLMProviderOpenAI    = "openai"
	LLMProviderAnthropic = "anthropic"
)

var DefaultLLMConfig = LLMConfig{
	Provider:  LLMProviderGemini,
	MaxTokens: 1024,
}

type LLMConfig struct {
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model"`
	APIKey    string `yaml:"api_key"`
	BaseURL   string `yaml:"base_url"`
	MaxTokens int    `yaml:"max_tokens"`
}

func (cfg LLMConfig) Validate() error {
	switch strings.ToLower(cfg.Provider) {
	case LLMProviderGemini, LLMProviderOpenAI, LLMProviderAnthropic:
	default:
		return fmt.Errorf("unknown provider %q", cfg.Provider)
	}
	if cfg.MaxTokens < 0 {
		return fmt.Errorf("'max_tokens' must not be negative")
	}
	return nil
}

var DefaultRAGConfig = RAGConfig{
	URL:     "http://localhost:8000",
	Timeout: 20 * time.Second,
	TopK:    1,
}

type RAGConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
	TopK    int           `yaml:"top_k"`
}

func (cfg RAGConfig) Validate() error {
	if _, err := url.ParseRequestURI(cfg.URL); err != nil {
		return fmt.Errorf("parse 'url': %w", err)
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("'timeout' must be positive")
	}
	if cfg.TopK <= 0 {
		return fmt.Errorf("'top_k' must be positive")
	}
	return nil
}

var DefaultRedisConfig = RedisConfig{
	KeyPrefix: "stackable:intent:",
	TTL:       time.Hour,
}

// RedisConfig configures the optional classification cache.
// An empty URL disables it.
type RedisConfig struct {
	URL       string        `yaml:"url"`
	KeyPrefix string        `yaml:"key_prefix"`
	TTL       time.Duration `yaml:"ttl"`
}

func (cfg RedisConfig) Enabled() bool {
	return cfg.URL != ""
}
