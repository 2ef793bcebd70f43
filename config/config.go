// Package config loads the enumerated options the core recognizes (spec §6):
// defaults first, then an optional YAML file, then environment variables
// (including a .env file) as the final, highest-priority layer.
//
// Grounded on intelligencedev-manifold/internal/config/loader.go's layering
// order (defaults -> YAML -> env, env always wins) and its
// strings.TrimSpace(os.Getenv(...)) convention for reading overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ToolsConfig controls per-tool invocation behavior.
type ToolsConfig struct {
	Timeout       time.Duration `yaml:"timeout"`
	MaxRetries    int           `yaml:"max_retries"`
	UseTaskRouter bool          `yaml:"use_task_router"`
}

// PerformanceConfig controls the request-level cache.
type PerformanceConfig struct {
	CacheEnabled bool          `yaml:"cache_enabled"`
	CacheTTL     time.Duration `yaml:"cache_ttl"`
}

// ObservabilityConfig controls the TraceContext (spec §4.9).
type ObservabilityConfig struct {
	Enabled          bool `yaml:"enabled"`
	MaxEvents        int  `yaml:"max_events"`
	MaxPreview       int  `yaml:"max_preview"`
	IncludeInResponse bool `yaml:"include_in_response"`
}

// MemoryConfig controls the conversation log.
type MemoryConfig struct {
	ShortTermSize int `yaml:"short_term_size"`
}

// TaskConfig controls the overall per-request deadline.
type TaskConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// RedisConfig enables an optional shared cache backend (cache/rediscache).
type RedisConfig struct {
	Enabled               bool   `yaml:"enabled"`
	Addr                  string `yaml:"addr"`
	Password              string `yaml:"password"`
	DB                    int    `yaml:"db"`
	TLSInsecureSkipVerify bool   `yaml:"tls_insecure_skip_verify"`
}

// SearchConfig configures the built-in web-search tool's Brave Search
// client (tools/websearch.BraveSearcher).
type SearchConfig struct {
	Enabled bool   `yaml:"enabled"`
	APIKey  string `yaml:"api_key"`
}

// MongoConfig enables the optional trace export sink (trace/mongoexport).
type MongoConfig struct {
	Enabled    bool   `yaml:"enabled"`
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

// LLMConfig selects and configures the LLM collaborator adapter.
type LLMConfig struct {
	Provider string        `yaml:"provider"` // anthropic, openai, bedrock
	APIKey   string        `yaml:"api_key"`
	BaseURL  string        `yaml:"base_url"`
	Model    string        `yaml:"model"`
	Region   string        `yaml:"region"` // bedrock only
	Timeout  time.Duration `yaml:"timeout"`
}

// HTTPConfig controls the net/http server in httpapi/cmd/server.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// Config is the fully-resolved configuration consumed by cmd/server.
type Config struct {
	Tools         ToolsConfig         `yaml:"tools"`
	Performance   PerformanceConfig   `yaml:"performance"`
	Observability ObservabilityConfig `yaml:"observability"`
	Memory        MemoryConfig        `yaml:"memory"`
	Task          TaskConfig          `yaml:"task"`
	Redis         RedisConfig         `yaml:"redis"`
	Search        SearchConfig        `yaml:"search"`
	Mongo         MongoConfig         `yaml:"mongo"`
	LLM           LLMConfig           `yaml:"llm"`
	HTTP          HTTPConfig          `yaml:"http"`
}

// Default returns a Config populated with the spec's §6 default values.
func Default() Config {
	return Config{
		Tools: ToolsConfig{
			Timeout:       10 * time.Second,
			MaxRetries:    2,
			UseTaskRouter: false,
		},
		Performance: PerformanceConfig{
			CacheEnabled: true,
			CacheTTL:     3600 * time.Second,
		},
		Observability: ObservabilityConfig{
			Enabled:           false,
			MaxEvents:         200,
			MaxPreview:        500,
			IncludeInResponse: true,
		},
		Memory: MemoryConfig{ShortTermSize: 100},
		Task:   TaskConfig{Timeout: 300 * time.Second},
		Search: SearchConfig{Enabled: false},
		HTTP:   HTTPConfig{Addr: ":8080"},
	}
}

// Load builds a Config by layering defaults, an optional YAML file (path
// from RESEARCH_AGENT_CONFIG, defaulting to config.yaml if present), and
// environment variables (including a .env file loaded via godotenv). Env
// vars always win, matching the teacher's override order.
func Load() (Config, error) {
	_ = godotenv.Overload()

	cfg := Default()

	path := strings.TrimSpace(os.Getenv("RESEARCH_AGENT_CONFIG"))
	if path == "" {
		path = "config.yaml"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	applyEnvOverrides(&cfg)

	if cfg.LLM.Provider == "" {
		return Config{}, fmt.Errorf("llm.provider is required (set RESEARCH_AGENT_LLM_PROVIDER or llm.provider in %s)", path)
	}
	switch cfg.LLM.Provider {
	case "anthropic", "openai", "bedrock":
	default:
		return Config{}, fmt.Errorf("llm.provider must be one of anthropic, openai, bedrock (got %q)", cfg.LLM.Provider)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := envSeconds("RESEARCH_AGENT_TOOLS_TIMEOUT_SECONDS"); v > 0 {
		cfg.Tools.Timeout = v
	}
	if v := envInt("RESEARCH_AGENT_TOOLS_MAX_RETRIES"); v >= 0 {
		cfg.Tools.MaxRetries = v
	}
	if v := envBool("RESEARCH_AGENT_TOOLS_USE_TASK_ROUTER"); v != nil {
		cfg.Tools.UseTaskRouter = *v
	}
	if v := envBool("RESEARCH_AGENT_CACHE_ENABLED"); v != nil {
		cfg.Performance.CacheEnabled = *v
	}
	if v := envSeconds("RESEARCH_AGENT_CACHE_TTL_SECONDS"); v > 0 {
		cfg.Performance.CacheTTL = v
	}
	if v := envBool("RESEARCH_AGENT_OBSERVABILITY_ENABLED"); v != nil {
		cfg.Observability.Enabled = *v
	}
	if v := envInt("RESEARCH_AGENT_OBSERVABILITY_MAX_EVENTS"); v >= 0 {
		cfg.Observability.MaxEvents = v
	}
	if v := envInt("RESEARCH_AGENT_OBSERVABILITY_MAX_PREVIEW"); v >= 0 {
		cfg.Observability.MaxPreview = v
	}
	if v := envBool("RESEARCH_AGENT_OBSERVABILITY_INCLUDE_IN_RESPONSE"); v != nil {
		cfg.Observability.IncludeInResponse = *v
	}
	if v := envInt("RESEARCH_AGENT_MEMORY_SHORT_TERM_SIZE"); v >= 0 {
		cfg.Memory.ShortTermSize = v
	}
	if v := envSeconds("RESEARCH_AGENT_TASK_TIMEOUT_SECONDS"); v > 0 {
		cfg.Task.Timeout = v
	}

	if v := envBool("RESEARCH_AGENT_REDIS_ENABLED"); v != nil {
		cfg.Redis.Enabled = *v
	}
	if v := strings.TrimSpace(os.Getenv("RESEARCH_AGENT_REDIS_ADDR")); v != "" {
		cfg.Redis.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("RESEARCH_AGENT_REDIS_PASSWORD")); v != "" {
		cfg.Redis.Password = v
	}

	if v := envBool("RESEARCH_AGENT_SEARCH_ENABLED"); v != nil {
		cfg.Search.Enabled = *v
	}
	if v := strings.TrimSpace(os.Getenv("RESEARCH_AGENT_SEARCH_API_KEY")); v != "" {
		cfg.Search.APIKey = v
	}

	if v := envBool("RESEARCH_AGENT_MONGO_ENABLED"); v != nil {
		cfg.Mongo.Enabled = *v
	}
	if v := strings.TrimSpace(os.Getenv("RESEARCH_AGENT_MONGO_URI")); v != "" {
		cfg.Mongo.URI = v
	}
	if v := strings.TrimSpace(os.Getenv("RESEARCH_AGENT_MONGO_DATABASE")); v != "" {
		cfg.Mongo.Database = v
	}

	if v := strings.TrimSpace(os.Getenv("RESEARCH_AGENT_LLM_PROVIDER")); v != "" {
		cfg.LLM.Provider = v
	}
	if v := strings.TrimSpace(os.Getenv("RESEARCH_AGENT_LLM_API_KEY")); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("RESEARCH_AGENT_LLM_BASE_URL")); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("RESEARCH_AGENT_LLM_MODEL")); v != "" {
		cfg.LLM.Model = v
	}
	if v := strings.TrimSpace(os.Getenv("RESEARCH_AGENT_LLM_REGION")); v != "" {
		cfg.LLM.Region = v
	}
	if v := envSeconds("RESEARCH_AGENT_LLM_TIMEOUT_SECONDS"); v > 0 {
		cfg.LLM.Timeout = v
	}

	if v := strings.TrimSpace(os.Getenv("RESEARCH_AGENT_HTTP_ADDR")); v != "" {
		cfg.HTTP.Addr = v
	}
}

func envInt(key string) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return -1
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return n
}

func envSeconds(key string) time.Duration {
	n := envInt(key)
	if n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}

func envBool(key string) *bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	b := strings.EqualFold(v, "true") || v == "1" || strings.EqualFold(v, "yes")
	return &b
}
