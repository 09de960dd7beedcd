package model

import "time"

// Config is the host configuration for the riskline CLI
type Config struct {
	Documents   DocumentsConfig   `yaml:"documents"`
	HTTP        HTTPConfig        `yaml:"http"`
	Cache       CacheConfig       `yaml:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Output      OutputConfig      `yaml:"output"`
	Logger      LoggerConfig      `yaml:"logger"`
	LLM         LLMConfig         `yaml:"llm"`
}

// DocumentsConfig points at the rule, profile and global override documents.
// Empty paths use the embedded defaults.
type DocumentsConfig struct {
	Rules     string `yaml:"rules"`
	Profiles  string `yaml:"profiles"`
	Overrides string `yaml:"overrides"`
}

// HTTPConfig controls how answer documents are fetched from URLs
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	UserAgent    string        `yaml:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
}

// CacheConfig controls the document cache used for load fallback
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Dir       string        `yaml:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl"`
}

// ConcurrencyConfig controls batch processing
type ConcurrencyConfig struct {
	Workers           int     `yaml:"workers"`
	LockPollPerSecond float64 `yaml:"lock_poll_per_second"`
	LockPollBurst     int     `yaml:"lock_poll_burst"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	Verbose bool   `yaml:"verbose"`
	Dir     string `yaml:"dir"`
}

// LoggerConfig controls the hclog logger
type LoggerConfig struct {
	Level           string `yaml:"level"`
	JSONFormat      bool   `yaml:"json_format"`
	IncludeLocation bool   `yaml:"include_location"`
}

// LLMConfig configures the optional narrative candidate provider
type LLMConfig struct {
	Provider  string `yaml:"provider"` // openai, anthropic, ollama, "" (disabled)
	Model     string `yaml:"model"`
	APIKey    string `yaml:"-"`
	BaseURL   string `yaml:"base_url"`
	Timeout   int    `yaml:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens"`

	HTTPProxy  string `yaml:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy"`
	NoProxy    string `yaml:"no_proxy"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:      15 * time.Second,
			UserAgent:    "riskline/1.0",
			MaxBodyBytes: 5 * 1024 * 1024,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".riskline-cache",
			MemoryTTL: time.Hour,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers:           4,
			LockPollPerSecond: 4,
			LockPollBurst:     1,
		},
		Output: OutputConfig{
			Dir: "./riskline-reports",
		},
		Logger: LoggerConfig{
			Level: "INFO",
		},
		LLM: LLMConfig{
			Timeout:   30,
			MaxTokens: 400,
		},
	}
}
