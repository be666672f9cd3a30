// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ModeDirect = "direct"
	ModeQueue  = "queue"

	StoreMemory = "memory"
	StoreRedis  = "redis"
)

type RuntimeConfig struct {
	Dev bool
}

type AppConfig struct {
	Port     int    `yaml:"port"`
	Timezone string `yaml:"timezone"`
	Mode     string `yaml:"mode"` // direct | queue

	// SessionSecret signs the session cookie. Empty means a random secret
	// per process, so sessions do not survive a restart.
	SessionSecret string        `yaml:"session_secret"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	SecureCookie  bool          `yaml:"secure_cookie"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AIConfig struct {
	OpenAIKey       string            `yaml:"openai_key"`
	OpenAIBaseURL   string            `yaml:"openai_base_url"`
	GeminiKey       string            `yaml:"gemini_key"`
	GeminiURL       string            `yaml:"gemini_url"`
	DefaultModel    string            `yaml:"default_model"`
	Temperature     float64           `yaml:"temperature"`
	MaxOutputTokens int               `yaml:"max_output_tokens"`
	ConcurrentLimit int               `yaml:"concurrent_limit"` // max concurrent AI calls
	ModelProviders  map[string]string `yaml:"model_providers"`  // model -> openai|gemini
}

type QueueConfig struct {
	BaseURL        string        `yaml:"base_url"`
	MaxAttempts    int           `yaml:"max_attempts"`
	Interval       time.Duration `yaml:"interval"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type LengthConfig struct {
	Low        int `yaml:"low"`
	High       int `yaml:"high"`
	// MaxRetries is nil when the key is absent (default 2). 0 or a negative
	// value disables corrective retries.
	MaxRetries *int `yaml:"max_retries"`
}

// Retries is the number of corrective calls allowed after the first one.
func (l LengthConfig) Retries() int {
	if l.MaxRetries == nil {
		return defaultMaxRetries
	}
	return max(*l.MaxRetries, 0)
}

const defaultMaxRetries = 2

type PromptConfig struct {
	TemplateFile string `yaml:"template_file"`
}

type WorkerConfig struct {
	Port    int    `yaml:"port"`
	Workers int    `yaml:"workers"`
	Store   string `yaml:"store"` // memory | redis
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type Config struct {
	App    AppConfig    `yaml:"app"`
	Log    LogConfig    `yaml:"log"`
	AI     AIConfig     `yaml:"ai"`
	Queue  QueueConfig  `yaml:"queue"`
	Length LengthConfig `yaml:"length"`
	Prompt PromptConfig `yaml:"prompt"`
	Worker WorkerConfig `yaml:"worker"`
	Redis  RedisConfig  `yaml:"redis"`

	Runtime RuntimeConfig `yaml:"-"`
}

// Load reads the YAML file at path. A missing file is not an error: defaults
// and environment overrides still apply, which is enough for -dev runs.
func Load(path string, dev bool) (*Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg.Runtime.Dev = dev

	applyEnv(&cfg)
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Parse is Load without the file system; used by tests and embedded configs.
func Parse(b []byte, dev bool) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Runtime.Dev = dev
	applyEnv(&cfg)
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.AI.OpenAIKey = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		cfg.AI.DefaultModel = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.AI.GeminiKey = v
	}
	if v := os.Getenv("WRITER_SESSION_SECRET"); v != "" {
		cfg.App.SessionSecret = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Port <= 0 {
		cfg.App.Port = 8080
	}
	if cfg.App.Timezone == "" {
		cfg.App.Timezone = "Asia/Tokyo"
	}
	cfg.App.Mode = strings.ToLower(strings.TrimSpace(cfg.App.Mode))
	if cfg.App.Mode == "" {
		cfg.App.Mode = ModeDirect
	}
	if cfg.App.SessionTTL <= 0 {
		cfg.App.SessionTTL = 24 * time.Hour
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.AI.DefaultModel == "" {
		cfg.AI.DefaultModel = "gpt-4.1"
	}
	if cfg.AI.Temperature <= 0 {
		cfg.AI.Temperature = 0.85
	}
	if cfg.AI.MaxOutputTokens <= 0 {
		cfg.AI.MaxOutputTokens = 4096
	}
	if cfg.AI.ConcurrentLimit <= 0 {
		cfg.AI.ConcurrentLimit = 4
	}
	if cfg.Queue.MaxAttempts <= 0 {
		cfg.Queue.MaxAttempts = 120
	}
	if cfg.Queue.Interval <= 0 {
		cfg.Queue.Interval = 2 * time.Second
	}
	if cfg.Queue.RequestTimeout <= 0 {
		cfg.Queue.RequestTimeout = 10 * time.Second
	}
	if cfg.Length.Low <= 0 {
		cfg.Length.Low = 1800
	}
	if cfg.Length.High <= 0 {
		cfg.Length.High = 2200
	}
	retries := cfg.Length.Retries()
	cfg.Length.MaxRetries = &retries
	if cfg.Worker.Port <= 0 {
		cfg.Worker.Port = 8090
	}
	if cfg.Worker.Workers <= 0 {
		cfg.Worker.Workers = 4
	}
	cfg.Worker.Store = strings.ToLower(strings.TrimSpace(cfg.Worker.Store))
	if cfg.Worker.Store == "" {
		cfg.Worker.Store = StoreMemory
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)
}

// Validate performs minimal validation after defaults are applied.
func (c *Config) Validate() error {
	switch c.App.Mode {
	case ModeDirect:
	case ModeQueue:
		if c.Queue.BaseURL == "" {
			return errors.New("queue.base_url is required when app.mode is queue")
		}
	default:
		return fmt.Errorf("app.mode must be %q or %q, got %q", ModeDirect, ModeQueue, c.App.Mode)
	}
	if c.Length.Low > c.Length.High {
		return fmt.Errorf("length.low (%d) must not exceed length.high (%d)", c.Length.Low, c.Length.High)
	}
	switch c.Worker.Store {
	case StoreMemory:
	case StoreRedis:
		if c.Redis.URL == "" {
			return errors.New("redis.url is required when worker.store is redis")
		}
	default:
		return fmt.Errorf("worker.store must be %q or %q, got %q", StoreMemory, StoreRedis, c.Worker.Store)
	}
	if !c.Runtime.Dev && c.App.Mode == ModeDirect && c.AI.OpenAIKey == "" && c.AI.GeminiKey == "" {
		return errors.New("no AI provider configured: set ai.openai_key or ai.gemini_key (or OPENAI_API_KEY)")
	}
	return nil
}

// Location resolves App.Timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
