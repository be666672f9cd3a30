package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENAI_MODEL", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("WRITER_SESSION_SECRET", "")
}

func TestParse_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Parse([]byte("ai:\n  openai_key: sk-test\n"), false)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.App.Mode != ModeDirect || cfg.App.Port != 8080 || cfg.App.Timezone != "Asia/Tokyo" {
		t.Fatalf("app defaults wrong: %+v", cfg.App)
	}
	if cfg.Length.Low != 1800 || cfg.Length.High != 2200 || cfg.Length.Retries() != 2 {
		t.Fatalf("length defaults wrong: %+v", cfg.Length)
	}
	if cfg.Queue.MaxAttempts != 120 || cfg.Queue.Interval != 2*time.Second {
		t.Fatalf("queue defaults wrong: %+v", cfg.Queue)
	}
	if cfg.AI.DefaultModel != "gpt-4.1" || cfg.AI.Temperature != 0.85 {
		t.Fatalf("ai defaults wrong: %+v", cfg.AI)
	}
	if cfg.App.SessionTTL != 24*time.Hour || cfg.App.SessionSecret != "" {
		t.Fatalf("session defaults wrong: %+v", cfg.App)
	}
	if cfg.Redis.TTL != time.Hour || cfg.Worker.Store != StoreMemory {
		t.Fatalf("worker defaults wrong: %+v %+v", cfg.Worker, cfg.Redis)
	}
}

func TestParse_MaxRetries(t *testing.T) {
	clearEnv(t)
	cases := []struct {
		yaml string
		want int
	}{
		{"length:\n  low: 1800\n", 2},
		{"length:\n  max_retries: 0\n", 0},
		{"length:\n  max_retries: -1\n", 0},
		{"length:\n  max_retries: 5\n", 5},
	}
	for _, tc := range cases {
		cfg, err := Parse([]byte(tc.yaml), true)
		if err != nil {
			t.Fatalf("%q: unexpected err: %v", tc.yaml, err)
		}
		if got := cfg.Length.Retries(); got != tc.want {
			t.Fatalf("%q: expected %d retries, got %d", tc.yaml, tc.want, got)
		}
		if cfg.Length.MaxRetries == nil || *cfg.Length.MaxRetries != tc.want {
			t.Fatalf("%q: defaults should pin max_retries to %d", tc.yaml, tc.want)
		}
	}
}

func TestParse_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("OPENAI_MODEL", "gpt-4o-mini")
	cfg, err := Parse([]byte("ai:\n  openai_key: sk-file\n"), false)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.AI.OpenAIKey != "sk-env" || cfg.AI.DefaultModel != "gpt-4o-mini" {
		t.Fatalf("env not applied: %+v", cfg.AI)
	}
}

func TestParse_Validation(t *testing.T) {
	clearEnv(t)
	cases := []struct {
		name string
		yaml string
		dev  bool
		want string
	}{
		{"no key in prod", "app:\n  mode: direct\n", false, "no AI provider"},
		{"queue without url", "app:\n  mode: queue\n", true, "queue.base_url"},
		{"bad mode", "app:\n  mode: carrier-pigeon\n", true, "app.mode"},
		{"inverted band", "length:\n  low: 3000\n  high: 2000\n", true, "length.low"},
		{"redis without url", "worker:\n  store: redis\n", true, "redis.url"},
	}
	for _, tc := range cases {
		_, err := Parse([]byte(tc.yaml), tc.dev)
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: expected error containing %q, got %v", tc.name, tc.want, err)
		}
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), true)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !cfg.Runtime.Dev || cfg.App.Mode != ModeDirect {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "app:\n  mode: queue\nqueue:\n  base_url: http://worker:8090\n  interval: 500ms\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path, true)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.Queue.BaseURL != "http://worker:8090" || cfg.Queue.Interval != 500*time.Millisecond {
		t.Fatalf("queue not loaded: %+v", cfg.Queue)
	}
	if cfg.Location().String() == "" {
		t.Fatal("location should resolve")
	}
}
