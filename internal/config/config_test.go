package config

import (
	"testing"
	"time"
)

func TestLoadConfigEngineDefaults(t *testing.T) {
	for _, key := range []string{"ENGINE_MAX_DEPTH", "ENGINE_TIME_LIMIT_MS", "ENGINE_TT_SIZE", "ENGINE_DEFAULT_ALGORITHM"} {
		t.Setenv(key, "")
	}
	cfg := LoadConfig()
	want := EngineConfig{MaxDepth: 12, TimeLimit: 500 * time.Millisecond, TTSize: 1000000, DefaultAlgorithm: "iterdeep_moveorder"}
	if cfg.Engine != want {
		t.Fatalf("engine = %+v, want %+v", cfg.Engine, want)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("ENGINE_MAX_DEPTH", "8")
	t.Setenv("ENGINE_TIME_LIMIT_MS", "not-a-number")
	t.Setenv("FRONTEND_URL", "https://c4.example")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example ,,https://c4.example")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/c4")

	cfg := LoadConfig()
	if cfg.Engine.MaxDepth != 8 {
		t.Fatalf("max depth = %d", cfg.Engine.MaxDepth)
	}
	if cfg.Engine.TimeLimit != 500*time.Millisecond {
		t.Fatalf("bad integer should fall back, got %s", cfg.Engine.TimeLimit)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://a.example" {
		t.Fatalf("origins = %v", cfg.AllowedOrigins)
	}
	if cfg.DatabaseURL != "postgres://u:p@db:5432/c4?default_query_exec_mode=simple_protocol" {
		t.Fatalf("database url = %s", cfg.DatabaseURL)
	}
}

func TestGetEnvAsBool(t *testing.T) {
	t.Setenv("C4_FLAG", "true")
	if !GetEnvAsBool("C4_FLAG", false) {
		t.Fatalf("expected true")
	}
	t.Setenv("C4_FLAG", "maybe")
	if GetEnvAsBool("C4_FLAG", false) {
		t.Fatalf("bad value should fall back to default")
	}
}
