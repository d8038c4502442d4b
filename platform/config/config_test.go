package config

import "testing"

func setRequiredEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/portal")
	t.Setenv("OPENAI_API_KEY", "sk-test")
}

func TestLoadRequiresOpenAIKey(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("OPENAI_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load() error = nil, want OPENAI_API_KEY error")
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load() error = nil, want DATABASE_URL error")
	}
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GOOGLE_MAPS_API_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTPAddr != ":3001" {
		t.Errorf("HTTPAddr = %q, want :3001", cfg.HTTPAddr)
	}
	if cfg.OpenAIModel != "gpt-4" {
		t.Errorf("OpenAIModel = %q, want gpt-4", cfg.OpenAIModel)
	}
	if cfg.IsGeocodeEnabled() {
		t.Error("geocoding should be disabled without an API key")
	}
}

func TestLoadRejectsCredentialedWildcardCORS(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CORS_ALLOW_ALL", "true")
	t.Setenv("CORS_ALLOW_CREDENTIALS", "true")

	if _, err := Load(); err == nil {
		t.Fatal("Load() error = nil, want CORS conflict error")
	}
}
