package config

import (
	"strings"
	"testing"
)

func TestInitDefaults(t *testing.T) {
	cfg := Init()
	if cfg.BaseURL == "" {
		t.Fatal("base URL default missing")
	}
	if strings.HasSuffix(cfg.BaseURL, "/") {
		t.Errorf("base URL %q keeps trailing slash", cfg.BaseURL)
	}
	if TokenFilePath() == "" {
		t.Error("token path default missing")
	}
	if cfg.CachePath == "" {
		t.Error("cache path default missing")
	}
}

func TestBaseURLEnvOverride(t *testing.T) {
	t.Setenv("SWIFT_CLIENT_BASE_URL", "https://backend.example.com/")
	cfg := Init()
	if cfg.BaseURL != "https://backend.example.com" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
}
