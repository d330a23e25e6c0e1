// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// isolateHome points HOME at a temp dir so Load never sees the developer's
// real ~/.portal.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	for _, k := range []string{
		"PORTAL_API_URL", "PORTAL_TOKEN_FILE", "PORTAL_LOG_LEVEL", "PORTAL_THEME",
		"PORTAL_JWT_SECRET", "PORTAL_PORT", "PORTAL_OLLAMA_URL", "PORTAL_REPLY_MODE",
	} {
		t.Setenv(k, "")
	}
	return home
}

// TestConfig_ConcurrentAccess tests that Global(), SetGlobal(), and ReloadGlobal()
// can be safely called concurrently without race conditions.
// Run with: go test -race -v ./internal/config/
func TestConfig_ConcurrentAccess(t *testing.T) {
	isolateHome(t)
	ResetGlobalForTesting()

	var wg sync.WaitGroup

	// 50 writers using SetGlobal, 50 readers using Global
	for i := 0; i < 50; i++ {
		wg.Add(2)

		go func() {
			defer wg.Done()
			c := Default()
			c.Version = "test"
			SetGlobal(c)
		}()

		go func() {
			defer wg.Done()
			if Global() == nil {
				t.Error("Global() returned nil")
			}
		}()
	}

	wg.Wait()
}

// TestConfig_ConcurrentReload tests concurrent ReloadGlobal and Global calls.
func TestConfig_ConcurrentReload(t *testing.T) {
	isolateHome(t)
	ResetGlobalForTesting()
	_ = Global()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = ReloadGlobal()
		}()
	}
	for i := 0; i < 80; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if Global() == nil {
				t.Error("Global() returned nil")
			}
		}()
	}
	wg.Wait()
}

func TestConfig_SetGlobalOverwrites(t *testing.T) {
	isolateHome(t)
	ResetGlobalForTesting()
	defer ResetGlobalForTesting()

	c := Default()
	c.API.BaseURL = "http://example.test:9000"
	SetGlobal(c)

	if got := Global().API.BaseURL; got != "http://example.test:9000" {
		t.Errorf("Global().API.BaseURL = %q, want overwritten value", got)
	}
}

func TestConfig_Default(t *testing.T) {
	home := isolateHome(t)
	cfg := Default()

	if cfg.API.BaseURL != "http://localhost:8000" {
		t.Errorf("API.BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.TimeoutSecs != 0 || cfg.RequestTimeout() != 0 {
		t.Errorf("default request timeout should be zero, got %v", cfg.RequestTimeout())
	}
	if want := filepath.Join(home, DirName, TokenKey); cfg.Auth.TokenFile != want {
		t.Errorf("Auth.TokenFile = %q, want %q", cfg.Auth.TokenFile, want)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.TokenTTL() != 30*24*time.Hour {
		t.Errorf("TokenTTL = %v, want 30 days", cfg.TokenTTL())
	}
	if cfg.Server.ReplyMode != "demo" {
		t.Errorf("Server.ReplyMode = %q, want demo", cfg.Server.ReplyMode)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		field   string
		wantErr bool
	}{
		{"valid default", func(c *Config) {}, "", false},
		{"bad url", func(c *Config) { c.API.BaseURL = "not a url" }, "api.base_url", true},
		{"ftp scheme", func(c *Config) { c.API.BaseURL = "ftp://host" }, "api.base_url", true},
		{"negative timeout", func(c *Config) { c.API.TimeoutSecs = -1 }, "api.timeout_secs", true},
		{"empty token file", func(c *Config) { c.Auth.TokenFile = "  " }, "auth.token_file", true},
		{"bad theme", func(c *Config) { c.UI.Theme = "neon" }, "ui.theme", true},
		{"narrow sidebar", func(c *Config) { c.UI.SidebarWidth = 4 }, "ui.sidebar_width", true},
		{"bad level", func(c *Config) { c.Log.Level = "trace" }, "log.level", true},
		{"bad export format", func(c *Config) { c.Export.Format = "csv" }, "export.format", true},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "server.port", true},
		{"short secret", func(c *Config) { c.Server.JWTSecret = "short" }, "server.jwt_secret", true},
		{"bad reply mode", func(c *Config) { c.Server.ReplyMode = "gpt" }, "server.reply_mode", true},
		{"ollama mode", func(c *Config) { c.Server.ReplyMode = "ollama" }, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				return
			}
			verrs, ok := err.(ValidateErrors)
			if !ok {
				t.Fatalf("error type = %T, want ValidateErrors", err)
			}
			found := false
			for _, e := range verrs {
				if e.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("no error for field %s in %v", tt.field, verrs)
			}
		})
	}
}

func TestConfig_EnvOverrides(t *testing.T) {
	isolateHome(t)
	t.Setenv("PORTAL_API_URL", "https://ai.example.com")
	t.Setenv("PORTAL_LOG_LEVEL", "DEBUG")
	t.Setenv("PORTAL_PORT", "9090")
	t.Setenv("PORTAL_REPLY_MODE", "Ollama")
	t.Setenv("PORTAL_JWT_SECRET", "an-env-provided-secret")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.API.BaseURL != "https://ai.example.com" {
		t.Errorf("API.BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want lowercased debug", cfg.Log.Level)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d", cfg.Server.Port)
	}
	if cfg.Server.ReplyMode != "ollama" {
		t.Errorf("Server.ReplyMode = %q", cfg.Server.ReplyMode)
	}
	if cfg.Server.JWTSecret != "an-env-provided-secret" {
		t.Errorf("Server.JWTSecret not overridden")
	}
}

func TestConfig_EnvOverrideBadPortIgnored(t *testing.T) {
	isolateHome(t)
	t.Setenv("PORTAL_PORT", "eighty")

	cfg := Default()
	cfg.ApplyEnvOverrides()
	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d, want default kept", cfg.Server.Port)
	}
}

func TestConfig_SaveAndLoadTOML(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.API.BaseURL = "http://10.0.0.5:8000/"
	cfg.UI.Theme = "dark"
	cfg.Server.CORSOrigins = []string{"http://a.test", "http://b.test"}

	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 && os.PathSeparator == '/' {
		t.Errorf("config perm = %o, want 0600", perm)
	}

	data, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(data), "# portal configuration file") {
		t.Errorf("missing header comment")
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if loaded.API.BaseURL != "http://10.0.0.5:8000" {
		t.Errorf("trailing slash should be trimmed, got %q", loaded.API.BaseURL)
	}
	if loaded.UI.Theme != "dark" {
		t.Errorf("UI.Theme = %q", loaded.UI.Theme)
	}
	if len(loaded.Server.CORSOrigins) != 2 {
		t.Errorf("CORSOrigins = %v", loaded.Server.CORSOrigins)
	}
}

func TestConfig_LoadPartialTOMLKeepsDefaults(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[ui]\ntheme = \"light\"\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("UI.Theme = %q", cfg.UI.Theme)
	}
	if cfg.API.BaseURL != "http://localhost:8000" || cfg.Server.Port != 8000 {
		t.Errorf("defaults lost: %s", cfg)
	}
}

func TestConfig_LoadJSON(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"api":{"base_url":"http://json.test"},"export":{"format":"yaml"}}`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.API.BaseURL != "http://json.test" || cfg.Export.Format != "yaml" {
		t.Errorf("unexpected config: %s", cfg)
	}
}

func TestConfig_LoadInvalidFileFallsBack(t *testing.T) {
	home := isolateHome(t)
	dir := filepath.Join(home, DirName)
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[api\nbroken"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err == nil {
		t.Fatal("expected decode error to be reported")
	}
	if cfg == nil || cfg.API.BaseURL != "http://localhost:8000" {
		t.Fatalf("expected defaults alongside error, got %v", cfg)
	}
}

func TestConfig_StringRedactsSecret(t *testing.T) {
	cfg := Default()
	cfg.Server.JWTSecret = "super-secret-signing-key"

	s := cfg.String()
	if strings.Contains(s, "super-secret-signing-key") {
		t.Error("String() leaked jwt secret")
	}
	if !strings.Contains(s, "[REDACTED]") {
		t.Error("String() should mark the secret as redacted")
	}
	if cfg.Server.JWTSecret != "super-secret-signing-key" {
		t.Error("String() must not mutate the receiver")
	}
}

func TestConfig_Clone(t *testing.T) {
	cfg := Default()
	clone := cfg.Clone()
	clone.Server.CORSOrigins[0] = "http://changed.test"
	clone.API.BaseURL = "http://other.test"

	if cfg.Server.CORSOrigins[0] == "http://changed.test" {
		t.Error("Clone shares CORSOrigins backing array")
	}
	if cfg.API.BaseURL == "http://other.test" {
		t.Error("Clone shares scalar fields")
	}
}
