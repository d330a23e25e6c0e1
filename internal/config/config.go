// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/portal-tui/internal/util"
)

// DirName is the name of the configuration directory under $HOME.
const DirName = ".portal"

// TokenKey is the fixed storage key of the persisted bearer token. The
// default token file is named after it.
const TokenKey = "token"

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete portal configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	API    APIConfig    `toml:"api" json:"api"`
	Auth   AuthConfig   `toml:"auth" json:"auth"`
	UI     UIConfig     `toml:"ui" json:"ui"`
	Log    LogConfig    `toml:"log" json:"log"`
	Export ExportConfig `toml:"export" json:"export"`
	Server ServerConfig `toml:"server" json:"server"`
}

// APIConfig configures the client side of the backend contract.
type APIConfig struct {
	// BaseURL of the AI platform backend (default: http://localhost:8000)
	BaseURL string `toml:"base_url" json:"base_url"`
	// TimeoutSecs bounds each request. 0 means no client-side timeout.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
}

// AuthConfig configures where the identity token lives.
type AuthConfig struct {
	// TokenFile is the path of the persisted bearer token.
	TokenFile string `toml:"token_file" json:"token_file"`
	// WatchToken makes the TUI follow logins/logouts done by other processes.
	WatchToken bool `toml:"watch_token" json:"watch_token"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "auto", "dark", "light"
	Theme string `toml:"theme" json:"theme"`
	// RenderMarkdown renders assistant replies with glamour
	RenderMarkdown bool `toml:"render_markdown" json:"render_markdown"`
	// SidebarWidth in columns
	SidebarWidth int `toml:"sidebar_width" json:"sidebar_width"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `toml:"level" json:"level"`
	// File receives TUI and CLI logs; the terminal belongs to the UI.
	File string `toml:"file" json:"file"`
	// Mode selects the zap preset: "dev" or "prod"
	Mode string `toml:"mode" json:"mode"`
}

// ExportConfig sets defaults for chat exports.
type ExportConfig struct {
	// Dir is where exported files are written (default: current directory)
	Dir string `toml:"dir" json:"dir"`
	// Format is json, yaml or markdown
	Format string `toml:"format" json:"format"`
}

// ServerConfig configures the development backend started by `portal serve`.
type ServerConfig struct {
	Host string `toml:"host" json:"host"`
	Port int    `toml:"port" json:"port"`
	// JWTSecret signs bearer tokens. Must be changed outside development.
	JWTSecret     string `toml:"jwt_secret" json:"jwt_secret"`
	TokenTTLHours int    `toml:"token_ttl_hours" json:"token_ttl_hours"`
	// Database is the SQLite file holding users and chat records.
	Database string `toml:"database" json:"database"`
	// RateLimitPerMinute per client IP; 0 disables rate limiting.
	RateLimitPerMinute int      `toml:"rate_limit_per_minute" json:"rate_limit_per_minute"`
	CORSOrigins        []string `toml:"cors_origins" json:"cors_origins"`
	// ReplyMode is "demo" (canned reply) or "ollama"
	ReplyMode   string `toml:"reply_mode" json:"reply_mode"`
	OllamaURL   string `toml:"ollama_url" json:"ollama_url"`
	OllamaModel string `toml:"ollama_model" json:"ollama_model"`
}

// DefaultJWTSecret is the development signing secret.
const DefaultJWTSecret = "your-secret-key-change-this-in-production"

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with default values.
func Default() *Config {
	dir, err := ConfigDir()
	if err != nil {
		dir = filepath.Join(".", DirName)
	}

	return &Config{
		Version: "1.0.0",

		API: APIConfig{
			BaseURL:     "http://localhost:8000",
			TimeoutSecs: 0,
		},

		Auth: AuthConfig{
			TokenFile:  filepath.Join(dir, TokenKey),
			WatchToken: true,
		},

		UI: UIConfig{
			Theme:          "auto",
			RenderMarkdown: true,
			SidebarWidth:   26,
		},

		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(dir, "portal.log"),
			Mode:  "dev",
		},

		Export: ExportConfig{
			Dir:    ".",
			Format: "json",
		},

		Server: ServerConfig{
			Host:               "127.0.0.1",
			Port:               8000,
			JWTSecret:          DefaultJWTSecret,
			TokenTTLHours:      30 * 24,
			Database:           filepath.Join(dir, "portal.db"),
			RateLimitPerMinute: 120,
			CORSOrigins:        []string{"http://localhost:5173"},
			ReplyMode:          "demo",
			OllamaURL:          "http://127.0.0.1:11434",
			OllamaModel:        "llama3.2",
		},
	}
}

// RequestTimeout returns the configured client timeout; zero means none.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.API.TimeoutSecs) * time.Second
}

// TokenTTL returns the lifetime of tokens issued by the dev backend.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Server.TokenTTLHours) * time.Hour
}

// ServerAddr returns host:port for the dev backend.
func (c *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the portal configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, DirName), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
//
// When a file exists but cannot be decoded, the defaults are returned
// together with the decode error so callers can warn and carry on.
func Load() (*Config, error) {
	var loadErr error

	if tomlPath, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			cfg, err := LoadFromPath(tomlPath)
			if err == nil {
				return cfg, nil
			}
			loadErr = err
		}
	}

	if loadErr == nil {
		if jsonPath, err := ConfigPathJSON(); err == nil {
			if _, statErr := os.Stat(jsonPath); statErr == nil {
				cfg, err := LoadFromPath(jsonPath)
				if err == nil {
					return cfg, nil
				}
				loadErr = err
			}
		}
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, loadErr
}

// LoadTOML decodes a TOML file on top of cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON decodes a JSON file on top of cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from a specific file with full
// validation. Values missing from the file keep their defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes cfg as TOML with 0600 permissions. The server section
// carries the JWT secret.
func SaveTOML(cfg *Config, path string) error {
	var b strings.Builder
	b.WriteString("# portal configuration file\n")
	b.WriteString("# Generated by portal - edit with care\n\n")

	if err := toml.NewEncoder(&b).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "api.base_url",
			Message: fmt.Sprintf("invalid URL '%s'", c.API.BaseURL),
		})
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, ValidationError{
			Field:   "api.base_url",
			Message: fmt.Sprintf("unsupported scheme '%s', must be http or https", u.Scheme),
		})
	}

	if c.API.TimeoutSecs < 0 {
		errs = append(errs, ValidationError{Field: "api.timeout_secs", Message: "cannot be negative"})
	}

	if strings.TrimSpace(c.Auth.TokenFile) == "" {
		errs = append(errs, ValidationError{Field: "auth.token_file", Message: "cannot be empty"})
	}

	switch strings.ToLower(c.UI.Theme) {
	case "auto", "dark", "light":
	default:
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: auto, dark, light", c.UI.Theme),
		})
	}

	if c.UI.SidebarWidth < 16 || c.UI.SidebarWidth > 60 {
		errs = append(errs, ValidationError{Field: "ui.sidebar_width", Message: "must be between 16 and 60"})
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level),
		})
	}

	switch strings.ToLower(c.Log.Mode) {
	case "dev", "prod":
	default:
		errs = append(errs, ValidationError{Field: "log.mode", Message: "must be dev or prod"})
	}

	switch strings.ToLower(c.Export.Format) {
	case "json", "yaml", "markdown":
	default:
		errs = append(errs, ValidationError{
			Field:   "export.format",
			Message: fmt.Sprintf("invalid format '%s', must be one of: json, yaml, markdown", c.Export.Format),
		})
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, ValidationError{Field: "server.port", Message: "must be between 1 and 65535"})
	}
	if c.Server.TokenTTLHours <= 0 {
		errs = append(errs, ValidationError{Field: "server.token_ttl_hours", Message: "must be positive"})
	}
	if c.Server.RateLimitPerMinute < 0 {
		errs = append(errs, ValidationError{Field: "server.rate_limit_per_minute", Message: "cannot be negative"})
	}
	if len(c.Server.JWTSecret) < 16 {
		errs = append(errs, ValidationError{Field: "server.jwt_secret", Message: "must be at least 16 characters"})
	}
	switch strings.ToLower(c.Server.ReplyMode) {
	case "demo", "ollama":
	default:
		errs = append(errs, ValidationError{
			Field:   "server.reply_mode",
			Message: fmt.Sprintf("invalid mode '%s', must be demo or ollama", c.Server.ReplyMode),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills zero values with defaults.
func (c *Config) SetDefaults() {
	d := Default()

	if c.Version == "" {
		c.Version = d.Version
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = d.API.BaseURL
	}
	c.API.BaseURL = strings.TrimSuffix(c.API.BaseURL, "/")
	if c.Auth.TokenFile == "" {
		c.Auth.TokenFile = d.Auth.TokenFile
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
	if c.UI.SidebarWidth == 0 {
		c.UI.SidebarWidth = d.UI.SidebarWidth
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.File == "" {
		c.Log.File = d.Log.File
	}
	if c.Log.Mode == "" {
		c.Log.Mode = d.Log.Mode
	}
	if c.Export.Dir == "" {
		c.Export.Dir = d.Export.Dir
	}
	if c.Export.Format == "" {
		c.Export.Format = d.Export.Format
	}
	if c.Server.Host == "" {
		c.Server.Host = d.Server.Host
	}
	if c.Server.Port == 0 {
		c.Server.Port = d.Server.Port
	}
	if c.Server.JWTSecret == "" {
		c.Server.JWTSecret = d.Server.JWTSecret
	}
	if c.Server.TokenTTLHours == 0 {
		c.Server.TokenTTLHours = d.Server.TokenTTLHours
	}
	if c.Server.Database == "" {
		c.Server.Database = d.Server.Database
	}
	if c.Server.ReplyMode == "" {
		c.Server.ReplyMode = d.Server.ReplyMode
	}
	if c.Server.OllamaURL == "" {
		c.Server.OllamaURL = d.Server.OllamaURL
	}
	if c.Server.OllamaModel == "" {
		c.Server.OllamaModel = d.Server.OllamaModel
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides.
//
// Supported variables:
//   - PORTAL_API_URL: overrides api.base_url
//   - PORTAL_TOKEN_FILE: overrides auth.token_file
//   - PORTAL_LOG_LEVEL: overrides log.level
//   - PORTAL_THEME: overrides ui.theme
//   - PORTAL_JWT_SECRET: overrides server.jwt_secret
//   - PORTAL_PORT: overrides server.port
//   - PORTAL_OLLAMA_URL: overrides server.ollama_url
//   - PORTAL_REPLY_MODE: overrides server.reply_mode
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("PORTAL_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("PORTAL_TOKEN_FILE"); v != "" {
		c.Auth.TokenFile = v
	}
	if v := os.Getenv("PORTAL_LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("PORTAL_THEME"); v != "" {
		c.UI.Theme = strings.ToLower(v)
	}
	if v := os.Getenv("PORTAL_JWT_SECRET"); v != "" {
		c.Server.JWTSecret = v
	}
	if v := os.Getenv("PORTAL_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("PORTAL_OLLAMA_URL"); v != "" {
		c.Server.OllamaURL = v
	}
	if v := os.Getenv("PORTAL_REPLY_MODE"); v != "" {
		c.Server.ReplyMode = strings.ToLower(v)
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// Clone returns a deep copy of the config.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Server.CORSOrigins = append([]string(nil), c.Server.CORSOrigins...)
	return &clone
}

// String returns the config as indented JSON with the JWT secret redacted.
func (c *Config) String() string {
	safe := c.Clone()
	if safe.Server.JWTSecret != "" {
		safe.Server.JWTSecret = "[REDACTED]"
	}
	data, _ := json.MarshalIndent(safe, "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
		if cfg == nil {
			cfg = Default()
		}
		globalConfigMu.Lock()
		globalConfig = cfg
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
	return nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
