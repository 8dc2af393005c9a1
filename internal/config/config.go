// Package config provides configuration loading and validation for the CLI.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up in the working directory when no path is given.
const DefaultPath = "resume_builder.yaml"

// EnvConfigPath names the environment variable that may point at a config file.
const EnvConfigPath = "RESUME_BUILDER_CONFIG"

// Provider names accepted in llm.provider
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config is the root configuration for the resume builder.
// All fields have defaults; a config file only needs to list overrides.
type Config struct {
	ResumesDir  string `validate:"required"`
	LLM         LLMConfig
	Fetch       FetchConfig
	CoverLetter CoverLetterConfig
	Log         LogConfig
}

// LLMConfig controls the chat-completion provider.
type LLMConfig struct {
	Provider    string            `validate:"oneof=openai gemini"`
	BaseURL     string            // optional; OpenAI-compatible endpoint override
	APIKey      string            // optional; normally resolved by ResolveAPIKey
	Timeout     time.Duration     `validate:"gt=0"`
	MaxTokens   int               `validate:"gt=0"`
	Temperature float32           `validate:"gte=0,lte=2"`
	Models      map[string]string // keyed by tier: lite, standard, advanced
}

// FetchConfig controls job posting scraping.
type FetchConfig struct {
	Timeout        time.Duration `validate:"gt=0"`
	UserAgent      string        `validate:"required"`
	UseBrowser     bool          // render with headless Chrome when the HTTP text is too short
	BrowserTimeout time.Duration `validate:"gt=0"`
}

// CoverLetterConfig controls cover letter post-processing.
type CoverLetterConfig struct {
	MaxNormalizePasses int `validate:"gte=1,lte=20"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level string `validate:"oneof=debug info warn error"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		ResumesDir: "resumes",
		LLM: LLMConfig{
			Provider:    ProviderOpenAI,
			Timeout:     180 * time.Second,
			MaxTokens:   15000,
			Temperature: 1,
		},
		Fetch: FetchConfig{
			Timeout:        30 * time.Second,
			UserAgent:      "Mozilla/5.0 (compatible; ResumeBuilder/1.0)",
			BrowserTimeout: 30 * time.Second,
		},
		CoverLetter: CoverLetterConfig{MaxNormalizePasses: 5},
		Log:         LogConfig{Level: "warn"},
	}
}

// rawConfig is used for YAML unmarshaling (snake_case fields, durations as strings,
// pointers where zero is a meaningful override).
type rawConfig struct {
	ResumesDir  string         `yaml:"resumes_dir"`
	LLM         rawLLMConfig   `yaml:"llm"`
	Fetch       rawFetchConfig `yaml:"fetch"`
	CoverLetter struct {
		MaxNormalizePasses int `yaml:"max_normalize_passes"`
	} `yaml:"cover_letter"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

type rawLLMConfig struct {
	Provider    string            `yaml:"provider"`
	BaseURL     string            `yaml:"base_url"`
	APIKey      string            `yaml:"api_key"`
	Timeout     string            `yaml:"timeout"`
	MaxTokens   int               `yaml:"max_tokens"`
	Temperature *float32          `yaml:"temperature"`
	Models      map[string]string `yaml:"models"`
}

type rawFetchConfig struct {
	Timeout        string `yaml:"timeout"`
	UserAgent      string `yaml:"user_agent"`
	UseBrowser     bool   `yaml:"use_browser"`
	BrowserTimeout string `yaml:"browser_timeout"`
}

// Load reads the YAML config file at path and applies it on top of Default().
// Environment variables referenced as ${VAR} in the file are expanded.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &raw); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg := Default()
	if raw.ResumesDir != "" {
		cfg.ResumesDir = raw.ResumesDir
	}

	if raw.LLM.Provider != "" {
		cfg.LLM.Provider = strings.ToLower(raw.LLM.Provider)
	}
	cfg.LLM.BaseURL = raw.LLM.BaseURL
	cfg.LLM.APIKey = raw.LLM.APIKey
	if err := parseDuration("llm.timeout", raw.LLM.Timeout, &cfg.LLM.Timeout); err != nil {
		return nil, err
	}
	if raw.LLM.MaxTokens != 0 {
		cfg.LLM.MaxTokens = raw.LLM.MaxTokens
	}
	if raw.LLM.Temperature != nil {
		cfg.LLM.Temperature = *raw.LLM.Temperature
	}
	if len(raw.LLM.Models) > 0 {
		cfg.LLM.Models = raw.LLM.Models
	}

	if err := parseDuration("fetch.timeout", raw.Fetch.Timeout, &cfg.Fetch.Timeout); err != nil {
		return nil, err
	}
	if err := parseDuration("fetch.browser_timeout", raw.Fetch.BrowserTimeout, &cfg.Fetch.BrowserTimeout); err != nil {
		return nil, err
	}
	if raw.Fetch.UserAgent != "" {
		cfg.Fetch.UserAgent = raw.Fetch.UserAgent
	}
	cfg.Fetch.UseBrowser = raw.Fetch.UseBrowser

	if raw.CoverLetter.MaxNormalizePasses != 0 {
		cfg.CoverLetter.MaxNormalizePasses = raw.CoverLetter.MaxNormalizePasses
	}
	if raw.Log.Level != "" {
		cfg.Log.Level = strings.ToLower(raw.Log.Level)
	}

	return cfg, nil
}

// Resolve finds and loads the config file.
// Priority: explicit path > RESUME_BUILDER_CONFIG > ./resume_builder.yaml.
// A missing default file is not an error; defaults are used instead.
// Environment overrides are applied and the result is validated.
func Resolve(path string) (*Config, error) {
	explicit := true
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		path = DefaultPath
		explicit = false
	}

	cfg, err := Load(path)
	if err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cfg = Default()
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides config values from RESUMES_DIR and LLM_PROVIDER.
func (c *Config) ApplyEnv() {
	if dir := os.Getenv("RESUMES_DIR"); dir != "" {
		c.ResumesDir = dir
	}
	if provider := os.Getenv("LLM_PROVIDER"); provider != "" {
		c.LLM.Provider = strings.ToLower(provider)
	}
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	for tier := range c.LLM.Models {
		switch tier {
		case "lite", "standard", "advanced":
		default:
			return fmt.Errorf("config error: unknown model tier %q in llm.models", tier)
		}
	}
	return nil
}

// SlogLevel maps Log.Level to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// ErrNoAPIKey is returned when no API key can be found for the configured provider.
var ErrNoAPIKey = errors.New("no API key provided")

// APIKeyEnv returns the environment variable holding the key for a provider.
func APIKeyEnv(provider string) string {
	if provider == ProviderGemini {
		return "GEMINI_API_KEY"
	}
	return "OPENAI_API_KEY"
}

// APIKeyFile returns the plaintext key file name for a provider.
func APIKeyFile(provider string) string {
	return provider + "-api-key.txt"
}

// ResolveAPIKey returns the API key for the configured provider.
// Priority: llm.api_key > provider environment variable > key file in dir.
func (c *Config) ResolveAPIKey(dir string) (string, error) {
	if c.LLM.APIKey != "" {
		return c.LLM.APIKey, nil
	}
	if key := strings.TrimSpace(os.Getenv(APIKeyEnv(c.LLM.Provider))); key != "" {
		return key, nil
	}

	keyPath := filepath.Join(dir, APIKeyFile(c.LLM.Provider))
	data, err := os.ReadFile(keyPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: set %s or create %s", ErrNoAPIKey, APIKeyEnv(c.LLM.Provider), keyPath)
		}
		return "", fmt.Errorf("read API key file: %w", err)
	}
	key := strings.TrimSpace(string(data))
	if key == "" {
		return "", fmt.Errorf("%w: %s is empty", ErrNoAPIKey, keyPath)
	}
	return key, nil
}

func parseDuration(field, value string, dst *time.Duration) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s %q: %w", field, value, err)
	}
	*dst = d
	return nil
}
