package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application settings. It is built once at startup and
// passed by value afterwards.
type Config struct {
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
	Port        int    `mapstructure:"port"`

	LLM struct {
		Provider        string        `mapstructure:"provider"`
		Model           string        `mapstructure:"model"`
		APIKey          string        `mapstructure:"api_key"`
		BaseURL         string        `mapstructure:"base_url"`
		Temperature     float64       `mapstructure:"temperature"`
		MaxOutputTokens int           `mapstructure:"max_output_tokens"`
		RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	} `mapstructure:"llm"`

	Defaults struct {
		Tone      string `mapstructure:"tone"`
		Audience  string `mapstructure:"audience"`
		PostCount int    `mapstructure:"post_count"`
	} `mapstructure:"defaults"`

	Content struct {
		Blocklist         []string `mapstructure:"blocklist"`
		MinLength         int      `mapstructure:"min_length"`
		MaxLength         int      `mapstructure:"max_length"`
		TargetMinLength   int      `mapstructure:"target_min_length"`
		TargetMaxLength   int      `mapstructure:"target_max_length"`
		RegenerateFlagged bool     `mapstructure:"regenerate_flagged"`
	} `mapstructure:"content"`
}

// ConfigurationError reports a missing or invalid setting. Variable is the
// environment variable the user has to fix.
type ConfigurationError struct {
	Variable string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s %s", e.Variable, e.Reason)
}

// Options control where Load looks for settings besides the environment.
type Options struct {
	EnvFile    string
	ConfigFile string
	Provider   string
}

// APIKeyVariable returns the environment variable holding the key for provider.
func APIKeyVariable(provider string) string {
	switch strings.ToLower(provider) {
	case "openai":
		return "OPENAI_API_KEY"
	case "deepseek":
		return "DEEPSEEK_API_KEY"
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	case "mock":
		return ""
	default:
		return "GEMINI_API_KEY"
	}
}

var defaultModels = map[string]string{
	"gemini":    "gemini-1.5-flash",
	"openai":    "gpt-4o-mini",
	"deepseek":  "deepseek-chat",
	"anthropic": "claude-3-5-haiku-latest",
	"mock":      "mock-1",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("debug", false)
	v.SetDefault("port", 8501)
	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_output_tokens", 2048)
	v.SetDefault("llm.request_timeout", 90*time.Second)
	v.SetDefault("defaults.tone", "Professional")
	v.SetDefault("defaults.audience", "General Professionals")
	v.SetDefault("defaults.post_count", 3)
	v.SetDefault("content.min_length", 100)
	v.SetDefault("content.max_length", 3000)
	v.SetDefault("content.target_min_length", 1000)
	v.SetDefault("content.target_max_length", 1300)
	v.SetDefault("content.regenerate_flagged", true)
	v.SetDefault("content.blocklist", []string{})
}

// flat environment variable names for each nested key
var envBindings = map[string]string{
	"environment":                "ENVIRONMENT",
	"debug":                      "DEBUG",
	"port":                       "PORT",
	"llm.provider":               "LLM_PROVIDER",
	"llm.model":                  "LLM_MODEL",
	"llm.base_url":               "LLM_BASE_URL",
	"llm.temperature":            "LLM_TEMPERATURE",
	"llm.max_output_tokens":      "LLM_MAX_OUTPUT_TOKENS",
	"llm.request_timeout":        "REQUEST_TIMEOUT",
	"defaults.tone":              "DEFAULT_TONE",
	"defaults.audience":          "DEFAULT_AUDIENCE",
	"defaults.post_count":        "DEFAULT_POST_COUNT",
	"content.blocklist":          "CONTENT_BLOCKLIST",
	"content.min_length":         "CONTENT_MIN_LENGTH",
	"content.max_length":         "CONTENT_MAX_LENGTH",
	"content.regenerate_flagged": "REGENERATE_FLAGGED",
}

// Load reads settings from an optional .env file, an optional YAML config
// file and the environment, in increasing order of precedence. It fails when
// the API key for the selected provider is absent. On a validation failure the
// resolved Config is still returned alongside the ConfigurationError.
func Load(opts Options) (Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
		if _, err := os.Stat(envFile); err != nil {
			envFile = ""
		}
	}
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, err
		}
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", opts.ConfigFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if opts.Provider != "" {
		cfg.LLM.Provider = opts.Provider
	}
	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = defaultModels[cfg.LLM.Provider]
	}
	cfg.Content.Blocklist = normalizeBlocklist(cfg.Content.Blocklist)

	if keyVar := APIKeyVariable(cfg.LLM.Provider); keyVar != "" {
		cfg.LLM.APIKey = strings.TrimSpace(os.Getenv(keyVar))
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the values Load cannot default.
func (c Config) Validate() error {
	if _, ok := defaultModels[c.LLM.Provider]; !ok {
		return &ConfigurationError{Variable: "LLM_PROVIDER", Reason: fmt.Sprintf("has unsupported value %q", c.LLM.Provider)}
	}
	if keyVar := APIKeyVariable(c.LLM.Provider); keyVar != "" && c.LLM.APIKey == "" {
		return &ConfigurationError{Variable: keyVar, Reason: "environment variable is required"}
	}
	if c.LLM.Provider == "deepseek" && c.LLM.BaseURL == "" {
		return &ConfigurationError{Variable: "LLM_BASE_URL", Reason: "is required for provider deepseek (OpenAI-compatible endpoint)"}
	}
	if c.Defaults.PostCount < 1 || c.Defaults.PostCount > 5 {
		return &ConfigurationError{Variable: "DEFAULT_POST_COUNT", Reason: "must be between 1 and 5"}
	}
	if c.Content.MinLength < 0 || c.Content.MaxLength <= c.Content.MinLength {
		return &ConfigurationError{Variable: "CONTENT_MAX_LENGTH", Reason: "must be greater than CONTENT_MIN_LENGTH"}
	}
	return nil
}

// HasAPIKey reports whether a usable key is configured.
func (c Config) HasAPIKey() bool {
	return APIKeyVariable(c.LLM.Provider) == "" || c.LLM.APIKey != ""
}

// Addr is the listen address derived from Port.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// IsConfigurationError reports whether err is (or wraps) a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// CONTENT_BLOCKLIST arrives as one comma separated string from the environment.
func normalizeBlocklist(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
