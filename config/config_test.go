package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable Load reads and restores them after the test.
func clearEnv(t *testing.T) {
	t.Helper()
	vars := []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "DEEPSEEK_API_KEY", "ANTHROPIC_API_KEY"}
	for _, env := range envBindings {
		vars = append(vars, env)
	}
	for _, v := range vars {
		t.Setenv(v, "")
		require.NoError(t, os.Unsetenv(v))
	}
}

func TestLoad_MissingAPIKey(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(Options{})
	require.Error(t, err)

	var ce *ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "GEMINI_API_KEY", ce.Variable)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
	assert.True(t, IsConfigurationError(err))

	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.False(t, cfg.HasAPIKey())
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := Load(Options{})
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "gemini-1.5-flash", cfg.LLM.Model)
	assert.Equal(t, "test-key", cfg.LLM.APIKey)
	assert.Equal(t, 8501, cfg.Port)
	assert.Equal(t, ":8501", cfg.Addr())
	assert.Equal(t, "Professional", cfg.Defaults.Tone)
	assert.Equal(t, 3, cfg.Defaults.PostCount)
	assert.Equal(t, 100, cfg.Content.MinLength)
	assert.Equal(t, 3000, cfg.Content.MaxLength)
	assert.Equal(t, 90*time.Second, cfg.LLM.RequestTimeout)
	assert.True(t, cfg.Content.RegenerateFlagged)
	assert.True(t, cfg.HasAPIKey())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "OpenAI")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("PORT", "9000")
	t.Setenv("DEBUG", "true")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("CONTENT_BLOCKLIST", "Crypto Scam, , get rich quick")
	t.Setenv("REQUEST_TIMEOUT", "30s")

	cfg, err := Load(Options{})
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, 9000, cfg.Port)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, []string{"crypto scam", "get rich quick"}, cfg.Content.Blocklist)
	assert.Equal(t, 30*time.Second, cfg.LLM.RequestTimeout)
}

func TestLoad_ProviderOptionWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "openai")

	cfg, err := Load(Options{Provider: "mock"})
	require.NoError(t, err)
	assert.Equal(t, "mock", cfg.LLM.Provider)
	assert.True(t, cfg.HasAPIKey())
}

func TestLoad_DeepSeekRequiresBaseURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "deepseek")
	t.Setenv("DEEPSEEK_API_KEY", "ds-key")

	_, err := Load(Options{})
	var ce *ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "LLM_BASE_URL", ce.Variable)
}

func TestLoad_UnsupportedProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "llama")

	_, err := Load(Options{})
	var ce *ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "LLM_PROVIDER", ce.Variable)
}

func TestLoad_InvalidDefaultPostCount(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "k")
	t.Setenv("DEFAULT_POST_COUNT", "6")

	_, err := Load(Options{})
	var ce *ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "DEFAULT_POST_COUNT", ce.Variable)
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("GEMINI_API_KEY=from-file\nDEFAULT_TONE=Educational\n"), 0o600))

	cfg, err := Load(Options{EnvFile: path})
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.LLM.APIKey)
	assert.Equal(t, "Educational", cfg.Defaults.Tone)
}

func TestLoad_ConfigFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "k")
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "llm:\n  model: gemini-1.5-pro\ncontent:\n  min_length: 50\n  blocklist:\n    - Spam\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(Options{ConfigFile: path})
	require.NoError(t, err)
	assert.Equal(t, "gemini-1.5-pro", cfg.LLM.Model)
	assert.Equal(t, 50, cfg.Content.MinLength)
	assert.Equal(t, []string{"spam"}, cfg.Content.Blocklist)
}

func TestAPIKeyVariable(t *testing.T) {
	tests := []struct {
		provider string
		want     string
	}{
		{"gemini", "GEMINI_API_KEY"},
		{"", "GEMINI_API_KEY"},
		{"openai", "OPENAI_API_KEY"},
		{"deepseek", "DEEPSEEK_API_KEY"},
		{"anthropic", "ANTHROPIC_API_KEY"},
		{"mock", ""},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			assert.Equal(t, tt.want, APIKeyVariable(tt.provider))
		})
	}
}
