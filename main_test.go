package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkedin_post_generator/generator"
	"linkedin_post_generator/server"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	envFile, configFile, provider, verbose = "", "", "", false
	serveAddr = ""
	genTopic, genTone, genAudience, genPostType = "", "", "", ""
	genCount, genNoHashtags, genNoCTA, genJSON, genPretty = 0, false, false, false, false
	healthProbe = false
	generateCmd.Flags().Lookup("count").Changed = false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestHealthCommand_Mock(t *testing.T) {
	out, err := execute(t, "health", "--provider", "mock", "--probe")
	require.NoError(t, err)

	var h server.HealthStatus
	require.NoError(t, json.Unmarshal([]byte(out), &h))
	assert.Equal(t, server.StatusHealthy, h.Status)
	assert.Equal(t, "mock", h.ModelInfo.Provider)
	assert.Equal(t, "mock-1", h.ModelInfo.ModelName)
}

func TestHealthCommand_MissingKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	out, err := execute(t, "health", "--provider", "gemini")
	require.Error(t, err)

	var h server.HealthStatus
	require.NoError(t, json.Unmarshal([]byte(out), &h))
	assert.Equal(t, server.StatusUnhealthy, h.Status)
	assert.Equal(t, "GEMINI_API_KEY is not set", h.Message)
}

func TestGenerateCommand_Text(t *testing.T) {
	out, err := execute(t, "generate", "--provider", "mock",
		"--topic", "remote work productivity", "--tone", "professional",
		"--audience", "business leaders", "--count", "2")
	require.NoError(t, err)

	assert.Contains(t, out, "Post 1 ·")
	assert.Contains(t, out, "Post 2 ·")
	assert.NotContains(t, out, "Post 3 ·")
	assert.Contains(t, out, "#RemoteWorkProductivity")
	assert.Contains(t, out, "4 calls")
}

func TestGenerateCommand_JSON(t *testing.T) {
	out, err := execute(t, "generate", "--provider", "mock", "--topic", "hiring", "--count", "3", "--no-hashtags", "--json")
	require.NoError(t, err)

	var res generator.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Posts, 3)
	assert.Empty(t, res.Posts[0].Hashtags)
	assert.Equal(t, 2, res.Usage.Requests)
	assert.False(t, res.Request.IncludeHashtags)
}

func TestGenerateCommand_Rejects(t *testing.T) {
	_, err := execute(t, "generate", "--provider", "mock", "--topic", "hiring", "--count", "6")
	require.Error(t, err)
	assert.True(t, generator.IsValidation(err))

	_, err = execute(t, "generate", "--provider", "mock")
	require.Error(t, err)
	assert.True(t, generator.IsValidation(err))
}

func TestGenerateCommand_Pretty(t *testing.T) {
	out, err := execute(t, "generate", "--provider", "mock", "--topic", "hiring", "--count", "1", "--pretty")
	require.NoError(t, err)
	assert.Contains(t, out, "Post 1 ·")
	assert.Contains(t, out, "hiring")
	assert.Contains(t, out, "3 calls")
}
