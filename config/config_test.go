package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("TAVILY_API_KEY", "")
	t.Setenv("TIMEZONE", "")
}

func TestLoadDefaultsWithEnvCredential(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, s.Provider)
	assert.Equal(t, LoopReAct, s.Loop)
	assert.Equal(t, 10, s.MaxSteps)
	assert.Equal(t, 2, s.MaxReplans)
	assert.Equal(t, "Europe/Rome", s.Timezone)
	assert.Equal(t, "oggi", s.TodayPhrase)
	assert.Equal(t, 60*time.Second, s.RequestTimeout)
	assert.Equal(t, "sk-test", s.OpenAIAPIKey)
}

func TestLoadMissingCredentialFails(t *testing.T) {
	clearEnv(t)

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestLoadYAMLFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "settings.yaml")
	data := []byte(`
provider: anthropic
anthropic_api_key: ak-test
loop: planner
max_steps: 5
max_replans: 1
timezone: UTC
today_phrase: today
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ProviderAnthropic, s.Provider)
	assert.Equal(t, LoopPlanner, s.Loop)
	assert.Equal(t, 5, s.MaxSteps)
	assert.Equal(t, 1, s.MaxReplans)
	assert.Equal(t, "UTC", s.Timezone)
	assert.Equal(t, "today", s.TodayPhrase)
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("TIMEZONE", "America/New_York")

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("openai_api_key: sk-file\n"), 0o600))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-env", s.OpenAIAPIKey)
	assert.Equal(t, "America/New_York", s.Timezone)
}

func TestValidateRejectsBadSelectors(t *testing.T) {
	base := defaults()
	base.OpenAIAPIKey = "sk-test"

	s := base
	s.Provider = "cohere"
	assert.Error(t, s.Validate())

	s = base
	s.Loop = "tree-of-thought"
	assert.Error(t, s.Validate())

	s = base
	s.MaxSteps = 0
	assert.Error(t, s.Validate())

	s = base
	s.MaxReplans = -1
	assert.Error(t, s.Validate())

	s = base
	s.TodayPhrase = ""
	assert.Error(t, s.Validate())
}

func TestLoadMissingFileFails(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
