// Package config resolves the process-wide settings object once at startup.
// Resolution order: package defaults, then an optional YAML file, then
// environment variables. Nothing else in the module reads the environment;
// settings are threaded through constructors explicitly.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Loop variant selectors.
const (
	LoopReAct   = "react"
	LoopPlanner = "planner"
)

// Provider selectors.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Settings is the resolved configuration for one agent process. Read-only
// after Load; safe to share across concurrent runs.
type Settings struct {
	// Provider selects the model backend: "openai" (default) or "anthropic".
	Provider string `yaml:"provider"`
	// Model is the provider-specific model identifier. Empty uses the
	// provider adapter's default.
	Model string `yaml:"model"`
	// Temperature for every completion call.
	Temperature float64 `yaml:"temperature"`
	// RequestTimeout bounds each model call.
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// Loop selects the agent variant: "react" (default) or "planner".
	Loop string `yaml:"loop"`
	// MaxSteps is the hard ceiling on loop iterations / executed actions.
	MaxSteps int `yaml:"max_steps"`
	// MaxReplans bounds plan replacements in the planner variant.
	MaxReplans int `yaml:"max_replans"`
	// Timezone is the IANA zone used to resolve "today" for date tools.
	Timezone string `yaml:"timezone"`
	// TodayPhrase is the locale phrase meaning "today", injected as the
	// target_date safety default.
	TodayPhrase string `yaml:"today_phrase"`

	// Credentials. Resolved from the environment when unset in the file;
	// never read anywhere else in the module.
	OpenAIAPIKey    string `yaml:"openai_api_key"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	TavilyAPIKey    string `yaml:"tavily_api_key"`

	// Logging.
	LogLevel  string `yaml:"log_level"`  // debug|info|warn|error
	LogFormat string `yaml:"log_format"` // json|text
}

func defaults() Settings {
	return Settings{
		Provider:       ProviderOpenAI,
		Temperature:    0.2,
		RequestTimeout: 60 * time.Second,
		Loop:           LoopReAct,
		MaxSteps:       10,
		MaxReplans:     2,
		Timezone:       "Europe/Rome",
		TodayPhrase:    "oggi",
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

// Load resolves settings from defaults, an optional YAML file (path may be
// empty) and the environment, then validates them. A missing credential for
// the selected provider is a bootstrap failure: Load errors and no agent is
// constructed.
func Load(path string) (*Settings, error) {
	s := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	s.applyEnv()

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Settings) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); v != "" {
		s.OpenAIAPIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")); v != "" {
		s.AnthropicAPIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("TAVILY_API_KEY")); v != "" {
		s.TavilyAPIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("TIMEZONE")); v != "" {
		s.Timezone = v
	}
}

// Validate reports bootstrap failures: unknown selectors, non-positive
// budgets, or a missing credential for the selected provider.
func (s *Settings) Validate() error {
	switch s.Provider {
	case ProviderOpenAI:
		if s.OpenAIAPIKey == "" {
			return fmt.Errorf("config: missing OPENAI_API_KEY for provider %q", s.Provider)
		}
	case ProviderAnthropic:
		if s.AnthropicAPIKey == "" {
			return fmt.Errorf("config: missing ANTHROPIC_API_KEY for provider %q", s.Provider)
		}
	default:
		return fmt.Errorf("config: unknown provider %q", s.Provider)
	}

	if s.Loop != LoopReAct && s.Loop != LoopPlanner {
		return fmt.Errorf("config: unknown loop variant %q", s.Loop)
	}
	if s.MaxSteps <= 0 {
		return fmt.Errorf("config: max_steps must be positive, got %d", s.MaxSteps)
	}
	if s.MaxReplans < 0 {
		return fmt.Errorf("config: max_replans must be non-negative, got %d", s.MaxReplans)
	}
	if s.TodayPhrase == "" {
		return fmt.Errorf("config: today_phrase must not be empty")
	}
	return nil
}
