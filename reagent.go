// Package reagent provides a high-level façade over the loop agents and
// their collaborators (model providers, tool registry, date resolution and
// logging), enabling construction of a ready-to-run task agent from a single
// resolved Settings object. Most applications interact with this package by:
//  1. Loading settings via config.Load
//  2. Creating a ReAgent via New() (optionally overriding the toolset or
//     the logger)
//  3. Calling Run per user query
//
// The façade delegates the control loop to the agent package while keeping
// setup ergonomics concise. Construction is the validation boundary: a bad
// provider selection, timezone or empty toolset fails here, before any run
// starts.
package reagent

import (
	"context"
	"fmt"

	"github.com/sbrizzi/reagent/agent"
	"github.com/sbrizzi/reagent/config"
	"github.com/sbrizzi/reagent/logging"
	"github.com/sbrizzi/reagent/model"
	"github.com/sbrizzi/reagent/model/anthropic"
	"github.com/sbrizzi/reagent/model/openai"
	"github.com/sbrizzi/reagent/tool"
	"github.com/sbrizzi/reagent/tools"
)

// Options configure the ReAgent instance beyond what Settings carries.
type Options struct {
	// Tools overrides the default builtin toolset when non-empty.
	Tools []tool.Tool
	// Logger (defaults to a slog logger per Settings.LogLevel/LogFormat
	// if nil).
	Logger logging.Logger
	// Provider overrides the settings-derived model backend; used by tests.
	Provider model.Provider
}

// ReAgent is the high-level façade aggregating one loop agent and the
// resolver used by its date-aware tools.
type ReAgent struct {
	agent    agent.Agent
	resolver *tools.DateResolver
	settings *config.Settings
}

// New builds an agent process from resolved settings. Any unset option is
// initialized from the settings: the provider from the provider selector and
// its credential, the toolset from the builtin tools, the logger from the
// configured level and format.
func New(settings *config.Settings, optFns ...func(o *Options)) (*ReAgent, error) {
	if settings == nil {
		return nil, fmt.Errorf("reagent: nil settings")
	}

	var opts Options
	for _, fn := range optFns {
		fn(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NewSlogLogger(parseLevel(settings.LogLevel), settings.LogFormat, nil)
	}

	provider := opts.Provider
	if provider == nil {
		var err error
		if provider, err = newProvider(settings); err != nil {
			return nil, err
		}
	}

	resolver, err := tools.NewDateResolver(provider, settings.Model, settings.Timezone)
	if err != nil {
		return nil, err
	}

	toolset := opts.Tools
	if len(toolset) == 0 {
		toolset = []tool.Tool{
			tools.NewDateMath(resolver),
			tools.NewTavilySearch(settings.TavilyAPIKey),
			tools.NewOpenMeteoForecast(resolver),
			tools.NewOpenMeteoArchive(resolver),
		}
	}
	registry, err := tool.NewRegistry(toolset...)
	if err != nil {
		return nil, err
	}

	agentOpts := func(o *agent.Options) {
		o.Model = settings.Model
		o.Temperature = settings.Temperature
		o.RequestTimeout = settings.RequestTimeout
		o.MaxSteps = settings.MaxSteps
		o.MaxReplans = settings.MaxReplans
		o.TodayPhrase = settings.TodayPhrase
		o.Logger = logger
	}

	var loop agent.Agent
	switch settings.Loop {
	case config.LoopPlanner:
		loop = agent.NewPlanner(provider, registry, agentOpts)
	case config.LoopReAct:
		loop = agent.NewReAct(provider, registry, agentOpts)
	default:
		return nil, fmt.Errorf("reagent: unknown loop variant %q", settings.Loop)
	}

	return &ReAgent{agent: loop, resolver: resolver, settings: settings}, nil
}

// Run executes one query through the configured loop. The observer receives
// line-by-line step notifications and may be nil. See agent.Agent for the
// error contract.
func (a *ReAgent) Run(ctx context.Context, userQuery string, observer agent.StepObserver) (string, error) {
	return a.agent.Run(ctx, userQuery, observer)
}

// Today returns the current date in the configured timezone as YYYY-MM-DD.
func (a *ReAgent) Today() string { return a.resolver.Today() }

// Settings returns the resolved settings the agent was built from.
func (a *ReAgent) Settings() *config.Settings { return a.settings }

func newProvider(s *config.Settings) (model.Provider, error) {
	switch s.Provider {
	case config.ProviderOpenAI:
		return openai.NewProvider(func(o *openai.Options) {
			if s.Model != "" {
				o.Model = s.Model
			}
			o.Temperature = s.Temperature
			o.APIKey = s.OpenAIAPIKey
		}), nil
	case config.ProviderAnthropic:
		return anthropic.NewProvider(func(o *anthropic.Options) {
			if s.Model != "" {
				o.Model = s.Model
			}
			o.Temperature = s.Temperature
			o.APIKey = s.AnthropicAPIKey
		}), nil
	default:
		return nil, fmt.Errorf("reagent: unknown provider %q", s.Provider)
	}
}

func parseLevel(level string) logging.LogLevel {
	switch level {
	case "debug":
		return logging.LogLevelDebug
	case "warn":
		return logging.LogLevelWarn
	case "error":
		return logging.LogLevelError
	default:
		return logging.LogLevelInfo
	}
}
