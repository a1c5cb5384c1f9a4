// Package app assembles the conversation store, response gateway and
// dashboard catalog from a Config. Every entry point under cmd/ goes through
// Build.
package app

import (
	"context"
	"errors"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"go.uber.org/zap"

	"nexus/internal/config"
	"nexus/internal/credentials"
	"nexus/internal/dashboard"
	"nexus/internal/integrations/anthropic"
	"nexus/internal/integrations/gemini"
	"nexus/internal/integrations/openai"
	"nexus/internal/integrations/paramstore"
	"nexus/internal/usecase"
)

// Params is the parameter store surface Build needs.
type Params interface {
	Lookup(ctx context.Context, name string) (string, bool, error)
}

type App struct {
	Store   *usecase.ConversationStore
	Gateway *usecase.ResponseGateway
	Catalog *dashboard.Catalog
}

// Close stops the conversation store.
func (a *App) Close() {
	a.Store.Close()
}

type Option func(*options)

type options struct {
	params Params
}

// WithParams replaces the SSM-backed parameter store.
func WithParams(p Params) Option {
	return func(o *options) { o.params = p }
}

func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: config must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	params := o.params
	if params == nil && cfg.ParamPrefix != "" {
		p, err := newParamStore(ctx)
		if err != nil {
			return nil, err
		}
		params = p
	}

	provider, err := NewProvider(cfg)
	if err != nil {
		return nil, err
	}

	creds := credentials.Chain{credentials.FromEnv(config.APIKeyEnv...)}
	if params != nil && cfg.TokenParam() != "" {
		src, err := credentials.FromParamStore(params, cfg.TokenParam())
		if err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
		creds = append(creds, src)
	}

	gateway, err := usecase.NewResponseGateway(provider, creds, cfg.Model, logger.Named("gateway"))
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	fixtures := dashboard.Default()
	if params != nil && cfg.FixturesParam() != "" {
		fixtures, err = dashboard.LoadFromParamStore(ctx, params, cfg.FixturesParam())
		if err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
	}

	store, err := usecase.NewConversationStore(gateway,
		usecase.WithPolicy(cfg.SubmitPolicy),
		usecase.WithMaxQueue(cfg.MaxQueue),
		usecase.WithReplyTimeout(cfg.ReplyTimeout),
		usecase.WithGreeting(cfg.Greeting),
		usecase.WithLogger(logger.Named("conversation")),
	)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	logger.Info("app assembled",
		zap.String("provider", string(cfg.Provider)),
		zap.String("model", cfg.Model),
		zap.String("submit_policy", cfg.SubmitPolicy.String()),
		zap.Bool("paramstore", params != nil),
	)

	return &App{
		Store:   store,
		Gateway: gateway,
		Catalog: dashboard.NewCatalog(fixtures),
	}, nil
}

// NewProvider returns the text-generation client named by cfg.Provider.
func NewProvider(cfg *config.Config) (usecase.Provider, error) {
	switch cfg.Provider {
	case config.ProviderGemini, "":
		var opts []gemini.Option
		if cfg.ProviderBaseURL != "" {
			opts = append(opts, gemini.WithBaseURL(cfg.ProviderBaseURL))
		}
		return gemini.NewClient(opts...), nil
	case config.ProviderOpenAI:
		var opts []openai.Option
		if cfg.ProviderBaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.ProviderBaseURL))
		}
		return openai.NewClient(opts...), nil
	case config.ProviderAnthropic:
		var opts []anthropic.Option
		if cfg.ProviderBaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(cfg.ProviderBaseURL))
		}
		return anthropic.NewClient(opts...), nil
	default:
		return nil, fmt.Errorf("app: unknown provider %q", cfg.Provider)
	}
}

func newParamStore(ctx context.Context) (*paramstore.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("app: load AWS config: %w", err)
	}
	p, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	return p, nil
}
