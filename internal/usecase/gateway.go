package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"

	"nexus/internal/domain"
	"nexus/internal/logging"
)

// Provider is the external text-generation collaborator.
type Provider interface {
	GenerateContent(ctx context.Context, apiKey string, req domain.GenerationRequest) (string, error)
}

// CredentialSource yields the provider credential. An empty string with a nil
// error means no credential is configured.
type CredentialSource interface {
	Credential(ctx context.Context) (string, error)
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

// ResponseGateway maps a prompt to a reply through a Provider. It holds no
// conversation state; every call is single-turn.
type ResponseGateway struct {
	provider Provider
	creds    CredentialSource
	model    string
	logger   *zap.Logger

	keyMu  sync.RWMutex
	apiKey string
}

func NewResponseGateway(p Provider, creds CredentialSource, model string, logger *zap.Logger) (*ResponseGateway, error) {
	if p == nil {
		return nil, errors.New("usecase: provider must not be nil")
	}
	if creds == nil {
		return nil, errors.New("usecase: credential source must not be nil")
	}
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResponseGateway{
		provider: p,
		creds:    creds,
		model:    model,
		logger:   logger,
	}, nil
}

// Generate returns the provider's reply text. Failures are *Error values of
// kind ErrorConfiguration or ErrorProvider.
func (g *ResponseGateway) Generate(ctx context.Context, prompt string) (string, error) {
	apiKey, err := g.resolveCredential(ctx)
	if err != nil {
		return "", err
	}

	defer logging.LogDuration(g.logger, "provider_generate_content")()
	text, err := g.provider.GenerateContent(ctx, apiKey, buildGenerationRequest(g.model, prompt))
	if err != nil {
		return "", newError(ErrorProvider, providerReason(ctx, err), err)
	}
	return text, nil
}

// Reply is the conversation-facing form of Generate: it never fails. Any error
// is logged and replaced by ProviderFallback.
func (g *ResponseGateway) Reply(ctx context.Context, prompt string) string {
	text, err := g.Generate(ctx, prompt)
	if err != nil {
		g.logFailure(err)
		return ProviderFallback
	}
	return text
}

// resolveCredential caches the first non-empty credential for the process
// lifetime. Missing or failed lookups are retried on the next call.
func (g *ResponseGateway) resolveCredential(ctx context.Context) (string, error) {
	g.keyMu.RLock()
	if g.apiKey != "" {
		key := g.apiKey
		g.keyMu.RUnlock()
		return key, nil
	}
	g.keyMu.RUnlock()

	g.keyMu.Lock()
	defer g.keyMu.Unlock()
	if g.apiKey != "" {
		return g.apiKey, nil
	}

	key, err := g.creds.Credential(ctx)
	if err != nil {
		return "", newError(ErrorConfiguration, "credential_lookup_failed", err)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", newError(ErrorConfiguration, "missing_credential", nil)
	}
	g.apiKey = key
	return key, nil
}

func (g *ResponseGateway) logFailure(err error) {
	fields := []zap.Field{zap.Error(err), zap.String("model", g.model)}
	var ue *Error
	if errors.As(err, &ue) {
		fields = append(fields, zap.String("kind", string(ue.Kind)), zap.String("reason", ue.Reason))
	}
	if status, ok := upstreamStatusCode(err); ok {
		fields = append(fields, zap.Int("upstream_status", status))
	}
	g.logger.Error("response gateway failed, replying with fallback", fields...)
}

func providerReason(ctx context.Context, err error) string {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "provider_timeout"
	}
	if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
		return "provider_canceled"
	}
	if status, ok := upstreamStatusCode(err); ok {
		switch {
		case status == http.StatusTooManyRequests:
			return "provider_rate_limited"
		case status == http.StatusUnauthorized || status == http.StatusForbidden:
			return "provider_unauthorized"
		}
	}
	return "provider_error"
}

func upstreamStatusCode(err error) (int, bool) {
	var statusErr httpStatusCoder
	if !errors.As(err, &statusErr) {
		return 0, false
	}
	return statusErr.HTTPStatusCode(), true
}
