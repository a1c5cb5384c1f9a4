// Package config reads process configuration from the environment, after
// loading a .env file when one is present.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"nexus/internal/usecase"
)

type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

var defaultModels = map[Provider]string{
	ProviderGemini:    usecase.DefaultModel,
	ProviderOpenAI:    "gpt-4o-mini",
	ProviderAnthropic: "claude-sonnet-4-5",
}

// APIKeyEnv lists the variables checked for the provider credential, in order.
var APIKeyEnv = []string{"NEXUS_API_KEY", "API_KEY"}

type Config struct {
	Provider        Provider
	Model           string
	ProviderBaseURL string

	// ParamPrefix enables SSM lookups for <prefix>/api-token and
	// <prefix>/dashboard-fixtures. Empty disables AWS entirely.
	ParamPrefix string

	HTTPAddr    string
	CORSOrigins []string

	ReplyTimeout time.Duration
	SubmitPolicy usecase.SubmitPolicy
	MaxQueue     int
	Greeting     string

	LogLevel string
	LogFile  string
}

func (c *Config) TokenParam() string {
	return paramName(c.ParamPrefix, "api-token")
}

func (c *Config) FixturesParam() string {
	return paramName(c.ParamPrefix, "dashboard-fixtures")
}

func paramName(prefix, leaf string) string {
	prefix = strings.TrimRight(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/" + leaf
}

// Load reads .env (if any) and then the environment. Variables already set in
// the environment win over .env entries.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	var errs []error

	provider := Provider(strings.ToLower(getEnv("PROVIDER", string(ProviderGemini))))
	if _, ok := defaultModels[provider]; !ok {
		errs = append(errs, fmt.Errorf("PROVIDER: unknown provider %q", provider))
	}

	model := getEnv("MODEL", defaultModels[provider])

	timeout, err := envDuration("REPLY_TIMEOUT", 30*time.Second)
	if err != nil {
		errs = append(errs, err)
	}

	policy, err := usecase.ParseSubmitPolicy(os.Getenv("SUBMIT_POLICY"))
	if err != nil {
		errs = append(errs, fmt.Errorf("SUBMIT_POLICY: %w", err))
	}

	maxQueue, err := envInt("MAX_QUEUE", 8)
	if err != nil {
		errs = append(errs, err)
	}

	greeting := usecase.DefaultGreeting
	if v, ok := os.LookupEnv("CHAT_GREETING"); ok {
		greeting = strings.TrimSpace(v)
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return &Config{
		Provider:        provider,
		Model:           model,
		ProviderBaseURL: getEnv("PROVIDER_BASE_URL", ""),
		ParamPrefix:     getEnv("PARAM_PREFIX", ""),
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		CORSOrigins:     splitList(getEnv("CORS_ORIGINS", "*")),
		ReplyTimeout:    timeout,
		SubmitPolicy:    policy,
		MaxQueue:        maxQueue,
		Greeting:        greeting,
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFile:         getEnv("LOG_FILE", ""),
	}, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s: want a positive integer, got %q", key, v)
	}
	return n, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s: want a positive duration, got %q", key, v)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
