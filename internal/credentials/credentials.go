// Package credentials resolves the text-generation provider credential.
//
// Every source follows the same contract: an empty string with a nil error
// means "not configured here", an error means the lookup itself failed.
package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Source yields a credential.
type Source interface {
	Credential(ctx context.Context) (string, error)
}

// Static is a fixed credential, e.g. from a command-line flag.
type Static string

func (s Static) Credential(context.Context) (string, error) {
	return strings.TrimSpace(string(s)), nil
}

// Env reads the first non-empty variable among its keys.
type Env struct {
	keys   []string
	lookup func(string) string
}

func FromEnv(keys ...string) Env {
	return Env{keys: keys, lookup: os.Getenv}
}

func (e Env) Credential(context.Context) (string, error) {
	lookup := e.lookup
	if lookup == nil {
		lookup = os.Getenv
	}
	for _, k := range e.keys {
		if v := strings.TrimSpace(lookup(k)); v != "" {
			return v, nil
		}
	}
	return "", nil
}

// Lookuper is satisfied by *paramstore.Client.
type Lookuper interface {
	Lookup(ctx context.Context, name string) (string, bool, error)
}

// tokenPayload is the JSON shape stored in SSM for the API token.
type tokenPayload struct {
	Token string `json:"token"`
}

// ParamStore reads a {"token": "..."} document from an SSM parameter.
type ParamStore struct {
	params Lookuper
	name   string
}

func FromParamStore(params Lookuper, name string) (*ParamStore, error) {
	if params == nil {
		return nil, errors.New("credentials: paramstore lookuper must not be nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("credentials: token parameter name is empty")
	}
	return &ParamStore{params: params, name: name}, nil
}

func (p *ParamStore) Credential(ctx context.Context) (string, error) {
	raw, ok, err := p.params.Lookup(ctx, p.name)
	if err != nil {
		return "", fmt.Errorf("credentials: fetch token from paramstore: %w", err)
	}
	if !ok {
		return "", nil
	}
	var tp tokenPayload
	if err := json.Unmarshal([]byte(raw), &tp); err != nil {
		return "", fmt.Errorf("credentials: unmarshal paramstore token value as JSON: %w", err)
	}
	return strings.TrimSpace(tp.Token), nil
}

// Chain returns the first non-empty credential. Errors from earlier sources
// are only reported when no later source has a credential.
type Chain []Source

func (c Chain) Credential(ctx context.Context) (string, error) {
	var errs []error
	for _, src := range c {
		if src == nil {
			continue
		}
		v, err := src.Credential(ctx)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if v != "" {
			return v, nil
		}
	}
	return "", errors.Join(errs...)
}
