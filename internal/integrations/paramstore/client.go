package paramstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// ssmAPI is the minimal AWS SSM interface required by Client.
// *ssm.Client from aws-sdk-go-v2 satisfies this interface.
type ssmAPI interface {
	GetParameter(ctx context.Context, in *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// Client reads (optionally encrypted) parameters from SSM Parameter Store.
type Client struct {
	api ssmAPI
}

func New(api ssmAPI) (*Client, error) {
	if api == nil {
		return nil, errors.New("paramstore: api must not be nil")
	}
	return &Client{api: api}, nil
}

// GetParameter returns the decrypted value of name. A missing parameter is an
// error; use Lookup when absence is acceptable.
func (c *Client) GetParameter(ctx context.Context, name string) (string, error) {
	v, ok, err := c.Lookup(ctx, name)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("paramstore: parameter %q not found", strings.TrimSpace(name))
	}
	return v, nil
}

// Lookup is GetParameter with ParameterNotFound reported as ok=false.
func (c *Client) Lookup(ctx context.Context, name string) (string, bool, error) {
	if c.api == nil {
		return "", false, errors.New("paramstore: client not initialized")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false, errors.New("paramstore: name is required")
	}

	withDecryption := true
	out, err := c.api.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           &name,
		WithDecryption: &withDecryption,
	})
	if err != nil {
		var notFound *types.ParameterNotFound
		if errors.As(err, &notFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("paramstore: get parameter %q: %w", name, err)
	}
	if out == nil || out.Parameter == nil || out.Parameter.Value == nil {
		return "", false, errors.New("paramstore: parameter missing value")
	}
	return *out.Parameter.Value, true, nil
}
