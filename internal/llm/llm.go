package llm

import (
	"context"
	"encoding/json"
	"errors"
)

var ErrInvalidJSON = errors.New("llm: invalid JSON from model")

// ErrMissingCredentials is returned by provider constructors when no API
// key is available. The conversion service treats it as fatal before any
// batch is attempted.
var ErrMissingCredentials = errors.New("llm: missing API credentials")

// Client is the minimal contract the conversion engine needs from a model
// backend: one blocking JSON-mode generation per call.
type Client interface {
	Name() string
	GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error)
	Close() error
}
