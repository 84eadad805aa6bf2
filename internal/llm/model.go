// Package llm wraps the language model providers behind a single
// prompt-in, text-out contract.
package llm

import (
	"context"
	"errors"
)

// ErrEmptyCompletion is returned when the provider answers without any text.
var ErrEmptyCompletion = errors.New("no completion returned")

// Request is one single-turn prompt.
type Request struct {
	Prompt          string
	Temperature     float32
	MaxOutputTokens int
}

// Model generates a text reply for a prompt. Any transport or non-2xx failure
// is returned as an error.
type Model interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// ModelFunc adapts a plain function to Model.
type ModelFunc func(ctx context.Context, req Request) (string, error)

func (f ModelFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
