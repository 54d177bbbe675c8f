// Package ai provides the text-generation capability the recommendation
// pipeline depends on, plus an HTTP client implementation with bounded
// retries. The pipeline only sees the Generator interface; tests swap in
// a GeneratorFunc.
package ai

import "context"

// Generator produces raw model text for a prompt. Implementations may
// fail or return malformed text at any time; callers must treat the
// output as untrusted.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
