package ai

import "context"

// Provider is a text-completion backend. Implementations may fail with
// transport or rate-limit errors, or return content that fails to parse;
// callers treat both the same way.
type Provider interface {
	Complete(ctx context.Context, systemPrompt, userContent string, temperature float64, maxTokens int) (string, error)
}
