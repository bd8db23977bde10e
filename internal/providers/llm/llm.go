package llm

import "context"

// Result carries a completion plus the provider's token accounting.
type Result struct {
	Text         string
	InputTokens  int
	OutputTokens int
}

// Provider is an opaque text-completion service: a system instruction, a
// user message, and an output-token cap in; text and token counts out.
type Provider interface {
	Complete(ctx context.Context, system, user string, maxTokens int) (*Result, error)
	Model() string
	Close() error
}
