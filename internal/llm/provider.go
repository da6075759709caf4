package llm

import "context"

// Provider is the external model collaborator. Implementations must be safe
// for concurrent use by independent turns.
type Provider interface {
	// Complete sends one turn and returns the model's text reply.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Name returns the name of this provider.
	Name() string
}
