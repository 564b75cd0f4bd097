package advisor

import "context"

// Request is a single text completion request.
type Request struct {
	System      string  // System is the system instruction, optional.
	Prompt      string  // Prompt is the user text.
	Temperature float32 // Temperature of the sampling.
}

// Model is the text completion service consulted for advice.
type Model interface {
	// Generate returns the completion of a one-shot request.
	Generate(ctx context.Context, req Request) (string, error)
	// StartChat opens a conversation keeping its own history.
	StartChat(ctx context.Context, system string, temperature float32, lib *Library) (Chat, error)
}

// Chat is a conversation with a Model.
type Chat interface {
	Send(ctx context.Context, text string) (string, error)
}
