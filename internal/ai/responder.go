package ai

import "context"

// Responder answers a free-text user query with free text.
// This interface allows for swapping different AI providers (Gemini, OpenAI, etc.) in the future.
type Responder interface {
	// Query returns the assistant's answer for the given user text. Answers
	// that reference locations are expected to embed them as bracketed
	// "[lat, lng]" pairs per the prompt templates; the extraction layer
	// tolerates anything else the model produces.
	Query(ctx context.Context, text string) (string, error)
}
