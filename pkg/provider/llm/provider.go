// Package llm defines the Provider interface for language-model backends.
//
// Orato uses an LLM for three things: rubric-scoring an interview answer,
// generating interview questions from document text, and drafting or
// reviewing presentation scripts. All three are single-shot completions, so
// the interface is deliberately smaller than a general chat abstraction —
// one blocking Complete call with an optional JSON-mode flag.
//
// Implementations must be safe for concurrent use.
package llm

import "context"

// Message is a single turn in the completion request.
type Message struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the text content of the message.
	Content string
}

// Usage holds token accounting returned by the backend. Counts are in the
// model's native token unit and may be zero when the backend does not
// report them.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// CompletionRequest carries everything the model needs for one response.
// Messages must be non-empty.
type CompletionRequest struct {
	// Messages is the ordered prompt. The last message is typically the
	// "user" turn that drives the response.
	Messages []Message

	// SystemPrompt is an optional high-priority instruction injected before
	// Messages. Providers without native system-prompt support prepend it as
	// a "system"-role message.
	SystemPrompt string

	// Temperature controls output randomness in [0.0, 2.0]. Zero means the
	// provider default.
	Temperature float64

	// MaxTokens caps the completion length. Zero means provider default.
	MaxTokens int

	// JSONResponse asks the backend for a JSON-object response when it
	// supports constrained output. Callers must still validate the payload;
	// the flag is a hint, not a guarantee.
	JSONResponse bool
}

// CompletionResponse is the model's answer to a CompletionRequest.
type CompletionResponse struct {
	// Content is the generated text.
	Content string

	// Usage is the token accounting, when reported.
	Usage Usage
}

// Provider is the abstraction over any LLM backend.
type Provider interface {
	// Complete performs a blocking completion. Implementations must honour
	// ctx cancellation and return promptly when it fires.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}
