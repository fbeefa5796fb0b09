// Package llm abstracts the model-backed classification and generation calls
// behind a capability interface, keeping the chat core's control flow and
// tests independent of any specific provider.
package llm

import (
	"context"

	"github.com/svaldes/parlante/internal/domain"
)

// GenerateRequest is the prompt context for one reply: the active speaker,
// their full ordered history (oldest first), and the new utterance. Any
// truncation for prompt-size limits is the provider's concern.
type GenerateRequest struct {
	Speaker   string
	Utterance string
	History   []domain.Message
}

// Provider is the synchronous generation service consumed by the core. Both
// calls are stateless between invocations; timeouts and failed calls surface
// as errors, never as indefinite blocks.
type Provider interface {
	// Classify decides whether the utterance declares or re-asserts its
	// speaker's identity.
	Classify(ctx context.Context, utterance string) (domain.Detection, error)

	// Generate produces a reply conditioned on the speaker's history.
	Generate(ctx context.Context, req GenerateRequest) (domain.Reply, error)
}
