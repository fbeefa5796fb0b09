// Package chat implements the turn-processing core: identity detection,
// session routing, and per-speaker conversation history.
package chat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/svaldes/parlante/internal/domain"
	"github.com/svaldes/parlante/internal/llm"
	"github.com/svaldes/parlante/internal/store"
)

// Service is the single entry point for processing chat turns. It owns the
// session state for its conversation surface; the history store owns all
// durable state. One Service instance is shared process-wide by the front-end
// bindings, matching the assistant's single-microphone model: whoever
// identified last owns the session.
type Service struct {
	store    store.History
	provider llm.Provider
	detector *Detector
	session  *Session
	prompts  llm.Prompts
}

// NewService creates the chat core on top of a history store and a provider.
func NewService(st store.History, provider llm.Provider, prompts llm.Prompts) *Service {
	return &Service{
		store:    st,
		provider: provider,
		detector: NewDetector(provider),
		session:  &Session{},
		prompts:  prompts,
	}
}

// ProcessTurn routes one utterance: classify it, update the active speaker,
// read that speaker's history, generate a reply, and append the user and
// assistant turns in that order. No condition here is fatal; every failure is
// per-turn and reflected in the returned Reply.
//
// A reference to a different stored speaker switches the session exactly like
// a fresh self-assertion; both detection kinds carry the same downstream
// effect.
func (s *Service) ProcessTurn(ctx context.Context, utterance string) domain.Reply {
	det := s.detector.Detect(ctx, utterance)
	if det.Identified && det.Name != "" {
		id := s.session.SetActive(det.Name)
		slog.Info("speaker identified", "speaker", id, "kind", det.Kind)
	}

	active := s.session.Active()
	if active == "" {
		// Short-circuit: no store traffic until somebody says who they are.
		return domain.Reply{
			Message:             s.prompts.IdentifyRequest,
			NeedsIdentification: true,
		}
	}

	history, err := s.store.ReadAll(ctx, active)
	if err != nil {
		// Availability over consistency: a degraded store means the speaker
		// has no prior context this turn, not a failed turn.
		slog.Warn("history read failed, continuing without context", "speaker", active, "error", err)
		history = nil
	}

	generated, err := s.provider.Generate(ctx, llm.GenerateRequest{
		Speaker:   active,
		Utterance: utterance,
		History:   history,
	})
	if err != nil {
		slog.Error("reply generation failed", "speaker", active, "error", err)
		return domain.Reply{
			Message:       s.prompts.GenerationFailure,
			ActiveSpeaker: active,
		}
	}

	reply := domain.Reply{
		Message:       generated.Message,
		ActiveSpeaker: active,
		Persisted:     true,
	}

	if err := s.store.AppendTurn(ctx, active,
		domain.Message{Role: domain.RoleUser, Content: utterance},
		domain.Message{Role: domain.RoleAssistant, Content: reply.Message},
	); err != nil {
		slog.Error("turn write-back failed", "speaker", active, "error", err)
		reply.Persisted = false
	}
	return reply
}

// SetActiveSpeaker switches the session to name without consulting the
// detector and returns the normalized identifier.
func (s *Service) SetActiveSpeaker(name string) string {
	id := s.session.SetActive(name)
	slog.Info("speaker switched manually", "speaker", id)
	return id
}

// ActiveSpeaker returns the current speaker, or "" when unidentified.
func (s *Service) ActiveSpeaker() string {
	return s.session.Active()
}

// ClearSpeaker resets the session to unidentified.
func (s *Service) ClearSpeaker() {
	s.session.Clear()
}

// KnownSpeakers lists every speaker with stored history.
func (s *Service) KnownSpeakers(ctx context.Context) ([]string, error) {
	speakers, err := s.store.ListSpeakers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list speakers: %w", err)
	}
	return speakers, nil
}

// History returns the ordered conversation log for one speaker.
func (s *Service) History(ctx context.Context, speakerID string) ([]domain.Message, error) {
	msgs, err := s.store.ReadAll(ctx, speakerID)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return msgs, nil
}
