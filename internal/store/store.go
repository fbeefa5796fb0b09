// Package store provides durable conversation history persistence.
package store

import (
	"context"
	"errors"

	"github.com/svaldes/parlante/internal/domain"
)

// ErrUnavailable marks connectivity failures to the underlying store.
// Callers use errors.Is to tell a degraded store apart from an empty log.
var ErrUnavailable = errors.New("history store unavailable")

// History is the durable, append-only per-speaker message log. Each speaker
// identifier keys exactly one log; the store is the sole reader and writer of
// durable state.
type History interface {
	// AppendTurn adds messages to the tail of the speaker's log in the given
	// order, creating the log if absent. The messages land atomically: a
	// user/assistant pair is never interleaved with a concurrent writer to
	// the same speaker, and existing messages are never reordered or dropped.
	AppendTurn(ctx context.Context, speakerID string, msgs ...domain.Message) error

	// ReadAll returns the speaker's ordered log, oldest first. A speaker with
	// no stored messages yields an empty slice, not an error.
	ReadAll(ctx context.Context, speakerID string) ([]domain.Message, error)

	// ListSpeakers returns every speaker identifier with at least one stored
	// message, deduplicated, in stable order.
	ListSpeakers(ctx context.Context) ([]string, error)

	// Ping verifies store connectivity.
	Ping(ctx context.Context) error

	// Close closes the underlying connection.
	Close() error
}
