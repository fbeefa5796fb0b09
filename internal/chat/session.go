package chat

import (
	"sync"

	"github.com/svaldes/parlante/internal/domain"
)

// Session holds the active speaker for one conversation surface. It starts
// empty and is never persisted: a fresh session derives its speaker from the
// next identification utterance or an explicit override. The mutex covers
// concurrent front-end bindings sharing one process-wide core instance.
type Session struct {
	mu     sync.Mutex
	active string
}

// Active returns the current speaker identifier, or "" when unidentified.
func (s *Session) Active() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// SetActive normalizes name and makes it the active speaker, overwriting any
// prior value. It returns the normalized identifier.
func (s *Session) SetActive(name string) string {
	id := domain.NormalizeSpeaker(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = id
	return id
}

// Clear resets the session to unidentified.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = ""
}
