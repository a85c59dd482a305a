package realtime

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Session is the registry's view of a live authenticated connection.
// *Connection satisfies it; tests substitute fakes.
type Session interface {
	ID() string
	SubjectID() string
	Send(payload []byte) error
	Close(code int, reason string)
}

// Registry is the process-wide set of live sessions, keyed by the owning
// subject. A subject may hold several sessions at once (multiple devices).
// Register, Unregister and BroadcastTo may be called concurrently; broadcast
// iterates a snapshot so mutation during delivery never corrupts iteration.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]Session            // sessionID -> session
	subjects map[string]map[string]Session // subjectID -> sessionID -> session
}

// NewRegistry constructs an initialized Registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]Session),
		subjects: make(map[string]map[string]Session),
	}
}

// Register adds an authenticated session to the registry.
func (r *Registry) Register(s Session) {
	r.mu.Lock()
	r.sessions[s.ID()] = s
	owned := r.subjects[s.SubjectID()]
	if owned == nil {
		owned = make(map[string]Session)
		r.subjects[s.SubjectID()] = owned
	}
	owned[s.ID()] = s
	r.mu.Unlock()
}

// Unregister removes a session if it is still tracked. Safe to call more than
// once and on sessions that were never registered.
func (r *Registry) Unregister(s Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[s.ID()]; !ok {
		return
	}
	delete(r.sessions, s.ID())
	if owned, ok := r.subjects[s.SubjectID()]; ok {
		delete(owned, s.ID())
		if len(owned) == 0 {
			delete(r.subjects, s.SubjectID())
		}
	}
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// HasSessions reports whether the subject owns at least one live session.
func (r *Registry) HasSessions(subjectID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subjects[subjectID]) > 0
}

// BroadcastTo delivers payload to every session owned by any of the given
// subjects and returns the number of successful sends. Delivery to a closed
// session is a no-op; the registry heals on the session's disconnect path.
func (r *Registry) BroadcastTo(subjectIDs []string, payload []byte) int {
	r.mu.RLock()
	var targets []Session
	for _, id := range subjectIDs {
		for _, s := range r.subjects[id] {
			targets = append(targets, s)
		}
	}
	r.mu.RUnlock()

	delivered := 0
	for _, s := range targets {
		if err := s.Send(payload); err == nil {
			delivered++
		}
	}
	return delivered
}

// Close terminates all tracked sessions and clears registry state.
func (r *Registry) Close() {
	r.mu.Lock()
	sessions := make([]Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.sessions = make(map[string]Session)
	r.subjects = make(map[string]map[string]Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close(websocket.CloseGoingAway, "registry shutdown")
	}
}
