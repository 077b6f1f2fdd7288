// Package session holds per-user form progress: the current step and the
// answers collected so far. Mutations are serialized per user id so that
// concurrent events for the same user cannot produce divergent transitions.
package session

import (
	"time"

	"intakebot/pkg/proto"
)

// Session tracks one user's progress through the intake flow.
type Session struct {
	UserID      string            `json:"user_id"`
	CurrentStep proto.Step        `json:"current_step"`
	Answers     map[string]string `json:"answers"`
	Documents   []string          `json:"documents"`
	StartedAt   time.Time         `json:"started_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// newSession creates a fresh session positioned at the entry step.
func newSession(userID string, entry proto.Step) *Session {
	now := time.Now().UTC()
	return &Session{
		UserID:      userID,
		CurrentStep: entry,
		Answers:     make(map[string]string),
		Documents:   make([]string, 0),
		StartedAt:   now,
		UpdatedAt:   now,
	}
}

// SetAnswer records a collected field value.
func (s *Session) SetAnswer(field, value string) {
	if s.Answers == nil {
		s.Answers = make(map[string]string)
	}
	s.Answers[field] = value
	s.UpdatedAt = time.Now().UTC()
}

// AppendDocument appends an uploaded filename, preserving arrival order.
func (s *Session) AppendDocument(filename string) {
	s.Documents = append(s.Documents, filename)
	s.UpdatedAt = time.Now().UTC()
}

// Advance moves the session to the given step.
func (s *Session) Advance(step proto.Step) {
	s.CurrentStep = step
	s.UpdatedAt = time.Now().UTC()
}

// Clone returns a deep copy safe to use outside the store's lock.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Answers = make(map[string]string, len(s.Answers))
	for k, v := range s.Answers {
		cp.Answers[k] = v
	}
	cp.Documents = append([]string{}, s.Documents...)
	return &cp
}
