package session

import (
	"sync"

	"github.com/google/uuid"
)

// SecretRecord is the server-only side of a generated question: the answer,
// the explanation and the grading bookkeeping. It is never serialized into a
// generation response.
type SecretRecord struct {
	QuestionID     string
	Type           string
	Question       string
	Options        []string
	CodeWithBlanks string
	Answer         any // string or []string (ordered, for drag_drop)
	Explanation    string
	Language       string
	Attempts       int
	FirstWrong     bool
}

// Store keeps per-session secret records for the lifetime of the process.
// Sessions are created on generation and destroyed by End; there is no TTL
// and no persistence.
type Store interface {
	// Create opens a new session holding the given records and returns its id.
	Create(records []*SecretRecord) string
	// Get returns a snapshot of one record, or false when the session or
	// question is unknown.
	Get(sessionID, questionID string) (SecretRecord, bool)
	// RecordAttempt bumps the attempt counter (and the first-attempt-wrong
	// flag on a missed first try) and returns the updated snapshot.
	RecordAttempt(sessionID, questionID string, correct bool) (SecretRecord, bool)
	// End removes the session and returns its records for summarizing.
	End(sessionID string) ([]*SecretRecord, bool)
}

// MemoryStore is the process-local Store implementation.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]map[string]*SecretRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]map[string]*SecretRecord)}
}

func (s *MemoryStore) Create(records []*SecretRecord) string {
	id := uuid.NewString()
	byQuestion := make(map[string]*SecretRecord, len(records))
	for _, rec := range records {
		cp := *rec
		byQuestion[rec.QuestionID] = &cp
	}
	s.mu.Lock()
	s.sessions[id] = byQuestion
	s.mu.Unlock()
	return id
}

func (s *MemoryStore) Get(sessionID, questionID string) (SecretRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.sessions[sessionID][questionID]
	if !ok {
		return SecretRecord{}, false
	}
	return *rec, true
}

func (s *MemoryStore) RecordAttempt(sessionID, questionID string, correct bool) (SecretRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sessions[sessionID][questionID]
	if !ok {
		return SecretRecord{}, false
	}
	rec.Attempts++
	if rec.Attempts == 1 && !correct {
		rec.FirstWrong = true
	}
	return *rec, true
}

func (s *MemoryStore) End(sessionID string) ([]*SecretRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byQuestion, ok := s.sessions[sessionID]
	if !ok {
		return nil, false
	}
	delete(s.sessions, sessionID)
	out := make([]*SecretRecord, 0, len(byQuestion))
	for _, rec := range byQuestion {
		out = append(out, rec)
	}
	return out, true
}

// Len reports the number of live sessions. Used by tests and health logging.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
