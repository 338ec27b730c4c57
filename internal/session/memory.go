package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process [Store] for development and tests. Secrets
// expire by wall clock; ordinary fields do not expire.
type MemoryStore struct {
	mu        sync.Mutex
	sessions  map[string]map[string]string
	secrets   map[string]secret
	secretTTL time.Duration
}

type secret struct {
	value   string
	expires time.Time
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions:  make(map[string]map[string]string),
		secrets:   make(map[string]secret),
		secretTTL: DefaultSecretTTL,
	}
}

// GetField satisfies the [Store] interface.
func (s *MemoryStore) GetField(_ context.Context, sid, field string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	val, ok := s.sessions[sid][field]
	if !ok {
		return "", ErrNoValue
	}
	return val, nil
}

// SetField satisfies the [Store] interface.
func (s *MemoryStore) SetField(_ context.Context, sid, field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions[sid] == nil {
		s.sessions[sid] = make(map[string]string)
	}
	s.sessions[sid][field] = value
	return nil
}

// DeleteField satisfies the [Store] interface.
func (s *MemoryStore) DeleteField(_ context.Context, sid, field string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions[sid], field)
	return nil
}

// GetSecret satisfies the [Store] interface.
func (s *MemoryStore) GetSecret(_ context.Context, sid string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sec, ok := s.secrets[sid]
	if !ok || time.Now().After(sec.expires) {
		delete(s.secrets, sid)
		return "", ErrNoValue
	}
	return sec.value, nil
}

// SetSecret satisfies the [Store] interface.
func (s *MemoryStore) SetSecret(_ context.Context, sid, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secrets[sid] = secret{value: value, expires: time.Now().Add(s.secretTTL)}
	return nil
}

// DeleteSecret satisfies the [Store] interface.
func (s *MemoryStore) DeleteSecret(_ context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.secrets, sid)
	return nil
}

// Destroy satisfies the [Store] interface.
func (s *MemoryStore) Destroy(_ context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sid)
	delete(s.secrets, sid)
	return nil
}

var _ Store = (*MemoryStore)(nil)
