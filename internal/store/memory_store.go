package store

import (
	"context"
	"sync"

	"github.com/soyeahso/valet/internal/openai"
)

// MemoryChatStore is an in-memory chat.Store implementation used for
// ephemeral runs and tests.
type MemoryChatStore struct {
	mu       sync.RWMutex
	order    []string
	tags     map[string][]string
	messages map[string][]openai.Message
}

// NewMemoryChatStore creates an in-memory chat store.
func NewMemoryChatStore() *MemoryChatStore {
	return &MemoryChatStore{
		tags:     make(map[string][]string),
		messages: make(map[string][]openai.Message),
	}
}

// EnsureSession records the session and its tag set once.
func (s *MemoryChatStore) EnsureSession(_ context.Context, sessionID string, tags []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tags[sessionID]; !ok {
		s.order = append(s.order, sessionID)
		s.tags[sessionID] = append([]string(nil), tags...)
	}
	return nil
}

// AppendMessage appends one message to a session's log.
func (s *MemoryChatStore) AppendMessage(_ context.Context, sessionID string, msg openai.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[sessionID] = append(s.messages[sessionID], msg)
	return nil
}

// Messages returns a session's messages in append order.
func (s *MemoryChatStore) Messages(_ context.Context, sessionID string) ([]openai.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]openai.Message, len(s.messages[sessionID]))
	copy(out, s.messages[sessionID])
	return out, nil
}

// Sessions lists recorded sessions in creation order.
func (s *MemoryChatStore) Sessions(_ context.Context) ([]SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	infos := make([]SessionInfo, 0, len(s.order))
	for _, id := range s.order {
		infos = append(infos, SessionInfo{
			ID:       id,
			Tags:     append([]string(nil), s.tags[id]...),
			Messages: len(s.messages[id]),
		})
	}
	return infos, nil
}
