package chat

import (
	"sync"

	"github.com/google/uuid"

	"iss-assistant-backend/internal/store"
)

// Sessions maps session IDs to conversations. Conversations live until the
// process exits.
type Sessions struct {
	mu       sync.Mutex
	store    *store.MemoryStore
	pipeline Pipeline
	opts     Options
	convs    map[string]*Conversation
}

func NewSessions(st *store.MemoryStore, p Pipeline, opts Options) *Sessions {
	return &Sessions{store: st, pipeline: p, opts: opts, convs: make(map[string]*Conversation)}
}

// GetOrCreate returns the conversation for id. An empty or unknown id gets a
// new session under a freshly minted ID; client-chosen IDs are never adopted.
// The bool reports creation.
func (s *Sessions) GetOrCreate(id string) (*Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.convs[id]; ok {
		return c, false
	}
	id = uuid.NewString()
	c := NewConversation(s.store.Transcript(id), s.pipeline, s.opts)
	s.convs[id] = c
	return c, true
}

func (s *Sessions) Get(id string) (*Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.convs[id]
	return c, ok
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.convs)
}
