package store

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleStatus    Role = "status"
)

// Message is one transcript entry. Status messages carry the ID of the turn
// that produced them so they can be removed together.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	TurnID    string    `json:"turnId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewMessage(role Role, content, turnID string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		TurnID:    turnID,
		Timestamp: time.Now().UTC(),
	}
}

// MemoryStore keeps one ordered transcript per session in memory.
type MemoryStore struct {
	mu          sync.RWMutex
	sessions    map[string][]Message
	maxMessages int
}

// NewMemoryStore keeps at most maxMessages per session; zero means no limit.
func NewMemoryStore(maxMessages int) *MemoryStore {
	return &MemoryStore{
		sessions:    make(map[string][]Message),
		maxMessages: maxMessages,
	}
}

func (m *MemoryStore) Append(sessionID string, msg Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = append(m.sessions[sessionID], msg)
	m.trimLocked(sessionID)
}

// Get returns a copy of the session transcript.
func (m *MemoryStore) Get(sessionID string) []Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	msgs := m.sessions[sessionID]
	copyMsgs := make([]Message, len(msgs))
	copy(copyMsgs, msgs)
	return copyMsgs
}

func (m *MemoryStore) Has(sessionID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.sessions[sessionID]
	return ok
}

// Resolve removes every status message of turnID and appends msg in one step.
// Messages of other turns keep their relative order.
func (m *MemoryStore) Resolve(sessionID, turnID string, msg Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := m.sessions[sessionID]
	kept := make([]Message, 0, len(msgs)+1)
	for _, x := range msgs {
		if x.Role == RoleStatus && x.TurnID == turnID {
			continue
		}
		kept = append(kept, x)
	}
	m.sessions[sessionID] = append(kept, msg)
	m.trimLocked(sessionID)
}

func (m *MemoryStore) Delete(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}

func (m *MemoryStore) trimLocked(sessionID string) {
	if m.maxMessages <= 0 {
		return
	}
	msgs := m.sessions[sessionID]
	if len(msgs) > m.maxMessages {
		m.sessions[sessionID] = msgs[len(msgs)-m.maxMessages:]
	}
}

// Transcript is the view of a single session.
type Transcript struct {
	store     *MemoryStore
	sessionID string
}

func (m *MemoryStore) Transcript(sessionID string) *Transcript {
	m.mu.Lock()
	if _, ok := m.sessions[sessionID]; !ok {
		m.sessions[sessionID] = []Message{}
	}
	m.mu.Unlock()
	return &Transcript{store: m, sessionID: sessionID}
}

func (t *Transcript) SessionID() string { return t.sessionID }

func (t *Transcript) Append(msg Message) { t.store.Append(t.sessionID, msg) }

// AppendStatus adds an ephemeral status message owned by turnID.
func (t *Transcript) AppendStatus(turnID, label string) {
	t.store.Append(t.sessionID, NewMessage(RoleStatus, label, turnID))
}

func (t *Transcript) Resolve(turnID string, msg Message) { t.store.Resolve(t.sessionID, turnID, msg) }

func (t *Transcript) Messages() []Message { return t.store.Get(t.sessionID) }
