package types

import "time"

type ChatRequest struct {
	SessionID string `json:"sessionId,omitempty"`
	Message   string `json:"message"`
}

type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	TurnID    string    `json:"turnId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ChatResponse struct {
	SessionID string    `json:"sessionId"`
	Reply     string    `json:"reply"`
	TurnID    string    `json:"turnId"`
	Outcome   string    `json:"outcome"`
	Synthetic bool      `json:"synthetic"`
	Phases    []string  `json:"phases"`
	Messages  []Message `json:"messages"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type TurnState struct {
	TurnID string `json:"turnId"`
	Phase  string `json:"phase"`
}

// Snapshot is the transcript plus loading state as seen by a client.
type Snapshot struct {
	SessionID string      `json:"sessionId"`
	Messages  []Message   `json:"messages"`
	IsLoading bool        `json:"isLoading"`
	Turns     []TurnState `json:"turns"`
	Input     string      `json:"input"`
}

// Websocket frame types.
const (
	FrameSubmit   = "submit"
	FrameInput    = "input"
	FrameSnapshot = "snapshot"
	FrameReply    = "reply"
	FrameError    = "error"
)

// ClientFrame is sent by a websocket client. A frame without a type is a
// submission.
type ClientFrame struct {
	Type    string `json:"type,omitempty"`
	Message string `json:"message"`
}

type ServerFrame struct {
	Type     string        `json:"type"`
	Snapshot *Snapshot     `json:"snapshot,omitempty"`
	Reply    *ChatResponse `json:"reply,omitempty"`
	Error    string        `json:"error,omitempty"`
}
