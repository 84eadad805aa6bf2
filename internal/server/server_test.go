package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iss-assistant-backend/internal/assistant"
	"iss-assistant-backend/internal/chat"
	"iss-assistant-backend/internal/config"
	"iss-assistant-backend/internal/inventory"
	"iss-assistant-backend/internal/llm"
	"iss-assistant-backend/internal/observability"
	"iss-assistant-backend/internal/store"
	"iss-assistant-backend/internal/types"
)

type staticDispatcher struct{ result any }

func (d staticDispatcher) Dispatch(ctx context.Context, endpoint, method string, params, payload map[string]any) (any, error) {
	return d.result, nil
}

// model answers "who" questions generally and everything else via /api/logs.
func testModel() llm.Model {
	return llm.ModelFunc(func(ctx context.Context, req llm.Request) (string, error) {
		switch {
		case strings.Contains(req.Prompt, "Available actions:"):
			if strings.Contains(req.Prompt, "who are you") {
				return `{"isGeneralQuery": true}`, nil
			}
			return `{"endpoint": "/api/logs", "method": "GET"}`, nil
		case strings.Contains(req.Prompt, "Data:\n"):
			return "Nothing happened today.", nil
		default:
			return "I'm the ISS Assistant.", nil
		}
	})
}

func newTestServer(t *testing.T, checks map[string]observability.HealthCheckFunc) *Server {
	t.Helper()
	t.Setenv("GEMINI_API_KEY", "test")
	cfg, err := config.LoadFromEnv()
	require.NoError(t, err)

	prompts := assistant.DefaultPrompts()
	m := testModel()
	sessions := chat.NewSessions(store.NewMemoryStore(0), chat.Pipeline{
		Interpreter: assistant.NewInterpreter(m, prompts),
		Dispatcher:  staticDispatcher{result: map[string]any{"logs": []any{}}},
		Synthesizer: inventory.NewSynthesizer(1),
		Summarizer:  assistant.NewSummarizer(m, prompts),
		Responder:   assistant.NewResponder(m, prompts),
	}, chat.Options{Policy: chat.PolicyOverlap, MockFallback: true, Greeting: prompts.Greeting, ErrorReply: prompts.ErrorReply})

	if checks == nil {
		checks = map[string]observability.HealthCheckFunc{}
	}
	return NewServer(cfg, sessions, checks)
}

func postChat(t *testing.T, h http.Handler, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndReady(t *testing.T) {
	s := newTestServer(t, map[string]observability.HealthCheckFunc{
		"backend": func(context.Context) error { return errors.New("connection refused") },
	})

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestChat_RoundTripAndSessionReuse(t *testing.T) {
	s := newTestServer(t, nil)

	rec := postChat(t, s.Router(), `{"message":"show me today's activity"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp types.ChatResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp.SessionID)
	assert.NotEmpty(t, resp.TurnID)
	assert.Equal(t, "Nothing happened today.", resp.Reply)
	assert.Equal(t, "ok", resp.Outcome)
	assert.False(t, resp.Synthetic)
	assert.Equal(t, []string{"submitted", "understanding", "fetching", "summarizing", "resolved"}, resp.Phases)
	require.Len(t, resp.Messages, 3)
	assert.Equal(t, "assistant", resp.Messages[0].Role)
	assert.Equal(t, resp.SessionID, rec.Header().Get("X-Session-Id"))

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Equal(t, resp.SessionID, cookies[0].Value)

	rec = postChat(t, s.Router(), `{"message":"who are you?"}`, cookies[0])
	require.Equal(t, http.StatusOK, rec.Code)
	var second types.ChatResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&second))
	assert.Equal(t, resp.SessionID, second.SessionID)
	assert.Equal(t, "I'm the ISS Assistant.", second.Reply)
	assert.Len(t, second.Messages, 5)
}

func TestChat_BadRequests(t *testing.T) {
	s := newTestServer(t, nil)
	for _, body := range []string{`{`, `{"message":"   "}`, `{}`} {
		rec := postChat(t, s.Router(), body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		var e types.ErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&e))
		assert.NotEmpty(t, e.Error)
	}
}

func TestTranscript_NewSessionHasGreeting(t *testing.T) {
	s := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chat/transcript", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var snap types.Snapshot
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&snap))
	assert.NotEmpty(t, snap.SessionID)
	assert.Equal(t, snap.SessionID, rec.Header().Get("X-Session-Id"))
	assert.False(t, snap.IsLoading)
	require.Len(t, snap.Messages, 1)
	assert.Equal(t, assistant.DefaultPrompts().Greeting, snap.Messages[0].Content)
}

func TestSession_ClientChosenIDsAreNotAdopted(t *testing.T) {
	s := newTestServer(t, nil)

	transcript := func(req *http.Request) types.Snapshot {
		rec := httptest.NewRecorder()
		s.Router().ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		var snap types.Snapshot
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&snap))
		return snap
	}

	byQuery := transcript(httptest.NewRequest(http.MethodGet, "/api/chat/transcript?sessionId=crew-7", nil))
	assert.NotEqual(t, "crew-7", byQuery.SessionID)

	req := httptest.NewRequest(http.MethodGet, "/api/chat/transcript", nil)
	req.Header.Set("X-Session-Id", "crew-7")
	byHeader := transcript(req)
	assert.NotEqual(t, "crew-7", byHeader.SessionID)
	assert.NotEqual(t, byQuery.SessionID, byHeader.SessionID)

	rec := postChat(t, s.Router(), `{"sessionId":"crew-7","message":"show me today's activity"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp types.ChatResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEqual(t, "crew-7", resp.SessionID)

	// A server-minted ID is honored.
	req = httptest.NewRequest(http.MethodGet, "/api/chat/transcript", nil)
	req.Header.Set("X-Session-Id", resp.SessionID)
	assert.Equal(t, resp.SessionID, transcript(req).SessionID)
}

func TestMetricsRoute(t *testing.T) {
	s := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWebsocket_SubmitStreamsSnapshotsAndReply(t *testing.T) {
	s := newTestServer(t, nil)
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/chat/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var first types.ServerFrame
	require.NoError(t, conn.ReadJSON(&first))
	require.Equal(t, types.FrameSnapshot, first.Type)
	sid := first.Snapshot.SessionID
	require.NotEmpty(t, sid)

	require.NoError(t, conn.WriteJSON(types.ClientFrame{Message: "any activity?"}))

	var reply *types.ChatResponse
	for reply == nil {
		var f types.ServerFrame
		require.NoError(t, conn.ReadJSON(&f))
		switch f.Type {
		case types.FrameReply:
			reply = f.Reply
		case types.FrameError:
			t.Fatalf("unexpected error frame: %s", f.Error)
		}
	}
	assert.Equal(t, "Nothing happened today.", reply.Reply)
	assert.Equal(t, sid, reply.SessionID)

	require.NoError(t, conn.WriteJSON(types.ClientFrame{Message: " "}))
	for {
		var f types.ServerFrame
		require.NoError(t, conn.ReadJSON(&f))
		if f.Type == types.FrameError {
			assert.Equal(t, "message is required", f.Error)
			break
		}
	}
}
