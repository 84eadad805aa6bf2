package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"iss-assistant-backend/internal/chat"
	"iss-assistant-backend/internal/types"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 50 * time.Second
)

var upgrader = websocket.Upgrader{
	// Origins are enforced by the CORS policy on the HTTP routes.
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// handleWS streams conversation snapshots and accepts submissions. Each
// submission runs as its own turn, so turns may overlap.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conv, _ := s.sessions.GetOrCreate(getSessionID(r))
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	log := s.log.With().Str("session_id", conv.SessionID()).Logger()
	log.Info().Msg("websocket connected")

	ctx, cancel := context.WithCancel(r.Context())
	snapshots, unsubscribe := conv.Subscribe()
	out := make(chan types.ServerFrame, 8)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer conn.Close()
		s.wsWriter(ctx, conn, snapshots, out)
	}()

	conn.SetReadLimit(maxBodyBytes)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	send := func(f types.ServerFrame) {
		select {
		case out <- f:
		case <-ctx.Done():
		}
	}

	for {
		var frame types.ClientFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Msg("websocket read ended")
			}
			break
		}
		switch frame.Type {
		case types.FrameInput:
			conv.SetInput(frame.Message)
		case "", types.FrameSubmit:
			if strings.TrimSpace(frame.Message) == "" {
				send(types.ServerFrame{Type: types.FrameError, Error: "message is required"})
				continue
			}
			wg.Add(1)
			go func(msg string) {
				defer wg.Done()
				reply, err := conv.Submit(ctx, msg)
				if err != nil {
					if !errors.Is(err, context.Canceled) {
						send(types.ServerFrame{Type: types.FrameError, Error: err.Error()})
					}
					return
				}
				resp := toChatResponse(conv.SessionID(), reply, conv.Snapshot())
				send(types.ServerFrame{Type: types.FrameReply, Reply: &resp})
			}(frame.Message)
		default:
			send(types.ServerFrame{Type: types.FrameError, Error: "unknown frame type " + frame.Type})
		}
	}

	cancel()
	unsubscribe()
	_ = conn.Close()
	wg.Wait()
	log.Info().Msg("websocket disconnected")
}

// wsWriter is the only goroutine that writes to conn.
func (s *Server) wsWriter(ctx context.Context, conn *websocket.Conn, snapshots <-chan chat.Snapshot, out <-chan types.ServerFrame) {
	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	write := func(f types.ServerFrame) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		return conn.WriteJSON(f) == nil
	}

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			return
		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			v := toSnapshot(snap)
			if !write(types.ServerFrame{Type: types.FrameSnapshot, Snapshot: &v}) {
				return
			}
		case f := <-out:
			if !write(f) {
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
