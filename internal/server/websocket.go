package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/aksuhana/JS-PLAY-AROUND/internal/engine"
	"github.com/aksuhana/JS-PLAY-AROUND/internal/storage"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsIncoming is a message from the client.
type wsIncoming struct {
	Type    string `json:"type"`
	Dialect string `json:"dialect"`
	Code    string `json:"code"`
}

// wsOutgoing is a message to the client.
type wsOutgoing struct {
	Type       string        `json:"type"`
	RunID      string        `json:"run_id,omitempty"`
	Status     engine.Status `json:"status,omitempty"`
	Text       string        `json:"text,omitempty"`
	DurationMs int64         `json:"duration_ms,omitempty"`
	Content    string        `json:"content,omitempty"`
}

// handleWebSocket runs one snippet per "run" message, in order. Closing the
// connection cancels the run in progress.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ip := clientIP(r)
	ctx := r.Context()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug().Err(err).Msg("websocket read failed")
			}
			return
		}

		var msg wsIncoming
		if err := json.Unmarshal(data, &msg); err != nil {
			s.wsWriteJSON(conn, wsOutgoing{Type: "error", Content: "invalid message: " + err.Error()})
			continue
		}
		if msg.Type != "run" {
			s.wsWriteJSON(conn, wsOutgoing{Type: "error", Content: "unknown message type " + msg.Type})
			continue
		}

		if !s.limiter.Allow(ip) {
			s.wsWriteJSON(conn, wsOutgoing{Type: "error", Content: "Too many requests"})
			continue
		}
		out := s.engine.Run(ctx, runRequest{Dialect: msg.Dialect, Code: msg.Code}.engineRequest())
		s.limiter.Done()
		s.history.Record(ctx, out, storage.OriginWS)

		resp := out.Response()
		s.wsWriteJSON(conn, wsOutgoing{
			Type:       "result",
			RunID:      resp.RunID,
			Status:     resp.Status,
			Text:       resp.Text,
			DurationMs: resp.DurationMs,
		})
	}
}

func (s *Server) wsWriteJSON(conn *websocket.Conn, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error().Err(err).Msg("websocket marshal failed")
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.logger.Debug().Err(err).Msg("websocket write failed")
	}
}
