package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/svaldes/parlante/internal/chat"
	"github.com/svaldes/parlante/internal/domain"
)

// WebSocketHandler serves a streaming chat binding: one JSON frame per turn
// in, one reply frame out. Turns are processed one at a time per connection,
// matching the core's single-utterance session model.
type WebSocketHandler struct {
	svc           *chat.Service
	allowedOrigin string
	isDev         bool
}

// NewWebSocketHandler creates a new WebSocket chat handler.
func NewWebSocketHandler(svc *chat.Service, allowedOrigin string, isDev bool) *WebSocketHandler {
	return &WebSocketHandler{
		svc:           svc,
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
	}
}

// wsMessage represents an inbound WebSocket frame.
type wsMessage struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
}

// wsReply represents an outbound WebSocket frame.
type wsReply struct {
	Type  string        `json:"type"`
	Reply *domain.Reply `json:"reply,omitempty"`
	Error string        `json:"error,omitempty"`
}

// ServeHTTP implements http.Handler for WebSocket upgrade.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr)
		}
	}()

	slog.Info("WebSocket chat connected", "ip", r.RemoteAddr)

	ctx := r.Context()
	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("WebSocket closed by client")
			} else if ctx.Err() == nil {
				slog.Warn("WebSocket read error", "error", err)
			}
			return
		}

		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			if writeErr := h.writeJSON(ws, wsReply{Type: "error", Error: "invalid frame"}); writeErr != nil {
				return
			}
			continue
		}

		switch msg.Type {
		case "chat":
			if msg.Message == "" {
				if err := h.writeJSON(ws, wsReply{Type: "error", Error: "message cannot be empty"}); err != nil {
					return
				}
				continue
			}
			reply := h.svc.ProcessTurn(ctx, msg.Message)
			if err := h.writeJSON(ws, wsReply{Type: "reply", Reply: &reply}); err != nil {
				slog.Debug("Failed to send reply frame", "error", err)
				return
			}
		case "ping":
			if err := h.writeJSON(ws, wsReply{Type: "pong"}); err != nil {
				return
			}
		}
	}
}

func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "*" || origin == h.allowedOrigin {
		return true
	}
	slog.Warn("WebSocket origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}

func (h *WebSocketHandler) writeJSON(ws *websocket.Conn, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return ws.Write(context.Background(), websocket.MessageText, data)
}
