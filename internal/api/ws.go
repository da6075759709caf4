package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/elilinden/Support-bot/internal/coach"
	"github.com/elilinden/Support-bot/internal/danger"
	"github.com/elilinden/Support-bot/internal/prompts"
)

// originAllowed builds a handshake origin check from CORS-style origin
// globs such as "http://localhost:*". "*" admits every origin. Requests
// without an Origin header come from non-browser clients and are allowed.
func originAllowed(patterns []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := strings.ToLower(r.Header.Get("Origin"))
		if origin == "" {
			return true
		}
		for _, p := range patterns {
			if p == "*" {
				return true
			}
			if ok, err := doublestar.Match(strings.ToLower(p), origin); err == nil && ok {
				return true
			}
		}
		return false
	}
}

// wsRequest is the incoming WebSocket message format.
type wsRequest struct {
	Type      string       `json:"type"`       // "message" or "check"
	SessionID string       `json:"session_id"` // empty starts a new session
	Content   string       `json:"content"`
	Tone      prompts.Tone `json:"tone,omitempty"`
	Mode      string       `json:"mode,omitempty"`
}

// wsResponse is the outgoing WebSocket message format.
type wsResponse struct {
	Type      string        `json:"type"` // "response", "check" or "error"
	SessionID string        `json:"session_id"`
	Content   string        `json:"content,omitempty"`
	Code      string        `json:"code,omitempty"`
	Result    *coach.Result `json:"result,omitempty"`
	Danger    *bool         `json:"danger,omitempty"`
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade", zap.Error(err))
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read", zap.Error(err))
			}
			return
		}

		var req wsRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			h.sendError(conn, "", CodeInvalidRequest, "invalid message format")
			continue
		}

		if req.Content == "" {
			h.sendError(conn, req.SessionID, CodeInvalidRequest, "content is required")
			continue
		}

		switch req.Type {
		case "message":
			h.handleWSMessage(r.Context(), conn, req)
		case "check":
			d := danger.IsImmediateDanger(req.Content)
			h.send(conn, wsResponse{Type: "check", SessionID: req.SessionID, Danger: &d})
		default:
			h.sendError(conn, req.SessionID, CodeInvalidRequest, "unknown message type: "+req.Type)
		}
	}
}

func (h *Handler) handleWSMessage(ctx context.Context, conn *websocket.Conn, req wsRequest) {
	sessionID := req.SessionID

	// Create a new session if needed.
	if sessionID == "" {
		cs, err := h.svc.CreateSession(ctx, "", "")
		if err != nil {
			_, code := classify(err)
			h.sendError(conn, "", code, "failed to create session")
			return
		}
		sessionID = cs.ID
	}

	out, err := h.svc.Turn(ctx, sessionID, TurnInput{Message: req.Content, Tone: req.Tone, Mode: req.Mode})
	if err != nil {
		_, code := classify(err)
		h.sendError(conn, sessionID, code, err.Error())
		return
	}

	h.send(conn, wsResponse{
		Type:      "response",
		SessionID: sessionID,
		Content:   out.Result.AssistantMessage,
		Result:    out.Result,
	})
}

func (h *Handler) send(conn *websocket.Conn, resp wsResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		h.logger.Warn("websocket write", zap.Error(err))
	}
}

func (h *Handler) sendError(conn *websocket.Conn, sessionID, code, message string) {
	h.send(conn, wsResponse{
		Type:      "error",
		SessionID: sessionID,
		Content:   message,
		Code:      code,
	})
}
