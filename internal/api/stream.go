package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// Stream frame types. A turn is a sequence of token frames closed by a done
// frame; errors replace the done frame.
type streamFrame struct {
	Type  string `json:"type"` // "token", "done" or "error"
	Token string `json:"token,omitempty"`
	Name  string `json:"name,omitempty"`
	Say   string `json:"say,omitempty"`
	Stage string `json:"stage,omitempty"`
	Error string `json:"error,omitempty"`
}

// ChatStream is the WebSocket variant of Chat, reached via
// GET /chat?stream=true: the client sends one chat request per message and
// receives the reply token by token.
func (h *Handler) ChatStream(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("stream") != "true" {
		Error(w, http.StatusBadRequest, "GET /chat requires stream=true and a websocket upgrade")
		return
	}
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "conversation ended"); closeErr != nil {
			slog.Debug("websocket close", "error", closeErr)
		}
	}()

	ctx := r.Context()
	for {
		var req chatRequest
		if err := wsjson.Read(ctx, ws, &req); err != nil {
			if websocket.CloseStatus(err) == -1 && ctx.Err() == nil {
				slog.Debug("websocket read failed", "error", err)
			}
			return
		}
		req.SessionID = strings.TrimSpace(req.SessionID)
		req.HumanSay = strings.TrimSpace(req.HumanSay)
		if req.SessionID == "" || req.HumanSay == "" {
			h.writeFrame(ctx, ws, streamFrame{Type: "error", Error: "session_id and human_say are required"})
			continue
		}

		sess := h.sessions.GetOrCreate(req.SessionID, h.sessionCfg)
		sess.Lock()

		before := len(sess.Transcript)
		say, err := h.composer.ComposeStream(ctx, sess, req.HumanSay, func(token string) {
			h.writeFrame(ctx, ws, streamFrame{Type: "token", Token: token})
		})
		if err != nil {
			sess.Unlock()
			slog.Error("streamed chat turn failed", "session_id", sess.ID, "error", err)
			h.writeFrame(ctx, ws, streamFrame{Type: "error", Error: "failed to generate a reply"})
			continue
		}

		added := sess.Transcript[before:]
		stage := sess.Stage
		sess.Unlock()

		h.archiveTurns(r, sess.ID, added)
		h.writeFrame(ctx, ws, streamFrame{
			Type:  "done",
			Name:  h.persona.SalespersonName,
			Say:   say,
			Stage: stage,
		})
	}
}

func (h *Handler) writeFrame(ctx context.Context, ws *websocket.Conn, frame streamFrame) {
	if err := wsjson.Write(ctx, ws, frame); err != nil {
		slog.Debug("websocket write failed", "error", err)
	}
}
