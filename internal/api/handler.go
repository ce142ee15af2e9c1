// Package api provides HTTP handlers for the sales agent API.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/npetros/argosales/internal/agent"
	"github.com/npetros/argosales/internal/domain"
	"github.com/npetros/argosales/internal/places"
	"github.com/npetros/argosales/internal/session"
	"github.com/npetros/argosales/internal/store"
)

// Handler serves the chat endpoints and the place-photo proxy.
type Handler struct {
	sessions   *session.Store
	composer   *agent.Composer
	persona    agent.Persona
	model      string
	sessionCfg session.Config
	archive    store.Archive
	places     *places.Client // nil disables the photo endpoints
}

// NewHandler creates a new Handler with common dependencies.
func NewHandler(sessions *session.Store, composer *agent.Composer, persona agent.Persona, model string, sessionCfg session.Config, archive store.Archive, placesClient *places.Client) *Handler {
	if archive == nil {
		archive = store.NopArchive{}
	}
	return &Handler{
		sessions:   sessions,
		composer:   composer,
		persona:    persona,
		model:      model,
		sessionCfg: sessionCfg,
		archive:    archive,
		places:     placesClient,
	}
}

// RegisterRoutes attaches all HTTP routes to the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.Chat)
	r.Get("/chat", h.ChatStream) // websocket upgrade, ?stream=true
	r.Get("/botname", h.BotName)
	r.Get("/api/place-photos", h.PlacePhotos)
	r.Get("/api/photo/{photoReference}", h.Photo)
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	HumanSay  string `json:"human_say"`
}

type chatResponse struct {
	Name  string `json:"name"`
	Say   string `json:"say"`
	Stage string `json:"stage"`
}

// Chat handles one conversation turn for a session.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.SessionID = strings.TrimSpace(req.SessionID)
	req.HumanSay = strings.TrimSpace(req.HumanSay)
	if req.SessionID == "" {
		Error(w, http.StatusBadRequest, "session_id is required")
		return
	}
	if req.HumanSay == "" {
		Error(w, http.StatusBadRequest, "human_say is required")
		return
	}

	sess := h.sessions.GetOrCreate(req.SessionID, h.sessionCfg)
	sess.Lock()
	defer sess.Unlock()

	before := len(sess.Transcript)
	say, err := h.composer.Compose(r.Context(), sess, req.HumanSay)
	if err != nil {
		slog.Error("chat turn failed", "session_id", sess.ID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to generate a reply")
		return
	}

	h.archiveTurns(r, sess.ID, sess.Transcript[before:])

	JSON(w, http.StatusOK, chatResponse{
		Name:  h.persona.SalespersonName,
		Say:   say,
		Stage: sess.Stage,
	})
}

// archiveTurns records the turns a completed exchange added. Archive
// failures are logged, never surfaced to the client.
func (h *Handler) archiveTurns(r *http.Request, sessionID string, turns []domain.Turn) {
	for _, turn := range turns {
		if err := h.archive.AppendTurn(r.Context(), sessionID, turn); err != nil {
			slog.Warn("failed to archive turn", "session_id", sessionID, "error", err)
			return
		}
	}
}

// BotName reports the configured agent identity.
func (h *Handler) BotName(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]string{
		"name":  h.persona.SalespersonName,
		"model": h.model,
	})
}

// PlacePhotos returns photo URLs for a location.
func (h *Handler) PlacePhotos(w http.ResponseWriter, r *http.Request) {
	if h.places == nil {
		Error(w, http.StatusServiceUnavailable, "place photos are not configured")
		return
	}
	location := strings.TrimSpace(r.URL.Query().Get("location"))
	if location == "" {
		Error(w, http.StatusBadRequest, "location query parameter is required")
		return
	}

	urls, err := h.places.PhotoURLs(r.Context(), location)
	if err != nil {
		if errors.Is(err, places.ErrNotFound) {
			Error(w, http.StatusNotFound, "no photos found for this location")
			return
		}
		slog.Error("place photo lookup failed", "location", location, "error", err)
		Error(w, http.StatusBadGateway, "photo lookup failed")
		return
	}
	JSON(w, http.StatusOK, map[string][]string{"photos": urls})
}

// Photo proxies a single photo by its reference.
func (h *Handler) Photo(w http.ResponseWriter, r *http.Request) {
	if h.places == nil {
		Error(w, http.StatusServiceUnavailable, "place photos are not configured")
		return
	}
	ref := chi.URLParam(r, "photoReference")
	if ref == "" {
		Error(w, http.StatusBadRequest, "photo reference is required")
		return
	}

	data, contentType, err := h.places.Photo(r.Context(), ref)
	if err != nil {
		if errors.Is(err, places.ErrNotFound) {
			Error(w, http.StatusNotFound, "photo not found")
			return
		}
		slog.Error("photo proxy failed", "ref", ref, "error", err)
		Error(w, http.StatusBadGateway, "photo fetch failed")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := w.Write(data); err != nil {
		slog.Debug("failed to write photo response", "error", err)
	}
}
