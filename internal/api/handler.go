// Package api provides the HTTP binding over the chat core.
package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/svaldes/parlante/internal/chat"
)

// Handler exposes the chat core's call surface over HTTP.
type Handler struct {
	svc *chat.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *chat.Service) *Handler {
	return &Handler{svc: svc}
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

// RegisterRoutes mounts the chat API.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/chat", h.postChat)
	r.Get("/api/speaker", h.getSpeaker)
	r.Put("/api/speaker", h.putSpeaker)
	r.Delete("/api/speaker", h.deleteSpeaker)
	r.Get("/api/speakers", h.listSpeakers)
	r.Get("/api/history/{speaker}", h.getHistory)
}

type chatRequest struct {
	Message string `json:"message"`
}

type speakerRequest struct {
	Name string `json:"name"`
}

func (h *Handler) postChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		Error(w, http.StatusBadRequest, "message cannot be empty")
		return
	}

	reply := h.svc.ProcessTurn(r.Context(), message)
	JSON(w, http.StatusOK, reply)
}

func (h *Handler) getSpeaker(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]string{"active_speaker": h.svc.ActiveSpeaker()})
}

func (h *Handler) putSpeaker(w http.ResponseWriter, r *http.Request) {
	var req speakerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		Error(w, http.StatusBadRequest, "name cannot be empty")
		return
	}

	id := h.svc.SetActiveSpeaker(req.Name)
	JSON(w, http.StatusOK, map[string]string{"active_speaker": id})
}

func (h *Handler) deleteSpeaker(w http.ResponseWriter, r *http.Request) {
	h.svc.ClearSpeaker()
	JSON(w, http.StatusOK, map[string]string{"active_speaker": ""})
}

func (h *Handler) listSpeakers(w http.ResponseWriter, r *http.Request) {
	speakers, err := h.svc.KnownSpeakers(r.Context())
	if err != nil {
		Error(w, http.StatusServiceUnavailable, "history store unavailable")
		return
	}
	if speakers == nil {
		speakers = []string{}
	}
	JSON(w, http.StatusOK, map[string][]string{"speakers": speakers})
}

func (h *Handler) getHistory(w http.ResponseWriter, r *http.Request) {
	speaker := chi.URLParam(r, "speaker")
	msgs, err := h.svc.History(r.Context(), speaker)
	if err != nil {
		Error(w, http.StatusServiceUnavailable, "history store unavailable")
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{
		"speaker":  speaker,
		"messages": msgs,
	})
}
