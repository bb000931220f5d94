package relationshipshandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"notify/internal/domain/relationships"
	"notify/internal/transport/http/api"
	"notify/internal/transport/http/middleware"
)

type Handler struct {
	Store relationships.ConversationMuter
}

func NewHandler(store relationships.ConversationMuter) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/conversations/{conversationID}/mute", func(r chi.Router) {
		r.Use(middleware.RequireAccount)
		r.Post("/", h.handleMute)
		r.Delete("/", h.handleUnmute)
	})
}

func (h *Handler) handleMute(w http.ResponseWriter, r *http.Request) {
	account, _ := middleware.GetAccount(r)
	requestID := middleware.GetRequestID(r.Context())

	conversationID := chi.URLParam(r, "conversationID")
	if err := h.Store.MuteConversation(r.Context(), account.AccountID, conversationID); err != nil {
		api.Fail(w, http.StatusInternalServerError, "mute_failed", "failed to mute conversation", requestID)
		return
	}
	api.Success(w, map[string]any{"conversationId": conversationID, "muted": true}, requestID)
}

func (h *Handler) handleUnmute(w http.ResponseWriter, r *http.Request) {
	account, _ := middleware.GetAccount(r)
	requestID := middleware.GetRequestID(r.Context())

	conversationID := chi.URLParam(r, "conversationID")
	if err := h.Store.UnmuteConversation(r.Context(), account.AccountID, conversationID); err != nil {
		api.Fail(w, http.StatusInternalServerError, "unmute_failed", "failed to unmute conversation", requestID)
		return
	}
	api.Success(w, map[string]any{"conversationId": conversationID, "muted": false}, requestID)
}
