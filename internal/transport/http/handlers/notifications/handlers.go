package notificationshandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"notify/internal/domain/notifications"
	"notify/internal/transport/http/api"
	"notify/internal/transport/http/middleware"
	"notify/internal/transport/http/shared"
)

type ServiceAPI interface {
	List(ctx context.Context, accountID string, limit, offset int) ([]notifications.Notification, error)
	Count(ctx context.Context, accountID string) (int, error)
	MarkRead(ctx context.Context, accountID, notificationID string) error
	EmailPreferences(ctx context.Context, accountID string) (map[string]bool, error)
	UpdateEmailPreferences(ctx context.Context, accountID string, prefs map[string]bool) error
	InteractionSettings(ctx context.Context, accountID string) (notifications.InteractionSettings, error)
	UpdateInteractionSettings(ctx context.Context, accountID string, settings notifications.InteractionSettings) error
}

type Handler struct {
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/notifications", func(r chi.Router) {
		r.Use(middleware.RequireAccount)
		r.Get("/", h.handleList)
		r.Post("/{notificationID}/read", h.handleMarkRead)
		r.Get("/email-preferences", h.handleEmailPreferences)
		r.Put("/email-preferences", h.handleUpdateEmailPreferences)
		r.Get("/interaction-settings", h.handleInteractionSettings)
		r.Put("/interaction-settings", h.handleUpdateInteractionSettings)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	account, _ := middleware.GetAccount(r)
	requestID := middleware.GetRequestID(r.Context())

	page := shared.ParsePagination(r, 40, 200)
	total, err := h.Service.Count(r.Context(), account.AccountID)
	if err != nil {
		slog.Warn("notification count failed", "err", err)
	}

	items, err := h.Service.List(r.Context(), account.AccountID, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "notification_list_failed", "failed to list notifications", requestID)
		return
	}
	if items == nil {
		items = []notifications.Notification{}
	}

	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	api.Success(w, items, requestID)
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	account, _ := middleware.GetAccount(r)
	requestID := middleware.GetRequestID(r.Context())

	notificationID := chi.URLParam(r, "notificationID")
	if err := h.Service.MarkRead(r.Context(), account.AccountID, notificationID); err != nil {
		if errors.Is(err, notifications.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "notification not found", requestID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "notification_update_failed", "failed to update notification", requestID)
		return
	}

	api.Success(w, map[string]string{"status": "read"}, requestID)
}

func (h *Handler) handleEmailPreferences(w http.ResponseWriter, r *http.Request) {
	account, _ := middleware.GetAccount(r)
	requestID := middleware.GetRequestID(r.Context())

	prefs, err := h.Service.EmailPreferences(r.Context(), account.AccountID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "preferences_failed", "failed to load email preferences", requestID)
		return
	}
	api.Success(w, prefs, requestID)
}

func (h *Handler) handleUpdateEmailPreferences(w http.ResponseWriter, r *http.Request) {
	account, _ := middleware.GetAccount(r)
	requestID := middleware.GetRequestID(r.Context())

	var payload map[string]bool
	if err := api.Decode(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	validator := shared.NewValidator()
	for category := range payload {
		validator.Enum(category, category, notifications.Categories(), "is not a known category")
	}
	if validator.Reject(w, requestID) {
		return
	}

	if err := h.Service.UpdateEmailPreferences(r.Context(), account.AccountID, payload); err != nil {
		if errors.Is(err, notifications.ErrValidation) {
			api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), requestID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "preferences_failed", "failed to update email preferences", requestID)
		return
	}

	prefs, err := h.Service.EmailPreferences(r.Context(), account.AccountID)
	if err != nil {
		api.Success(w, map[string]string{"status": "updated"}, requestID)
		return
	}
	api.Success(w, prefs, requestID)
}

func (h *Handler) handleInteractionSettings(w http.ResponseWriter, r *http.Request) {
	account, _ := middleware.GetAccount(r)
	requestID := middleware.GetRequestID(r.Context())

	settings, err := h.Service.InteractionSettings(r.Context(), account.AccountID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "settings_failed", "failed to load interaction settings", requestID)
		return
	}
	api.Success(w, settings, requestID)
}

func (h *Handler) handleUpdateInteractionSettings(w http.ResponseWriter, r *http.Request) {
	account, _ := middleware.GetAccount(r)
	requestID := middleware.GetRequestID(r.Context())

	var payload notifications.InteractionSettings
	if err := api.Decode(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	if err := h.Service.UpdateInteractionSettings(r.Context(), account.AccountID, payload); err != nil {
		api.Fail(w, http.StatusInternalServerError, "settings_failed", "failed to update interaction settings", requestID)
		return
	}
	api.Success(w, payload, requestID)
}
