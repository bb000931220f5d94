package activitieshandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"notify/internal/domain/accounts"
	"notify/internal/domain/notifications"
	"notify/internal/domain/statuses"
	"notify/internal/transport/http/api"
	"notify/internal/transport/http/middleware"
	"notify/internal/transport/http/shared"
)

type Notifier interface {
	Notify(ctx context.Context, recipient accounts.Account, activity notifications.Activity) (notifications.Result, error)
}

type AccountLookup interface {
	Get(ctx context.Context, accountID string) (accounts.Account, error)
}

type StatusLookup interface {
	Get(ctx context.Context, statusID string) (statuses.Status, error)
}

type Handler struct {
	Service  Notifier
	Accounts AccountLookup
	Statuses StatusLookup
}

func NewHandler(service Notifier, accountStore AccountLookup, statusStore StatusLookup) *Handler {
	return &Handler{Service: service, Accounts: accountStore, Statuses: statusStore}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequireInternal).Post("/activities", h.handleIngest)
}

type ingestRequest struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	ActorID     string `json:"actorId"`
	RecipientID string `json:"recipientId"`
	StatusID    string `json:"statusId,omitempty"`
}

type ingestResponse struct {
	Created      bool                        `json:"created"`
	Reason       notifications.Reason        `json:"reason"`
	Notification *notifications.Notification `json:"notification,omitempty"`
	Email        *emailResponse              `json:"email,omitempty"`
}

type emailResponse struct {
	Category string `json:"category"`
	Allowed  bool   `json:"allowed"`
	Sent     bool   `json:"sent"`
	Error    string `json:"error,omitempty"`
}

func (h *Handler) handleIngest(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload ingestRequest
	if err := api.Decode(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	payload.Kind = strings.ToLower(strings.TrimSpace(payload.Kind))

	validator := shared.NewValidator()
	validator.Required("id", payload.ID, "is required")
	validator.Required("kind", payload.Kind, "is required")
	validator.Enum("kind", payload.Kind, notifications.Categories(), "is not a known activity kind")
	validator.Required("actorId", payload.ActorID, "is required")
	validator.Required("recipientId", payload.RecipientID, "is required")
	validator.Max("id", payload.ID, 255)
	if validator.Reject(w, requestID) {
		return
	}

	recipient, err := h.Accounts.Get(r.Context(), payload.RecipientID)
	if err != nil {
		h.failLookup(w, err, "recipient", requestID)
		return
	}
	actor, err := h.Accounts.Get(r.Context(), payload.ActorID)
	if err != nil {
		h.failLookup(w, err, "actor", requestID)
		return
	}

	activity := notifications.Activity{
		ID:    payload.ID,
		Kind:  notifications.Kind(payload.Kind),
		Actor: actor,
	}
	if payload.StatusID != "" {
		status, err := h.Statuses.Get(r.Context(), payload.StatusID)
		if err != nil {
			h.failLookup(w, err, "status", requestID)
			return
		}
		activity.Status = &status
	}

	result, err := h.Service.Notify(r.Context(), recipient, activity)
	switch {
	case errors.Is(err, notifications.ErrValidation):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), requestID)
		return
	case errors.Is(err, notifications.ErrDuplicateNotification):
		api.Fail(w, http.StatusConflict, "duplicate_activity", "activity already notified", requestID)
		return
	case err != nil:
		slog.Error("notify failed", "activityId", activity.ID, "recipientId", recipient.ID, "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "notification_create_failed", "failed to create notification", requestID)
		return
	}

	response := ingestResponse{
		Created:      !result.Skipped(),
		Reason:       result.Decision.Reason,
		Notification: result.Notification,
	}
	if result.Skipped() {
		api.Success(w, response, requestID)
		return
	}
	if result.Email.Category != "" {
		response.Email = &emailResponse{
			Category: result.Email.Category,
			Allowed:  result.Email.Allow,
			Sent:     result.EmailSent,
		}
		if result.DeliveryErr != nil {
			response.Email.Error = result.DeliveryErr.Error()
		}
	}
	api.Created(w, response, requestID)
}

func (h *Handler) failLookup(w http.ResponseWriter, err error, subject, requestID string) {
	if errors.Is(err, accounts.ErrAccountNotFound) || errors.Is(err, statuses.ErrStatusNotFound) {
		api.Fail(w, http.StatusNotFound, subject+"_not_found", subject+" not found", requestID)
		return
	}
	slog.Error("activity lookup failed", "subject", subject, "err", err, "requestId", requestID)
	api.Fail(w, http.StatusInternalServerError, "lookup_failed", "failed to load "+subject, requestID)
}
