package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"notify/internal/domain/accounts"
)

type Service struct {
	store     StoreAPI
	engine    *Engine
	emailGate *EmailGate
	Sender    EmailSender
	Metrics   Recorder
}

func New(store StoreAPI, engine *Engine, emailGate *EmailGate, sender EmailSender) *Service {
	return &Service{store: store, engine: engine, emailGate: emailGate, Sender: sender}
}

// Notify gates one activity for recipient, persists the notification when
// allowed and then emails it when the recipient's preference says so. A
// skipped activity is a successful call with Result.Skipped set. Email
// failures never undo the created notification and are reported in
// Result.DeliveryErr rather than as an error.
func (s *Service) Notify(ctx context.Context, recipient accounts.Account, activity Activity) (Result, error) {
	if recipient.ID == "" {
		return Result{}, fmt.Errorf("%w: recipient is required", ErrValidation)
	}
	if err := activity.Validate(); err != nil {
		return Result{}, err
	}

	decision := s.engine.Evaluate(ctx, recipient, activity)
	s.recordDecision(decision)
	result := Result{Decision: decision}
	if !decision.Allow {
		slog.Debug("notification skipped", "accountId", recipient.ID, "activityId", activity.ID, "kind", activity.Kind, "reason", decision.Reason)
		return result, nil
	}

	notification, err := s.store.CreateNotification(ctx, recipient.ID, activity)
	if err != nil {
		return result, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	result.Notification = &notification

	if s.emailGate == nil || s.Sender == nil {
		return result, nil
	}

	result.Email = s.emailGate.Evaluate(ctx, recipient, activity)
	if !result.Email.Allow {
		s.recordEmail(EmailOutcomeDisabled)
		return result, nil
	}

	err = s.Sender.SendNotificationEmail(ctx, recipient, activity, notification)
	if errors.Is(err, ErrNoEmailAddress) {
		slog.Debug("notification email skipped", "accountId", recipient.ID, "notificationId", notification.ID)
		s.recordEmail(EmailOutcomeSkipped)
		return result, nil
	}
	if err != nil {
		slog.Warn("notification email send failed", "accountId", recipient.ID, "notificationId", notification.ID, "err", err)
		s.recordEmail(EmailOutcomeFailed)
		result.DeliveryErr = fmt.Errorf("%w: %w", ErrDelivery, err)
		return result, nil
	}
	s.recordEmail(EmailOutcomeSent)
	result.EmailSent = true
	return result, nil
}

func (s *Service) List(ctx context.Context, accountID string, limit, offset int) ([]Notification, error) {
	return s.store.ListNotifications(ctx, accountID, limit, offset)
}

func (s *Service) Count(ctx context.Context, accountID string) (int, error) {
	return s.store.CountNotifications(ctx, accountID)
}

func (s *Service) MarkRead(ctx context.Context, accountID, notificationID string) error {
	return s.store.MarkRead(ctx, accountID, notificationID)
}

func (s *Service) EmailPreferences(ctx context.Context, accountID string) (map[string]bool, error) {
	stored, err := s.store.EmailPreferences(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return s.gate().Resolved(stored), nil
}

func (s *Service) UpdateEmailPreferences(ctx context.Context, accountID string, prefs map[string]bool) error {
	for category := range prefs {
		if !KnownCategory(category) {
			return fmt.Errorf("%w: unknown category %q", ErrValidation, category)
		}
	}
	for category, enabled := range prefs {
		if err := s.store.SetEmailPreference(ctx, accountID, category, enabled); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) InteractionSettings(ctx context.Context, accountID string) (InteractionSettings, error) {
	return s.store.InteractionSettings(ctx, accountID)
}

func (s *Service) UpdateInteractionSettings(ctx context.Context, accountID string, settings InteractionSettings) error {
	return s.store.UpdateInteractionSettings(ctx, accountID, settings)
}

func (s *Service) gate() *EmailGate {
	if s.emailGate != nil {
		return s.emailGate
	}
	return NewEmailGate(s.store, nil)
}

func (s *Service) recordDecision(d Decision) {
	if s.Metrics != nil {
		s.Metrics.RecordDecision(d.Allow, string(d.Reason))
	}
}

func (s *Service) recordEmail(outcome string) {
	if s.Metrics != nil {
		s.Metrics.RecordEmail(outcome)
	}
}
