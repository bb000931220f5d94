package notifications

import (
	"context"

	"notify/internal/domain/accounts"
	"notify/internal/domain/statuses"
)

type Relationships interface {
	Blocks(ctx context.Context, accountID, targetAccountID string) bool
	DomainBlocks(ctx context.Context, accountID, domain string) bool
	Mutes(ctx context.Context, accountID, targetAccountID string) bool
	Follows(ctx context.Context, accountID, targetAccountID string) bool
}

type Threads interface {
	ConversationMuted(ctx context.Context, recipientID, conversationID string) bool
	ReplyToBlockedAuthor(ctx context.Context, recipientID string, status statuses.Status) bool
}

type EmailPreferenceStore interface {
	EmailPreference(ctx context.Context, accountID, category string) (enabled bool, found bool, err error)
	EmailPreferences(ctx context.Context, accountID string) (map[string]bool, error)
	SetEmailPreference(ctx context.Context, accountID, category string, enabled bool) error
}

type InteractionSettingsStore interface {
	InteractionSettings(ctx context.Context, accountID string) (InteractionSettings, error)
	UpdateInteractionSettings(ctx context.Context, accountID string, settings InteractionSettings) error
}

type StoreAPI interface {
	EmailPreferenceStore
	InteractionSettingsStore
	CreateNotification(ctx context.Context, recipientID string, activity Activity) (Notification, error)
	ListNotifications(ctx context.Context, accountID string, limit, offset int) ([]Notification, error)
	CountNotifications(ctx context.Context, accountID string) (int, error)
	MarkRead(ctx context.Context, accountID, notificationID string) error
}

// EmailSender delivers a notification email. It returns ErrNoEmailAddress when
// the recipient has nowhere to send to.
type EmailSender interface {
	SendNotificationEmail(ctx context.Context, recipient accounts.Account, activity Activity, notification Notification) error
}

type Recorder interface {
	RecordDecision(allowed bool, reason string)
	RecordEmail(outcome string)
}
