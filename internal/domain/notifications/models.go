package notifications

import (
	"fmt"
	"time"

	"notify/internal/domain/accounts"
	"notify/internal/domain/statuses"
)

// Activity is one event where Actor acts on the recipient. Status is set for
// kinds that reference a post.
type Activity struct {
	ID     string
	Kind   Kind
	Actor  accounts.Account
	Status *statuses.Status
}

func (a Activity) ConversationID() string {
	if a.Status == nil {
		return ""
	}
	return a.Status.ConversationID
}

func (a Activity) IsReply() bool {
	return a.Status != nil && a.Status.IsReply()
}

func (a Activity) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("%w: activity id is required", ErrValidation)
	}
	if !a.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrValidation, a.Kind)
	}
	if a.Actor.ID == "" {
		return fmt.Errorf("%w: actor is required", ErrValidation)
	}
	if a.Kind.RequiresStatus() && a.Status == nil {
		return fmt.Errorf("%w: %s activity has no status", ErrValidation, a.Kind)
	}
	if a.Status != nil && (a.Status.ID == "" || a.Status.AccountID == "") {
		return fmt.Errorf("%w: status reference is incomplete", ErrValidation)
	}
	return nil
}

type Notification struct {
	ID            string     `json:"id"`
	AccountID     string     `json:"accountId"`
	FromAccountID string     `json:"fromAccountId"`
	ActivityID    string     `json:"activityId"`
	Type          Kind       `json:"type"`
	StatusID      string     `json:"statusId,omitempty"`
	ReadAt        *time.Time `json:"readAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

type Decision struct {
	Allow  bool   `json:"allow"`
	Reason Reason `json:"reason"`
}

type EmailDecision struct {
	Allow    bool   `json:"allow"`
	Category string `json:"category"`
}

type InteractionSettings struct {
	MustBeFollower  bool `json:"mustBeFollower"`
	MustBeFollowing bool `json:"mustBeFollowing"`
}

// Result describes what one Notify call did. DeliveryErr is set when the
// notification was created but the email could not be handed off.
type Result struct {
	Decision     Decision
	Notification *Notification
	Email        EmailDecision
	EmailSent    bool
	DeliveryErr  error
}

func (r Result) Skipped() bool {
	return !r.Decision.Allow
}
