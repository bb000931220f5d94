package notifications

import (
	"context"
	"log/slog"

	"notify/internal/domain/accounts"
)

// rule denies a notification with reason when match reports true.
type rule struct {
	reason Reason
	match  func(ctx context.Context, ev *evaluation) bool
}

type evaluation struct {
	engine    *Engine
	recipient accounts.Account
	activity  Activity
	settings  *InteractionSettings
}

func (ev *evaluation) interactionSettings(ctx context.Context) InteractionSettings {
	if ev.settings != nil {
		return *ev.settings
	}
	var settings InteractionSettings
	if ev.engine.interactions != nil {
		loaded, err := ev.engine.interactions.InteractionSettings(ctx, ev.recipient.ID)
		if err != nil {
			slog.Warn("interaction settings lookup failed", "accountId", ev.recipient.ID, "err", err)
		} else {
			settings = loaded
		}
	}
	ev.settings = &settings
	return settings
}

// Engine decides whether a recipient should be notified about an activity.
// Rules run in order and the first match wins.
type Engine struct {
	relationships Relationships
	threads       Threads
	interactions  InteractionSettingsStore
	rules         []rule
}

func NewEngine(rel Relationships, threads Threads, interactions InteractionSettingsStore) *Engine {
	e := &Engine{relationships: rel, threads: threads, interactions: interactions}
	e.rules = defaultRules()
	return e
}

// Rules lists the deny reasons in evaluation order.
func (e *Engine) Rules() []Reason {
	out := make([]Reason, 0, len(e.rules))
	for _, r := range e.rules {
		out = append(out, r.reason)
	}
	return out
}

func (e *Engine) Evaluate(ctx context.Context, recipient accounts.Account, activity Activity) Decision {
	ev := &evaluation{engine: e, recipient: recipient, activity: activity}
	for _, r := range e.rules {
		if r.match(ctx, ev) {
			return Decision{Allow: false, Reason: r.reason}
		}
	}
	return Decision{Allow: true, Reason: ReasonNone}
}

func defaultRules() []rule {
	return []rule{
		{reason: ReasonSelfAuthored, match: selfAuthored},
		{reason: ReasonRecipientSuspended, match: recipientSuspended},
		{reason: ReasonSenderBlocked, match: senderBlocked},
		{reason: ReasonSenderBlocked, match: senderDomainBlocked},
		{reason: ReasonSenderMuted, match: senderMuted},
		{reason: ReasonSenderSilencedUnfollowed, match: senderSilencedUnfollowed},
		{reason: ReasonFilteredNotFollower, match: filteredNotFollower},
		{reason: ReasonFilteredNotFollowing, match: filteredNotFollowing},
		{reason: ReasonConversationMuted, match: conversationMuted},
		{reason: ReasonReplyToBlockedAuthor, match: replyToBlockedAuthor},
	}
}

func selfAuthored(ctx context.Context, ev *evaluation) bool {
	return ev.activity.Actor.ID == ev.recipient.ID
}

func recipientSuspended(ctx context.Context, ev *evaluation) bool {
	return ev.recipient.Suspended
}

func senderBlocked(ctx context.Context, ev *evaluation) bool {
	return ev.engine.relationships.Blocks(ctx, ev.recipient.ID, ev.activity.Actor.ID)
}

func senderDomainBlocked(ctx context.Context, ev *evaluation) bool {
	actor := ev.activity.Actor
	return actor.IsRemote() && ev.engine.relationships.DomainBlocks(ctx, ev.recipient.ID, actor.Domain)
}

func senderMuted(ctx context.Context, ev *evaluation) bool {
	return ev.engine.relationships.Mutes(ctx, ev.recipient.ID, ev.activity.Actor.ID)
}

// A silenced account keeps reaching accounts that already follow it.
func senderSilencedUnfollowed(ctx context.Context, ev *evaluation) bool {
	return ev.activity.Actor.Silenced && !ev.engine.relationships.Follows(ctx, ev.recipient.ID, ev.activity.Actor.ID)
}

func filteredNotFollower(ctx context.Context, ev *evaluation) bool {
	if !ev.interactionSettings(ctx).MustBeFollower {
		return false
	}
	return !ev.engine.relationships.Follows(ctx, ev.activity.Actor.ID, ev.recipient.ID)
}

func filteredNotFollowing(ctx context.Context, ev *evaluation) bool {
	if !ev.interactionSettings(ctx).MustBeFollowing {
		return false
	}
	return !ev.engine.relationships.Follows(ctx, ev.recipient.ID, ev.activity.Actor.ID)
}

func conversationMuted(ctx context.Context, ev *evaluation) bool {
	conversationID := ev.activity.ConversationID()
	if conversationID == "" || ev.engine.threads == nil {
		return false
	}
	return ev.engine.threads.ConversationMuted(ctx, ev.recipient.ID, conversationID)
}

func replyToBlockedAuthor(ctx context.Context, ev *evaluation) bool {
	if !ev.activity.IsReply() || ev.engine.threads == nil {
		return false
	}
	return ev.engine.threads.ReplyToBlockedAuthor(ctx, ev.recipient.ID, *ev.activity.Status)
}
