package notifications

type Kind string

const (
	KindFollow        Kind = "follow"
	KindFollowRequest Kind = "follow_request"
	KindMention       Kind = "mention"
	KindFavourite     Kind = "favourite"
	KindReblog        Kind = "reblog"
	KindPoll          Kind = "poll"
)

var kinds = map[Kind]bool{
	KindFollow:        false,
	KindFollowRequest: false,
	KindMention:       true,
	KindFavourite:     true,
	KindReblog:        true,
	KindPoll:          true,
}

func (k Kind) Valid() bool {
	_, ok := kinds[k]
	return ok
}

// RequiresStatus reports whether activities of this kind always carry a status.
func (k Kind) RequiresStatus() bool {
	return kinds[k]
}

// Category is the key used for per-category email preferences.
func (k Kind) Category() string {
	return string(k)
}

func Categories() []string {
	return []string{
		KindFollow.Category(),
		KindFollowRequest.Category(),
		KindMention.Category(),
		KindFavourite.Category(),
		KindReblog.Category(),
		KindPoll.Category(),
	}
}

func KnownCategory(category string) bool {
	return Kind(category).Valid()
}

// DefaultEmailCategories are the categories emailed when the recipient has no
// stored preference.
func DefaultEmailCategories() map[string]bool {
	return map[string]bool{
		KindFollow.Category():        true,
		KindFollowRequest.Category(): true,
		KindMention.Category():       true,
		KindFavourite.Category():     false,
		KindReblog.Category():        false,
		KindPoll.Category():          false,
	}
}

type Reason string

const (
	ReasonNone                     Reason = "none"
	ReasonSelfAuthored             Reason = "self_authored"
	ReasonRecipientSuspended       Reason = "recipient_suspended"
	ReasonSenderBlocked            Reason = "sender_blocked"
	ReasonSenderMuted              Reason = "sender_muted"
	ReasonSenderSilencedUnfollowed Reason = "sender_silenced_unfollowed"
	ReasonFilteredNotFollower      Reason = "filtered_not_follower"
	ReasonFilteredNotFollowing     Reason = "filtered_not_following"
	ReasonConversationMuted        Reason = "conversation_muted"
	ReasonReplyToBlockedAuthor     Reason = "reply_to_blocked_author"
)

const (
	EmailOutcomeSent     = "sent"
	EmailOutcomeDisabled = "disabled"
	EmailOutcomeFailed   = "failed"
	EmailOutcomeSkipped  = "skipped"
)
