package statuses

type Status struct {
	ID                 string `json:"id"`
	AccountID          string `json:"accountId"`
	InReplyToID        string `json:"inReplyToId,omitempty"`
	InReplyToAccountID string `json:"inReplyToAccountId,omitempty"`
	ConversationID     string `json:"conversationId,omitempty"`
}

func (s Status) IsReply() bool {
	return s.InReplyToID != ""
}

// Ancestor is one step up an in-reply-to chain.
type Ancestor struct {
	StatusID  string
	AccountID string
}
