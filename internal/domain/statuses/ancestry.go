package statuses

import (
	"context"
	"log/slog"
)

const DefaultMaxThreadDepth = 256

type Relationships interface {
	Blocks(ctx context.Context, accountID, targetAccountID string) bool
	MutesConversation(ctx context.Context, accountID, conversationID string) bool
}

// AncestryResolver answers thread questions for reply activities. Walks are
// bounded by MaxDepth and guarded against cycles in the stored chain.
type AncestryResolver struct {
	Threads       ThreadStore
	Relationships Relationships
	MaxDepth      int
}

func NewAncestryResolver(threads ThreadStore, rel Relationships, maxDepth int) *AncestryResolver {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxThreadDepth
	}
	return &AncestryResolver{Threads: threads, Relationships: rel, MaxDepth: maxDepth}
}

// AncestorAuthors returns the distinct authors above status, nearest first.
func (r *AncestryResolver) AncestorAuthors(ctx context.Context, status Status) []string {
	var authors []string
	r.walk(ctx, status, func(accountID string) bool {
		authors = append(authors, accountID)
		return true
	})
	return authors
}

// ReplyToBlockedAuthor reports whether recipientID blocks anyone the status
// descends from.
func (r *AncestryResolver) ReplyToBlockedAuthor(ctx context.Context, recipientID string, status Status) bool {
	if !status.IsReply() {
		return false
	}
	blocked := false
	r.walk(ctx, status, func(accountID string) bool {
		if r.Relationships.Blocks(ctx, recipientID, accountID) {
			blocked = true
			return false
		}
		return true
	})
	return blocked
}

func (r *AncestryResolver) ConversationMuted(ctx context.Context, recipientID, conversationID string) bool {
	return r.Relationships.MutesConversation(ctx, recipientID, conversationID)
}

// walk calls visit once per distinct ancestor author until visit returns
// false or the chain ends. The replied-to account recorded on the status is
// visited first since the parent row may not be stored locally.
func (r *AncestryResolver) walk(ctx context.Context, status Status, visit func(accountID string) bool) {
	if !status.IsReply() {
		return
	}

	seenAuthors := map[string]struct{}{}
	emit := func(accountID string) bool {
		if accountID == "" {
			return true
		}
		if _, ok := seenAuthors[accountID]; ok {
			return true
		}
		seenAuthors[accountID] = struct{}{}
		return visit(accountID)
	}

	if !emit(status.InReplyToAccountID) {
		return
	}

	maxDepth := r.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxThreadDepth
	}

	visited := map[string]struct{}{status.ID: {}}
	for ancestor, err := range r.Threads.Ancestors(ctx, status.ID, maxDepth) {
		if err != nil {
			slog.Warn("thread ancestry lookup failed", "statusId", status.ID, "err", err)
			return
		}
		if _, ok := visited[ancestor.StatusID]; ok {
			slog.Warn("thread ancestry cycle detected", "statusId", status.ID, "ancestorId", ancestor.StatusID)
			return
		}
		visited[ancestor.StatusID] = struct{}{}
		if !emit(ancestor.AccountID) {
			return
		}
	}
}
