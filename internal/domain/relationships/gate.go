package relationships

import (
	"context"
	"log/slog"
)

// Gate turns relationship queries into plain predicates. A failed query is
// logged and read as "does not hold" so an unrelated outage never blocks the
// recipient.
type Gate struct {
	store StoreAPI
}

func NewGate(store StoreAPI) *Gate {
	return &Gate{store: store}
}

func (g *Gate) Blocks(ctx context.Context, accountID, targetAccountID string) bool {
	if accountID == "" || targetAccountID == "" {
		return false
	}
	return g.check("blocks", accountID, targetAccountID)(g.store.Blocks(ctx, accountID, targetAccountID))
}

func (g *Gate) DomainBlocks(ctx context.Context, accountID, domain string) bool {
	if accountID == "" || domain == "" {
		return false
	}
	return g.check("domain_blocks", accountID, domain)(g.store.DomainBlocks(ctx, accountID, domain))
}

func (g *Gate) Mutes(ctx context.Context, accountID, targetAccountID string) bool {
	if accountID == "" || targetAccountID == "" {
		return false
	}
	return g.check("mutes", accountID, targetAccountID)(g.store.Mutes(ctx, accountID, targetAccountID))
}

func (g *Gate) Follows(ctx context.Context, accountID, targetAccountID string) bool {
	if accountID == "" || targetAccountID == "" {
		return false
	}
	return g.check("follows", accountID, targetAccountID)(g.store.Follows(ctx, accountID, targetAccountID))
}

func (g *Gate) MutesConversation(ctx context.Context, accountID, conversationID string) bool {
	if accountID == "" || conversationID == "" {
		return false
	}
	return g.check("mutes_conversation", accountID, conversationID)(g.store.MutesConversation(ctx, accountID, conversationID))
}

func (g *Gate) check(fact, subject, object string) func(bool, error) bool {
	return func(holds bool, err error) bool {
		if err != nil {
			slog.Warn("relationship lookup failed", "fact", fact, "accountId", subject, "target", object, "err", err)
			return false
		}
		return holds
	}
}
