package relationships

import "context"

// StoreAPI answers relationship facts held outside this service. A missing
// record means the fact does not hold.
type StoreAPI interface {
	Blocks(ctx context.Context, accountID, targetAccountID string) (bool, error)
	DomainBlocks(ctx context.Context, accountID, domain string) (bool, error)
	Mutes(ctx context.Context, accountID, targetAccountID string) (bool, error)
	Follows(ctx context.Context, accountID, targetAccountID string) (bool, error)
	MutesConversation(ctx context.Context, accountID, conversationID string) (bool, error)
}

type ConversationMuter interface {
	MuteConversation(ctx context.Context, accountID, conversationID string) error
	UnmuteConversation(ctx context.Context, accountID, conversationID string) error
}
