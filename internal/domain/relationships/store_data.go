package relationships

import (
	"context"
	"strings"
)

func (s *Store) Blocks(ctx context.Context, accountID, targetAccountID string) (bool, error) {
	return s.exists(ctx, `
    SELECT EXISTS (
      SELECT 1 FROM blocks WHERE account_id = $1 AND target_account_id = $2
    )
  `, accountID, targetAccountID)
}

func (s *Store) DomainBlocks(ctx context.Context, accountID, domain string) (bool, error) {
	return s.exists(ctx, `
    SELECT EXISTS (
      SELECT 1 FROM account_domain_blocks WHERE account_id = $1 AND domain = $2
    )
  `, accountID, strings.ToLower(domain))
}

func (s *Store) Mutes(ctx context.Context, accountID, targetAccountID string) (bool, error) {
	return s.exists(ctx, `
    SELECT EXISTS (
      SELECT 1 FROM mutes
      WHERE account_id = $1 AND target_account_id = $2 AND hide_notifications
    )
  `, accountID, targetAccountID)
}

func (s *Store) Follows(ctx context.Context, accountID, targetAccountID string) (bool, error) {
	return s.exists(ctx, `
    SELECT EXISTS (
      SELECT 1 FROM follows WHERE account_id = $1 AND target_account_id = $2
    )
  `, accountID, targetAccountID)
}

func (s *Store) MutesConversation(ctx context.Context, accountID, conversationID string) (bool, error) {
	return s.exists(ctx, `
    SELECT EXISTS (
      SELECT 1 FROM conversation_mutes WHERE account_id = $1 AND conversation_id = $2
    )
  `, accountID, conversationID)
}

func (s *Store) MuteConversation(ctx context.Context, accountID, conversationID string) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO conversation_mutes (account_id, conversation_id)
    VALUES ($1,$2)
    ON CONFLICT (account_id, conversation_id) DO NOTHING
  `, accountID, conversationID)
	return err
}

func (s *Store) UnmuteConversation(ctx context.Context, accountID, conversationID string) error {
	_, err := s.DB.Exec(ctx, `
    DELETE FROM conversation_mutes WHERE account_id = $1 AND conversation_id = $2
  `, accountID, conversationID)
	return err
}

func (s *Store) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var found bool
	if err := s.DB.QueryRow(ctx, query, args...).Scan(&found); err != nil {
		return false, err
	}
	return found, nil
}
