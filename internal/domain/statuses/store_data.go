package statuses

import (
	"context"
	"errors"
	"iter"

	"github.com/jackc/pgx/v5"
)

func (s *Store) Get(ctx context.Context, statusID string) (Status, error) {
	var st Status
	err := s.DB.QueryRow(ctx, `
    SELECT id, account_id, COALESCE(in_reply_to_id, ''), COALESCE(in_reply_to_account_id, ''), COALESCE(conversation_id, '')
    FROM statuses
    WHERE id = $1
  `, statusID).Scan(&st.ID, &st.AccountID, &st.InReplyToID, &st.InReplyToAccountID, &st.ConversationID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Status{}, ErrStatusNotFound
	}
	if err != nil {
		return Status{}, err
	}
	return st, nil
}

// Ancestors reads one row per step so callers that stop early never pay for
// the rest of the chain. A missing parent row ends the sequence.
func (s *Store) Ancestors(ctx context.Context, statusID string, bound int) iter.Seq2[Ancestor, error] {
	return func(yield func(Ancestor, error) bool) {
		parentID, err := s.parentOf(ctx, statusID)
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				yield(Ancestor{}, err)
			}
			return
		}

		for n := 0; n < bound && parentID != ""; n++ {
			var a Ancestor
			var next string
			err := s.DB.QueryRow(ctx, `
        SELECT id, account_id, COALESCE(in_reply_to_id, '')
        FROM statuses
        WHERE id = $1
      `, parentID).Scan(&a.StatusID, &a.AccountID, &next)
			if errors.Is(err, pgx.ErrNoRows) {
				return
			}
			if err != nil {
				yield(Ancestor{}, err)
				return
			}
			if !yield(a, nil) {
				return
			}
			parentID = next
		}
	}
}

func (s *Store) parentOf(ctx context.Context, statusID string) (string, error) {
	var parentID string
	err := s.DB.QueryRow(ctx, "SELECT COALESCE(in_reply_to_id, '') FROM statuses WHERE id = $1", statusID).Scan(&parentID)
	return parentID, err
}
