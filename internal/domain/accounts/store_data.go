package accounts

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

func (s *Store) Get(ctx context.Context, accountID string) (Account, error) {
	var a Account
	err := s.DB.QueryRow(ctx, `
    SELECT id, username, COALESCE(domain, ''), COALESCE(email, ''), suspended, silenced
    FROM accounts
    WHERE id = $1
  `, accountID).Scan(&a.ID, &a.Username, &a.Domain, &a.Email, &a.Suspended, &a.Silenced)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, ErrAccountNotFound
	}
	if err != nil {
		return Account{}, err
	}
	return a, nil
}

func (s *Store) Email(ctx context.Context, accountID string) (string, error) {
	var email string
	err := s.DB.QueryRow(ctx, "SELECT COALESCE(email, '') FROM accounts WHERE id = $1", accountID).Scan(&email)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrAccountNotFound
	}
	if err != nil {
		return "", err
	}
	return email, nil
}
