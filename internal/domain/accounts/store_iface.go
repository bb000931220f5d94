package accounts

import "context"

type StoreAPI interface {
	Get(ctx context.Context, accountID string) (Account, error)
	Email(ctx context.Context, accountID string) (string, error)
}
