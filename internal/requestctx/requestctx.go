package requestctx

import "context"

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	accountKey   ctxKey = "account"
)

// Account is the caller identified by the bearer token.
type Account struct {
	AccountID string
	Internal  bool
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	if value, ok := ctx.Value(requestIDKey).(string); ok {
		return value
	}
	return ""
}

func WithAccount(ctx context.Context, account Account) context.Context {
	return context.WithValue(ctx, accountKey, account)
}

func GetAccount(ctx context.Context) (Account, bool) {
	account, ok := ctx.Value(accountKey).(Account)
	return account, ok
}
