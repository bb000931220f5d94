package email

import (
	"context"
	"errors"
	"log/slog"
	"net/textproto"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
)

type retryMailer struct {
	next     Mailer
	executor failsafe.Executor[any]
}

// WithRetry retries transient send failures up to maxRetries times with
// exponential backoff starting at delay. Permanent SMTP replies (5xx) and
// cancelled contexts are returned immediately.
func WithRetry(next Mailer, maxRetries int, delay time.Duration) Mailer {
	if maxRetries <= 0 {
		return next
	}
	builder := retrypolicy.NewBuilder[any]().
		WithMaxRetries(maxRetries).
		HandleIf(func(_ any, err error) bool {
			return retryable(err)
		}).
		OnRetry(func(e failsafe.ExecutionEvent[any]) {
			slog.Warn("notification email retry", "attempt", e.Attempts(), "err", e.LastError())
		})
	if delay > 0 {
		builder = builder.WithBackoff(delay, 8*delay).WithJitterFactor(0.1)
	}
	return &retryMailer{next: next, executor: failsafe.With(builder.Build())}
}

func (r *retryMailer) Send(ctx context.Context, from, to, subject, body string) error {
	return r.executor.WithContext(ctx).Run(func() error {
		return r.next.Send(ctx, from, to, subject, body)
	})
}

func retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var reply *textproto.Error
	if errors.As(err, &reply) {
		return reply.Code >= 400 && reply.Code < 500
	}
	return true
}
