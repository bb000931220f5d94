package email

import (
	"context"
	"errors"
	"net/textproto"
	"strings"
	"sync"
	"testing"

	"notify/internal/domain/accounts"
	"notify/internal/domain/notifications"
	"notify/internal/domain/statuses"
	"notify/internal/platform/config"
)

type recordingMailer struct {
	mu       sync.Mutex
	failures int
	attempts int
	sent     []string
}

func (m *recordingMailer) Send(ctx context.Context, from, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts++
	if m.attempts <= m.failures {
		return errors.New("421 service not available")
	}
	m.sent = append(m.sent, to+"|"+subject)
	return nil
}

type failingMailer struct {
	err      error
	attempts int
}

func (m *failingMailer) Send(ctx context.Context, from, to, subject, body string) error {
	m.attempts++
	return m.err
}

type inlineQueue struct {
	jobs []string
	err  error
}

func (q *inlineQueue) Enqueue(jobType, subjectID string, run func(context.Context) error) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, jobType+":"+subjectID)
	return run(context.Background())
}

type addressBook map[string]string

func (a addressBook) Email(ctx context.Context, accountID string) (string, error) {
	to, ok := a[accountID]
	if !ok {
		return "", accounts.ErrAccountNotFound
	}
	return to, nil
}

var (
	alice = accounts.Account{ID: "r", Username: "alice", Email: "alice@example.com"}
	bob   = accounts.Account{ID: "s", Username: "bob", Domain: "remote.example"}
)

func TestNewReturnsNoopWhenDisabled(t *testing.T) {
	if _, ok := New(config.Config{}).(noopMailer); !ok {
		t.Fatal("expected noop mailer when email disabled")
	}
}

func TestRetryMailerRetriesTransientFailures(t *testing.T) {
	inner := &recordingMailer{failures: 2}
	mailer := WithRetry(inner, 3, 0)

	if err := mailer.Send(context.Background(), "from@example.com", "to@example.com", "hi", "body"); err != nil {
		t.Fatalf("expected eventual success, got %v", err)
	}
	if inner.attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", inner.attempts)
	}
}

func TestRetryMailerGivesUp(t *testing.T) {
	inner := &recordingMailer{failures: 10}
	mailer := WithRetry(inner, 2, 0)

	if err := mailer.Send(context.Background(), "from@example.com", "to@example.com", "hi", "body"); err == nil {
		t.Fatal("expected failure after retries")
	}
	if inner.attempts != 3 {
		t.Fatalf("expected 1 try plus 2 retries, got %d", inner.attempts)
	}
}

func TestDispatcherSendsSynchronously(t *testing.T) {
	mailer := &recordingMailer{}
	d := NewDispatcher(mailer, "notifications@example.com", "https://social.example", nil, nil)

	activity := notifications.Activity{ID: "f1", Kind: notifications.KindFollow, Actor: bob}
	if err := d.SendNotificationEmail(context.Background(), alice, activity, notifications.Notification{ID: "n1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mailer.sent) != 1 || mailer.sent[0] != "alice@example.com|@bob@remote.example followed you" {
		t.Fatalf("unexpected sends: %v", mailer.sent)
	}
}

func TestDispatcherUsesQueue(t *testing.T) {
	mailer := &recordingMailer{}
	queue := &inlineQueue{}
	d := NewDispatcher(mailer, "notifications@example.com", "https://social.example", queue, nil)

	status := statuses.Status{ID: "st1", AccountID: "s"}
	activity := notifications.Activity{ID: "m1", Kind: notifications.KindMention, Actor: accounts.Account{ID: "s", Username: "bob"}, Status: &status}
	if err := d.SendNotificationEmail(context.Background(), alice, activity, notifications.Notification{ID: "n1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(queue.jobs) != 1 || queue.jobs[0] != "notification_email:n1" {
		t.Fatalf("expected queued job, got %v", queue.jobs)
	}
	if len(mailer.sent) != 1 || !strings.HasSuffix(mailer.sent[0], "@bob mentioned you") {
		t.Fatalf("unexpected sends: %v", mailer.sent)
	}
}

func TestDispatcherReportsFullQueue(t *testing.T) {
	queue := &inlineQueue{err: errors.New("job queue full")}
	d := NewDispatcher(&recordingMailer{}, "n@example.com", "", queue, nil)

	activity := notifications.Activity{ID: "f1", Kind: notifications.KindFollow, Actor: bob}
	if err := d.SendNotificationEmail(context.Background(), alice, activity, notifications.Notification{ID: "n1"}); err == nil {
		t.Fatal("expected hand-off failure")
	}
}

func TestDispatcherLooksUpMissingAddress(t *testing.T) {
	mailer := &recordingMailer{}
	d := NewDispatcher(mailer, "n@example.com", "", nil, addressBook{"r": "stored@example.com"})

	recipient := alice
	recipient.Email = ""
	activity := notifications.Activity{ID: "f1", Kind: notifications.KindFollow, Actor: bob}
	if err := d.SendNotificationEmail(context.Background(), recipient, activity, notifications.Notification{ID: "n1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mailer.sent) != 1 || !strings.HasPrefix(mailer.sent[0], "stored@example.com|") {
		t.Fatalf("unexpected sends: %v", mailer.sent)
	}

	recipient.ID = "unknown"
	if err := d.SendNotificationEmail(context.Background(), recipient, activity, notifications.Notification{ID: "n2"}); !errors.Is(err, accounts.ErrAccountNotFound) {
		t.Fatalf("expected lookup error, got %v", err)
	}
}

func TestBuildMessageStripsHeaderInjection(t *testing.T) {
	msg := string(buildMessage("a@example.com", "b@example.com", "hi\r\nBcc: evil@example.com", "body"))
	if strings.Contains(msg, "\r\nBcc:") {
		t.Fatalf("expected header injection to be stripped: %q", msg)
	}
}

func TestDispatcherReportsMissingAddress(t *testing.T) {
	mailer := &recordingMailer{}
	d := NewDispatcher(mailer, "n@example.com", "", nil, nil)

	recipient := alice
	recipient.Email = ""
	activity := notifications.Activity{ID: "f1", Kind: notifications.KindFollow, Actor: bob}
	err := d.SendNotificationEmail(context.Background(), recipient, activity, notifications.Notification{ID: "n1"})
	if !errors.Is(err, notifications.ErrNoEmailAddress) {
		t.Fatalf("expected no address error, got %v", err)
	}
	if mailer.attempts != 0 {
		t.Fatalf("expected no send attempt, got %d", mailer.attempts)
	}
}

func TestRetryMailerClassifiesFailures(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		attempts int
	}{
		{name: "transient reply", err: &textproto.Error{Code: 451, Msg: "try again later"}, attempts: 3},
		{name: "network error", err: errors.New("connection reset"), attempts: 3},
		{name: "permanent reply", err: &textproto.Error{Code: 550, Msg: "mailbox unavailable"}, attempts: 1},
		{name: "cancelled", err: context.Canceled, attempts: 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			inner := &failingMailer{err: tc.err}
			mailer := WithRetry(inner, 2, 0)
			if err := mailer.Send(context.Background(), "from@example.com", "to@example.com", "hi", "body"); !errors.Is(err, tc.err) {
				t.Fatalf("expected %v, got %v", tc.err, err)
			}
			if inner.attempts != tc.attempts {
				t.Fatalf("expected %d attempts, got %d", tc.attempts, inner.attempts)
			}
		})
	}
}
