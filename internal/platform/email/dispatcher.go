package email

import (
	"context"
	"fmt"

	"notify/internal/domain/accounts"
	"notify/internal/domain/notifications"
	"notify/internal/platform/jobs"
)

type Queue interface {
	Enqueue(jobType, subjectID string, run func(context.Context) error) error
}

type AddressBook interface {
	Email(ctx context.Context, accountID string) (string, error)
}

// Dispatcher delivers notification emails through Mailer. With a Queue set
// the send happens on a background worker and only the hand-off can fail.
type Dispatcher struct {
	Mailer    Mailer
	From      string
	PublicURL string
	Queue     Queue
	Addresses AddressBook
}

func NewDispatcher(mailer Mailer, from, publicURL string, queue Queue, addresses AddressBook) *Dispatcher {
	return &Dispatcher{Mailer: mailer, From: from, PublicURL: publicURL, Queue: queue, Addresses: addresses}
}

func (d *Dispatcher) SendNotificationEmail(ctx context.Context, recipient accounts.Account, activity notifications.Activity, n notifications.Notification) error {
	to, err := d.address(ctx, recipient)
	if err != nil {
		return err
	}
	if to == "" {
		return notifications.ErrNoEmailAddress
	}

	subject, body := d.render(activity)
	send := func(ctx context.Context) error {
		return d.Mailer.Send(ctx, d.From, to, subject, body)
	}
	if d.Queue == nil {
		return send(ctx)
	}
	return d.Queue.Enqueue(jobs.JobNotificationEmail, n.ID, send)
}

func (d *Dispatcher) address(ctx context.Context, recipient accounts.Account) (string, error) {
	if recipient.Email != "" || d.Addresses == nil {
		return recipient.Email, nil
	}
	to, err := d.Addresses.Email(ctx, recipient.ID)
	if err != nil {
		return "", fmt.Errorf("recipient email lookup: %w", err)
	}
	return to, nil
}

func (d *Dispatcher) render(activity notifications.Activity) (string, string) {
	handle := "@" + activity.Actor.Username
	if activity.Actor.IsRemote() {
		handle += "@" + activity.Actor.Domain
	}

	var subject string
	switch activity.Kind {
	case notifications.KindFollow:
		subject = handle + " followed you"
	case notifications.KindFollowRequest:
		subject = handle + " requested to follow you"
	case notifications.KindMention:
		subject = handle + " mentioned you"
	case notifications.KindFavourite:
		subject = handle + " favourited your post"
	case notifications.KindReblog:
		subject = handle + " boosted your post"
	case notifications.KindPoll:
		subject = "A poll you took part in has ended"
	default:
		subject = "New notification"
	}

	body := subject + "\r\n\r\n" + d.PublicURL + "/notifications\r\n"
	return subject, body
}
