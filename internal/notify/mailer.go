// Package notify sends e-mail notifications.
package notify

import (
	"context"
	"time"

	"github.com/fairyhunter13/storefront/internal/obs"
)

//go:generate mockgen -source=mailer.go -destination=mocks/mailer.go -package=mocks

// Message is one plain-text e-mail.
type Message struct {
	To      string
	ToName  string
	Subject string
	Text    string
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, msg Message) error {
	obs.Logger.Infow("mail_logged", "to", msg.To, "subject", msg.Subject, "bytes", len(msg.Text))
	return nil
}

const sendTimeout = 15 * time.Second

// Deliver adapts a Mailer into a queue handler that bounds each send and
// keeps the notification counters.
func Deliver(m Mailer) func(context.Context, Message) error {
	return func(ctx context.Context, msg Message) error {
		ctx, cancel := context.WithTimeout(ctx, sendTimeout)
		defer cancel()
		if err := m.Send(ctx, msg); err != nil {
			obs.NotificationsFailed.Add(1)
			return err
		}
		obs.NotificationsSent.Add(1)
		return nil
	}
}

// Enqueuer accepts messages for asynchronous delivery. It reports false when
// the message was not accepted.
type Enqueuer interface {
	Enqueue(msg Message) bool
}
