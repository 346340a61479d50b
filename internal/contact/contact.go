// Package contact stores contact-form messages and forwards them to the
// shop inbox.
package contact

import (
	"context"
	"strings"
	"time"

	"github.com/fairyhunter13/storefront/internal/apperr"
	"github.com/fairyhunter13/storefront/internal/model"
	"github.com/fairyhunter13/storefront/internal/notify"
	"github.com/fairyhunter13/storefront/internal/obs"
	"github.com/fairyhunter13/storefront/internal/store"
)

type Service struct {
	store    store.Contacts
	notifier notify.Enqueuer
	inbox    string
	now      func() time.Time
}

// NewService builds the service. With an empty inbox or a nil notifier
// messages are only stored.
func NewService(st store.Contacts, notifier notify.Enqueuer, inbox string) *Service {
	return &Service{store: st, notifier: notifier, inbox: inbox, now: func() time.Time { return time.Now().UTC() }}
}

// Submit validates and stores a message, then queues the inbox notification.
// A full or closed queue does not fail the submission.
func (s *Service) Submit(ctx context.Context, name, email, comment string) (model.ContactMessage, error) {
	m := model.ContactMessage{
		Name:    strings.TrimSpace(name),
		Email:   strings.TrimSpace(email),
		Comment: strings.TrimSpace(comment),
	}
	switch {
	case m.Name == "":
		return model.ContactMessage{}, apperr.Validation("name", "is required")
	case m.Email == "":
		return model.ContactMessage{}, apperr.Validation("email", "is required")
	case !strings.Contains(m.Email, "@"):
		return model.ContactMessage{}, apperr.Validation("email", "must be an e-mail address")
	case m.Comment == "":
		return model.ContactMessage{}, apperr.Validation("comment", "is required")
	}
	m.CreatedAt = s.now()
	if err := s.store.CreateContact(ctx, &m); err != nil {
		return model.ContactMessage{}, apperr.Persistence("create contact", err)
	}
	obs.ContactMessages.Add(1)

	if s.notifier != nil && s.inbox != "" {
		if !s.notifier.Enqueue(notify.ContactReceived(s.inbox, m)) {
			obs.Logger.Warnw("contact_notification_dropped", "contact_id", m.ID)
		}
	}
	return m, nil
}
