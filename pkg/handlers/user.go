package handlers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vbwd/pluginkit/pkg/async"
	"github.com/vbwd/pluginkit/pkg/events"
)

// EmailSender delivers transactional email. Implementations are expected to
// be slow, so handlers must never call them on the dispatch path.
type EmailSender interface {
	SendWelcome(ctx context.Context, email string) error
}

// UserCreated reacts to user.created events. The welcome email is handed off
// to a background goroutine so Emit returns promptly.
type UserCreated struct {
	mailer       EmailSender
	emailTimeout time.Duration
	mu           sync.Mutex
	handled      []*events.UserCreated
}

// NewUserCreated creates the handler. A nil mailer skips the email hand-off.
func NewUserCreated(mailer EmailSender) *UserCreated {
	return &UserCreated{
		mailer:       mailer,
		emailTimeout: 10 * time.Second,
	}
}

func (h *UserCreated) CanHandle(event events.DomainEvent) bool {
	return event.EventName() == events.EventUserCreated
}

func (h *UserCreated) Handle(event events.DomainEvent) events.EventResult {
	created, ok := event.(*events.UserCreated)
	if !ok {
		return events.ErrorResult(fmt.Sprintf("unexpected event type for %s", event.EventName()), "")
	}

	h.mu.Lock()
	h.handled = append(h.handled, created)
	h.mu.Unlock()

	emailQueued := false
	if h.mailer != nil && created.Email != "" {
		email := created.Email
		async.SafeGo(context.Background(), h.emailTimeout, "welcome email", func(ctx context.Context) error {
			return h.mailer.SendWelcome(ctx, email)
		})
		emailQueued = true
	}

	return events.SuccessResult(map[string]any{
		"user_id":      created.UserID.String(),
		"email_queued": emailQueued,
	})
}

// Handled returns the events processed so far.
func (h *UserCreated) Handled() []*events.UserCreated {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*events.UserCreated, len(h.handled))
	copy(out, h.handled)
	return out
}
