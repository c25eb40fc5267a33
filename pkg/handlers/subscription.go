package handlers

import (
	"fmt"
	"sync"

	"github.com/vbwd/pluginkit/pkg/events"
)

// SubscriptionActivated reacts to subscription.activated events. It records
// every handled event, standing in for access granting and confirmation
// email in the full platform.
type SubscriptionActivated struct {
	mu      sync.Mutex
	handled []*events.SubscriptionActivated
}

func NewSubscriptionActivated() *SubscriptionActivated {
	return &SubscriptionActivated{}
}

func (h *SubscriptionActivated) CanHandle(event events.DomainEvent) bool {
	return event.EventName() == events.EventSubscriptionActivated
}

func (h *SubscriptionActivated) Handle(event events.DomainEvent) events.EventResult {
	activated, ok := event.(*events.SubscriptionActivated)
	if !ok {
		return events.ErrorResult(fmt.Sprintf("unexpected event type for %s", event.EventName()), "")
	}

	h.mu.Lock()
	h.handled = append(h.handled, activated)
	h.mu.Unlock()

	return events.SuccessResult(map[string]any{
		"subscription_id": activated.SubscriptionID.String(),
		"user_id":         activated.UserID.String(),
		"handled":         true,
	})
}

// Handled returns the events processed so far.
func (h *SubscriptionActivated) Handled() []*events.SubscriptionActivated {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*events.SubscriptionActivated, len(h.handled))
	copy(out, h.handled)
	return out
}

// SubscriptionCancelled reacts to subscription.cancelled events.
type SubscriptionCancelled struct {
	mu      sync.Mutex
	handled []*events.SubscriptionCancelled
}

func NewSubscriptionCancelled() *SubscriptionCancelled {
	return &SubscriptionCancelled{}
}

func (h *SubscriptionCancelled) CanHandle(event events.DomainEvent) bool {
	return event.EventName() == events.EventSubscriptionCancelled
}

func (h *SubscriptionCancelled) Handle(event events.DomainEvent) events.EventResult {
	cancelled, ok := event.(*events.SubscriptionCancelled)
	if !ok {
		return events.ErrorResult(fmt.Sprintf("unexpected event type for %s", event.EventName()), "")
	}

	h.mu.Lock()
	h.handled = append(h.handled, cancelled)
	h.mu.Unlock()

	return events.SuccessResult(map[string]any{
		"subscription_id": cancelled.SubscriptionID.String(),
		"user_id":         cancelled.UserID.String(),
		"handled":         true,
	})
}

// Handled returns the events processed so far.
func (h *SubscriptionCancelled) Handled() []*events.SubscriptionCancelled {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*events.SubscriptionCancelled, len(h.handled))
	copy(out, h.handled)
	return out
}
