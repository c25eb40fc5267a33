package handlers

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/vbwd/pluginkit/pkg/events"
)

// SubscriptionActivator is the slice of the subscription service the payment
// handlers need.
type SubscriptionActivator interface {
	ActivateSubscription(subscriptionID uuid.UUID) error
}

// SubscriptionSuspender marks a subscription past due after a failed
// payment.
type SubscriptionSuspender interface {
	MarkPastDue(subscriptionID uuid.UUID) error
}

// PaymentCompleted activates the paid subscription when payment.completed
// arrives.
type PaymentCompleted struct {
	activator SubscriptionActivator
	mu        sync.Mutex
	handled   []*events.PaymentCompleted
}

// NewPaymentCompleted creates the handler. A nil activator records the event
// without activating anything.
func NewPaymentCompleted(activator SubscriptionActivator) *PaymentCompleted {
	return &PaymentCompleted{activator: activator}
}

func (h *PaymentCompleted) CanHandle(event events.DomainEvent) bool {
	return event.EventName() == events.EventPaymentCompleted
}

func (h *PaymentCompleted) Handle(event events.DomainEvent) events.EventResult {
	completed, ok := event.(*events.PaymentCompleted)
	if !ok {
		return events.ErrorResult(fmt.Sprintf("unexpected event type for %s", event.EventName()), "")
	}

	h.mu.Lock()
	h.handled = append(h.handled, completed)
	h.mu.Unlock()

	if h.activator != nil {
		if err := h.activator.ActivateSubscription(completed.SubscriptionID); err != nil {
			return events.ErrorResult(
				fmt.Sprintf("failed to activate subscription %s: %v", completed.SubscriptionID, err), "")
		}
	}

	return events.SuccessResult(map[string]any{
		"subscription_id": completed.SubscriptionID.String(),
		"transaction_id":  completed.TransactionID,
		"activated":       h.activator != nil,
	})
}

// Handled returns the events processed so far.
func (h *PaymentCompleted) Handled() []*events.PaymentCompleted {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*events.PaymentCompleted, len(h.handled))
	copy(out, h.handled)
	return out
}

// PaymentFailed marks the subscription past due when payment.failed arrives.
type PaymentFailed struct {
	suspender SubscriptionSuspender
	mu        sync.Mutex
	handled   []*events.PaymentFailed
}

// NewPaymentFailed creates the handler. A nil suspender records the event
// without touching any subscription.
func NewPaymentFailed(suspender SubscriptionSuspender) *PaymentFailed {
	return &PaymentFailed{suspender: suspender}
}

func (h *PaymentFailed) CanHandle(event events.DomainEvent) bool {
	return event.EventName() == events.EventPaymentFailed
}

func (h *PaymentFailed) Handle(event events.DomainEvent) events.EventResult {
	failed, ok := event.(*events.PaymentFailed)
	if !ok {
		return events.ErrorResult(fmt.Sprintf("unexpected event type for %s", event.EventName()), "")
	}

	h.mu.Lock()
	h.handled = append(h.handled, failed)
	h.mu.Unlock()

	if h.suspender != nil {
		if err := h.suspender.MarkPastDue(failed.SubscriptionID); err != nil {
			return events.ErrorResult(
				fmt.Sprintf("failed to mark subscription %s past due: %v", failed.SubscriptionID, err), "")
		}
	}

	return events.SuccessResult(map[string]any{
		"subscription_id": failed.SubscriptionID.String(),
		"error_code":      failed.ErrorCode,
	})
}

// Handled returns the events processed so far.
func (h *PaymentFailed) Handled() []*events.PaymentFailed {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*events.PaymentFailed, len(h.handled))
	copy(out, h.handled)
	return out
}
