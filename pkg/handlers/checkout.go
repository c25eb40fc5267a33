package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vbwd/pluginkit/pkg/events"
	"github.com/vbwd/pluginkit/pkg/plugins"
	"github.com/vbwd/pluginkit/pkg/sdk"
)

// Checkout reacts to checkout.initiated by creating a payment intent with
// the payment provider. The idempotency service guarantees a retried
// checkout event never creates a second intent.
type Checkout struct {
	provider    plugins.PaymentProvider
	idempotency *sdk.IdempotencyService
	timeout     time.Duration
}

// NewCheckout creates the handler. idempotency may be nil, in which case
// every event reaches the provider.
func NewCheckout(provider plugins.PaymentProvider, idempotency *sdk.IdempotencyService) *Checkout {
	return &Checkout{
		provider:    provider,
		idempotency: idempotency,
		timeout:     30 * time.Second,
	}
}

func (h *Checkout) CanHandle(event events.DomainEvent) bool {
	return event.EventName() == events.EventCheckoutInitiated
}

func (h *Checkout) Handle(event events.DomainEvent) events.EventResult {
	checkout, ok := event.(*events.CheckoutInitiated)
	if !ok {
		return events.ErrorResult(fmt.Sprintf("unexpected event type for %s", event.EventName()), "")
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	create := func(ctx context.Context) (map[string]any, error) {
		result, err := h.provider.CreatePaymentIntent(ctx, checkout.Amount, checkout.Currency,
			uuid.Nil, checkout.UserID, map[string]any{"plan_id": checkout.PlanID.String()})
		if err != nil {
			return nil, err
		}
		if !result.Success {
			return nil, fmt.Errorf("provider rejected payment intent: %s", result.ErrorMessage)
		}
		return map[string]any{
			"transaction_id": result.TransactionID,
			"status":         string(result.Status),
		}, nil
	}

	var (
		result map[string]any
		reused bool
		err    error
	)
	if h.idempotency != nil {
		key := sdk.Key(checkout.Provider, "create_payment_intent", map[string]any{
			"user_id":  checkout.UserID.String(),
			"plan_id":  checkout.PlanID.String(),
			"amount":   checkout.Amount,
			"currency": checkout.Currency,
		})
		result, reused, err = h.idempotency.Execute(ctx, key, create)
	} else {
		result, err = create(ctx)
	}
	if err != nil {
		return events.ErrorResult(fmt.Sprintf("failed to create payment intent: %v", err), "")
	}

	// Copy before annotating so a cached result is never mutated.
	out := make(map[string]any, len(result)+1)
	for k, v := range result {
		out[k] = v
	}
	out["reused"] = reused
	return events.SuccessResult(out)
}
