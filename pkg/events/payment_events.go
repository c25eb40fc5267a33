package events

import "github.com/google/uuid"

// Payment flow event names.
const (
	EventCheckoutInitiated = "checkout.initiated"
	EventPaymentCaptured   = "payment.captured"
	EventPaymentFailed     = "payment.failed"
	EventRefundRequested   = "refund.requested"
)

// CheckoutInitiated signals that a user started checkout for a plan. The
// handler is expected to create a payment intent with the named provider.
type CheckoutInitiated struct {
	BaseEvent
	UserID   uuid.UUID
	PlanID   uuid.UUID
	Provider string
	Amount   int64
	Currency string
}

func NewCheckoutInitiated(userID, planID uuid.UUID, provider string, amount int64, currency string) *CheckoutInitiated {
	return &CheckoutInitiated{
		BaseEvent: NewBase(EventCheckoutInitiated),
		UserID:    userID,
		PlanID:    planID,
		Provider:  provider,
		Amount:    amount,
		Currency:  currency,
	}
}

// PaymentCaptured signals that the provider confirmed a successful payment.
type PaymentCaptured struct {
	BaseEvent
	SubscriptionID uuid.UUID
	UserID         uuid.UUID
	TransactionID  string
	Amount         int64
	Currency       string
	Provider       string
}

func NewPaymentCaptured(subscriptionID, userID uuid.UUID, transactionID string, amount int64, currency, provider string) *PaymentCaptured {
	return &PaymentCaptured{
		BaseEvent:      NewBase(EventPaymentCaptured),
		SubscriptionID: subscriptionID,
		UserID:         userID,
		TransactionID:  transactionID,
		Amount:         amount,
		Currency:       currency,
		Provider:       provider,
	}
}

// PaymentFailed signals that the provider reported a payment failure.
type PaymentFailed struct {
	BaseEvent
	SubscriptionID uuid.UUID
	UserID         uuid.UUID
	ErrorCode      string
	ErrorMessage   string
	Provider       string
}

func NewPaymentFailed(subscriptionID, userID uuid.UUID, errorCode, errorMessage, provider string) *PaymentFailed {
	return &PaymentFailed{
		BaseEvent:      NewBase(EventPaymentFailed),
		SubscriptionID: subscriptionID,
		UserID:         userID,
		ErrorCode:      errorCode,
		ErrorMessage:   errorMessage,
		Provider:       provider,
	}
}

// RefundRequested signals that a refund was requested for a transaction. A
// zero Amount means a full refund.
type RefundRequested struct {
	BaseEvent
	TransactionID  string
	SubscriptionID uuid.UUID
	Reason         string
	Provider       string
	Amount         int64
}

func NewRefundRequested(transactionID string, subscriptionID uuid.UUID, reason, provider string, amount int64) *RefundRequested {
	return &RefundRequested{
		BaseEvent:      NewBase(EventRefundRequested),
		TransactionID:  transactionID,
		SubscriptionID: subscriptionID,
		Reason:         reason,
		Provider:       provider,
		Amount:         amount,
	}
}
