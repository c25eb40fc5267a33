package events

import (
	"time"

	"github.com/google/uuid"
)

// Subscription lifecycle event names.
const (
	EventSubscriptionCreated   = "subscription.created"
	EventSubscriptionActivated = "subscription.activated"
	EventSubscriptionCancelled = "subscription.cancelled"
	EventSubscriptionExpired   = "subscription.expired"
	EventPaymentCompleted      = "payment.completed"
)

// SubscriptionCreated signals that a new subscription was created.
type SubscriptionCreated struct {
	BaseEvent
	SubscriptionID uuid.UUID
	UserID         uuid.UUID
	PlanID         uuid.UUID
	Status         string
}

func NewSubscriptionCreated(subscriptionID, userID, planID uuid.UUID, status string) *SubscriptionCreated {
	return &SubscriptionCreated{
		BaseEvent:      NewBase(EventSubscriptionCreated),
		SubscriptionID: subscriptionID,
		UserID:         userID,
		PlanID:         planID,
		Status:         status,
	}
}

// SubscriptionActivated signals that a subscription became active.
type SubscriptionActivated struct {
	BaseEvent
	SubscriptionID uuid.UUID
	UserID         uuid.UUID
	PlanID         uuid.UUID
	StartedAt      time.Time
	ExpiresAt      time.Time
}

func NewSubscriptionActivated(subscriptionID, userID, planID uuid.UUID, startedAt, expiresAt time.Time) *SubscriptionActivated {
	return &SubscriptionActivated{
		BaseEvent:      NewBase(EventSubscriptionActivated),
		SubscriptionID: subscriptionID,
		UserID:         userID,
		PlanID:         planID,
		StartedAt:      startedAt,
		ExpiresAt:      expiresAt,
	}
}

// SubscriptionCancelled signals that a subscription was cancelled.
type SubscriptionCancelled struct {
	BaseEvent
	SubscriptionID uuid.UUID
	UserID         uuid.UUID
	CancelledBy    uuid.UUID
	Reason         string
}

func NewSubscriptionCancelled(subscriptionID, userID, cancelledBy uuid.UUID, reason string) *SubscriptionCancelled {
	return &SubscriptionCancelled{
		BaseEvent:      NewBase(EventSubscriptionCancelled),
		SubscriptionID: subscriptionID,
		UserID:         userID,
		CancelledBy:    cancelledBy,
		Reason:         reason,
	}
}

// SubscriptionExpired signals that a subscription passed its expiry time.
type SubscriptionExpired struct {
	BaseEvent
	SubscriptionID uuid.UUID
	UserID         uuid.UUID
	ExpiredAt      time.Time
}

func NewSubscriptionExpired(subscriptionID, userID uuid.UUID, expiredAt time.Time) *SubscriptionExpired {
	return &SubscriptionExpired{
		BaseEvent:      NewBase(EventSubscriptionExpired),
		SubscriptionID: subscriptionID,
		UserID:         userID,
		ExpiredAt:      expiredAt,
	}
}

// PaymentCompleted signals that a subscription payment settled. Amount is in
// minor currency units.
type PaymentCompleted struct {
	BaseEvent
	SubscriptionID uuid.UUID
	UserID         uuid.UUID
	TransactionID  string
	Amount         int64
	Currency       string
}

func NewPaymentCompleted(subscriptionID, userID uuid.UUID, transactionID string, amount int64, currency string) *PaymentCompleted {
	return &PaymentCompleted{
		BaseEvent:      NewBase(EventPaymentCompleted),
		SubscriptionID: subscriptionID,
		UserID:         userID,
		TransactionID:  transactionID,
		Amount:         amount,
		Currency:       currency,
	}
}
