package events

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewBase(t *testing.T) {
	before := time.Now().UTC()
	base := NewBase("test.event")
	after := time.Now().UTC()

	assert.Equal(t, "test.event", base.EventName())
	assert.NotEqual(t, uuid.Nil, base.EventID())
	assert.False(t, base.OccurredAt().Before(before))
	assert.False(t, base.OccurredAt().After(after))
	assert.NotNil(t, base.Metadata())
	assert.Empty(t, base.Metadata())
}

func TestNewBaseAssignsUniqueIDs(t *testing.T) {
	a := NewBase("test.event")
	b := NewBase("test.event")

	assert.NotEqual(t, a.EventID(), b.EventID())
}

func TestConcreteEventsImplementDomainEvent(t *testing.T) {
	userID := uuid.New()
	subID := uuid.New()
	planID := uuid.New()

	tests := []struct {
		name     string
		event    DomainEvent
		wantName string
	}{
		{
			name:     "subscription created",
			event:    NewSubscriptionCreated(subID, userID, planID, "pending"),
			wantName: EventSubscriptionCreated,
		},
		{
			name:     "subscription activated",
			event:    NewSubscriptionActivated(subID, userID, planID, time.Now(), time.Now().Add(30*24*time.Hour)),
			wantName: EventSubscriptionActivated,
		},
		{
			name:     "subscription cancelled",
			event:    NewSubscriptionCancelled(subID, userID, userID, "too expensive"),
			wantName: EventSubscriptionCancelled,
		},
		{
			name:     "subscription expired",
			event:    NewSubscriptionExpired(subID, userID, time.Now()),
			wantName: EventSubscriptionExpired,
		},
		{
			name:     "payment completed",
			event:    NewPaymentCompleted(subID, userID, "txn_1", 999, "USD"),
			wantName: EventPaymentCompleted,
		},
		{
			name:     "checkout initiated",
			event:    NewCheckoutInitiated(userID, planID, "mock-payment", 999, "USD"),
			wantName: EventCheckoutInitiated,
		},
		{
			name:     "payment failed",
			event:    NewPaymentFailed(subID, userID, "card_declined", "card was declined", "mock-payment"),
			wantName: EventPaymentFailed,
		},
		{
			name:     "user created",
			event:    NewUserCreated(userID, "user@example.com", "member"),
			wantName: EventUserCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantName, tt.event.EventName())
			assert.NotEqual(t, uuid.Nil, tt.event.EventID())
			assert.False(t, tt.event.OccurredAt().IsZero())
		})
	}
}
