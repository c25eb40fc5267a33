package handlers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbwd/pluginkit/pkg/events"
	"github.com/vbwd/pluginkit/pkg/plugins/providers/mockpay"
	"github.com/vbwd/pluginkit/pkg/sdk"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

// fakeActivator records activation calls.
type fakeActivator struct {
	err       error
	activated []uuid.UUID
}

func (f *fakeActivator) ActivateSubscription(id uuid.UUID) error {
	f.activated = append(f.activated, id)
	return f.err
}

// fakeSuspender records past-due calls.
type fakeSuspender struct {
	err     error
	pastDue []uuid.UUID
}

func (f *fakeSuspender) MarkPastDue(id uuid.UUID) error {
	f.pastDue = append(f.pastDue, id)
	return f.err
}

// fakeMailer records welcome emails over a channel so tests can wait for the
// background send.
type fakeMailer struct {
	mu   sync.Mutex
	sent chan string
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{sent: make(chan string, 8)}
}

func (f *fakeMailer) SendWelcome(ctx context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent <- email
	return nil
}

func TestSubscriptionActivatedHandler(t *testing.T) {
	h := NewSubscriptionActivated()
	event := events.NewSubscriptionActivated(uuid.New(), uuid.New(), uuid.New(),
		time.Now(), time.Now().Add(30*24*time.Hour))

	require.True(t, h.CanHandle(event))
	assert.False(t, h.CanHandle(events.NewUserCreated(uuid.New(), "u@example.com", "member")))

	result := h.Handle(event)
	assert.True(t, result.Success)
	require.Len(t, h.Handled(), 1)
	assert.Equal(t, event.SubscriptionID, h.Handled()[0].SubscriptionID)
}

func TestSubscriptionCancelledHandler(t *testing.T) {
	h := NewSubscriptionCancelled()
	event := events.NewSubscriptionCancelled(uuid.New(), uuid.New(), uuid.New(), "too expensive")

	require.True(t, h.CanHandle(event))
	result := h.Handle(event)
	assert.True(t, result.Success)
	assert.Len(t, h.Handled(), 1)
}

func TestPaymentCompletedActivatesSubscription(t *testing.T) {
	activator := &fakeActivator{}
	h := NewPaymentCompleted(activator)
	event := events.NewPaymentCompleted(uuid.New(), uuid.New(), "txn_1", 999, "USD")

	result := h.Handle(event)

	assert.True(t, result.Success)
	require.Len(t, activator.activated, 1)
	assert.Equal(t, event.SubscriptionID, activator.activated[0])
}

func TestPaymentCompletedActivationFailure(t *testing.T) {
	activator := &fakeActivator{err: errors.New("subscription not found")}
	h := NewPaymentCompleted(activator)

	result := h.Handle(events.NewPaymentCompleted(uuid.New(), uuid.New(), "txn_1", 999, "USD"))

	assert.False(t, result.Success)
	assert.Contains(t, result.Err, "subscription not found")
	assert.Equal(t, events.ErrTypeHandlerError, result.ErrType)
}

func TestPaymentCompletedNilActivatorRecordsOnly(t *testing.T) {
	h := NewPaymentCompleted(nil)

	result := h.Handle(events.NewPaymentCompleted(uuid.New(), uuid.New(), "txn_1", 999, "USD"))

	assert.True(t, result.Success)
	assert.Len(t, h.Handled(), 1)
}

func TestPaymentFailedMarksPastDue(t *testing.T) {
	suspender := &fakeSuspender{}
	h := NewPaymentFailed(suspender)
	event := events.NewPaymentFailed(uuid.New(), uuid.New(), "card_declined", "declined", "mock-payment")

	result := h.Handle(event)

	assert.True(t, result.Success)
	require.Len(t, suspender.pastDue, 1)
	assert.Equal(t, event.SubscriptionID, suspender.pastDue[0])
}

func TestUserCreatedQueuesWelcomeEmail(t *testing.T) {
	mailer := newFakeMailer()
	h := NewUserCreated(mailer)
	event := events.NewUserCreated(uuid.New(), "new@example.com", "member")

	result := h.Handle(event)
	assert.True(t, result.Success)

	select {
	case email := <-mailer.sent:
		assert.Equal(t, "new@example.com", email)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for welcome email")
	}
}

func TestUserCreatedWithoutEmailSkipsSend(t *testing.T) {
	mailer := newFakeMailer()
	h := NewUserCreated(mailer)

	result := h.Handle(events.NewUserCreated(uuid.New(), "", "member"))
	assert.True(t, result.Success)

	data := result.Data.(map[string]any)
	assert.Equal(t, false, data["email_queued"])
}

func TestCheckoutCreatesIntentIdempotently(t *testing.T) {
	provider := mockpay.New(testLogger())
	store, err := sdk.NewMemoryStore(16)
	require.NoError(t, err)
	idem := sdk.NewIdempotencyService(store, time.Hour, testLogger())

	h := NewCheckout(provider, idem)
	event := events.NewCheckoutInitiated(uuid.New(), uuid.New(), mockpay.PluginName, 999, "USD")

	require.True(t, h.CanHandle(event))

	first := h.Handle(event)
	require.True(t, first.Success)
	assert.Equal(t, 1, provider.TransactionCount())

	// A retried checkout for the same user, plan and amount reuses the
	// recorded intent instead of charging twice.
	retry := events.NewCheckoutInitiated(event.UserID, event.PlanID, mockpay.PluginName, 999, "USD")
	second := h.Handle(retry)
	require.True(t, second.Success)
	assert.Equal(t, 1, provider.TransactionCount())

	firstData := first.Data.(map[string]any)
	secondData := second.Data.(map[string]any)
	assert.Equal(t, firstData["transaction_id"], secondData["transaction_id"])
	assert.Equal(t, false, firstData["reused"])
	assert.Equal(t, true, secondData["reused"])
}

func TestCheckoutProviderFailure(t *testing.T) {
	provider := mockpay.New(testLogger())
	provider.SetShouldFail(true)

	h := NewCheckout(provider, nil)
	result := h.Handle(events.NewCheckoutInitiated(uuid.New(), uuid.New(), mockpay.PluginName, 999, "USD"))

	assert.False(t, result.Success)
	assert.Contains(t, result.Err, "mock payment failure")
}

func TestHandlersThroughDomainDispatcher(t *testing.T) {
	d := events.NewDomainDispatcher(testLogger())
	activated := NewSubscriptionActivated()
	cancelled := NewSubscriptionCancelled()
	d.Register(events.EventSubscriptionActivated, activated)
	d.Register(events.EventSubscriptionCancelled, cancelled)

	result := d.Emit(events.NewSubscriptionActivated(uuid.New(), uuid.New(), uuid.New(),
		time.Now(), time.Now().Add(time.Hour)))

	assert.True(t, result.Success)
	assert.Len(t, activated.Handled(), 1)
	assert.Empty(t, cancelled.Handled())
}
