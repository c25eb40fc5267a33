// Package mockpay provides a mock payment provider plugin. It implements
// the full provider contract against in-memory state and is used by tests
// and demo hosts; it never talks to a real payment service.
package mockpay

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vbwd/pluginkit/pkg/plugins"
)

// PluginName is the mock provider's registry key.
const PluginName = "mock-payment"

var (
	_ plugins.Plugin          = (*Plugin)(nil)
	_ plugins.PaymentProvider = (*Plugin)(nil)
)

type transaction struct {
	amount         int64
	currency       string
	subscriptionID uuid.UUID
	userID         uuid.UUID
	status         string
	paymentMethod  string
	refunded       bool
}

// Plugin is a mock payment provider. It always succeeds unless configured
// to fail via SetShouldFail.
type Plugin struct {
	shouldFail    bool
	webhookSecret string
	transactions  map[string]*transaction
	enabled       bool
	log           *logrus.Logger
}

// New creates a mock payment plugin. A nil logger falls back to a default
// logrus logger.
func New(log *logrus.Logger) *Plugin {
	if log == nil {
		log = logrus.New()
	}
	return &Plugin{
		webhookSecret: "test_secret",
		transactions:  make(map[string]*transaction),
		log:           log,
	}
}

// FromManifest is a plugins.Factory for loader-based discovery.
func FromManifest(manifest *plugins.Manifest) (plugins.Plugin, error) {
	p := New(nil)
	if secret, ok := manifest.Config["webhook_secret"].(string); ok && secret != "" {
		p.webhookSecret = secret
	}
	return p, nil
}

func (p *Plugin) Metadata() plugins.Metadata {
	return plugins.Metadata{
		Name:        PluginName,
		Version:     "1.0.0",
		Author:      "VBWD Team",
		Description: "Mock payment provider for testing",
	}
}

func (p *Plugin) OnEnable() error {
	p.enabled = true
	p.log.Debugf("mock payment provider enabled")
	return nil
}

func (p *Plugin) OnDisable() error {
	p.enabled = false
	p.log.Debugf("mock payment provider disabled")
	return nil
}

// SetShouldFail configures every subsequent operation to fail.
func (p *Plugin) SetShouldFail(shouldFail bool) {
	p.shouldFail = shouldFail
}

// TransactionCount reports how many intents were created.
func (p *Plugin) TransactionCount() int {
	return len(p.transactions)
}

func (p *Plugin) CreatePaymentIntent(ctx context.Context, amount int64, currency string, subscriptionID, userID uuid.UUID, metadata map[string]any) (*plugins.PaymentResult, error) {
	if p.shouldFail {
		return &plugins.PaymentResult{
			Success:      false,
			Status:       plugins.PaymentStatusFailed,
			ErrorMessage: "mock payment failure",
		}, nil
	}

	transactionID := "mock_pi_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	p.transactions[transactionID] = &transaction{
		amount:         amount,
		currency:       currency,
		subscriptionID: subscriptionID,
		userID:         userID,
		status:         "created",
	}

	return &plugins.PaymentResult{
		Success:       true,
		TransactionID: transactionID,
		Status:        plugins.PaymentStatusPending,
		Metadata: map[string]any{
			"client_secret": transactionID + "_secret",
		},
	}, nil
}

func (p *Plugin) ProcessPayment(ctx context.Context, paymentIntentID, paymentMethod string) (*plugins.PaymentResult, error) {
	tx, ok := p.transactions[paymentIntentID]
	if !ok {
		return &plugins.PaymentResult{
			Success:      false,
			Status:       plugins.PaymentStatusFailed,
			ErrorMessage: "payment intent not found",
		}, nil
	}

	if p.shouldFail {
		tx.status = "failed"
		return &plugins.PaymentResult{
			Success:       false,
			TransactionID: paymentIntentID,
			Status:        plugins.PaymentStatusFailed,
			ErrorMessage:  "mock payment failure",
		}, nil
	}

	tx.status = "succeeded"
	tx.paymentMethod = paymentMethod

	return &plugins.PaymentResult{
		Success:       true,
		TransactionID: paymentIntentID,
		Status:        plugins.PaymentStatusCompleted,
		Metadata:      map[string]any{"payment_method": paymentMethod},
	}, nil
}

func (p *Plugin) RefundPayment(ctx context.Context, transactionID string, amount int64) (*plugins.PaymentResult, error) {
	tx, ok := p.transactions[transactionID]
	if !ok {
		return &plugins.PaymentResult{
			Success:      false,
			ErrorMessage: "transaction not found",
		}, nil
	}

	if p.shouldFail {
		return &plugins.PaymentResult{
			Success:      false,
			ErrorMessage: "mock refund failure",
		}, nil
	}

	refundAmount := amount
	if refundAmount == 0 {
		refundAmount = tx.amount
	}
	tx.refunded = true

	refundID := "mock_ref_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	return &plugins.PaymentResult{
		Success:       true,
		TransactionID: refundID,
		Status:        plugins.PaymentStatusRefunded,
		Metadata: map[string]any{
			"refund_amount":        refundAmount,
			"original_transaction": transactionID,
		},
	}, nil
}

func (p *Plugin) VerifyWebhook(ctx context.Context, payload []byte, signature string) (bool, error) {
	return signature == p.webhookSecret, nil
}

func (p *Plugin) HandleWebhook(ctx context.Context, payload []byte) (*plugins.PaymentResult, error) {
	if p.shouldFail {
		return nil, fmt.Errorf("mock webhook handling failure")
	}
	return &plugins.PaymentResult{
		Success: true,
		Status:  plugins.PaymentStatusCompleted,
	}, nil
}
