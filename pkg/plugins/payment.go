package plugins

import (
	"context"

	"github.com/google/uuid"
)

// PaymentStatus is the provider-side state of a transaction.
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusCompleted  PaymentStatus = "completed"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusRefunded   PaymentStatus = "refunded"
	PaymentStatusCancelled  PaymentStatus = "cancelled"
)

// PaymentResult is the outcome of a provider operation. Amounts everywhere
// in this contract are minor currency units.
type PaymentResult struct {
	Success       bool
	TransactionID string
	Status        PaymentStatus
	ErrorMessage  string
	Metadata      map[string]any
}

// PaymentProvider is the contract payment plugins implement on top of
// Plugin. The runtime itself never calls these methods; it only drives the
// lifecycle hooks. Hosts obtain the provider by type-asserting an enabled
// plugin.
type PaymentProvider interface {
	CreatePaymentIntent(ctx context.Context, amount int64, currency string, subscriptionID, userID uuid.UUID, metadata map[string]any) (*PaymentResult, error)
	ProcessPayment(ctx context.Context, paymentIntentID, paymentMethod string) (*PaymentResult, error)
	RefundPayment(ctx context.Context, transactionID string, amount int64) (*PaymentResult, error)
	VerifyWebhook(ctx context.Context, payload []byte, signature string) (bool, error)
	HandleWebhook(ctx context.Context, payload []byte) (*PaymentResult, error)
}
