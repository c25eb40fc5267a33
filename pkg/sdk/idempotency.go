package sdk

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultIdempotencyTTL is how long a recorded result stays valid.
const DefaultIdempotencyTTL = 24 * time.Hour

// IdempotencyStore persists operation results keyed by idempotency key.
type IdempotencyStore interface {
	// Check returns the stored result for key, or ok=false if none exists.
	Check(ctx context.Context, key string) (result map[string]any, ok bool, err error)
	// Store records the result for key with the given TTL.
	Store(ctx context.Context, key string, result map[string]any, ttl time.Duration) error
	// Delete removes the record for key. Deleting a missing key is not an
	// error.
	Delete(ctx context.Context, key string) error
}

// IdempotencyService prevents duplicate execution of payment operations.
type IdempotencyService struct {
	store IdempotencyStore
	ttl   time.Duration
	log   *logrus.Logger
}

// NewIdempotencyService creates a service backed by store. A zero ttl uses
// DefaultIdempotencyTTL.
func NewIdempotencyService(store IdempotencyStore, ttl time.Duration, log *logrus.Logger) *IdempotencyService {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	if log == nil {
		log = logrus.New()
	}
	return &IdempotencyService{store: store, ttl: ttl, log: log}
}

// Key derives a stable idempotency key from the provider, operation and
// arguments. Argument order does not matter.
func Key(provider, operation string, args map[string]any) string {
	names := make([]string, 0, len(args))
	for name := range args {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(provider)
	b.WriteByte(':')
	b.WriteString(operation)
	for _, name := range names {
		fmt.Fprintf(&b, ":%s=%v", name, args[name])
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])[:32]
}

// Execute runs fn at most once per key. If a result is already recorded it
// is returned without calling fn. A store read failure is logged and treated
// as a miss so payment flow is never blocked by the idempotency layer;
// a store write failure after a successful fn is returned to the caller.
func (s *IdempotencyService) Execute(ctx context.Context, key string,
	fn func(context.Context) (map[string]any, error)) (map[string]any, bool, error) {

	cached, ok, err := s.store.Check(ctx, key)
	if err != nil {
		s.log.WithError(err).WithField("key", key).Warn("idempotency check failed, executing anyway")
	} else if ok {
		s.log.WithField("key", key).Debug("idempotency hit, returning recorded result")
		return cached, true, nil
	}

	result, err := fn(ctx)
	if err != nil {
		return nil, false, err
	}

	if err := s.store.Store(ctx, key, result, s.ttl); err != nil {
		return result, false, fmt.Errorf("failed to record idempotency result: %w", err)
	}
	return result, false, nil
}

// Forget removes the record for key, allowing the operation to run again.
func (s *IdempotencyService) Forget(ctx context.Context, key string) error {
	return s.store.Delete(ctx, key)
}
