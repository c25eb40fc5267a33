// Package sdk provides services plugins build on top of, starting with
// idempotency tracking for payment operations.
//
// Payment providers must not double-charge when a webhook or API call is
// retried. The IdempotencyService derives a stable key from the provider,
// operation and arguments, and remembers the first result for a TTL. Two
// stores ship with the package: Redis for multi-process hosts and an
// in-memory LRU for tests and single-process deployments.
package sdk
