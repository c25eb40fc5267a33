// Package async provides safe goroutine helpers for work that must not run
// inside an event dispatch.
//
// Dispatch and Emit are synchronous: a slow handler blocks the whole
// pipeline for that event. Handlers that need slow I/O (email, external
// APIs) hand the work to SafeGo and return promptly; bulk emitters use
// Batch. Both recover panics and enforce timeouts so background work cannot
// crash the host or leak goroutines.
package async
