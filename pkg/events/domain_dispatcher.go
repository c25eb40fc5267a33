package events

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vbwd/pluginkit/pkg/observability"
)

// Handler is the capability contract application code implements to react to
// domain events. CanHandle is expected to match on EventName; Handle may
// type-assert to the concrete event it registered for.
type Handler interface {
	CanHandle(event DomainEvent) bool
	Handle(event DomainEvent) EventResult
}

// DomainDispatcher routes domain events to registered handlers. Handlers for
// a name run in registration order; there is no priority at this layer. Emit
// isolates per-handler panics and always returns a combined EventResult.
type DomainDispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	log      *logrus.Logger
	metrics  *observability.Metrics
}

// NewDomainDispatcher creates a new domain event dispatcher. A nil logger
// falls back to a default logrus logger.
func NewDomainDispatcher(log *logrus.Logger) *DomainDispatcher {
	if log == nil {
		log = logrus.New()
	}
	return &DomainDispatcher{
		handlers: make(map[string][]Handler),
		log:      log,
	}
}

// SetMetrics attaches runtime metrics. Passing nil disables recording.
func (d *DomainDispatcher) SetMetrics(m *observability.Metrics) {
	d.metrics = m
}

// Register appends a handler to the list for an event name.
func (d *DomainDispatcher) Register(eventName string, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[eventName] = append(d.handlers[eventName], handler)
}

// HasHandler reports whether any handler is registered for the name.
func (d *DomainDispatcher) HasHandler(eventName string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.handlers[eventName]) > 0
}

// Handlers returns the handlers registered for the name, in registration
// order.
func (d *DomainDispatcher) Handlers(eventName string) []Handler {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Handler, len(d.handlers[eventName]))
	copy(out, d.handlers[eventName])
	return out
}

// Emit routes the event to every registered handler whose CanHandle accepts
// it and returns the combined result. Handlers run synchronously on the
// caller's goroutine, in registration order, each inside a panic isolation
// boundary: a panicking handler contributes a failed result with ErrType
// "handler_exception" and the remaining handlers still run. Emit never
// panics because of handler misbehavior.
//
// With no handlers registered for the name, or with handlers registered but
// none matching, Emit returns NoHandlerResult.
func (d *DomainDispatcher) Emit(event DomainEvent) EventResult {
	start := time.Now()
	defer func() {
		d.metrics.RecordEmit(event.EventName(), time.Since(start))
	}()

	handlers := d.Handlers(event.EventName())
	if len(handlers) == 0 {
		return NoHandlerResult()
	}

	results := make([]EventResult, 0, len(handlers))
	for _, h := range handlers {
		result, matched := d.invokeHandler(h, event)
		if !matched {
			continue
		}
		results = append(results, result)
		d.metrics.RecordHandlerResult(event.EventName(), outcomeOf(result))
	}

	if len(results) == 0 {
		return NoHandlerResult()
	}
	return Combine(results)
}

// invokeHandler runs CanHandle and Handle for one handler inside a panic
// isolation boundary. A panic in either produces a failed result.
func (d *DomainDispatcher) invokeHandler(h Handler, event DomainEvent) (result EventResult, matched bool) {
	defer func() {
		if r := recover(); r != nil {
			d.log.WithFields(logrus.Fields{
				"event":    event.EventName(),
				"event_id": event.EventID(),
				"panic":    r,
			}).Error("domain event handler panicked")
			result = ErrorResult(fmt.Sprintf("%v", r), ErrTypeHandlerPanic)
			matched = true
		}
	}()

	if !h.CanHandle(event) {
		return EventResult{}, false
	}
	return h.Handle(event), true
}

func outcomeOf(r EventResult) string {
	switch {
	case r.Success:
		return observability.OutcomeSuccess
	case r.ErrType == ErrTypeHandlerPanic:
		return observability.OutcomePanic
	default:
		return observability.OutcomeError
	}
}
