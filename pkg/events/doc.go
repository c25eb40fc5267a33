// Package events provides the two event-dispatch layers of the pluginkit
// runtime: a generic priority event bus and a typed domain-event dispatcher
// with multi-handler result aggregation.
//
// # Generic bus
//
// Dispatcher routes Event values to listeners registered per event name.
// Listeners run synchronously on the caller's goroutine, ordered by Priority
// (lower value first), ties broken by registration order. A listener may call
// Event.StopPropagation to skip the remaining lower-priority listeners. A
// panicking listener is logged and skipped; dispatch continues.
//
//	bus := events.NewDispatcher(nil)
//	id := bus.AddListener("plugin.enabled", func(e *events.Event) {
//		log.Printf("enabled %v", e.Data["plugin_name"])
//	}, events.PriorityNormal)
//	bus.Dispatch(events.NewEvent("plugin.enabled", map[string]any{"plugin_name": "mock-payment"}))
//	bus.RemoveListener("plugin.enabled", id)
//
// # Domain events
//
// DomainEvent is a timestamped business fact (subscription activated, payment
// captured). DomainDispatcher routes an event to every registered Handler
// whose CanHandle accepts it, in registration order, isolates per-handler
// panics, and folds all outcomes into one EventResult via Combine. Emit never
// panics because of handler misbehavior; callers inspect EventResult.Success.
//
// Neither dispatcher locks registration against in-flight dispatch; hosts are
// expected to finish registration before concurrent emit traffic starts.
package events
