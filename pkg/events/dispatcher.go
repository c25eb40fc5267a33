package events

import (
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vbwd/pluginkit/pkg/observability"
)

// Priority determines listener execution order. Lower values run first.
type Priority int

const (
	PriorityHighest Priority = iota + 1
	PriorityHigh
	PriorityNormal
	PriorityLow
	PriorityLowest
)

func (p Priority) String() string {
	switch p {
	case PriorityHighest:
		return "highest"
	case PriorityHigh:
		return "high"
	case PriorityNormal:
		return "normal"
	case PriorityLow:
		return "low"
	case PriorityLowest:
		return "lowest"
	default:
		return "unknown"
	}
}

// Event is a generic bus event. It is created fresh per Dispatch call and
// discarded afterwards.
type Event struct {
	Name string
	Data map[string]any

	stopped bool
}

// NewEvent creates an event with the given name and data. A nil data map is
// replaced with an empty one.
func NewEvent(name string, data map[string]any) *Event {
	if data == nil {
		data = make(map[string]any)
	}
	return &Event{Name: name, Data: data}
}

// StopPropagation prevents the remaining lower-priority listeners from
// running within the current dispatch.
func (e *Event) StopPropagation() {
	e.stopped = true
}

// PropagationStopped reports whether a listener stopped propagation.
func (e *Event) PropagationStopped() bool {
	return e.stopped
}

// ListenerFunc is a generic bus callback.
type ListenerFunc func(*Event)

// ListenerID identifies a registration for later removal. Go functions are
// not comparable, so removal is by ID rather than by callback value.
type ListenerID int64

type listener struct {
	id       ListenerID
	fn       ListenerFunc
	priority Priority
}

// Dispatcher is the generic priority event bus.
type Dispatcher struct {
	mu        sync.RWMutex
	listeners map[string][]listener
	nextID    ListenerID
	log       *logrus.Logger
	metrics   *observability.Metrics
}

// NewDispatcher creates a new dispatcher. A nil logger falls back to a
// default logrus logger.
func NewDispatcher(log *logrus.Logger) *Dispatcher {
	if log == nil {
		log = logrus.New()
	}
	return &Dispatcher{
		listeners: make(map[string][]listener),
		log:       log,
	}
}

// SetMetrics attaches runtime metrics. Passing nil disables recording.
func (d *Dispatcher) SetMetrics(m *observability.Metrics) {
	d.metrics = m
}

// AddListener registers a callback for an event name and returns its
// registration ID. Listeners for a name are kept sorted by priority; equal
// priorities preserve registration order.
func (d *Dispatcher) AddListener(eventName string, fn ListenerFunc, priority Priority) ListenerID {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextID++
	id := d.nextID

	entries := append(d.listeners[eventName], listener{id: id, fn: fn, priority: priority})
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].priority < entries[j].priority
	})
	d.listeners[eventName] = entries

	return id
}

// RemoveListener removes a registration by ID. Unknown IDs are ignored.
func (d *Dispatcher) RemoveListener(eventName string, id ListenerID) {
	d.mu.Lock()
	defer d.mu.Unlock()

	entries := d.listeners[eventName]
	for i, entry := range entries {
		if entry.id == id {
			d.listeners[eventName] = append(entries[:i:i], entries[i+1:]...)
			return
		}
	}
}

// HasListeners reports whether any listener is registered for the name.
func (d *Dispatcher) HasListeners(eventName string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.listeners[eventName]) > 0
}

// ListenerCount returns the number of listeners registered for the name.
func (d *Dispatcher) ListenerCount(eventName string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.listeners[eventName])
}

// Dispatch invokes the listeners for event.Name in priority order, on the
// caller's goroutine. Propagation stops when a listener calls
// StopPropagation. A panicking listener is logged and swallowed; later
// listeners still run. Dispatch never fails because of listener behavior.
func (d *Dispatcher) Dispatch(event *Event) {
	start := time.Now()

	d.mu.RLock()
	entries := make([]listener, len(d.listeners[event.Name]))
	copy(entries, d.listeners[event.Name])
	d.mu.RUnlock()

	for _, entry := range entries {
		if event.PropagationStopped() {
			break
		}
		d.invoke(entry, event)
	}

	d.metrics.RecordDispatch(event.Name, time.Since(start))
}

// invoke runs one listener inside a panic isolation boundary.
func (d *Dispatcher) invoke(entry listener, event *Event) {
	defer func() {
		if r := recover(); r != nil {
			d.metrics.RecordListenerError(event.Name)
			d.log.WithFields(logrus.Fields{
				"event":    event.Name,
				"listener": entry.id,
				"panic":    r,
			}).Error("event listener panicked; continuing dispatch")
		}
	}()
	entry.fn(event)
}
