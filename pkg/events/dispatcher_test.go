package events

import (
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDispatcher() *Dispatcher {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewDispatcher(log)
}

func TestDispatcherPriorityOrder(t *testing.T) {
	d := newTestDispatcher()

	var order []string
	d.AddListener("test.event", func(e *Event) {
		order = append(order, "low")
	}, PriorityLow)
	d.AddListener("test.event", func(e *Event) {
		order = append(order, "high")
	}, PriorityHigh)
	d.AddListener("test.event", func(e *Event) {
		order = append(order, "normal")
	}, PriorityNormal)

	d.Dispatch(NewEvent("test.event", nil))

	assert.Equal(t, []string{"high", "normal", "low"}, order)
}

func TestDispatcherSamePriorityKeepsRegistrationOrder(t *testing.T) {
	d := newTestDispatcher()

	var order []int
	for i := 0; i < 5; i++ {
		i := i
		d.AddListener("test.event", func(e *Event) {
			order = append(order, i)
		}, PriorityNormal)
	}

	d.Dispatch(NewEvent("test.event", nil))

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestDispatcherStopPropagation(t *testing.T) {
	d := newTestDispatcher()

	var order []string
	d.AddListener("test.event", func(e *Event) {
		order = append(order, "first")
		e.StopPropagation()
	}, PriorityHigh)
	d.AddListener("test.event", func(e *Event) {
		order = append(order, "second")
	}, PriorityNormal)

	event := NewEvent("test.event", nil)
	d.Dispatch(event)

	assert.Equal(t, []string{"first"}, order)
	assert.True(t, event.PropagationStopped())
}

func TestDispatcherPanicIsolation(t *testing.T) {
	d := newTestDispatcher()

	var survived bool
	d.AddListener("test.event", func(e *Event) {
		panic("listener blew up")
	}, PriorityHigh)
	d.AddListener("test.event", func(e *Event) {
		survived = true
	}, PriorityNormal)

	require.NotPanics(t, func() {
		d.Dispatch(NewEvent("test.event", nil))
	})
	assert.True(t, survived, "listener after the panicking one should still run")
}

func TestDispatcherEventData(t *testing.T) {
	d := newTestDispatcher()

	var got map[string]any
	d.AddListener("test.event", func(e *Event) {
		got = e.Data
	}, PriorityNormal)

	d.Dispatch(NewEvent("test.event", map[string]any{"key": "value"}))

	require.NotNil(t, got)
	assert.Equal(t, "value", got["key"])
}

func TestDispatcherRemoveListener(t *testing.T) {
	d := newTestDispatcher()

	var calls int
	id := d.AddListener("test.event", func(e *Event) {
		calls++
	}, PriorityNormal)

	d.Dispatch(NewEvent("test.event", nil))
	assert.Equal(t, 1, calls)

	d.RemoveListener("test.event", id)
	d.Dispatch(NewEvent("test.event", nil))
	assert.Equal(t, 1, calls)
	assert.False(t, d.HasListeners("test.event"))
}

func TestDispatcherRemoveUnknownListenerIsNoop(t *testing.T) {
	d := newTestDispatcher()

	d.AddListener("test.event", func(e *Event) {}, PriorityNormal)
	d.RemoveListener("test.event", ListenerID(9999))
	d.RemoveListener("other.event", ListenerID(1))

	assert.Equal(t, 1, d.ListenerCount("test.event"))
}

func TestDispatcherNoListeners(t *testing.T) {
	d := newTestDispatcher()

	require.NotPanics(t, func() {
		d.Dispatch(NewEvent("nobody.listens", nil))
	})
	assert.False(t, d.HasListeners("nobody.listens"))
	assert.Equal(t, 0, d.ListenerCount("nobody.listens"))
}

func TestDispatcherListenersAreScopedToEventName(t *testing.T) {
	d := newTestDispatcher()

	var calls int
	d.AddListener("a", func(e *Event) { calls++ }, PriorityNormal)

	d.Dispatch(NewEvent("b", nil))
	assert.Equal(t, 0, calls)

	d.Dispatch(NewEvent("a", nil))
	assert.Equal(t, 1, calls)
}

func TestDispatcherConcurrentAddAndDispatch(t *testing.T) {
	d := newTestDispatcher()

	var mu sync.Mutex
	var calls int
	d.AddListener("test.event", func(e *Event) {
		mu.Lock()
		calls++
		mu.Unlock()
	}, PriorityNormal)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			d.Dispatch(NewEvent("test.event", nil))
		}()
		go func() {
			defer wg.Done()
			d.AddListener("other.event", func(e *Event) {}, PriorityLow)
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 10, calls)
}
