package plugins

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/vbwd/pluginkit/pkg/events"
	"github.com/vbwd/pluginkit/pkg/observability"
)

// Lifecycle event names emitted on the generic bus. Each event carries
// plugin_name and version in its data.
const (
	EventPluginRegistered  = "plugin.registered"
	EventPluginInitialized = "plugin.initialized"
	EventPluginEnabled     = "plugin.enabled"
	EventPluginDisabled    = "plugin.disabled"
)

// registration is the Manager's record for one plugin. The Manager owns
// status and config exclusively; plugins themselves stay stateless about
// their lifecycle.
type registration struct {
	plugin Plugin
	status Status
	config map[string]any
}

// Manager owns all registered plugins and drives the lifecycle state
// machine. It is an explicit, constructible object: one per process, per
// test or per tenant, never a package-level singleton.
//
// Registration and lifecycle calls are expected to happen during a
// single-threaded setup phase before concurrent dispatch traffic begins;
// the Manager performs no internal locking. Hosts that must interleave the
// two serialize externally.
type Manager struct {
	registry map[string]*registration
	order    []string // registration order
	bus      *events.Dispatcher
	log      *logrus.Logger
	metrics  *observability.Metrics
}

// NewManager creates a plugin manager announcing lifecycle transitions on
// the given bus. A nil bus gets a private dispatcher; a nil logger falls
// back to a default logrus logger.
func NewManager(bus *events.Dispatcher, log *logrus.Logger) *Manager {
	if log == nil {
		log = logrus.New()
	}
	if bus == nil {
		bus = events.NewDispatcher(log)
	}
	return &Manager{
		registry: make(map[string]*registration),
		bus:      bus,
		log:      log,
	}
}

// SetMetrics attaches runtime metrics. Passing nil disables recording.
func (m *Manager) SetMetrics(metrics *observability.Metrics) {
	m.metrics = metrics
}

// Bus returns the dispatcher lifecycle events are announced on.
func (m *Manager) Bus() *events.Dispatcher {
	return m.bus
}

// Register adds a plugin at StatusRegistered and emits plugin.registered.
func (m *Manager) Register(p Plugin) error {
	if p == nil {
		return fmt.Errorf("cannot register nil plugin")
	}
	meta := p.Metadata()
	if meta.Name == "" {
		return fmt.Errorf("cannot register plugin with empty name")
	}

	if _, exists := m.registry[meta.Name]; exists {
		return &DuplicateError{Name: meta.Name}
	}

	m.registry[meta.Name] = &registration{
		plugin: p,
		status: StatusRegistered,
		config: make(map[string]any),
	}
	m.order = append(m.order, meta.Name)

	m.log.Infof("Registered plugin: %s v%s", meta.Name, meta.Version)
	m.metrics.RecordLifecycleTransition(string(StatusRegistered))
	m.emitLifecycle(EventPluginRegistered, meta)
	return nil
}

// Initialize stores the plugin's configuration and moves it to
// StatusInitialized. It requires the plugin to be at StatusRegistered or
// later; a plugin in StatusError stays there.
func (m *Manager) Initialize(name string, config map[string]any) error {
	reg, ok := m.registry[name]
	if !ok {
		return &UnknownPluginError{Name: name}
	}
	if reg.status == StatusError {
		return &StateError{Plugin: name, Status: reg.status, Op: "initialize"}
	}

	if config != nil {
		cfg := make(map[string]any, len(config))
		for k, v := range config {
			cfg[k] = v
		}
		reg.config = cfg
	}
	reg.status = StatusInitialized

	m.log.Debugf("Initialized plugin: %s", name)
	m.metrics.RecordLifecycleTransition(string(StatusInitialized))
	m.emitLifecycle(EventPluginInitialized, reg.plugin.Metadata())
	return nil
}

// Enable transitions a plugin to StatusEnabled. It requires
// StatusInitialized or StatusDisabled, and every declared dependency to be
// enabled already; a blocked enable has no side effects. A failing OnEnable
// hook moves the plugin to the terminal StatusError and the error is
// returned to the caller.
func (m *Manager) Enable(name string) error {
	reg, ok := m.registry[name]
	if !ok {
		return &UnknownPluginError{Name: name}
	}
	if reg.status != StatusInitialized && reg.status != StatusDisabled {
		return &StateError{Plugin: name, Status: reg.status, Op: "enable"}
	}

	meta := reg.plugin.Metadata()
	var missing []string
	for _, dep := range meta.Dependencies {
		depReg, ok := m.registry[dep]
		if !ok || depReg.status != StatusEnabled {
			missing = append(missing, dep)
		}
	}
	if len(missing) > 0 {
		return &DependencyError{Plugin: name, Missing: missing}
	}

	if err := reg.plugin.OnEnable(); err != nil {
		reg.status = StatusError
		m.metrics.RecordLifecycleTransition(string(StatusError))
		m.log.WithError(err).Errorf("OnEnable hook failed for plugin %s", name)
		return fmt.Errorf("enable plugin %q: %w", name, err)
	}

	reg.status = StatusEnabled
	m.log.Infof("Enabled plugin: %s v%s", meta.Name, meta.Version)
	m.metrics.RecordLifecycleTransition(string(StatusEnabled))
	m.metrics.SetPluginsEnabled(m.enabledCount())
	m.emitLifecycle(EventPluginEnabled, meta)
	return nil
}

// Disable transitions an enabled plugin to StatusDisabled. It refuses while
// any enabled plugin still depends on the target. A failing OnDisable hook
// moves the plugin to StatusError and the error is returned.
func (m *Manager) Disable(name string) error {
	reg, ok := m.registry[name]
	if !ok {
		return &UnknownPluginError{Name: name}
	}
	if reg.status != StatusEnabled {
		return &StateError{Plugin: name, Status: reg.status, Op: "disable"}
	}

	var dependents []string
	for _, other := range m.order {
		otherReg := m.registry[other]
		if otherReg.status != StatusEnabled {
			continue
		}
		for _, dep := range otherReg.plugin.Metadata().Dependencies {
			if dep == name {
				dependents = append(dependents, other)
				break
			}
		}
	}
	if len(dependents) > 0 {
		return &DependentsError{Plugin: name, Dependents: dependents}
	}

	meta := reg.plugin.Metadata()
	if err := reg.plugin.OnDisable(); err != nil {
		reg.status = StatusError
		m.metrics.RecordLifecycleTransition(string(StatusError))
		m.log.WithError(err).Errorf("OnDisable hook failed for plugin %s", name)
		return fmt.Errorf("disable plugin %q: %w", name, err)
	}

	reg.status = StatusDisabled
	m.log.Infof("Disabled plugin: %s v%s", meta.Name, meta.Version)
	m.metrics.RecordLifecycleTransition(string(StatusDisabled))
	m.metrics.SetPluginsEnabled(m.enabledCount())
	m.emitLifecycle(EventPluginDisabled, meta)
	return nil
}

// ResolveOrder computes the deterministic topological enable order over all
// registered plugins. Plugins with no ordering constraint between them keep
// their registration order.
func (m *Manager) ResolveOrder() ([]string, error) {
	graph := newDepGraph()
	for _, name := range m.order {
		graph.addNode(name, m.registry[name].plugin.Metadata().Dependencies)
	}
	return graph.topoSort()
}

// EnableAll enables every registered plugin in dependency order. Plugins
// still at StatusRegistered are initialized with an empty configuration
// first; already-enabled plugins are skipped. The first failure aborts and
// is returned.
func (m *Manager) EnableAll() error {
	order, err := m.ResolveOrder()
	if err != nil {
		return err
	}
	for _, name := range order {
		reg := m.registry[name]
		switch reg.status {
		case StatusEnabled:
			continue
		case StatusRegistered:
			if err := m.Initialize(name, nil); err != nil {
				return err
			}
		}
		if err := m.Enable(name); err != nil {
			return err
		}
	}
	return nil
}

// DisableAll disables every enabled plugin in reverse dependency order.
func (m *Manager) DisableAll() error {
	order, err := m.ResolveOrder()
	if err != nil {
		return err
	}
	for i := len(order) - 1; i >= 0; i-- {
		name := order[i]
		if m.registry[name].status != StatusEnabled {
			continue
		}
		if err := m.Disable(name); err != nil {
			return err
		}
	}
	return nil
}

// Get returns a registered plugin by name.
func (m *Manager) Get(name string) (Plugin, error) {
	reg, ok := m.registry[name]
	if !ok {
		return nil, &UnknownPluginError{Name: name}
	}
	return reg.plugin, nil
}

// All returns every registered plugin in registration order.
func (m *Manager) All() []Plugin {
	out := make([]Plugin, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.registry[name].plugin)
	}
	return out
}

// Enabled returns every enabled plugin in registration order.
func (m *Manager) Enabled() []Plugin {
	var out []Plugin
	for _, name := range m.order {
		if m.registry[name].status == StatusEnabled {
			out = append(out, m.registry[name].plugin)
		}
	}
	return out
}

// StatusOf returns a plugin's current lifecycle status.
func (m *Manager) StatusOf(name string) (Status, error) {
	reg, ok := m.registry[name]
	if !ok {
		return "", &UnknownPluginError{Name: name}
	}
	return reg.status, nil
}

// Describe returns a snapshot of a plugin's metadata, status and config.
func (m *Manager) Describe(name string) (Info, error) {
	reg, ok := m.registry[name]
	if !ok {
		return Info{}, &UnknownPluginError{Name: name}
	}
	cfg := make(map[string]any, len(reg.config))
	for k, v := range reg.config {
		cfg[k] = v
	}
	return Info{
		Metadata: reg.plugin.Metadata(),
		Status:   reg.status,
		Config:   cfg,
	}, nil
}

func (m *Manager) enabledCount() int {
	n := 0
	for _, reg := range m.registry {
		if reg.status == StatusEnabled {
			n++
		}
	}
	return n
}

func (m *Manager) emitLifecycle(eventName string, meta Metadata) {
	m.bus.Dispatch(events.NewEvent(eventName, map[string]any{
		"plugin_name": meta.Name,
		"version":     meta.Version,
	}))
}
