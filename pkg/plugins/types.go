package plugins

// Status is a plugin's position in the lifecycle state machine.
type Status string

const (
	// StatusDiscovered is the pre-registration state reported by the Loader
	// for plugins found on disk but not yet handed to a Manager.
	StatusDiscovered  Status = "discovered"
	StatusRegistered  Status = "registered"
	StatusInitialized Status = "initialized"
	StatusEnabled     Status = "enabled"
	StatusDisabled    Status = "disabled"
	// StatusError is terminal; a plugin enters it when a lifecycle hook
	// fails and stays there for the rest of the process lifetime.
	StatusError Status = "error"
)

// Metadata describes a plugin. Name is the unique key within a Manager.
type Metadata struct {
	Name         string
	Version      string
	Author       string
	Description  string
	Dependencies []string
}

// Plugin is the unit of extension managed by the Manager. The runtime only
// ever calls the lifecycle hooks; any further capability (payment provider,
// domain handlers) is discovered by the host through type assertions.
type Plugin interface {
	Metadata() Metadata
	// OnEnable is invoked during Enable, after the dependency check. An
	// error aborts the transition and moves the plugin to StatusError.
	OnEnable() error
	// OnDisable is invoked during Disable, after the dependents check. An
	// error aborts the transition and moves the plugin to StatusError.
	OnDisable() error
}

// Info is a point-in-time snapshot of a managed plugin.
type Info struct {
	Metadata Metadata
	Status   Status
	Config   map[string]any
}
