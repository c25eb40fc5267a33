package plugins

import (
	"fmt"
	"strings"
)

// DuplicateError reports a Register call with an already-taken name.
type DuplicateError struct {
	Name string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("plugin %q already registered", e.Name)
}

// UnknownPluginError reports an operation on a name the Manager does not
// know.
type UnknownPluginError struct {
	Name string
}

func (e *UnknownPluginError) Error() string {
	return fmt.Sprintf("plugin %q not registered", e.Name)
}

// DependencyError reports an Enable blocked by dependencies that are not
// enabled.
type DependencyError struct {
	Plugin  string
	Missing []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("cannot enable plugin %q: dependencies not enabled: %s",
		e.Plugin, strings.Join(e.Missing, ", "))
}

// DependentsError reports a Disable blocked by enabled plugins that still
// depend on the target.
type DependentsError struct {
	Plugin     string
	Dependents []string
}

func (e *DependentsError) Error() string {
	return fmt.Sprintf("cannot disable plugin %q: still required by enabled plugins: %s",
		e.Plugin, strings.Join(e.Dependents, ", "))
}

// CircularDependencyError reports a dependency cycle found during order
// resolution. Cycle lists the members of the offending cycle.
type CircularDependencyError struct {
	Cycle []string
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("circular plugin dependency: %s", strings.Join(e.Cycle, " -> "))
}

// StateError reports a lifecycle operation attempted from an invalid status.
type StateError struct {
	Plugin string
	Status Status
	Op     string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s plugin %q in status %q", e.Op, e.Plugin, e.Status)
}
