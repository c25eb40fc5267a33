// Package handlers provides the concrete domain-event handlers wired by the
// demo host and exercised by the conformance tests. Each handler implements
// events.Handler, matches on the event name and performs its side effect
// through a narrow injected interface, so the package stays free of real
// email, billing or persistence code.
package handlers
