// Package plugins provides the plugin model and lifecycle manager of the
// pluginkit runtime.
//
// # Overview
//
// Plugin: a named, versioned unit of extension with declared dependencies
// Manager: owns registered plugins, drives the lifecycle state machine,
// resolves dependency order and announces transitions on the generic bus
// Loader: discovers plugins from plugin.yaml manifests on the filesystem
// PaymentProvider: the provider contract payment plugins implement
//
// # Lifecycle
//
// StatusDiscovered -> StatusRegistered -> StatusInitialized ->
// StatusEnabled <-> StatusDisabled, with a terminal StatusError entered when
// an OnEnable/OnDisable hook fails. Disabling never removes a plugin.
//
// Enable requires every declared dependency to be enabled; Disable refuses
// while an enabled plugin still depends on the target. EnableAll resolves a
// deterministic topological order first and reports cycles.
//
// # Usage
//
//	mgr := plugins.NewManager(bus, log)
//	if err := mgr.Register(mockpay.New(log)); err != nil { ... }
//	if err := mgr.Initialize("mock-payment", nil); err != nil { ... }
//	if err := mgr.Enable("mock-payment"); err != nil { ... }
package plugins
