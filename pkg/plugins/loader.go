package plugins

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Factory constructs a plugin instance from its manifest. Hosts register one
// factory per plugin name before discovery; manifests without a factory are
// skipped with a warning.
type Factory func(*Manifest) (Plugin, error)

// Loader discovers plugins from filesystem directories. Each plugin lives in
// its own subdirectory containing a plugin.yaml manifest.
type Loader struct {
	pluginDirs []string
	factories  map[string]Factory
	mu         sync.RWMutex
	log        *logrus.Logger
}

// NewLoader creates a new plugin loader
func NewLoader(dirs []string, log *logrus.Logger) *Loader {
	if log == nil {
		log = logrus.New()
	}
	return &Loader{
		pluginDirs: dirs,
		factories:  make(map[string]Factory),
		log:        log,
	}
}

// RegisterFactory registers the constructor for a plugin name.
func (l *Loader) RegisterFactory(name string, factory Factory) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.factories[name] = factory
}

// discovery pairs a constructed plugin with the manifest it came from.
type discovery struct {
	plugin   Plugin
	manifest *Manifest
}

// Discover scans the plugin directories and returns the plugins it could
// construct. Unreadable directories, invalid manifests and manifests without
// a registered factory are logged and skipped; discovery itself only fails
// on context cancellation.
func (l *Loader) Discover(ctx context.Context) ([]Plugin, error) {
	found, err := l.discoverAll(ctx)
	if err != nil {
		return nil, err
	}
	plugins := make([]Plugin, 0, len(found))
	for _, d := range found {
		plugins = append(plugins, d.plugin)
	}
	return plugins, nil
}

func (l *Loader) discoverAll(ctx context.Context) ([]discovery, error) {
	var discovered []discovery

	for _, dir := range l.pluginDirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if _, err := os.Stat(dir); os.IsNotExist(err) {
			l.log.Debugf("Plugin directory does not exist: %s", dir)
			continue
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			l.log.Warnf("Failed to read plugin directory %s: %v", dir, err)
			continue
		}

		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}

			pluginDir := filepath.Join(dir, entry.Name())
			d, err := l.loadFromDir(pluginDir)
			if err != nil {
				l.log.Warnf("Failed to load plugin from %s: %v", pluginDir, err)
				continue
			}
			if d.plugin == nil {
				continue
			}

			discovered = append(discovered, d)
		}
	}

	return discovered, nil
}

// DiscoverInto discovers plugins, registers them with the manager and
// initializes each with the config block from its manifest.
func (l *Loader) DiscoverInto(ctx context.Context, mgr *Manager) error {
	discovered, err := l.discoverAll(ctx)
	if err != nil {
		return err
	}
	for _, d := range discovered {
		if err := mgr.Register(d.plugin); err != nil {
			return err
		}
		if err := mgr.Initialize(d.plugin.Metadata().Name, d.manifest.Config); err != nil {
			return err
		}
	}
	return nil
}

// Watch blocks watching the plugin directories for manifest changes and
// invokes onChange with the affected path. It returns when ctx is cancelled
// or the watcher fails. Hosts typically re-run discovery from onChange.
func (l *Loader) Watch(ctx context.Context, onChange func(path string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range l.pluginDirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove) == 0 {
				continue
			}
			l.log.Debugf("Plugin directory change: %s (%s)", event.Name, event.Op)
			onChange(event.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.log.Warnf("Plugin watcher error: %v", err)
		}
	}
}

// loadFromDir loads one plugin from its directory. A discovery with a nil
// plugin and nil error means the manifest had no registered factory.
func (l *Loader) loadFromDir(pluginDir string) (discovery, error) {
	manifest, err := LoadManifestFromDir(pluginDir)
	if err != nil {
		return discovery{}, fmt.Errorf("failed to load manifest: %w", err)
	}

	if validationErrors := ValidateManifest(manifest); len(validationErrors) > 0 {
		return discovery{}, fmt.Errorf("manifest validation failed: %v", validationErrors)
	}

	l.mu.RLock()
	factory, ok := l.factories[manifest.Name]
	l.mu.RUnlock()
	if !ok {
		l.log.Warnf("No factory registered for plugin %q; skipping %s", manifest.Name, pluginDir)
		return discovery{}, nil
	}

	plugin, err := factory(manifest)
	if err != nil {
		return discovery{}, fmt.Errorf("factory for plugin %q failed: %w", manifest.Name, err)
	}

	l.log.Infof("Discovered plugin: %s v%s", manifest.Name, manifest.Version)
	return discovery{plugin: plugin, manifest: manifest}, nil
}
