package plugins

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

var semverRegex = regexp.MustCompile(`^v?(\d+)\.(\d+)\.(\d+)(-[a-zA-Z0-9.-]+)?(\+[a-zA-Z0-9.-]+)?$`)

// Manifest is the on-disk description of a plugin (plugin.yaml).
type Manifest struct {
	Name         string         `yaml:"name"`
	Version      string         `yaml:"version"`
	Author       string         `yaml:"author"`
	Description  string         `yaml:"description"`
	Dependencies []string       `yaml:"dependencies"`
	Config       map[string]any `yaml:"config"`
}

// ValidationError describes one manifest validation failure.
type ValidationError struct {
	Field   string
	Message string
}

// LoadManifest loads and parses a plugin manifest from a file
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	return &manifest, nil
}

// LoadManifestFromDir loads a plugin manifest from a directory (looks for plugin.yaml)
func LoadManifestFromDir(dir string) (*Manifest, error) {
	return LoadManifest(filepath.Join(dir, "plugin.yaml"))
}

// SaveManifest saves a plugin manifest to a file
func SaveManifest(manifest *Manifest, path string) error {
	data, err := yaml.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	return nil
}

// Metadata converts the manifest into runtime plugin metadata.
func (m *Manifest) Metadata() Metadata {
	return Metadata{
		Name:         m.Name,
		Version:      m.Version,
		Author:       m.Author,
		Description:  m.Description,
		Dependencies: m.Dependencies,
	}
}

// ValidateManifest performs basic validation on a plugin manifest
func ValidateManifest(manifest *Manifest) []ValidationError {
	var errors []ValidationError

	if manifest.Name == "" {
		errors = append(errors, ValidationError{
			Field:   "name",
			Message: "Plugin name is required",
		})
	}

	if manifest.Version == "" {
		errors = append(errors, ValidationError{
			Field:   "version",
			Message: "Version is required",
		})
	} else if !semverRegex.MatchString(manifest.Version) {
		errors = append(errors, ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("Version %q is not valid semver", manifest.Version),
		})
	}

	for _, dep := range manifest.Dependencies {
		if dep == manifest.Name {
			errors = append(errors, ValidationError{
				Field:   "dependencies",
				Message: "Plugin cannot depend on itself",
			})
		}
		if dep == "" {
			errors = append(errors, ValidationError{
				Field:   "dependencies",
				Message: "Dependency name cannot be empty",
			})
		}
	}

	return errors
}
