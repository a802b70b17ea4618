package generator

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ManifestFile is the module manifest maintained at the project root.
const ManifestFile = "modules.yml"

// ManifestModule is one registered bounded-context module.
type ManifestModule struct {
	Name   string `yaml:"name"`
	Schema string `yaml:"schema"`
	Entity string `yaml:"entity"`
	Path   string `yaml:"path"`
}

// Manifest lists every module the project contains, in creation order.
type Manifest struct {
	Modules []ManifestModule `yaml:"modules"`
}

// LoadManifest reads a manifest file. A missing file yields an empty manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Manifest{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}

// Save writes the manifest back to disk.
func (m *Manifest) Save(path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// Has reports whether a module with the given name is registered.
func (m *Manifest) Has(name string) bool {
	for _, mod := range m.Modules {
		if mod.Name == name {
			return true
		}
	}
	return false
}

// Add registers a module; adding a duplicate name is an error.
func (m *Manifest) Add(mod ManifestModule) error {
	if m.Has(mod.Name) {
		return fmt.Errorf("module %q already registered in manifest", mod.Name)
	}
	m.Modules = append(m.Modules, mod)
	return nil
}
