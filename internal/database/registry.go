package database

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Module describes a bounded-context module: its name, the PostgreSQL schema
// that holds its tables, and the GORM models that live in that schema.
type Module struct {
	Name   string
	Schema string
	Models []interface{}
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Module{}
)

// RegisterModule adds a module to the registry. Modules register themselves
// from init() in their model files; registering the same name twice panics
// because it means two packages claim the same bounded context.
func RegisterModule(m Module) {
	registryMu.Lock()
	defer registryMu.Unlock()

	name := strings.TrimSpace(m.Name)
	if name == "" {
		panic("database: module name must not be empty")
	}
	if m.Schema == "" {
		panic(fmt.Sprintf("database: module %q must declare a schema", name))
	}
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("database: module %q registered twice", name))
	}
	m.Name = name
	registry[name] = m
}

// Modules returns all registered modules sorted by name.
func Modules() []Module {
	registryMu.RLock()
	defer registryMu.RUnlock()

	out := make([]Module, 0, len(registry))
	for _, m := range registry {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ModuleNames returns the names of all registered modules, sorted.
func ModuleNames() []string {
	mods := Modules()
	out := make([]string, 0, len(mods))
	for _, m := range mods {
		out = append(out, m.Name)
	}
	return out
}

// ModuleByName returns the registered module and whether it exists.
func ModuleByName(name string) (Module, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	m, ok := registry[name]
	return m, ok
}

// PersistentModels returns the authoritative set of schema-managed GORM models
// across every registered module.
func PersistentModels() []interface{} {
	var models []interface{}
	for _, m := range Modules() {
		models = append(models, m.Models...)
	}
	return models
}

// SchemaNames returns the distinct schema names of all registered modules.
func SchemaNames() []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range Modules() {
		if !seen[m.Schema] {
			seen[m.Schema] = true
			out = append(out, m.Schema)
		}
	}
	return out
}
