package generator

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// ModuleSpec describes the module to scaffold.
type ModuleSpec struct {
	// Name is the bounded-context name, e.g. "project_management".
	Name string
	// Entity is the singular entity name; derived from Name when empty.
	Entity string
	// ImportBase is the Go module path of the target project.
	ImportBase string
}

// moduleData is the resolved template context.
type moduleData struct {
	Module       string // project_management
	ModulePascal string // ProjectManagement
	ModuleTitle  string // Project Management
	Entity       string // project
	EntityPascal string // Project
	EntityPlural string // projects
	Table        string // project_management.projects
	Route        string // projects
	ImportBase   string
}

// ModuleGenerator scaffolds a bounded-context package under
// internal/modules/<name>/ and registers it in the manifest.
type ModuleGenerator struct {
	Root string // project root directory
	Spec ModuleSpec
}

func resolveModuleData(spec ModuleSpec) (moduleData, error) {
	name := ToSnakeCase(strings.TrimSpace(spec.Name))
	if !ValidSnakeName(name) {
		return moduleData{}, fmt.Errorf("invalid module name %q: want snake_case", spec.Name)
	}

	entity := ToSnakeCase(strings.TrimSpace(spec.Entity))
	if entity == "" {
		entity = Singularize(name)
	}
	if !ValidSnakeName(entity) {
		return moduleData{}, fmt.Errorf("invalid entity name %q: want snake_case", spec.Entity)
	}

	importBase := strings.TrimSpace(spec.ImportBase)
	if importBase == "" {
		importBase = "modulith"
	}

	plural := entity
	if !strings.HasSuffix(plural, "s") {
		plural += "s"
	}

	return moduleData{
		Module:       name,
		ModulePascal: ToPascalCase(name),
		ModuleTitle:  ToTitleCase(name),
		Entity:       entity,
		EntityPascal: ToPascalCase(entity),
		EntityPlural: plural,
		Table:        name + "." + plural,
		Route:        strings.ReplaceAll(plural, "_", "-"),
		ImportBase:   importBase,
	}, nil
}

// Generate writes the module package files and updates modules.yml.
// It refuses to overwrite an existing module directory or manifest entry.
func (g *ModuleGenerator) Generate() ([]string, error) {
	data, err := resolveModuleData(g.Spec)
	if err != nil {
		return nil, err
	}

	moduleDir := filepath.Join(g.Root, "internal", "modules", data.Module)
	if _, err := os.Stat(moduleDir); err == nil {
		return nil, fmt.Errorf("module directory %s already exists", moduleDir)
	}

	manifestPath := filepath.Join(g.Root, ManifestFile)
	manifest, err := LoadManifest(manifestPath)
	if err != nil {
		return nil, err
	}
	if err := manifest.Add(ManifestModule{
		Name:   data.Module,
		Schema: data.Module,
		Entity: data.EntityPascal,
		Path:   filepath.ToSlash(filepath.Join("internal", "modules", data.Module)),
	}); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(moduleDir, 0o755); err != nil {
		return nil, fmt.Errorf("create module directory: %w", err)
	}

	files := []struct {
		name string
		tmpl string
	}{
		{"model.go", modelTemplate},
		{"repository.go", repositoryTemplate},
		{"service.go", serviceTemplate},
		{"handlers.go", handlersTemplate},
		{"seed.go", seedTemplate},
		{"service_test.go", serviceTestTemplate},
	}

	written := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(moduleDir, f.name)
		if err := renderToFile(path, f.name, f.tmpl, data); err != nil {
			return nil, err
		}
		written = append(written, path)
	}

	if err := manifest.Save(manifestPath); err != nil {
		return nil, err
	}
	written = append(written, manifestPath)

	return written, nil
}

func renderToFile(path, name, tmpl string, data moduleData) error {
	// Templates are raw string literals, so struct-tag backticks are written
	// as "~" and substituted here.
	tmpl = strings.ReplaceAll(tmpl, "~", "`")
	t, err := template.New(name).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return fmt.Errorf("render template %s: %w", name, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
