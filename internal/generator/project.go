package generator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// ProjectSpec describes the skeleton to stamp.
type ProjectSpec struct {
	// Name is the project directory and default module path, e.g. "shopd".
	Name string
	// ImportBase is the go.mod module path; defaults to Name.
	ImportBase string
	// StarterModule is the first bounded-context module; optional.
	StarterModule string
}

type projectData struct {
	Name          string
	Title         string
	ImportBase    string
	StarterModule string
}

// ProjectGenerator stamps a new project skeleton into a target directory.
type ProjectGenerator struct {
	Target string // parent directory the project is created in
	Spec   ProjectSpec
}

// Generate creates the project directory tree and starter files. It refuses
// to write into an existing directory.
func (g *ProjectGenerator) Generate() (string, error) {
	name := ToSnakeCase(strings.TrimSpace(g.Spec.Name))
	if !ValidSnakeName(name) {
		return "", fmt.Errorf("invalid project name %q: want snake_case", g.Spec.Name)
	}

	importBase := strings.TrimSpace(g.Spec.ImportBase)
	if importBase == "" {
		importBase = name
	}

	root := filepath.Join(g.Target, name)
	if _, err := os.Stat(root); err == nil {
		return "", fmt.Errorf("target directory %s already exists", root)
	}

	data := projectData{
		Name:          name,
		Title:         ToTitleCase(name),
		ImportBase:    importBase,
		StarterModule: ToSnakeCase(g.Spec.StarterModule),
	}

	for _, dir := range []string{
		"cmd/server",
		"cmd/migrate",
		"cmd/seed",
		"internal/modules",
		"internal/database/migrations",
	} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return "", fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	files := map[string]string{
		"go.mod":             projectGoModTemplate,
		"config.yml":         projectConfigTemplate,
		"README.md":          projectReadmeTemplate,
		".gitignore":         projectGitignoreTemplate,
		"Makefile":           projectMakefileTemplate,
		"cmd/server/main.go": projectMainTemplate,
	}
	for rel, tmpl := range files {
		if err := renderProjectFile(filepath.Join(root, rel), rel, tmpl, data); err != nil {
			return "", err
		}
	}

	manifest := &Manifest{}
	if data.StarterModule != "" {
		mg := &ModuleGenerator{
			Root: root,
			Spec: ModuleSpec{Name: data.StarterModule, ImportBase: importBase},
		}
		if _, err := mg.Generate(); err != nil {
			return "", fmt.Errorf("scaffold starter module: %w", err)
		}
	} else if err := manifest.Save(filepath.Join(root, ManifestFile)); err != nil {
		return "", err
	}

	return root, nil
}

func renderProjectFile(path, name, tmpl string, data projectData) error {
	t, err := template.New(name).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("parse template %s: %w", name, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := t.Execute(f, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return nil
}

const projectGoModTemplate = `module {{.ImportBase}}

go 1.23
`

const projectConfigTemplate = `APP_NAME: "{{.Title}} API"
APP_ENV: development
PORT: "8000"
SECRET_KEY: change-this-secret-key-in-production

DB_HOST: localhost
DB_PORT: "5432"
DB_USER: postgres
DB_PASSWORD: postgres
DB_NAME: {{.Name}}
DB_SSLMODE: disable
DB_SCHEMA_MODE: hybrid

REDIS_URL: localhost:6379
CORS_ORIGINS: http://localhost:3000
`

const projectReadmeTemplate = `# {{.Title}}

Modular monolith backend scaffolded from the Modulith template.

## Layout

- cmd/server — HTTP API entry point
- cmd/migrate — SQL migration runner
- cmd/seed — development data seeder
- internal/modules/<name> — one package per bounded context, one
  PostgreSQL schema per module
- modules.yml — module manifest maintained by the generator

## Getting started

1. Create the database: createdb {{.Name}}
2. Run migrations: go run ./cmd/migrate up
3. Start the server: go run ./cmd/server
4. Scaffold a module: go run ./cmd/genmodule -name orders
`

const projectGitignoreTemplate = `*.out
*.test
/uploads/
config.local.yml
.env
`

const projectMakefileTemplate = `.PHONY: run test migrate seed

run:
	go run ./cmd/server

test:
	go test ./...

migrate:
	go run ./cmd/migrate up

seed:
	go run ./cmd/seed -module all
`

const projectMainTemplate = `// Command server is the entry point for the {{.Title}} API server.
package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
)

func main() {
	app := fiber.New(fiber.Config{AppName: "{{.Title}} API"})

	app.Get("/health/live", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "up"})
	})

	// Mount generated modules here once their packages are filled in.

	log.Fatal(app.Listen(":8000"))
}
`
