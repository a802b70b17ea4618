// Command genmodule scaffolds a new bounded-context module package.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"modulith/internal/generator"
)

func prompt(r *bufio.Reader, label string) string {
	fmt.Printf("%s: ", label)
	line, _ := r.ReadString('\n')
	return strings.TrimSpace(line)
}

func main() {
	name := flag.String("name", "", "Module name (e.g. project_management)")
	entity := flag.String("entity", "", "Entity name (defaults to the singular of the module name)")
	root := flag.String("root", ".", "Project root directory")
	importBase := flag.String("pkg", "modulith", "Go module path of the project")
	yes := flag.Bool("y", false, "Skip the confirmation prompt")
	flag.Parse()

	reader := bufio.NewReader(os.Stdin)

	interactive := *name == ""
	if interactive {
		*name = prompt(reader, "Module name (e.g. file_management, projects)")
		if *name == "" {
			log.Fatal("module name is required")
		}
	}
	if interactive && *entity == "" {
		*entity = prompt(reader, "Entity name (leave empty for auto-detection)")
	}

	spec := generator.ModuleSpec{Name: *name, Entity: *entity, ImportBase: *importBase}

	entityShown := *entity
	if entityShown == "" {
		entityShown = generator.Singularize(*name)
	}
	fmt.Printf("\nModule: %s\nEntity: %s\n\n", generator.ToTitleCase(*name), generator.ToPascalCase(entityShown))

	if !*yes {
		if answer := prompt(reader, "Generate module? (y/N)"); !strings.EqualFold(answer, "y") {
			fmt.Println("Cancelled")
			return
		}
	}

	g := &generator.ModuleGenerator{Root: *root, Spec: spec}
	written, err := g.Generate()
	if err != nil {
		log.Fatalf("Generation failed: %v", err)
	}

	fmt.Printf("\nModule %q generated successfully!\n\n", generator.ToSnakeCase(*name))
	for _, f := range written {
		fmt.Printf("  wrote %s\n", f)
	}
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Review the generated files and adjust the entity fields")
	fmt.Println("  2. Add a SQL migration under internal/database/migrations/")
	fmt.Println("  3. Import the package from internal/server so it registers")
	fmt.Println("  4. Run: go test ./...")
}
