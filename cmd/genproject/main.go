// Command genproject stamps a new modular-monolith project skeleton.
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
	name := flag.String("name", "", "Project name (e.g. shopd)")
	importBase := flag.String("pkg", "", "Go module path (defaults to the project name)")
	starter := flag.String("module", "", "Starter bounded-context module to scaffold")
	target := flag.String("target", ".", "Directory to create the project in")
	yes := flag.Bool("y", false, "Skip the confirmation prompt")
	flag.Parse()

	reader := bufio.NewReader(os.Stdin)

	interactive := *name == ""
	if interactive {
		*name = prompt(reader, "Project name (e.g. shopd)")
		if *name == "" {
			log.Fatal("project name is required")
		}
	}
	if interactive && *starter == "" {
		*starter = prompt(reader, "Starter module (leave empty for none)")
	}

	fmt.Printf("\nProject: %s\n", generator.ToTitleCase(*name))
	if *starter != "" {
		fmt.Printf("Starter module: %s\n", generator.ToSnakeCase(*starter))
	}
	fmt.Println()

	if !*yes {
		if answer := prompt(reader, "Create project? (y/N)"); !strings.EqualFold(answer, "y") {
			fmt.Println("Cancelled")
			return
		}
	}

	g := &generator.ProjectGenerator{
		Target: *target,
		Spec: generator.ProjectSpec{
			Name:          *name,
			ImportBase:    *importBase,
			StarterModule: *starter,
		},
	}
	root, err := g.Generate()
	if err != nil {
		log.Fatalf("Generation failed: %v", err)
	}

	fmt.Printf("\nProject created at %s\n\n", root)
	fmt.Println("To get started:")
	fmt.Printf("  1. cd %s\n", root)
	fmt.Println("  2. go mod tidy")
	fmt.Println("  3. go run ./cmd/server")
	fmt.Println("\nSee README.md for details.")
}
