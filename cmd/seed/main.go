// Command seed populates module schemas with development data.
package main

import (
	"context"
	"flag"
	"log"

	"modulith/internal/bootstrap"
	"modulith/internal/config"
	"modulith/internal/modules/files"
	"modulith/internal/modules/users"
	"modulith/internal/seed"
)

func main() {
	module := flag.String("module", "all", "Module to seed (user_management, file_management or all)")
	count := flag.Int("count", 50, "Number of records per module")
	clean := flag.Bool("clean", false, "Remove previously seeded data before seeding")
	cleanOnly := flag.Bool("clean-only", false, "Only remove previously seeded data, do not seed")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	rt, err := bootstrap.InitRuntime(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}
	defer rt.Close()

	// Registration order matters: files reference users as owners.
	runner := seed.NewRunner(
		users.NewSeeder(rt.DB),
		files.NewSeeder(rt.DB, rt.Backend),
	)

	if *clean || *cleanOnly {
		if err := runner.Clean(ctx, *module); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		log.Println("seeded data cleaned")
		if *cleanOnly {
			return
		}
	}

	if err := runner.Seed(ctx, *module, *count); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Printf("seeding complete: module=%s count=%d", *module, *count)
}
