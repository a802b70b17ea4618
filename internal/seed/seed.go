// Package seed orchestrates per-module development data seeders.
package seed

import (
	"context"
	"fmt"
	"log/slog"
)

// Seeder populates one module's schema with development data.
// Seed must be idempotent: re-running tops the data up to count instead
// of duplicating it. Clean removes only records the seeder created.
type Seeder interface {
	Name() string
	Seed(ctx context.Context, count int) error
	Clean(ctx context.Context) error
}

// Runner executes seeders in registration order so cross-module
// dependencies (files need users to own them) are satisfied.
type Runner struct {
	seeders []Seeder
}

func NewRunner(seeders ...Seeder) *Runner {
	return &Runner{seeders: seeders}
}

// Names returns the registered seeder names in execution order.
func (r *Runner) Names() []string {
	out := make([]string, 0, len(r.seeders))
	for _, s := range r.seeders {
		out = append(out, s.Name())
	}
	return out
}

// Seed runs the selected seeders. An empty module name or "all" runs
// everything; otherwise only the matching seeder runs.
func (r *Runner) Seed(ctx context.Context, module string, count int) error {
	ran := false
	for _, s := range r.seeders {
		if !selected(module, s.Name()) {
			continue
		}
		ran = true
		slog.InfoContext(ctx, "seeding module", "module", s.Name(), "count", count)
		if err := s.Seed(ctx, count); err != nil {
			return fmt.Errorf("seed %s: %w", s.Name(), err)
		}
	}
	if !ran {
		return fmt.Errorf("no seeder registered for module %q", module)
	}
	return nil
}

// Clean removes seeded data from the selected seeders, in reverse
// registration order so dependents are cleaned before their dependencies.
func (r *Runner) Clean(ctx context.Context, module string) error {
	ran := false
	for i := len(r.seeders) - 1; i >= 0; i-- {
		s := r.seeders[i]
		if !selected(module, s.Name()) {
			continue
		}
		ran = true
		slog.InfoContext(ctx, "cleaning seeded data", "module", s.Name())
		if err := s.Clean(ctx); err != nil {
			return fmt.Errorf("clean %s: %w", s.Name(), err)
		}
	}
	if !ran {
		return fmt.Errorf("no seeder registered for module %q", module)
	}
	return nil
}

func selected(module, name string) bool {
	return module == "" || module == "all" || module == name
}
