// Package modulegate decides which bounded-context modules a deployment exposes.
package modulegate

import "strings"

// Gate evaluates the MODULES_ENABLED toggle list.
// Example: "user_management=on,file_management=off".
// An empty list enables every registered module; listing a module without
// a value (just its name) also enables it.
type Gate struct {
	toggles map[string]bool
	openAll bool
}

// NewGate parses a comma-separated toggle list into a Gate.
func NewGate(raw string) *Gate {
	toggles := make(map[string]bool)

	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, found := strings.Cut(pair, "=")
		name = normalize(name)
		if name == "" {
			continue
		}
		if !found {
			toggles[name] = true
			continue
		}
		switch normalize(value) {
		case "on", "true", "1", "enabled":
			toggles[name] = true
		case "off", "false", "0", "disabled":
			toggles[name] = false
		}
	}

	return &Gate{toggles: toggles, openAll: len(toggles) == 0}
}

// Enabled reports whether a module should be mounted.
// Modules absent from a non-empty toggle list are disabled.
func (g *Gate) Enabled(module string) bool {
	if g == nil || g.openAll {
		return true
	}
	return g.toggles[normalize(module)]
}

// Snapshot returns the evaluated state for a set of module names.
func (g *Gate) Snapshot(modules []string) map[string]bool {
	out := make(map[string]bool, len(modules))
	for _, m := range modules {
		out[normalize(m)] = g.Enabled(m)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
