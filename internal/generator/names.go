// Package generator scaffolds bounded-context modules and project skeletons
// from string templates.
package generator

import (
	"regexp"
	"strings"
)

var (
	camelBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	acronymTail   = regexp.MustCompile(`(.)([A-Z][a-z]+)`)
	underscoreRun = regexp.MustCompile(`_+`)
	validSnake    = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
)

// ToSnakeCase converts "ProjectTask", "project-task" or "Project Task"
// to "project_task".
func ToSnakeCase(s string) string {
	s = acronymTail.ReplaceAllString(s, "${1}_${2}")
	s = camelBoundary.ReplaceAllString(s, "${1}_${2}")
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	// "Project Task" hits both the camel rule and the separator rule;
	// collapse the doubled underscore that leaves behind.
	s = underscoreRun.ReplaceAllString(s, "_")
	return strings.ToLower(s)
}

// ToPascalCase converts "project_task" or "project task" to "ProjectTask".
func ToPascalCase(s string) string {
	words := strings.FieldsFunc(ToSnakeCase(s), func(r rune) bool {
		return r == '_' || r == ' ' || r == '-'
	})
	var b strings.Builder
	for _, w := range words {
		b.WriteString(strings.ToUpper(w[:1]))
		b.WriteString(w[1:])
	}
	return b.String()
}

// ToTitleCase converts "project_task" to "Project Task".
func ToTitleCase(s string) string {
	words := strings.FieldsFunc(ToSnakeCase(s), func(r rune) bool {
		return r == '_'
	})
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Singularize strips a trailing "s" so "projects" yields "project".
// Module names ending in "_management" keep their prefix as the entity
// ("file_management" yields "file").
func Singularize(s string) string {
	s = ToSnakeCase(s)
	if trimmed, ok := strings.CutSuffix(s, "_management"); ok && trimmed != "" {
		return Singularize(trimmed)
	}
	if len(s) > 1 && strings.HasSuffix(s, "s") && !strings.HasSuffix(s, "ss") {
		return s[:len(s)-1]
	}
	return s
}

// ValidSnakeName reports whether s is usable as a module or entity name.
func ValidSnakeName(s string) bool {
	return validSnake.MatchString(s)
}
