package config

import (
	"fmt"
	"strings"
)

// Problem is one validation failure, located by its TOML key.
type Problem struct {
	Section string // top-level table, e.g. "server" or "radarr"
	Index   int    // position in an array table such as [[sonarr]]; -1 for plain tables
	Name    string // the instance's name, for array tables
	Field   string // key inside the section; empty when the problem spans the section
	Message string
}

func newProblem(section, field, format string, args ...any) Problem {
	return Problem{Section: section, Index: -1, Field: field, Message: fmt.Sprintf(format, args...)}
}

// Key is the dotted TOML path of the problem, e.g. "radarr[1].api_key".
func (p Problem) Key() string {
	key := p.Section
	if p.Index >= 0 {
		key += fmt.Sprintf("[%d]", p.Index)
	}
	if p.Field != "" {
		key += "." + p.Field
	}
	return key
}

func (p Problem) String() string {
	s := p.Key() + ": " + p.Message
	if p.Name != "" {
		s += fmt.Sprintf(" (instance %q)", p.Name)
	}
	return s
}

// ConfigError is returned by Load when the file cannot be used: environment
// variables it references are unset or its values fail validation.
type ConfigError struct {
	Path     string
	Missing  []string
	Problems []Problem
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "config %s", e.Path)
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, ": unset environment variables: %s", strings.Join(e.Missing, ", "))
	}
	if len(e.Problems) > 0 {
		fmt.Fprintf(&b, ": %d invalid value(s)", len(e.Problems))
		for _, section := range e.Sections() {
			fmt.Fprintf(&b, "\n  [%s]", section)
			for _, p := range e.In(section) {
				b.WriteString("\n    - " + p.String())
			}
		}
	}
	return b.String()
}

// Sections lists the sections with problems in the order they were found.
func (e *ConfigError) Sections() []string {
	var out []string
	seen := map[string]bool{}
	for _, p := range e.Problems {
		if !seen[p.Section] {
			seen[p.Section] = true
			out = append(out, p.Section)
		}
	}
	return out
}

// In returns the problems reported against section.
func (e *ConfigError) In(section string) []Problem {
	var out []Problem
	for _, p := range e.Problems {
		if p.Section == section {
			out = append(out, p)
		}
	}
	return out
}
