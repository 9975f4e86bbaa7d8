// Package route implements the console's hierarchical route table: a static
// tree of route definitions with {param} placeholders, a path matcher that
// maps concrete URLs onto dotted route names, and the inverse path builder.
package route

import (
	"fmt"
	"regexp"
	"strings"
)

// Route is one node of the route tree. Path is a template relative to the
// parent route, with zero or more segments; each segment is either a literal
// or a {param} placeholder. The route table is defined once at startup and
// immutable thereafter.
type Route struct {
	Name     string
	Path     string
	Children []Route
}

// segments splits the path template into its segments. An empty template
// yields no segments and matches the parent's position exactly.
func (r Route) segments() []string {
	trimmed := strings.Trim(r.Path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// ConfigError describes a route table configuration error found at startup.
type ConfigError struct {
	Path    string
	Message string
}

func (e ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Table is a validated route tree. It is safe for concurrent use.
type Table struct {
	routes []Route
}

var paramPattern = regexp.MustCompile(`^\{[a-zA-Z_][a-zA-Z0-9_]*\}$`)

// NewTable validates the route definitions and returns a Table. Validation
// asserts that sibling names are unique, that every placeholder segment is
// well formed, and that no two siblings are structurally ambiguous (same
// segment arity with placeholders or identical literals in every position).
func NewTable(routes []Route) (*Table, error) {
	if errs := validateLevel("routes", routes); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return nil, fmt.Errorf("route: invalid table: %s", strings.Join(msgs, "; "))
	}
	return &Table{routes: routes}, nil
}

// MustNewTable is NewTable for static tables wired at startup; it panics on
// validation failure since that is a wiring mistake, not a runtime condition.
func MustNewTable(routes []Route) *Table {
	t, err := NewTable(routes)
	if err != nil {
		panic(err)
	}
	return t
}

// Routes returns the top-level route definitions.
func (t *Table) Routes() []Route {
	return t.routes
}

// Names returns every dotted route name in the table, depth first in
// declared order.
func (t *Table) Names() []string {
	var names []string
	var walk func(prefix string, routes []Route)
	walk = func(prefix string, routes []Route) {
		for _, r := range routes {
			name := r.Name
			if prefix != "" {
				name = prefix + "." + r.Name
			}
			names = append(names, name)
			walk(name, r.Children)
		}
	}
	walk("", t.routes)
	return names
}

// PathParams returns the placeholder names required to build the given
// dotted route name, outermost first.
func (t *Table) PathParams(name string) ([]string, error) {
	chain, err := t.resolve(name)
	if err != nil {
		return nil, err
	}
	var params []string
	for _, r := range chain {
		for _, seg := range r.segments() {
			if isPlaceholder(seg) {
				params = append(params, placeholderName(seg))
			}
		}
	}
	return params, nil
}

// Template returns the full path template of the named route, with
// placeholders intact (e.g. "/{org_id}/projects/{proj_id}").
func (t *Table) Template(name string) (string, error) {
	chain, err := t.resolve(name)
	if err != nil {
		return "", err
	}
	var parts []string
	for _, r := range chain {
		if r.Path != "" {
			parts = append(parts, r.Path)
		}
	}
	return "/" + strings.Join(parts, "/"), nil
}

// resolve walks the dotted name through the tree and returns the route chain
// from root to leaf. A missing segment is a configuration error.
func (t *Table) resolve(name string) ([]Route, error) {
	parts := strings.Split(name, ".")
	level := t.routes
	chain := make([]Route, 0, len(parts))
	for i, part := range parts {
		var found *Route
		for j := range level {
			if level[j].Name == part {
				found = &level[j]
				break
			}
		}
		if found == nil {
			return nil, fmt.Errorf(
				"route: name %q not found (no route %q at level %d)", name, part, i,
			)
		}
		chain = append(chain, *found)
		level = found.Children
	}
	return chain, nil
}

func validateLevel(prefix string, routes []Route) []ConfigError {
	var errs []ConfigError
	seenNames := make(map[string]bool, len(routes))

	for i, r := range routes {
		p := fmt.Sprintf("%s[%d]", prefix, i)

		if r.Name == "" {
			errs = append(errs, ConfigError{Path: p, Message: "name is required"})
		}
		if strings.Contains(r.Name, ".") {
			errs = append(errs, ConfigError{Path: p, Message: fmt.Sprintf("name %q must not contain dots", r.Name)})
		}
		if seenNames[r.Name] {
			errs = append(errs, ConfigError{Path: p, Message: fmt.Sprintf("duplicate sibling name %q", r.Name)})
		}
		seenNames[r.Name] = true

		for _, seg := range r.segments() {
			if seg == "" {
				errs = append(errs, ConfigError{Path: p, Message: "empty path segment"})
				continue
			}
			if strings.ContainsAny(seg, "{}") && !paramPattern.MatchString(seg) {
				errs = append(errs, ConfigError{
					Path:    p,
					Message: fmt.Sprintf("malformed placeholder segment %q", seg),
				})
			}
		}

		errs = append(errs, validateLevel(p+".children", r.Children)...)
	}

	// Structural ambiguity between siblings: matching is left-biased and
	// deterministic, and a literal sibling shadowing a later placeholder
	// sibling is sanctioned (first declared wins). What is rejected is two
	// placeholder-bearing templates that can both bind the same input with
	// different parameter assignments, since that hides a config mistake.
	for i := 0; i < len(routes); i++ {
		for j := i + 1; j < len(routes); j++ {
			a, b := routes[i].segments(), routes[j].segments()
			if !hasPlaceholder(a) || !hasPlaceholder(b) {
				continue
			}
			if templatesOverlap(a, b) {
				errs = append(errs, ConfigError{
					Path: fmt.Sprintf("%s[%d]", prefix, j),
					Message: fmt.Sprintf(
						"template %q is structurally ambiguous with sibling %q",
						routes[j].Path, routes[i].Path,
					),
				})
			}
		}
	}

	return errs
}

// templatesOverlap reports whether two templates of equal arity can match
// the same input. Positions where either side is a placeholder always
// overlap; literal positions overlap only when equal.
func templatesOverlap(a, b []string) bool {
	if len(a) != len(b) || len(a) == 0 {
		return false
	}
	for i := range a {
		if isPlaceholder(a[i]) || isPlaceholder(b[i]) {
			continue
		}
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func hasPlaceholder(segs []string) bool {
	for _, s := range segs {
		if isPlaceholder(s) {
			return true
		}
	}
	return false
}

func isPlaceholder(seg string) bool {
	return strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}")
}

func placeholderName(seg string) string {
	return seg[1 : len(seg)-1]
}
