package schema

import (
	"regexp"
	"strings"
)

// placeholderRe matches a {name} placeholder in a template string.
// identifier matches \w+.
var placeholderRe = regexp.MustCompile(`\{(\w+)\}`)

// CustomMethod is a named, parameterised SQL template.
type CustomMethod struct {
	ID       string               `json:"id"         yaml:"id"`
	Template string               `json:"template"    yaml:"template"`
	Params   map[string]ParamType `json:"parameters"  yaml:"parameters"`
}

// placeholders returns the set of {name} placeholders found in tmpl.
func placeholders(tmpl string) map[string]struct{} {
	found := map[string]struct{}{}
	for _, m := range placeholderRe.FindAllStringSubmatch(tmpl, -1) {
		found[m[1]] = struct{}{}
	}
	return found
}

// symmetricDifference returns the names present in exactly one of a, b.
func symmetricDifference(a map[string]struct{}, b map[string]ParamType) []string {
	var diff []string
	for name := range a {
		if _, ok := b[name]; !ok {
			diff = append(diff, name)
		}
	}
	for name := range b {
		if _, ok := a[name]; !ok {
			diff = append(diff, name)
		}
	}
	return diff
}

// validate normalizes the template (trims surrounding whitespace) and
// checks its placeholders against the declared parameter schema.
func (m *CustomMethod) validate() error {
	m.Template = strings.TrimSpace(m.Template)
	if m.Template == "" {
		return errf("custom method %q has an empty template", m.ID)
	}
	found := placeholders(m.Template)
	if diff := symmetricDifference(found, m.Params); len(diff) > 0 {
		return errf("custom method %q: placeholders and declared parameters disagree on %v", m.ID, diff)
	}
	for name, pt := range m.Params {
		if !pt.Valid() {
			return errf("custom method %q: parameter %q has unknown type %q", m.ID, name, pt)
		}
	}
	return nil
}
