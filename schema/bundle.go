package schema

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"
)

// Bundle is the construction input a caller hands to NewRegistry: the
// four descriptor tables plus variable templates. Every field carries
// both json and yaml tags so a Bundle can be hand-authored as a
// fixture in either format.
type Bundle struct {
	Fields        []Field        `json:"field_mapping"     yaml:"field_mapping"`
	Paths         []PathEdge     `json:"paths"              yaml:"paths"`
	CustomMethods []CustomMethod `json:"custom_methods"     yaml:"custom_methods"`
	Subqueries    []Subquery     `json:"subqueries"         yaml:"subqueries"`
	Variables     []Variable     `json:"variable_templates" yaml:"variable_templates"`
}

// LoadBundleJSON decodes a Bundle from JSON.
func LoadBundleJSON(r io.Reader) (Bundle, error) {
	var b Bundle
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return Bundle{}, err
	}
	return b, nil
}

// LoadBundleYAML decodes a Bundle from YAML. Offered alongside
// LoadBundleJSON because operational teams commonly hand-author the
// descriptor tables as YAML fixtures rather than JSON.
func LoadBundleYAML(r io.Reader) (Bundle, error) {
	var b Bundle
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&b); err != nil {
		return Bundle{}, err
	}
	return b, nil
}
