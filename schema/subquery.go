package schema

import "encoding/json"

// SubqueryField describes one output column of a Subquery as seen by
// the enclosing predicate: a local field key mapped to the subquery's
// alias, declared type, and whether it is the member-id join column.
type SubqueryField struct {
	Alias      string    `json:"alias"              yaml:"alias"`
	DataType   FieldType `json:"data_type"          yaml:"data_type"`
	IsMemberID bool      `json:"is_member_id,omitempty" yaml:"is_member_id,omitempty"`
}

// Subquery is a derived table descriptor. When IsSQL, Body holds a
// template string bound the same way as a CustomMethod. When not
// IsSQL, Tree holds the nested predicate request compiled recursively
// by the subquery composer.
type Subquery struct {
	ID     string                   `json:"id"                yaml:"id"`
	IsSQL  bool                     `json:"is_sql"            yaml:"is_sql"`
	Body   string                   `json:"body,omitempty"    yaml:"body,omitempty"`
	Tree   json.RawMessage          `json:"tree,omitempty"    yaml:"tree,omitempty"`
	Fields map[string]SubqueryField `json:"fields"            yaml:"fields"`
	Params map[string]ParamType     `json:"parameters"        yaml:"parameters"`
}

// joinField returns the SubqueryField to use as the join column: a
// field flagged IsMemberID, or the literal "member_id" key.
func (s Subquery) joinField() (SubqueryField, bool) {
	for _, f := range s.Fields {
		if f.IsMemberID {
			return f, true
		}
	}
	f, ok := s.Fields["member_id"]
	return f, ok
}

// validate checks the template (when IsSQL) the same way a
// CustomMethod template is checked; when not IsSQL, no placeholder
// scan is performed since Body is unused.
func (s *Subquery) validate() error {
	if s.ID == "" {
		return errf("subquery has an empty id")
	}
	if s.IsSQL {
		cm := CustomMethod{ID: s.ID, Template: s.Body, Params: s.Params}
		if err := cm.validate(); err != nil {
			return err
		}
		s.Body = cm.Template
	}
	for key, pt := range s.Params {
		if !pt.Valid() {
			return errf("subquery %q: parameter %q has unknown type %q", s.ID, key, pt)
		}
	}
	return nil
}
