// Package schema owns the compiler's schema registry: field mapping,
// path graph, custom-method and subquery templates, and variable
// templates. Validation is total at construction — a constructed
// Registry guarantees every downstream lookup succeeds for inputs the
// predicate evaluator accepts.
package schema

import (
	"fmt"

	"github.com/syssam/quillsql/qerr"
)

func errf(format string, args ...any) error {
	return qerr.New(qerr.ErrSchemaValidation, "", format, args...)
}

// Registry is an immutable, validated snapshot of a Bundle. It is
// safe for concurrent use: every map below is populated once in
// NewRegistry and never written to again.
type Registry struct {
	fields        map[string]Field
	paths         PathGraph
	methods       map[string]CustomMethod
	subqueries    map[string]Subquery
	variables     map[string]Variable
	varsByKeyword map[string]Variable
}

// NewRegistry validates bundle and returns an immutable Registry, or
// the first validation error encountered.
func NewRegistry(bundle Bundle) (*Registry, error) {
	r := &Registry{
		fields:        make(map[string]Field, len(bundle.Fields)),
		paths:         make(PathGraph),
		methods:       make(map[string]CustomMethod, len(bundle.CustomMethods)),
		subqueries:    make(map[string]Subquery, len(bundle.Subqueries)),
		variables:     make(map[string]Variable, len(bundle.Variables)),
		varsByKeyword: make(map[string]Variable, len(bundle.Variables)),
	}

	for _, f := range bundle.Fields {
		if f.ID == "" {
			return nil, errf("field mapping entry has an empty id")
		}
		if _, exists := r.fields[f.ID]; exists {
			return nil, errf("duplicate field id %q", f.ID)
		}
		if !f.Type.Valid() {
			return nil, errf("field %q: unknown data type %q", f.ID, f.Type)
		}
		r.fields[f.ID] = f
	}

	for _, p := range bundle.Paths {
		if p.JoinTable == "" || p.ParentTable == "" {
			return nil, errf("path edge has an empty join_table or parent_table")
		}
		parents, ok := r.paths[p.JoinTable]
		if !ok {
			parents = make(map[string]PathEdge)
			r.paths[p.JoinTable] = parents
		}
		if _, exists := parents[p.ParentTable]; exists {
			return nil, errf("duplicate path edge (%s -> %s)", p.JoinTable, p.ParentTable)
		}
		parents[p.ParentTable] = p
	}

	for _, m := range bundle.CustomMethods {
		if m.ID == "" {
			return nil, errf("custom method entry has an empty id")
		}
		if _, exists := r.methods[m.ID]; exists {
			return nil, errf("duplicate custom method id %q", m.ID)
		}
		if err := m.validate(); err != nil {
			return nil, err
		}
		r.methods[m.ID] = m
	}

	for _, s := range bundle.Subqueries {
		if _, exists := r.subqueries[s.ID]; exists {
			return nil, errf("duplicate subquery id %q", s.ID)
		}
		if err := s.validate(); err != nil {
			return nil, err
		}
		r.subqueries[s.ID] = s
	}

	for _, v := range bundle.Variables {
		if v.ID == "" {
			return nil, errf("variable template entry has an empty id")
		}
		if _, exists := r.variables[v.ID]; exists {
			return nil, errf("duplicate variable template id %q", v.ID)
		}
		if !v.ReturnType.Valid() {
			return nil, errf("variable template %q: unknown return type %q", v.ID, v.ReturnType)
		}
		r.variables[v.ID] = v
		r.varsByKeyword[v.Keyword] = v
	}

	return r, nil
}

// Clone returns a cheap handle to the same immutable data. Because
// nothing in a Registry is ever mutated after NewRegistry returns,
// this degenerates to returning r itself.
func (r *Registry) Clone() *Registry { return r }

// Field looks up a FieldDescriptor by id.
func (r *Registry) Field(id string) (Field, error) {
	f, ok := r.fields[id]
	if !ok {
		return Field{}, qerr.New(qerr.ErrUnknownField, "", "field %q is not registered", id)
	}
	return f, nil
}

// Paths returns the registry's path graph.
func (r *Registry) Paths() PathGraph { return r.paths }

// CustomMethod looks up a CustomMethod by id.
func (r *Registry) CustomMethod(id string) (CustomMethod, error) {
	m, ok := r.methods[id]
	if !ok {
		return CustomMethod{}, qerr.New(qerr.ErrUnknownTemplate, "", "custom method %q is not registered", id)
	}
	return m, nil
}

// Subquery looks up a Subquery by id.
func (r *Registry) Subquery(id string) (Subquery, error) {
	s, ok := r.subqueries[id]
	if !ok {
		return Subquery{}, qerr.New(qerr.ErrUnknownSubquery, "", "subquery %q is not registered", id)
	}
	return s, nil
}

// SubqueryJoinColumn resolves the join column for a subquery.
func (r *Registry) SubqueryJoinColumn(id string) (string, error) {
	s, err := r.Subquery(id)
	if err != nil {
		return "", err
	}
	f, ok := s.joinField()
	if !ok {
		return "", qerr.New(qerr.ErrSchemaValidation, "", "subquery %q declares no member-id join column", id)
	}
	return f.Alias, nil
}

// Variable looks up a VariableTemplate by id.
func (r *Registry) Variable(id string) (Variable, error) {
	v, ok := r.variables[id]
	if !ok {
		return Variable{}, qerr.New(qerr.ErrUnknownVariable, "", "variable template %q is not registered", id)
	}
	return v, nil
}

// VariableByKeyword looks up a VariableTemplate by its wire keyword
// (the name used inside a VARIABLE_TEMPLATE dynamic value), as
// opposed to Variable which looks up by descriptor id.
func (r *Registry) VariableByKeyword(keyword string) (Variable, error) {
	v, ok := r.varsByKeyword[keyword]
	if !ok {
		return Variable{}, qerr.New(qerr.ErrUnknownVariable, "", "no variable template with keyword %q", keyword)
	}
	return v, nil
}

// FieldBySubquery resolves a field against a subquery's field map
// instead of the global field map, for a leaf that qualifies its
// field reference with a subquery alias.
func (r *Registry) FieldBySubquery(subqueryID, alias, localKey string) (Field, error) {
	s, err := r.Subquery(subqueryID)
	if err != nil {
		return Field{}, err
	}
	sf, ok := s.Fields[localKey]
	if !ok {
		return Field{}, qerr.New(qerr.ErrUnknownField, "", "subquery %q has no field %q", subqueryID, localKey)
	}
	return Field{
		ID:     fmt.Sprintf("%s.%s", subqueryID, localKey),
		Column: sf.Alias,
		Table:  alias,
		Type:   sf.DataType,
	}, nil
}
