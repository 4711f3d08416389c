package quillsql

import (
	"encoding/json"

	"github.com/syssam/quillsql/render"
	"github.com/syssam/quillsql/subquery"
)

// Request is the compile input: a predicate tree plus the
// group-by/having/path-hint/subquery structure that surrounds it.
type Request struct {
	// Fields lists field ids the caller wants resolved and touched
	// regardless of whether where_data references them, so their
	// tables are joined even when they only appear in a later
	// select/group-by pass.
	Fields []string `json:"fields,omitempty"`

	// WhereData is the root predicate node. Required.
	WhereData json.RawMessage `json:"where_data"`

	GroupByFields []string        `json:"group_by_fields,omitempty"`
	Having        json.RawMessage `json:"having,omitempty"`

	PathHints  map[string]string     `json:"path_hints,omitempty"`
	SubQueries []subquery.Reference  `json:"sub_queries,omitempty"`
}

// SelectField is one entry of Options.SelectFields: a resolved field
// id, optionally wrapped in an aggregate, aliased in the emitted
// SELECT list. FieldID "member_id" is a special key resolved against
// base_table.id rather than the field map.
type SelectField struct {
	FieldID   string `json:"field_id"`
	Aggregate string `json:"aggregate,omitempty"`
	Alias     string `json:"alias"`
}

// Options carries the per-compile knobs that sit outside the
// predicate tree itself.
type Options struct {
	SelectFields []SelectField

	// AliasParams substitutes matching {keyword} VARIABLE_TEMPLATE
	// placeholders (render.Dynamic) in the assembled SQL before it is
	// returned. Unmatched placeholders are left as-is unless the
	// Compiler was built WithStrictVariables.
	AliasParams map[string]render.ParamValue

	// AdditionalWhereClause is appended verbatim after the compiled
	// WHERE fragment. It is never escaped or validated — the caller is
	// responsible for its safety.
	AdditionalWhereClause string
}
