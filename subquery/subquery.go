// Package subquery splices a derived table into the enclosing query
// via LEFT JOIN: either a raw SQL template bound through the shared
// template binder, or a nested predicate tree compiled recursively by
// the caller.
package subquery

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/syssam/quillsql/predicate"
	"github.com/syssam/quillsql/render"
)

// NestedCompiler recursively compiles a non-SQL subquery's nested
// predicate tree. The root quillsql package supplies this as the bound
// method Compiler.compileNested, keeping this package free of an
// import cycle back to the root package.
type NestedCompiler func(tree json.RawMessage, baseTable string) (string, error)

// Reference is one subquery join requested by the enclosing compile.
type Reference struct {
	SubqueryID string `json:"subquery_id"`
	// Alias names the derived table. When empty, EnsureAlias/Compose
	// generate a stable-within-compile alias.
	Alias string `json:"alias,omitempty"`
	// Params binds the subquery's declared parameters when it is a raw
	// SQL template. Unused for nested-predicate subqueries.
	Params map[string]render.ParamValue `json:"parameters,omitempty"`
}

// EnsureAlias returns ref with Alias filled in by generateAlias if the
// caller left it empty. Callers that need to know the alias ahead of
// composing the join (e.g. to exclude it from join-planning's
// referenced-table set) should call this before Compose.
func EnsureAlias(ref Reference) Reference {
	if ref.Alias == "" {
		ref.Alias = generateAlias()
	}
	return ref
}

// Compose resolves ref against ctx.Registry and returns the LEFT JOIN
// clause to splice into the enclosing FROM. baseTable is the
// enclosing compile's base table, forwarded unchanged into a nested
// predicate compile.
func Compose(ctx *predicate.Context, compile NestedCompiler, baseTable string, ref Reference) (string, error) {
	sq, err := ctx.Registry.Subquery(ref.SubqueryID)
	if err != nil {
		return "", err
	}

	joinCol, err := ctx.Registry.SubqueryJoinColumn(ref.SubqueryID)
	if err != nil {
		return "", err
	}

	var inner string
	if sq.IsSQL {
		inner, _, err = render.Bind(sq.Body, sq.Params, ref.Params, ctx.Registry)
		if err != nil {
			return "", err
		}
	} else {
		inner, err = compile(sq.Tree, baseTable)
		if err != nil {
			return "", err
		}
	}

	ref = EnsureAlias(ref)

	return fmt.Sprintf("LEFT JOIN (%s) AS %s ON %s.%s = %s.id", inner, ref.Alias, ref.Alias, joinCol, baseTable), nil
}

// generateAlias returns a stable-within-compile derived-table alias
// when the caller supplied none.
func generateAlias() string {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "alias_" + id[:8]
}
