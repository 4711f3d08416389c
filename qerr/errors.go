// Package qerr defines the error kinds surfaced by the quillsql compiler.
//
// Every kind is a sentinel error checked with errors.Is; compile-time
// failures are wrapped in a *CompileError that carries a short label
// for the kind of node where the fault occurred.
package qerr

import (
	"errors"
	"fmt"
)

// Sentinel error kinds.
var (
	// ErrSchemaValidation is raised eagerly at registry construction.
	ErrSchemaValidation = errors.New("qerr: schema validation failed")

	// ErrUnknownField is raised when a leaf references a field id the
	// registry (or the active subquery's field map) does not know.
	ErrUnknownField = errors.New("qerr: unknown field")

	// ErrUnknownTemplate is raised when a custom-method leaf references
	// a template id the registry does not know.
	ErrUnknownTemplate = errors.New("qerr: unknown custom method template")

	// ErrUnknownSubquery is raised when a leaf or join references a
	// subquery id the registry does not know.
	ErrUnknownSubquery = errors.New("qerr: unknown subquery")

	// ErrUnknownVariable is raised when a variable-template value
	// references a keyword the registry does not know.
	ErrUnknownVariable = errors.New("qerr: unknown variable template")

	// ErrMissingKey is raised when a required key is absent from a node.
	ErrMissingKey = errors.New("qerr: missing required key")

	// ErrBadValue is raised on type mismatch, unparseable date/integer,
	// invalid IS right-hand side, or unknown dynamic-date unit.
	ErrBadValue = errors.New("qerr: bad value")

	// ErrAmbiguousPath is raised when the join planner cannot choose a
	// single parent for a join table without an explicit hint.
	ErrAmbiguousPath = errors.New("qerr: ambiguous join path")

	// ErrInvalidAggregate is raised when an aggregate is used on a
	// where leaf, or a having leaf references a non-grouped,
	// non-aggregated field.
	ErrInvalidAggregate = errors.New("qerr: invalid aggregate usage")

	// ErrUnsupportedNode is raised for predicate node kinds that are
	// recognized by shape but have no compiled behavior (currently:
	// exists).
	ErrUnsupportedNode = errors.New("qerr: unsupported predicate node")
)

// CompileError wraps a sentinel Kind with the path to the offending
// subtree and a human-readable message. Callers should use errors.Is
// against the Kind sentinels above, not type-assert on CompileError.
type CompileError struct {
	Kind error  // one of the sentinels above
	Path string // coarse node label such as "where" or "having"; may be empty
	Msg  string
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s: %s (at %s)", e.Kind, e.Msg, e.Path)
}

// Unwrap allows errors.Is(err, qerr.ErrXxx) to see through CompileError.
func (e *CompileError) Unwrap() error {
	return e.Kind
}

// New builds a *CompileError for kind at path with a formatted message.
func New(kind error, path, format string, args ...any) *CompileError {
	return &CompileError{Kind: kind, Path: path, Msg: fmt.Sprintf(format, args...)}
}
