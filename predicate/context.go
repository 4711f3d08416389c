package predicate

import "github.com/syssam/quillsql/schema"

// Mode selects which aggregate-usage rule Evaluate enforces on a
// Where leaf.
type Mode int

const (
	// ModeWhere forbids aggregate_lhs on every leaf.
	ModeWhere Mode = iota
	// ModeHaving requires every leaf to either reference a grouped
	// field or carry an aggregate_lhs.
	ModeHaving
)

// Context is the per-compilation scratch state threaded through a
// single Evaluate call tree: the registry to resolve fields and
// templates against, the having/where validation mode, the set of
// columns the emitter has grouped by (only consulted in ModeHaving),
// and the set of tables touched so far, fed back to the join planner.
//
// A Context is built fresh for every compilation and never shared
// across goroutines.
type Context struct {
	Registry *schema.Registry
	Mode     Mode
	Grouped  map[string]bool

	touched map[string]struct{}
}

// NewContext returns a Context in ModeWhere with an empty touched set.
func NewContext(reg *schema.Registry) *Context {
	return &Context{
		Registry: reg,
		Mode:     ModeWhere,
		touched:  map[string]struct{}{},
	}
}

// Touch records that table was referenced by the condition currently
// being evaluated.
func (c *Context) Touch(table string) {
	if table == "" {
		return
	}
	c.touched[table] = struct{}{}
}

// TouchedTables returns the set of tables touched so far, in no
// particular order.
func (c *Context) TouchedTables() []string {
	out := make([]string, 0, len(c.touched))
	for t := range c.touched {
		out = append(out, t)
	}
	return out
}
