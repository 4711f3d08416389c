package schema

// PathEdge is a directed edge (join_table -> parent_table).
// ActiveFlagColumn is empty when the edge carries no active-flag
// condition.
type PathEdge struct {
	JoinTable        string `json:"join_table"          yaml:"join_table"`
	JoinColumn       string `json:"join_column"         yaml:"join_column"`
	ParentTable      string `json:"parent_table"        yaml:"parent_table"`
	ParentColumn     string `json:"parent_column"       yaml:"parent_column"`
	ActiveFlagColumn string `json:"active_flag_column,omitempty" yaml:"active_flag_column,omitempty"`
}

// HasActiveFlag reports whether the edge carries an active-flag column.
func (e PathEdge) HasActiveFlag() bool {
	return e.ActiveFlagColumn != ""
}

// PathGraph is the directed relation join_table -> parent_table ->
// edge. Unlike a graph with exactly one parent per join table, it may
// carry more than one candidate parent per join table, which is what
// forces the join planner's ambiguity resolution.
type PathGraph map[string]map[string]PathEdge

// Candidates returns the set of parent table names reachable as
// direct parents of joinTable, in no particular order.
func (g PathGraph) Candidates(joinTable string) []string {
	parents := g[joinTable]
	if len(parents) == 0 {
		return nil
	}
	out := make([]string, 0, len(parents))
	for parent := range parents {
		out = append(out, parent)
	}
	return out
}
