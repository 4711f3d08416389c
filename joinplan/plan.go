// Package joinplan implements the reverse-BFS-then-DFS-emit join
// planner: given a base table and the set of tables a compiled
// predicate references, it resolves a unique parent for each
// referenced table (hint-guided where ambiguous) and emits a
// deterministic, deduplicated sequence of LEFT JOIN fragments.
package joinplan

import (
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/syssam/quillsql/qerr"
	"github.com/syssam/quillsql/schema"
)

// concurrencyThreshold is the worklist-level size above which Plan
// resolves candidate parents concurrently via errgroup rather than in
// a sequential loop. Each resolution is a pure read against the
// immutable PathGraph, so concurrency never affects which parent is
// chosen — only how fast a wide level resolves.
const concurrencyThreshold = 8

// Edge is one emitted LEFT JOIN, carrying both the rendered fragment
// and the raw (join, parent) pair for testability.
type Edge struct {
	Join     string
	Parent   string
	PathEdge schema.PathEdge
	Fragment string
}

type resolution struct {
	table  string
	parent string
	edge   schema.PathEdge
	err    error
}

// Plan resolves referenced (deduplicated) against paths, honoring
// hints, and returns the LEFT JOIN sequence in deterministic
// depth-first, child-name-sorted order rooted at base.
func Plan(base string, referenced []string, paths schema.PathGraph, hints map[string]string) ([]Edge, error) {
	selected := map[string]schema.PathEdge{}
	parentOf := map[string]string{}
	childrenOf := map[string][]string{}
	seen := map[string]bool{base: true}

	level := dedupe(referenced)
	for len(level) > 0 {
		pending := make([]string, 0, len(level))
		for _, n := range level {
			if seen[n] {
				continue
			}
			seen[n] = true
			pending = append(pending, n)
		}
		if len(pending) == 0 {
			break
		}

		results, err := resolveLevel(pending, paths, hints, referenced)
		if err != nil {
			return nil, err
		}

		var next []string
		for _, r := range results {
			selected[r.table] = r.edge
			parentOf[r.table] = r.parent
			childrenOf[r.parent] = append(childrenOf[r.parent], r.table)
			if r.parent != base {
				next = append(next, r.parent)
			}
		}
		level = next
	}

	return emit(base, childrenOf, selected), nil
}

func dedupe(tables []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(tables))
	for _, t := range tables {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func resolveLevel(level []string, paths schema.PathGraph, hints map[string]string, referenced []string) ([]resolution, error) {
	results := make([]resolution, len(level))

	resolveOne := func(i int) {
		n := level[i]
		parent, edge, err := choose(n, paths.Candidates(n), paths, hints, referenced)
		results[i] = resolution{table: n, parent: parent, edge: edge, err: err}
	}

	if len(level) > concurrencyThreshold {
		var g errgroup.Group
		for i := range level {
			i := i
			g.Go(func() error {
				resolveOne(i)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i := range level {
			resolveOne(i)
		}
	}

	for _, r := range results {
		if r.err != nil {
			return nil, r.err
		}
	}
	return results, nil
}

// choose picks n's parent: a supplied hint wins if it is both a valid
// candidate and unambiguous against auto-selection, a single
// remaining candidate wins outright, and anything else is reported as
// an ambiguous path.
func choose(n string, candidates []string, paths schema.PathGraph, hints map[string]string, referenced []string) (string, schema.PathEdge, error) {
	if len(candidates) == 0 {
		return "", schema.PathEdge{}, qerr.New(qerr.ErrAmbiguousPath, n, "table %q has no known parent in the path graph", n)
	}

	if hint, ok := hints[n]; ok {
		if !contains(candidates, hint) {
			return "", schema.PathEdge{}, qerr.New(qerr.ErrAmbiguousPath, n, "hinted parent %q for %q is not a candidate parent", hint, n)
		}
		allowed := map[string]bool{}
		for _, r := range referenced {
			allowed[r] = true
		}
		for _, v := range hints {
			allowed[v] = true
		}
		var intersection []string
		for _, c := range candidates {
			if allowed[c] {
				intersection = append(intersection, c)
			}
		}
		if len(intersection) != 1 {
			return "", schema.PathEdge{}, qerr.New(qerr.ErrAmbiguousPath, n,
				"hint %q for %q is ambiguous with auto-selection: candidates %v", hint, n, candidates)
		}
		return hint, paths[n][hint], nil
	}

	if len(candidates) == 1 {
		return candidates[0], paths[n][candidates[0]], nil
	}

	return "", schema.PathEdge{}, qerr.New(qerr.ErrAmbiguousPath, n,
		"table %q has %d candidate parents and no path hint was supplied", n, len(candidates))
}

func contains(list []string, target string) bool {
	for _, v := range list {
		if v == target {
			return true
		}
	}
	return false
}

// emit performs a depth-first, child-name-sorted descent, emitting one
// Edge per join table before descending into its own children.
func emit(node string, childrenOf map[string][]string, selected map[string]schema.PathEdge) []Edge {
	children := append([]string(nil), childrenOf[node]...)
	sort.Strings(children)

	var out []Edge
	for _, child := range children {
		edge := selected[child]
		out = append(out, Edge{
			Join:     child,
			Parent:   node,
			PathEdge: edge,
			Fragment: renderFragment(child, node, edge),
		})
		out = append(out, emit(child, childrenOf, selected)...)
	}
	return out
}

func renderFragment(join, parent string, edge schema.PathEdge) string {
	cond := fmt.Sprintf("%s.%s = %s.%s", join, edge.JoinColumn, parent, edge.ParentColumn)
	if edge.HasActiveFlag() {
		cond = fmt.Sprintf("(%s AND %s.%s = TRUE)", cond, join, edge.ActiveFlagColumn)
	}
	return fmt.Sprintf("LEFT JOIN %s ON %s", join, cond)
}
