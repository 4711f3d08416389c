// Package joinplan resolves a join subgraph from a base table and a
// set of referenced tables: reverse-BFS from the referenced tables up
// to base, hint-guided tie-breaking where a join table has more than
// one candidate parent, then a deterministic depth-first emit of
// LEFT JOIN fragments.
package joinplan
