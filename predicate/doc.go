// Package predicate implements the recursive condition AST and its
// evaluator. Node is a sealed interface with six implementations;
// Evaluate converts a Node into a SQL fragment, threading a Context
// that carries the schema registry, the having/where
// aggregate-validation mode, and the set of tables touched so far.
//
// Evaluating a node never performs I/O and never blocks: it is pure
// string assembly over already-resolved schema data, mutating only
// the local Context.
package predicate
