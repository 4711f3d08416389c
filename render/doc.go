// Package render implements the value renderer and template binder:
// type-aware literal quoting, dynamic-date expansion, MySQL
// injection-safe escaping, and {name}-placeholder interpolation shared
// by custom methods and SQL subqueries.
//
// All string values flowing into SQL pass through Escape. String,
// which escapes and then quotes, is the only place string literals
// acquire their enclosing quotes — callers may not wrap its output
// again.
package render
