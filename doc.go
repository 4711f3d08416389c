// Package quillsql compiles a declarative JSON predicate tree into an
// executable MySQL SELECT statement. A Compiler wraps an immutable
// *schema.Registry built once at construction and is safe for
// concurrent Compile calls; every sub-package it delegates to —
// schema, predicate, render, joinplan, subquery — is likewise a pure
// function of its inputs.
//
//	reg, err := schema.NewRegistry(bundle)
//	c, err := quillsql.New(reg)
//	sql, err := c.Compile(req, "users", quillsql.Options{})
package quillsql
