// Package schema holds the compiler's schema registry: the Field,
// PathEdge, CustomMethod, Subquery and Variable descriptors a caller
// hands to NewRegistry, plus the immutable, validated Registry that
// the predicate evaluator, join planner and value renderer consult
// during a single Compile call.
//
// A Registry is built once and shared read-only across any number of
// concurrent compilations:
//
//	bundle := schema.Bundle{
//	    Fields: []schema.Field{
//	        {ID: "1", Table: "users", Column: "age", Type: schema.TypeInteger},
//	    },
//	}
//	reg, err := schema.NewRegistry(bundle)
package schema
