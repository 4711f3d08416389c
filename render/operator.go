package render

// operatorTokens maps a logical operator name to its SQL token. Kept
// here, not in package predicate, so the template binder's "operator"
// declared parameter type and the predicate evaluator's leaf dispatch
// can share one source of truth.
var operatorTokens = map[string]string{
	"equals":               "=",
	"not_equals":           "<>",
	"greater_than":         ">",
	"less_than":            "<",
	"greater_than_equals":  ">=",
	"less_than_equals":     "<=",
	"is_op":                "IS",
	"in_op":                "IN",
	"like":                 "LIKE",
	"between":              "between",
	"verifies_regex":       "REGEXP",
}

// OperatorToken resolves a logical operator name to its SQL token.
func OperatorToken(name string) (string, bool) {
	tok, ok := operatorTokens[name]
	return tok, ok
}

// BinaryOperators is the set of operators requiring a secondary_value.
// between is currently the only one.
var BinaryOperators = map[string]bool{"between": true}
