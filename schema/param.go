package schema

// ParamType enumerates the declared parameter types a CustomMethod or
// SQL Subquery template may bind.
type ParamType string

// The allowed ParamType values.
const (
	ParamField           ParamType = "field"
	ParamInteger         ParamType = "integer"
	ParamString          ParamType = "string"
	ParamDate            ParamType = "date"
	ParamOperator        ParamType = "operator"
	ParamBoolean         ParamType = "boolean"
	ParamVariableTemplate ParamType = "variable_template"
)

// Valid reports whether t is one of the declared ParamType constants.
func (t ParamType) Valid() bool {
	switch t {
	case ParamField, ParamInteger, ParamString, ParamDate, ParamOperator, ParamBoolean, ParamVariableTemplate:
		return true
	default:
		return false
	}
}
