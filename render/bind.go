package render

import (
	"encoding/json"
	"strings"

	"github.com/syssam/quillsql/qerr"
	"github.com/syssam/quillsql/schema"
)

// ParamValue is the wire shape of a parameter value supplied to a
// custom method or SQL subquery invocation: {"value": ...}.
type ParamValue struct {
	Value json.RawMessage `json:"value"`
}

// Bind implements the template binder shared by custom methods and
// SQL subqueries: it verifies that provided and declared parameter
// names agree exactly, renders each value per its declared type, and
// interpolates the result into tmpl by plain {name} substitution — no
// nesting, no format specifiers.
//
// It returns the tables touched by any "field" typed parameter, so
// the caller can fold them into the join planner's referenced-table
// set.
func Bind(tmpl string, declared map[string]schema.ParamType, provided map[string]ParamValue, reg *schema.Registry) (string, []string, error) {
	if diff := paramNameDiff(declared, provided); len(diff) > 0 {
		return "", nil, qerr.New(qerr.ErrMissingKey, "", "parameter names disagree: %v", diff)
	}

	out := tmpl
	var touched []string
	for name, pt := range declared {
		rendered, table, err := renderParam(pt, provided[name].Value, reg)
		if err != nil {
			return "", nil, err
		}
		out = strings.ReplaceAll(out, "{"+name+"}", rendered)
		if table != "" {
			touched = append(touched, table)
		}
	}
	return out, touched, nil
}

func paramNameDiff(declared map[string]schema.ParamType, provided map[string]ParamValue) []string {
	var diff []string
	for name := range declared {
		if _, ok := provided[name]; !ok {
			diff = append(diff, name)
		}
	}
	for name := range provided {
		if _, ok := declared[name]; !ok {
			diff = append(diff, name)
		}
	}
	return diff
}

// renderParam renders a single declared-type parameter value and
// reports the table it touched, if it was a "field" parameter.
func renderParam(pt schema.ParamType, raw json.RawMessage, reg *schema.Registry) (rendered, touchedTable string, err error) {
	switch pt {
	case schema.ParamField:
		fieldID, ferr := scalarString(raw)
		if ferr != nil {
			return "", "", ferr
		}
		f, ferr := reg.Field(fieldID)
		if ferr != nil {
			return "", "", ferr
		}
		return f.Qualified(), f.Table, nil
	case schema.ParamInteger:
		v, ierr := renderInteger(raw)
		return v, "", ierr
	case schema.ParamString:
		s, serr := scalarString(raw)
		if serr != nil {
			return "", "", serr
		}
		return String(s), "", nil
	case schema.ParamDate:
		v, derr := renderDate(raw, dateLayout)
		return v, "", derr
	case schema.ParamOperator:
		name, oerr := scalarString(raw)
		if oerr != nil {
			return "", "", oerr
		}
		tok, ok := OperatorToken(name)
		if !ok {
			return "", "", qerr.New(qerr.ErrBadValue, "", "unknown operator %q", name)
		}
		return tok, "", nil
	case schema.ParamBoolean:
		b, berr := boolParamToken(raw)
		return b, "", berr
	case schema.ParamVariableTemplate:
		name, verr := scalarString(raw)
		if verr != nil {
			return "", "", verr
		}
		return "{" + Escape(name) + "}", "", nil
	default:
		return "", "", qerr.New(qerr.ErrBadValue, "", "unknown parameter type %q", pt)
	}
}

// boolParamToken uppercases the value and requires it be one of
// TRUE, FALSE, NULL, NOT NULL — stricter than the general
// renderBoolean, which also accepts 0/1.
func boolParamToken(raw json.RawMessage) (string, error) {
	s, err := scalarString(raw)
	if err != nil {
		return "", err
	}
	upper := strings.ToUpper(strings.TrimSpace(s))
	switch upper {
	case "TRUE", "FALSE", "NULL", "NOT NULL":
		return upper, nil
	default:
		return "", qerr.New(qerr.ErrBadValue, "", "%q is not TRUE, FALSE, NULL or NOT NULL", s)
	}
}
