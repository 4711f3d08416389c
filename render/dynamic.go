package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/syssam/quillsql/qerr"
	"github.com/syssam/quillsql/schema"
)

// dateUnits are the allowed DATE_ADD/DATE_SUB interval units.
var dateUnits = map[string]bool{"DAY": true, "WEEK": true, "MONTH": true, "YEAR": true}

// Dynamic renders a dynamic-value object: DYNAMIC_DATE expands to a
// NOW()-relative expression, VARIABLE_TEMPLATE emits a deferred
// {keyword} placeholder. Dynamic does not resolve the placeholder;
// Compile substitutes matching Options.AliasParams into the assembled
// SQL, and any placeholder left over is for a downstream
// post-processor.
func Dynamic(f schema.Field, dyn map[string]any, reg *schema.Registry) (string, error) {
	kind, _ := dyn["type"].(string)
	switch kind {
	case "DYNAMIC_DATE":
		return dynamicDate(dyn)
	case "VARIABLE_TEMPLATE":
		return variableTemplate(f, dyn, reg)
	default:
		return "", qerr.New(qerr.ErrBadValue, "", "unknown dynamic value type %q", kind)
	}
}

func dynamicDate(dyn map[string]any) (string, error) {
	op, hasOp := dyn["operator"]
	offsetRaw, hasOffset := dyn["offset"]
	unitRaw, hasUnit := dyn["unit"]
	if !hasOp && !hasOffset && !hasUnit {
		return "NOW()", nil
	}
	if !hasOp || !hasOffset || !hasUnit {
		return "", qerr.New(qerr.ErrBadValue, "", "DYNAMIC_DATE requires operator, offset and unit together")
	}

	opStr, _ := op.(string)
	fn, ok := dateDeltaFunc(opStr)
	if !ok {
		return "", qerr.New(qerr.ErrBadValue, "", "unknown DYNAMIC_DATE operator %q", opStr)
	}

	unit, _ := unitRaw.(string)
	unit = strings.ToUpper(unit)
	if !dateUnits[unit] {
		return "", qerr.New(qerr.ErrBadValue, "", "unknown DYNAMIC_DATE unit %q", unit)
	}

	offset, err := toInt(offsetRaw)
	if err != nil {
		return "", qerr.New(qerr.ErrBadValue, "", "DYNAMIC_DATE offset %v is not an integer", offsetRaw)
	}

	return fmt.Sprintf("%s(NOW(), INTERVAL %d %s)", fn, offset, unit), nil
}

func dateDeltaFunc(op string) (string, bool) {
	switch strings.ToUpper(op) {
	case "DATE_ADD", "ADD":
		return "DATE_ADD", true
	case "DATE_SUB", "SUBTRACT", "SUB":
		return "DATE_SUB", true
	default:
		return "", false
	}
}

func toInt(v any) (int64, error) {
	switch n := v.(type) {
	case float64:
		return int64(n), nil
	case string:
		return strconv.ParseInt(strings.TrimSpace(n), 10, 64)
	default:
		return 0, fmt.Errorf("unsupported numeric representation %T", v)
	}
}

func variableTemplate(f schema.Field, dyn map[string]any, reg *schema.Registry) (string, error) {
	keyword, _ := dyn["keyword"].(string)
	if keyword == "" {
		return "", qerr.New(qerr.ErrBadValue, "", "VARIABLE_TEMPLATE requires a keyword")
	}
	v, err := reg.VariableByKeyword(keyword)
	if err != nil {
		return "", err
	}
	if v.ReturnType != f.Type {
		return "", qerr.New(qerr.ErrBadValue, "", "variable template %q returns %q but field %q is %q", keyword, v.ReturnType, f.ID, f.Type)
	}
	return wrapPlaceholder(f.Type, keyword), nil
}

// wrapPlaceholder wraps a deferred {keyword} placeholder the way a
// literal of the given field type would be wrapped, so downstream
// substitution drops a raw value into syntactically valid SQL.
func wrapPlaceholder(t schema.FieldType, keyword string) string {
	switch t {
	case schema.TypeString, schema.TypeDate, schema.TypeDateTime:
		return "'{" + keyword + "}'"
	default:
		return "{" + keyword + "}"
	}
}
