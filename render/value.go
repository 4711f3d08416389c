package render

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/syssam/quillsql/qerr"
	"github.com/syssam/quillsql/schema"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04:05"
)

// Value renders raw into a SQL literal according to f's declared type.
// raw may also be a dynamic-value object ({"type": "DYNAMIC_DATE",
// ...} or {"type": "VARIABLE_TEMPLATE", ...}), detected ahead of the
// type-specific dispatch.
func Value(f schema.Field, raw json.RawMessage, reg *schema.Registry) (string, error) {
	if dyn, ok := asDynamic(raw); ok {
		return Dynamic(f, dyn, reg)
	}

	switch f.Type {
	case schema.TypeInteger:
		return renderInteger(raw)
	case schema.TypeString:
		s, err := scalarString(raw)
		if err != nil {
			return "", err
		}
		return String(s), nil
	case schema.TypeDate:
		return renderDate(raw, dateLayout)
	case schema.TypeDateTime:
		return renderDateTime(raw)
	case schema.TypeChoice, schema.TypeMultichoice:
		return renderChoice(raw)
	case schema.TypeBoolean, schema.TypeNullBoolean:
		return renderBoolean(raw)
	default:
		return "", qerr.New(qerr.ErrBadValue, "", "field %q: unsupported data type %q", f.ID, f.Type)
	}
}

// asDynamic reports whether raw is a JSON object carrying a "type"
// key, the wire shape of a dynamic value.
func asDynamic(raw json.RawMessage) (map[string]any, bool) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, false
	}
	if _, ok := m["type"]; !ok {
		return nil, false
	}
	return m, true
}

// scalarString extracts the plain string/number representation of raw
// for contexts that don't accept an object (everything but a dynamic
// value).
func scalarString(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return strconv.FormatBool(b), nil
	}
	return "", qerr.New(qerr.ErrBadValue, "", "value %s is not a scalar", raw)
}

func renderInteger(raw json.RawMessage) (string, error) {
	s, err := scalarString(raw)
	if err != nil {
		return "", err
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return "", qerr.New(qerr.ErrBadValue, "", "%q is not an integer", s)
	}
	return strconv.FormatInt(n, 10), nil
}

func renderDate(raw json.RawMessage, layout string) (string, error) {
	s, err := scalarString(raw)
	if err != nil {
		return "", err
	}
	if _, err := time.Parse(layout, s); err != nil {
		return "", qerr.New(qerr.ErrBadValue, "", "%q does not match %s", s, layout)
	}
	return String(s), nil
}

func renderDateTime(raw json.RawMessage) (string, error) {
	s, err := scalarString(raw)
	if err != nil {
		return "", err
	}
	if _, err := time.Parse(dateTimeLayout, s); err == nil {
		return String(s), nil
	}
	if _, err := time.Parse(dateLayout, s); err == nil {
		return String(s), nil
	}
	return "", qerr.New(qerr.ErrBadValue, "", "%q matches neither %s nor %s", s, dateTimeLayout, dateLayout)
}

// renderChoice quotes iff the value does not parse as an integer.
func renderChoice(raw json.RawMessage) (string, error) {
	s, err := scalarString(raw)
	if err != nil {
		return "", err
	}
	if _, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
		return strings.TrimSpace(s), nil
	}
	return String(s), nil
}

func renderBoolean(raw json.RawMessage) (string, error) {
	s, err := scalarString(raw)
	if err != nil {
		return "", err
	}
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRUE", "1":
		return "TRUE", nil
	case "FALSE", "0":
		return "FALSE", nil
	case "NULL", "":
		return "NULL", nil
	default:
		return "", qerr.New(qerr.ErrBadValue, "", "%q is not a boolean literal", s)
	}
}

// Identifier backtick-quotes each part of a SQL identifier and joins
// them with dots. The LEFT JOIN fragments built by joinplan and
// subquery do not use it; their table and column names are emitted
// unquoted.
func Identifier(parts ...string) string {
	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = "`" + p + "`"
	}
	return strings.Join(quoted, ".")
}

// aggregateFunctions are the allowed AggregateLHS wrappers.
var aggregateFunctions = map[string]bool{"MIN": true, "MAX": true, "COUNT": true}

// Column renders f's column reference, optionally wrapped in an
// aggregate function.
func Column(f schema.Field, aggregate string) (string, error) {
	if aggregate == "" {
		return f.Qualified(), nil
	}
	if !aggregateFunctions[strings.ToUpper(aggregate)] {
		return "", qerr.New(qerr.ErrInvalidAggregate, "", "unknown aggregate function %q", aggregate)
	}
	return fmt.Sprintf("%s(%s)", strings.ToUpper(aggregate), f.Qualified()), nil
}
