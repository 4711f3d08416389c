package predicate

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/syssam/quillsql/qerr"
	"github.com/syssam/quillsql/render"
	"github.com/syssam/quillsql/schema"
)

// challengeMemberTable is the fixed table the is_challenge_completed /
// is_challenge_not_completed operators join against. It is a
// hardcoded constant of the business rule, independent of the
// compilation's base_table.
const challengeMemberTable = "patients_member"

func evaluateWhere(ctx *Context, w *Where) (string, error) {
	field, err := resolveField(ctx, w)
	if err != nil {
		return "", err
	}
	ctx.Touch(field.Table)

	if err := checkAggregateUsage(ctx, w, field); err != nil {
		return "", err
	}

	switch w.Operator {
	case "is_challenge_completed", "is_challenge_not_completed":
		return evaluateChallengeCompletion(w)
	case "is_present":
		col, err := render.Column(field, w.AggregateLHS)
		if err != nil {
			return "", err
		}
		return evaluateIsPresent(col, w.Value)
	case "is_op":
		col, err := render.Column(field, w.AggregateLHS)
		if err != nil {
			return "", err
		}
		return evaluateIsOp(field, col, w.Value)
	case "starts_with", "ends_with", "has_substring":
		col, err := render.Column(field, w.AggregateLHS)
		if err != nil {
			return "", err
		}
		return evaluateWildcardLike(col, w.Operator, w.Value)
	case "between":
		return evaluateBetween(ctx, field, w)
	case "in_op":
		return evaluateIn(ctx, field, w)
	default:
		return evaluateDefaultOperator(ctx, field, w)
	}
}

func resolveField(ctx *Context, w *Where) (schema.Field, error) {
	if w.Subquery != "" {
		return ctx.Registry.FieldBySubquery(w.Subquery, w.Alias, w.Field)
	}
	return ctx.Registry.Field(w.Field)
}

func checkAggregateUsage(ctx *Context, w *Where, field schema.Field) error {
	switch ctx.Mode {
	case ModeHaving:
		if w.AggregateLHS != "" {
			return nil
		}
		if ctx.Grouped[field.Qualified()] {
			return nil
		}
		return qerr.New(qerr.ErrInvalidAggregate, "having",
			"having leaf on %q is neither grouped nor aggregated", field.ID)
	default:
		if w.AggregateLHS != "" {
			return qerr.New(qerr.ErrInvalidAggregate, "where_data",
				"aggregate_lhs is not allowed on a where leaf (field %q)", field.ID)
		}
		return nil
	}
}

func evaluateDefaultOperator(ctx *Context, field schema.Field, w *Where) (string, error) {
	tok, ok := render.OperatorToken(w.Operator)
	if !ok {
		return "", qerr.New(qerr.ErrBadValue, "where", "unknown operator %q", w.Operator)
	}
	col, err := render.Column(field, w.AggregateLHS)
	if err != nil {
		return "", err
	}
	val, err := render.Value(field, w.Value, ctx.Registry)
	if err != nil {
		return "", err
	}
	return col + " " + tok + " " + val, nil
}

func evaluateBetween(ctx *Context, field schema.Field, w *Where) (string, error) {
	if len(w.SecondaryValue) == 0 {
		return "", qerr.New(qerr.ErrMissingKey, "where", "between requires secondary_value")
	}
	col, err := render.Column(field, w.AggregateLHS)
	if err != nil {
		return "", err
	}
	lo, err := render.Value(field, w.Value, ctx.Registry)
	if err != nil {
		return "", err
	}
	hi, err := render.Value(field, w.SecondaryValue, ctx.Registry)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s between %s AND %s", col, lo, hi), nil
}

func evaluateIn(ctx *Context, field schema.Field, w *Where) (string, error) {
	col, err := render.Column(field, w.AggregateLHS)
	if err != nil {
		return "", err
	}
	var items []json.RawMessage
	if err := json.Unmarshal(w.Value, &items); err != nil {
		return "", qerr.New(qerr.ErrBadValue, "where", "in_op requires a JSON array value: %v", err)
	}
	rendered := make([]string, len(items))
	for i, item := range items {
		v, err := render.Value(field, item, ctx.Registry)
		if err != nil {
			return "", err
		}
		rendered[i] = v
	}
	return fmt.Sprintf("%s IN (%s)", col, strings.Join(rendered, ", ")), nil
}

func evaluateWildcardLike(col, operator string, raw json.RawMessage) (string, error) {
	s, err := rawScalarString(raw)
	if err != nil {
		return "", err
	}
	var pattern string
	switch operator {
	case "starts_with":
		pattern = s + "%"
	case "ends_with":
		pattern = "%" + s
	case "has_substring":
		pattern = "%" + s + "%"
	}
	return col + " LIKE " + render.String(pattern), nil
}

func evaluateIsPresent(col string, raw json.RawMessage) (string, error) {
	present, err := rawScalarBool(raw)
	if err != nil {
		return "", err
	}
	if present {
		return fmt.Sprintf("%s IS NOT NULL AND %s <> ''", col, col), nil
	}
	return fmt.Sprintf("%s IS NULL OR %s = ''", col, col), nil
}

func evaluateIsOp(field schema.Field, col string, raw json.RawMessage) (string, error) {
	s, err := rawScalarString(raw)
	if err != nil {
		return "", err
	}
	upper := strings.ToUpper(strings.TrimSpace(s))

	if field.Type == schema.TypeString {
		switch upper {
		case "EMPTY":
			return col + " = ''", nil
		case "NOT EMPTY":
			return col + " <> ''", nil
		}
	}

	switch upper {
	case "NULL", "NOT NULL", "TRUE", "FALSE":
		return col + " IS " + upper, nil
	default:
		return "", qerr.New(qerr.ErrBadValue, "where", "invalid IS right-hand side %q", s)
	}
}

func evaluateChallengeCompletion(w *Where) (string, error) {
	id, err := rawScalarInt(w.Value)
	if err != nil {
		return "", err
	}
	exists := fmt.Sprintf(
		"EXISTS (SELECT 1 FROM journeys_memberstagechallenge WHERE challenge_id = %d AND completed_date IS NOT NULL AND member_id = %s.id)",
		id, challengeMemberTable,
	)
	if w.Operator == "is_challenge_not_completed" {
		return "not " + exists, nil
	}
	return exists, nil
}

// rawScalarString extracts the plain string representation of a raw
// JSON value — string, number, or boolean — for operators that accept
// a bare token rather than a typed field value.
func rawScalarString(raw json.RawMessage) (string, error) {
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
	return "", qerr.New(qerr.ErrBadValue, "where", "value %s is not a scalar", raw)
}

func rawScalarInt(raw json.RawMessage) (int64, error) {
	s, err := rawScalarString(raw)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, qerr.New(qerr.ErrBadValue, "where", "%q is not an integer", s)
	}
	return n, nil
}

func rawScalarBool(raw json.RawMessage) (bool, error) {
	s, err := rawScalarString(raw)
	if err != nil {
		return false, err
	}
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRUE", "1":
		return true, nil
	case "FALSE", "0":
		return false, nil
	default:
		return false, qerr.New(qerr.ErrBadValue, "where", "%q is not a boolean literal", s)
	}
}
