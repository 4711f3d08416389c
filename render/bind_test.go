package render_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/quillsql/qerr"
	"github.com/syssam/quillsql/render"
	"github.com/syssam/quillsql/schema"
)

func paramValue(t *testing.T, v any) render.ParamValue {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return render.ParamValue{Value: b}
}

func TestBindSimple(t *testing.T) {
	declared := map[string]schema.ParamType{"x": schema.ParamInteger}
	provided := map[string]render.ParamValue{"x": paramValue(t, "42")}

	got, touched, err := render.Bind("foo({x})", declared, provided, nil)
	require.NoError(t, err)
	assert.Equal(t, "foo(42)", got)
	assert.Empty(t, touched)
}

func TestBindExtraParamErrors(t *testing.T) {
	declared := map[string]schema.ParamType{"x": schema.ParamInteger}
	provided := map[string]render.ParamValue{
		"x": paramValue(t, "42"),
		"y": paramValue(t, "1"),
	}

	_, _, err := render.Bind("foo({x})", declared, provided, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, qerr.ErrMissingKey)
}

func TestBindMissingParamErrors(t *testing.T) {
	declared := map[string]schema.ParamType{"x": schema.ParamInteger, "y": schema.ParamInteger}
	provided := map[string]render.ParamValue{"x": paramValue(t, "42")}

	_, _, err := render.Bind("foo({x}, {y})", declared, provided, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, qerr.ErrMissingKey)
}

func TestBindFieldParamTracksTouchedTable(t *testing.T) {
	reg, err := schema.NewRegistry(schema.Bundle{
		Fields: []schema.Field{{ID: "1", Table: "users", Column: "id", Type: schema.TypeInteger}},
	})
	require.NoError(t, err)

	declared := map[string]schema.ParamType{"col": schema.ParamField}
	provided := map[string]render.ParamValue{"col": paramValue(t, "1")}

	got, touched, err := render.Bind("{col} = 1", declared, provided, reg)
	require.NoError(t, err)
	assert.Equal(t, "`users`.`id` = 1", got)
	assert.Equal(t, []string{"users"}, touched)
}

func TestBindOperatorParam(t *testing.T) {
	declared := map[string]schema.ParamType{"op": schema.ParamOperator}
	provided := map[string]render.ParamValue{"op": paramValue(t, "greater_than")}

	got, _, err := render.Bind("age {op} 18", declared, provided, nil)
	require.NoError(t, err)
	assert.Equal(t, "age > 18", got)
}

func TestBindBooleanParam(t *testing.T) {
	declared := map[string]schema.ParamType{"b": schema.ParamBoolean}
	provided := map[string]render.ParamValue{"b": paramValue(t, "true")}

	got, _, err := render.Bind("deleted IS {b}", declared, provided, nil)
	require.NoError(t, err)
	assert.Equal(t, "deleted IS TRUE", got)
}
