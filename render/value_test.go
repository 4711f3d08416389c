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

func rawJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestValueInteger(t *testing.T) {
	f := schema.Field{ID: "1", Table: "users", Column: "age", Type: schema.TypeInteger}
	got, err := render.Value(f, rawJSON(t, "30"), nil)
	require.NoError(t, err)
	assert.Equal(t, "30", got)

	_, err = render.Value(f, rawJSON(t, "not-a-number"), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, qerr.ErrBadValue)
}

func TestValueString(t *testing.T) {
	f := schema.Field{ID: "2", Table: "users", Column: "name", Type: schema.TypeString}
	got, err := render.Value(f, rawJSON(t, "o'brien"), nil)
	require.NoError(t, err)
	assert.Equal(t, `'o\'brien'`, got)
}

func TestValueDate(t *testing.T) {
	f := schema.Field{ID: "3", Table: "users", Column: "dob", Type: schema.TypeDate}
	got, err := render.Value(f, rawJSON(t, "2024-01-02"), nil)
	require.NoError(t, err)
	assert.Equal(t, "'2024-01-02'", got)

	_, err = render.Value(f, rawJSON(t, "01/02/2024"), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, qerr.ErrBadValue)
}

func TestValueDateTimeFallsBackToDate(t *testing.T) {
	f := schema.Field{ID: "4", Table: "users", Column: "created_at", Type: schema.TypeDateTime}

	got, err := render.Value(f, rawJSON(t, "2024-01-02T03:04:05"), nil)
	require.NoError(t, err)
	assert.Equal(t, "'2024-01-02T03:04:05'", got)

	got, err = render.Value(f, rawJSON(t, "2024-01-02"), nil)
	require.NoError(t, err)
	assert.Equal(t, "'2024-01-02'", got)
}

func TestValueChoiceQuotesOnlyNonIntegers(t *testing.T) {
	f := schema.Field{ID: "5", Table: "surveys", Column: "answer", Type: schema.TypeChoice}

	got, err := render.Value(f, rawJSON(t, "42"), nil)
	require.NoError(t, err)
	assert.Equal(t, "42", got)

	got, err = render.Value(f, rawJSON(t, "OTHER"), nil)
	require.NoError(t, err)
	assert.Equal(t, "'OTHER'", got)
}

func TestValueBoolean(t *testing.T) {
	f := schema.Field{ID: "6", Table: "users", Column: "active", Type: schema.TypeBoolean}

	got, err := render.Value(f, rawJSON(t, "true"), nil)
	require.NoError(t, err)
	assert.Equal(t, "TRUE", got)

	got, err = render.Value(f, rawJSON(t, "0"), nil)
	require.NoError(t, err)
	assert.Equal(t, "FALSE", got)
}

func TestColumnAggregate(t *testing.T) {
	f := schema.Field{ID: "7", Table: "orders", Column: "total", Type: schema.TypeInteger}

	got, err := render.Column(f, "")
	require.NoError(t, err)
	assert.Equal(t, "`orders`.`total`", got)

	got, err = render.Column(f, "max")
	require.NoError(t, err)
	assert.Equal(t, "MAX(`orders`.`total`)", got)
}

func TestColumnRejectsUnknownAggregate(t *testing.T) {
	f := schema.Field{ID: "8", Table: "orders", Column: "total", Type: schema.TypeInteger}
	_, err := render.Column(f, "AVG")
	require.Error(t, err)
	assert.ErrorIs(t, err, qerr.ErrInvalidAggregate)
}
