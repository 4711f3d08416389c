package predicate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/quillsql/predicate"
	"github.com/syssam/quillsql/qerr"
	"github.com/syssam/quillsql/schema"
)

func newRegistry(t *testing.T, bundle schema.Bundle) *schema.Registry {
	t.Helper()
	reg, err := schema.NewRegistry(bundle)
	require.NoError(t, err)
	return reg
}

func usersBundle() schema.Bundle {
	return schema.Bundle{
		Fields: []schema.Field{
			{ID: "1", Table: "users", Column: "age", Type: schema.TypeInteger},
			{ID: "2", Table: "users", Column: "name", Type: schema.TypeString},
		},
	}
}

func TestEvaluateSimpleEquals(t *testing.T) {
	reg := newRegistry(t, usersBundle())
	ctx := predicate.NewContext(reg)

	node, err := predicate.Decode([]byte(`{"where":{"field":"1","operator":"equals","value":"30"}}`))
	require.NoError(t, err)

	got, err := predicate.Evaluate(ctx, node)
	require.NoError(t, err)
	assert.Equal(t, "`users`.`age` = 30", got)
	assert.Equal(t, []string{"users"}, ctx.TouchedTables())
}

func TestEvaluateAndFoldsAndEscapes(t *testing.T) {
	reg := newRegistry(t, usersBundle())
	ctx := predicate.NewContext(reg)

	node, err := predicate.Decode([]byte(`{"and":[
		{"where":{"field":"1","operator":"greater_than","value":"18"}},
		{"where":{"field":"2","operator":"like","value":"o'brien"}}
	]}`))
	require.NoError(t, err)

	got, err := predicate.Evaluate(ctx, node)
	require.NoError(t, err)
	assert.Equal(t, "((`users`.`age` > 18) and (`users`.`name` LIKE 'o\\'brien'))", got)
}

func TestEvaluateBetween(t *testing.T) {
	reg := newRegistry(t, usersBundle())
	ctx := predicate.NewContext(reg)

	node, err := predicate.Decode([]byte(`{"where":{"field":"1","operator":"between","value":"1","secondary_value":"5"}}`))
	require.NoError(t, err)

	got, err := predicate.Evaluate(ctx, node)
	require.NoError(t, err)
	assert.Equal(t, "`users`.`age` between 1 AND 5", got)
}

func TestEvaluateCustomMethod(t *testing.T) {
	reg := newRegistry(t, schema.Bundle{
		CustomMethods: []schema.CustomMethod{
			{ID: "7", Template: "foo({x})", Params: map[string]schema.ParamType{"x": schema.ParamInteger}},
		},
	})
	ctx := predicate.NewContext(reg)

	node, err := predicate.Decode([]byte(`{"custom_method":{"template_id":"7","parameters":{"x":{"value":"42"}}}}`))
	require.NoError(t, err)

	got, err := predicate.Evaluate(ctx, node)
	require.NoError(t, err)
	assert.Equal(t, "foo(42)", got)
}

func TestEvaluateCustomMethodExtraParameterErrors(t *testing.T) {
	reg := newRegistry(t, schema.Bundle{
		CustomMethods: []schema.CustomMethod{
			{ID: "7", Template: "foo({x})", Params: map[string]schema.ParamType{"x": schema.ParamInteger}},
		},
	})
	ctx := predicate.NewContext(reg)

	node, err := predicate.Decode([]byte(`{"custom_method":{"template_id":"7","parameters":{"x":{"value":"42"},"y":{"value":"1"}}}}`))
	require.NoError(t, err)

	_, err = predicate.Evaluate(ctx, node)
	require.Error(t, err)
	assert.ErrorIs(t, err, qerr.ErrMissingKey)
}

func TestEvaluateOr(t *testing.T) {
	reg := newRegistry(t, usersBundle())
	ctx := predicate.NewContext(reg)

	node, err := predicate.Decode([]byte(`{"or":[
		{"where":{"field":"1","operator":"equals","value":"1"}},
		{"where":{"field":"1","operator":"equals","value":"2"}}
	]}`))
	require.NoError(t, err)

	got, err := predicate.Evaluate(ctx, node)
	require.NoError(t, err)
	assert.Equal(t, "((`users`.`age` = 1) or (`users`.`age` = 2))", got)
}

func TestEvaluateNot(t *testing.T) {
	reg := newRegistry(t, usersBundle())
	ctx := predicate.NewContext(reg)

	node, err := predicate.Decode([]byte(`{"not":[{"where":{"field":"1","operator":"equals","value":"1"}}]}`))
	require.NoError(t, err)

	got, err := predicate.Evaluate(ctx, node)
	require.NoError(t, err)
	assert.Equal(t, "not (`users`.`age` = 1)", got)
}

func TestEvaluateExistsUnsupported(t *testing.T) {
	reg := newRegistry(t, usersBundle())
	ctx := predicate.NewContext(reg)

	node, err := predicate.Decode([]byte(`{"exists":[{"where":{"field":"1","operator":"equals","value":"1"}}]}`))
	require.NoError(t, err)

	_, err = predicate.Evaluate(ctx, node)
	require.Error(t, err)
	assert.ErrorIs(t, err, qerr.ErrUnsupportedNode)
}

func TestEvaluateUnknownFieldErrors(t *testing.T) {
	reg := newRegistry(t, usersBundle())
	ctx := predicate.NewContext(reg)

	node, err := predicate.Decode([]byte(`{"where":{"field":"999","operator":"equals","value":"1"}}`))
	require.NoError(t, err)

	_, err = predicate.Evaluate(ctx, node)
	require.Error(t, err)
	assert.ErrorIs(t, err, qerr.ErrUnknownField)
}

func TestEvaluateWhereRejectsAggregate(t *testing.T) {
	reg := newRegistry(t, usersBundle())
	ctx := predicate.NewContext(reg)

	node, err := predicate.Decode([]byte(`{"where":{"field":"1","operator":"equals","value":"1","aggregate_lhs":"MAX"}}`))
	require.NoError(t, err)

	_, err = predicate.Evaluate(ctx, node)
	require.Error(t, err)
	assert.ErrorIs(t, err, qerr.ErrInvalidAggregate)
}

func TestEvaluateHavingRequiresGroupedOrAggregate(t *testing.T) {
	reg := newRegistry(t, usersBundle())
	ctx := predicate.NewContext(reg)
	ctx.Mode = predicate.ModeHaving
	ctx.Grouped = map[string]bool{"`users`.`name`": true}

	node, err := predicate.Decode([]byte(`{"where":{"field":"1","operator":"equals","value":"1"}}`))
	require.NoError(t, err)
	_, err = predicate.Evaluate(ctx, node)
	require.Error(t, err)
	assert.ErrorIs(t, err, qerr.ErrInvalidAggregate)

	node, err = predicate.Decode([]byte(`{"where":{"field":"2","operator":"equals","value":"bob"}}`))
	require.NoError(t, err)
	got, err := predicate.Evaluate(ctx, node)
	require.NoError(t, err)
	assert.Equal(t, "`users`.`name` = 'bob'", got)

	node, err = predicate.Decode([]byte(`{"where":{"field":"1","operator":"equals","value":"1","aggregate_lhs":"MAX"}}`))
	require.NoError(t, err)
	got, err = predicate.Evaluate(ctx, node)
	require.NoError(t, err)
	assert.Equal(t, "MAX(`users`.`age`) = 1", got)
}
