package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/quillsql/qerr"
	"github.com/syssam/quillsql/schema"
)

func baseBundle() schema.Bundle {
	return schema.Bundle{
		Fields: []schema.Field{
			{ID: "1", Table: "users", Column: "age", Type: schema.TypeInteger},
			{ID: "2", Table: "users", Column: "name", Type: schema.TypeString},
		},
	}
}

func TestNewRegistryValid(t *testing.T) {
	reg, err := schema.NewRegistry(baseBundle())
	require.NoError(t, err)

	f, err := reg.Field("1")
	require.NoError(t, err)
	assert.Equal(t, "users", f.Table)
	assert.Equal(t, "`users`.`age`", f.Qualified())
}

func TestNewRegistryDuplicateFieldID(t *testing.T) {
	b := baseBundle()
	b.Fields = append(b.Fields, schema.Field{ID: "1", Table: "users", Column: "other", Type: schema.TypeString})

	_, err := schema.NewRegistry(b)
	require.Error(t, err)
	assert.ErrorIs(t, err, qerr.ErrSchemaValidation)
}

func TestNewRegistryDuplicatePathEdge(t *testing.T) {
	b := baseBundle()
	b.Paths = []schema.PathEdge{
		{JoinTable: "posts", JoinColumn: "user_id", ParentTable: "users", ParentColumn: "id"},
		{JoinTable: "posts", JoinColumn: "author_id", ParentTable: "users", ParentColumn: "id"},
	}

	_, err := schema.NewRegistry(b)
	require.Error(t, err)
	assert.ErrorIs(t, err, qerr.ErrSchemaValidation)
}

func TestNewRegistryMultipleParentsAllowed(t *testing.T) {
	b := baseBundle()
	b.Paths = []schema.PathEdge{
		{JoinTable: "posts", JoinColumn: "a_id", ParentTable: "a", ParentColumn: "id"},
		{JoinTable: "posts", JoinColumn: "b_id", ParentTable: "b", ParentColumn: "id"},
	}

	reg, err := schema.NewRegistry(b)
	require.NoError(t, err)
	assert.Len(t, reg.Paths()["posts"], 2)
}

func TestNewRegistryUnknownField(t *testing.T) {
	reg, err := schema.NewRegistry(baseBundle())
	require.NoError(t, err)

	_, err = reg.Field("missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, qerr.ErrUnknownField)
}

func TestRegistryCloneIsCheap(t *testing.T) {
	reg, err := schema.NewRegistry(baseBundle())
	require.NoError(t, err)
	assert.Same(t, reg, reg.Clone())
}

func TestFieldBySubquery(t *testing.T) {
	b := baseBundle()
	b.Subqueries = []schema.Subquery{
		{
			ID: "sq1",
			Fields: map[string]schema.SubqueryField{
				"member_id": {Alias: "member_id", DataType: schema.TypeInteger, IsMemberID: true},
				"total":     {Alias: "total_amount", DataType: schema.TypeInteger},
			},
		},
	}

	reg, err := schema.NewRegistry(b)
	require.NoError(t, err)

	f, err := reg.FieldBySubquery("sq1", "sq_alias", "total")
	require.NoError(t, err)
	assert.Equal(t, "total_amount", f.Column)
	assert.Equal(t, "sq_alias", f.Table)
	assert.Equal(t, schema.TypeInteger, f.Type)

	join, err := reg.SubqueryJoinColumn("sq1")
	require.NoError(t, err)
	assert.Equal(t, "member_id", join)
}
