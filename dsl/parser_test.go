package dsl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/fnsql-go/dsl/diagnostics"
)

const petsUnit = `
// pets
#[sqlite, test]
create_table_pet() {
    "CREATE TABLE pet (id INTEGER PRIMARY KEY, name TEXT NOT NULL, data BLOB)"
}

#[sqlite, test(with=[create_table_pet])]
insert_pet(name: str, data: Option<Vec<u8>>) {
    "INSERT INTO pet (name, data) VALUES (:name, :data)"
}

/* rows */
#[sqlite, test(with=[create_table_pet, insert_pet],)]
get_pet_id_data(name: str,) -> [(i32, Option<[u8]>)] {
    ` + "`SELECT id, data FROM pet WHERE name = :name`" + `
}

count_pets() -> (i64) { "SELECT COUNT(*) FROM pet" }
`

func TestParse(t *testing.T) {
	file, index, err := ParseString("pets.fnsql", petsUnit)
	require.NoError(t, err)
	require.Len(t, file.Queries, 4)
	assert.Len(t, index, 4)

	create := file.Queries[0]
	assert.Equal(t, "create_table_pet", create.GetName())
	require.Len(t, create.Attributes, 2)
	assert.Equal(t, "sqlite", create.Attributes[0].Name)
	assert.Equal(t, "test", create.Attributes[1].Name)
	assert.Empty(t, create.Params)
	assert.Nil(t, create.Returns)
	assert.Equal(t, "CREATE TABLE pet (id INTEGER PRIMARY KEY, name TEXT NOT NULL, data BLOB)", create.SQL.Value)
	assert.Equal(t, 4, create.Name.Pos.Line)

	insert := file.Queries[1]
	require.Len(t, insert.Params, 2)
	assert.Equal(t, "name", insert.Params[0].GetName())
	assert.Equal(t, "str", insert.Params[0].Type.String())
	assert.Equal(t, "Option<Vec<u8>>", insert.Params[1].Type.String())
	with := insert.Attributes[1].Arg("with")
	require.NotNil(t, with)
	assert.Equal(t, []string{"create_table_pet"}, with.Names())

	get := file.Queries[2]
	assert.Equal(t, []string{"create_table_pet", "insert_pet"}, get.Attributes[1].Arg("with").Names())
	require.NotNil(t, get.Returns)
	require.NotNil(t, get.Returns.Many)
	assert.Equal(t, "(i32, Option<[u8]>)", get.Returns.Tuple().String())
	assert.Equal(t, "SELECT id, data FROM pet WHERE name = :name", get.SQL.Value)

	count := file.Queries[3]
	assert.Empty(t, count.Attributes)
	require.NotNil(t, count.Returns)
	assert.Nil(t, count.Returns.Many)
	assert.Equal(t, "(i64)", count.Returns.One.String())

	q, ok := index.Lookup("insert_pet")
	require.True(t, ok)
	assert.Same(t, insert, q)
}

func TestParse_Empty(t *testing.T) {
	file, index, err := ParseString("empty.fnsql", "  // nothing here\n")
	require.NoError(t, err)
	assert.Empty(t, file.Queries)
	assert.Empty(t, index)
}

func TestParse_SyntaxError(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
	}{
		{"missing body", "get_pet(name: str)\n", 2},
		{"unterminated attrs", "#[sqlite\nget() { \"SELECT 1\" }", 2},
		{"bad param", "get(name) { \"SELECT 1\" }", 1},
		{"unterminated string", "get() { \"SELECT 1 }", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseString("bad.fnsql", tt.src)
			require.Error(t, err)
			assert.True(t, errors.Is(err, &diagnostics.Error{Kind: diagnostics.SyntaxError}))

			errs := diagnostics.All(err)
			require.Len(t, errs, 1)
			assert.Equal(t, "bad.fnsql", errs[0].Span.Filename)
			assert.Equal(t, tt.line, errs[0].Span.Line)
		})
	}
}

func TestParse_DuplicateName(t *testing.T) {
	src := "a() { \"SELECT 1\" }\nb() { \"SELECT 2\" }\na() { \"SELECT 3\" }\n"

	file, index, err := ParseString("dup.fnsql", src)
	require.Error(t, err)
	require.NotNil(t, file)

	var de *diagnostics.Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, diagnostics.DuplicateName, de.Kind)
	assert.Equal(t, "a", de.Subject)
	assert.Equal(t, 3, de.Span.Line)
	assert.Contains(t, de.Message, "dup.fnsql:1:1")

	first, _ := index.Lookup("a")
	assert.Equal(t, "SELECT 1", first.SQL.Value)
}
