package compiler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/fnsql-go/dialect"
	"github.com/satishbabariya/fnsql-go/dsl/diagnostics"
)

const pets = `
#[sqlite, postgres, test]
create_table_pet() {
    "CREATE TABLE pet (id INTEGER PRIMARY KEY, name TEXT, data BLOB)"
}

#[sqlite, postgres, test(with=[create_table_pet])]
insert_new_pet(name: String, data: Option<Vec<u8>>) {
    "INSERT INTO pet (name, data) VALUES (:name, :data)"
}

#[sqlite, postgres, test(with=[create_table_pet])]
get_pet_id_data(name: Option<String>) -> [(i32, Option<Blob>)] {
    "SELECT id, data FROM pet WHERE name = :name"
}
`

func compile(t *testing.T, src string, opts Options) *Unit {
	t.Helper()
	unit, err := CompileString("pets.fnsql", src, opts)
	require.NoError(t, err)
	return unit
}

func requireKind(t *testing.T, err error, kind diagnostics.Kind, subject string) *diagnostics.Error {
	t.Helper()
	require.Error(t, err)
	require.True(t, errors.Is(err, &diagnostics.Error{Kind: kind, Subject: subject}), "got %v", err)
	for _, e := range diagnostics.All(err) {
		if e.Kind == kind && e.Subject == subject {
			return e
		}
	}
	return nil
}

func TestCompile_CreateTable(t *testing.T) {
	unit := compile(t, pets, Options{})
	assert.Equal(t, "pets", unit.Name)
	assert.Equal(t, []dialect.Backend{dialect.SQLite, dialect.Postgres}, unit.Backends())

	create, ok := unit.Lookup("create_table_pet")
	require.True(t, ok)
	assert.True(t, create.Tested())
	assert.Empty(t, create.Attributes.Test.With)
	assert.Empty(t, create.Params)
	assert.Nil(t, create.Shape)
	assert.Equal(t, create, unit.TestOrder[0])
}

func TestCompile_QueryRowShape(t *testing.T) {
	unit := compile(t, pets, Options{Backends: []dialect.Backend{dialect.SQLite}})

	get, ok := unit.Lookup("get_pet_id_data")
	require.True(t, ok)
	require.Len(t, get.Params, 1)
	assert.Equal(t, "Option<String>", get.Params[0].Type.String())
	require.NotNil(t, get.Shape)
	assert.True(t, get.Shape.Many)
	require.Len(t, get.Shape.Columns, 2)
	assert.Equal(t, "i32", get.Shape.Columns[0].String())
	assert.Equal(t, "Option<Blob>", get.Shape.Columns[1].String())

	require.Len(t, get.Prerequisites, 1)
	assert.Equal(t, "create_table_pet", get.Prerequisites[0].Name)

	assert.False(t, get.Enabled(dialect.Postgres), "postgres is not enabled")
	target := get.Targets[dialect.SQLite]
	require.NotNil(t, target)
	assert.Equal(t, "SELECT id, data FROM pet WHERE name = ?1", target.SQL)
	assert.Equal(t, []int{0}, target.Args)
	assert.Equal(t, "*string", target.Params[0].GoType)
	assert.Equal(t, "int32", target.Columns[0].GoType)
	assert.Equal(t, "[]byte", target.Columns[1].GoType)
}

func TestCompile_UnknownDependency(t *testing.T) {
	src := `
#[test(with=[nonexistent])]
get_pet() { "SELECT 1" }
`
	_, err := CompileString("pets.fnsql", src, Options{})
	e := requireKind(t, err, diagnostics.UnknownDependency, "nonexistent")
	assert.Equal(t, 2, e.Span.Line)
	assert.Equal(t, 14, e.Span.Column)
}

func TestCompile_DuplicateName(t *testing.T) {
	src := `
insert_new_pet() { "INSERT INTO pet DEFAULT VALUES" }
insert_new_pet() { "INSERT INTO pet DEFAULT VALUES" }
`
	unit, err := CompileString("pets.fnsql", src, Options{})
	requireKind(t, err, diagnostics.DuplicateName, "insert_new_pet")
	assert.Nil(t, unit)
}

func TestCompile_GoNameCollision(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		subject string
		message string
	}{
		{
			name:    "snake and camel case",
			src:     "#[sqlite] get_pet() { \"SELECT 1\" }\n#[sqlite] getPet() { \"SELECT 2\" }",
			subject: "getPet",
			message: `query "getPet" generates queryGetPet, as does query "get_pet"`,
		},
		{
			name:    "leading underscore",
			src:     "x() { \"SELECT 1\" }\n_x() { \"SELECT 2\" }",
			subject: "_x",
		},
		{
			name:    "capitalized",
			src:     "#[sqlite] vacuum() { \"VACUUM\" }\n#[postgres] Vacuum() { \"VACUUM\" }",
			subject: "Vacuum",
		},
		{
			name:    "query row prefix",
			src:     "pets() -> [(i64)] { \"SELECT 1\" }\nrow_pets() -> [(i64)] { \"SELECT 2\" }",
			subject: "row_pets",
			message: `query "row_pets" generates QueryRowPets, as does query "pets"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit, err := CompileString("pets.fnsql", tt.src, Options{})
			e := requireKind(t, err, diagnostics.DuplicateName, tt.subject)
			assert.Nil(t, unit)
			assert.Equal(t, 2, e.Span.Line, "reported at the later definition")
			if tt.message != "" {
				assert.Contains(t, e.Message, tt.message)
			}
		})
	}
}

func TestCompile_NameWithoutGoIdentifier(t *testing.T) {
	_, err := CompileString("pets.fnsql", `_() { "SELECT 1" }`, Options{})
	requireKind(t, err, diagnostics.SyntaxError, "_")
}

func TestCompile_TestOrder(t *testing.T) {
	src := `
#[test(with=[b])] a() { "SELECT 1" }
#[test(with=[c])] b() { "SELECT 1" }
c() { "SELECT 1" }
#[test] d() { "SELECT 1" }
#[test(with=[c, d])] e() { "SELECT 1" }
f() { "SELECT 1" }
`
	unit := compile(t, src, Options{})
	assert.Equal(t, []string{"c", "b", "a", "d", "e"}, names(unit.TestOrder))

	pos := make(map[string]int)
	for i, d := range unit.TestOrder {
		pos[d.Name] = i
	}
	for _, d := range unit.TestOrder {
		for _, p := range d.Prerequisites {
			assert.Less(t, pos[p.Name], pos[d.Name], "%s before %s", p.Name, d.Name)
		}
	}

	_, inGraph := pos["f"]
	assert.False(t, inGraph)
	assert.Equal(t, []string{"b"}, names(unit.Graph.Prerequisites("a")))
}

func TestCompile_Cycle(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		subject string
		path    string
	}{
		{
			name:    "two nodes",
			src:     "#[test(with=[b])] a() { \"SELECT 1\" }\n#[test(with=[a])] b() { \"SELECT 1\" }\n",
			subject: "a",
			path:    "a -> b -> a",
		},
		{
			name:    "self",
			src:     "#[test(with=[a])] a() { \"SELECT 1\" }\n",
			subject: "a",
			path:    "a -> a",
		},
		{
			name:    "behind a chain",
			src:     "#[test(with=[b])] a() { \"SELECT 1\" }\n#[test(with=[c])] b() { \"SELECT 1\" }\n#[test(with=[b])] c() { \"SELECT 1\" }\n",
			subject: "b",
			path:    "b -> c -> b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompileString("cycle.fnsql", tt.src, Options{})
			e := requireKind(t, err, diagnostics.CyclicDependency, tt.subject)
			assert.Contains(t, e.Message, tt.path)
		})
	}
}

func TestCompile_Idempotent(t *testing.T) {
	a := compile(t, pets, Options{})
	b := compile(t, pets, Options{})
	assert.Equal(t, names(a.TestOrder), names(b.TestOrder))
	for i := range a.Definitions {
		for _, be := range dialect.All {
			ta, tb := a.Definitions[i].Targets[be], b.Definitions[i].Targets[be]
			if ta == nil {
				assert.Nil(t, tb)
				continue
			}
			assert.Equal(t, ta.SQL, tb.SQL)
			assert.Equal(t, ta.Args, tb.Args)
		}
	}
}

func TestCompile_UnknownAttribute(t *testing.T) {
	_, err := CompileString("a.fnsql", "#[sqlite, oracle] a() { \"SELECT 1\" }", Options{})
	e := requireKind(t, err, diagnostics.UnknownAttribute, "oracle")
	assert.Contains(t, e.Message, "mysql, positional, postgres, sqlite, test")

	_, err = CompileString("a.fnsql", "#[test(after=[b])] a() { \"SELECT 1\" }\nb() { \"SELECT 1\" }", Options{})
	requireKind(t, err, diagnostics.UnknownAttribute, "after")
}

func TestCompile_UnknownParameter(t *testing.T) {
	_, err := CompileString("a.fnsql", "a(name: str) { \"SELECT * FROM pet WHERE name = :nmae\" }", Options{})
	requireKind(t, err, diagnostics.UnknownParameter, "nmae")

	unit, err := CompileString("a.fnsql", "#[positional] a(name: str) { \"SELECT :nmae, $1\" }", Options{})
	require.NoError(t, err)
	d, _ := unit.Lookup("a")
	assert.Equal(t, "SELECT :nmae, $1", d.Targets[dialect.Postgres].SQL)
}

func TestCompile_UnsupportedType(t *testing.T) {
	_, err := CompileString("a.fnsql", "a(x: Nope) { \"SELECT :x\" }", Options{})
	requireKind(t, err, diagnostics.UnsupportedType, "Nope")

	_, err = CompileString("a.fnsql", "#[sqlite] a(x: u64) { \"SELECT :x\" }", Options{})
	e := requireKind(t, err, diagnostics.UnsupportedType, "u64")
	assert.Contains(t, e.Message, "sqlite")

	unit, err := CompileString("a.fnsql", "#[mysql] a(x: u64) { \"SELECT :x\" }", Options{})
	require.NoError(t, err)
	d, _ := unit.Lookup("a")
	assert.Equal(t, "SELECT ?", d.Targets[dialect.MySQL].SQL)
}

func TestCompile_PrerequisiteBackend(t *testing.T) {
	src := `
#[postgres] create() { "CREATE TABLE t (x INT)" }
#[sqlite, postgres, test(with=[create])] use_it() { "SELECT x FROM t" }
`
	_, err := CompileString("a.fnsql", src, Options{})
	e := requireKind(t, err, diagnostics.UnknownDependency, "create")
	assert.Contains(t, e.Message, "backend sqlite")

	unit, err := CompileString("a.fnsql", src, Options{Backends: []dialect.Backend{dialect.Postgres}})
	require.NoError(t, err)
	assert.Equal(t, []string{"create", "use_it"}, names(unit.TestOrder))
}

func TestCompile_DuplicateParameter(t *testing.T) {
	_, err := CompileString("a.fnsql", "a(x: i32, x: i64) { \"SELECT :x\" }", Options{})
	requireKind(t, err, diagnostics.DuplicateName, "x")
}

func TestUnitName(t *testing.T) {
	assert.Equal(t, "pets", UnitName("queries/pets.fnsql"))
	assert.Equal(t, "my_pets", UnitName("My-Pets.fnsql"))
	assert.Equal(t, "queries", UnitName(""))
}
