package codegen

import (
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/fnsql-go/compiler"
	"github.com/satishbabariya/fnsql-go/dialect"
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

count_pets() -> (i64) { "SELECT COUNT(*) FROM pet" }
`

var testOpts = Options{Version: "0.3.0", Seed: 42}

func compileUnit(t *testing.T, src string, opts compiler.Options) *compiler.Unit {
	t.Helper()
	unit, err := compiler.CompileString("pets.fnsql", src, opts)
	require.NoError(t, err)
	return unit
}

func requireParses(t *testing.T, name string, src []byte) {
	t.Helper()
	_, err := parser.ParseFile(token.NewFileSet(), name, src, parser.AllErrors)
	require.NoError(t, err, "%s:\n%s", name, src)
}

func TestEmitWrappers_Paths(t *testing.T) {
	unit := compileUnit(t, pets, compiler.Options{})
	files, err := EmitWrappers(unit, testOpts)
	require.NoError(t, err)

	assert.Len(t, files, 3)
	assert.Contains(t, files, "sqlitedb/pets_fnsql.go")
	assert.Contains(t, files, "pgdb/pets_fnsql.go")
	assert.Contains(t, files, "mysqldb/pets_fnsql.go", "count_pets follows the enabled backends")
	for name, src := range files {
		requireParses(t, name, src)
	}
}

func TestEmitWrappers_SQLite(t *testing.T) {
	unit := compileUnit(t, pets, compiler.Options{Backends: []dialect.Backend{dialect.SQLite}})
	files, err := EmitWrappers(unit, testOpts)
	require.NoError(t, err)
	src := string(files["sqlitedb/pets_fnsql.go"])

	assert.True(t, strings.HasPrefix(src, "// Code generated by fnsql v0.3.0. DO NOT EDIT.\n"))
	assert.Contains(t, src, "// source: pets.fnsql")
	assert.Contains(t, src, "package sqlitedb")
	assert.Contains(t, src, `SQL:     "SELECT id, data FROM pet WHERE name = ?1",`)
	assert.Contains(t, src, "func ExecuteInsertNewPet(ctx context.Context, db sqlfn.DBTX, name string, data []byte) (int64, error) {")
	assert.Contains(t, src, "return sqlfn.Exec(ctx, db, queryInsertNewPet, name, data)")
	assert.Contains(t, src, "func QueryGetPetIdData[T any](ctx context.Context, db sqlfn.DBTX, name *string, fn func(c0 int32, c1 []byte) (T, error)) (*sqlfn.Rows[T], error) {")
	assert.Contains(t, src, "func QueryRowGetPetIdData[T any](ctx context.Context, db sqlfn.DBTX, name *string, fn func(c0 int32, c1 []byte) (T, error)) (T, error) {")
	assert.Contains(t, src, "func QueryCountPets[T any](ctx context.Context, db sqlfn.DBTX, fn func(c0 int64) (T, error)) (*sqlfn.Rows[T], error) {")

	assert.NotContains(t, src, "func QueryCreateTablePet", "no rows are declared")
	assert.NotContains(t, src, "Prepare", "statement cache is off")
	assert.NotContains(t, src, `"time"`)
}

func TestEmitWrappers_Postgres(t *testing.T) {
	unit := compileUnit(t, pets, compiler.Options{Backends: []dialect.Backend{dialect.Postgres}})
	files, err := EmitWrappers(unit, testOpts)
	require.NoError(t, err)
	src := string(files["pgdb/pets_fnsql.go"])

	assert.Contains(t, src, `"SELECT id, data FROM pet WHERE name = $1"`)
	assert.Contains(t, src, `"INSERT INTO pet (name, data) VALUES ($1, $2)"`)
	assert.Contains(t, src, `"SELECT COUNT(*) FROM pet"`)
}

func TestEmitWrappers_StatementCache(t *testing.T) {
	unit := compileUnit(t, pets, compiler.Options{
		Backends:       []dialect.Backend{dialect.SQLite},
		StatementCache: true,
	})
	files, err := EmitWrappers(unit, testOpts)
	require.NoError(t, err)
	src := string(files["sqlitedb/pets_fnsql.go"])

	assert.Contains(t, src, "func PrepareGetPetIdData(ctx context.Context, c *sqlfn.Conn) (*sqlfn.Stmt, error) {")
	assert.Contains(t, src, "return c.Prepare(ctx, queryGetPetIdData)")
}

func TestEmitWrappers_Time(t *testing.T) {
	const src = `
#[sqlite, mysql]
touch(at: Time, seen: Option<Time>) -> (Time, Option<Time>) { "SELECT :at, :seen" }
`
	unit := compileUnit(t, src, compiler.Options{})
	files, err := EmitWrappers(unit, testOpts)
	require.NoError(t, err)
	for name, out := range files {
		requireParses(t, name, out)
	}

	lite := string(files["sqlitedb/pets_fnsql.go"])
	assert.Contains(t, lite, "\t\"time\"\n")
	assert.Contains(t, lite, "sqlfn.SQLiteTime(at)")
	assert.Contains(t, lite, "sqlfn.BindOpt(seen, func(v time.Time) any { return sqlfn.SQLiteTime(v) })")
	assert.Contains(t, lite, "c0 sqlfn.NullTime")
	assert.Contains(t, lite, "fn(c0.Time, sqlfn.LoadOpt(c1.Valid, c1.Time))")
	assert.NotContains(t, lite, "go-sql-driver")

	my := string(files["mysqldb/pets_fnsql.go"])
	assert.Contains(t, my, "\t\"time\"\n\n\t\"github.com/go-sql-driver/mysql\"\n")
	assert.Contains(t, my, "c0 mysql.NullTime")
	assert.Contains(t, my, `"SELECT ?, ?"`)
}

func TestEmitTests(t *testing.T) {
	unit := compileUnit(t, pets, compiler.Options{
		Backends: []dialect.Backend{dialect.SQLite},
		Tests:    true,
	})
	files, err := EmitTests(unit, testOpts)
	require.NoError(t, err)
	require.Len(t, files, 1)
	out := files["sqlitedb/pets_fnsql_test.go"]
	requireParses(t, "pets_fnsql_test.go", out)
	src := string(out)

	assert.Contains(t, src, "package sqlitedb")
	assert.Contains(t, src, "type autoPetsSetup struct {")
	assert.Contains(t, src, `conn: sqlfntest.Open(t, "sqlite"),`)
	assert.Contains(t, src, "gen:  sqlfn.NewValueGen(42),")

	assert.Contains(t, src, "func TestAutoCreateTablePet(t *testing.T) {")
	assert.Contains(t, src, "func TestAutoInsertNewPet(t *testing.T) {")
	assert.Contains(t, src, "func TestAutoGetPetIdData(t *testing.T) {")
	assert.NotContains(t, src, "CountPets", "untested queries are not graph nodes")

	create := strings.Index(src, "func (s *autoPetsSetup) runCreateTablePet(")
	insert := strings.Index(src, "func (s *autoPetsSetup) runInsertNewPet(")
	get := strings.Index(src, "func (s *autoPetsSetup) runGetPetIdData(")
	require.True(t, create >= 0 && insert >= 0 && get >= 0)
	assert.Less(t, create, insert)
	assert.Less(t, insert, get)

	assert.Contains(t, src, "\ts.runCreateTablePet(t)\n")
	assert.Contains(t, src, "name := sqlfn.Generate[string](s.gen)")
	assert.Contains(t, src, "data := sqlfn.Generate[[]byte](s.gen)")
	assert.Contains(t, src, `{Name: "name", Value: name},`)
	assert.Contains(t, src, "_, err := ExecuteInsertNewPet(s.ctx, s.conn, name, data)")
	assert.Contains(t, src, `sqlfntest.Check(t, "insert_new_pet", err, params...)`)
	assert.Contains(t, src, `sqlfntest.Check(t, "create_table_pet", err)`)
	assert.Contains(t, src, "rows, err := QueryGetPetIdData(s.ctx, s.conn, name, func(int32, []byte) (struct{}, error) {")
}

func TestEmitTests_StatementCache(t *testing.T) {
	unit := compileUnit(t, pets, compiler.Options{
		Backends:       []dialect.Backend{dialect.SQLite},
		StatementCache: true,
		Tests:          true,
	})
	files, err := EmitTests(unit, testOpts)
	require.NoError(t, err)
	out := files["sqlitedb/pets_fnsql_test.go"]
	requireParses(t, "pets_fnsql_test.go", out)
	src := string(out)

	assert.Contains(t, src, "stmt, err := PrepareInsertNewPet(s.ctx, s.conn)")
	assert.Contains(t, src, "_, err = ExecuteInsertNewPet(s.ctx, stmt, name, data)")
	assert.Contains(t, src, "rows, err := QueryGetPetIdData(s.ctx, stmt, name,")
}

func TestEmitTests_Disabled(t *testing.T) {
	unit := compileUnit(t, pets, compiler.Options{})
	files, err := EmitTests(unit, testOpts)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestEmitTests_NoTestedQueries(t *testing.T) {
	unit := compileUnit(t, `count_pets() -> (i64) { "SELECT 1" }`, compiler.Options{Tests: true})
	files, err := EmitTests(unit, testOpts)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestEmitTests_BlobNeverNil(t *testing.T) {
	const src = `
#[sqlite, test]
put(data: Blob) { "INSERT INTO b (data) VALUES (:data)" }
`
	unit := compileUnit(t, src, compiler.Options{Tests: true})
	files, err := EmitTests(unit, testOpts)
	require.NoError(t, err)
	assert.Contains(t, string(files["sqlitedb/pets_fnsql_test.go"]), "data := sqlfn.GenerateBlob(s.gen)")
}
