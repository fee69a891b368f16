package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanNamed(t *testing.T) {
	tests := []struct {
		name    string
		backend Backend
		query   string
		want    []string
	}{
		{"none", SQLite, "SELECT 1", nil},
		{"single", SQLite, "SELECT id FROM pet WHERE name = :name", []string{"name"}},
		{"repeated", SQLite, "SELECT :a, :b, :a", []string{"a", "b", "a"}},
		{"cast is skipped", Postgres, "SELECT :id::int", []string{"id"}},
		{"string literal", SQLite, "SELECT ':nope', :yes", []string{"yes"}},
		{"escaped quote", SQLite, "SELECT 'it'':s', :x", []string{"x"}},
		{"quoted identifier", SQLite, `SELECT ":col" FROM t WHERE a = :a`, []string{"a"}},
		{"backtick identifier", MySQL, "SELECT `:col` FROM t WHERE a = :a", []string{"a"}},
		{"line comment", SQLite, "SELECT 1 -- :hidden\nWHERE x = :x", []string{"x"}},
		{"block comment", SQLite, "SELECT /* :hidden */ :x", []string{"x"}},
		{"dollar quoted", Postgres, "SELECT $$ :hidden $$, :x", []string{"x"}},
		{"tagged dollar quoted", Postgres, "SELECT $body$ :hidden $$ :still $body$, :x", []string{"x"}},
		{"numbered placeholder is not a delimiter", Postgres, "SELECT $1, :x, $2", []string{"x"}},
		{"unterminated dollar quote", Postgres, "SELECT :x, $fn$ :hidden", []string{"x"}},
		{"escape string", Postgres, `SELECT E'it\'s :hidden', :x`, []string{"x"}},
		{"backslash is literal in postgres", Postgres, `SELECT 'a\', :x`, []string{"x"}},
		{"backslash escape", MySQL, `SELECT 'it\'s :hidden', :x`, []string{"x"}},
		{"backslash escape in double quotes", MySQL, `SELECT "a\" :hidden", :x`, []string{"x"}},
		{"backslash is literal in sqlite", SQLite, `SELECT 'a\', :x`, []string{"x"}},
		{"digits not a name", SQLite, "SELECT '10:30', :1, :p1", []string{"p1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, p := range ScanNamed(tt.backend, tt.query) {
				got = append(got, p.Name)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBind_MySQLEscapedQuote(t *testing.T) {
	got := Bind(MySQL, `UPDATE pet SET note = 'won\'t :fix' WHERE id = :id`, []string{"id"}, false)
	assert.Equal(t, `UPDATE pet SET note = 'won\'t :fix' WHERE id = ?`, got.SQL)
	assert.Equal(t, []int{0}, got.Args)
}

func TestBind(t *testing.T) {
	params := []string{"id", "name", "data"}
	query := "INSERT INTO pet (id, name, data) VALUES (:id, :name, :data) ON CONFLICT DO UPDATE SET name = :name"

	tests := []struct {
		backend Backend
		sql     string
		args    []int
	}{
		{SQLite, "INSERT INTO pet (id, name, data) VALUES (?1, ?2, ?3) ON CONFLICT DO UPDATE SET name = ?2", []int{0, 1, 2}},
		{Postgres, "INSERT INTO pet (id, name, data) VALUES ($1, $2, $3) ON CONFLICT DO UPDATE SET name = $2", []int{0, 1, 2}},
		{MySQL, "INSERT INTO pet (id, name, data) VALUES (?, ?, ?) ON CONFLICT DO UPDATE SET name = ?", []int{0, 1, 2, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.backend.String(), func(t *testing.T) {
			got := Bind(tt.backend, query, params, false)
			assert.Equal(t, tt.sql, got.SQL)
			assert.Equal(t, tt.args, got.Args)
		})
	}
}

func TestBind_OrdinalFollowsFirstUse(t *testing.T) {
	got := Bind(Postgres, "UPDATE pet SET data = :data WHERE name = :name", []string{"name", "data"}, false)
	assert.Equal(t, "UPDATE pet SET data = $1 WHERE name = $2", got.SQL)
	assert.Equal(t, []int{1, 0}, got.Args)
}

func TestBind_Positional(t *testing.T) {
	query := "UPDATE pet SET data = $2 WHERE name = $1"

	got := Bind(Postgres, query, []string{"name", "data"}, false)
	assert.Equal(t, query, got.SQL, "queries without :name tokens are untouched")
	assert.Equal(t, []int{0, 1}, got.Args)

	got = Bind(SQLite, "SELECT :x", []string{"x"}, true)
	assert.Equal(t, "SELECT :x", got.SQL, "positional disables rewriting")
	assert.Equal(t, []int{0}, got.Args)
}

func TestParseList(t *testing.T) {
	got, err := ParseList([]string{"postgresql", "sqlite3", "sqlite"})
	require.NoError(t, err)
	assert.Equal(t, []Backend{SQLite, Postgres}, got)

	_, err = ParseList([]string{"oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown backend "oracle"`)
}

func TestBackendInfo(t *testing.T) {
	assert.Equal(t, "sqlite3", SQLite.Info().Driver)
	assert.Equal(t, "pgdb", Postgres.Info().Package)
	assert.Equal(t, "FNSQL_TEST_MYSQL_DSN", MySQL.Info().TestEnv)
	assert.Panics(t, func() { Backend("oracle").Info() })
}
