// Package sqlfntest provides the databases and assertions used by tests
// generated by fnsql.
package sqlfntest

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/satishbabariya/fnsql-go/dialect"
	"github.com/satishbabariya/fnsql-go/runtime/sqlfn"
)

// Open returns a fresh, isolated connection for backend and closes it when
// the test ends. Networked backends read their DSN from the variable named by
// dialect.Info.TestEnv and are skipped when it is unset.
//
//   - sqlite: a private in-memory database on a single connection.
//   - postgres: tables are created in the session's pg_temp schema.
//   - mysql: a throwaway database, dropped at cleanup.
func Open(t testing.TB, backend string) *sqlfn.Conn {
	t.Helper()
	ctx := context.Background()

	b, ok := dialect.Parse(backend)
	if !ok {
		t.Fatalf("sqlfntest: unknown backend %q", backend)
	}
	info := b.Info()
	source := ":memory:"
	if info.TestEnv != "" {
		source = dsn(t, info.TestEnv)
	}

	var (
		db  *sql.DB
		err error
	)
	if b == dialect.MySQL {
		db, err = openMySQL(source)
	} else {
		db, err = sql.Open(info.Driver, source)
	}
	if err != nil {
		t.Fatalf("sqlfntest: open %s: %v", backend, err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	conn, err := sqlfn.Open(ctx, db, backend, sqlfn.NewStmtCache())
	if err != nil {
		t.Fatalf("sqlfntest: %v", err)
	}
	t.Cleanup(func() {
		if err := conn.Close(); err != nil {
			t.Errorf("sqlfntest: %v", err)
		}
	})

	switch b {
	case dialect.Postgres:
		mustExec(t, conn, "SET search_path TO pg_temp")
	case dialect.MySQL:
		name := "fnsql_" + strings.ReplaceAll(uuid.NewString(), "-", "")
		mustExec(t, conn, "CREATE DATABASE "+name)
		t.Cleanup(func() { conn.ExecContext(ctx, "DROP DATABASE "+name) })
		mustExec(t, conn, "USE "+name)
	}
	return conn
}

func dsn(t testing.TB, env string) string {
	t.Helper()
	v := os.Getenv(env)
	if v == "" {
		t.Skipf("sqlfntest: %s is not set", env)
	}
	return v
}

// openMySQL opens a MySQL pool that counts matched rather than changed rows
// as affected, like the other backends.
func openMySQL(dsn string) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, err
	}
	cfg.ClientFoundRows = true
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, err
	}
	return sql.OpenDB(connector), nil
}

func mustExec(t testing.TB, conn *sqlfn.Conn, query string) {
	t.Helper()
	if _, err := conn.ExecContext(context.Background(), query); err != nil {
		t.Fatalf("sqlfntest: %s: %v", query, err)
	}
}

// Param is a synthesized parameter value reported on failure.
type Param struct {
	Name  string
	Value any
}

// Check fails the test when err is not nil, naming the query and the
// parameter values that produced the error.
func Check(t testing.TB, query string, err error, params ...Param) {
	t.Helper()
	if err == nil {
		return
	}
	t.Fatal(Failure(query, err, params...))
}

// Failure formats the message Check reports.
func Failure(query string, err error, params ...Param) string {
	names := make([]string, len(params))
	values := make([]any, len(params))
	for i, p := range params {
		names[i] = p.Name
		values[i] = p.Value
	}
	kind := "error"
	var be *sqlfn.BackendError
	if errors.As(err, &be) {
		kind = "backend error"
	}
	msg := "auto_" + query + ": " + kind + ": " + err.Error()
	if len(params) > 0 {
		msg += "\n\tparams: " + sqlfn.FormatParams(names, values)
	}
	return msg
}
