package sqlfntest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/fnsql-go/dialect"
	"github.com/satishbabariya/fnsql-go/runtime/sqlfn"
)

func TestOpen_SQLite(t *testing.T) {
	conn := Open(t, "sqlite")
	ctx := context.Background()

	create := sqlfn.Query{Name: "create", Backend: "sqlite", SQL: "CREATE TABLE t (x INTEGER)"}
	_, err := sqlfn.Exec(ctx, conn, create)
	require.NoError(t, err)

	// The same connection sees the table; a second Open does not.
	_, err = sqlfn.Exec(ctx, conn, sqlfn.Query{Name: "insert", Backend: "sqlite", SQL: "INSERT INTO t VALUES (1)"})
	require.NoError(t, err)

	other := Open(t, "sqlite")
	_, err = sqlfn.Exec(ctx, other, sqlfn.Query{Name: "insert", Backend: "sqlite", SQL: "INSERT INTO t VALUES (1)"})
	assert.True(t, sqlfn.IsBackendError(err))
}

func TestOpen_NetworkedSkip(t *testing.T) {
	for _, b := range []dialect.Backend{dialect.Postgres, dialect.MySQL} {
		t.Run(b.String(), func(t *testing.T) {
			t.Setenv(b.Info().TestEnv, "")
			Open(t, b.String())
			t.Fatal("Open must skip without a DSN")
		})
	}
}

func TestFailure(t *testing.T) {
	err := &sqlfn.BackendError{Backend: "sqlite", Query: "get_pet", Op: sqlfn.OpQuery, Err: errors.New("no such table: pet")}
	name := "rex"

	msg := Failure("get_pet", err, Param{"name", &name}, Param{"data", []byte(nil)})
	assert.Equal(t, "auto_get_pet: backend error: sqlite: query get_pet: no such table: pet\n\tparams: name=\"rex\", data=NULL", msg)

	assert.Equal(t, "auto_x: error: boom", Failure("x", errors.New("boom")))
}
