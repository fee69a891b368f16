// Package sqlfn is the runtime support of code generated by fnsql.
//
// Generated wrappers describe each statement with a Query and delegate to
// Exec and Fetch, which run it against any DBTX and report database failures
// as *BackendError.
package sqlfn

import (
	"context"
	"database/sql"
)

// DBTX is what generated wrappers run against. *sql.DB, *sql.Tx, *sql.Conn,
// *Conn and *Stmt implement it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Query is a statement as emitted for one backend.
type Query struct {
	// Name is the query name of the source unit.
	Name    string
	Backend string
	// SQL is the statement in the backend's placeholder syntax.
	SQL string
}

// Exec runs q and returns the number of affected rows.
func Exec(ctx context.Context, db DBTX, q Query, args ...any) (int64, error) {
	res, err := db.ExecContext(ctx, q.SQL, args...)
	if err != nil {
		return 0, WrapError(q, OpExec, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, WrapError(q, OpExec, err)
	}
	return n, nil
}

// Fetch runs q and returns a lazy sequence decoding each row with decode.
func Fetch[T any](ctx context.Context, db DBTX, q Query, decode func(*Row) (T, error), args ...any) (*Rows[T], error) {
	rows, err := db.QueryContext(ctx, q.SQL, args...)
	if err != nil {
		return nil, WrapError(q, OpQuery, err)
	}
	return &Rows[T]{
		row:    Row{query: q, rows: rows},
		decode: decode,
	}, nil
}

// FetchOne runs q and decodes its first row. A query without rows fails with
// a BackendError wrapping sql.ErrNoRows.
func FetchOne[T any](ctx context.Context, db DBTX, q Query, decode func(*Row) (T, error), args ...any) (T, error) {
	rows, err := Fetch(ctx, db, q, decode, args...)
	if err != nil {
		var zero T
		return zero, err
	}
	return First(rows)
}

// Row is the current row of a result set.
type Row struct {
	query Query
	rows  *sql.Rows
}

// Scan copies the columns of the current row into dest, by position.
func (r *Row) Scan(dest ...any) error {
	return WrapError(r.query, OpScan, r.rows.Scan(dest...))
}

// BindOpt converts an optional value for the driver, passing nil through.
func BindOpt[T any](v *T, fn func(T) any) any {
	if v == nil {
		return nil
	}
	return fn(*v)
}

// LoadOpt returns a pointer to v, or nil when the column was NULL.
func LoadOpt[T any](valid bool, v T) *T {
	if !valid {
		return nil
	}
	return &v
}
