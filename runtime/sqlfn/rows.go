package sqlfn

import (
	"database/sql"
	"errors"
	"iter"
)

// Rows is a lazy, single-pass sequence of decoded rows. It is not safe for
// concurrent use and cannot be restarted.
type Rows[T any] struct {
	row     Row
	decode  func(*Row) (T, error)
	value   T
	err     error
	started bool
	closed  bool
}

// Next advances to the following row. It returns false at the end of the
// result set or on the first error; the rows are closed in both cases.
func (r *Rows[T]) Next() bool {
	r.started = true
	if r.closed {
		return false
	}
	if !r.row.rows.Next() {
		if err := r.row.rows.Err(); err != nil {
			r.err = WrapError(r.row.query, OpRows, err)
		}
		r.close()
		return false
	}
	v, err := r.decode(&r.row)
	if err != nil {
		r.err = err
		r.close()
		return false
	}
	r.value = v
	return true
}

// Value returns the row decoded by the last successful Next.
func (r *Rows[T]) Value() T { return r.value }

// Err returns the error that stopped iteration, if any. Decoder errors are
// returned as produced; database errors are *BackendError.
func (r *Rows[T]) Err() error { return r.err }

// Close releases the result set. It is safe to call more than once.
func (r *Rows[T]) Close() error {
	r.started = true
	if r.closed {
		return nil
	}
	return r.close()
}

func (r *Rows[T]) close() error {
	r.closed = true
	err := WrapError(r.row.query, OpClose, r.row.rows.Close())
	if r.err == nil {
		r.err = err
	}
	return err
}

// All returns an iterator over the remaining rows. An error ends the
// sequence as its last element. Iterating a second time yields a single
// ErrRowsConsumed.
func (r *Rows[T]) All() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		if r.started {
			var zero T
			yield(zero, ErrRowsConsumed)
			return
		}
		defer r.Close()
		for r.Next() {
			if !yield(r.value, nil) {
				return
			}
		}
		if r.err != nil {
			var zero T
			yield(zero, r.err)
		}
	}
}

// Collect drains rows into a slice.
func Collect[T any](rows *Rows[T]) ([]T, error) {
	var out []T
	for v, err := range rows.All() {
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
	return out, nil
}

// First returns the first row and closes rows.
func First[T any](rows *Rows[T]) (T, error) {
	defer rows.Close()
	if rows.Next() {
		return rows.Value(), nil
	}
	var zero T
	if err := rows.Err(); err != nil {
		return zero, err
	}
	return zero, &BackendError{
		Backend: rows.row.query.Backend,
		Query:   rows.row.query.Name,
		Op:      OpQuery,
		Err:     sql.ErrNoRows,
	}
}

// IsNoRows reports whether err is a query that returned no row.
func IsNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
