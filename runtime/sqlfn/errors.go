package sqlfn

import (
	"errors"
	"fmt"
)

// Op names the database/sql call that failed.
type Op string

const (
	OpPrepare Op = "prepare"
	OpExec    Op = "exec"
	OpQuery   Op = "query"
	OpScan    Op = "scan"
	OpRows    Op = "rows"
	OpClose   Op = "close"
)

var (
	// ErrRowsConsumed is returned when a Rows value is iterated twice.
	ErrRowsConsumed = errors.New("sqlfn: rows already consumed")
	// ErrStmtMismatch is returned when a prepared statement is asked to run
	// SQL it was not prepared for.
	ErrStmtMismatch = errors.New("sqlfn: statement does not match query")
	// ErrConnClosed is returned by a Conn after Close.
	ErrConnClosed = errors.New("sqlfn: connection closed")
)

// BackendError is any error reported by the database while a generated
// wrapper ran. The driver error stays reachable through errors.As.
type BackendError struct {
	Backend string
	Query   string
	Op      Op
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", e.Backend, e.Op, e.Query, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// WrapError turns a database error into a BackendError for q. It returns nil
// for nil and leaves an existing BackendError untouched.
func WrapError(q Query, op Op, err error) error {
	if err == nil {
		return nil
	}
	var be *BackendError
	if errors.As(err, &be) {
		return err
	}
	return &BackendError{Backend: q.Backend, Query: q.Name, Op: op, Err: err}
}

// IsBackendError reports whether err came from the database.
func IsBackendError(err error) bool {
	var be *BackendError
	return errors.As(err, &be)
}

// DriverError extracts the backend-specific error E from err, e.g.
// DriverError[*pq.Error](err) or DriverError[sqlite3.Error](err).
func DriverError[E error](err error) (E, bool) {
	var target E
	ok := errors.As(err, &target)
	return target, ok
}
