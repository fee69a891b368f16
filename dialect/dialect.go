// Package dialect describes the SQL backends fnsql can target and how each
// one expects statement parameters to be written.
package dialect

import (
	"fmt"
	"sort"
	"strings"
)

// Backend identifies an SQL execution engine.
type Backend string

const (
	// SQLite is the embedded, file-based engine (github.com/mattn/go-sqlite3).
	SQLite Backend = "sqlite"
	// Postgres is the networked PostgreSQL engine (github.com/lib/pq).
	Postgres Backend = "postgres"
	// MySQL is the networked MySQL engine (github.com/go-sql-driver/mysql).
	MySQL Backend = "mysql"
)

// All lists every supported backend in a fixed order.
var All = []Backend{SQLite, Postgres, MySQL}

// Info holds the per-backend facts the generator and the test runtime need.
type Info struct {
	// Driver is the database/sql driver name registered by the driver package.
	Driver string
	// Package is the Go package name the wrappers for this backend live in.
	Package string
	// TestEnv names the environment variable holding a test DSN. Empty means
	// the backend needs no external server.
	TestEnv string
	// Style is the native placeholder syntax.
	Style PlaceholderStyle
}

var infos = map[Backend]Info{
	SQLite: {
		Driver:  "sqlite3",
		Package: "sqlitedb",
		Style:   NumberedQuestion,
	},
	Postgres: {
		Driver:  "postgres",
		Package: "pgdb",
		TestEnv: "FNSQL_TEST_POSTGRES_URL",
		Style:   Dollar,
	},
	MySQL: {
		Driver:  "mysql",
		Package: "mysqldb",
		TestEnv: "FNSQL_TEST_MYSQL_DSN",
		Style:   Question,
	},
}

// Info returns the static facts for b. It panics on an unknown backend, which
// can only happen if a Backend value was built without Parse.
func (b Backend) Info() Info {
	info, ok := infos[b]
	if !ok {
		panic(fmt.Sprintf("dialect: unknown backend %q", string(b)))
	}
	return info
}

// String returns the attribute tag of the backend.
func (b Backend) String() string { return string(b) }

// Parse maps an attribute tag or config value to a Backend. The driver names
// ("sqlite3", "postgresql") are accepted as aliases.
func Parse(name string) (Backend, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sqlite", "sqlite3":
		return SQLite, true
	case "postgres", "postgresql", "pg":
		return Postgres, true
	case "mysql":
		return MySQL, true
	default:
		return "", false
	}
}

// ParseList parses a list of backend names, removing duplicates and keeping
// the canonical order of All.
func ParseList(names []string) ([]Backend, error) {
	seen := make(map[Backend]bool, len(names))
	for _, n := range names {
		b, ok := Parse(n)
		if !ok {
			return nil, fmt.Errorf("unknown backend %q (supported: %s)", n, strings.Join(Names(), ", "))
		}
		seen[b] = true
	}
	out := make([]Backend, 0, len(seen))
	for _, b := range All {
		if seen[b] {
			out = append(out, b)
		}
	}
	return out, nil
}

// Names returns the tags of all backends, sorted.
func Names() []string {
	names := make([]string, 0, len(All))
	for _, b := range All {
		names = append(names, string(b))
	}
	sort.Strings(names)
	return names
}
