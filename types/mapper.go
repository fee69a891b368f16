package types

import (
	"fmt"
	"sort"

	"github.com/satishbabariya/fnsql-go/dialect"
)

const (
	importTime  = "time"
	importMySQL = "github.com/go-sql-driver/mysql"
)

// Mapping is how one descriptor is carried between Go and one backend.
type Mapping struct {
	// GoType is the type of the wrapper parameter or row column.
	GoType string
	// Scan is the type of the variable rows are scanned into.
	Scan string
	// Imports lists the packages GoType refers to.
	Imports []string
	// ScanImports lists the packages Scan refers to beyond Imports.
	ScanImports []string

	bind func(expr string) string
	load func(expr string) string
}

// Bind returns the argument expression passed to the driver for the Go value
// expr.
func (m Mapping) Bind(expr string) string {
	if m.bind == nil {
		return expr
	}
	return m.bind(expr)
}

// Load returns the expression converting the scan variable expr to GoType.
func (m Mapping) Load(expr string) string {
	if m.load == nil {
		return expr
	}
	return m.load(expr)
}

// Direct reports whether values are scanned straight into GoType.
func (m Mapping) Direct() bool {
	return m.load == nil && m.Scan == m.GoType
}

// UnsupportedError reports a descriptor with no mapping for a backend.
type UnsupportedError struct {
	Type    Descriptor
	Backend dialect.Backend
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("type %s is not supported by backend %s", e.Type, e.Backend)
}

// Mapper holds the Kind x Backend table.
type Mapper struct {
	table map[dialect.Backend]map[Kind]Mapping
}

// NewMapper creates a mapper with the built-in table.
func NewMapper() *Mapper {
	return &Mapper{table: defaultTable()}
}

func identity(goType string, imports ...string) Mapping {
	return Mapping{GoType: goType, Scan: goType, Imports: imports}
}

func numeric() map[Kind]Mapping {
	return map[Kind]Mapping{
		Bool:   identity("bool"),
		I8:     identity("int8"),
		I16:    identity("int16"),
		I32:    identity("int32"),
		I64:    identity("int64"),
		U8:     identity("uint8"),
		U16:    identity("uint16"),
		U32:    identity("uint32"),
		U64:    identity("uint64"),
		F32:    identity("float32"),
		F64:    identity("float64"),
		String: identity("string"),
		Blob:   identity("[]byte"),
	}
}

func defaultTable() map[dialect.Backend]map[Kind]Mapping {
	sqlite := numeric()
	// go-sqlite3 stores integers as signed 64-bit.
	delete(sqlite, U64)
	sqlite[Time] = Mapping{
		GoType:  "time.Time",
		Scan:    "sqlfn.NullTime",
		Imports: []string{importTime},
		bind:    func(e string) string { return "sqlfn.SQLiteTime(" + e + ")" },
		load:    func(e string) string { return e + ".Time" },
	}

	postgres := numeric()
	// PostgreSQL has no unsigned 64-bit column type.
	delete(postgres, U64)
	postgres[Time] = identity("time.Time", importTime)

	mysql := numeric()
	// Without parseTime=true the driver returns DATETIME as []byte.
	mysql[Time] = Mapping{
		GoType:      "time.Time",
		Scan:        "mysql.NullTime",
		Imports:     []string{importTime},
		ScanImports: []string{importMySQL},
		load:        func(e string) string { return e + ".Time" },
	}

	return map[dialect.Backend]map[Kind]Mapping{
		dialect.SQLite:   sqlite,
		dialect.Postgres: postgres,
		dialect.MySQL:    mysql,
	}
}

// Map returns the mapping of d on backend b.
func (m *Mapper) Map(d Descriptor, b dialect.Backend) (Mapping, error) {
	cells, ok := m.table[b]
	if !ok {
		return Mapping{}, &UnsupportedError{Type: d, Backend: b}
	}
	if !d.IsOption() {
		mapping, ok := cells[d.Kind]
		if !ok {
			return Mapping{}, &UnsupportedError{Type: d, Backend: b}
		}
		return mapping, nil
	}

	inner, ok := cells[d.Elem.Kind]
	if !ok {
		return Mapping{}, &UnsupportedError{Type: d, Backend: b}
	}
	return optional(inner), nil
}

// optional composes Option<T> from the mapping of T. NULL is a nil pointer,
// or a nil slice for byte strings.
func optional(inner Mapping) Mapping {
	if inner.GoType == "[]byte" {
		return inner
	}
	out := Mapping{
		GoType:      "*" + inner.GoType,
		Imports:     inner.Imports,
		ScanImports: inner.ScanImports,
	}
	if inner.bind != nil {
		out.bind = func(e string) string {
			return fmt.Sprintf("sqlfn.BindOpt(%s, func(v %s) any { return %s })", e, inner.GoType, inner.Bind("v"))
		}
	}
	if inner.Direct() {
		out.Scan = out.GoType
		return out
	}
	// Non-direct scans go through a null type with Valid and the inner value.
	out.Scan = inner.Scan
	out.load = func(e string) string {
		return fmt.Sprintf("sqlfn.LoadOpt(%s.Valid, %s)", e, inner.Load(e))
	}
	return out
}

// Imports collects the sorted, distinct packages that code declaring params
// and columns, and scanning columns, refers to.
func Imports(params, columns []Mapping) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(imports []string) {
		for _, imp := range imports {
			if !seen[imp] {
				seen[imp] = true
				out = append(out, imp)
			}
		}
	}
	for _, m := range params {
		add(m.Imports)
	}
	for _, m := range columns {
		add(m.Imports)
		add(m.ScanImports)
	}
	sort.Strings(out)
	return out
}
