package sqlfn

import (
	"database/sql/driver"
	"fmt"
	"reflect"
	"strings"
	"time"

	fuzz "github.com/google/gofuzz"
)

// ValueGen synthesizes parameter values for generated tests. The same seed
// yields the same sequence of values.
type ValueGen struct {
	f    *fuzz.Fuzzer
	seed int64
}

// NewValueGen creates a generator seeded with seed.
func NewValueGen(seed int64) *ValueGen {
	return &ValueGen{
		f:    fuzz.NewWithSeed(seed).NilChance(0.2).NumElements(0, 16),
		seed: seed,
	}
}

// Seed returns the seed the generator was created with.
func (g *ValueGen) Seed() int64 { return g.seed }

// Generate returns an arbitrary value of type T. Pointer types are nil with
// some probability.
func Generate[T any](g *ValueGen) T {
	var v T
	g.f.Fuzz(&v)
	return v
}

// GenerateBlob returns an arbitrary non-nil byte string.
func GenerateBlob(g *ValueGen) []byte {
	b := Generate[[]byte](g)
	if b == nil {
		b = []byte{}
	}
	return b
}

// FormatValue renders a parameter value for failure messages. Nil pointers
// and slices print as NULL.
func FormatValue(v any) string {
	if v == nil {
		return "NULL"
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return "NULL"
		}
		return FormatValue(rv.Elem().Interface())
	case reflect.Slice:
		if rv.IsNil() {
			return "NULL"
		}
	}
	switch x := v.(type) {
	case []byte:
		return fmt.Sprintf("x'%x'", x)
	case string:
		return fmt.Sprintf("%q", x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// FormatParams renders name=value pairs.
func FormatParams(names []string, values []any) string {
	parts := make([]string, len(names))
	for i, name := range names {
		var v any
		if i < len(values) {
			v = values[i]
		}
		parts[i] = name + "=" + FormatValue(v)
	}
	return strings.Join(parts, ", ")
}

// SQLiteTime formats t the way NullTime parses it back.
func SQLiteTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// sqliteTimeFormats are the layouts go-sqlite3 writes and reads.
var sqliteTimeFormats = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// NullTime scans a time stored as text, as a Unix timestamp or as a native
// time value. Valid is false for NULL.
type NullTime struct {
	Time  time.Time
	Valid bool
}

// Scan implements sql.Scanner.
func (n *NullTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*n = NullTime{}
		return nil
	case time.Time:
		*n = NullTime{Time: v, Valid: true}
		return nil
	case int64:
		*n = NullTime{Time: time.Unix(v, 0).UTC(), Valid: true}
		return nil
	case []byte:
		return n.parse(string(v))
	case string:
		return n.parse(v)
	default:
		return fmt.Errorf("sqlfn: cannot scan %T into NullTime", src)
	}
}

func (n *NullTime) parse(s string) error {
	for _, layout := range sqliteTimeFormats {
		if t, err := time.Parse(layout, s); err == nil {
			*n = NullTime{Time: t, Valid: true}
			return nil
		}
	}
	return fmt.Errorf("sqlfn: cannot parse %q as time", s)
}

// Value implements driver.Valuer.
func (n NullTime) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return SQLiteTime(n.Time), nil
}
