package dialect

import (
	"strconv"
	"strings"
)

// PlaceholderStyle is the way a backend spells a positional parameter.
type PlaceholderStyle int

const (
	// Question is an unnumbered "?" per occurrence (MySQL).
	Question PlaceholderStyle = iota
	// NumberedQuestion is "?N" (SQLite).
	NumberedQuestion
	// Dollar is "$N" (PostgreSQL).
	Dollar
)

// NamedParam is one ":name" token found in SQL text.
type NamedParam struct {
	Name   string
	Offset int // byte offset of the ':'
}

// End returns the offset just past the token.
func (p NamedParam) End() int { return p.Offset + 1 + len(p.Name) }

// quoting lists the literal forms of a backend that can hide ":name" text.
type quoting struct {
	// backslash escapes the next character inside '...' and "..." (MySQL).
	backslash bool
	// dollar enables $$...$$ and $tag$...$tag$ bodies and E'...' strings
	// (PostgreSQL).
	dollar bool
}

func (b Backend) quoting() quoting {
	switch b {
	case MySQL:
		return quoting{backslash: true}
	case Postgres:
		return quoting{dollar: true}
	default:
		return quoting{}
	}
}

// ScanNamed returns the ":name" tokens of query, as b reads it, in order of
// appearance. Quoted strings, quoted identifiers, comments and "::" casts are
// skipped, as are the dollar-quoted bodies of PostgreSQL.
func ScanNamed(b Backend, query string) []NamedParam {
	q := b.quoting()
	var out []NamedParam
	n := len(query)
	for i := 0; i < n; i++ {
		c := query[i]
		switch {
		case c == '\'' || c == '"':
			i = skipQuoted(query, i, c, q.backslash)
		case c == '`':
			i = skipQuoted(query, i, c, false)
		case q.dollar && (c == 'E' || c == 'e') && i+1 < n && query[i+1] == '\'' && !afterIdent(query, i):
			i = skipQuoted(query, i+1, '\'', true)
		case q.dollar && c == '$' && !afterIdent(query, i):
			if end, ok := skipDollarQuoted(query, i); ok {
				if end < 0 {
					return out
				}
				i = end
			}
		case c == '-' && i+1 < n && query[i+1] == '-':
			for i < n && query[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < n && query[i+1] == '*':
			end := strings.Index(query[i+2:], "*/")
			if end < 0 {
				return out
			}
			i += end + 3
		case c == ':':
			if i+1 < n && query[i+1] == ':' {
				i++
				continue
			}
			j := i + 1
			for j < n && isIdentByte(query[j], j == i+1) {
				j++
			}
			if j > i+1 {
				out = append(out, NamedParam{Name: query[i+1 : j], Offset: i})
				i = j - 1
			}
		}
	}
	return out
}

// skipQuoted returns the index of the closing quote matching the one at i.
// A doubled quote inside the literal is an escaped quote, and so is a quote
// after a backslash when backslash is set.
func skipQuoted(s string, i int, q byte, backslash bool) int {
	for j := i + 1; j < len(s); j++ {
		if backslash && s[j] == '\\' {
			j++
			continue
		}
		if s[j] != q {
			continue
		}
		if j+1 < len(s) && s[j+1] == q {
			j++
			continue
		}
		return j
	}
	return len(s)
}

// skipDollarQuoted reports whether a $tag$ delimiter starts at i and, if so,
// returns the index of the last byte of the closing delimiter, or -1 when the
// body is not terminated. "$1" is a placeholder, not a delimiter.
func skipDollarQuoted(s string, i int) (int, bool) {
	j := i + 1
	for j < len(s) && isIdentByte(s[j], j == i+1) {
		j++
	}
	if j >= len(s) || s[j] != '$' {
		return 0, false
	}
	delim := s[i : j+1]
	end := strings.Index(s[j+1:], delim)
	if end < 0 {
		return -1, true
	}
	return j + end + len(delim), true
}

// afterIdent reports whether the byte before i continues an identifier.
func afterIdent(s string, i int) bool {
	return i > 0 && (isIdentByte(s[i-1], false) || s[i-1] == '$')
}

func isIdentByte(c byte, first bool) bool {
	if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
		return true
	}
	return !first && c >= '0' && c <= '9'
}

// Binding is the result of rewriting a query for one backend.
type Binding struct {
	// SQL is the query in the backend's native placeholder syntax.
	SQL string
	// Args lists, in bind order, indices into the declared parameter list.
	Args []int
}

// Bind rewrites the ":name" tokens of query into the placeholder syntax of b
// and computes the argument order. params is the declared parameter list.
//
// When positional is set, or the query contains no ":name" token, the query
// is returned unchanged and every parameter is bound in declared order.
// Tokens naming undeclared parameters are left in place; callers reject them
// beforehand.
func Bind(b Backend, query string, params []string, positional bool) Binding {
	tokens := ScanNamed(b, query)
	if positional || len(tokens) == 0 {
		args := make([]int, len(params))
		for i := range params {
			args[i] = i
		}
		return Binding{SQL: query, Args: args}
	}

	index := make(map[string]int, len(params))
	for i, p := range params {
		index[p] = i
	}

	style := b.Info().Style
	ordinal := make(map[string]int)
	var (
		sb   strings.Builder
		args []int
		last int
	)
	for _, tok := range tokens {
		idx, ok := index[tok.Name]
		if !ok {
			continue
		}
		sb.WriteString(query[last:tok.Offset])
		last = tok.End()
		switch style {
		case Question:
			sb.WriteByte('?')
			args = append(args, idx)
		default:
			n, seen := ordinal[tok.Name]
			if !seen {
				args = append(args, idx)
				n = len(args)
				ordinal[tok.Name] = n
			}
			if style == Dollar {
				sb.WriteByte('$')
			} else {
				sb.WriteByte('?')
			}
			sb.WriteString(strconv.Itoa(n))
		}
	}
	sb.WriteString(query[last:])
	return Binding{SQL: sb.String(), Args: args}
}
