package types

import (
	"go/token"
	"strings"
)

// ToPascalCase converts a snake_case query name to a Go identifier.
func ToPascalCase(s string) string {
	if s == "" {
		return ""
	}

	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-'
	})

	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}

	return strings.Join(parts, "")
}

// ToCamelCase converts a string to camelCase.
func ToCamelCase(s string) string {
	pascal := ToPascalCase(s)
	if len(pascal) == 0 {
		return ""
	}
	return strings.ToLower(pascal[:1]) + pascal[1:]
}

// reserved are the locals and package names of generated code.
var reserved = map[string]bool{
	"ctx":       true,
	"db":        true,
	"fn":        true,
	"err":       true,
	"rows":      true,
	"args":      true,
	"stmt":      true,
	"row":       true,
	"zero":      true,
	"params":    true,
	"gen":       true,
	"s":         true,
	"t":         true,
	"context":   true,
	"mysql":     true,
	"sqlfn":     true,
	"sqlfntest": true,
	"testing":   true,
	"time":      true,
}

// ParamName converts a declared parameter name to a Go parameter name that
// cannot collide with keywords or the locals of generated code.
func ParamName(s string) string {
	name := ToCamelCase(s)
	if name == "" {
		name = "arg"
	}
	if token.IsKeyword(name) || reserved[name] || isColumnVar(name) {
		name += "Arg"
	}
	return name
}

// isColumnVar reports whether name has the form of a scan variable, c0, c1...
func isColumnVar(name string) bool {
	if len(name) < 2 || name[0] != 'c' {
		return false
	}
	for _, r := range name[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
