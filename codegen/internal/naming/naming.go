// Package naming converts interface description identifiers into target
// language identifiers.
package naming

import (
	"go/token"
	"strconv"
	"strings"
	"unicode"
)

// Pascal converts snake_case or kebab-case to PascalCase.
func Pascal(s string) string {
	var b strings.Builder
	nextUpper := true
	for _, r := range s {
		if r == '-' || r == '_' {
			nextUpper = true
			continue
		}
		if nextUpper {
			b.WriteRune(unicode.ToUpper(r))
			nextUpper = false
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Names that generated Go code declares inside thunks and constructors.
var goReserved = map[string]bool{
	"this":   true,
	"T":      true,
	"P":      true,
	"l":      true,
	"vtable": true,
	"unsafe": true,
}

// GoParam returns a Go parameter name for the i-th (0-based) argument.
// Anonymous parameters are named argN, 1-based.
func GoParam(name string, i int) string {
	if name == "" {
		return "arg" + strconv.Itoa(i+1)
	}
	if token.IsKeyword(name) || goReserved[name] {
		return name + "_"
	}
	return name
}

// GoPackage derives a Go package name.
func GoPackage(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r == '_' || unicode.IsLetter(r) || (unicode.IsDigit(r) && b.Len() > 0) {
			b.WriteRune(r)
		}
	}
	name := b.String()
	if name == "" || token.IsKeyword(name) {
		return "vtables"
	}
	return name
}

var cxxKeywords = map[string]bool{
	"alignas": true, "alignof": true, "and": true, "asm": true, "auto": true,
	"bool": true, "break": true, "case": true, "catch": true, "char": true,
	"class": true, "const": true, "constexpr": true, "continue": true,
	"default": true, "delete": true, "do": true, "double": true, "else": true,
	"enum": true, "explicit": true, "export": true, "extern": true,
	"false": true, "float": true, "for": true, "friend": true, "goto": true,
	"if": true, "inline": true, "int": true, "long": true, "mutable": true,
	"namespace": true, "new": true, "noexcept": true, "not": true,
	"nullptr": true, "operator": true, "or": true, "private": true,
	"protected": true, "public": true, "register": true, "return": true,
	"short": true, "signed": true, "sizeof": true, "static": true,
	"struct": true, "switch": true, "template": true, "this": true,
	"throw": true, "true": true, "try": true, "typedef": true,
	"typename": true, "union": true, "unsigned": true, "using": true,
	"virtual": true, "void": true, "volatile": true, "while": true,
	"xor": true,
}

// Cxx escapes C++ keywords with a trailing underscore. Anonymous parameters
// are named argN like in Go.
func Cxx(name string, i int) string {
	if name == "" {
		return "arg" + strconv.Itoa(i+1)
	}
	if cxxKeywords[name] {
		return name + "_"
	}
	return name
}

// Macro converts a name to an upper case preprocessor identifier.
func Macro(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToUpper(r))
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
