// Package types maps interface description types and literals to Go and C++.
package types

import (
	"strings"

	"github.com/wippyai/vtable/idl/ast"
)

type mapping struct {
	goType  string
	cxxType string
}

var scalars = map[ast.TypeKind]mapping{
	ast.Bool:  {"bool", "bool"},
	ast.U8:    {"uint8", "std::uint8_t"},
	ast.U16:   {"uint16", "std::uint16_t"},
	ast.U32:   {"uint32", "std::uint32_t"},
	ast.U64:   {"uint64", "std::uint64_t"},
	ast.I8:    {"int8", "std::int8_t"},
	ast.I16:   {"int16", "std::int16_t"},
	ast.I32:   {"int32", "std::int32_t"},
	ast.I64:   {"int64", "std::int64_t"},
	ast.Usize: {"uint", "std::size_t"},
	ast.Isize: {"int", "std::ptrdiff_t"},
	ast.F32:   {"float32", "float"},
	ast.F64:   {"float64", "double"},
	ast.CStr:  {"*byte", "const char*"},
}

// Go returns the Go spelling of t. Pointers to void become unsafe.Pointer,
// reported through usesUnsafe.
func Go(t ast.Type) (goType string, usesUnsafe bool) {
	switch t.Kind {
	case ast.Ptr, ast.MutPtr:
		if t.Elem.Kind == ast.Void {
			return "unsafe.Pointer", true
		}
		inner, u := Go(*t.Elem)
		return "*" + inner, u
	}
	return scalars[t.Kind].goType, false
}

// Cxx returns the C++ spelling of t. ptr<T> is a pointer to const.
func Cxx(t ast.Type) string {
	switch t.Kind {
	case ast.Void:
		return "void"
	case ast.MutPtr:
		return Cxx(*t.Elem) + "*"
	case ast.Ptr:
		inner := Cxx(*t.Elem)
		if t.Elem.IsPointer() {
			return inner + " const*"
		}
		return "const " + inner + "*"
	}
	return scalars[t.Kind].cxxType
}

// GoLiteral returns the Go expression for a default body value.
func GoLiteral(lit ast.Literal) string {
	if lit.Kind == ast.LitNull {
		return "nil"
	}
	return lit.Text
}

// CxxLiteral returns the C++ expression for a default body value of type t.
// Digit separators are dropped.
func CxxLiteral(lit ast.Literal, t ast.Type) string {
	text := strings.ReplaceAll(lit.Text, "_", "")
	switch lit.Kind {
	case ast.LitNull:
		return "nullptr"
	case ast.LitFloat:
		if t.Kind == ast.F32 {
			return text + "f"
		}
	}
	return text
}
