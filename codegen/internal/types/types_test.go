package types

import (
	"testing"

	"github.com/wippyai/vtable/idl/ast"
)

func ptr(elem ast.Type) ast.Type    { return ast.Type{Kind: ast.Ptr, Elem: &elem} }
func mutptr(elem ast.Type) ast.Type { return ast.Type{Kind: ast.MutPtr, Elem: &elem} }
func prim(k ast.TypeKind) ast.Type  { return ast.Type{Kind: k} }

func TestGo(t *testing.T) {
	tests := []struct {
		typ        ast.Type
		want       string
		wantUnsafe bool
	}{
		{prim(ast.Bool), "bool", false},
		{prim(ast.U32), "uint32", false},
		{prim(ast.I64), "int64", false},
		{prim(ast.Usize), "uint", false},
		{prim(ast.Isize), "int", false},
		{prim(ast.F32), "float32", false},
		{prim(ast.CStr), "*byte", false},
		{ptr(prim(ast.U8)), "*uint8", false},
		{mutptr(prim(ast.F64)), "*float64", false},
		{ptr(prim(ast.Void)), "unsafe.Pointer", true},
		{mutptr(ptr(prim(ast.Void))), "*unsafe.Pointer", true},
	}
	for _, tc := range tests {
		got, u := Go(tc.typ)
		if got != tc.want || u != tc.wantUnsafe {
			t.Errorf("Go(%s) = %q, %v; want %q, %v", tc.typ, got, u, tc.want, tc.wantUnsafe)
		}
	}
}

func TestCxx(t *testing.T) {
	tests := []struct {
		typ  ast.Type
		want string
	}{
		{prim(ast.U32), "std::uint32_t"},
		{prim(ast.Usize), "std::size_t"},
		{prim(ast.CStr), "const char*"},
		{ptr(prim(ast.U8)), "const std::uint8_t*"},
		{mutptr(prim(ast.U8)), "std::uint8_t*"},
		{ptr(prim(ast.Void)), "const void*"},
		{mutptr(prim(ast.Void)), "void*"},
		{ptr(ptr(prim(ast.U8))), "const std::uint8_t* const*"},
	}
	for _, tc := range tests {
		if got := Cxx(tc.typ); got != tc.want {
			t.Errorf("Cxx(%s) = %q, want %q", tc.typ, got, tc.want)
		}
	}
}

func TestLiterals(t *testing.T) {
	null := ast.Literal{Text: "null", Kind: ast.LitNull}
	if got := GoLiteral(null); got != "nil" {
		t.Errorf("GoLiteral(null) = %q", got)
	}
	if got := CxxLiteral(null, ptr(prim(ast.U8))); got != "nullptr" {
		t.Errorf("CxxLiteral(null) = %q", got)
	}
	half := ast.Literal{Text: "0.5", Kind: ast.LitFloat}
	if got := CxxLiteral(half, prim(ast.F32)); got != "0.5f" {
		t.Errorf("CxxLiteral(0.5 as f32) = %q", got)
	}
	if got := CxxLiteral(half, prim(ast.F64)); got != "0.5" {
		t.Errorf("CxxLiteral(0.5 as f64) = %q", got)
	}
	million := ast.Literal{Text: "1_000_000", Kind: ast.LitInt}
	if got := CxxLiteral(million, prim(ast.U32)); got != "1000000" {
		t.Errorf("CxxLiteral(1_000_000) = %q", got)
	}
	if got := GoLiteral(ast.Literal{Text: "false", Kind: ast.LitBool}); got != "false" {
		t.Errorf("GoLiteral(false) = %q", got)
	}
}
