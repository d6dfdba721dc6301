package idl

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	verrors "github.com/wippyai/vtable/errors"
	"github.com/wippyai/vtable/idl/ast"
)

const shapesSource = `package shapes;

// Base class of the demo hierarchy.
interface base {
	a: func(self, arg1: u32) -> bool default false;
	b: unsafe func(self, arg1: ptr<u8>, arg2: u32) -> bool;
}

interface derived: base {
	c: func(mut self) -> usize;
}
`

func TestParse_Shapes(t *testing.T) {
	f, err := Parse("shapes.vtl", shapesSource)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if f.Package != "shapes" {
		t.Errorf("package = %q, want shapes", f.Package)
	}
	if len(f.Interfaces) != 2 {
		t.Fatalf("interfaces = %d, want 2", len(f.Interfaces))
	}

	base := f.Lookup("base")
	if base == nil {
		t.Fatal("base not found")
	}
	methods := base.Methods()
	if len(methods) != 2 {
		t.Fatalf("base methods = %d, want 2", len(methods))
	}

	a := methods[0]
	if a.Name != "a" || a.Receiver() != ast.RefReceiver {
		t.Errorf("a: name=%q receiver=%v", a.Name, a.Receiver())
	}
	if a.Default == nil || a.Default.Value == nil || a.Default.Value.Text != "false" {
		t.Errorf("a: default = %+v, want false", a.Default)
	}
	if a.Result == nil || a.Result.Kind != ast.Bool {
		t.Errorf("a: result = %v, want bool", a.Result)
	}
	if args := a.Args(); len(args) != 1 || args[0].Name != "arg1" || args[0].Type.Kind != ast.U32 {
		t.Errorf("a: args = %+v", args)
	}

	b := methods[1]
	if !b.Unsafe {
		t.Error("b: expected unsafe")
	}
	if b.Default != nil {
		t.Error("b: unexpected default")
	}
	if got := b.Args()[0].Type.String(); got != "ptr<u8>" {
		t.Errorf("b: arg1 type = %q, want ptr<u8>", got)
	}

	derived := f.Lookup("derived")
	if len(derived.Bounds) != 1 || !derived.Bounds[0].Plain() || derived.Bounds[0].Name != "base" {
		t.Errorf("derived bounds = %+v", derived.Bounds)
	}
	c := derived.Methods()[0]
	if c.Receiver() != ast.MutRefReceiver {
		t.Errorf("c: receiver = %v, want mut self", c.Receiver())
	}
	if c.Result.Kind != ast.Usize {
		t.Errorf("c: result = %v, want usize", c.Result)
	}
}

func TestParse_ShapesTheCompilerRejects(t *testing.T) {
	src := `package p;
unsafe auto interface g<T, 'a>: x + 'static + y<u8> {
	const N: u32 = 4;
	type alias = u64;
	type opaque;
	s: func(own self);
	f: func(x: i32) -> i32;
	e: extern "stdcall" func(self, _: f64);
	v: func(self) default;
}
`
	f, err := Parse("p.vtl", src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	g := f.Interfaces[0]
	if !g.Unsafe || !g.Auto {
		t.Errorf("modifiers: unsafe=%v auto=%v", g.Unsafe, g.Auto)
	}
	if len(g.Generics) != 2 || g.Generics[0].Lifetime || !g.Generics[1].Lifetime {
		t.Errorf("generics = %+v", g.Generics)
	}
	if len(g.Bounds) != 3 {
		t.Fatalf("bounds = %d, want 3", len(g.Bounds))
	}
	if g.Bounds[1].Kind != ast.BoundLifetime {
		t.Error("second bound should be a lifetime")
	}
	if g.Bounds[2].Plain() || g.Bounds[2].String() != "y<u8>" {
		t.Errorf("third bound = %s", g.Bounds[2])
	}
	if len(g.Members) != 7 {
		t.Fatalf("members = %d, want 7", len(g.Members))
	}
	if _, ok := g.Members[0].(*ast.Const); !ok {
		t.Errorf("member 0 = %T, want *ast.Const", g.Members[0])
	}
	if td, ok := g.Members[2].(*ast.TypeDecl); !ok || td.Target != nil {
		t.Errorf("member 2 = %#v", g.Members[2])
	}

	methods := g.Methods()
	if methods[0].Receiver() != ast.ValueReceiver {
		t.Errorf("s receiver = %v", methods[0].Receiver())
	}
	if methods[1].Receiver() != ast.NoReceiver || len(methods[1].Args()) != 1 {
		t.Errorf("f receiver = %v", methods[1].Receiver())
	}
	if methods[2].ABI != "stdcall" || methods[2].Args()[0].Name != "" {
		t.Errorf("e: abi=%q anon=%q", methods[2].ABI, methods[2].Args()[0].Name)
	}
	if methods[3].Default == nil || methods[3].Default.Value != nil {
		t.Errorf("v: default = %+v, want empty body", methods[3].Default)
	}
}

func TestParse_PointerTypes(t *testing.T) {
	src := `package p;
interface i {
	m: func(self, a: ptr<void>, b: mutptr<ptr<u8>>, c: cstr, d: mutptr<void>) -> ptr<i64>;
}
`
	f, err := Parse("p.vtl", src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	m := f.Interfaces[0].Methods()[0]
	want := []string{"ptr<void>", "mutptr<ptr<u8>>", "cstr", "mutptr<void>"}
	for i, arg := range m.Args() {
		if got := arg.Type.String(); got != want[i] {
			t.Errorf("arg %d = %q, want %q", i, got, want[i])
		}
		if !arg.Type.IsPointer() {
			t.Errorf("arg %d should be a pointer", i)
		}
	}
	if m.Result.String() != "ptr<i64>" {
		t.Errorf("result = %s", m.Result)
	}
}

func TestParse_Literals(t *testing.T) {
	src := `package p;
interface i {
	a: func(self) -> i32 default -7;
	b: func(self) -> f64 default 2.5;
	c: func(self) -> ptr<void> default null;
	d: func(self) -> u32 default 0x10;
}
`
	f, err := Parse("p.vtl", src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	tests := []struct {
		text string
		kind ast.LitKind
	}{
		{"-7", ast.LitInt},
		{"2.5", ast.LitFloat},
		{"null", ast.LitNull},
		{"0x10", ast.LitInt},
	}
	for i, m := range f.Interfaces[0].Methods() {
		lit := m.Default.Value
		if lit.Text != tests[i].text || lit.Kind != tests[i].kind {
			t.Errorf("%s: literal = %+v, want %+v", m.Name, *lit, tests[i])
		}
	}
}

func TestParse_SyntaxErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		pos  string
		msg  string
	}{
		{"missing package", "interface a {}", "bad.vtl:1:1", `expected "package"`},
		{"unknown type", "package p;\ninterface a {\n\tm: func(self, x: string);\n}", "bad.vtl:3:19", `unknown type "string"`},
		{"missing semicolon", "package p;\ninterface a {\n\tm: func(self)\n}", "bad.vtl:4:1", "expected ';'"},
		{"unterminated", "package p;\ninterface a {\n\tm: func(self);\n", "bad.vtl:4:1", "unterminated interface"},
		{"illegal char", "package p;\ninterface a {\n\tm: func(self) -> u8 default #;\n}", "bad.vtl:3:30", "illegal character"},
		{"missing func", "package p;\ninterface a {\n\tm: (self);\n}", "bad.vtl:3:5", `expected "func"`},
		{"bad bound", "package p;\ninterface a: { m: func(self); }", "bad.vtl:2:14", "expected base interface"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("bad.vtl", tt.src)
			if err == nil {
				t.Fatal("expected error")
			}
			var verr *verrors.Error
			if !errors.As(err, &verr) {
				t.Fatalf("error %T is not *errors.Error", err)
			}
			if verr.Phase != verrors.PhaseParse || verr.Kind != verrors.KindSyntax {
				t.Errorf("phase/kind = %s/%s", verr.Phase, verr.Kind)
			}
			if verr.Pos != tt.pos {
				t.Errorf("pos = %q, want %q", verr.Pos, tt.pos)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error %q does not contain %q", err, tt.msg)
			}
		})
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shapes.vtl")
	if err := os.WriteFile(path, []byte(shapesSource), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if f.Name != path {
		t.Errorf("file name = %q, want %q", f.Name, path)
	}
	if got := f.Interfaces[0].Pos.String(); got != path+":4:1" {
		t.Errorf("interface pos = %q", got)
	}

	_, err = ParseFile(filepath.Join(dir, "missing.vtl"))
	if !errors.Is(err, &verrors.Error{Phase: verrors.PhaseParse, Kind: verrors.KindIO}) {
		t.Errorf("missing file error = %v", err)
	}
}
