package compiler

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/multierr"

	verrors "github.com/wippyai/vtable/errors"
	"github.com/wippyai/vtable/idl"
	"github.com/wippyai/vtable/idl/ast"
)

const shapesSource = `package shapes;

interface base {
	a: func(self, arg1: u32) -> bool default false;
	b: unsafe func(self, arg1: ptr<u8>, arg2: u32) -> bool;
}

interface derived: base {
	c: func(mut self) -> usize;
}
`

func mustCompile(t *testing.T, src string, opts Options) *Package {
	t.Helper()
	f, err := idl.Parse("test.vtl", src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	pkg, err := Compile(f, opts)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return pkg
}

func compileErr(t *testing.T, src string) error {
	t.Helper()
	f, err := idl.Parse("test.vtl", src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	pkg, err := Compile(f, Options{})
	if err == nil {
		t.Fatal("expected compile error")
	}
	if pkg != nil {
		t.Error("no package may be returned on error")
	}
	return err
}

// findError returns the first aggregated error with the given kind.
func findError(err error, kind verrors.Kind) *verrors.Error {
	for _, e := range multierr.Errors(err) {
		var ve *verrors.Error
		if errors.As(e, &ve) && ve.Kind == kind {
			return ve
		}
	}
	return nil
}

func TestCompile_Shapes(t *testing.T) {
	pkg := mustCompile(t, shapesSource, Options{Model: LP64})

	if pkg.Name != "shapes" || pkg.Model != LP64 {
		t.Errorf("package = %q model %q", pkg.Name, pkg.Model)
	}
	if len(pkg.Units) != 2 {
		t.Fatalf("units = %d, want 2", len(pkg.Units))
	}

	base := pkg.Lookup("base")
	if base.Base != nil {
		t.Error("base should have no base")
	}
	if len(base.Slots) != 2 || base.Slots[0].Name != "a" || base.Slots[1].Name != "b" {
		t.Fatalf("base slots = %+v", base.Slots)
	}
	if base.Size != 16 {
		t.Errorf("base size = %d, want 16", base.Size)
	}
	for i, s := range base.Slots {
		if s.Index != i || s.Offset != uint32(i*8) || s.Size != 8 {
			t.Errorf("slot %s: index=%d offset=%d size=%d", s.Name, s.Index, s.Offset, s.Size)
		}
		if s.Method.ABI != "C" || !s.Method.ABIDefaulted {
			t.Errorf("slot %s: abi = %q defaulted=%v", s.Name, s.Method.ABI, s.Method.ABIDefaulted)
		}
	}

	derived := pkg.Lookup("derived")
	if derived.Base != base {
		t.Fatal("derived base not linked")
	}
	if derived.Size < base.Size {
		t.Errorf("derived size %d smaller than base %d", derived.Size, base.Size)
	}
	for i, s := range base.Slots {
		got := derived.Slots[i]
		if got.Name != s.Name || got.Offset != s.Offset || got.Owner != "base" {
			t.Errorf("prefix slot %d = %+v, want %+v", i, got, s)
		}
	}
	own := derived.OwnSlots()
	if len(own) != 1 || own[0].Name != "c" || own[0].Offset != 16 || own[0].Index != 2 {
		t.Errorf("derived own slots = %+v", own)
	}
	if !own[0].Method.Mutable() {
		t.Error("c should keep its mutable receiver")
	}
	if derived.BaseSize() != base.Size {
		t.Errorf("base size = %d, want %d", derived.BaseSize(), base.Size)
	}
	if chain := derived.Chain(); len(chain) != 2 || chain[0] != base || chain[1] != derived {
		t.Errorf("chain = %v", chain)
	}
}

func TestCompile_DeclarationOrder(t *testing.T) {
	pkg := mustCompile(t, `package p;
interface many {
	z: func(self);
	y: func(self, v: i64) -> i64;
	x: func(mut self, _: f32);
	w: func(self) -> ptr<void>;
}
`, Options{})

	u := pkg.Lookup("many")
	want := []string{"z", "y", "x", "w"}
	if len(u.Slots) != len(want) {
		t.Fatalf("slots = %d, want %d", len(u.Slots), len(want))
	}
	for i, name := range want {
		if u.Slots[i].Name != name {
			t.Errorf("slot %d = %q, want %q", i, u.Slots[i].Name, name)
		}
	}
	if p := u.Slots[2].Method.Params; len(p) != 1 || p[0].Name != "" {
		t.Errorf("anonymous param lost: %+v", p)
	}
}

func TestCompile_DataModels(t *testing.T) {
	tests := []struct {
		model       DataModel
		baseSize    uint32
		derivedSize uint32
	}{
		{LP64, 16, 24},
		{LLP64, 16, 24},
		{ILP32, 8, 12},
		{Wasm32, 8, 12},
	}
	for _, tc := range tests {
		t.Run(string(tc.model), func(t *testing.T) {
			pkg := mustCompile(t, shapesSource, Options{Model: tc.model})
			if got := pkg.Lookup("base").Size; got != tc.baseSize {
				t.Errorf("base size = %d, want %d", got, tc.baseSize)
			}
			if got := pkg.Lookup("derived").Size; got != tc.derivedSize {
				t.Errorf("derived size = %d, want %d", got, tc.derivedSize)
			}
		})
	}
}

func TestCompile_ABINormalization(t *testing.T) {
	pkg := mustCompile(t, `package p;
interface conv {
	plain: func(self);
	win: extern "stdcall" func(self);
}
`, Options{DefaultABI: "system"})

	u := pkg.Lookup("conv")
	if m := u.Methods[0]; m.ABI != "system" || !m.ABIDefaulted {
		t.Errorf("plain: abi=%q defaulted=%v", m.ABI, m.ABIDefaulted)
	}
	if m := u.Methods[1]; m.ABI != "stdcall" || m.ABIDefaulted {
		t.Errorf("win: abi=%q defaulted=%v", m.ABI, m.ABIDefaulted)
	}
}

func TestCompile_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		kind   verrors.Kind
		iface  string
		method string
		detail string
	}{
		{
			name:   "type parameter",
			src:    "package p; interface g<T> { f: func(self); }",
			kind:   verrors.KindShape,
			iface:  "g",
			detail: "type parameters",
		},
		{
			name:   "lifetime parameter",
			src:    "package p; interface g<'a> { f: func(self); }",
			kind:   verrors.KindShape,
			iface:  "g",
			detail: "cannot be given a lifetime",
		},
		{
			name:   "two bases",
			src:    "package p; interface a { f: func(self); } interface b { g: func(self); } interface c: a + b { h: func(self); }",
			kind:   verrors.KindShape,
			iface:  "c",
			detail: "at most one base",
		},
		{
			name:   "generic base",
			src:    "package p; interface a { f: func(self); } interface c: a<u32> { h: func(self); }",
			kind:   verrors.KindShape,
			iface:  "c",
			detail: "plain interface reference",
		},
		{
			name:   "constant member",
			src:    "package p; interface a { const N: u32 = 3; f: func(self); }",
			kind:   verrors.KindShape,
			iface:  "a",
			detail: "only methods",
		},
		{
			name:   "type member",
			src:    "package p; interface a { type Item; f: func(self); }",
			kind:   verrors.KindShape,
			iface:  "a",
			detail: "only methods",
		},
		{
			name:   "empty",
			src:    "package p; interface a { }",
			kind:   verrors.KindShape,
			iface:  "a",
			detail: "no methods",
		},
		{
			name:   "auto",
			src:    "package p; auto interface a { f: func(self); }",
			kind:   verrors.KindShape,
			iface:  "a",
			detail: "auto",
		},
		{
			name:   "by value receiver",
			src:    "package p; interface a { f: func(own self); }",
			kind:   verrors.KindMethod,
			iface:  "a",
			method: "f",
			detail: "by value",
		},
		{
			name:   "no receiver",
			src:    "package p; interface a { f: func(x: u32); }",
			kind:   verrors.KindMethod,
			iface:  "a",
			method: "f",
			detail: "self reference",
		},
		{
			name:   "receiver not first",
			src:    "package p; interface a { f: func(x: u32, self); }",
			kind:   verrors.KindMethod,
			iface:  "a",
			method: "f",
			detail: "first parameter",
		},
		{
			name:   "unknown convention",
			src:    `package p; interface a { f: extern "pascal" func(self); }`,
			kind:   verrors.KindMethod,
			iface:  "a",
			method: "f",
			detail: `"pascal"`,
		},
		{
			name:   "default type mismatch",
			src:    "package p; interface a { f: func(self) -> bool default 3; }",
			kind:   verrors.KindMethod,
			iface:  "a",
			method: "f",
			detail: "cannot be returned",
		},
		{
			name:   "default overflows u8",
			src:    "package p; interface a { f: func(self) -> u8 default 300; }",
			kind:   verrors.KindMethod,
			iface:  "a",
			method: "f",
			detail: "does not fit u8 (8 bits)",
		},
		{
			name:   "default overflows i8",
			src:    "package p; interface a { f: func(self) -> i8 default -129; }",
			kind:   verrors.KindMethod,
			iface:  "a",
			method: "f",
			detail: "does not fit i8",
		},
		{
			name:   "negative unsigned default",
			src:    "package p; interface a { f: func(self) -> u32 default -1; }",
			kind:   verrors.KindMethod,
			iface:  "a",
			method: "f",
			detail: "unsigned result",
		},
		{
			name:   "default without result",
			src:    "package p; interface a { f: func(self) default true; }",
			kind:   verrors.KindMethod,
			iface:  "a",
			method: "f",
			detail: "no result",
		},
		{
			name:   "unresolved base",
			src:    "package p; interface a: missing { f: func(self); }",
			kind:   verrors.KindUnresolved,
			iface:  "a",
			detail: `"missing"`,
		},
		{
			name:   "cycle",
			src:    "package p; interface a: b { f: func(self); } interface b: a { g: func(self); }",
			kind:   verrors.KindCycle,
			iface:  "a",
			detail: "a -> b -> a",
		},
		{
			name:   "base inside a cycle",
			src:    "package p; interface a: b { f: func(self); } interface b: c { g: func(self); } interface c: b { h: func(self); }",
			kind:   verrors.KindCycle,
			iface:  "a",
			detail: "a -> b -> c -> b runs into a cycle",
		},
		{
			name:   "duplicate interface",
			src:    "package p; interface a { f: func(self); } interface a { g: func(self); }",
			kind:   verrors.KindDuplicate,
			iface:  "a",
			detail: "already declared",
		},
		{
			name:   "name repeated in chain",
			src:    "package p; interface a { f: func(self); } interface b: a { f: func(self); }",
			kind:   verrors.KindDuplicate,
			iface:  "b",
			method: "f",
			detail: `base interface "a"`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := compileErr(t, tc.src)
			ve := findError(err, tc.kind)
			if ve == nil {
				t.Fatalf("no %s error in %v", tc.kind, err)
			}
			if ve.Interface != tc.iface {
				t.Errorf("interface = %q, want %q", ve.Interface, tc.iface)
			}
			if ve.Method != tc.method {
				t.Errorf("method = %q, want %q", ve.Method, tc.method)
			}
			if !strings.Contains(ve.Detail, tc.detail) {
				t.Errorf("detail %q does not mention %q", ve.Detail, tc.detail)
			}
			if ve.Pos == "" {
				t.Error("error has no position")
			}
		})
	}
}

func TestCompile_AggregatesAllInterfaces(t *testing.T) {
	err := compileErr(t, `package p;
interface good { f: func(self); }
interface bad1 { f: func(own self); }
interface bad2<T> { g: func(self); }
interface bad3 { h: func(self); i: func(); }
`)
	errs := multierr.Errors(err)
	if len(errs) != 3 {
		t.Fatalf("errors = %d, want 3: %v", len(errs), err)
	}
	seen := map[string]bool{}
	for _, e := range errs {
		var ve *verrors.Error
		if errors.As(e, &ve) {
			seen[ve.Interface] = true
		}
	}
	for _, name := range []string{"bad1", "bad2", "bad3"} {
		if !seen[name] {
			t.Errorf("no error reported for %s", name)
		}
	}
	if !errors.Is(err, &verrors.Error{Phase: verrors.PhaseValidate, Kind: verrors.KindMethod}) {
		t.Error("errors.Is should match an aggregated method error")
	}
}

func TestCompile_DefaultWidthFollowsModel(t *testing.T) {
	src := "package p; interface a { f: func(self) -> usize default 0x100000000; g: func(self) -> u8 default 0xff; }"
	f, err := idl.Parse("test.vtl", src)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Compile(f, Options{Model: LP64}); err != nil {
		t.Errorf("lp64: %v", err)
	}
	_, err = Compile(f, Options{Model: ILP32})
	ve := findError(err, verrors.KindMethod)
	if ve == nil || ve.Method != "f" || !strings.Contains(ve.Detail, "32 bits") {
		t.Errorf("ilp32 error = %v", err)
	}
	if n := len(multierr.Errors(err)); n != 1 {
		t.Errorf("errors = %d, want 1: %v", n, err)
	}
}

func TestCompile_DefaultModelIsHost(t *testing.T) {
	pkg := mustCompile(t, shapesSource, Options{})
	if pkg.Model != HostDataModel() {
		t.Errorf("model = %s, want host %s", pkg.Model, HostDataModel())
	}
	if got, want := pkg.Lookup("derived").Size, 3*HostDataModel().PointerSize(); got != want {
		t.Errorf("derived size = %d, want %d", got, want)
	}
}

func TestCompile_BadOptions(t *testing.T) {
	f := &ast.File{Name: "x.vtl", Package: "p"}
	if _, err := Compile(f, Options{DefaultABI: "pascal"}); err == nil {
		t.Error("unknown default ABI should fail")
	}
	if _, err := Compile(f, Options{Model: "lp128"}); err == nil {
		t.Error("unknown data model should fail")
	}
}

func TestMethod_Signature(t *testing.T) {
	pkg := mustCompile(t, shapesSource, Options{})
	tests := []struct {
		slot string
		want string
	}{
		{"a", `extern "C" func(this: ref<T>, u32) -> bool`},
		{"b", `unsafe extern "C" func(this: ref<T>, ptr<u8>, u32) -> bool`},
		{"c", `extern "C" func(this: mutref<T>) -> usize`},
	}
	derived := pkg.Lookup("derived")
	for i, tc := range tests {
		if got := derived.Slots[i].Method.Signature(); got != tc.want {
			t.Errorf("%s signature = %s, want %s", tc.slot, got, tc.want)
		}
	}
}

func TestParseDataModel(t *testing.T) {
	for _, s := range []string{"lp64", "LLP64", " ilp32 ", "wasm32"} {
		if _, err := ParseDataModel(s); err != nil {
			t.Errorf("ParseDataModel(%q): %v", s, err)
		}
	}
	_, err := ParseDataModel("lp128")
	if !errors.Is(err, &verrors.Error{Phase: verrors.PhaseConfig, Kind: verrors.KindInvalidInput}) {
		t.Errorf("unexpected error %v", err)
	}
	if HostDataModel().PointerSize() == 0 {
		t.Error("host pointer size is zero")
	}
}
