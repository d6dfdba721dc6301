// Package cxx emits a C++ header describing compiled vtable interfaces.
//
// The header declares, inside a namespace named after the package:
//   - an abstract class per interface whose virtual functions occupy the same
//     slots as the Go layout record (single inheritance, no virtual
//     destructor so no hidden slots are added)
//   - a C struct mirror name_vtable of the table, base struct first
//   - static_asserts pinning sizes and offsets for the compiled data model,
//     active only when the target pointer width matches
package cxx

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/wippyai/vtable/codegen/internal/naming"
	"github.com/wippyai/vtable/codegen/internal/types"
	"github.com/wippyai/vtable/compiler"
	"github.com/wippyai/vtable/errors"
)

// Options configures the C++ generator.
type Options struct {
	// Namespace overrides the namespace. Defaults to the package name.
	Namespace string
	// Guard overrides the include guard macro.
	Guard string
}

// Generator emits one header per compiled package.
type Generator struct {
	opts Options
}

func New(opts Options) *Generator {
	return &Generator{opts: opts}
}

func (g *Generator) Language() string      { return "cxx" }
func (g *Generator) FileExtension() string { return ".h" }

// Calling convention attributes per compiler family. Conventions without an
// entry need no attribute.
var conventions = map[string]struct{ msvc, gnu string }{
	"cdecl":      {"__cdecl", "__attribute__((cdecl))"},
	"stdcall":    {"__stdcall", "__attribute__((stdcall))"},
	"fastcall":   {"__fastcall", "__attribute__((fastcall))"},
	"thiscall":   {"__thiscall", "__attribute__((thiscall))"},
	"vectorcall": {"__vectorcall", "__attribute__((vectorcall))"},
	"system":     {"__stdcall", ""},
	"win64":      {"", "__attribute__((ms_abi))"},
	"efiapi":     {"", "__attribute__((ms_abi))"},
	"sysv64":     {"", "__attribute__((sysv_abi))"},
	"aapcs":      {"", `__attribute__((pcs("aapcs")))`},
}

var tmpl = template.Must(template.New("header").Parse(headerTemplate))

type headerView struct {
	Source      string
	Model       string
	Guard       string
	Namespace   string
	PtrMax      string
	Conventions []conventionView
	Interfaces  []*ifaceView
}

type conventionView struct {
	Macro string
	MSVC  string
	GNU   string
}

type ifaceView struct {
	Name    string
	Base    string
	Methods []*methodView
	Asserts []assertView
	Size    uint32
}

type methodView struct {
	Name      string
	Result    string
	Call      string // calling convention macro, with trailing space
	Params    string
	SlotArgs  string
	Const     string
	SelfType  string
	Default   string
	HasBody   bool
	Offset    uint32
	Index     int
	Signature string
}

type assertView struct {
	Member string
	Offset uint32
}

// Generate renders the header for pkg.
func (g *Generator) Generate(pkg *compiler.Package) ([]byte, error) {
	view, err := g.build(pkg)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, view); err != nil {
		return nil, errors.Wrap(errors.PhaseEmit, errors.KindIO, err, "render C++ header")
	}
	return buf.Bytes(), nil
}

func (g *Generator) build(pkg *compiler.Package) (*headerView, error) {
	base := strings.TrimSuffix(filepath.Base(pkg.File), filepath.Ext(pkg.File))
	view := &headerView{
		Source:    filepath.Base(pkg.File),
		Model:     string(pkg.Model),
		Guard:     g.opts.Guard,
		Namespace: g.opts.Namespace,
		PtrMax:    "0xFFFFFFFFFFFFFFFFu",
	}
	if view.Guard == "" {
		view.Guard = naming.Macro(base) + "_VTABLE_H"
	}
	if view.Namespace == "" {
		view.Namespace = naming.Cxx(pkg.Name, 0)
	}
	if pkg.Model.PointerSize() == 4 {
		view.PtrMax = "0xFFFFFFFFu"
	}

	used := make(map[string]bool)
	for _, u := range pkg.Units {
		iv := &ifaceView{Name: naming.Cxx(u.Name, 0), Size: u.Size}
		if u.Base != nil {
			iv.Base = naming.Cxx(u.Base.Name, 0)
			iv.Asserts = append(iv.Asserts, assertView{Member: "parent", Offset: 0})
		}

		members := map[string]bool{"parent": u.Base != nil}
		for _, s := range u.Slots {
			name := naming.Cxx(s.Name, 0)
			if name == iv.Name {
				return nil, errors.New(errors.PhaseEmit, errors.KindDuplicate).
					Interface(u.Name).
					Method(s.Name).
					Detail("method would be a constructor of class %s", iv.Name).
					Build()
			}
			if members[name] {
				return nil, errors.New(errors.PhaseEmit, errors.KindDuplicate).
					Interface(u.Name).
					Method(s.Name).
					Detail("member %s is already declared in %s_vtable", name, iv.Name).
					Build()
			}
			members[name] = true
		}

		for _, s := range u.OwnSlots() {
			mv := method(s)
			if s.Method.ABI != compiler.DefaultABI && s.Method.ABI != "" {
				if _, ok := conventions[s.Method.ABI]; ok {
					mv.Call = conventionMacro(s.Method.ABI) + " "
					used[s.Method.ABI] = true
				}
			}
			iv.Methods = append(iv.Methods, mv)
			iv.Asserts = append(iv.Asserts, assertView{Member: mv.Name, Offset: s.Offset})
		}
		view.Interfaces = append(view.Interfaces, iv)
	}

	abis := make([]string, 0, len(used))
	for abi := range used {
		abis = append(abis, abi)
	}
	sort.Strings(abis)
	for _, abi := range abis {
		c := conventions[abi]
		view.Conventions = append(view.Conventions, conventionView{
			Macro: conventionMacro(abi),
			MSVC:  c.msvc,
			GNU:   c.gnu,
		})
	}
	return view, nil
}

func conventionMacro(abi string) string {
	return "VTABLEGEN_" + naming.Macro(abi)
}

func method(s compiler.Slot) *methodView {
	m := s.Method
	mv := &methodView{
		Name:      naming.Cxx(m.Name, 0),
		Result:    "void",
		Offset:    s.Offset,
		Index:     s.Index,
		Signature: m.Signature(),
		SelfType:  "const void*",
		Const:     " const",
	}
	if m.Mutable() {
		mv.SelfType = "void*"
		mv.Const = ""
	}
	if m.Result != nil {
		mv.Result = types.Cxx(*m.Result)
	}

	params := make([]string, len(m.Params))
	for i, p := range m.Params {
		params[i] = types.Cxx(p.Type) + " " + naming.Cxx(p.Name, i)
	}
	mv.Params = strings.Join(params, ", ")
	mv.SlotArgs = mv.SelfType + " self"
	if mv.Params != "" {
		mv.SlotArgs += ", " + mv.Params
	}

	if m.Default != nil {
		mv.HasBody = true
		if m.Default.Value != nil {
			mv.Default = fmt.Sprintf("return %s;", types.CxxLiteral(*m.Default.Value, *m.Result))
		}
	}
	return mv
}
