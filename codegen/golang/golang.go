// Package golang emits Go source for compiled vtable interfaces.
//
// For every interface X the file declares the Go interface X, the
// XDefaults holder of default bodies, the XImpl[T] constraint, the
// XDescriptor value, the XLayout[T] record and its constructors
// NewXLayout, XVtable and NewXPtr. See package vtable for how the pieces
// fit together.
package golang

import (
	"bytes"
	"path/filepath"
	"strings"
	"text/template"

	"golang.org/x/tools/imports"

	"github.com/wippyai/vtable/codegen/internal/naming"
	"github.com/wippyai/vtable/codegen/internal/types"
	"github.com/wippyai/vtable/compiler"
	"github.com/wippyai/vtable/errors"
)

// RuntimeImport is the import path of the runtime support package.
const RuntimeImport = "github.com/wippyai/vtable"

// Options configures the Go generator.
type Options struct {
	// Package overrides the Go package name. Defaults to the description's
	// package name.
	Package string
	// RuntimeImport overrides the import path of package vtable.
	RuntimeImport string
}

// Generator emits one Go file per compiled package.
type Generator struct {
	opts Options
}

func New(opts Options) *Generator {
	if opts.RuntimeImport == "" {
		opts.RuntimeImport = RuntimeImport
	}
	return &Generator{opts: opts}
}

func (g *Generator) Language() string      { return "go" }
func (g *Generator) FileExtension() string { return ".go" }

var tmpl = template.Must(template.New("file").Parse(fileTemplate))

// Generate renders pkg and formats the result.
func (g *Generator) Generate(pkg *compiler.Package) ([]byte, error) {
	view, err := g.build(pkg)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, view); err != nil {
		return nil, errors.Wrap(errors.PhaseEmit, errors.KindIO, err, "render go source")
	}

	name := strings.TrimSuffix(filepath.Base(pkg.File), filepath.Ext(pkg.File)) + "_vtable.go"
	out, err := imports.Process(name, buf.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, errors.New(errors.PhaseEmit, errors.KindSyntax).
			Value(buf.String()).
			Cause(err).
			Detail("generated Go source does not parse").
			Build()
	}
	return out, nil
}

type fileView struct {
	Source     string
	Package    string
	Model      string
	Imports    []string
	Interfaces []*ifaceView
}

type ifaceView struct {
	Name     string
	GoName   string
	Base     string
	Pkg      string
	Model    string
	Methods  []*methodView
	Defaults []*methodView
	Slots    int
	Size     uint32
}

type methodView struct {
	Name         string
	GoName       string
	ABI          string
	ParamList    string
	ArgList      string
	IDLParams    string
	ResultSuffix string
	ResultIDL    string
	DefaultValue string
	Index        int
	Offset       uint32
	Unsafe       bool
	Mutable      bool
	HasDefault   bool
}

// Field and method names every layout record declares itself.
var layoutMembers = []string{"Descriptor", "Clone", "Base"}

func (g *Generator) build(pkg *compiler.Package) (*fileView, error) {
	view := &fileView{
		Source:  filepath.Base(pkg.File),
		Package: g.opts.Package,
		Model:   string(pkg.Model),
	}
	if view.Package == "" {
		view.Package = naming.GoPackage(pkg.Name)
	}

	usesUnsafe := false
	goNames := make(map[string]string)
	for _, u := range pkg.Units {
		iv := &ifaceView{
			Name:   u.Name,
			GoName: naming.Pascal(u.Name),
			Pkg:    pkg.Name,
			Model:  string(pkg.Model),
			Slots:  len(u.Slots),
			Size:   u.Size,
		}
		if prev, ok := goNames[iv.GoName]; ok {
			return nil, emitError(u.Name, "", "Go name %s already used by interface %q", iv.GoName, prev)
		}
		goNames[iv.GoName] = u.Name
		if u.Base != nil {
			iv.Base = naming.Pascal(u.Base.Name)
		}

		fields := make(map[string]string)
		for _, m := range layoutMembers {
			fields[m] = "the layout record"
		}
		if iv.Base != "" {
			fields[iv.Base+"Layout"] = "the embedded base record"
		}
		for _, s := range u.Slots {
			field := naming.Pascal(s.Name)
			if prev, ok := fields[field]; ok {
				return nil, emitError(u.Name, s.Name, "field %s collides with %s", field, prev)
			}
			fields[field] = "slot " + s.Name
		}

		for _, s := range u.OwnSlots() {
			mv, unsafePtr := method(s)
			usesUnsafe = usesUnsafe || unsafePtr
			iv.Methods = append(iv.Methods, mv)
			if mv.HasDefault {
				iv.Defaults = append(iv.Defaults, mv)
			}
		}
		view.Interfaces = append(view.Interfaces, iv)
	}

	if usesUnsafe {
		view.Imports = append(view.Imports, "unsafe")
	}
	view.Imports = append(view.Imports, g.opts.RuntimeImport)
	return view, nil
}

func method(s compiler.Slot) (*methodView, bool) {
	m := s.Method
	mv := &methodView{
		Name:       m.Name,
		GoName:     naming.Pascal(m.Name),
		ABI:        m.ABI,
		Index:      s.Index,
		Offset:     s.Offset,
		Unsafe:     m.Unsafe,
		Mutable:    m.Mutable(),
		HasDefault: m.Default != nil,
	}

	usesUnsafe := false
	params := make([]string, len(m.Params))
	args := make([]string, len(m.Params))
	idl := make([]string, len(m.Params))
	for i, p := range m.Params {
		goType, u := types.Go(p.Type)
		usesUnsafe = usesUnsafe || u
		name := naming.GoParam(p.Name, i)
		params[i] = name + " " + goType
		args[i] = name
		idl[i] = `"` + p.Type.String() + `"`
	}
	mv.ParamList = strings.Join(params, ", ")
	mv.ArgList = strings.Join(args, ", ")
	mv.IDLParams = strings.Join(idl, ", ")

	if m.Result != nil {
		goType, u := types.Go(*m.Result)
		usesUnsafe = usesUnsafe || u
		mv.ResultSuffix = " " + goType
		mv.ResultIDL = m.Result.String()
	}
	if m.Default != nil && m.Default.Value != nil {
		mv.DefaultValue = types.GoLiteral(*m.Default.Value)
	}
	return mv, usesUnsafe
}

func emitError(iface, method, format string, args ...any) *errors.Error {
	return errors.New(errors.PhaseEmit, errors.KindDuplicate).
		Interface(iface).
		Method(method).
		Detail(format, args...).
		Build()
}
