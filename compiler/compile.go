package compiler

import (
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/vtable/compiler/internal/layout"
	"github.com/wippyai/vtable/errors"
	"github.com/wippyai/vtable/idl/ast"
)

// Options controls compilation.
type Options struct {
	// DefaultABI is given to methods without an explicit convention.
	// Empty means DefaultABI ("C").
	DefaultABI string
	// Model selects pointer width. Empty means HostDataModel.
	Model DataModel
}

func (o Options) withDefaults() Options {
	if o.DefaultABI == "" {
		o.DefaultABI = DefaultABI
	}
	if o.Model == "" {
		o.Model = HostDataModel()
	}
	return o
}

// Compile validates every interface of f, resolves bases and derives the
// layout records. Problems from all interfaces are collected; if there is
// any, no package is returned.
func Compile(f *ast.File, opts Options) (*Package, error) {
	opts = opts.withDefaults()
	if !KnownABI(opts.DefaultABI) {
		return nil, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Value(opts.DefaultABI).
			Detail("unsupported default calling convention %q", opts.DefaultABI).
			Build()
	}
	if _, err := ParseDataModel(string(opts.Model)); err != nil {
		return nil, err
	}

	var errs error
	for _, iface := range f.Interfaces {
		errs = multierr.Append(errs, validateInterface(iface, opts.Model))
	}
	res := newResolver()
	errs = multierr.Append(errs, res.resolve(f.Interfaces))
	if errs != nil {
		Logger().Debug("compile failed",
			zap.String("file", f.Name),
			zap.Int("errors", len(multierr.Errors(errs))))
		return nil, errs
	}

	c := &unitBuilder{
		res:   res,
		opts:  opts,
		calc:  layout.NewCalculator(opts.Model.PointerSize(), opts.Model.PointerAlign()),
		units: make(map[*ast.Interface]*Unit),
		recs:  make(map[*ast.Interface]*layout.Record),
	}
	pkg := &Package{
		Name:  f.Package,
		File:  f.Name,
		Model: opts.Model,
		Units: make([]*Unit, 0, len(f.Interfaces)),
	}
	for _, iface := range f.Interfaces {
		u := c.unit(iface)
		pkg.Units = append(pkg.Units, u)
		Logger().Debug("compiled interface",
			zap.String("interface", u.QualifiedName(pkg.Name)),
			zap.String("base", baseName(iface)),
			zap.Int("slots", len(u.Slots)),
			zap.Uint32("size", u.Size),
			zap.String("model", string(opts.Model)))
	}
	return pkg, nil
}

type unitBuilder struct {
	res   *resolver
	calc  *layout.Calculator
	units map[*ast.Interface]*Unit
	recs  map[*ast.Interface]*layout.Record
	opts  Options
}

// unit builds the unit of iface after the unit of its base.
func (c *unitBuilder) unit(iface *ast.Interface) *Unit {
	if u, ok := c.units[iface]; ok {
		return u
	}

	u := &Unit{Name: iface.Name, Pos: iface.Pos}
	rec := &layout.Record{Name: iface.Name}
	if b := c.res.base(iface); b != nil {
		u.Base = c.unit(b)
		rec.Base = c.recs[b]
		u.Slots = append(u.Slots, u.Base.Slots...)
	}

	for _, m := range iface.Methods() {
		u.Methods = append(u.Methods, c.method(m))
	}
	rec.Slots = len(u.Methods)

	info := c.calc.Calculate(rec)
	ptr := c.calc.Pointer()
	for i, m := range u.Methods {
		u.Slots = append(u.Slots, Slot{
			Method: m,
			Name:   m.Name,
			Owner:  iface.Name,
			Index:  len(u.Slots),
			Offset: info.FieldOffs[i],
			Size:   ptr.Size,
		})
	}
	u.Size = info.Size
	u.Align = info.Align

	c.units[iface] = u
	c.recs[iface] = rec
	return u
}

// method normalizes the calling convention and strips the receiver.
func (c *unitBuilder) method(m *ast.Method) *Method {
	out := &Method{
		Result:   m.Result,
		Default:  m.Default,
		Name:     m.Name,
		ABI:      m.ABI,
		Receiver: m.Receiver(),
		Unsafe:   m.Unsafe,
	}
	if out.ABI == "" {
		out.ABI = c.opts.DefaultABI
		out.ABIDefaulted = true
	}
	for _, p := range m.Args() {
		out.Params = append(out.Params, Param{Name: p.Name, Type: p.Type})
	}
	return out
}
