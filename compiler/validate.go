package compiler

import (
	"fmt"
	"strconv"

	"go.uber.org/multierr"

	"github.com/wippyai/vtable/errors"
	"github.com/wippyai/vtable/idl/ast"
)

// validateInterface checks the shape of one interface and each of its
// methods. Every problem found is returned, not only the first. model sizes
// usize and isize defaults.
func validateInterface(iface *ast.Interface, model DataModel) error {
	var errs error
	shape := func(pos ast.Pos, format string, args ...any) {
		e := errors.Shape(iface.Name, fmt.Sprintf(format, args...))
		e.Pos = pos.String()
		errs = multierr.Append(errs, e)
	}

	for _, g := range iface.Generics {
		if g.Lifetime {
			shape(g.Pos, "interface cannot be given a lifetime (%s)", g.Name)
		} else {
			shape(g.Pos, "interface cannot have type parameters (%s)", g.Name)
		}
	}
	if iface.Auto {
		shape(iface.Pos, "auto interfaces have no vtable")
	}
	if iface.Unsafe {
		shape(iface.Pos, "unsafe interfaces are not supported")
	}
	if len(iface.Members) == 0 {
		shape(iface.Pos, "interface has no methods")
	}

	if len(iface.Bounds) > 1 {
		shape(iface.Bounds[1].Pos, "interface can extend at most one base, got %d", len(iface.Bounds))
	}
	for _, b := range iface.Bounds {
		switch {
		case b.Kind == ast.BoundLifetime:
			shape(b.Pos, "base cannot be a lifetime bound (%s)", b.Name)
		case !b.Plain():
			shape(b.Pos, "base must be a plain interface reference, got %s", b)
		}
	}

	for _, m := range iface.Members {
		switch m := m.(type) {
		case *ast.Method:
			errs = multierr.Append(errs, validateMethod(iface.Name, m, model))
		case *ast.Const:
			shape(m.Pos, "only methods are allowed, found constant %q", m.Name)
		case *ast.TypeDecl:
			shape(m.Pos, "only methods are allowed, found associated type %q", m.Name)
		}
	}
	return errs
}

func validateMethod(iface string, m *ast.Method, model DataModel) error {
	var errs error
	fail := func(format string, args ...any) {
		e := errors.Method(iface, m.Name, fmt.Sprintf(format, args...))
		e.Pos = m.Pos.String()
		errs = multierr.Append(errs, e)
	}

	switch recv := m.Receiver(); recv {
	case ast.NoReceiver:
		fail("method must take a self reference (self or mut self) as its first parameter")
	case ast.ValueReceiver:
		fail("receiver taken by value (own self); use self or mut self")
	}

	names := make(map[string]bool)
	for _, p := range m.Args() {
		if p.Receiver != ast.NoReceiver {
			fail("%s must be the first parameter", p.Receiver)
			continue
		}
		if p.Name == "" {
			continue
		}
		if p.Name == "this" {
			fail("parameter name %q is reserved", p.Name)
		}
		if names[p.Name] {
			fail("duplicate parameter %q", p.Name)
		}
		names[p.Name] = true
	}

	if m.ABI != "" && !KnownABI(m.ABI) {
		fail("unsupported calling convention %q", m.ABI)
	}

	if m.Default != nil {
		if msg := checkDefault(m, model); msg != "" {
			fail("%s", msg)
		}
	}
	return errs
}

// checkDefault reports why a default body does not fit the method result,
// or "" when it does.
func checkDefault(m *ast.Method, model DataModel) string {
	lit := m.Default.Value
	switch {
	case lit == nil && m.Result == nil:
		return ""
	case lit == nil:
		return fmt.Sprintf("default body must return a %s value", m.Result)
	case m.Result == nil:
		return fmt.Sprintf("default body returns %s but the method has no result", lit.Text)
	}

	res := *m.Result
	ok := false
	switch lit.Kind {
	case ast.LitBool:
		ok = res.Kind == ast.Bool
	case ast.LitInt:
		ok = res.Kind != ast.Bool && !res.IsPointer()
		if ok && !res.IsFloat() {
			if msg := checkIntRange(lit.Text, res, model); msg != "" {
				return msg
			}
		}
	case ast.LitFloat:
		ok = res.IsFloat()
	case ast.LitNull:
		ok = res.IsPointer()
	}
	if !ok {
		return fmt.Sprintf("default %s cannot be returned as %s", lit.Text, res)
	}
	return ""
}

// intBits returns the width of an integer result under model.
func intBits(t ast.Type, model DataModel) int {
	switch t.Kind {
	case ast.U8, ast.I8:
		return 8
	case ast.U16, ast.I16:
		return 16
	case ast.U32, ast.I32:
		return 32
	case ast.Usize, ast.Isize:
		return int(model.PointerSize()) * 8
	}
	return 64
}

func checkIntRange(text string, res ast.Type, model DataModel) string {
	bits := intBits(res, model)
	var err error
	switch {
	case res.IsSigned():
		_, err = strconv.ParseInt(text, 0, bits)
	case len(text) > 0 && text[0] == '-':
		return fmt.Sprintf("default %s does not fit unsigned result %s", text, res)
	default:
		_, err = strconv.ParseUint(text, 0, bits)
	}
	if err == nil {
		return ""
	}
	if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
		return fmt.Sprintf("default %s does not fit %s (%d bits)", text, res, bits)
	}
	return fmt.Sprintf("default %s is not a valid integer", text)
}
