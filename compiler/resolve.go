package compiler

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"github.com/wippyai/vtable/errors"
	"github.com/wippyai/vtable/idl/ast"
)

// resolver links every interface to its base within one file.
type resolver struct {
	byName map[string]*ast.Interface
	bases  map[string]*ast.Interface
}

func newResolver() *resolver {
	return &resolver{
		byName: make(map[string]*ast.Interface),
		bases:  make(map[string]*ast.Interface),
	}
}

// baseName returns the single base reference of iface, or "".
func baseName(iface *ast.Interface) string {
	for _, b := range iface.Bounds {
		if b.Plain() {
			return b.Name
		}
	}
	return ""
}

// resolve indexes the interfaces, links bases and checks the resulting
// chains. Interfaces whose bounds are malformed are skipped here; validation
// reports them.
func (r *resolver) resolve(ifaces []*ast.Interface) error {
	var errs error

	for _, iface := range ifaces {
		if prev, ok := r.byName[iface.Name]; ok {
			e := errors.New(errors.PhaseResolve, errors.KindDuplicate).
				Pos(iface.Pos.String()).
				Interface(iface.Name).
				Detail("interface already declared at %s", prev.Pos).
				Build()
			errs = multierr.Append(errs, e)
			continue
		}
		r.byName[iface.Name] = iface
	}

	for _, iface := range ifaces {
		if r.byName[iface.Name] != iface {
			continue
		}
		name := baseName(iface)
		if name == "" {
			continue
		}
		base, ok := r.byName[name]
		if !ok {
			e := errors.Unresolved(iface.Name, name)
			e.Pos = iface.Pos.String()
			errs = multierr.Append(errs, e)
			continue
		}
		r.bases[iface.Name] = base
	}

	for _, iface := range ifaces {
		if r.byName[iface.Name] != iface {
			continue
		}
		if path, member := r.cycle(iface); path != nil {
			detail := "inheritance cycle %s"
			if !member {
				detail = "base chain %s runs into a cycle"
			}
			e := errors.New(errors.PhaseResolve, errors.KindCycle).
				Pos(iface.Pos.String()).
				Interface(iface.Name).
				Detail(detail, strings.Join(path, " -> ")).
				Build()
			errs = multierr.Append(errs, e)
			continue
		}
		errs = multierr.Append(errs, r.checkNames(iface))
	}
	return errs
}

// cycle returns the base chain of iface up to the first repeated interface
// when the chain never ends. member reports whether iface itself is part of
// the cycle rather than only leading into it.
func (r *resolver) cycle(iface *ast.Interface) (path []string, member bool) {
	path = []string{iface.Name}
	seen := map[string]bool{iface.Name: true}
	for cur := r.bases[iface.Name]; cur != nil; cur = r.bases[cur.Name] {
		path = append(path, cur.Name)
		if seen[cur.Name] {
			return path, cur == iface
		}
		seen[cur.Name] = true
	}
	return nil, false
}

// checkNames rejects a method name declared twice in the interface or
// already declared somewhere in its base chain.
func (r *resolver) checkNames(iface *ast.Interface) error {
	var errs error
	owners := make(map[string]string)
	for base := r.bases[iface.Name]; base != nil; base = r.bases[base.Name] {
		for _, m := range base.Methods() {
			if _, ok := owners[m.Name]; !ok {
				owners[m.Name] = base.Name
			}
		}
	}

	own := make(map[string]bool)
	for _, m := range iface.Methods() {
		var detail string
		switch {
		case own[m.Name]:
			detail = "method declared twice"
		case owners[m.Name] != "":
			detail = fmt.Sprintf("method already declared by base interface %q", owners[m.Name])
		}
		own[m.Name] = true
		if detail == "" {
			continue
		}
		e := errors.New(errors.PhaseResolve, errors.KindDuplicate).
			Pos(m.Pos.String()).
			Interface(iface.Name).
			Method(m.Name).
			Detail("%s", detail).
			Build()
		errs = multierr.Append(errs, e)
	}
	return errs
}

// base returns the resolved base of iface.
func (r *resolver) base(iface *ast.Interface) *ast.Interface {
	return r.bases[iface.Name]
}
