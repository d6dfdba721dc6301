package compiler

import (
	"fmt"
	"strings"

	"github.com/wippyai/vtable/idl/ast"
)

// Package is the compiled form of one interface description file.
type Package struct {
	Name  string
	File  string
	Model DataModel
	Units []*Unit
}

// Lookup returns the unit compiled for the named interface.
func (p *Package) Lookup(name string) *Unit {
	for _, u := range p.Units {
		if u.Name == name {
			return u
		}
	}
	return nil
}

// Unit is everything derived from one interface: its normalized methods and
// the layout record describing its vtable.
type Unit struct {
	Base    *Unit
	Name    string
	Methods []*Method
	Slots   []Slot
	Pos     ast.Pos
	Size    uint32
	Align   uint32
}

// QualifiedName returns "package.interface".
func (u *Unit) QualifiedName(pkg string) string {
	return pkg + "." + u.Name
}

// OwnSlots returns the slots declared by this interface, after the base's.
func (u *Unit) OwnSlots() []Slot {
	if u.Base == nil {
		return u.Slots
	}
	return u.Slots[len(u.Base.Slots):]
}

// BaseSize is the size of the embedded base record, 0 without a base.
func (u *Unit) BaseSize() uint32 {
	if u.Base == nil {
		return 0
	}
	return u.Base.Size
}

// Chain returns the inheritance chain from the root base to u.
func (u *Unit) Chain() []*Unit {
	var chain []*Unit
	for cur := u; cur != nil; cur = cur.Base {
		chain = append([]*Unit{cur}, chain...)
	}
	return chain
}

// Method is an interface method after calling convention normalization.
type Method struct {
	Result   *ast.Type
	Default  *ast.Default
	Name     string
	ABI      string
	Params   []Param
	Receiver ast.ReceiverKind
	Unsafe   bool
	// ABIDefaulted is set when the convention was not written in the source.
	ABIDefaulted bool
}

// Mutable reports whether the receiver is a mutable self reference.
func (m *Method) Mutable() bool {
	return m.Receiver == ast.MutRefReceiver
}

// Signature renders the method in source form with the receiver rewritten to
// the implementer reference. It is stable across runs and used as the ABI
// identity of a slot.
func (m *Method) Signature() string {
	var b strings.Builder
	if m.Unsafe {
		b.WriteString("unsafe ")
	}
	fmt.Fprintf(&b, "extern %q func(", m.ABI)
	if m.Mutable() {
		b.WriteString("this: mutref<T>")
	} else {
		b.WriteString("this: ref<T>")
	}
	for _, p := range m.Params {
		b.WriteString(", ")
		b.WriteString(p.Type.String())
	}
	b.WriteByte(')')
	if m.Result != nil {
		b.WriteString(" -> ")
		b.WriteString(m.Result.String())
	}
	return b.String()
}

// Param is a non-receiver parameter. An empty Name is anonymous.
type Param struct {
	Name string
	Type ast.Type
}

// Slot is one function pointer field of a layout record.
type Slot struct {
	Method *Method
	Name   string
	Owner  string
	Index  int
	Offset uint32
	Size   uint32
}
