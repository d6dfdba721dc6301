// Package ast declares the syntax tree of vtable interface descriptions.
//
// The tree keeps every construct the grammar accepts, including the ones the
// layout compiler rejects (generic parameters, multiple bounds, constants,
// receivers taken by value), so rejections can name exactly what is wrong.
package ast

import (
	"fmt"
	"strings"
)

// Pos is a source position.
type Pos struct {
	File string
	Line int
	Col  int
}

func (p Pos) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Col)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

// File is one parsed .vtl source.
type File struct {
	Name       string
	Package    string
	Interfaces []*Interface
}

// Lookup returns the interface with the given name.
func (f *File) Lookup(name string) *Interface {
	for _, iface := range f.Interfaces {
		if iface.Name == name {
			return iface
		}
	}
	return nil
}

// Interface is an interface declaration.
type Interface struct {
	Name     string
	Generics []Generic
	Bounds   []Bound
	Members  []Member
	Pos      Pos
	Unsafe   bool
	Auto     bool
}

// Methods returns the method members in declaration order.
func (i *Interface) Methods() []*Method {
	var out []*Method
	for _, m := range i.Members {
		if fn, ok := m.(*Method); ok {
			out = append(out, fn)
		}
	}
	return out
}

// Generic is a declared parameter of an interface.
type Generic struct {
	Name     string
	Pos      Pos
	Lifetime bool
}

type BoundKind int

const (
	BoundInterface BoundKind = iota
	BoundLifetime
)

// Bound is one entry of an interface's base list.
type Bound struct {
	Name string
	Args []Type
	Pos  Pos
	Kind BoundKind
}

// Plain reports whether the bound is a single interface reference without
// type arguments.
func (b Bound) Plain() bool {
	return b.Kind == BoundInterface && len(b.Args) == 0
}

func (b Bound) String() string {
	if len(b.Args) == 0 {
		return b.Name
	}
	args := make([]string, len(b.Args))
	for i, a := range b.Args {
		args[i] = a.String()
	}
	return b.Name + "<" + strings.Join(args, ", ") + ">"
}

// Member is an item in an interface body.
type Member interface {
	MemberName() string
	Position() Pos
	member()
}

// Method is a function member.
type Method struct {
	Result  *Type
	Default *Default
	Name    string
	ABI     string
	Params  []Param
	Pos     Pos
	Unsafe  bool
}

func (m *Method) MemberName() string { return m.Name }
func (m *Method) Position() Pos      { return m.Pos }
func (*Method) member()              {}

// Receiver returns the receiver kind of the method: the kind of its first
// parameter, or NoReceiver.
func (m *Method) Receiver() ReceiverKind {
	if len(m.Params) == 0 {
		return NoReceiver
	}
	return m.Params[0].Receiver
}

// Args returns the parameters after the receiver.
func (m *Method) Args() []Param {
	if m.Receiver() == NoReceiver {
		return m.Params
	}
	return m.Params[1:]
}

// Const is an associated constant. Never valid in a vtable interface.
type Const struct {
	Value Literal
	Name  string
	Type  Type
	Pos   Pos
}

func (c *Const) MemberName() string { return c.Name }
func (c *Const) Position() Pos      { return c.Pos }
func (*Const) member()              {}

// TypeDecl is an associated type. Never valid in a vtable interface.
type TypeDecl struct {
	Target *Type
	Name   string
	Pos    Pos
}

func (t *TypeDecl) MemberName() string { return t.Name }
func (t *TypeDecl) Position() Pos      { return t.Pos }
func (*TypeDecl) member()              {}

type ReceiverKind int

const (
	NoReceiver ReceiverKind = iota
	RefReceiver
	MutRefReceiver
	ValueReceiver
)

func (k ReceiverKind) String() string {
	switch k {
	case RefReceiver:
		return "self"
	case MutRefReceiver:
		return "mut self"
	case ValueReceiver:
		return "own self"
	}
	return "none"
}

// IsRef reports whether the receiver is a self reference.
func (k ReceiverKind) IsRef() bool {
	return k == RefReceiver || k == MutRefReceiver
}

// Param is a method parameter. Receiver parameters have a Receiver kind and
// no type; an empty Name marks an anonymous parameter.
type Param struct {
	Name     string
	Type     Type
	Pos      Pos
	Receiver ReceiverKind
}

// Default is a default method body. A nil Value is an empty body.
type Default struct {
	Value *Literal
}

type LitKind int

const (
	LitBool LitKind = iota
	LitInt
	LitFloat
	LitNull
)

// Literal is a constant in the source.
type Literal struct {
	Text string
	Kind LitKind
}

func (l Literal) String() string { return l.Text }
