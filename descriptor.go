package vtable

import (
	"fmt"
	"strings"
)

// Layout is implemented by every generated layout record. It associates the
// record type with the interface it was generated from.
type Layout interface {
	Descriptor() *Descriptor
}

// Descriptor describes one interface: its own slots and its base.
// Descriptors are package level values in generated code and are never
// modified.
type Descriptor struct {
	Base    *Descriptor
	Package string
	Name    string
	Slots   []Slot
}

// Slot describes one function field of a layout record.
type Slot struct {
	// Name is the method name in the interface description.
	Name string
	// Field is the Go field name in the layout record.
	Field string
	// ABI is the normalized calling convention.
	ABI string
	// Params and Result are interface description types; Result is empty
	// for methods without a result.
	Params     []string
	Result     string
	Mutable    bool
	Unsafe     bool
	HasDefault bool
}

// Signature renders the slot the way the generator records it.
func (s Slot) Signature() string {
	var b strings.Builder
	if s.Unsafe {
		b.WriteString("unsafe ")
	}
	fmt.Fprintf(&b, "extern %q func(", s.ABI)
	if s.Mutable {
		b.WriteString("this: mutref<T>")
	} else {
		b.WriteString("this: ref<T>")
	}
	for _, p := range s.Params {
		b.WriteString(", ")
		b.WriteString(p)
	}
	b.WriteByte(')')
	if s.Result != "" {
		b.WriteString(" -> ")
		b.WriteString(s.Result)
	}
	return b.String()
}

// QualifiedName returns "package.name".
func (d *Descriptor) QualifiedName() string {
	if d.Package == "" {
		return d.Name
	}
	return d.Package + "." + d.Name
}

// AllSlots returns the slots of the whole chain, root base first. Slot i of
// the result is field i of the flattened layout record.
func (d *Descriptor) AllSlots() []Slot {
	if d.Base == nil {
		return d.Slots
	}
	base := d.Base.AllSlots()
	out := make([]Slot, 0, len(base)+len(d.Slots))
	out = append(out, base...)
	return append(out, d.Slots...)
}

// Depth is the number of bases above d.
func (d *Descriptor) Depth() int {
	n := 0
	for b := d.Base; b != nil; b = b.Base {
		n++
	}
	return n
}

// Extends reports whether other is d or one of its bases.
func (d *Descriptor) Extends(other *Descriptor) bool {
	for cur := d; cur != nil; cur = cur.Base {
		if cur == other {
			return true
		}
	}
	return false
}

// Slot returns the slot with the given interface description name, searching
// the whole chain, and its flattened index.
func (d *Descriptor) Slot(name string) (Slot, int, bool) {
	for i, s := range d.AllSlots() {
		if s.Name == name {
			return s, i, true
		}
	}
	return Slot{}, -1, false
}

func (d *Descriptor) String() string {
	if d.Base == nil {
		return d.QualifiedName()
	}
	return d.QualifiedName() + ": " + d.Base.QualifiedName()
}
