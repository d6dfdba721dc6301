package vtable

import (
	"unsafe"

	"github.com/wippyai/vtable/errors"
)

// Ptr is a pointer to a layout record: one machine word, copied by value,
// owning nothing. The zero Ptr refers to the registered record of type L
// once one has been built.
type Ptr[L Layout] struct {
	table *L
}

// NewPtr returns a Ptr to the process wide record of type L, building it with
// build if needed. It never fails.
func NewPtr[L Layout](build func() L) Ptr[L] {
	return Ptr[L]{table: Instance(build)}
}

// Table returns the record. A zero Ptr resolves the registered record and
// panics if none was built yet.
func (p Ptr[L]) Table() *L {
	if p.table != nil {
		return p.table
	}
	if t, ok := Lookup[L](); ok {
		return t
	}
	var zero L
	panic(errors.NotInitialized(errors.PhaseRuntime, "vtable "+zero.Descriptor().QualifiedName()))
}

// IsZero reports whether p was never set.
func (p Ptr[L]) IsZero() bool {
	return p.table == nil
}

// Canonical reports whether p refers to the registered record.
func (p Ptr[L]) Canonical() bool {
	t, ok := Lookup[L]()
	if !ok {
		return false
	}
	return p.table == nil || p.table == t
}

// Addr returns the address of the record. It identifies the record in logs
// and comparisons; the record is Go memory and is not callable from C.
func (p Ptr[L]) Addr() uintptr {
	return uintptr(unsafe.Pointer(p.Table()))
}

// SetTable points p at another record of the same type.
//
// Unsafe: code holding p then calls t's functions instead of the
// implementer's methods, and Canonical reports false.
func (p *Ptr[L]) SetTable(t *L) {
	p.table = t
}
