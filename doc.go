// Package vtable is the runtime support for generated vtable layouts.
//
// The vtablegen command compiles interface descriptions (.vtl files) into Go
// code. For every interface X it emits a layout record XLayout[T]: a struct of
// function fields, one per method, with the slot offsets of a C++ single
// inheritance vtable. A derived interface embeds its base record as the first
// field, so base slots sit at the same offsets in both records and are
// promoted.
//
//	type BaseLayout[T any] struct {
//		A func(this *T, arg1 uint32) bool
//		B func(this *T, arg1 *uint8, arg2 uint32) bool
//	}
//
//	type DerivedLayout[T any] struct {
//		BaseLayout[T]
//		C func(this *T) uint
//	}
//
// Only the offsets match the generated C++ header. Each slot holds a Go func
// value, not a C code pointer, so a record cannot be handed to C or C++ code
// as a vtable. Foreign callers reach a record through package wasmbridge,
// which exports its slots to WebAssembly guests.
//
// This package holds what every generated file shares:
//
//   - Descriptor and Layout: the association from a record type to its
//     interface, slot names and calling conventions
//   - Instance and Lookup: the process wide registry that builds exactly one
//     record per (interface, implementer) pair and hands out its address
//   - Ptr: a one word handle to a record, the Go form of a vptr
//   - Check and Upcast: reflection checks of the Go struct layout and the
//     conversion of a derived table pointer into its base table pointer
//
// # Usage
//
// Given generated code for the shapes example:
//
//	table := shapes.DerivedVtable[Impl]()
//	ok := table.A(&impl, 42) // through the base slot, promoted
//	n := table.C(&impl)
//
//	base, err := vtable.Upcast[shapes.BaseLayout[Impl]](table)
//
// # Thread Safety
//
// Records are built once under a sync.Once and never modified afterwards.
// All functions in this package are safe for concurrent use. Ptr.SetTable is
// not synchronized and replaces the canonical record; it is meant for
// interposition in tests.
package vtable
