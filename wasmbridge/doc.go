// Package wasmbridge exposes vtables to WebAssembly guests running in wazero.
//
// Export turns one layout record into a host module. The module is named
// after the interface ("shapes.derived") and exports one function per slot
// of the flattened layout. A guest imports them like any other host
// function:
//
//	(import "shapes.derived" "c" (func $c (param i32) (result i32)))
//
// The first parameter of every function is a handle from the bridge's
// Objects table naming the Go object to call. The remaining parameters are
// the slot's own, lowered through their WIT primitive types to core wasm
// types. Guests are assumed to be wasm32: usize and isize are i32, and
// pointers are i32 offsets into the caller's memory, 0 being nil.
//
// Calls go through the record's function fields, so a guest sees exactly
// the behavior native callers of the same vtable see:
//
//	b, _ := wasmbridge.New(runtime, nil)
//	wasmbridge.Export(ctx, b, shapes.DerivedVtable[Square]())
//	h, _ := b.Objects().Insert(&Square{})
//	// guest calls "c"(h)
package wasmbridge
