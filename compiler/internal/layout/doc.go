// Package layout computes the binary layout of vtable records.
//
// A record is a C struct whose members are code pointers, optionally preceded
// by the record of its base interface:
//   - the base record, when present, sits at offset 0 and keeps its own layout
//   - each slot is one pointer, placed in declaration order
//   - padding is only inserted to reach natural alignment
//
// The same rules give the layout of a C++ single-inheritance vtable from its
// address point, which is what foreign code indexes into.
//
// This package is internal to the compiler.
package layout
