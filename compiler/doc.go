// Package compiler turns parsed interface descriptions into vtable layouts.
//
// Compile checks that every interface can be represented as a C++-compatible
// single inheritance vtable and derives, per interface, a Unit holding:
//   - the methods with their calling convention normalized (DefaultABI when
//     none is written)
//   - the flattened slot list, base chain first, with index and byte offset
//     under the selected DataModel
//   - the record size and alignment
//
// Interfaces are rejected when they have type or lifetime parameters, more
// than one base, members other than methods, or methods without a self
// reference receiver. All interfaces of a file are checked and every problem
// is reported together; a file with any error produces no Package.
//
// The result feeds the code generators in package codegen and the ABI lock
// in package manifest.
package compiler
