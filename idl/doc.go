// Package idl parses vtable interface descriptions (.vtl files).
//
// A description declares a package and a list of interfaces whose methods
// become vtable slots:
//
//	package shapes;
//
//	interface base {
//		a: func(self, arg1: u32) -> bool default false;
//		b: unsafe func(self, arg1: ptr<u8>, arg2: u32) -> bool;
//	}
//
//	interface derived: base {
//		c: func(mut self) -> usize;
//	}
//
// Receivers are written as the first parameter: self (shared reference),
// mut self (mutable reference) or own self (by value). Calling conventions
// are given with extern "name" before func. Comments start with //.
//
// The parser accepts constructs the layout compiler rejects (generic
// parameters, several bases, constants and type members, by-value receivers)
// so that the compiler can report them by name. Only malformed text fails here.
package idl
