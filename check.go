package vtable

import (
	"reflect"
	"unsafe"

	"go.uber.org/multierr"

	"github.com/wippyai/vtable/errors"
)

const ptrSize = unsafe.Sizeof(uintptr(0))

var layoutType = reflect.TypeFor[Layout]()

// field is a function field of a flattened layout record.
type field struct {
	typ    reflect.Type
	name   string
	offset uintptr
}

// flatten walks a layout record, descending into the embedded base record.
// Embedded records must be the first field.
func flatten(t reflect.Type, at uintptr, out []field) ([]field, error) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			if i != 0 {
				return nil, errors.New(errors.PhaseVerify, errors.KindShape).
					Detail("%s: embedded %s must be the first field", t, f.Type).
					Build()
			}
			var err error
			if out, err = flatten(f.Type, at+f.Offset, out); err != nil {
				return nil, err
			}
			continue
		}
		out = append(out, field{typ: f.Type, name: f.Name, offset: at + f.Offset})
	}
	return out, nil
}

// Check verifies that the Go struct L matches its descriptor: exactly the
// descriptor's slots in flattened order, each a function field taking the
// implementer pointer first, slot i at offset i times the pointer size, and
// the base record embedded at offset 0.
func Check[L Layout]() error {
	var zero L
	desc := zero.Descriptor()
	t := reflect.TypeFor[L]()
	if t.Kind() != reflect.Struct {
		return errors.TypeMismatch(errors.PhaseVerify, "layout "+desc.QualifiedName(), "struct", t.Kind().String())
	}

	fields, err := flatten(t, 0, nil)
	if err != nil {
		return err
	}

	var errs error
	fail := func(format string, args ...any) {
		errs = multierr.Append(errs, errors.New(errors.PhaseVerify, errors.KindShape).
			Interface(desc.QualifiedName()).
			Detail(format, args...).
			Build())
	}

	slots := desc.AllSlots()
	if len(fields) != len(slots) {
		fail("%s has %d fields, descriptor has %d slots", t, len(fields), len(slots))
	}
	for i := 0; i < min(len(fields), len(slots)); i++ {
		f, s := fields[i], slots[i]
		if f.name != s.Field {
			fail("field %d is %s, want %s", i, f.name, s.Field)
		}
		if f.offset != uintptr(i)*ptrSize {
			fail("field %s at offset %d, want %d", f.name, f.offset, uintptr(i)*ptrSize)
		}
		if f.typ.Kind() != reflect.Func {
			fail("field %s is %s, want func", f.name, f.typ.Kind())
			continue
		}
		if f.typ.NumIn() != len(s.Params)+1 || f.typ.In(0).Kind() != reflect.Pointer {
			fail("field %s: want this pointer and %d parameters, got %s", f.name, len(s.Params), f.typ)
		}
		wantOut := 0
		if s.Result != "" {
			wantOut = 1
		}
		if f.typ.NumOut() != wantOut {
			fail("field %s: want %d results, got %d", f.name, wantOut, f.typ.NumOut())
		}
	}
	if size := uintptr(len(slots)) * ptrSize; t.Size() != size {
		fail("%s is %d bytes, want %d", t, t.Size(), size)
	}

	if desc.Base != nil {
		if t.NumField() == 0 || !t.Field(0).Anonymous {
			fail("%s does not embed its base record", t)
		} else if base := describe(t.Field(0).Type); base != desc.Base {
			fail("embedded %s does not describe %s", t.Field(0).Type, desc.Base.QualifiedName())
		}
	}
	return errs
}

// describe returns the descriptor of a layout record type, or nil.
func describe(t reflect.Type) *Descriptor {
	if !t.Implements(layoutType) {
		return nil
	}
	return reflect.Zero(t).Interface().(Layout).Descriptor()
}

// Upcast returns the base table contained in a derived table. The derived
// record embeds the base record at offset 0, so the result aliases d.
func Upcast[B, D Layout](d *D) (*B, error) {
	var zb B
	var zd D
	if !zd.Descriptor().Extends(zb.Descriptor()) {
		return nil, errors.TypeMismatch(errors.PhaseRuntime, "upcast",
			zb.Descriptor().QualifiedName(), zd.Descriptor().QualifiedName())
	}
	bt := reflect.TypeFor[B]()
	for t := reflect.TypeFor[D](); t != bt; t = t.Field(0).Type {
		if t.Kind() != reflect.Struct || t.NumField() == 0 || !t.Field(0).Anonymous {
			return nil, errors.New(errors.PhaseRuntime, errors.KindShape).
				Interface(zd.Descriptor().QualifiedName()).
				Detail("%s does not embed %s", reflect.TypeFor[D](), bt).
				Build()
		}
	}
	return (*B)(unsafe.Pointer(d)), nil
}

// MustUpcast is Upcast for code that already knows D extends B.
func MustUpcast[B, D Layout](d *D) *B {
	b, err := Upcast[B](d)
	if err != nil {
		panic(err)
	}
	return b
}
