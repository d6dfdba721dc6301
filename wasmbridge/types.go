package wasmbridge

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"
	"unsafe"

	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/vtable/errors"
	"github.com/wippyai/vtable/idl/ast"
)

// Guests are wasm32: usize and isize are 32 bits wide and every pointer is
// an i32 offset into the caller's linear memory.
var witTypes = map[ast.TypeKind]wit.Type{
	ast.Bool:  wit.Bool{},
	ast.U8:    wit.U8{},
	ast.U16:   wit.U16{},
	ast.U32:   wit.U32{},
	ast.U64:   wit.U64{},
	ast.I8:    wit.S8{},
	ast.I16:   wit.S16{},
	ast.I32:   wit.S32{},
	ast.I64:   wit.S64{},
	ast.Usize: wit.U32{},
	ast.Isize: wit.S32{},
	ast.F32:   wit.F32{},
	ast.F64:   wit.F64{},
}

// value is one parameter or result crossing the boundary.
type value struct {
	wit     wit.Type
	goType  reflect.Type
	idl     string
	core    api.ValueType
	pointer bool
}

// newValue maps an interface description type spelling onto its WIT and
// core wasm types. goType is the matching parameter or result of the slot
// function.
func newValue(idl string, goType reflect.Type) (value, error) {
	v := value{idl: idl, goType: goType}
	switch {
	case idl == "cstr", strings.HasPrefix(idl, "ptr<"), strings.HasPrefix(idl, "mutptr<"):
		v.wit = wit.U32{}
		v.pointer = true
		if k := goType.Kind(); k != reflect.Pointer && k != reflect.UnsafePointer {
			return v, errors.TypeMismatch(errors.PhaseBridge, idl, "pointer", goType.String())
		}
	default:
		k, ok := ast.Primitive(idl)
		if !ok {
			return v, errors.Unsupported(errors.PhaseBridge, "type "+idl)
		}
		v.wit = witTypes[k]
	}
	v.core = coreType(v.wit)
	return v, nil
}

// coreType flattens a primitive WIT type to the core wasm type carrying it.
func coreType(t wit.Type) api.ValueType {
	switch t.(type) {
	case wit.U64, wit.S64:
		return api.ValueTypeI64
	case wit.F32:
		return api.ValueTypeF32
	case wit.F64:
		return api.ValueTypeF64
	default:
		return api.ValueTypeI32
	}
}

func witName(t wit.Type) string {
	return fmt.Sprintf("%T", t)
}

// lift converts a raw stack value into a Go argument.
func (v value) lift(mod api.Module, raw uint64) (reflect.Value, error) {
	if v.pointer {
		off := api.DecodeU32(raw)
		if v.idl == "cstr" {
			if err := checkTerminated(mod, off); err != nil {
				return reflect.Value{}, err
			}
		}
		return guestPointer(mod, off, v.goType)
	}

	out := reflect.New(v.goType).Elem()
	switch v.goType.Kind() {
	case reflect.Bool:
		out.SetBool(api.DecodeU32(raw) != 0)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if v.core == api.ValueTypeI64 {
			out.SetInt(int64(raw))
		} else {
			out.SetInt(int64(api.DecodeI32(raw)))
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if v.core == api.ValueTypeI64 {
			out.SetUint(raw)
		} else {
			out.SetUint(uint64(api.DecodeU32(raw)))
		}
	case reflect.Float32:
		out.SetFloat(float64(api.DecodeF32(raw)))
	case reflect.Float64:
		out.SetFloat(api.DecodeF64(raw))
	default:
		return out, errors.TypeMismatch(errors.PhaseBridge, v.idl, witName(v.wit), v.goType.String())
	}
	return out, nil
}

// lower converts a Go result into a raw stack value.
func (v value) lower(mod api.Module, out reflect.Value) (uint64, error) {
	if v.pointer {
		off, err := guestOffset(mod, out)
		return api.EncodeU32(off), err
	}

	switch out.Kind() {
	case reflect.Bool:
		if out.Bool() {
			return 1, nil
		}
		return 0, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if v.core == api.ValueTypeI64 {
			return api.EncodeI64(out.Int()), nil
		}
		return api.EncodeI32(int32(out.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if v.core == api.ValueTypeI64 {
			return out.Uint(), nil
		}
		return api.EncodeU32(uint32(out.Uint())), nil
	case reflect.Float32:
		return api.EncodeF32(float32(out.Float())), nil
	case reflect.Float64:
		return api.EncodeF64(out.Float()), nil
	}
	return 0, errors.TypeMismatch(errors.PhaseBridge, v.idl, witName(v.wit), out.Type().String())
}

// guestPointer turns an offset into the caller's memory into a Go pointer.
// Offset 0 is nil. The pointee must lie entirely inside the memory.
func guestPointer(mod api.Module, off uint32, t reflect.Type) (reflect.Value, error) {
	if off == 0 {
		return reflect.Zero(t), nil
	}
	mem := mod.Memory()
	if mem == nil {
		return reflect.Value{}, errors.NotFound(errors.PhaseBridge, "memory", mod.Name())
	}

	size := uint32(1)
	if t.Kind() == reflect.Pointer && t.Elem().Size() > 0 {
		size = uint32(t.Elem().Size())
	}
	buf, ok := mem.Read(off, size)
	if !ok {
		return reflect.Value{}, errors.New(errors.PhaseBridge, errors.KindInvalidInput).
			Value(off).
			Detail("pointer %#x (%d bytes) outside memory of %d bytes", off, size, mem.Size()).
			Build()
	}

	addr := unsafe.Pointer(&buf[0])
	if t.Kind() == reflect.UnsafePointer {
		return reflect.ValueOf(addr).Convert(t), nil
	}
	return reflect.NewAt(t.Elem(), addr).Convert(t), nil
}

// checkTerminated requires a NUL byte between off and the end of the
// caller's memory so the callee cannot scan past it.
func checkTerminated(mod api.Module, off uint32) error {
	if off == 0 {
		return nil
	}
	mem := mod.Memory()
	if mem == nil {
		return errors.NotFound(errors.PhaseBridge, "memory", mod.Name())
	}
	size := mem.Size()
	if off < size {
		if buf, ok := mem.Read(off, size-off); ok && bytes.IndexByte(buf, 0) >= 0 {
			return nil
		}
	}
	return errors.New(errors.PhaseBridge, errors.KindInvalidInput).
		Value(off).
		Detail("string at %#x is not NUL terminated inside memory of %d bytes", off, size).
		Build()
}

// guestOffset is the inverse of guestPointer. Pointers outside the caller's
// memory cannot be returned to it.
func guestOffset(mod api.Module, p reflect.Value) (uint32, error) {
	if p.IsNil() {
		return 0, nil
	}
	mem := mod.Memory()
	if mem == nil {
		return 0, errors.NotFound(errors.PhaseBridge, "memory", mod.Name())
	}
	buf, ok := mem.Read(0, mem.Size())
	if !ok || len(buf) == 0 {
		return 0, errors.NotFound(errors.PhaseBridge, "memory", mod.Name())
	}

	base := uintptr(unsafe.Pointer(&buf[0]))
	addr := p.Pointer()
	if addr < base || addr >= base+uintptr(len(buf)) {
		return 0, errors.New(errors.PhaseBridge, errors.KindInvalidInput).
			Detail("returned pointer is outside guest memory").
			Build()
	}
	return uint32(addr - base), nil
}
