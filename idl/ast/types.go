package ast

type TypeKind int

const (
	Invalid TypeKind = iota
	Bool
	U8
	U16
	U32
	U64
	I8
	I16
	I32
	I64
	Usize
	Isize
	F32
	F64
	CStr
	Void
	Ptr
	MutPtr
)

var primNames = map[string]TypeKind{
	"bool":  Bool,
	"u8":    U8,
	"u16":   U16,
	"u32":   U32,
	"u64":   U64,
	"i8":    I8,
	"i16":   I16,
	"i32":   I32,
	"i64":   I64,
	"usize": Usize,
	"isize": Isize,
	"f32":   F32,
	"f64":   F64,
	"cstr":  CStr,
}

// Primitive looks up a primitive type name.
func Primitive(name string) (TypeKind, bool) {
	k, ok := primNames[name]
	return k, ok
}

// Type is a parameter or result type. Elem is set for Ptr and MutPtr.
type Type struct {
	Elem *Type
	Kind TypeKind
}

// IsPointer reports whether values of the type are addresses.
func (t Type) IsPointer() bool {
	return t.Kind == Ptr || t.Kind == MutPtr || t.Kind == CStr
}

// IsFloat reports whether the type is a floating point scalar.
func (t Type) IsFloat() bool {
	return t.Kind == F32 || t.Kind == F64
}

// IsSigned reports whether the type is a signed integer.
func (t Type) IsSigned() bool {
	switch t.Kind {
	case I8, I16, I32, I64, Isize:
		return true
	}
	return false
}

// String returns the source spelling of the type.
func (t Type) String() string {
	switch t.Kind {
	case Ptr:
		return "ptr<" + t.Elem.String() + ">"
	case MutPtr:
		return "mutptr<" + t.Elem.String() + ">"
	case Void:
		return "void"
	}
	for name, k := range primNames {
		if k == t.Kind {
			return name
		}
	}
	return "invalid"
}
