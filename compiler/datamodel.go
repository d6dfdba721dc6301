package compiler

import (
	"runtime"
	"strings"
	"unsafe"

	"github.com/wippyai/vtable/errors"
)

// DataModel selects pointer width for layout computation.
type DataModel string

const (
	LP64   DataModel = "lp64"   // 64-bit unix
	LLP64  DataModel = "llp64"  // 64-bit windows
	ILP32  DataModel = "ilp32"  // 32-bit targets
	Wasm32 DataModel = "wasm32" // wasm32 linear memory
)

// DataModels lists the supported models in display order.
var DataModels = []DataModel{LP64, LLP64, ILP32, Wasm32}

// PointerSize returns the size in bytes of a code pointer.
func (m DataModel) PointerSize() uint32 {
	switch m {
	case ILP32, Wasm32:
		return 4
	}
	return 8
}

// PointerAlign returns the alignment of a code pointer.
func (m DataModel) PointerAlign() uint32 {
	return m.PointerSize()
}

// ParseDataModel parses a model name, case-insensitively.
func ParseDataModel(s string) (DataModel, error) {
	m := DataModel(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range DataModels {
		if m == known {
			return m, nil
		}
	}
	return "", errors.New(errors.PhaseConfig, errors.KindInvalidInput).
		Value(s).
		Detail("unknown data model %q (want lp64, llp64, ilp32 or wasm32)", s).
		Build()
}

// HostDataModel returns the model of the running process.
func HostDataModel() DataModel {
	if unsafe.Sizeof(uintptr(0)) == 4 {
		if runtime.GOARCH == "wasm" {
			return Wasm32
		}
		return ILP32
	}
	if runtime.GOOS == "windows" {
		return LLP64
	}
	return LP64
}
