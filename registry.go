package vtable

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/vtable/errors"
)

// One entry per layout record type. A generic record instantiated with a
// different implementer is a different type, so the key identifies the
// (interface, implementer) pair.
var registry sync.Map // reflect.Type -> *entry

type entry struct {
	table  any
	failed any
	once   sync.Once
	ready  atomic.Bool
}

func entryFor(key reflect.Type) *entry {
	if e, ok := registry.Load(key); ok {
		return e.(*entry)
	}
	e, _ := registry.LoadOrStore(key, &entry{})
	return e.(*entry)
}

// Instance returns the process wide record of type L, calling build the
// first time it is requested. Every call returns the same address. The
// record must not be modified after build returns.
//
// build may request other records (a derived record copies its base) but
// must not request L itself. If build panics, the panic reaches the first
// caller and every later call panics with a not initialized error.
func Instance[L Layout](build func() L) *L {
	e := entryFor(reflect.TypeFor[L]())
	e.once.Do(func() {
		defer func() {
			if r := recover(); r != nil {
				e.failed = r
				panic(r)
			}
		}()
		table := build()
		e.table = &table
		e.ready.Store(true)
		Logger().Debug("vtable built",
			zap.String("interface", table.Descriptor().QualifiedName()),
			zap.Stringer("type", reflect.TypeFor[L]()),
			zap.Int("slots", len(table.Descriptor().AllSlots())))
	})
	if !e.ready.Load() {
		panic(buildFailed[L](e.failed))
	}
	return e.table.(*L)
}

func buildFailed[L Layout](r any) *errors.Error {
	var zero L
	err := errors.NotInitialized(errors.PhaseRuntime, "vtable "+zero.Descriptor().QualifiedName())
	err.Value = reflect.TypeFor[L]().String()
	err.Detail += fmt.Sprintf(": build panicked: %v", r)
	if cause, ok := r.(error); ok {
		err.Cause = cause
	}
	return err
}

// Lookup returns the record of type L if Instance has built it.
func Lookup[L Layout]() (*L, bool) {
	v, ok := registry.Load(reflect.TypeFor[L]())
	if !ok {
		return nil, false
	}
	e := v.(*entry)
	if !e.ready.Load() {
		return nil, false
	}
	return e.table.(*L), true
}
