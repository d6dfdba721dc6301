package wasmbridge

import (
	"context"
	"reflect"
	"sort"
	"strconv"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/vtable"
	"github.com/wippyai/vtable/errors"
)

// Bridge exports vtables to guests of one wazero runtime.
// Safe for concurrent use.
type Bridge struct {
	runtime wazero.Runtime
	objects *Objects
	modules map[string]api.Module
	mu      sync.Mutex
}

// New creates a bridge for rt. A nil objects table gets a fresh one.
func New(rt wazero.Runtime, objects *Objects) (*Bridge, error) {
	if rt == nil {
		return nil, errors.InvalidInput(errors.PhaseBridge, "runtime is nil")
	}
	if objects == nil {
		objects = NewObjects()
	}
	return &Bridge{
		runtime: rt,
		objects: objects,
		modules: make(map[string]api.Module),
	}, nil
}

// Objects returns the handle table the exported functions resolve their
// first argument through.
func (b *Bridge) Objects() *Objects {
	return b.objects
}

// Modules returns the names of the exported host modules, sorted.
func (b *Bridge) Modules() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	names := make([]string, 0, len(b.modules))
	for name := range b.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close closes every exported module and then the object table.
func (b *Bridge) Close(ctx context.Context) error {
	b.mu.Lock()
	mods := b.modules
	b.modules = make(map[string]api.Module)
	b.mu.Unlock()

	var errs error
	for _, mod := range mods {
		errs = multierr.Append(errs, mod.Close(ctx))
	}
	return multierr.Append(errs, b.objects.Close())
}

// Export instantiates a host module named after the interface's qualified
// name ("shapes.derived") with one function per slot of the flattened
// layout, in slot order. Function "a" of the module takes an object handle
// followed by the slot's parameters and calls table's A field with the
// object the handle names.
//
// The handle's object must be of the record's implementer type. Failed
// calls trap the guest.
func Export[L vtable.Layout](ctx context.Context, b *Bridge, table *L) (api.Module, error) {
	if table == nil {
		return nil, errors.InvalidInput(errors.PhaseBridge, "nil vtable")
	}
	desc := (*table).Descriptor()
	name := desc.QualifiedName()
	record := reflect.ValueOf(table).Elem()

	var fns []*function
	var errs error
	for _, slot := range desc.AllSlots() {
		fn, err := bind(record, slot, b.objects)
		if err != nil {
			errs = multierr.Append(errs, errors.New(errors.PhaseBridge, errors.KindRegistration).
				Interface(name).
				Method(slot.Name).
				Cause(err).
				Build())
			continue
		}
		fns = append(fns, fn)
	}
	if errs != nil {
		return nil, errs
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.modules[name]; ok || b.runtime.Module(name) != nil {
		return nil, errors.New(errors.PhaseBridge, errors.KindRegistration).
			Interface(name).
			Detail("module %q already instantiated", name).
			Build()
	}

	builder := b.runtime.NewHostModuleBuilder(name)
	for _, fn := range fns {
		builder.NewFunctionBuilder().
			WithGoModuleFunction(api.GoModuleFunc(fn.call), fn.params, fn.results).
			WithParameterNames(fn.names...).
			Export(fn.slot.Name)
	}
	mod, err := builder.Instantiate(ctx)
	if err != nil {
		return nil, errors.Registration(name, "*", err)
	}
	b.modules[name] = mod

	Logger().Debug("exported vtable",
		zap.String("module", name),
		zap.Stringer("record", record.Type()),
		zap.Int("functions", len(fns)))
	return mod, nil
}

// function is one exported slot.
type function struct {
	fn      reflect.Value
	objects *Objects
	recv    reflect.Type
	result  *value
	slot    vtable.Slot
	args    []value
	names   []string
	params  []api.ValueType
	results []api.ValueType
}

func bind(record reflect.Value, slot vtable.Slot, objects *Objects) (*function, error) {
	field := record.FieldByName(slot.Field)
	if !field.IsValid() || field.Kind() != reflect.Func {
		return nil, errors.NotFound(errors.PhaseBridge, "field", slot.Field)
	}
	if field.IsNil() {
		return nil, errors.NotInitialized(errors.PhaseBridge, "field "+slot.Field)
	}

	ft := field.Type()
	wantOut := 0
	if slot.Result != "" {
		wantOut = 1
	}
	if ft.NumIn() != len(slot.Params)+1 || ft.NumOut() != wantOut {
		return nil, errors.TypeMismatch(errors.PhaseBridge, "field "+slot.Field, slot.Signature(), ft.String())
	}

	f := &function{
		fn:      field,
		objects: objects,
		recv:    ft.In(0),
		slot:    slot,
		params:  []api.ValueType{api.ValueTypeI32},
		names:   []string{"this"},
	}
	for i, p := range slot.Params {
		v, err := newValue(p, ft.In(i+1))
		if err != nil {
			return nil, err
		}
		f.args = append(f.args, v)
		f.params = append(f.params, v.core)
		f.names = append(f.names, "arg"+strconv.Itoa(i+1))
	}
	if wantOut == 1 {
		v, err := newValue(slot.Result, ft.Out(0))
		if err != nil {
			return nil, err
		}
		f.result = &v
		f.results = []api.ValueType{v.core}
	}
	return f, nil
}

// call runs on the guest's stack. Errors panic; wazero turns the panic into
// a trap returned to the caller of the guest function.
func (f *function) call(ctx context.Context, mod api.Module, stack []uint64) {
	h := Handle(api.DecodeU32(stack[0]))
	obj, ok := f.objects.pin(h)
	if !ok {
		panic(errors.NotFound(errors.PhaseBridge, "object", handleName(h)))
	}
	defer f.objects.unpin(h)

	recv := reflect.ValueOf(obj)
	if recv.Type() != f.recv {
		panic(errors.TypeMismatch(errors.PhaseBridge, "object "+handleName(h), f.recv.String(), recv.Type().String()))
	}

	in := make([]reflect.Value, 0, len(f.args)+1)
	in = append(in, recv)
	for i, a := range f.args {
		v, err := a.lift(mod, stack[i+1])
		if err != nil {
			panic(err)
		}
		in = append(in, v)
	}

	out := f.fn.Call(in)
	if f.result == nil {
		return
	}
	raw, err := f.result.lower(mod, out[0])
	if err != nil {
		panic(err)
	}
	stack[0] = raw
}
