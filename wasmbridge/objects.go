package wasmbridge

import (
	"strconv"
	"sync"

	"github.com/wippyai/vtable/errors"
)

// Handle identifies an object passed to a guest. Handle 0 is never issued;
// guests can use it as "no object".
type Handle uint32

// Closer is implemented by objects that release something when removed
// from the table.
type Closer interface {
	Close() error
}

// Objects maps handles to host objects. Exported functions take a handle as
// their first argument and call through the vtable with the object it
// names. An object stays pinned while a call is using it and cannot be
// removed until the call returns.
type Objects struct {
	entries []object
	free    []Handle
	mu      sync.RWMutex
	closed  bool
}

type object struct {
	value  any
	pinned uint32
	live   bool
}

// NewObjects creates an empty table.
func NewObjects() *Objects {
	return &Objects{
		entries: make([]object, 0, 16),
		free:    make([]Handle, 0, 4),
	}
}

// Insert stores v and returns its handle. Freed handles are reused.
func (o *Objects) Insert(v any) (Handle, error) {
	if v == nil {
		return 0, errors.InvalidInput(errors.PhaseBridge, "nil object")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return 0, errors.New(errors.PhaseBridge, errors.KindInvalidInput).Detail("object table closed").Build()
	}

	e := object{value: v, live: true}
	if n := len(o.free); n > 0 {
		h := o.free[n-1]
		o.free = o.free[:n-1]
		o.entries[h-1] = e
		return h, nil
	}
	o.entries = append(o.entries, e)
	return Handle(len(o.entries)), nil
}

// Get returns the object for h.
func (o *Objects) Get(h Handle) (any, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	e := o.at(h)
	if e == nil {
		return nil, false
	}
	return e.value, true
}

// Remove drops h and returns its object. It fails if h is unknown or a call
// is still using the object. Objects implementing Closer are closed.
func (o *Objects) Remove(h Handle) (any, error) {
	o.mu.Lock()
	e := o.at(h)
	if e == nil {
		o.mu.Unlock()
		return nil, errors.NotFound(errors.PhaseBridge, "object", handleName(h))
	}
	if e.pinned > 0 {
		o.mu.Unlock()
		return nil, errors.New(errors.PhaseBridge, errors.KindInvalidInput).
			Value(uint32(h)).
			Detail("object %d is in use by %d call(s)", h, e.pinned).
			Build()
	}
	v := e.value
	*e = object{}
	o.free = append(o.free, h)
	o.mu.Unlock()

	if c, ok := v.(Closer); ok {
		if err := c.Close(); err != nil {
			return v, errors.Wrap(errors.PhaseBridge, errors.KindIO, err, "close object "+handleName(h))
		}
	}
	return v, nil
}

// Len returns the number of live objects.
func (o *Objects) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.entries) - len(o.free)
}

// Close removes every object, closing those that implement Closer. Pinned
// objects are dropped as well.
func (o *Objects) Close() error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.closed = true
	entries := o.entries
	o.entries = nil
	o.free = nil
	o.mu.Unlock()

	var first error
	for _, e := range entries {
		if !e.live {
			continue
		}
		if c, ok := e.value.(Closer); ok {
			if err := c.Close(); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}

// pin returns the object for h and keeps it in the table until unpin.
func (o *Objects) pin(h Handle) (any, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	e := o.at(h)
	if e == nil {
		return nil, false
	}
	e.pinned++
	return e.value, true
}

func (o *Objects) unpin(h Handle) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if e := o.at(h); e != nil && e.pinned > 0 {
		e.pinned--
	}
}

// at must be called with o.mu held.
func (o *Objects) at(h Handle) *object {
	if h == 0 || int(h) > len(o.entries) {
		return nil
	}
	e := &o.entries[h-1]
	if !e.live {
		return nil
	}
	return e
}

func handleName(h Handle) string {
	return "#" + strconv.FormatUint(uint64(h), 10)
}
