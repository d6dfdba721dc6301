package manifest

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/wippyai/vtable/errors"
)

// Check compares the current lock against a previous one and returns every
// incompatible change, aggregated. A nil result means cur is a compatible
// extension of prev.
func Check(prev, cur *Lock) error {
	var errs error
	drift := func(iface, format string, args ...any) {
		errs = multierr.Append(errs, errors.Drift(iface, fmt.Sprintf(format, args...)))
	}

	if prev.Package != cur.Package {
		drift("", "package renamed from %q to %q", prev.Package, cur.Package)
	}
	if prev.Model != cur.Model {
		drift("", "data model changed from %s to %s", prev.Model, cur.Model)
	}

	for _, old := range prev.Interfaces {
		now := cur.Lookup(old.Name)
		if now == nil {
			drift(old.Name, "interface removed")
			continue
		}
		if old.Base != now.Base {
			drift(old.Name, "base changed from %q to %q", old.Base, now.Base)
		}

		names := make(map[string]int, len(now.Slots))
		for i, s := range now.Slots {
			names[s.Name] = i
		}
		for i, s := range old.Slots {
			if i >= len(now.Slots) || now.Slots[i].Name != s.Name {
				if j, ok := names[s.Name]; ok {
					drift(old.Name, "slot %q moved from index %d to %d", s.Name, i, j)
				} else {
					drift(old.Name, "slot %q removed", s.Name)
				}
				continue
			}
			n := now.Slots[i]
			switch {
			case n.ABI != s.ABI:
				drift(old.Name, "slot %q calling convention changed from %q to %q", s.Name, s.ABI, n.ABI)
			case n.Signature != s.Signature:
				drift(old.Name, "slot %q signature changed from %s to %s", s.Name, s.Signature, n.Signature)
			}
			if n.Offset != s.Offset && prev.Model == cur.Model {
				drift(old.Name, "slot %q offset changed from %d to %d", s.Name, s.Offset, n.Offset)
			}
		}
	}
	return errs
}
