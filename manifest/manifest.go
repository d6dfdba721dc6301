// Package manifest records the ABI of compiled interfaces in a lock file and
// reports drift against it.
//
// A lock is a canonical CBOR document: encoding the same package twice gives
// the same bytes, so lock files can be committed and compared. Check accepts
// new interfaces and slots appended after the existing ones; anything that
// moves, removes or retypes an existing slot is drift.
package manifest

import (
	"crypto/sha256"
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"

	"github.com/wippyai/vtable/compiler"
	"github.com/wippyai/vtable/errors"
)

// Version is the lock format version.
const Version = 1

var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("manifest: failed to create CBOR enc mode: %v", err))
	}
	encMode = em
}

// Lock is the recorded ABI of one package.
type Lock struct {
	Package    string      `cbor:"2,keyasint"`
	Model      string      `cbor:"3,keyasint"`
	Interfaces []Interface `cbor:"4,keyasint"`
	Version    int         `cbor:"1,keyasint"`
}

// Interface is the recorded layout of one interface.
type Interface struct {
	Name  string `cbor:"1,keyasint"`
	Base  string `cbor:"2,keyasint,omitempty"`
	Slots []Slot `cbor:"4,keyasint"`
	Size  uint32 `cbor:"3,keyasint"`
}

// Slot is one entry of the flattened slot list.
type Slot struct {
	Name      string `cbor:"1,keyasint"`
	Owner     string `cbor:"2,keyasint"`
	Signature string `cbor:"5,keyasint"`
	ABI       string `cbor:"6,keyasint"`
	Index     int    `cbor:"3,keyasint"`
	Offset    uint32 `cbor:"4,keyasint"`
}

// FromPackage snapshots a compiled package.
func FromPackage(pkg *compiler.Package) *Lock {
	l := &Lock{
		Version: Version,
		Package: pkg.Name,
		Model:   string(pkg.Model),
	}
	for _, u := range pkg.Units {
		iface := Interface{Name: u.Name, Size: u.Size}
		if u.Base != nil {
			iface.Base = u.Base.Name
		}
		for _, s := range u.Slots {
			iface.Slots = append(iface.Slots, Slot{
				Name:      s.Name,
				Owner:     s.Owner,
				Index:     s.Index,
				Offset:    s.Offset,
				Signature: s.Method.Signature(),
				ABI:       s.Method.ABI,
			})
		}
		l.Interfaces = append(l.Interfaces, iface)
	}
	return l
}

// Lookup returns the recorded interface with the given name.
func (l *Lock) Lookup(name string) *Interface {
	for i := range l.Interfaces {
		if l.Interfaces[i].Name == name {
			return &l.Interfaces[i]
		}
	}
	return nil
}

// Digest is the SHA-256 of the canonical encoding.
func (l *Lock) Digest() ([32]byte, error) {
	data, err := Marshal(l)
	if err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(data), nil
}

// Marshal encodes l canonically.
func Marshal(l *Lock) ([]byte, error) {
	data, err := encMode.Marshal(l)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseVerify, errors.KindIO, err, "encode lock")
	}
	return data, nil
}

// Unmarshal decodes a lock and checks its version.
func Unmarshal(data []byte) (*Lock, error) {
	var l Lock
	if err := cbor.Unmarshal(data, &l); err != nil {
		return nil, errors.Wrap(errors.PhaseVerify, errors.KindInvalidInput, err, "decode lock")
	}
	if l.Version != Version {
		return nil, errors.New(errors.PhaseVerify, errors.KindUnsupported).
			Value(l.Version).
			Detail("lock version %d, want %d", l.Version, Version).
			Build()
	}
	return &l, nil
}

// Load reads a lock file. A missing file is a KindNotFound error.
func Load(path string) (*Lock, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.NotFound(errors.PhaseVerify, "lock file", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.PhaseVerify, errors.KindIO, err, "read "+path)
	}
	return Unmarshal(data)
}

// Save writes l to path.
func Save(path string, l *Lock) error {
	data, err := Marshal(l)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.PhaseVerify, errors.KindIO, err, "write "+path)
	}
	return nil
}
