// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package packet

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/Workiva/go-datastructures/trie/ctrie"

	"github.com/tochemey/gomsg/codec"
	gerrors "github.com/tochemey/gomsg/errors"
)

// registration binds a packet type to its wire id and factory
type registration struct {
	id      string
	typ     reflect.Type
	factory Factory
}

// Registry maps packet types to wire ids and wire ids back to factories.
//
// Lookups (ID, Instantiate, Decode) are lock-free. Register and Unregister are
// serialized with each other so that a type and its wire id are always added
// or removed together.
type Registry struct {
	mu     sync.Mutex
	byType *ctrie.Ctrie
	byID   *ctrie.Ctrie
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{
		byType: ctrie.New(nil),
		byID:   ctrie.New(nil),
	}
}

// Register adds the packet type produced by factory. Its wire id is the bare
// type name, so *game.Ping and game.Ping both register as "Ping".
func (r *Registry) Register(factory Factory) error {
	sample, err := sampleOf(factory)
	if err != nil {
		return err
	}
	return r.register(DefaultID(sample), reflect.TypeOf(sample), factory)
}

// RegisterWithID adds the packet type produced by factory under an explicit wire id.
func (r *Registry) RegisterWithID(id string, factory Factory) error {
	sample, err := sampleOf(factory)
	if err != nil {
		return err
	}

	if strings.TrimSpace(id) == "" {
		return gerrors.ErrInvalidPacketFactory
	}
	return r.register(id, reflect.TypeOf(sample), factory)
}

// Unregister removes the packet type of the given packet.
func (r *Registry) Unregister(pkt Packet) error {
	if pkt == nil {
		return gerrors.NewErrPacketNotRegistered("<nil>")
	}

	typ := reflect.TypeOf(pkt)

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.lookupType(typ)
	if !ok {
		return gerrors.NewErrPacketNotRegistered(typ.String())
	}

	r.removeType(entry)
	r.byID.Remove([]byte(entry.id))
	return nil
}

// UnregisterID removes the packet type registered under the given wire id.
func (r *Registry) UnregisterID(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	value, ok := r.byID.Remove([]byte(id))
	if !ok {
		return gerrors.NewErrPacketNotRegistered(id)
	}

	r.removeType(value.(*registration))
	return nil
}

// ID returns the wire id of the packet type. It returns false when the
// packet type is not registered.
func (r *Registry) ID(pkt Packet) (string, bool) {
	if pkt == nil {
		return "", false
	}

	entry, ok := r.lookupType(reflect.TypeOf(pkt))
	if !ok {
		return "", false
	}
	return entry.id, true
}

// Instantiate creates an empty packet for the given wire id. It returns false
// for an unknown id, which is expected when two services run different
// packet sets.
func (r *Registry) Instantiate(id string) (Packet, bool) {
	value, ok := r.byID.Lookup([]byte(id))
	if !ok {
		return nil, false
	}

	pkt := value.(*registration).factory()
	if pkt == nil {
		return nil, false
	}
	return pkt, true
}

// Decode instantiates the packet registered under id and reads its payload
// from buf. The returned bool is false when id is unknown. A Read that panics
// on a hostile payload is reported as a PanicError.
func (r *Registry) Decode(id string, buf *codec.Buffer) (pkt Packet, known bool, err error) {
	pkt, known = r.Instantiate(id)
	if !known {
		return nil, false, nil
	}

	defer func() {
		if rec := recover(); rec != nil {
			pkt, err = nil, gerrors.NewPanicError(fmt.Errorf("packet=(%s) read: %v", id, rec))
		}
	}()

	if err := pkt.Read(buf); err != nil {
		return nil, true, err
	}
	return pkt, true, nil
}

// Len returns the number of registered packet types
func (r *Registry) Len() int {
	return int(r.byID.Size())
}

// IDs returns the registered wire ids in no particular order
func (r *Registry) IDs() []string {
	snapshot := r.byID.ReadOnlySnapshot()
	ids := make([]string, 0, snapshot.Size())
	for entry := range snapshot.Iterator(nil) {
		ids = append(ids, string(entry.Key))
	}
	return ids
}

func (r *Registry) register(id string, typ reflect.Type, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.lookupType(typ); exists {
		return gerrors.NewErrDuplicateRegistration(typ.String(), id)
	}

	if _, exists := r.byID.Lookup([]byte(id)); exists {
		return gerrors.NewErrDuplicateRegistration(typ.String(), id)
	}

	entry := &registration{
		id:      id,
		typ:     typ,
		factory: factory,
	}

	key := typeKey(typ)
	r.byType.Insert(key, append(slices.Clip(r.bucket(key)), entry))
	r.byID.Insert([]byte(id), entry)
	return nil
}

// lookupType finds the registration of typ. Distinct types can share a
// type key, e.g. same-named types declared in two functions of one package,
// so every key holds a bucket that is scanned by type identity.
func (r *Registry) lookupType(typ reflect.Type) (*registration, bool) {
	for _, entry := range r.bucket(typeKey(typ)) {
		if entry.typ == typ {
			return entry, true
		}
	}
	return nil, false
}

// bucket returns the registrations stored under key. Buckets are never
// mutated in place; writers replace them while holding mu.
func (r *Registry) bucket(key []byte) []*registration {
	value, ok := r.byType.Lookup(key)
	if !ok {
		return nil
	}
	return value.([]*registration)
}

func (r *Registry) removeType(entry *registration) {
	key := typeKey(entry.typ)
	current := r.bucket(key)
	remaining := make([]*registration, 0, len(current))
	for _, other := range current {
		if other != entry {
			remaining = append(remaining, other)
		}
	}

	if len(remaining) == 0 {
		r.byType.Remove(key)
		return
	}
	r.byType.Insert(key, remaining)
}

// DefaultID returns the wire id derived from the packet type: its bare name
func DefaultID(pkt Packet) string {
	typ := reflect.TypeOf(pkt)
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}

	if name := typ.Name(); name != "" {
		return name
	}
	return typ.String()
}

// sampleOf calls the factory once so that a broken factory is caught at
// registration rather than on the receive path.
func sampleOf(factory Factory) (Packet, error) {
	if factory == nil {
		return nil, gerrors.ErrInvalidPacketFactory
	}

	sample := factory()
	if sample == nil {
		return nil, gerrors.ErrInvalidPacketFactory
	}

	if value := reflect.ValueOf(sample); value.Kind() == reflect.Pointer && value.IsNil() {
		return nil, gerrors.ErrInvalidPacketFactory
	}
	return sample, nil
}

// typeKey is the ctrie key of a packet type. The package path keeps two
// types with the same name in different packages apart; function-local
// types sharing a name also share a key.
func typeKey(typ reflect.Type) []byte {
	var sb strings.Builder
	sb.WriteString(typ.String())
	sb.WriteByte('|')
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	sb.WriteString(typ.PkgPath())
	return []byte(sb.String())
}
