package replica

import "reflect"

// identity is the address-based key of a reference value in the source
// graph. The type is part of the key so that a struct and its first field,
// which share an address, stay distinct. Named reference types key on
// their unnamed form: a Ref declared as *Node reaches the same object as a
// *Node. Slices also key on their length: two headers over one backing
// array with different lengths are different values.
type identity struct {
	typ  reflect.Type
	addr uintptr
	len  int
}

// IdentityMap maps source objects, by identity, to their clones.
//
// An entry is registered as soon as the clone is allocated and before any
// of its children are visited, so a path that leads back to an object
// still under construction links to the placeholder instead of recursing.
// A map is not safe for concurrent use; it belongs to one clone call.
type IdentityMap struct {
	seen map[identity]reflect.Value
}

// NewIdentityMap returns an empty IdentityMap.
func NewIdentityMap() *IdentityMap {
	return &IdentityMap{seen: make(map[identity]reflect.Value)}
}

// Len returns the number of distinct reference objects cloned so far.
func (m *IdentityMap) Len() int {
	return len(m.seen)
}

// Lookup returns the clone registered for src, if any.
// src must be a pointer, map, or slice; other kinds have no identity.
func (m *IdentityMap) Lookup(src reflect.Value) (reflect.Value, bool) {
	key, ok := identityOf(src)
	if !ok {
		return reflect.Value{}, false
	}
	clone, ok := m.seen[key]
	if !ok {
		return reflect.Value{}, false
	}
	return convertTo(clone, src.Type()), true
}

// Register records clone as the copy of src. It reports false when src
// has no identity (nil, zero-length slice, or a value type).
func (m *IdentityMap) Register(src, clone reflect.Value) bool {
	key, ok := identityOf(src)
	if !ok {
		return false
	}
	m.seen[key] = clone
	return true
}

// identityOf returns the identity key of v.
func identityOf(v reflect.Value) (identity, bool) {
	switch v.Kind() {
	case reflect.Ptr, reflect.Map:
		if v.IsNil() {
			return identity{}, false
		}
		return identity{typ: unnamed(v.Type()), addr: v.Pointer()}, true
	case reflect.Slice:
		if v.IsNil() || v.Len() == 0 {
			return identity{}, false
		}
		return identity{typ: unnamed(v.Type()), addr: v.Pointer(), len: v.Len()}, true
	default:
		return identity{}, false
	}
}

// unnamed returns the type literal behind a named pointer, map, or slice
// type.
func unnamed(t reflect.Type) reflect.Type {
	if t.Name() == "" {
		return t
	}
	switch t.Kind() {
	case reflect.Ptr:
		return reflect.PointerTo(t.Elem())
	case reflect.Map:
		return reflect.MapOf(t.Key(), t.Elem())
	case reflect.Slice:
		return reflect.SliceOf(t.Elem())
	default:
		return t
	}
}

// convertTo returns v as type t. Reference types sharing an identity
// differ at most in their name, so the conversion always holds.
func convertTo(v reflect.Value, t reflect.Type) reflect.Value {
	if v.Type() == t {
		return v
	}
	return v.Convert(t)
}
