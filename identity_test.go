package replica

import (
	"reflect"
	"testing"
)

type pair struct {
	A int
	B int
}

func TestIdentityMap_PointerIdentity(t *testing.T) {
	m := NewIdentityMap()
	p := &pair{A: 1}
	clone := reflect.ValueOf(&pair{A: 1})

	if _, ok := m.Lookup(reflect.ValueOf(p)); ok {
		t.Fatal("Lookup() on empty map should miss")
	}
	if !m.Register(reflect.ValueOf(p), clone) {
		t.Fatal("Register() should accept a non-nil pointer")
	}

	got, ok := m.Lookup(reflect.ValueOf(p))
	if !ok {
		t.Fatal("Lookup() should find the registered pointer")
	}
	if got.Pointer() != clone.Pointer() {
		t.Error("Lookup() returned a different clone")
	}

	// equal value, different object
	if _, ok := m.Lookup(reflect.ValueOf(&pair{A: 1})); ok {
		t.Error("Lookup() must compare identity, not value")
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
}

func TestIdentityMap_TypeIsPartOfKey(t *testing.T) {
	m := NewIdentityMap()
	p := &pair{}
	m.Register(reflect.ValueOf(p), reflect.ValueOf(&pair{}))

	// a struct and its first field share an address
	if _, ok := m.Lookup(reflect.ValueOf(&p.A)); ok {
		t.Error("pointer to first field should not match pointer to struct")
	}
}

func TestIdentityMap_SliceLength(t *testing.T) {
	m := NewIdentityMap()
	backing := []int{1, 2, 3}
	m.Register(reflect.ValueOf(backing), reflect.ValueOf([]int{1, 2, 3}))

	if _, ok := m.Lookup(reflect.ValueOf(backing)); !ok {
		t.Error("same slice header should match")
	}
	if _, ok := m.Lookup(reflect.ValueOf(backing[:2])); ok {
		t.Error("shorter header over the same array should not match")
	}
}

func TestIdentityMap_NoIdentity(t *testing.T) {
	m := NewIdentityMap()

	values := []reflect.Value{
		reflect.ValueOf(42),
		reflect.ValueOf(pair{}),
		reflect.ValueOf((*pair)(nil)),
		reflect.ValueOf([]int{}),
		reflect.ValueOf(map[string]int(nil)),
	}

	for _, v := range values {
		if m.Register(v, v) {
			t.Errorf("Register(%v) should report no identity", v.Type())
		}
	}
	if m.Len() != 0 {
		t.Errorf("Len() = %d, want 0", m.Len())
	}
}

func TestIdentityMap_Map(t *testing.T) {
	m := NewIdentityMap()
	src := map[string]int{"a": 1}
	clone := map[string]int{"a": 1}
	m.Register(reflect.ValueOf(src), reflect.ValueOf(clone))

	got, ok := m.Lookup(reflect.ValueOf(src))
	if !ok {
		t.Fatal("Lookup() should find the registered map")
	}
	if got.Pointer() != reflect.ValueOf(clone).Pointer() {
		t.Error("Lookup() returned a different map")
	}
}

type pairRef *pair

func TestIdentityMap_NamedPointer(t *testing.T) {
	m := NewIdentityMap()
	p := &pair{A: 1}
	clone := &pair{A: 1}
	m.Register(reflect.ValueOf(p), reflect.ValueOf(clone))

	got, ok := m.Lookup(reflect.ValueOf(pairRef(p)))
	if !ok {
		t.Fatal("a named pointer to a registered object should match")
	}
	if got.Type() != reflect.TypeFor[pairRef]() {
		t.Errorf("Lookup() type = %v, want pairRef", got.Type())
	}
	if got.Pointer() != reflect.ValueOf(clone).Pointer() {
		t.Error("Lookup() returned a different clone")
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
}
