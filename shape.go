package replica

import (
	"reflect"
	"sync"
	"time"
)

// Shape classifies a runtime type for the cloner.
type Shape int

const (
	ShapeUnknown   Shape = iota
	ShapeScalar          // bool, numbers, string, enums, time.Time, and pointers to them
	ShapeArray           // slices and fixed-size arrays
	ShapeContainer       // maps
	ShapeRecord          // structs and pointers to structs
)

// String returns a human-readable representation of the Shape.
func (s Shape) String() string {
	switch s {
	case ShapeScalar:
		return "scalar"
	case ShapeArray:
		return "array"
	case ShapeContainer:
		return "container"
	case ShapeRecord:
		return "record"
	default:
		return "unknown"
	}
}

var (
	graphType = reflect.TypeFor[Graph]()
	timeType  = reflect.TypeFor[time.Time]()
)

var (
	shapes   = make(map[reflect.Type]Shape)
	scalars  = make(map[reflect.Type]bool)
	shapesMu sync.RWMutex
)

// RegisterScalar makes t, and pointers to t, classify as ShapeScalar.
// Use it for immutable struct types (decimals, identifiers) that must be
// copied by value rather than walked.
func RegisterScalar(t reflect.Type) {
	shapesMu.Lock()
	scalars[t] = true
	// cached classifications may depend on t
	shapes = make(map[reflect.Type]Shape)
	shapesMu.Unlock()

	registryMu.Lock()
	descriptors = make(map[reflect.Type]*TypeDescriptor)
	registryMu.Unlock()
}

// Classify returns the shape of t. Interface types report ShapeUnknown;
// values held in interfaces are classified by their dynamic type.
func Classify(t reflect.Type) Shape {
	if t == nil {
		return ShapeUnknown
	}

	shapesMu.RLock()
	if s, ok := shapes[t]; ok {
		shapesMu.RUnlock()
		return s
	}
	shapesMu.RUnlock()

	shapesMu.Lock()
	defer shapesMu.Unlock()
	s := classify(t)
	shapes[t] = s
	return s
}

// classify must be called with shapesMu held.
func classify(t reflect.Type) Shape {
	if scalars[t] {
		return ShapeScalar
	}

	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128,
		reflect.String:
		return ShapeScalar
	case reflect.Struct:
		if t == timeType {
			return ShapeScalar
		}
		return ShapeRecord
	case reflect.Ptr:
		elem, ok := pointee(t)
		if !ok {
			return ShapeUnknown
		}
		return classify(elem)
	case reflect.Slice, reflect.Array:
		return ShapeArray
	case reflect.Map:
		return ShapeContainer
	default:
		// Interface, Func, Chan, UnsafePointer, Invalid
		return ShapeUnknown
	}
}

// ClassifyValue classifies v by its dynamic type.
func ClassifyValue(v any) Shape {
	return Classify(reflect.TypeOf(v))
}

// isValueScalar reports whether t is a scalar that can be copied by
// assignment. Pointers to scalars are excluded: they carry identity.
func isValueScalar(t reflect.Type) bool {
	return t.Kind() != reflect.Ptr && Classify(t) == ShapeScalar
}

// isGraph reports whether t, or a pointer to it, carries the Graph marker.
func isGraph(t reflect.Type) bool {
	if t.Implements(graphType) {
		return true
	}
	if t.Kind() == reflect.Ptr {
		return false
	}
	return reflect.PointerTo(t).Implements(graphType)
}

// recordType returns the struct type behind t for ShapeRecord types.
func recordType(t reflect.Type) reflect.Type {
	t, ok := pointee(t)
	if !ok || t.Kind() != reflect.Struct {
		return nil
	}
	return t
}

// pointee follows a chain of pointer types to the first non-pointer type.
// It reports false for a chain that loops back on itself, as declared by
// type P *P.
func pointee(t reflect.Type) (reflect.Type, bool) {
	var seen map[reflect.Type]bool
	for t.Kind() == reflect.Ptr {
		if seen[t] {
			return nil, false
		}
		if seen == nil {
			seen = make(map[reflect.Type]bool)
		}
		seen[t] = true
		t = t.Elem()
	}
	return t, true
}
