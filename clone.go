package replica

import (
	"context"
	"reflect"
	"time"
	"unsafe"
)

// Clone returns an independent copy of source that honors member policies.
//
// Flat records (a struct, or a pointer to one, without the Graph marker)
// are copied member by member according to their TypeDescriptor:
//
//   - computed members are skipped; they are never read nor written
//   - Ignore members keep their zero value
//   - Shallow members are copied verbatim and stay shared with source
//   - Deep scalar members are copied by value
//   - Deep non-scalar members are cloned with CloneGraph
//
// Each Deep member gets its own IdentityMap. References shared between two
// members of the record are therefore cloned twice, once per member;
// sharing is only preserved inside a member's own sub-graph.
//
// Slices, arrays, maps, scalars and Graph records are cloned whole by
// CloneGraph. nil values are returned unchanged.
//
// On failure the zero value of T is returned with the error; no partial
// clone is exposed.
func Clone[T any](source T, opts ...Option) (T, error) {
	var zero T
	src := reflect.ValueOf(&source).Elem()
	dyn := src
	if dyn.Kind() == reflect.Interface {
		if dyn.IsNil() {
			return source, nil
		}
		dyn = dyn.Elem()
	}
	if isNil(dyn) {
		return source, nil
	}

	if !isFlatRecord(dyn.Type()) {
		return CloneGraph(source, opts...)
	}

	cfg := newOptions(opts)
	name := typeName(dyn.Type())

	ctx := context.Background()
	start := time.Now()
	emitCloneStart(ctx, pathPolicy, name)

	out, visited, err := clonePolicy(dyn, cfg)
	emitCloneComplete(ctx, pathPolicy, name, time.Since(start), visited, err)
	if err != nil {
		return zero, err
	}

	reflect.ValueOf(&zero).Elem().Set(out)
	return zero, nil
}

// clonePolicy copies a flat record member by member. src is a struct or a
// non-nil pointer to one; the result has the same type.
func clonePolicy(src reflect.Value, cfg options) (reflect.Value, int, error) {
	desc, err := DescribeType(src.Type())
	if err != nil {
		return reflect.Value{}, 0, err
	}

	isPtr := src.Kind() == reflect.Ptr
	if isPtr {
		src = src.Elem()
	} else {
		src = addressable(src)
	}

	out := reflect.New(desc.Type)
	dst := out.Elem()
	visited := 0

	for _, m := range desc.Members {
		if m.Computed || m.Mode == Ignore {
			continue
		}

		value := memberAt(src, m.Index)
		target := memberAt(dst, m.Index)

		if m.Mode == Shallow || m.scalar {
			target.Set(value)
			continue
		}

		// fresh identity scope per member
		seen := NewIdentityMap()
		w := newWalker(seen, cfg)
		w.path = append(w.path, m.Path)
		cloned, err := w.clone(value)
		if err != nil {
			return reflect.Value{}, 0, err
		}
		target.Set(cloned)
		visited += seen.Len()
	}

	if isPtr {
		return out, visited + 1, nil
	}
	return dst, visited, nil
}

// memberAt returns a settable view of the field at index in the
// addressable struct v, unexported fields included.
func memberAt(v reflect.Value, index []int) reflect.Value {
	f := v.FieldByIndex(index)
	return reflect.NewAt(f.Type(), unsafe.Pointer(f.UnsafeAddr())).Elem()
}

// isFlatRecord reports whether t takes the member-policy path.
func isFlatRecord(t reflect.Type) bool {
	switch {
	case t.Kind() == reflect.Struct:
	case t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Struct:
	default:
		return false
	}
	return Classify(t) == ShapeRecord && !isGraph(t)
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface, reflect.UnsafePointer:
		return v.IsNil()
	}
	return false
}
