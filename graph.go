package replica

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"
	"unsafe"

	"github.com/viant/xunsafe"
)

// CloneGraph returns a deep copy of source with a fresh IdentityMap.
//
// Every object reachable from source is copied once: two references to the
// same object in the source point to the same clone, and cycles are
// reproduced. Member policies are not consulted on this path.
func CloneGraph[T any](source T, opts ...Option) (T, error) {
	return CloneGraphWith(source, NewIdentityMap(), opts...)
}

// CloneGraphWith is CloneGraph sharing m with the caller. Objects already
// registered in m are not copied again, which lets several calls build
// one consistent set of clones.
func CloneGraphWith[T any](source T, m *IdentityMap, opts ...Option) (T, error) {
	if m == nil {
		m = NewIdentityMap()
	}
	cfg := newOptions(opts)

	var zero T
	src := reflect.ValueOf(&source).Elem()
	name := dynamicTypeName(src)

	ctx := context.Background()
	start := time.Now()
	emitCloneStart(ctx, pathGraph, name)

	before := m.Len()
	w := newWalker(m, cfg)
	out, err := w.clone(src)
	emitCloneComplete(ctx, pathGraph, name, time.Since(start), m.Len()-before, err)
	if err != nil {
		return zero, err
	}

	reflect.ValueOf(&zero).Elem().Set(out)
	return zero, nil
}

// walker performs one recursive descent. The identity map is the only
// state shared between branches.
type walker struct {
	seen     *IdentityMap
	maxDepth int
	depth    int
	path     []any // string field names, int indexes, reflect.Value map keys
}

func newWalker(m *IdentityMap, cfg options) *walker {
	return &walker{seen: m, maxDepth: cfg.maxDepth}
}

// clone returns a copy of src with the same type.
func (w *walker) clone(src reflect.Value) (reflect.Value, error) {
	switch src.Kind() {
	case reflect.Invalid:
		return src, nil

	case reflect.Ptr:
		if src.IsNil() {
			return src, nil
		}
		return w.clonePointer(src)

	case reflect.Interface:
		if src.IsNil() {
			return reflect.Zero(src.Type()), nil
		}
		inner, err := w.clone(src.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		out := reflect.New(src.Type()).Elem()
		out.Set(inner)
		return out, nil

	case reflect.Struct:
		if isValueScalar(src.Type()) {
			return src, nil
		}
		return w.cloneStruct(src)

	case reflect.Slice:
		if src.IsNil() {
			return src, nil
		}
		return w.cloneSlice(src)

	case reflect.Array:
		return w.cloneArray(src)

	case reflect.Map:
		if src.IsNil() {
			return src, nil
		}
		return w.cloneMap(src)

	case reflect.Chan:
		if src.IsNil() {
			return src, nil
		}
		// buffered contents and closed state are not reproducible
		return reflect.Value{}, newInstantiationError(src.Type(), w.pathString())

	case reflect.Func, reflect.UnsafePointer:
		if src.IsNil() {
			return src, nil
		}
		return reflect.Value{}, newUnsupportedTypeError(src.Type(), w.pathString())

	default:
		// scalar kinds are copied by value
		return src, nil
	}
}

// clonePointer allocates the pointee, registers it, then fills it.
func (w *walker) clonePointer(src reflect.Value) (reflect.Value, error) {
	if clone, ok := w.seen.Lookup(src); ok {
		return clone, nil
	}

	elem := src.Elem()
	out := reflect.New(elem.Type())
	w.seen.Register(src, out)

	if err := w.enter(); err != nil {
		return reflect.Value{}, err
	}
	defer w.leave()

	target := out.Elem()
	if elem.Kind() == reflect.Struct && !isValueScalar(elem.Type()) {
		if err := w.copyFields(target, elem); err != nil {
			return reflect.Value{}, err
		}
		return convertTo(out, src.Type()), nil
	}

	cloned, err := w.clone(elem)
	if err != nil {
		return reflect.Value{}, err
	}
	target.Set(cloned)
	return convertTo(out, src.Type()), nil
}

// cloneStruct copies a struct value. Struct values carry no identity.
func (w *walker) cloneStruct(src reflect.Value) (reflect.Value, error) {
	if err := w.enter(); err != nil {
		return reflect.Value{}, err
	}
	defer w.leave()

	out := reflect.New(src.Type()).Elem()
	if err := w.copyFields(out, addressable(src)); err != nil {
		return reflect.Value{}, err
	}
	return out, nil
}

// copyFields copies every field of src into dst, unexported ones
// included. Both values must be addressable structs of the same type.
func (w *walker) copyFields(dst, src reflect.Value) error {
	dstPtr := unsafe.Pointer(dst.UnsafeAddr())
	srcPtr := unsafe.Pointer(src.UnsafeAddr())

	for _, field := range structFields(src.Type()) {
		value := reflect.NewAt(field.Type, field.Pointer(srcPtr)).Elem()
		target := reflect.NewAt(field.Type, field.Pointer(dstPtr)).Elem()

		if isValueScalar(field.Type) {
			target.Set(value)
			continue
		}

		w.path = append(w.path, field.Name)
		cloned, err := w.clone(value)
		w.path = w.path[:len(w.path)-1]
		if err != nil {
			return err
		}
		target.Set(cloned)
	}
	return nil
}

// cloneSlice allocates a slice of the same length, registers it, then
// clones each element in order.
func (w *walker) cloneSlice(src reflect.Value) (reflect.Value, error) {
	if clone, ok := w.seen.Lookup(src); ok {
		return clone, nil
	}

	n := src.Len()
	out := reflect.MakeSlice(src.Type(), n, n)
	w.seen.Register(src, out)

	if isValueScalar(src.Type().Elem()) {
		reflect.Copy(out, src)
		return out, nil
	}

	if err := w.enter(); err != nil {
		return reflect.Value{}, err
	}
	defer w.leave()

	for i := 0; i < n; i++ {
		w.path = append(w.path, i)
		cloned, err := w.clone(src.Index(i))
		w.path = w.path[:len(w.path)-1]
		if err != nil {
			return reflect.Value{}, err
		}
		out.Index(i).Set(cloned)
	}
	return out, nil
}

// cloneArray clones a fixed-size array element by element.
func (w *walker) cloneArray(src reflect.Value) (reflect.Value, error) {
	out := reflect.New(src.Type()).Elem()
	if isValueScalar(src.Type().Elem()) {
		out.Set(src)
		return out, nil
	}

	if err := w.enter(); err != nil {
		return reflect.Value{}, err
	}
	defer w.leave()

	for i := 0; i < src.Len(); i++ {
		w.path = append(w.path, i)
		cloned, err := w.clone(src.Index(i))
		w.path = w.path[:len(w.path)-1]
		if err != nil {
			return reflect.Value{}, err
		}
		out.Index(i).Set(cloned)
	}
	return out, nil
}

// cloneMap allocates a map, registers it, then clones every key and value.
func (w *walker) cloneMap(src reflect.Value) (reflect.Value, error) {
	if clone, ok := w.seen.Lookup(src); ok {
		return clone, nil
	}

	out := reflect.MakeMapWithSize(src.Type(), src.Len())
	w.seen.Register(src, out)

	if err := w.enter(); err != nil {
		return reflect.Value{}, err
	}
	defer w.leave()

	iter := src.MapRange()
	for iter.Next() {
		w.path = append(w.path, iter.Key())
		key, err := w.clone(iter.Key())
		if err != nil {
			w.path = w.path[:len(w.path)-1]
			return reflect.Value{}, err
		}
		value, err := w.clone(iter.Value())
		w.path = w.path[:len(w.path)-1]
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetMapIndex(key, value)
	}
	return out, nil
}

func (w *walker) enter() error {
	w.depth++
	if w.maxDepth > 0 && w.depth > w.maxDepth {
		w.depth--
		return newDepthError(w.maxDepth, w.pathString())
	}
	return nil
}

func (w *walker) leave() {
	w.depth--
}

// pathString renders the current location, e.g. "$.Left.Value[2]".
func (w *walker) pathString() string {
	if len(w.path) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("$")
	for _, seg := range w.path {
		switch s := seg.(type) {
		case string:
			b.WriteString(".")
			b.WriteString(s)
		case int:
			fmt.Fprintf(&b, "[%d]", s)
		case reflect.Value:
			fmt.Fprintf(&b, "[%v]", s)
		}
	}
	return b.String()
}

var structFieldCache sync.Map // reflect.Type -> []*xunsafe.Field

// structFields returns cached unsafe accessors for every field of t.
func structFields(t reflect.Type) []*xunsafe.Field {
	if cached, ok := structFieldCache.Load(t); ok {
		return cached.([]*xunsafe.Field)
	}
	fields := make([]*xunsafe.Field, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		fields = append(fields, xunsafe.NewField(t.Field(i)))
	}
	actual, _ := structFieldCache.LoadOrStore(t, fields)
	return actual.([]*xunsafe.Field)
}

// addressable returns v, or an addressable copy of it.
func addressable(v reflect.Value) reflect.Value {
	if v.CanAddr() {
		return v
	}
	tmp := reflect.New(v.Type()).Elem()
	tmp.Set(v)
	return tmp
}

// dynamicTypeName names the type held by v, looking through interfaces.
func dynamicTypeName(v reflect.Value) string {
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return typeName(v.Type())
		}
		v = v.Elem()
	}
	return typeName(v.Type())
}
