package replica

import (
	"context"
	"fmt"
	"maps"
	"reflect"
	"sync"

	"github.com/zoobzio/sentinel"
)

var (
	descriptors = make(map[reflect.Type]*TypeDescriptor)
	overrides   = make(map[reflect.Type]map[string]CloningMode)
	registryMu  sync.RWMutex
)

// Describe returns the cached descriptor for record type T, building it
// on first use. T may be a struct or a pointer to a struct.
func Describe[T any]() (*TypeDescriptor, error) {
	rt := reflect.TypeFor[T]()
	st := recordType(rt)
	if st == nil {
		return nil, newUnsupportedTypeError(rt, "")
	}
	if st != rt {
		return DescribeType(st)
	}
	return describe(st, sentinel.Scan[T])
}

// DescribeType is Describe for a type only known at runtime.
func DescribeType(rt reflect.Type) (*TypeDescriptor, error) {
	if rt == nil {
		return nil, newUnsupportedTypeError(rt, "")
	}
	st := recordType(rt)
	if st == nil {
		return nil, newUnsupportedTypeError(rt, "")
	}
	return describe(st, func() sentinel.Metadata { return scanType(st) })
}

func describe(rt reflect.Type, scan func() sentinel.Metadata) (*TypeDescriptor, error) {
	// Fast path: read-lock cache check
	registryMu.RLock()
	if cached, ok := descriptors[rt]; ok {
		registryMu.RUnlock()
		return cached, nil
	}
	registryMu.RUnlock()

	// Slow path: build and cache with write-lock
	registryMu.Lock()
	defer registryMu.Unlock()

	// Double-check pattern
	if cached, ok := descriptors[rt]; ok {
		return cached, nil
	}

	desc, err := buildDescriptor(rt, scan(), registeredPolicies)
	if err != nil {
		return nil, err
	}

	descriptors[rt] = desc
	emitDescriptorBuilt(context.Background(), desc.TypeName, len(desc.Members))
	return desc, nil
}

// SetPolicy registers a cloning mode for a member of record type T,
// by field name or embedded path. It is the manual counterpart of the
// clone struct tag.
//
// A member takes at most one policy: registering a mode that differs from
// the member's tag, or from an earlier registration, fails with a
// PolicyConflictError. Registering the same mode again is a no-op.
func SetPolicy[T any](field string, mode CloningMode) error {
	return SetTypePolicy(reflect.TypeFor[T](), field, mode)
}

// SetTypePolicy is SetPolicy for a type only known at runtime.
func SetTypePolicy(rt reflect.Type, field string, mode CloningMode) error {
	if !IsValidMode(mode) {
		return fmt.Errorf("%w: %s", ErrInvalidTag, mode)
	}
	st := recordType(rt)
	if st == nil {
		return newUnsupportedTypeError(rt, "")
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	existing := overrides[st]
	if prev, ok := existing[field]; ok {
		if prev != mode {
			err := newPolicyConflictError(st, field, prev.String(), mode.String())
			emitPolicyConflict(context.Background(), st.Name(), field, err)
			return err
		}
		return nil
	}

	trial := make(map[string]CloningMode, len(existing)+1)
	maps.Copy(trial, existing)
	trial[field] = mode

	// validate against tags before accepting the registration
	policies := func(t reflect.Type) map[string]CloningMode {
		if t == st {
			return trial
		}
		return overrides[t]
	}
	if _, err := buildDescriptor(st, scanType(st), policies); err != nil {
		emitPolicyConflict(context.Background(), st.Name(), field, err)
		return err
	}

	overrides[st] = trial
	// st may be embedded in any cached type
	descriptors = make(map[reflect.Type]*TypeDescriptor)
	return nil
}

// registeredPolicies returns the policies registered for rt.
// Callers hold registryMu.
func registeredPolicies(rt reflect.Type) map[string]CloningMode {
	return overrides[rt]
}

// Reset clears the descriptor cache, registered policies and scalars.
// This is primarily useful for test isolation.
func Reset() {
	registryMu.Lock()
	descriptors = make(map[reflect.Type]*TypeDescriptor)
	overrides = make(map[reflect.Type]map[string]CloningMode)
	registryMu.Unlock()

	shapesMu.Lock()
	shapes = make(map[reflect.Type]Shape)
	scalars = make(map[reflect.Type]bool)
	shapesMu.Unlock()
}
