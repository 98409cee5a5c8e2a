package replica

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrInstantiation indicates a value whose state cannot be reproduced
	// by zero-value construction of its type.
	ErrInstantiation = errors.New("cannot instantiate")

	// ErrUnsupportedType indicates the shape classifier cannot handle a type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrPolicyConflict indicates a member carries more than one cloning mode.
	ErrPolicyConflict = errors.New("conflicting cloning policy")

	// ErrInvalidTag indicates a clone struct tag has an unknown token.
	ErrInvalidTag = errors.New("invalid tag")

	// ErrUnknownField indicates a policy was registered for a field the type does not have.
	ErrUnknownField = errors.New("unknown field")

	// ErrDepthExceeded indicates the configured recursion bound was reached.
	ErrDepthExceeded = errors.New("max depth exceeded")
)

// InstantiationError reports a value that cannot be rebuilt from its type's zero value.
type InstantiationError struct {
	Err  error        // Underlying sentinel error (ErrInstantiation)
	Type reflect.Type // Type that could not be instantiated
	Path string       // Location in the source graph, empty for the root
}

func (e *InstantiationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s (at %s)", e.Err.Error(), typeName(e.Type), e.Path)
	}
	return fmt.Sprintf("%s %s", e.Err.Error(), typeName(e.Type))
}

func (e *InstantiationError) Unwrap() error {
	return e.Err
}

// UnsupportedTypeError reports a type the cloner cannot walk.
type UnsupportedTypeError struct {
	Err  error        // Underlying sentinel error (ErrUnsupportedType)
	Type reflect.Type // Offending type
	Path string       // Location in the source graph, empty for the root
}

func (e *UnsupportedTypeError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s (at %s)", e.Err.Error(), typeName(e.Type), e.Path)
	}
	return fmt.Sprintf("%s %s", e.Err.Error(), typeName(e.Type))
}

func (e *UnsupportedTypeError) Unwrap() error {
	return e.Err
}

// PolicyConflictError reports an ambiguous per-member cloning policy.
type PolicyConflictError struct {
	Err   error        // Underlying sentinel error (ErrPolicyConflict)
	Type  reflect.Type // Record type owning the member
	Field string       // Member name
	Modes []string     // Declarations found for the member, in order
}

func (e *PolicyConflictError) Error() string {
	return fmt.Sprintf("%s for %s.%s: %s",
		e.Err.Error(), typeName(e.Type), e.Field, strings.Join(e.Modes, ", "))
}

func (e *PolicyConflictError) Unwrap() error {
	return e.Err
}

// DepthError reports that a clone descended past the configured bound.
type DepthError struct {
	Err   error // Underlying sentinel error (ErrDepthExceeded)
	Depth int   // Configured bound
	Path  string
}

func (e *DepthError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s (%d) at %s", e.Err.Error(), e.Depth, e.Path)
	}
	return fmt.Sprintf("%s (%d)", e.Err.Error(), e.Depth)
}

func (e *DepthError) Unwrap() error {
	return e.Err
}

// newInstantiationError creates an InstantiationError for t at path.
func newInstantiationError(t reflect.Type, path string) error {
	return &InstantiationError{
		Err:  ErrInstantiation,
		Type: t,
		Path: path,
	}
}

// newUnsupportedTypeError creates an UnsupportedTypeError for t at path.
func newUnsupportedTypeError(t reflect.Type, path string) error {
	return &UnsupportedTypeError{
		Err:  ErrUnsupportedType,
		Type: t,
		Path: path,
	}
}

// newPolicyConflictError creates a PolicyConflictError for a member of t.
func newPolicyConflictError(t reflect.Type, field string, modes ...string) error {
	return &PolicyConflictError{
		Err:   ErrPolicyConflict,
		Type:  t,
		Field: field,
		Modes: modes,
	}
}

// newDepthError creates a DepthError for the configured bound.
func newDepthError(depth int, path string) error {
	return &DepthError{
		Err:   ErrDepthExceeded,
		Depth: depth,
		Path:  path,
	}
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
