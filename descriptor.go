package replica

import (
	"context"
	"errors"
	"reflect"
	"slices"

	"github.com/zoobzio/sentinel"
)

func init() {
	// Register the clone tag with sentinel
	sentinel.Tag(TagName)
}

// TypeDescriptor is the cached cloning plan of a record type.
type TypeDescriptor struct {
	Type     reflect.Type
	TypeName string
	Members  []MemberDescriptor // in field order, embedded structs flattened
	Graph    bool               // type carries the Graph marker
}

// MemberDescriptor describes how to copy a single struct field.
type MemberDescriptor struct {
	Name     string       // Go field name
	Path     string       // dotted path through embedded structs, e.g. "Base.ID"
	Index    []int        // reflect.Value.FieldByIndex access path
	Type     reflect.Type // declared type
	Kind     sentinel.FieldKind
	Shape    Shape // shape of the declared type
	Mode     CloningMode
	Computed bool // derived from other members; never read nor written
	Exported bool

	scalar     bool     // copied by assignment under Deep
	declared   []string // modes declared in tags
	registered bool     // Mode was set by SetPolicy
}

// Member returns the member with the given name or path.
func (d *TypeDescriptor) Member(name string) (MemberDescriptor, bool) {
	if i := memberIndex(d.Members, name); i >= 0 {
		return d.Members[i], true
	}
	return MemberDescriptor{}, false
}

// policyLookup returns the manually registered policies of a struct type.
type policyLookup func(rt reflect.Type) map[string]CloningMode

// buildDescriptor creates the descriptor of struct type rt from its
// sentinel metadata. Policies registered for rt, and for every struct it
// embeds, are applied on top of the tags.
func buildDescriptor(rt reflect.Type, spec sentinel.Metadata, policies policyLookup) (*TypeDescriptor, error) {
	spec = metadataFor(rt, spec)

	desc := &TypeDescriptor{
		Type:     rt,
		TypeName: spec.TypeName,
		Graph:    isGraph(rt),
	}
	if desc.TypeName == "" {
		desc.TypeName = rt.String()
	}

	if err := buildMembersRecursive(desc, rt, spec, nil, "", policies); err != nil {
		return nil, err
	}
	return desc, nil
}

// buildMembersRecursive adds the members of owner in field order,
// flattening embedded structs that carry no clone tag of their own.
// Exported fields are described by sentinel metadata; unexported fields,
// which sentinel does not report, are read from reflect.
func buildMembersRecursive(desc *TypeDescriptor, owner reflect.Type, spec sentinel.Metadata, parentIndex []int, pathPrefix string, policies policyLookup) error {
	exported := make(map[int]sentinel.FieldMetadata, len(spec.Fields))
	for _, field := range spec.Fields {
		exported[field.Index[0]] = field
	}

	start := len(desc.Members)
	for i := 0; i < owner.NumField(); i++ {
		sf := owner.Field(i)
		field, ok := exported[i]
		if !ok {
			field = fieldMetadata(sf)
		}
		if err := addMember(desc, owner, sf, field, parentIndex, pathPrefix, policies); err != nil {
			return err
		}
	}

	if policies == nil {
		return nil
	}
	return applyPolicies(desc, desc.Members[start:], policies(owner), pathPrefix)
}

func addMember(desc *TypeDescriptor, owner reflect.Type, sf reflect.StructField, field sentinel.FieldMetadata, parentIndex []int, pathPrefix string, policies policyLookup) error {
	fullIndex := append(append([]int{}, parentIndex...), field.Index...)
	fullPath := field.Name
	if pathPrefix != "" {
		fullPath = pathPrefix + "." + field.Name
	}

	tag, err := parseMemberTag(owner, field.Name, tagValues(field, sf))
	if err != nil {
		var conflict *PolicyConflictError
		if errors.As(err, &conflict) {
			conflict.Type = desc.Type
			conflict.Field = fullPath
			emitPolicyConflict(context.Background(), desc.TypeName, fullPath, err)
		}
		return err
	}

	// Handle embedded structs
	if sf.Anonymous && field.Kind == sentinel.KindStruct && !tag.hasMode() && !tag.computed &&
		Classify(field.ReflectType) == ShapeRecord {
		return buildMembersRecursive(desc, field.ReflectType, scanType(field.ReflectType), fullIndex, fullPath, policies)
	}

	desc.Members = append(desc.Members, MemberDescriptor{
		Name:     field.Name,
		Path:     fullPath,
		Index:    fullIndex,
		Type:     field.ReflectType,
		Kind:     field.Kind,
		Shape:    Classify(field.ReflectType),
		Mode:     tag.mode,
		Computed: tag.computed,
		Exported: sf.IsExported(),
		scalar:   isValueScalar(field.ReflectType),
		declared: tag.declared,
	})
	return nil
}

// tagValues returns the clone tag values of a field. sentinel reports the
// first occurrence; the raw tag is scanned only to surface repeats.
func tagValues(field sentinel.FieldMetadata, sf reflect.StructField) []string {
	if all := lookupAll(sf.Tag, TagName); len(all) > 1 {
		return all
	}
	if value, ok := field.Tags[TagName]; ok {
		return []string{value}
	}
	return nil
}

// applyPolicies applies the policies registered for the struct that
// contributed members. Keys are relative to that struct, so a policy
// registered on an embedded type follows it into every embedding type.
// A registration that disagrees with a tag-declared mode, or with a
// registration made on another level, is a conflict, not a precedence.
func applyPolicies(desc *TypeDescriptor, members []MemberDescriptor, registered map[string]CloningMode, pathPrefix string) error {
	// deterministic order for error reporting
	names := make([]string, 0, len(registered))
	for name := range registered {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		mode := registered[name]
		fullName := name
		if pathPrefix != "" {
			fullName = pathPrefix + "." + name
		}

		idx := memberIndex(members, fullName)
		if idx < 0 {
			idx = memberIndex(members, name)
		}
		if idx < 0 {
			return &PolicyConflictError{Err: ErrUnknownField, Type: desc.Type, Field: fullName, Modes: []string{mode.String()}}
		}

		m := &members[idx]
		switch {
		case m.Computed:
			return newPolicyConflictError(desc.Type, m.Path, tagComputed, mode.String())
		case (len(m.declared) > 0 || m.registered) && m.Mode != mode:
			return newPolicyConflictError(desc.Type, m.Path, m.Mode.String(), mode.String())
		}
		m.Mode = mode
		m.registered = true
	}
	return nil
}

func memberIndex(members []MemberDescriptor, name string) int {
	if i := slices.IndexFunc(members, func(m MemberDescriptor) bool { return m.Path == name }); i >= 0 {
		return i
	}
	return slices.IndexFunc(members, func(m MemberDescriptor) bool { return m.Name == name })
}

// metadataFor returns spec when it describes rt. sentinel caches metadata
// by bare type name, so a same-named type from another package, or a
// type scanned before the clone tag was registered, yields metadata that
// does not match; rt is then described from reflect.
func metadataFor(rt reflect.Type, spec sentinel.Metadata) sentinel.Metadata {
	if describes(rt, spec) {
		return spec
	}
	return reflectMetadata(rt)
}

func describes(rt reflect.Type, spec sentinel.Metadata) bool {
	if spec.TypeName != rt.Name() || spec.PackageName != rt.PkgPath() {
		return false
	}
	exported := 0
	for i := 0; i < rt.NumField(); i++ {
		if rt.Field(i).IsExported() {
			exported++
		}
	}
	if len(spec.Fields) != exported {
		return false
	}
	for _, field := range spec.Fields {
		if len(field.Index) != 1 || field.Index[0] >= rt.NumField() {
			return false
		}
		sf := rt.Field(field.Index[0])
		if sf.Name != field.Name || sf.Type != field.ReflectType {
			return false
		}
		if value, ok := sf.Tag.Lookup(TagName); ok && value != "" && field.Tags[TagName] != value {
			return false
		}
	}
	return true
}

// scanType returns sentinel metadata for a struct type only known at
// runtime.
func scanType(rt reflect.Type) sentinel.Metadata {
	if rt.Name() != "" {
		if spec, ok := sentinel.Lookup(rt.Name()); ok && describes(rt, spec) {
			return spec
		}
	}
	return reflectMetadata(rt)
}

// reflectMetadata builds sentinel metadata for the exported fields of rt.
func reflectMetadata(rt reflect.Type) sentinel.Metadata {
	spec := sentinel.Metadata{
		TypeName:    rt.Name(),
		PackageName: rt.PkgPath(),
		Fields:      make([]sentinel.FieldMetadata, 0, rt.NumField()),
	}

	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		spec.Fields = append(spec.Fields, fieldMetadata(sf))
	}

	return spec
}

// fieldMetadata describes a field the way sentinel does. It also serves
// unexported fields, which sentinel skips.
func fieldMetadata(sf reflect.StructField) sentinel.FieldMetadata {
	fm := sentinel.FieldMetadata{
		Name:        sf.Name,
		Type:        sf.Type.String(),
		ReflectType: sf.Type,
		Index:       sf.Index,
		Kind:        fieldKind(sf.Type),
		Tags:        make(map[string]string),
	}
	if val, ok := sf.Tag.Lookup(TagName); ok && val != "" {
		fm.Tags[TagName] = val
	}
	return fm
}

// fieldKind mirrors sentinel's field categories.
func fieldKind(t reflect.Type) sentinel.FieldKind {
	switch t.Kind() {
	case reflect.Struct:
		return sentinel.KindStruct
	case reflect.Ptr:
		return sentinel.KindPointer
	case reflect.Slice, reflect.Array:
		return sentinel.KindSlice
	case reflect.Map:
		return sentinel.KindMap
	case reflect.Interface:
		return sentinel.KindInterface
	default:
		return sentinel.KindScalar
	}
}
