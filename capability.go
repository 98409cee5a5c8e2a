package replica

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// CloningMode is the per-member cloning policy.
// Declare it in struct tags: `clone:"shallow"`
type CloningMode int

const (
	// Deep clones the member recursively. It is the default.
	Deep CloningMode = iota

	// Shallow copies the member verbatim; source and clone share it.
	Shallow

	// Ignore leaves the member at its zero value; the source is never read.
	Ignore
)

// TagName is the struct tag key read by the descriptor builder.
const TagName = "clone"

// tagComputed marks a member derived from other members.
const tagComputed = "computed"

// String returns the tag spelling of the mode.
func (m CloningMode) String() string {
	switch m {
	case Deep:
		return "deep"
	case Shallow:
		return "shallow"
	case Ignore:
		return "ignore"
	default:
		return fmt.Sprintf("CloningMode(%d)", int(m))
	}
}

// validModes contains all valid cloning modes for tag validation.
var validModes = map[string]CloningMode{
	"deep":    Deep,
	"shallow": Shallow,
	"ignore":  Ignore,
}

// IsValidMode returns true if the mode is a known cloning mode.
func IsValidMode(m CloningMode) bool {
	_, ok := validModes[m.String()]
	return ok
}

// ParseMode returns the mode spelled by s.
func ParseMode(s string) (CloningMode, error) {
	if m, ok := validModes[strings.ToLower(strings.TrimSpace(s))]; ok {
		return m, nil
	}
	return Deep, fmt.Errorf("%w: unknown cloning mode %q", ErrInvalidTag, s)
}

// memberTag is the parsed form of a member's clone tags.
type memberTag struct {
	mode     CloningMode
	declared []string // every mode token found, in order
	computed bool
}

// hasMode reports whether the tag declared a mode explicitly.
func (t memberTag) hasMode() bool {
	return len(t.declared) > 0
}

// parseMemberTag parses the clone tag values of field name of owner.
// Go allows a key to appear more than once in a raw tag, so more than one
// declared mode across all values is a conflict.
func parseMemberTag(owner reflect.Type, name string, values []string) (memberTag, error) {
	var tag memberTag
	for _, value := range values {
		for _, token := range strings.Split(value, ",") {
			token = strings.TrimSpace(token)
			switch token {
			case "":
				continue
			case tagComputed:
				tag.computed = true
				continue
			}
			m, err := ParseMode(token)
			if err != nil {
				return tag, fmt.Errorf("field %s: %w", name, err)
			}
			tag.declared = append(tag.declared, m.String())
			tag.mode = m
		}
	}

	if len(tag.declared) > 1 {
		return tag, newPolicyConflictError(owner, name, tag.declared...)
	}
	if tag.computed && tag.hasMode() {
		return tag, newPolicyConflictError(owner, name, append([]string{tagComputed}, tag.declared...)...)
	}
	return tag, nil
}

// lookupAll returns the values of every occurrence of key in tag.
// It follows the scanning rules of reflect.StructTag.Lookup.
func lookupAll(tag reflect.StructTag, key string) []string {
	var values []string
	for tag != "" {
		i := 0
		for i < len(tag) && tag[i] == ' ' {
			i++
		}
		tag = tag[i:]
		if tag == "" {
			break
		}

		i = 0
		for i < len(tag) && tag[i] > ' ' && tag[i] != ':' && tag[i] != '"' && tag[i] != 0x7f {
			i++
		}
		if i == 0 || i+1 >= len(tag) || tag[i] != ':' || tag[i+1] != '"' {
			break
		}
		name := string(tag[:i])
		tag = tag[i+1:]

		i = 1
		for i < len(tag) && tag[i] != '"' {
			if tag[i] == '\\' {
				i++
			}
			i++
		}
		if i >= len(tag) {
			break
		}
		quoted := string(tag[:i+1])
		tag = tag[i+1:]

		if name == key {
			if value, err := strconv.Unquote(quoted); err == nil {
				values = append(values, value)
			}
		}
	}
	return values
}
