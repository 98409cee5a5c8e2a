// Package replica provides deep cloning of Go object graphs with per-field
// cloning policies.
//
// The package offers two entry points composed as a two-tier dispatcher:
// Clone applies member policies to flat records, and CloneGraph copies
// arbitrary graphs of structs, pointers, slices, arrays, maps and
// interfaces while preserving shared references and cycles.
//
// # Policies
//
// Member behavior is declared via struct tags:
//
//	clone:"{mode}"
//
// Valid values:
//
//	clone:"deep"      - Clone recursively (default, may be omitted)
//	clone:"shallow"   - Copy the reference as-is; source and clone share it
//	clone:"ignore"    - Leave the zero value; never read the source
//	clone:"computed"  - Derived from other members; never read nor written
//
// A member declares at most one mode. Conflicting declarations are
// rejected when the type's descriptor is built.
//
// # Basic Usage
//
//	type Account struct {
//	    ID      int
//	    Owner   *User
//	    Session string  `clone:"ignore"`
//	    Logger  *Logger `clone:"shallow"`
//	}
//
//	copied, err := replica.Clone(account)
//
// # Graphs
//
// Types whose instances link to each other opt into whole-graph cloning by
// embedding GraphNode:
//
//	type Node struct {
//	    replica.GraphNode
//	    Left, Right *Node
//	    Value       any
//	}
//
//	n := &Node{}
//	n.Left = n
//	c, _ := replica.Clone(n) // c.Left == c
//
// # Shapes
//
// Every type is classified once into a Shape:
//
//   - scalar: bool, numbers, strings, named types over them, time.Time,
//     types passed to RegisterScalar, and pointers to any of these
//   - array: slices and fixed-size arrays
//   - container: maps
//   - record: structs and pointers to structs
//   - unknown: funcs, channels, unsafe pointers
//
// # Manual Registration
//
// Policies can also be registered without tags:
//
//	replica.SetPolicy[Account]("Session", replica.Ignore)
//
// # Errors
//
// All errors wrap a sentinel for use with errors.Is:
//
//   - ErrInstantiation: value cannot be rebuilt from a zero value (channels)
//   - ErrUnsupportedType: funcs and unsafe pointers
//   - ErrPolicyConflict: more than one policy on a member
//   - ErrDepthExceeded: WithMaxDepth bound reached
//
// # Limits
//
// Cloning is recursive; stack depth grows with the longest path through
// objects not yet cloned. Use WithMaxDepth to fail fast on graphs deeper
// than a caller can afford. Interior pointers (a pointer to a field or
// element of another cloned object) are copied separately from their
// container.
package replica
