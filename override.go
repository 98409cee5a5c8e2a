package replica

// Marker interfaces let a type change how Clone dispatches it.
// They are checked on the type and on a pointer to the type.

// Graph marks record types whose instances reference each other (trees,
// linked lists, graphs). Clone hands such types to the graph cloner whole
// instead of applying member policies. Embed GraphNode to opt in.
type Graph interface {
	ReplicaGraph()
}

// GraphNode is an embeddable Graph marker.
//
//	type Node struct {
//	    replica.GraphNode
//	    Left, Right *Node
//	}
type GraphNode struct{}

// ReplicaGraph implements Graph.
func (GraphNode) ReplicaGraph() {}
