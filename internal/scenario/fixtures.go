package scenario

import (
	"fmt"

	"github.com/zoobzio/replica"
)

// Simple exercises all three cloning modes on a pointer record.
type Simple struct {
	I       int
	S       string
	Ignored string `clone:"ignore"`
	Shallow any    `clone:"shallow"`
}

// Computed is derived from the other members.
func (s *Simple) Computed() string {
	return fmt.Sprintf("%s%d%v", s.S, s.I, s.Shallow)
}

// SimpleStruct is a record cloned by value.
type SimpleStruct struct {
	I       int
	S       string
	Ignored string `clone:"ignore"`
}

// NewSimpleStruct returns a SimpleStruct with an empty Ignored member.
func NewSimpleStruct(i int, s string) SimpleStruct {
	return SimpleStruct{I: i, S: s}
}

// Computed is derived from the other members.
func (s SimpleStruct) Computed() string {
	return fmt.Sprintf("%s%d", s.S, s.I)
}

// Simple2 extends Simple; embedded members keep their policies.
type Simple2 struct {
	Simple
	D  float64
	SS SimpleStruct
}

// Computed is derived from the other members.
func (s *Simple2) Computed() string {
	return fmt.Sprintf("%s%d%g%s", s.S, s.I, s.D, s.SS.Computed())
}

// Node is a binary tree node that may form arbitrary graphs.
type Node struct {
	replica.GraphNode
	Left  *Node
	Right *Node
	Value any
}

// TotalNodeCount counts n and every node reachable through Left and Right.
// It does not terminate on cyclic trees.
func (n *Node) TotalNodeCount() int {
	if n == nil {
		return 0
	}
	return 1 + n.Left.TotalNodeCount() + n.Right.TotalNodeCount()
}

// sampleTree returns a four-node tree.
func sampleTree() *Node {
	return &Node{
		Left: &Node{
			Right: &Node{},
		},
		Right: &Node{},
	}
}

// MakeTree returns a complete binary tree of the given depth whose node
// values are their height.
func MakeTree(depth int) *Node {
	if depth == 0 {
		return nil
	}
	return &Node{
		Value: depth,
		Left:  MakeTree(depth - 1),
		Right: MakeTree(depth - 1),
	}
}
