package replica_test

import (
	"strconv"
	"testing"

	"github.com/zoobzio/replica"
)

func benchTree(depth int) *Node {
	if depth == 0 {
		return nil
	}
	return &Node{
		Value: depth,
		Left:  benchTree(depth - 1),
		Right: benchTree(depth - 1),
	}
}

func BenchmarkClone_FlatRecord(b *testing.B) {
	s := &Simple{I: 1, S: "s", Ignored: "x", Shallow: &token{id: 1}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = replica.Clone(s)
	}
}

func BenchmarkClone_NestedRecord(b *testing.B) {
	o := &Order{
		ID:    1,
		Owner: &User{Name: "alice", Roles: []string{"admin", "ops"}},
		Items: []Item{{SKU: "a", Qty: 1}, {SKU: "b", Qty: 2}},
		Meta:  map[string]string{"k": "v"},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = replica.Clone(o)
	}
}

func BenchmarkCloneGraph_Tree(b *testing.B) {
	for _, depth := range []int{4, 8, 12} {
		root := benchTree(depth)
		b.Run("depth="+strconv.Itoa(depth), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_, _ = replica.CloneGraph(root)
			}
		})
	}
}

func BenchmarkCloneGraph_ScalarSlice(b *testing.B) {
	s := make([]int, 4096)
	for i := range s {
		s[i] = i
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = replica.CloneGraph(s)
	}
}

