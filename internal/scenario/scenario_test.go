package scenario

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/replica"
)

func TestAll_Order(t *testing.T) {
	var names []string
	for _, sc := range All() {
		names = append(names, sc.Name)
	}
	assert.Equal(t, []string{
		"Simple", "SimpleStruct", "Simple2", "Node", "Array", "Collection",
		"Array2", "Collection2", "MixedCollection", "Recursion", "Recursion2",
		"Performance",
	}, names)
}

func TestSuite_RunAll(t *testing.T) {
	s := NewSuite()
	s.MinDepth, s.MaxDepth = 2, 6

	for _, sc := range All() {
		t.Run(sc.Name, func(t *testing.T) {
			require.NoError(t, s.Run(sc))
		})
	}
}

func TestSuite_RunAllWithDepthBound(t *testing.T) {
	s := NewSuite()
	s.MinDepth, s.MaxDepth = 2, 4
	s.Options = []replica.Option{replica.WithMaxDepth(64)}

	assert.NoError(t, s.RunAll(All()))
}

func TestSuite_Observe(t *testing.T) {
	seen := map[string]int{}
	s := NewSuite()
	s.Observe = func(name string, source, clone any) {
		seen[name]++
		assert.NotNil(t, source)
		assert.NotNil(t, clone)
	}

	sc, err := Find("Recursion")
	require.NoError(t, err)
	require.NoError(t, s.Run(sc))
	assert.Equal(t, 1, seen["Recursion"])
}

func TestSuite_Measured(t *testing.T) {
	var titles []string
	s := NewSuite()
	s.MinDepth, s.MaxDepth = 1, 3
	s.Measured = func(title string, elapsed time.Duration) {
		titles = append(titles, title)
		assert.GreaterOrEqual(t, elapsed, time.Duration(0))
	}

	sc, err := Find("Performance")
	require.NoError(t, err)
	require.NoError(t, s.Run(sc))
	assert.Equal(t, []string{"Cloning 1 nodes", "Cloning 3 nodes", "Cloning 7 nodes"}, titles)
}

func TestSuite_Failure(t *testing.T) {
	s := NewSuite()
	// too shallow for any tree
	s.Options = []replica.Option{replica.WithMaxDepth(1)}

	sc, err := Find("Node")
	require.NoError(t, err)

	err = s.Run(sc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, replica.ErrDepthExceeded))
	assert.Contains(t, err.Error(), "Node:")
}

func TestSuite_RecoversPanics(t *testing.T) {
	s := NewSuite()
	err := s.Run(Scenario{Name: "Boom", Run: func(*Suite) error { panic("boom") }})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Boom: panic: boom")
}

func TestFind(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"0", "Simple"},
		{"10", "Recursion2"},
		{"simple2", "Simple2"},
		{" Performance ", "Performance"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			sc, err := Find(tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sc.Name)
		})
	}
}

func TestFind_Unknown(t *testing.T) {
	for _, key := range []string{"-1", "12", "Nope", ""} {
		_, err := Find(key)
		assert.ErrorIs(t, err, ErrUnknownScenario, key)
	}
}

func TestSelect(t *testing.T) {
	all, err := Select(nil)
	require.NoError(t, err)
	assert.Len(t, all, len(All()))

	some, err := Select([]string{"Node", "3"})
	require.NoError(t, err)
	require.Len(t, some, 2)
	assert.Equal(t, "Node", some[0].Name)
	assert.Equal(t, "Node", some[1].Name)

	_, err = Select([]string{"Node", "Nope"})
	assert.ErrorIs(t, err, ErrUnknownScenario)
}

func TestCheck(t *testing.T) {
	assert.NoError(t, check(true, "unused"))

	err := check(false, "value = %d", 3)
	assert.ErrorIs(t, err, ErrAssertion)
	assert.EqualError(t, err, "assertion failed: value = 3")
}

func TestSameSlice(t *testing.T) {
	a := []int{1, 2}
	b := []int{1, 2}
	assert.True(t, sameSlice(a, a))
	assert.False(t, sameSlice(a, b))
	assert.False(t, sameSlice(a, a[:1]))
	assert.True(t, sameSlice([]int{}, nil))
}

func TestMakeTree(t *testing.T) {
	assert.Nil(t, MakeTree(0))
	assert.Equal(t, 15, MakeTree(4).TotalNodeCount())
	assert.Equal(t, 4, MakeTree(4).Value)
}
