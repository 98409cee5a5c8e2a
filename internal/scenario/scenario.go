// Package scenario holds the acceptance scenarios of the cloning engine
// and a runner for them.
package scenario

import (
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/zoobzio/replica"
)

// ErrAssertion indicates a scenario check did not hold.
var ErrAssertion = errors.New("assertion failed")

// ErrUnknownScenario indicates a selector matched no scenario.
var ErrUnknownScenario = errors.New("unknown scenario")

// Scenario is a named check against the cloning engine.
type Scenario struct {
	Name string
	Run  func(s *Suite) error
}

// Suite runs scenarios with shared clone options.
type Suite struct {
	// Options are passed to every clone call.
	Options []replica.Option

	// MinDepth and MaxDepth bound the tree depths of the performance scenario.
	MinDepth int
	MaxDepth int

	// Observe receives every source and clone a scenario produces.
	Observe func(name string, source, clone any)

	// Measured receives performance timings.
	Measured func(title string, elapsed time.Duration)
}

// NewSuite returns a suite with the default performance range.
func NewSuite() *Suite {
	return &Suite{MinDepth: 10, MaxDepth: 20}
}

// All returns every scenario in execution order.
func All() []Scenario {
	return []Scenario{
		{"Simple", (*Suite).simple},
		{"SimpleStruct", (*Suite).simpleStruct},
		{"Simple2", (*Suite).simple2},
		{"Node", (*Suite).node},
		{"Array", (*Suite).array},
		{"Collection", (*Suite).collection},
		{"Array2", (*Suite).array2},
		{"Collection2", (*Suite).collection2},
		{"MixedCollection", (*Suite).mixedCollection},
		{"Recursion", (*Suite).recursion},
		{"Recursion2", (*Suite).recursion2},
		{"Performance", (*Suite).performance},
	}
}

// Find returns the scenario selected by key, either its index in All or
// its name (case-insensitive).
func Find(key string) (Scenario, error) {
	all := All()
	key = strings.TrimSpace(key)
	if i, err := strconv.Atoi(key); err == nil {
		if i < 0 || i >= len(all) {
			return Scenario{}, fmt.Errorf("%w: index %d out of range [0, %d)", ErrUnknownScenario, i, len(all))
		}
		return all[i], nil
	}
	idx := slices.IndexFunc(all, func(sc Scenario) bool {
		return strings.EqualFold(sc.Name, key)
	})
	if idx < 0 {
		return Scenario{}, fmt.Errorf("%w: %q", ErrUnknownScenario, key)
	}
	return all[idx], nil
}

// Select resolves keys with Find. An empty selection returns All.
func Select(keys []string) ([]Scenario, error) {
	if len(keys) == 0 {
		return All(), nil
	}
	selected := make([]Scenario, 0, len(keys))
	for _, key := range keys {
		sc, err := Find(key)
		if err != nil {
			return nil, err
		}
		selected = append(selected, sc)
	}
	return selected, nil
}

// Run executes sc. Panics raised by the scenario are returned as errors.
func (s *Suite) Run(sc Scenario) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: panic: %v", sc.Name, r)
		}
	}()
	if err := sc.Run(s); err != nil {
		return fmt.Errorf("%s: %w", sc.Name, err)
	}
	return nil
}

// RunAll executes scenarios in order and stops at the first failure.
func (s *Suite) RunAll(scenarios []Scenario) error {
	for _, sc := range scenarios {
		if err := s.Run(sc); err != nil {
			return err
		}
	}
	return nil
}

func clone[T any](s *Suite, name string, source T) (T, error) {
	c, err := replica.Clone(source, s.Options...)
	if err != nil {
		return c, err
	}
	if s.Observe != nil {
		s.Observe(name, source, c)
	}
	return c, nil
}

func check(ok bool, format string, args ...any) error {
	if ok {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrAssertion, fmt.Sprintf(format, args...))
}

func (s *Suite) simple() error {
	src := &Simple{I: 5, S: "2", Ignored: "3", Shallow: &struct{ tag string }{"shallow"}}
	c, err := clone(s, "Simple", src)
	if err != nil {
		return err
	}
	return errors.Join(
		check(src != c, "clone is the source"),
		check(src.Computed() == c.Computed(), "Computed %q != %q", c.Computed(), src.Computed()),
		check(c.Ignored == "", "Ignored = %q", c.Ignored),
		check(src.Shallow == c.Shallow, "Shallow is not shared"),
	)
}

func (s *Suite) simpleStruct() error {
	src := NewSimpleStruct(1, "2")
	src.Ignored = "3"
	c, err := clone(s, "SimpleStruct", src)
	if err != nil {
		return err
	}
	return errors.Join(
		check(src.Computed() == c.Computed(), "Computed %q != %q", c.Computed(), src.Computed()),
		check(c.Ignored == "", "Ignored = %q", c.Ignored),
	)
}

func (s *Suite) simple2() error {
	src := &Simple2{
		Simple: Simple{I: 1, S: "2"},
		D:      3,
		SS:     NewSimpleStruct(3, "4"),
	}
	c, err := clone(s, "Simple2", src)
	if err != nil {
		return err
	}
	return errors.Join(
		check(src != c, "clone is the source"),
		check(src.Computed() == c.Computed(), "Computed %q != %q", c.Computed(), src.Computed()),
	)
}

func (s *Suite) node() error {
	src := sampleTree()
	c, err := clone(s, "Node", src)
	if err != nil {
		return err
	}
	return errors.Join(
		check(src != c, "clone is the source"),
		check(src.TotalNodeCount() == c.TotalNodeCount(), "TotalNodeCount %d != %d", c.TotalNodeCount(), src.TotalNodeCount()),
	)
}

func (s *Suite) recursion() error {
	src := &Node{}
	src.Left = src
	c, err := clone(s, "Recursion", src)
	if err != nil {
		return err
	}
	return errors.Join(
		check(src != c, "clone is the source"),
		check(c.Right == nil, "Right is set"),
		check(c.Left == c, "Left does not close the cycle"),
	)
}

func (s *Suite) array() error {
	n := sampleTree()
	src := [2]*Node{n, n}
	c, err := clone(s, "Array", src)
	if err != nil {
		return err
	}
	return errors.Join(
		check(c[0] != n, "elements are not cloned"),
		check(countAll(src[:]) == countAll(c[:]), "node count %d != %d", countAll(c[:]), countAll(src[:])),
		check(c[0] == c[1], "shared element cloned twice"),
	)
}

func (s *Suite) collection() error {
	n := sampleTree()
	src := []*Node{n, n}
	c, err := clone(s, "Collection", src)
	if err != nil {
		return err
	}
	return errors.Join(
		check(!sameSlice(src, c), "clone is the source"),
		check(countAll(src) == countAll(c), "node count %d != %d", countAll(c), countAll(src)),
		check(c[0] == c[1], "shared element cloned twice"),
	)
}

func (s *Suite) array2() error {
	src := [2][]int{{1, 2, 3}, {4, 5}}
	c, err := clone(s, "Array2", src)
	if err != nil {
		return err
	}
	return errors.Join(
		check(!sameSlice(src[0], c[0]), "inner arrays are shared"),
		check(sum(c[:]...) == 15, "sum = %d", sum(c[:]...)),
	)
}

func (s *Suite) collection2() error {
	src := [][]int{{1, 2, 3}, {4, 5}}
	c, err := clone(s, "Collection2", src)
	if err != nil {
		return err
	}
	return errors.Join(
		check(!sameSlice(src, c), "clone is the source"),
		check(sum(c...) == 15, "sum = %d", sum(c...)),
	)
}

func (s *Suite) mixedCollection() error {
	src := []any{
		[][]int{{1}},
		[][]int{{2, 3}},
	}
	c, err := clone(s, "MixedCollection", src)
	if err != nil {
		return err
	}
	total := 0
	for _, group := range c {
		total += sum(group.([][]int)...)
	}
	return errors.Join(
		check(!sameSlice(src, c), "clone is the source"),
		check(total == 6, "sum = %d", total),
	)
}

func (s *Suite) recursion2() error {
	l := make([]*Node, 1)
	n := &Node{Value: l}
	n.Left = n
	l[0] = n
	src := []any{nil, l, n}
	src[0] = src

	c, err := clone(s, "Recursion2", src)
	if err != nil {
		return err
	}

	self, _ := c[0].([]any)
	cl, _ := c[1].([]*Node)
	if len(cl) != 1 {
		return check(false, "list has %d elements", len(cl))
	}
	cn := cl[0]
	value, _ := cn.Value.([]*Node)
	return errors.Join(
		check(!sameSlice(src, c), "clone is the source"),
		check(sameSlice(self, c), "c[0] is not the clone"),
		check(!sameSlice(l, cl), "list is the source list"),
		check(n != cn, "node is the source node"),
		check(sameSlice(cl, value), "node value is not the cloned list"),
		check(cn.Left == cn, "Left does not close the cycle"),
	)
}

func (s *Suite) performance() error {
	for depth := s.MinDepth; depth <= s.MaxDepth; depth++ {
		root := MakeTree(depth)
		var failed error
		s.measure(fmt.Sprintf("Cloning %d nodes", root.TotalNodeCount()), func() {
			c, err := replica.Clone(root, s.Options...)
			failed = errors.Join(err, check(c != root, "clone is the source"))
		})
		if failed != nil {
			return failed
		}
	}
	return nil
}

// measure runs fn once to warm up, then once timed.
func (s *Suite) measure(title string, fn func()) {
	fn()
	runtime.GC()
	start := time.Now()
	fn()
	elapsed := time.Since(start)
	if s.Measured != nil {
		s.Measured(title, elapsed)
	}
}

func countAll(nodes []*Node) int {
	total := 0
	for _, n := range nodes {
		total += n.TotalNodeCount()
	}
	return total
}

func sum(groups ...[]int) int {
	total := 0
	for _, g := range groups {
		for _, v := range g {
			total += v
		}
	}
	return total
}

// sameSlice reports whether a and b are the same slice header.
func sameSlice[E any](a, b []E) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return &a[0] == &b[0]
}
