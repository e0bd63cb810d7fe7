package container_test

import (
	"errors"
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"github.com/km-arc/go-container/framework/container"
)

type node struct{ name string }

// graph is a random acyclic service graph: service i may only depend on
// services with a lower index.
type graph struct {
	lifecycles []container.Lifecycle
	deps       [][]int
}

func drawGraph(t *rapid.T) graph {
	n := rapid.IntRange(1, 8).Draw(t, "services")
	g := graph{lifecycles: make([]container.Lifecycle, n), deps: make([][]int, n)}
	for i := 0; i < n; i++ {
		g.lifecycles[i] = rapid.SampledFrom([]container.Lifecycle{
			container.Singleton, container.Transient, container.Scoped,
		}).Draw(t, fmt.Sprintf("lifecycle%d", i))
		for j := 0; j < i; j++ {
			if rapid.Bool().Draw(t, fmt.Sprintf("edge%d-%d", i, j)) {
				g.deps[i] = append(g.deps[i], j)
			}
		}
	}
	return g
}

func svc(i int) string { return fmt.Sprintf("s%d", i) }

func (g graph) register(t *rapid.T) *container.Container {
	c := container.New()
	for i, l := range g.lifecycles {
		deps := make([]string, len(g.deps[i]))
		for k, d := range g.deps[i] {
			deps[k] = svc(d)
		}
		name := svc(i)
		err := c.Register(container.Descriptor{
			Name:         name,
			Lifecycle:    l,
			Dependencies: deps,
			Factory:      func([]any) (any, error) { return &node{name: name}, nil },
		})
		if err != nil {
			t.Fatalf("Register(%s): %v", name, err)
		}
	}
	return c
}

// captive reports whether singleton i reaches a scoped service through
// transient services only.
func (g graph) captive(i int) bool {
	seen := map[int]bool{}
	queue := append([]int{}, g.deps[i]...)
	for len(queue) > 0 {
		d := queue[0]
		queue = queue[1:]
		if seen[d] {
			continue
		}
		seen[d] = true
		switch g.lifecycles[d] {
		case container.Scoped:
			return true
		case container.Transient:
			queue = append(queue, g.deps[d]...)
		}
	}
	return false
}

// fails reports whether resolving i reaches any captive singleton.
func (g graph) fails(i int) bool {
	seen := map[int]bool{}
	stack := []int{i}
	for len(stack) > 0 {
		d := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[d] {
			continue
		}
		seen[d] = true
		if g.lifecycles[d] == container.Singleton && g.captive(d) {
			return true
		}
		stack = append(stack, g.deps[d]...)
	}
	return false
}

func TestProperty_LifecyclesHoldOnRandomGraphs(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := drawGraph(t)
		c := g.register(t)

		anyCaptive := false
		for i, l := range g.lifecycles {
			if l == container.Singleton && g.captive(i) {
				anyCaptive = true
			}
		}
		if err := c.Validate(); errors.Is(err, container.ErrIllegalScopedInjection) != anyCaptive {
			t.Fatalf("Validate() = %v, captive graph: %v", err, anyCaptive)
		}

		a, b := c.BeginScope(), c.BeginScope()
		for i, l := range g.lifecycles {
			name := svc(i)
			a1, err := c.ResolveIn(a, name)
			if g.fails(i) {
				if !errors.Is(err, container.ErrIllegalScopedInjection) {
					t.Fatalf("ResolveIn(%s) = %v, want illegal scoped injection", name, err)
				}
				continue
			}
			if err != nil {
				t.Fatalf("ResolveIn(%s): %v", name, err)
			}
			a2, _ := c.ResolveIn(a, name)
			b1, _ := c.ResolveIn(b, name)

			switch l {
			case container.Singleton:
				if a1 != a2 || a1 != b1 {
					t.Fatalf("%s: singleton instances differ", name)
				}
			case container.Scoped:
				if a1 != a2 {
					t.Fatalf("%s: scoped instance differs within a scope", name)
				}
				if a1 == b1 {
					t.Fatalf("%s: scoped instance shared across scopes", name)
				}
			case container.Transient:
				if a1 == a2 {
					t.Fatalf("%s: transient instance reused", name)
				}
			}
		}
	})
}

func TestProperty_RingIsAlwaysACycle(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 10).Draw(t, "ring")
		start := rapid.IntRange(0, n-1).Draw(t, "start")

		c := container.New()
		for i := 0; i < n; i++ {
			err := c.Bind(svc(i), func([]any) (any, error) { return &node{}, nil }, svc((i+1)%n))
			if err != nil {
				t.Fatalf("Bind: %v", err)
			}
		}

		_, err := c.Resolve(svc(start))
		var re *container.ResolutionError
		if !errors.As(err, &re) || !errors.Is(err, container.ErrCircularDependency) {
			t.Fatalf("Resolve = %v, want circular dependency", err)
		}
		if len(re.Chain) != n+1 || re.Chain[0] != svc(start) || re.Chain[n] != svc(start) {
			t.Fatalf("chain = %v", re.Chain)
		}

		// the guard unwinds: the failure repeats identically
		_, again := c.Resolve(svc(start))
		if again == nil || again.Error() != err.Error() {
			t.Fatalf("second Resolve = %v, want %v", again, err)
		}
	})
}
