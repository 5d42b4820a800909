package patcher

import (
	"fmt"
	"slices"

	"github.com/erraggy/patchkit/patch"
	"github.com/erraggy/patchkit/patcherrors"
)

// Graph is the validated dependency graph reachable from a set of root patches.
// Dependencies are resolved once, when the graph is built.
type Graph struct {
	roots   []*patch.Patch
	deps    map[*patch.Patch][]*patch.Patch
	patches []*patch.Patch
}

// NewGraph collects every patch reachable from roots and validates the result.
// Duplicate roots are dropped. It returns a *patcherrors.ConfigError for a nil
// patch or a dependency cycle; no callback of any patch has run at that point.
func NewGraph(roots ...*patch.Patch) (*Graph, error) {
	g := &Graph{deps: make(map[*patch.Patch][]*patch.Patch)}

	for i, r := range roots {
		if r == nil {
			return nil, &patcherrors.ConfigError{
				Option:  "roots",
				Message: fmt.Sprintf("root patch %d is nil", i),
			}
		}
		if !slices.Contains(g.roots, r) {
			g.roots = append(g.roots, r)
		}
	}

	b := graphBuilder{g: g, state: make(map[*patch.Patch]visitState)}
	for _, r := range g.roots {
		if err := b.visit(r); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Roots returns the root patches in declared order.
func (g *Graph) Roots() []*patch.Patch {
	return slices.Clone(g.roots)
}

// Patches returns every reachable patch, each after all of its dependencies.
// This is the execution order of a run in which nothing fails.
func (g *Graph) Patches() []*patch.Patch {
	return slices.Clone(g.patches)
}

// Dependencies returns the resolved dependencies of p.
func (g *Graph) Dependencies(p *patch.Patch) []*patch.Patch {
	return slices.Clone(g.deps[p])
}

// Len returns the number of reachable patches.
func (g *Graph) Len() int {
	return len(g.patches)
}

type visitState int

const (
	unvisited visitState = iota
	inProgress
	done
)

type graphBuilder struct {
	g     *Graph
	state map[*patch.Patch]visitState
	path  []*patch.Patch
}

func (b *graphBuilder) visit(p *patch.Patch) error {
	switch b.state[p] {
	case done:
		return nil
	case inProgress:
		return b.cycleError(p)
	}

	b.state[p] = inProgress
	b.path = append(b.path, p)

	deps := p.Dependencies()
	for i, d := range deps {
		if d == nil {
			return &patcherrors.ConfigError{
				Option:  "dependencies",
				Message: fmt.Sprintf("dependency %d of %s is nil", i, p),
			}
		}
		if err := b.visit(d); err != nil {
			return err
		}
	}

	b.path = b.path[:len(b.path)-1]
	b.state[p] = done
	b.g.deps[p] = deps
	b.g.patches = append(b.g.patches, p)
	return nil
}

// cycleError reports the path from the first occurrence of p back to p.
func (b *graphBuilder) cycleError(p *patch.Patch) error {
	start := slices.Index(b.path, p)
	cycle := make([]string, 0, len(b.path)-start+1)
	for _, q := range b.path[start:] {
		cycle = append(cycle, q.String())
	}
	cycle = append(cycle, p.String())
	return &patcherrors.ConfigError{
		Option:  "dependencies",
		IsCycle: true,
		Cycle:   cycle,
	}
}
