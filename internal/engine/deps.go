package engine

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/rshade/retrofit/internal/project"
)

// ErrDependencyCycle is returned when a dependency table has a cycle.
const ErrDependencyCycle = constError("module dependency cycle")

// ErrUnknownDependency is returned when a dependency names an unknown module.
const ErrUnknownDependency = constError("unknown module dependency")

type constError string

func (e constError) Error() string { return string(e) }

// Dependencies maps a module to the modules whose outputs it reads.
type Dependencies map[project.ModuleKey][]project.ModuleKey

// DefaultDependencies is the cross-module read graph. VPP and microgrid read
// flexible load, microgrid also reads solar and the AI bundle, and carbon reads
// every module that reports avoided energy.
func DefaultDependencies() Dependencies {
	return Dependencies{
		project.KeyVPP: {
			project.KeyStorage, project.KeyEV, project.KeyHVAC, project.KeyLighting,
		},
		project.KeyMicrogrid: {
			project.KeySolar, project.KeyStorage, project.KeyEV,
			project.KeyHVAC, project.KeyLighting, project.KeyAI,
		},
		project.KeyCarbon: {
			project.KeySolar, project.KeyStorage, project.KeyHVAC, project.KeyLighting,
			project.KeyEV, project.KeyWater, project.KeyAI, project.KeyMicrogrid,
			project.KeyVPP,
		},
	}
}

// Tiers groups modules so that every module's dependencies sit in an earlier
// tier. A module's tier is one past the deepest of its dependencies. Within a
// tier modules keep display order.
func Tiers(deps Dependencies) ([][]project.ModuleKey, error) {
	keys := project.AllKeys()
	index := make(map[project.ModuleKey]int64, len(keys))
	g := simple.NewDirectedGraph()
	for i, k := range keys {
		index[k] = int64(i)
		g.AddNode(simple.Node(i))
	}

	for k, ds := range deps {
		if !k.IsKnown() {
			return nil, fmt.Errorf("%w: %s", ErrUnknownDependency, k)
		}
		for _, d := range ds {
			if !d.IsKnown() {
				return nil, fmt.Errorf("%w: %s -> %s", ErrUnknownDependency, k, d)
			}
			if d == k {
				return nil, fmt.Errorf("%w: %s reads itself", ErrDependencyCycle, k)
			}
			g.SetEdge(g.NewEdge(simple.Node(index[d]), simple.Node(index[k])))
		}
	}

	sorted, err := topo.Sort(g)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDependencyCycle, err)
	}

	depth := make(map[project.ModuleKey]int, len(keys))
	maxDepth := 0
	for _, n := range sorted {
		k := keys[n.ID()]
		for _, d := range deps[k] {
			depth[k] = max(depth[k], depth[d]+1)
		}
		maxDepth = max(maxDepth, depth[k])
	}

	tiers := make([][]project.ModuleKey, maxDepth+1)
	for _, k := range keys {
		tiers[depth[k]] = append(tiers[depth[k]], k)
	}
	return tiers, nil
}

// Order flattens tiers into a single evaluation order.
func Order(tiers [][]project.ModuleKey) []project.ModuleKey {
	return slices.Concat(tiers...)
}
