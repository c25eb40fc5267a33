package plugins

// depGraph resolves a deterministic enable order for registered plugins.
type depGraph struct {
	order []string            // node names in registration order
	edges map[string][]string // plugin name -> declared dependencies
}

func newDepGraph() *depGraph {
	return &depGraph{edges: make(map[string][]string)}
}

// addNode adds a plugin and its declared dependencies. Insertion order is
// preserved and used as the tie-breaker during sorting.
func (g *depGraph) addNode(name string, deps []string) {
	if _, exists := g.edges[name]; exists {
		return
	}
	g.order = append(g.order, name)
	g.edges[name] = deps
}

// topoSort returns the nodes ordered so that every dependency precedes its
// dependents. Nodes with no ordering constraint between them keep their
// registration order, making the result reproducible across runs. A cycle
// yields a CircularDependencyError naming the cycle members.
//
// Dependencies on names that were never added are skipped here; they surface
// as a DependencyError when the plugin is actually enabled.
func (g *depGraph) topoSort() ([]string, error) {
	visited := make(map[string]bool, len(g.order))
	onStack := make(map[string]bool, len(g.order))
	stack := make([]string, 0, len(g.order))
	result := make([]string, 0, len(g.order))

	var visit func(name string) error
	visit = func(name string) error {
		if onStack[name] {
			return &CircularDependencyError{Cycle: cycleFrom(stack, name)}
		}
		if visited[name] {
			return nil
		}
		visited[name] = true
		onStack[name] = true
		stack = append(stack, name)

		for _, dep := range g.edges[name] {
			if _, known := g.edges[dep]; !known {
				continue
			}
			if err := visit(dep); err != nil {
				return err
			}
		}

		onStack[name] = false
		stack = stack[:len(stack)-1]
		result = append(result, name)
		return nil
	}

	for _, name := range g.order {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// cycleFrom extracts the cycle members from the DFS stack, closing the loop
// on the revisited node.
func cycleFrom(stack []string, name string) []string {
	start := 0
	for i, n := range stack {
		if n == name {
			start = i
			break
		}
	}
	cycle := make([]string, 0, len(stack)-start+1)
	cycle = append(cycle, stack[start:]...)
	cycle = append(cycle, name)
	return cycle
}
