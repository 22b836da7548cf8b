package depgraph

type color int

const (
	white color = iota // unvisited
	gray               // on the current DFS path
	black              // finished
)

// Order returns package names such that every package appears after all of
// its in-workspace dependencies. Roots are visited in index order and
// dependencies in declaration order, so the result is stable for unchanged
// input. Returns CycleError if the dependencies form a cycle.
func (g *Graph) Order() ([]string, error) {
	marks := make(map[string]color, len(g.nodes))
	order := make([]string, 0, len(g.nodes))

	for _, name := range g.nodes {
		if marks[name] != white {
			continue
		}
		if cycle := g.visit(name, marks, nil, &order); cycle != nil {
			return nil, &CycleError{Path: cycle}
		}
	}
	return order, nil
}

// visit performs the post-order DFS from name. It returns the cycle path when
// an edge reaches a node that is still on the current path.
func (g *Graph) visit(name string, marks map[string]color, path []string, order *[]string) []string {
	marks[name] = gray
	path = append(path, name)

	for _, dep := range g.deps[name] {
		switch marks[dep] {
		case white:
			if cycle := g.visit(dep, marks, path, order); cycle != nil {
				return cycle
			}
		case gray:
			return buildCyclePath(path, dep)
		}
	}

	marks[name] = black
	*order = append(*order, name)
	return nil
}

// buildCyclePath constructs the cycle path from the DFS path.
func buildCyclePath(path []string, cycleStart string) []string {
	for i, id := range path {
		if id == cycleStart {
			cycle := append([]string(nil), path[i:]...)
			return append(cycle, cycleStart)
		}
	}
	return append(append([]string(nil), path...), cycleStart)
}

// Levels groups packages into publish waves. Every package in wave N depends
// only on packages in waves before N. Names within a wave are sorted.
// Returns CycleError if the dependencies form a cycle.
func (g *Graph) Levels() ([][]string, error) {
	order, err := g.Order()
	if err != nil {
		return nil, err
	}

	depth := make(map[string]int, len(order))
	maxDepth := -1
	for _, name := range order {
		d := 0
		for _, dep := range g.deps[name] {
			if depth[dep]+1 > d {
				d = depth[dep] + 1
			}
		}
		depth[name] = d
		if d > maxDepth {
			maxDepth = d
		}
	}

	levels := make([][]string, maxDepth+1)
	for _, name := range order {
		levels[depth[name]] = append(levels[depth[name]], name)
	}
	for i := range levels {
		levels[i] = sortedNames(levels[i])
	}
	return levels, nil
}
