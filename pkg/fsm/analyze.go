package fsm

import "github.com/aretw0/fsmgen/pkg/domain"

// Analysis is the result of inspecting the transition graph of a document.
type Analysis struct {
	// Unreachable lists declared states that cannot be reached from the
	// initial state, in declaration order.
	Unreachable []string `json:"unreachable"`
	// HasCycle is true when the graph contains at least one directed cycle.
	// A self-loop counts.
	HasCycle bool `json:"has_cycle"`
}

// graph is a simple directed graph: parallel edges collapse into one.
type graph struct {
	nodes []string
	edges map[string][]string
}

func buildGraph(doc *domain.Document) *graph {
	g := &graph{edges: make(map[string][]string)}
	seen := make(map[string]bool)
	seenEdge := make(map[[2]string]bool)

	addNode := func(n string) {
		if !seen[n] {
			seen[n] = true
			g.nodes = append(g.nodes, n)
		}
	}

	for _, s := range doc.States {
		for _, t := range s.Transitions {
			addNode(s.Name)
			addNode(t.Target)
			key := [2]string{s.Name, t.Target}
			if seenEdge[key] {
				continue
			}
			seenEdge[key] = true
			g.edges[s.Name] = append(g.edges[s.Name], t.Target)
		}
	}
	return g
}

// Analyze computes the unreachable states and cycle presence of doc.
// The result is only meaningful for documents that pass Validate, but
// Analyze never panics on other input.
func Analyze(doc *domain.Document) Analysis {
	g := buildGraph(doc)

	reachable := g.reachableFrom(doc.InitialState)

	var unreachable []string
	for _, name := range doc.StateNames() {
		if !reachable[name] {
			unreachable = append(unreachable, name)
		}
	}

	return Analysis{
		Unreachable: unreachable,
		HasCycle:    g.hasCycle(),
	}
}

func (g *graph) reachableFrom(start string) map[string]bool {
	visited := map[string]bool{start: true}
	queue := []string{start}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, next := range g.edges[n] {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return visited
}

const (
	white = iota
	grey
	black
)

func (g *graph) hasCycle() bool {
	color := make(map[string]int, len(g.nodes))

	var visit func(n string) bool
	visit = func(n string) bool {
		color[n] = grey
		for _, next := range g.edges[n] {
			switch color[next] {
			case grey:
				return true
			case white:
				if visit(next) {
					return true
				}
			}
		}
		color[n] = black
		return false
	}

	for _, n := range g.nodes {
		if color[n] == white && visit(n) {
			return true
		}
	}
	return false
}
