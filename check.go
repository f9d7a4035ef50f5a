package pipeline

// Parse counts the nodes and edges of p and reports whether it is acyclic.
// A nil pipeline is treated as the empty graph.
func Parse(p *Pipeline) Result {
	if p == nil {
		return Result{IsDAG: true}
	}
	return Result{
		NumNodes: len(p.Nodes),
		NumEdges: len(p.Edges),
		IsDAG:    IsDAG(p.Nodes, p.Edges),
	}
}

// IsDAG reports whether the graph formed by nodes and edges has no cycle,
// using Kahn's algorithm.
//
// Every edge is counted, including edges whose endpoints are not declared
// nodes, but only declared ids are ever queued or processed. The graph is
// acyclic when the processed count equals len(nodes); duplicate ids count
// once per occurrence.
func IsDAG(nodes []Node, edges []Edge) bool {
	adj := make(map[string][]string, len(nodes))
	inDegree := make(map[string]int, len(nodes))
	declared := make(map[string]bool, len(nodes))

	for _, n := range nodes {
		inDegree[n.ID] = 0
		declared[n.ID] = true
	}
	for _, e := range edges {
		adj[e.Source] = append(adj[e.Source], e.Target)
		inDegree[e.Target]++
	}

	stack := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if inDegree[n.ID] == 0 {
			stack = append(stack, n.ID)
		}
	}

	processed := 0
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		processed++

		for _, next := range adj[id] {
			inDegree[next]--
			if inDegree[next] == 0 && declared[next] {
				stack = append(stack, next)
			}
		}
	}

	return processed == len(nodes)
}
