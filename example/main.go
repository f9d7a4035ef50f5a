package main

import (
	"encoding/json"
	"fmt"

	"github.com/meikuraledutech/pipeline"
)

func main() {
	node := func(id, typ string, x float64) pipeline.Node {
		return pipeline.Node{
			ID:       id,
			Type:     &typ,
			Position: &pipeline.Position{X: x, Y: 0},
			Data:     map[string]any{"id": id},
		}
	}
	edge := func(id, source, target string) pipeline.Edge {
		return pipeline.Edge{ID: id, Source: source, Target: target}
	}

	// ── Chain: input → llm → output ───────────────────────────────────
	chain := &pipeline.Pipeline{
		Nodes: []pipeline.Node{
			node("input-1", "customInput", 0),
			node("llm-1", "llm", 200),
			node("output-1", "customOutput", 400),
		},
		Edges: []pipeline.Edge{
			edge("e1", "input-1", "llm-1"),
			edge("e2", "llm-1", "output-1"),
		},
	}
	fmt.Println("chain:")
	printJSON(pipeline.Parse(chain))

	// ── Same chain with a back-edge ───────────────────────────────────
	cyclic := &pipeline.Pipeline{
		Nodes: chain.Nodes,
		Edges: append(append([]pipeline.Edge{}, chain.Edges...), edge("e3", "output-1", "input-1")),
	}
	fmt.Println("\nchain with back-edge:")
	printJSON(pipeline.Parse(cyclic))

	// ── Empty pipeline ────────────────────────────────────────────────
	fmt.Println("\nempty:")
	printJSON(pipeline.Parse(&pipeline.Pipeline{Nodes: []pipeline.Node{}, Edges: []pipeline.Edge{}}))

	// ── Shape validation happens before the checker ───────────────────
	if err := pipeline.Validate(&pipeline.Pipeline{Nodes: []pipeline.Node{{ID: "x"}}}); err != nil {
		fmt.Printf("\nrejected: %v\n", err)
	}
}

func printJSON(v any) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}
