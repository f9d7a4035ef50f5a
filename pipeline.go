package pipeline

import "errors"

var (
	ErrInvalidPipeline = errors.New("pipeline: invalid pipeline")
	ErrCycleDetected   = errors.New("pipeline: cycle detected, graph is not acyclic")
)

// Pipeline is the graph submitted in one request.
type Pipeline struct {
	Nodes []Node `json:"nodes" yaml:"nodes" validate:"required,dive"`
	Edges []Edge `json:"edges" yaml:"edges" validate:"required,dive"`
}

// Node is a vertex of the pipeline.
// Only ID takes part in the acyclicity check; Type, Position and Data are carried as-is.
// Type must be present but may be empty.
type Node struct {
	ID       string         `json:"id" yaml:"id" validate:"required"`
	Type     *string        `json:"type" yaml:"type" validate:"required"`
	Position *Position      `json:"position" yaml:"position" validate:"required"`
	Data     map[string]any `json:"data" yaml:"data" validate:"required"`
}

type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Edge is a directed connection from Source to Target.
// Both are node id references and may name nodes that were never declared.
type Edge struct {
	ID     string `json:"id" yaml:"id" validate:"required"`
	Source string `json:"source" yaml:"source" validate:"required"`
	Target string `json:"target" yaml:"target" validate:"required"`
}

// Result is the analysis returned for a pipeline.
type Result struct {
	NumNodes int  `json:"num_nodes" yaml:"num_nodes"`
	NumEdges int  `json:"num_edges" yaml:"num_edges"`
	IsDAG    bool `json:"is_dag" yaml:"is_dag"`
}
