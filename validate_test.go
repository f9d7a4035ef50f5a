package pipeline

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		p := &Pipeline{Nodes: nodes("A", "B"), Edges: edges([2]string{"A", "B"})}
		require.NoError(t, Validate(p))
	})

	t.Run("empty lists are allowed", func(t *testing.T) {
		require.NoError(t, Validate(&Pipeline{Nodes: []Node{}, Edges: []Edge{}}))
	})

	t.Run("missing lists", func(t *testing.T) {
		err := Validate(&Pipeline{})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidPipeline)

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Len(t, verr.Fields, 2)
	})

	t.Run("node fields", func(t *testing.T) {
		p := &Pipeline{Nodes: []Node{{Type: strPtr("text")}}, Edges: []Edge{}}

		var verr *ValidationError
		require.ErrorAs(t, Validate(p), &verr)
		assert.ElementsMatch(t, []string{
			"Pipeline.nodes[0].id: failed 'required'",
			"Pipeline.nodes[0].position: failed 'required'",
			"Pipeline.nodes[0].data: failed 'required'",
		}, verr.Fields)
	})

	t.Run("missing type", func(t *testing.T) {
		p := &Pipeline{Nodes: nodes("A"), Edges: []Edge{}}
		p.Nodes[0].Type = nil

		var verr *ValidationError
		require.ErrorAs(t, Validate(p), &verr)
		assert.Equal(t, []string{"Pipeline.nodes[0].type: failed 'required'"}, verr.Fields)
	})

	t.Run("empty type is allowed", func(t *testing.T) {
		p := &Pipeline{Nodes: nodes("A"), Edges: []Edge{}}
		p.Nodes[0].Type = strPtr("")
		require.NoError(t, Validate(p))
	})

	t.Run("edge fields", func(t *testing.T) {
		p := &Pipeline{Nodes: []Node{}, Edges: []Edge{{ID: "e1", Source: "A"}}}

		var verr *ValidationError
		require.ErrorAs(t, Validate(p), &verr)
		assert.Equal(t, []string{"Pipeline.edges[0].target: failed 'required'"}, verr.Fields)
	})

	t.Run("nil", func(t *testing.T) {
		assert.ErrorIs(t, Validate(nil), ErrInvalidPipeline)
	})
}

func TestDecode(t *testing.T) {
	t.Run("round trips opaque fields", func(t *testing.T) {
		body := `{
			"nodes": [
				{"id": "input-1", "type": "customInput", "position": {"x": 10.5, "y": -3}, "data": {"inputName": "q", "nested": {"k": [1, 2]}}},
				{"id": "llm-1", "type": "llm", "position": {"x": 0, "y": 0}, "data": {}}
			],
			"edges": [{"id": "e1", "source": "input-1", "target": "llm-1"}]
		}`

		p, err := Decode(strings.NewReader(body))
		require.NoError(t, err)
		require.Len(t, p.Nodes, 2)
		require.NotNil(t, p.Nodes[0].Type)
		assert.Equal(t, "customInput", *p.Nodes[0].Type)
		assert.Equal(t, &Position{X: 10.5, Y: -3}, p.Nodes[0].Position)
		assert.Equal(t, "q", p.Nodes[0].Data["inputName"])
		assert.Equal(t, Result{NumNodes: 2, NumEdges: 1, IsDAG: true}, Parse(p))
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := Decode(strings.NewReader(`{"nodes": [`))
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidPipeline)
	})

	t.Run("missing edges", func(t *testing.T) {
		_, err := Decode(strings.NewReader(`{"nodes": []}`))
		assert.ErrorIs(t, err, ErrInvalidPipeline)
	})

	t.Run("missing type", func(t *testing.T) {
		_, err := Decode(strings.NewReader(`{
			"nodes": [{"id": "A", "position": {"x": 0, "y": 0}, "data": {}}],
			"edges": []
		}`))
		assert.ErrorIs(t, err, ErrInvalidPipeline)
	})

	t.Run("wrong value type", func(t *testing.T) {
		_, err := Decode(strings.NewReader(`{
			"nodes": [{"id": "A", "type": "t", "position": {"x": "a", "y": 0}, "data": {}}],
			"edges": []
		}`))
		assert.ErrorIs(t, err, ErrInvalidPipeline)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Len(t, verr.Fields, 1)
		assert.Contains(t, verr.Fields[0], "failed 'type'")
	})
}

func TestUnmarshal(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		p, err := Unmarshal([]byte(`{"nodes": [], "edges": []}`))
		require.NoError(t, err)
		assert.Equal(t, Result{IsDAG: true}, Parse(p))
	})

	t.Run("edges not a list", func(t *testing.T) {
		_, err := Unmarshal([]byte(`{"nodes": [], "edges": {}}`))
		assert.ErrorIs(t, err, ErrInvalidPipeline)
	})

	t.Run("syntax error", func(t *testing.T) {
		_, err := Unmarshal([]byte(`{"nodes": [}`))
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidPipeline)
	})
}
