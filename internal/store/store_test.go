package store

import (
	"testing"

	"github.com/dominikbraun/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreVertices(t *testing.T) {
	st := NewMemoryStore[string, string]()

	require.NoError(t, st.AddVertex("a", "a", graph.VertexProperties{}))
	assert.ErrorIs(t, st.AddVertex("a", "a", graph.VertexProperties{}), graph.ErrVertexAlreadyExists)

	count, err := st.VertexCount()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, _, err = st.Vertex("missing")
	assert.ErrorIs(t, err, graph.ErrVertexNotFound)
}

func TestMemoryStoreUpdateVertex(t *testing.T) {
	st := NewMemoryStore[string, string]()
	require.NoError(t, st.AddVertex("a", "a", graph.VertexProperties{
		Attributes: map[string]string{},
	}))

	st.UpdateVertex("a", func(p *graph.VertexProperties) {
		p.Attributes["xlabel"] = "5ms"
	})

	_, props, err := st.Vertex("a")
	require.NoError(t, err)
	assert.Equal(t, "5ms", props.Attributes["xlabel"])

	// Unknown hashes are a no-op.
	st.UpdateVertex("missing", func(p *graph.VertexProperties) {
		p.Weight = 1
	})
}

func TestMemoryStoreEdges(t *testing.T) {
	st := NewMemoryStore[string, string]()
	require.NoError(t, st.AddVertex("a", "a", graph.VertexProperties{}))
	require.NoError(t, st.AddVertex("b", "b", graph.VertexProperties{}))

	require.NoError(t, st.AddEdge("a", "b", graph.Edge[string]{Source: "a", Target: "b"}))

	edge, err := st.Edge("a", "b")
	require.NoError(t, err)
	assert.Equal(t, "b", edge.Target)

	_, err = st.Edge("b", "a")
	assert.ErrorIs(t, err, graph.ErrEdgeNotFound)

	edges, err := st.ListEdges()
	require.NoError(t, err)
	assert.Len(t, edges, 1)

	assert.ErrorIs(t, st.RemoveVertex("a"), graph.ErrVertexHasEdges)

	require.NoError(t, st.RemoveEdge("a", "b"))
	require.NoError(t, st.RemoveVertex("a"))
}
