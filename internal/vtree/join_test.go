package vtree

import (
	"errors"
	"testing"

	"github.com/Mr-Dark-debug/covidash/internal/reconcile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keysOf(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Key
	}
	return out
}

func plainHandlers(entered *[]string) Handlers {
	return Handlers{
		Enter: func(key string, _ int) *Node {
			*entered = append(*entered, key)
			n := New("row")
			n.SetText("")
			return n
		},
		Update: func(n *Node, i int) {
			n.SetText(n.Key)
		},
	}
}

func TestJoinMovesRetainedNodes(t *testing.T) {
	root := New("tbody")
	var entered []string

	first, err := Join(root, "row", []string{"a", "b", "c"}, plainHandlers(&entered))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, entered)

	entered = nil
	second, err := Join(root, "row", []string{"c", "a", "b"}, plainHandlers(&entered))
	require.NoError(t, err)
	assert.Empty(t, entered, "reordering must not recreate nodes")
	assert.Same(t, first[2], second[0])
	assert.Same(t, first[0], second[1])
	assert.Same(t, first[1], second[2])
	assert.Equal(t, []string{"c", "a", "b"}, keysOf(root.Children()))
}

func TestJoinExitDefersRemoval(t *testing.T) {
	root := New("g")
	var entered []string
	h := plainHandlers(&entered)
	_, err := Join(root, "path", []string{"a", "b"}, h)
	require.NoError(t, err)

	var pending []func()
	h.Exit = func(n *Node, remove func()) {
		pending = append(pending, remove)
	}
	nodes, err := Join(root, "path", []string{"b"}, h)
	require.NoError(t, err)

	assert.Equal(t, []string{"b"}, keysOf(nodes))
	assert.Equal(t, []string{"b", "a"}, keysOf(root.Children()), "exiting node stays until removed")
	assert.True(t, root.Children()[1].Exiting())
	assert.Len(t, root.Select("path"), 1)

	require.Len(t, pending, 1)
	pending[0]()
	assert.Equal(t, []string{"b"}, keysOf(root.Children()))
}

func TestJoinReenterWhileExiting(t *testing.T) {
	root := New("g")
	var entered []string
	h := plainHandlers(&entered)
	h.Exit = func(n *Node, remove func()) {}

	_, err := Join(root, "path", []string{"a"}, h)
	require.NoError(t, err)
	_, err = Join(root, "path", nil, h)
	require.NoError(t, err)
	nodes, err := Join(root, "path", []string{"a"}, h)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "a"}, entered)
	assert.False(t, nodes[0].Exiting())
	assert.Len(t, root.Children(), 2)
}

func TestJoinKeepsOtherKinds(t *testing.T) {
	root := New("legend")
	root.Append(New("title"))
	var entered []string

	_, err := Join(root, "entry", []string{"x"}, plainHandlers(&entered))
	require.NoError(t, err)

	kids := root.Children()
	require.Len(t, kids, 2)
	assert.Equal(t, "title", kids[0].Kind)
	assert.Equal(t, "entry", kids[1].Kind)

	var kinds []string
	root.Walk(func(n *Node) { kinds = append(kinds, n.Kind) })
	assert.Equal(t, []string{"legend", "title", "entry"}, kinds)
}

func TestJoinDuplicateKey(t *testing.T) {
	root := New("g")
	var entered []string
	_, err := Join(root, "path", []string{"a", "a"}, plainHandlers(&entered))
	assert.True(t, errors.Is(err, reconcile.ErrKeyConflict))
	assert.Empty(t, root.Children(), "tree untouched on conflict")
}

func TestNodeAttributes(t *testing.T) {
	n := New("div")
	n.SetAttr("data-count", "3")
	n.SetClass("hidden", true)
	assert.Equal(t, "3", n.Attr("data-count"))
	assert.True(t, n.HasClass("hidden"))
	n.SetClass("hidden", false)
	assert.False(t, n.HasClass("hidden"))
	assert.Equal(t, []string{"data-count"}, n.AttrNames())
}
