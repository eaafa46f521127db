package vtree

import "github.com/Mr-Dark-debug/covidash/internal/reconcile"

// Handlers drive a Join.
type Handlers struct {
	// Enter creates the node for a new key in its empty state.
	Enter func(key string, index int) *Node
	// Update binds the datum at index to a live node. It runs for entered
	// and retained nodes alike, in desired order.
	Update func(n *Node, index int)
	// Exit starts the removal of a node and must eventually call remove.
	// A nil Exit removes the node at once.
	Exit func(n *Node, remove func())
}

// Join reconciles the live children of parent with the given kind against
// keys. Retained nodes keep their identity and are moved into the desired
// order; nodes on their way out stay after them until removed.
func Join(parent *Node, kind string, keys []string, h Handlers) ([]*Node, error) {
	live := parent.Select(kind)
	current := make([]string, len(live))
	for i, c := range live {
		current[i] = c.Key
	}

	diff, err := reconcile.Diff(current, keys)
	if err != nil {
		return nil, err
	}

	ordered := make([]*Node, len(keys))
	for _, u := range diff.Update {
		ordered[u.NewIndex] = live[u.OldIndex]
	}
	for _, e := range diff.Enter {
		n := h.Enter(e.Key, e.NewIndex)
		n.Kind = kind
		n.Key = e.Key
		ordered[e.NewIndex] = n
	}

	exiting := make([]*Node, 0, len(diff.Exit))
	for _, x := range diff.Exit {
		n := live[x.OldIndex]
		n.exiting = true
		exiting = append(exiting, n)
	}

	// Rebuild the child list: other kinds first, then live nodes in
	// desired order, then everything still animating out.
	var rest, leaving []*Node
	for _, c := range parent.children {
		switch {
		case c.Kind != kind:
			rest = append(rest, c)
		case c.exiting:
			leaving = append(leaving, c)
		}
	}
	children := make([]*Node, 0, len(rest)+len(ordered)+len(leaving))
	children = append(children, rest...)
	for _, n := range ordered {
		n.parent = parent
		children = append(children, n)
	}
	children = append(children, leaving...)
	parent.children = children

	if h.Update != nil {
		for i, n := range ordered {
			h.Update(n, i)
		}
	}

	for _, n := range exiting {
		node := n
		remove := func() { parent.Remove(node) }
		if h.Exit == nil {
			remove()
			continue
		}
		h.Exit(node, remove)
	}

	return ordered, nil
}
