// Package vtree is the retained visual tree the chart components render
// into. Nodes carry attributes, classes and text; painting them is the
// job of the component that owns the tree.
package vtree

import "sort"

// Node is one element of the retained tree.
type Node struct {
	Kind string
	Key  string

	// Datum is the value last bound to the node by a Join.
	Datum any

	attrs    map[string]string
	classes  map[string]bool
	text     string
	children []*Node
	parent   *Node
	exiting  bool
}

// New creates a detached node.
func New(kind string) *Node {
	return &Node{Kind: kind}
}

func (n *Node) Attr(name string) string {
	return n.attrs[name]
}

func (n *Node) SetAttr(name, value string) {
	if n.attrs == nil {
		n.attrs = make(map[string]string)
	}
	n.attrs[name] = value
}

// AttrNames lists set attributes in lexical order.
func (n *Node) AttrNames() []string {
	names := make([]string, 0, len(n.attrs))
	for k := range n.attrs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (n *Node) HasClass(name string) bool {
	return n.classes[name]
}

func (n *Node) SetClass(name string, on bool) {
	if !on {
		delete(n.classes, name)
		return
	}
	if n.classes == nil {
		n.classes = make(map[string]bool)
	}
	n.classes[name] = true
}

func (n *Node) Text() string {
	return n.text
}

func (n *Node) SetText(s string) {
	n.text = s
}

// Exiting reports whether the node is animating out.
func (n *Node) Exiting() bool {
	return n.exiting
}

// Parent returns the containing node, nil when detached.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns a copy of the child list, exiting nodes included.
func (n *Node) Children() []*Node {
	return append([]*Node(nil), n.children...)
}

// Select returns the live (non-exiting) children of the given kind.
func (n *Node) Select(kind string) []*Node {
	var out []*Node
	for _, c := range n.children {
		if c.Kind == kind && !c.exiting {
			out = append(out, c)
		}
	}
	return out
}

// First returns the first live child of the given kind, or nil.
func (n *Node) First(kind string) *Node {
	for _, c := range n.children {
		if c.Kind == kind && !c.exiting {
			return c
		}
	}
	return nil
}

// Append adds child as the last child of n.
func (n *Node) Append(child *Node) *Node {
	if child.parent != nil {
		child.parent.Remove(child)
	}
	child.parent = n
	n.children = append(n.children, child)
	return child
}

// Remove detaches child from n. Removing a node that is not a child is a no-op.
func (n *Node) Remove(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

// Walk visits n and its descendants depth first.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.Walk(fn)
	}
}
