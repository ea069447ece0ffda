package nodetree

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Node is an immutable (tree, path) value addressing one location in the
// registry — possibly a location that does not exist. Chaining via Child
// and Index never touches the registry; only Get, Set, Info and friends
// do. Node is comparable and can be used as a map key: every constructor
// canonicalizes segments to the escaped spelling, so two Equal nodes of
// the same registry are also the same map key.
type Node struct {
	tree *Tree
	path string // normalized, escaped segments joined by the separator; "" is the root
}

// Tree returns the owning registry.
func (n Node) Tree() *Tree { return n.tree }

// Child returns the Node one segment deeper. The name is normalized and,
// when it collides with a reserved word, escaped, so both spellings yield
// the same Node value. The name is not validated; a wrong name fails only
// when the node is used.
func (n Node) Child(name string) Node {
	name = escapeSegment(normalize(name))
	if n.path == "" {
		return Node{tree: n.tree, path: name}
	}
	return Node{tree: n.tree, path: n.path + pathSep + name}
}

// Index returns the Node addressing the i-th element of an indexed
// segment, e.g. demods/0.
func (n Node) Index(i int) Node {
	return n.Child(strconv.Itoa(i))
}

// Segments returns the node's path segments. The root node has none.
func (n Node) Segments() []string {
	if n.path == "" {
		return nil
	}
	return strings.Split(n.path, pathSep)
}

// String returns the absolute raw path of the node.
func (n Node) String() string {
	if n.tree == nil {
		return pathSep + n.path
	}
	return n.tree.RawPath(n)
}

// Equal reports whether both nodes belong to the same registry and
// address the same path once reserved-word escaping is stripped. Nodes
// compare equal regardless of which chaining calls produced them.
func (n Node) Equal(other Node) bool {
	if n.tree != other.tree {
		return false
	}
	a, b := n.Segments(), other.Segments()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if unescapeSegment(a[i]) != unescapeSegment(b[i]) {
			return false
		}
	}
	return true
}

// ContainsWildcard reports whether the node's path carries a wildcard
// segment. Wildcard nodes never resolve to a single descriptor.
func (n Node) ContainsWildcard() bool {
	return containsWildcard(n.path)
}

// Info resolves the node to its single descriptor. Wildcard paths and
// paths without a registered descriptor fail with ErrUnknownPath. The
// result is memoized for the lifetime of the registry.
func (n Node) Info() (*Descriptor, error) {
	st := n.tree.state(n)
	if st.info != nil {
		return st.info, nil
	}
	if n.ContainsWildcard() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPath, n.tree.RawPath(n))
	}
	descs, err := n.tree.Describe(n)
	if err != nil {
		return nil, err
	}
	if len(descs) != 1 {
		return nil, fmt.Errorf("%w: %s matches %d nodes", ErrUnknownPath, n.tree.RawPath(n), len(descs))
	}
	st.info = descs[0]
	return st.info, nil
}

// Children returns the sorted names of the node's direct children,
// derived from a scan over the registry paths. Memoized per node.
func (n Node) Children() []string {
	st := n.tree.state(n)
	if st.children == nil {
		st.fillChildren(n)
	}
	out := make([]string, len(st.children))
	copy(out, st.children)
	return out
}

// HasChild reports whether name is a direct child of the node.
func (n Node) HasChild(name string) bool {
	st := n.tree.state(n)
	if st.children == nil {
		st.fillChildren(n)
	}
	_, ok := st.childSet[escapeSegment(normalize(name))]
	return ok
}

// IsPartial reports whether the node is a strict ancestor of at least one
// registered leaf without having a descriptor of its own path length.
// The scan result is memoized since the registry snapshot is immutable.
func (n Node) IsPartial() bool {
	st := n.tree.state(n)
	if st.partial == nil {
		partial := false
		own := n.Segments()
		n.tree.Walk(func(other Node, _ *Descriptor) bool {
			if isStrictDescendant(own, other.Segments()) {
				partial = true
				return false
			}
			return true
		})
		st.partial = &partial
	}
	return *st.partial
}

// Walk visits every registered (Node, Descriptor) pair that is a strict
// descendant of this node, in registry order. Returning false stops the
// walk.
func (n Node) Walk(fn func(Node, *Descriptor) bool) {
	own := n.Segments()
	n.tree.Walk(func(other Node, d *Descriptor) bool {
		if !isStrictDescendant(own, other.Segments()) {
			return true
		}
		return fn(other, d)
	})
}

// Subscribe registers the node for streaming delivery. Fetch the data
// with the connection's poll mechanism.
func (n Node) Subscribe(ctx context.Context) error {
	return n.tree.conn.Subscribe(ctx, n.tree.RawPath(n))
}

// Unsubscribe deregisters the node from streaming delivery.
func (n Node) Unsubscribe(ctx context.Context) error {
	return n.tree.conn.Unsubscribe(ctx, n.tree.RawPath(n))
}

// isStrictDescendant reports whether child extends parent by at least one
// aligned segment.
func isStrictDescendant(parent, child []string) bool {
	if len(child) <= len(parent) {
		return false
	}
	for i := range parent {
		if parent[i] != child[i] {
			return false
		}
	}
	return true
}
