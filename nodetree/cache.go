package nodetree

import "sort"

// nodeState is the memoized per-node cache: resolved descriptor, child
// segment set, option maps and the partial-node scan result. States are
// keyed by Node identity in the owning Tree and are never invalidated;
// they are only as fresh as the registry snapshot they were filled from.
type nodeState struct {
	info     *Descriptor
	children []string
	childSet map[string]struct{}
	optFwd   map[string]int64
	optRev   map[int64]string
	partial  *bool
}

// state returns the cache entry for n, allocating it on first use.
func (t *Tree) state(n Node) *nodeState {
	st, ok := t.states[n]
	if !ok {
		st = &nodeState{}
		t.states[n] = st
	}
	return st
}

// fillChildren scans the registry for the node's direct children.
func (st *nodeState) fillChildren(n Node) {
	own := n.Segments()
	st.childSet = make(map[string]struct{})
	n.tree.Walk(func(other Node, _ *Descriptor) bool {
		segs := other.Segments()
		if isStrictDescendant(own, segs) {
			st.childSet[segs[len(own)]] = struct{}{}
		}
		return true
	})
	st.children = make([]string, 0, len(st.childSet))
	for name := range st.childSet {
		st.children = append(st.children, name)
	}
	sort.Strings(st.children)
}

// optionMaps returns the cached label<->code maps of the descriptor.
func (st *nodeState) optionMaps(d *Descriptor) (map[string]int64, map[int64]string) {
	if st.optFwd == nil {
		st.optFwd, st.optRev = optionMaps(d.Options)
	}
	return st.optFwd, st.optRev
}
