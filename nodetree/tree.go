package nodetree

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
)

// Tree is the path registry: the single source of truth for path→descriptor
// metadata and the gateway for every remote call issued by its Nodes.
//
// The descriptor mapping is loaded once at construction and is immutable
// afterwards except through Update/UpdateMany. A Tree is not safe for
// concurrent use.
type Tree struct {
	conn   Connection
	logger *slog.Logger

	// prefixHide is the top-level segment (e.g. a device id) that users
	// do not have to spell out. Fixed at construction.
	prefixHide string

	// defs maps normalized absolute paths to descriptors; order preserves
	// the merge order of the listing patterns.
	defs  map[string]*Descriptor
	order []string

	// firstLayer is the set of child names visible at the root: children
	// of the hidden prefix promoted to the top, plus the kept prefixes.
	firstLayer   []string
	prefixesKeep []string

	// txn is the open transaction, or nil. All Node writes are buffered
	// into it while it is installed.
	txn *Transaction

	// states holds the per-node memoized caches, keyed by Node identity.
	// Entries live as long as the Tree; metadata patches do not
	// invalidate them.
	states map[Node]*nodeState
}

type treeConfig struct {
	prefixHide string
	patterns   []string
	preloaded  map[string]NodeDef
	logger     *slog.Logger
}

// Option configures a Tree at construction.
type Option func(*treeConfig)

// WithPrefixHide sets the hidden top-level prefix, typically the device
// id. Nodes whose first segment is not a kept prefix get it inserted
// automatically when converted to absolute paths.
func WithPrefixHide(prefix string) Option {
	return func(c *treeConfig) { c.prefixHide = prefix }
}

// WithPatterns sets the glob patterns used for descriptor discovery.
// Later patterns overwrite overlapping keys. Default is ["*"].
func WithPatterns(patterns ...string) Option {
	return func(c *treeConfig) { c.patterns = patterns }
}

// WithPreloaded skips transport discovery and builds the registry from an
// already available listing, e.g. one loaded from a node file.
func WithPreloaded(defs map[string]NodeDef) Option {
	return func(c *treeConfig) { c.preloaded = defs }
}

// WithLogger sets the logger used for transaction diagnostics and the
// synchronous-write fallback warning. Output is discarded by default.
func WithLogger(logger *slog.Logger) Option {
	return func(c *treeConfig) { c.logger = logger }
}

// New builds a Tree over the given connection. Descriptors are requested
// once per pattern and merged into one normalized mapping. New fails if
// any discovered path lacks a leading slash.
func New(ctx context.Context, conn Connection, opts ...Option) (*Tree, error) {
	cfg := treeConfig{patterns: []string{"*"}}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	t := &Tree{
		conn:       conn,
		logger:     cfg.logger,
		prefixHide: normalize(cfg.prefixHide),
		defs:       make(map[string]*Descriptor),
		states:     make(map[Node]*nodeState),
	}

	if cfg.preloaded != nil {
		descs := make(map[string]*Descriptor, len(cfg.preloaded))
		for path, def := range cfg.preloaded {
			if def.Node == "" {
				def.Node = path
			}
			d, err := def.descriptor()
			if err != nil {
				return nil, err
			}
			descs[path] = d
		}
		t.merge(descs)
	} else {
		for _, pattern := range cfg.patterns {
			raw, err := conn.ListNodesJSON(ctx, pattern)
			if err != nil {
				return nil, fmt.Errorf("nodetree: list nodes %q: %w", pattern, err)
			}
			descs, err := parseListing(raw)
			if err != nil {
				return nil, err
			}
			t.merge(descs)
		}
	}

	if err := t.buildFirstLayer(); err != nil {
		return nil, err
	}
	return t, nil
}

// merge folds a parsed listing into the registry. Keys are normalized;
// new keys are appended to the registry order in sorted order, existing
// keys keep their position and get their descriptor overwritten.
func (t *Tree) merge(descs map[string]*Descriptor) {
	keys := make([]string, 0, len(descs))
	for key := range descs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		norm := normalize(key)
		if _, ok := t.defs[norm]; !ok {
			t.order = append(t.order, norm)
		}
		t.defs[norm] = descs[key]
	}
}

// buildFirstLayer derives the kept prefixes and the first layer of child
// names visible to callers.
func (t *Tree) buildFirstLayer() error {
	seen := make(map[string]struct{})
	seenKeep := make(map[string]struct{})
	for _, key := range t.order {
		if !strings.HasPrefix(key, pathSep) {
			return fmt.Errorf("%w: %s: leading slash not found", ErrMalformedListing, key)
		}
		segs := splitRaw(key)
		if len(segs) == 0 || segs[0] == "" {
			return fmt.Errorf("%w: %s: empty path", ErrMalformedListing, key)
		}
		if t.prefixHide != "" && segs[0] == t.prefixHide {
			if len(segs) < 2 {
				return fmt.Errorf("%w: %s: nothing below hidden prefix", ErrMalformedListing, key)
			}
			if _, ok := seen[segs[1]]; !ok {
				seen[segs[1]] = struct{}{}
				t.firstLayer = append(t.firstLayer, segs[1])
			}
		} else {
			if _, ok := seenKeep[segs[0]]; !ok {
				seenKeep[segs[0]] = struct{}{}
				t.prefixesKeep = append(t.prefixesKeep, segs[0])
			}
		}
	}
	t.firstLayer = append(t.firstLayer, t.prefixesKeep...)
	return nil
}

// Connection returns the underlying transport.
func (t *Tree) Connection() Connection { return t.conn }

// PrefixHide returns the hidden prefix, or "" if none is set.
func (t *Tree) PrefixHide() string { return t.prefixHide }

// FirstLayer returns the child names visible at the root.
func (t *Tree) FirstLayer() []string {
	out := make([]string, len(t.firstLayer))
	copy(out, t.firstLayer)
	return out
}

// HasChild reports whether name is part of the first layer.
func (t *Tree) HasChild(name string) bool {
	name = normalize(name)
	for _, c := range t.firstLayer {
		if c == name {
			return true
		}
	}
	return false
}

// Len returns the number of registered descriptors.
func (t *Tree) Len() int { return len(t.defs) }

// Root returns the Node addressing the (virtual) registry root.
func (t *Tree) Root() Node { return Node{tree: t} }

// Child returns the Node for a first-layer child. The name is
// canonicalized like Node.Child but never validated; errors surface on
// use.
func (t *Tree) Child(name string) Node { return t.Root().Child(name) }

// Path builds a Node from a slash-separated path. Absolute paths (leading
// slash) are converted with the hidden prefix dropped; relative paths are
// taken segment by segment.
func (t *Tree) Path(p string) Node {
	p = normalize(p)
	if strings.HasPrefix(p, pathSep) {
		return t.NodeFromRaw(p)
	}
	n := t.Root()
	for _, seg := range strings.Split(p, pathSep) {
		if seg != "" {
			n = n.Child(seg)
		}
	}
	return n
}

// NodeFromRaw converts an absolute raw path into a Node. Segments that
// collide with a reserved word are escaped; the hidden prefix segment is
// dropped, making it implicit.
func (t *Tree) NodeFromRaw(raw string) Node {
	segs := splitRaw(normalize(raw))
	for i, seg := range segs {
		segs[i] = escapeSegment(seg)
	}
	if t.prefixHide != "" && len(segs) > 0 && segs[0] == t.prefixHide {
		segs = segs[1:]
	}
	return t.node(segs)
}

// RawPath converts a Node into its absolute raw path, inserting the
// hidden prefix unless the first segment is a kept prefix. Inverse of
// NodeFromRaw for every concrete registered path.
func (t *Tree) RawPath(n Node) string {
	segs := n.Segments()
	for i, seg := range segs {
		segs[i] = unescapeSegment(seg)
	}
	if len(segs) == 0 {
		return pathSep
	}
	if t.prefixHide == "" || t.isKeptPrefix(segs[0]) {
		return pathSep + strings.Join(segs, pathSep)
	}
	return pathSep + t.prefixHide + pathSep + strings.Join(segs, pathSep)
}

func (t *Tree) isKeptPrefix(seg string) bool {
	for _, p := range t.prefixesKeep {
		if p == seg {
			return true
		}
	}
	return false
}

// rawFromString converts a path string into an absolute raw path. A
// relative path gets the hidden prefix inserted unless it starts with a
// kept prefix. A relative path that already spells out the hidden prefix
// is rejected: it must be written as an absolute path instead.
func (t *Tree) rawFromString(path string) (string, error) {
	path = normalize(path)
	if strings.HasPrefix(path, pathSep) || t.prefixHide == "" {
		if !strings.HasPrefix(path, pathSep) {
			return pathSep + path, nil
		}
		return path, nil
	}
	first, _, _ := strings.Cut(path, pathSep)
	if first == t.prefixHide {
		return "", fmt.Errorf("nodetree: %s is a relative path but should be an absolute path (leading slash)", path)
	}
	if t.isKeptPrefix(first) {
		return pathSep + path, nil
	}
	return pathSep + t.prefixHide + pathSep + path, nil
}

// Describe looks up the descriptors matching a Node's path. Wildcards
// resolve to every match in registry order. Describe never performs a
// remote call; an empty match set is ErrUnknownPath.
func (t *Tree) Describe(n Node) ([]*Descriptor, error) {
	return t.describeKey(t.RawPath(n))
}

// DescribePath is Describe for a path string (absolute or relative).
func (t *Tree) DescribePath(path string) ([]*Descriptor, error) {
	key, err := t.rawFromString(path)
	if err != nil {
		return nil, err
	}
	return t.describeKey(key)
}

func (t *Tree) describeKey(key string) ([]*Descriptor, error) {
	matches := matchKeys(t.order, key)
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPath, key)
	}
	out := make([]*Descriptor, len(matches))
	for i, k := range matches {
		out[i] = t.defs[k]
	}
	return out, nil
}

// Update patches the descriptors matching path. With add set, a missing
// match inserts a new descriptor for the literal path, which lets callers
// retrofit computed addresses that behave like ordinary nodes. Patches do
// not invalidate node caches already filled from the old metadata.
func (t *Tree) Update(path string, upd DescriptorUpdate, add bool) error {
	key, err := t.rawFromString(path)
	if err != nil {
		return err
	}
	matches := matchKeys(t.order, key)
	if len(matches) == 0 {
		if !add {
			return fmt.Errorf("%w: %s", ErrUnknownPath, key)
		}
		if containsWildcard(key) {
			return fmt.Errorf("%w: cannot create wildcard path %s", ErrUnknownPath, key)
		}
		d := &Descriptor{Path: key}
		upd.apply(d)
		t.defs[key] = d
		t.order = append(t.order, key)
		return nil
	}
	for _, k := range matches {
		upd.apply(t.defs[k])
	}
	return nil
}

// UpdateMany applies Update over a map of patches, in sorted key order.
func (t *Tree) UpdateMany(updates map[string]DescriptorUpdate, add bool) error {
	keys := make([]string, 0, len(updates))
	for key := range updates {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if err := t.Update(key, updates[key], add); err != nil {
			return err
		}
	}
	return nil
}

// Walk visits every (Node, Descriptor) pair in registry order. Returning
// false from fn stops the walk.
func (t *Tree) Walk(fn func(Node, *Descriptor) bool) {
	for _, key := range t.order {
		if !fn(t.NodeFromRaw(key), t.defs[key]) {
			return
		}
	}
}

// matchKeys resolves a pattern against the registry keys.
func (t *Tree) matchKeys(pattern string) []string {
	return matchKeys(t.order, pattern)
}

// node builds a Node from already normalized, escaped segments.
func (t *Tree) node(segs []string) Node {
	return Node{tree: t, path: strings.Join(segs, pathSep)}
}
