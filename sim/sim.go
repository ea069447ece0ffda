package sim

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/gobwas/glob"

	"github.com/kvasirlab/nodekit/nodetree"
)

var (
	_ nodetree.Connection    = (*Connection)(nil)
	_ nodetree.ComplexGetter = (*Connection)(nil)
	_ nodetree.SampleGetter  = (*Connection)(nil)
	_ nodetree.DIOGetter     = (*Connection)(nil)
	_ nodetree.VectorSetter  = (*Connection)(nil)
	_ nodetree.SyncSetter    = (*Connection)(nil)
)

// Connection is an in-memory implementation of nodetree.Connection plus
// all optional capabilities. Writes are recorded for inspection.
type Connection struct {
	mu sync.Mutex

	defs  map[string]nodetree.NodeDef
	order []string

	values     map[string]any
	samples    map[string]map[string]any
	subscribed map[string]struct{}

	// clock is a fake device clock: every deep read hands out the next
	// tick as timestamp.
	clock         uint64
	noTimestamps  bool
	failListNodes error

	// Write records, in call order.
	Sets     []nodetree.SetEntry
	SyncSets []nodetree.SetEntry
	Vectors  []nodetree.SetEntry
	Batches  [][]nodetree.SetEntry
}

// Option configures a Connection.
type Option func(*Connection)

// WithValues seeds initial node values, keyed by absolute path.
func WithValues(values map[string]any) Option {
	return func(c *Connection) {
		for path, v := range values {
			c.values[strings.ToLower(path)] = v
		}
	}
}

// WithSamples seeds structured sample data served by GetSample and GetDIO.
func WithSamples(samples map[string]map[string]any) Option {
	return func(c *Connection) {
		for path, s := range samples {
			c.samples[strings.ToLower(path)] = s
		}
	}
}

// WithoutTimestamps makes deep reads omit timestamps, like targets that
// do not report a device clock.
func WithoutTimestamps() Option {
	return func(c *Connection) { c.noTimestamps = true }
}

// WithListError makes ListNodesJSON fail, for construction error tests.
func WithListError(err error) Option {
	return func(c *Connection) { c.failListNodes = err }
}

// New builds a Connection serving the given definitions, keyed by
// absolute path. Keys are lowercased; definitions without an explicit
// Node field get their key as canonical path.
func New(defs map[string]nodetree.NodeDef, opts ...Option) *Connection {
	c := &Connection{
		defs:       make(map[string]nodetree.NodeDef, len(defs)),
		values:     make(map[string]any),
		samples:    make(map[string]map[string]any),
		subscribed: make(map[string]struct{}),
	}
	for path, def := range defs {
		key := strings.ToLower(path)
		if def.Node == "" {
			def.Node = path
		}
		c.defs[key] = def
		c.order = append(c.order, key)
	}
	sort.Strings(c.order)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Value returns the current value of a node, for test assertions.
func (c *Connection) Value(path string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[strings.ToLower(path)]
	return v, ok
}

// SetValue overwrites a node value directly, bypassing the write records.
func (c *Connection) SetValue(path string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[strings.ToLower(path)] = value
}

// Subscribed reports whether the path has an active subscription.
func (c *Connection) Subscribed(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.subscribed[strings.ToLower(path)]
	return ok
}

func (c *Connection) matchKeys(pattern string) []string {
	if !strings.ContainsAny(pattern, "*?[") {
		if _, ok := c.defs[pattern]; ok {
			return []string{pattern}
		}
		return nil
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil
	}
	var out []string
	for _, key := range c.order {
		if g.Match(key) {
			out = append(out, key)
		}
	}
	return out
}

// ListNodesJSON returns the JSON listing of all definitions matching the
// pattern.
func (c *Connection) ListNodesJSON(_ context.Context, pattern string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failListNodes != nil {
		return nil, c.failListNodes
	}
	out := make(map[string]nodetree.NodeDef)
	for _, key := range c.matchKeys(strings.ToLower(pattern)) {
		out[key] = c.defs[key]
	}
	return json.Marshal(out)
}

// Get performs a deep read over the pattern. Sample and streaming nodes
// carry no deep-readable value and are skipped, so a deep read against
// one of them yields an empty result.
func (c *Connection) Get(_ context.Context, pattern string) (map[string]nodetree.TimedValue, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]nodetree.TimedValue)
	for _, key := range c.matchKeys(strings.ToLower(pattern)) {
		switch nodetree.ParseKind(c.defs[key].Type) {
		case nodetree.KindDemodSample, nodetree.KindDIOSample, nodetree.KindStream, nodetree.KindUnknown:
			continue
		}
		tv := nodetree.TimedValue{Value: c.currentValue(key)}
		if !c.noTimestamps {
			c.clock++
			tv.Timestamp = c.clock
			tv.HasTimestamp = true
		}
		out[key] = tv
	}
	return out, nil
}

// currentValue returns the stored value or the kind's zero value.
func (c *Connection) currentValue(key string) any {
	if v, ok := c.values[key]; ok {
		return v
	}
	switch nodetree.ParseKind(c.defs[key].Type) {
	case nodetree.KindInteger:
		return int64(0)
	case nodetree.KindDouble:
		return float64(0)
	case nodetree.KindString:
		return ""
	case nodetree.KindComplex:
		return complex128(0)
	case nodetree.KindVector:
		return []float64(nil)
	}
	return nil
}

func (c *Connection) lookup(path string) (string, error) {
	key := strings.ToLower(path)
	if _, ok := c.defs[key]; !ok {
		return "", fmt.Errorf("sim: no such node: %s", path)
	}
	return key, nil
}

// GetInt returns the cached integer value of the path.
func (c *Connection) GetInt(_ context.Context, path string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key, err := c.lookup(path)
	if err != nil {
		return 0, err
	}
	switch v := c.currentValue(key).(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case string:
		return 0, fmt.Errorf("sim: %s holds a string", path)
	}
	return 0, nil
}

// GetDouble returns the cached floating point value of the path.
func (c *Connection) GetDouble(_ context.Context, path string) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key, err := c.lookup(path)
	if err != nil {
		return 0, err
	}
	switch v := c.currentValue(key).(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	case int:
		return float64(v), nil
	}
	return 0, nil
}

// GetString returns the cached string value of the path.
func (c *Connection) GetString(_ context.Context, path string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key, err := c.lookup(path)
	if err != nil {
		return "", err
	}
	if s, ok := c.currentValue(key).(string); ok {
		return s, nil
	}
	return fmt.Sprint(c.currentValue(key)), nil
}

// GetComplex returns the cached complex value of the path.
func (c *Connection) GetComplex(_ context.Context, path string) (complex128, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key, err := c.lookup(path)
	if err != nil {
		return 0, err
	}
	if z, ok := c.currentValue(key).(complex128); ok {
		return z, nil
	}
	return 0, nil
}

// GetSample returns the structured sample of a demodulator node.
func (c *Connection) GetSample(_ context.Context, path string) (map[string]any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key, err := c.lookup(path)
	if err != nil {
		return nil, err
	}
	s, ok := c.samples[key]
	if !ok {
		return nil, fmt.Errorf("sim: no sample data for %s", path)
	}
	return s, nil
}

// GetDIO returns the digital I/O sample of a node.
func (c *Connection) GetDIO(ctx context.Context, path string) (map[string]any, error) {
	return c.GetSample(ctx, path)
}

// Set stores the value and records the write.
func (c *Connection) Set(_ context.Context, path string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key, err := c.lookup(path)
	if err != nil {
		return err
	}
	c.values[key] = value
	c.Sets = append(c.Sets, nodetree.SetEntry{Path: key, Value: value})
	return nil
}

// SetBatch stores all entries and records them as one batch.
func (c *Connection) SetBatch(_ context.Context, entries []nodetree.SetEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	batch := make([]nodetree.SetEntry, 0, len(entries))
	for _, e := range entries {
		key, err := c.lookup(e.Path)
		if err != nil {
			return err
		}
		c.values[key] = e.Value
		batch = append(batch, nodetree.SetEntry{Path: key, Value: e.Value})
	}
	c.Batches = append(c.Batches, batch)
	return nil
}

// SetVector stores a vector value through the dedicated vector write.
func (c *Connection) SetVector(_ context.Context, path string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key, err := c.lookup(path)
	if err != nil {
		return err
	}
	c.values[key] = value
	c.Vectors = append(c.Vectors, nodetree.SetEntry{Path: key, Value: value})
	return nil
}

// SyncSetInt stores the value like a synchronous write would.
func (c *Connection) SyncSetInt(_ context.Context, path string, value int64) error {
	return c.syncSet(path, value)
}

// SyncSetDouble stores the value like a synchronous write would.
func (c *Connection) SyncSetDouble(_ context.Context, path string, value float64) error {
	return c.syncSet(path, value)
}

// SyncSetString stores the value like a synchronous write would.
func (c *Connection) SyncSetString(_ context.Context, path string, value string) error {
	return c.syncSet(path, value)
}

func (c *Connection) syncSet(path string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key, err := c.lookup(path)
	if err != nil {
		return err
	}
	c.values[key] = value
	c.SyncSets = append(c.SyncSets, nodetree.SetEntry{Path: key, Value: value})
	return nil
}

// Subscribe registers the path for streaming delivery.
func (c *Connection) Subscribe(_ context.Context, path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key, err := c.lookup(path)
	if err != nil {
		return err
	}
	c.subscribed[key] = struct{}{}
	return nil
}

// Unsubscribe removes the path's subscription.
func (c *Connection) Unsubscribe(_ context.Context, path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key, err := c.lookup(path)
	if err != nil {
		return err
	}
	delete(c.subscribed, key)
	return nil
}
