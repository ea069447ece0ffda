package nodetree

import "context"

// Connection is the transport capability a Tree consumes. Implementations
// talk to the remote parameter store; this package never opens sockets
// itself.
//
// All paths passed to a Connection are absolute (leading slash, lowercase).
// Patterns may contain shell-style wildcards (*, ?, [...]) where * also
// crosses path separators.
type Connection interface {
	// ListNodesJSON returns the raw JSON node listing for the pattern:
	// an object keyed by absolute path, each value a descriptor with the
	// fields Node, Description, Properties, Type, Unit and Options.
	ListNodesJSON(ctx context.Context, pattern string) ([]byte, error)

	// Get performs a device-synchronous ("deep") read. The path may be a
	// wildcard pattern; the result is keyed by the concrete absolute
	// paths that matched. An empty result means the path supports no
	// deep read (e.g. streaming sample nodes).
	Get(ctx context.Context, path string) (map[string]TimedValue, error)

	// GetInt, GetDouble and GetString return the value cached on the
	// data-server side without a device round trip.
	GetInt(ctx context.Context, path string) (int64, error)
	GetDouble(ctx context.Context, path string) (float64, error)
	GetString(ctx context.Context, path string) (string, error)

	// Set issues an ordinary asynchronous write.
	Set(ctx context.Context, path string, value any) error

	// SetBatch issues all entries as one write call, in order.
	SetBatch(ctx context.Context, entries []SetEntry) error

	// Subscribe and Unsubscribe register a path for out-of-band
	// streaming delivery. Delivery itself is outside this contract.
	Subscribe(ctx context.Context, path string) error
	Unsubscribe(ctx context.Context, path string) error
}

// SetEntry is a single (path, value) pair of a batched write.
type SetEntry struct {
	Path  string
	Value any
}

// TimedValue is a value paired with the device timestamp of a deep read.
// HasTimestamp is false for targets that do not report timestamps.
type TimedValue struct {
	Timestamp    uint64
	HasTimestamp bool
	Value        any
}

// ComplexGetter is implemented by connections that can read complex
// scalar nodes.
type ComplexGetter interface {
	GetComplex(ctx context.Context, path string) (complex128, error)
}

// SampleGetter is implemented by connections that can fetch structured
// demodulator samples.
type SampleGetter interface {
	GetSample(ctx context.Context, path string) (map[string]any, error)
}

// DIOGetter is implemented by connections that can fetch digital I/O
// samples.
type DIOGetter interface {
	GetDIO(ctx context.Context, path string) (map[string]any, error)
}

// VectorSetter is implemented by connections that support dedicated
// vector writes.
type VectorSetter interface {
	SetVector(ctx context.Context, path string, value any) error
}

// SyncSetter is implemented by connections that support synchronous
// writes, which block until the device has applied the value. Connections
// without it fall back to an ordinary asynchronous Set.
type SyncSetter interface {
	SyncSetInt(ctx context.Context, path string, value int64) error
	SyncSetDouble(ctx context.Context, path string, value float64) error
	SyncSetString(ctx context.Context, path string, value string) error
}
