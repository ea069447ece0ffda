package nodetree

import "errors"

var (
	// ErrUnknownPath indicates a path with no descriptor match and no
	// wildcard or partial-node fallback.
	ErrUnknownPath = errors.New("nodetree: unknown node path")

	// ErrAccessDenied indicates a read on a non-readable node or a write
	// on a non-writable node.
	ErrAccessDenied = errors.New("nodetree: access denied")

	// ErrUnsupportedType indicates the descriptor kind has no mapping for
	// the requested operation (e.g. a streaming-only sample kind on a
	// scalar get).
	ErrUnsupportedType = errors.New("nodetree: unsupported node type")

	// ErrTimeout indicates a wait or poll exceeded its budget through
	// context cancellation or deadline expiry.
	ErrTimeout = errors.New("nodetree: wait timed out")

	// ErrTransactionMisuse indicates an invalid transaction operation:
	// a vector write inside an open transaction, a nested begin, or an
	// add without an open transaction.
	ErrTransactionMisuse = errors.New("nodetree: transaction misuse")

	// ErrTransportUnavailable indicates the connection does not offer the
	// requested optional primitive (complex read, sample read, vector
	// write).
	ErrTransportUnavailable = errors.New("nodetree: operation not supported by connection")

	// ErrMalformedListing indicates the node listing returned by the
	// connection contains a path without a leading slash.
	ErrMalformedListing = errors.New("nodetree: malformed node listing")
)
