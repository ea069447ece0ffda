package nodetree

import (
	"context"
	"errors"
	"fmt"
)

// Set writes a value to the node.
//
// The value first passes the descriptor's SetParser, then — when the
// descriptor carries options — label-to-code translation; unrecognized
// labels pass through unchanged. With an open transaction on the owning
// registry the write is buffered instead of executed (vector nodes are
// rejected there). Vector nodes use the dedicated vector write; Deep()
// requests a synchronous write, falling back to an asynchronous one with
// a warning when the connection does not offer it.
//
// A wildcard path fans out transactionally over every matching concrete
// path so all writes commit as one batch.
func (n Node) Set(ctx context.Context, value any, opts ...CallOption) error {
	o := evalOptions(opts)
	info, err := n.Info()
	if err != nil {
		if errors.Is(err, ErrUnknownPath) && n.ContainsWildcard() {
			return n.setWildcard(ctx, value, opts...)
		}
		return err
	}
	if !info.Access.Writable() {
		return fmt.Errorf("%w: %s is read-only", ErrAccessDenied, n.tree.RawPath(n))
	}

	if !o.noParse && info.SetParser != nil {
		value, err = info.SetParser(value)
		if err != nil {
			return fmt.Errorf("nodetree: set parser for %s: %w", n.tree.RawPath(n), err)
		}
	}
	if !o.noEnum && len(info.Options) > 0 {
		if label, ok := value.(string); ok {
			fwd, _ := n.tree.state(n).optionMaps(info)
			if code, ok := fwd[label]; ok {
				value = code
			}
		}
	}

	if n.tree.txn != nil {
		if info.Kind == KindVector {
			return fmt.Errorf("%w: vector writes cannot be buffered", ErrTransactionMisuse)
		}
		return n.tree.txn.add(n, value)
	}

	if info.Kind == KindVector {
		vs, ok := n.tree.conn.(VectorSetter)
		if !ok {
			return fmt.Errorf("%w: connection does not support vector writes", ErrTransportUnavailable)
		}
		return vs.SetVector(ctx, n.tree.RawPath(n), value)
	}

	if o.deep {
		return n.setSync(ctx, value)
	}
	return n.tree.conn.Set(ctx, n.tree.RawPath(n), value)
}

// setWildcard fans a set out over every concrete path matching the node.
// The fan-out runs inside a transaction so all writes commit as one
// batch; if the caller already holds one, the writes join its buffer. Each
// matched node applies its own parse and enum rules.
func (n Node) setWildcard(ctx context.Context, value any, opts ...CallOption) error {
	pattern := n.tree.RawPath(n)
	matches := n.tree.matchKeys(pattern)
	if len(matches) == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownPath, pattern)
	}
	setAll := func() error {
		for _, key := range matches {
			if err := n.tree.NodeFromRaw(key).Set(ctx, value, opts...); err != nil {
				return err
			}
		}
		return nil
	}
	if n.tree.txn != nil {
		return setAll()
	}
	return n.tree.WithTransaction(ctx, setAll)
}

// setSync performs a synchronous write, typed by the value. Connections
// without synchronous primitives get the ordinary asynchronous write plus
// a warning, since the operation has a safe fallback.
func (n Node) setSync(ctx context.Context, value any) error {
	raw := n.tree.RawPath(n)

	var intVal int64
	var isInt bool
	switch v := value.(type) {
	case int:
		intVal, isInt = int64(v), true
	case int64:
		intVal, isInt = v, true
	case float64, string:
	default:
		return fmt.Errorf("%w: %T is not a valid type for a synchronous set (only int, float64 and string)",
			ErrUnsupportedType, value)
	}

	ss, ok := n.tree.conn.(SyncSetter)
	if !ok {
		n.tree.logger.Warn("synchronous set not supported by this connection, executing an ordinary set instead",
			"path", raw)
		return n.tree.conn.Set(ctx, raw, value)
	}

	if isInt {
		return ss.SyncSetInt(ctx, raw, intVal)
	}
	switch v := value.(type) {
	case float64:
		return ss.SyncSetDouble(ctx, raw, v)
	case string:
		return ss.SyncSetString(ctx, raw, v)
	}
	return nil
}
