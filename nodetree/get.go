package nodetree

import (
	"context"
	"errors"
	"fmt"
)

// Get reads the node's value.
//
// A leaf read dispatches by descriptor kind: the scalar kinds use the
// cached accessors, vectors use a deep read, sample kinds use their
// dedicated accessors and streaming-only kinds fail with
// ErrUnsupportedType. With Deep(), the value is fetched from the device
// instead of the data-server cache and the result carries a timestamp.
//
// A wildcard path, or a partial node (strict ancestor of at least one
// leaf), fans out into one batched deep read; the result's Data is then a
// Values map keyed by the resolved Nodes.
func (n Node) Get(ctx context.Context, opts ...CallOption) (Value, error) {
	o := evalOptions(opts)
	info, err := n.Info()
	if err != nil {
		if errors.Is(err, ErrUnknownPath) {
			if n.ContainsWildcard() {
				return n.getWildcard(ctx, n.tree.RawPath(n))
			}
			if n.IsPartial() {
				return n.getWildcard(ctx, n.tree.RawPath(n)+pathSep+"*")
			}
		}
		return Value{}, err
	}
	if !info.Access.Readable() {
		return Value{}, fmt.Errorf("%w: %s is not readable", ErrAccessDenied, n.tree.RawPath(n))
	}

	var v Value
	if o.deep {
		v, err = n.getDeep(ctx)
	} else {
		v.Data, err = n.getCached(ctx, info)
	}
	if err != nil {
		return Value{}, err
	}

	if !o.noEnum && len(info.Options) > 0 {
		if code, ok := asInt64(v.Data); ok {
			_, rev := n.tree.state(n).optionMaps(info)
			if label, ok := rev[code]; ok {
				v.Data = label
			}
		}
	}
	if !o.noParse && info.GetParser != nil {
		v.Data, err = info.GetParser(v.Data)
		if err != nil {
			return Value{}, fmt.Errorf("nodetree: get parser for %s: %w", n.tree.RawPath(n), err)
		}
	}
	return v, nil
}

// getWildcard issues one batched deep read over every path matching the
// pattern. Zero matches is ErrUnknownPath. Enum decoding and parsers are
// not applied to fanned-out reads.
func (n Node) getWildcard(ctx context.Context, pattern string) (Value, error) {
	res, err := n.tree.conn.Get(ctx, pattern)
	if err != nil {
		return Value{}, fmt.Errorf("nodetree: get %s: %w", pattern, err)
	}
	if len(res) == 0 {
		return Value{}, fmt.Errorf("%w: %s", ErrUnknownPath, pattern)
	}
	out := make(Values, len(res))
	for raw, tv := range res {
		out[n.tree.NodeFromRaw(raw)] = Value{
			Data:         tv.Value,
			Timestamp:    tv.Timestamp,
			HasTimestamp: tv.HasTimestamp,
		}
	}
	return Value{Data: out}, nil
}

// getDeep reads the node value from the device. Nodes that support no
// deep read (sample nodes) yield an empty result and fail with
// ErrUnsupportedType.
func (n Node) getDeep(ctx context.Context) (Value, error) {
	raw := n.tree.RawPath(n)
	res, err := n.tree.conn.Get(ctx, raw)
	if err != nil {
		return Value{}, fmt.Errorf("nodetree: deep get %s: %w", raw, err)
	}
	tv, ok := res[raw]
	if !ok {
		for _, first := range res {
			tv, ok = first, true
			break
		}
	}
	if !ok {
		return Value{}, fmt.Errorf("%w: deep read not available for %s", ErrUnsupportedType, raw)
	}
	return Value{Data: tv.Value, Timestamp: tv.Timestamp, HasTimestamp: tv.HasTimestamp}, nil
}

// getCached reads the value cached on the data-server side, dispatched by
// descriptor kind.
func (n Node) getCached(ctx context.Context, info *Descriptor) (any, error) {
	raw := n.tree.RawPath(n)
	conn := n.tree.conn
	switch info.Kind {
	case KindInteger:
		return conn.GetInt(ctx, raw)
	case KindDouble:
		return conn.GetDouble(ctx, raw)
	case KindString:
		return conn.GetString(ctx, raw)
	case KindComplex:
		cg, ok := conn.(ComplexGetter)
		if !ok {
			return nil, fmt.Errorf("%w: connection has no complex accessor", ErrTransportUnavailable)
		}
		return cg.GetComplex(ctx, raw)
	case KindVector:
		v, err := n.getDeep(ctx)
		if err != nil {
			return nil, err
		}
		return v.Data, nil
	case KindDemodSample:
		sg, ok := conn.(SampleGetter)
		if !ok {
			return nil, fmt.Errorf("%w: connection does not support sample reads", ErrTransportUnavailable)
		}
		return sg.GetSample(ctx, raw)
	case KindDIOSample:
		dg, ok := conn.(DIOGetter)
		if !ok {
			return nil, fmt.Errorf("%w: nodes of type %s can only be polled", ErrUnsupportedType, info.TypeName)
		}
		return dg.GetDIO(ctx, raw)
	default:
		return nil, fmt.Errorf("%w: nodes of type %s can only be polled", ErrUnsupportedType, info.TypeName)
	}
}
