package nodetree

import "reflect"

// Value is the result of a get. Data holds the (possibly enum-decoded and
// parsed) value; Timestamp is set when a deep or vector read supplied a
// device timestamp. For wildcard and partial-node gets, Data holds a
// Values map.
type Value struct {
	Data         any
	Timestamp    uint64
	HasTimestamp bool
}

// Multi returns the per-node results of a fanned-out get, if this value
// came from one.
func (v Value) Multi() (Values, bool) {
	m, ok := v.Data.(Values)
	return m, ok
}

// Values maps resolved Nodes to their values after a wildcard or
// partial-node get.
type Values map[Node]Value

// callOptions carries the per-call flags of Get and Set.
type callOptions struct {
	deep    bool
	noEnum  bool
	noParse bool
}

// CallOption modifies a single Get or Set call.
type CallOption func(*callOptions)

// Deep makes a get read from the device instead of the data-server cache,
// and makes a set block until the device confirms. Deep operations are
// always slower.
func Deep() CallOption {
	return func(o *callOptions) { o.deep = true }
}

// NoEnum disables the option map: gets return the raw integer code and
// sets pass labels through untranslated.
func NoEnum() CallOption {
	return func(o *callOptions) { o.noEnum = true }
}

// NoParse disables the descriptor's Get/SetParser for this call.
func NoParse() CallOption {
	return func(o *callOptions) { o.noParse = true }
}

func evalOptions(opts []CallOption) callOptions {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// asInt64 widens the integer forms a connection may hand back. Non-integer
// values report false, which skips enum decoding.
func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	}
	return 0, false
}

// valuesEqual compares two values after widening integers and floats, so
// an expected untyped 5 matches an int64(5) from the transport.
func valuesEqual(a, b any) bool {
	if ai, ok := asInt64(a); ok {
		if bi, ok := asInt64(b); ok {
			return ai == bi
		}
		if bf, ok := asFloat64(b); ok {
			return float64(ai) == bf
		}
		return false
	}
	if af, ok := asFloat64(a); ok {
		if bf, ok := asFloat64(b); ok {
			return af == bf
		}
		if bi, ok := asInt64(b); ok {
			return af == float64(bi)
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

func asFloat64(v any) (float64, bool) {
	switch f := v.(type) {
	case float64:
		return f, true
	case float32:
		return float64(f), true
	}
	return 0, false
}
