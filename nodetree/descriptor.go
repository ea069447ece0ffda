package nodetree

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Kind is the closed set of value kinds a descriptor can carry. Scalar
// kinds map to dedicated cached accessors; Vector uses a deep read;
// DemodSample and DIOSample need sample-specific accessors; Stream kinds
// can only be obtained through subscribe/poll.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindInteger
	KindDouble
	KindComplex
	KindString
	KindVector
	KindDemodSample
	KindDIOSample
	KindStream
)

// kindNames is indexed by Kind.
var kindNames = [...]string{
	"Unknown",
	"Integer",
	"Double",
	"Complex",
	"String",
	"Vector",
	"DemodSample",
	"DIOSample",
	"Stream",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// ParseKind maps a wire type string to its Kind. Integer types come in
// several flavours ("Integer (64 bit)", "Integer (enumerated)") and are
// matched by substring, mirroring the listing format. Unrecognized sample
// and wave types collapse into KindStream.
func ParseKind(typeName string) Kind {
	switch {
	case strings.Contains(typeName, "Integer"):
		return KindInteger
	case typeName == "Complex Double":
		return KindComplex
	case typeName == "Double":
		return KindDouble
	case typeName == "String":
		return KindString
	case typeName == "Vector Data":
		return KindVector
	case typeName == "Demodulator Sample":
		return KindDemodSample
	case typeName == "DIO Sample":
		return KindDIOSample
	case typeName == "":
		return KindUnknown
	default:
		// Scope Wave, Trigger Sample, Counter Sample, Impedance Sample,
		// AuxIn Sample, PWA Wave and friends: poll-only.
		return KindStream
	}
}

// Access is the set of access rights of a node.
type Access uint8

const (
	AccessRead Access = 1 << iota
	AccessWrite
	AccessSetting
)

// Readable reports whether the node can be read.
func (a Access) Readable() bool { return a&AccessRead != 0 }

// Writable reports whether the node can be written.
func (a Access) Writable() bool { return a&AccessWrite != 0 }

// IsSetting reports whether the node is a persistent device setting.
func (a Access) IsSetting() bool { return a&AccessSetting != 0 }

func (a Access) String() string {
	var flags []string
	if a.Readable() {
		flags = append(flags, "Read")
	}
	if a.Writable() {
		flags = append(flags, "Write")
	}
	if a.IsSetting() {
		flags = append(flags, "Setting")
	}
	return strings.Join(flags, ", ")
}

// ParseAccess parses the comma-flagged Properties string of a listing
// entry ("Read, Write, Setting") into an Access set. Unknown flags are
// ignored.
func ParseAccess(properties string) Access {
	var a Access
	for _, flag := range strings.Split(properties, ",") {
		switch strings.TrimSpace(flag) {
		case "Read":
			a |= AccessRead
		case "Write":
			a |= AccessWrite
		case "Setting":
			a |= AccessSetting
		}
	}
	return a
}

// Parser transforms a value on its way in (SetParser) or out (GetParser)
// of a node. Parsers must be pure.
type Parser func(value any) (any, error)

// Descriptor is the immutable metadata of one absolute node path.
type Descriptor struct {
	// Path is the canonical absolute path as reported by the listing.
	Path        string
	Description string

	// TypeName is the raw wire type string; Kind is its parsed form.
	TypeName string
	Kind     Kind

	Unit   string
	Access Access

	// Options maps integer codes to their raw option strings. Each
	// string may carry several quoted labels terminated by ',' or ':';
	// see optionMaps for the decode/encode rules.
	Options map[int64]string

	GetParser Parser
	SetParser Parser
}

// optionLabel extracts quoted labels: `"on": Enabled.` or `"sig", "s": x`.
var optionLabel = regexp.MustCompile(`"(.+?)"[,:]+`)

// optionMaps derives the label<->code maps of a descriptor. The forward
// map (encode) carries every label of a code; the reverse map (decode)
// carries only the first label, which wins when a code has aliases.
func optionMaps(options map[int64]string) (fwd map[string]int64, rev map[int64]string) {
	fwd = make(map[string]int64)
	rev = make(map[int64]string)
	codes := make([]int64, 0, len(options))
	for code := range options {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	for _, code := range codes {
		labels := optionLabel.FindAllStringSubmatch(options[code], -1)
		for i, m := range labels {
			fwd[m[1]] = code
			if i == 0 {
				rev[code] = m[1]
			}
		}
	}
	return fwd, rev
}

// DescriptorUpdate is a partial descriptor patch. Nil fields are left
// untouched; non-nil fields overwrite. Parsers are replaced when non-nil.
type DescriptorUpdate struct {
	Description *string
	TypeName    *string
	Unit        *string
	Properties  *string
	Options     map[int64]string
	GetParser   Parser
	SetParser   Parser
}

func (u DescriptorUpdate) apply(d *Descriptor) {
	if u.Description != nil {
		d.Description = *u.Description
	}
	if u.TypeName != nil {
		d.TypeName = *u.TypeName
		d.Kind = ParseKind(*u.TypeName)
	}
	if u.Unit != nil {
		d.Unit = *u.Unit
	}
	if u.Properties != nil {
		d.Access = ParseAccess(*u.Properties)
	}
	if u.Options != nil {
		d.Options = u.Options
	}
	if u.GetParser != nil {
		d.GetParser = u.GetParser
	}
	if u.SetParser != nil {
		d.SetParser = u.SetParser
	}
}

// NodeDef is the wire form of one listing entry, as found in the JSON
// returned by ListNodesJSON and in preloaded node files. Options keys are
// the string form of the integer codes.
type NodeDef struct {
	Node        string            `json:"Node"`
	Description string            `json:"Description"`
	Properties  string            `json:"Properties"`
	Type        string            `json:"Type"`
	Unit        string            `json:"Unit"`
	Options     map[string]string `json:"Options"`
}

func (d NodeDef) descriptor() (*Descriptor, error) {
	desc := &Descriptor{
		Path:        d.Node,
		Description: d.Description,
		TypeName:    d.Type,
		Kind:        ParseKind(d.Type),
		Unit:        d.Unit,
		Access:      ParseAccess(d.Properties),
	}
	if len(d.Options) > 0 {
		desc.Options = make(map[int64]string, len(d.Options))
		for code, text := range d.Options {
			n, err := strconv.ParseInt(code, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: option code %q of %s", ErrMalformedListing, code, d.Node)
			}
			desc.Options[n] = text
		}
	}
	return desc, nil
}

// parseListing decodes a raw JSON node listing into descriptors keyed by
// the listing's own (not yet normalized) paths.
func parseListing(raw []byte) (map[string]*Descriptor, error) {
	var defs map[string]NodeDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedListing, err)
	}
	out := make(map[string]*Descriptor, len(defs))
	for path, def := range defs {
		if def.Node == "" {
			def.Node = path
		}
		desc, err := def.descriptor()
		if err != nil {
			return nil, err
		}
		out[path] = desc
	}
	return out, nil
}
