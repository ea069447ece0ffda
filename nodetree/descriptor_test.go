package nodetree

import (
	"errors"
	"testing"
)

// Test_ParseKind tests the wire type string mapping.
func Test_ParseKind(t *testing.T) {
	tests := []struct {
		typeName string
		expected Kind
	}{
		{"Integer (64 bit)", KindInteger},
		{"Integer (enumerated)", KindInteger},
		{"Double", KindDouble},
		{"Complex Double", KindComplex},
		{"String", KindString},
		{"Vector Data", KindVector},
		{"Demodulator Sample", KindDemodSample},
		{"DIO Sample", KindDIOSample},
		{"Scope Wave", KindStream},
		{"Impedance Sample", KindStream},
		{"", KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.typeName, func(t *testing.T) {
			if got := ParseKind(tt.typeName); got != tt.expected {
				t.Errorf("ParseKind(%q) = %s, want %s", tt.typeName, got, tt.expected)
			}
		})
	}
}

// Test_ParseAccess tests the comma-flagged Properties string parsing.
func Test_ParseAccess(t *testing.T) {
	tests := []struct {
		properties string
		readable   bool
		writable   bool
		setting    bool
	}{
		{"Read, Write, Setting", true, true, true},
		{"Read", true, false, false},
		{"Write", false, true, false},
		{"Read, Write", true, true, false},
		{"", false, false, false},
		{"Read, Bogus", true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.properties, func(t *testing.T) {
			a := ParseAccess(tt.properties)
			if a.Readable() != tt.readable {
				t.Errorf("Readable() = %t, want %t", a.Readable(), tt.readable)
			}
			if a.Writable() != tt.writable {
				t.Errorf("Writable() = %t, want %t", a.Writable(), tt.writable)
			}
			if a.IsSetting() != tt.setting {
				t.Errorf("IsSetting() = %t, want %t", a.IsSetting(), tt.setting)
			}
		})
	}
}

// Test_optionMaps tests label extraction from raw option strings.
func Test_optionMaps(t *testing.T) {
	options := map[int64]string{
		0: `"off": Output disabled.`,
		1: `"on", "enabled": Output enabled.`,
	}

	fwd, rev := optionMaps(options)

	// Every label encodes to its code.
	if fwd["off"] != 0 || fwd["on"] != 1 || fwd["enabled"] != 1 {
		t.Errorf("forward map wrong: %v", fwd)
	}
	// The first label wins for decoding.
	if rev[0] != "off" || rev[1] != "on" {
		t.Errorf("reverse map wrong: %v", rev)
	}

	// Decoding the first label of a code and re-encoding it returns the
	// original code.
	for code, label := range rev {
		if fwd[label] != code {
			t.Errorf("round trip of code %d via %q gives %d", code, label, fwd[label])
		}
	}
}

// Test_optionMaps_NoLabels tests option strings without quoted labels.
func Test_optionMaps_NoLabels(t *testing.T) {
	fwd, rev := optionMaps(map[int64]string{3: "plain description"})
	if len(fwd) != 0 || len(rev) != 0 {
		t.Errorf("expected empty maps, got fwd=%v rev=%v", fwd, rev)
	}
}

// Test_descriptor_BadOptionCode tests listing rejection on a non-integer
// option code.
func Test_descriptor_BadOptionCode(t *testing.T) {
	def := NodeDef{
		Node:    "/dev/demods/0/enable",
		Type:    "Integer (enumerated)",
		Options: map[string]string{"x": `"off"`},
	}
	if _, err := def.descriptor(); !errors.Is(err, ErrMalformedListing) {
		t.Fatalf("expected ErrMalformedListing, got %v", err)
	}
}

// Test_parseListing tests JSON listing decoding.
func Test_parseListing(t *testing.T) {
	raw := []byte(`{
		"/dev/demods/0/rate": {
			"Node": "/DEV/DEMODS/0/RATE",
			"Description": "Sampling rate.",
			"Properties": "Read, Write, Setting",
			"Type": "Double",
			"Unit": "Hz"
		}
	}`)

	descs, err := parseListing(raw)
	if err != nil {
		t.Fatalf("parseListing failed: %v", err)
	}
	d, ok := descs["/dev/demods/0/rate"]
	if !ok {
		t.Fatal("missing descriptor")
	}
	if d.Kind != KindDouble {
		t.Errorf("Kind = %s, want Double", d.Kind)
	}
	if !d.Access.Readable() || !d.Access.Writable() || !d.Access.IsSetting() {
		t.Errorf("Access = %s, want Read, Write, Setting", d.Access)
	}
	if d.Unit != "Hz" {
		t.Errorf("Unit = %q, want Hz", d.Unit)
	}
}

// Test_parseListing_BadJSON tests listing rejection on malformed input.
func Test_parseListing_BadJSON(t *testing.T) {
	if _, err := parseListing([]byte("not json")); !errors.Is(err, ErrMalformedListing) {
		t.Fatalf("expected ErrMalformedListing, got %v", err)
	}
}
