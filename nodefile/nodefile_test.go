package nodefile

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleFile = `
device: dev8000
nodes:
  /dev8000/demods/0/rate:
    description: Demodulator sampling rate.
    type: Double
    unit: Hz
    properties: Read, Write, Setting
    value: 1674.0
    setparser: "clamp(x, 0.0, 2000.0)"
  /dev8000/demods/0/enable:
    type: Integer (enumerated)
    properties: Read, Write, Setting
    options:
      0: '"off": Disabled.'
      1: '"on": Enabled.'
    value: 1
  /dev8000/features/serial:
    type: String
    properties: Read
    value: s2400
`

// Test_Parse tests node file decoding.
func Test_Parse(t *testing.T) {
	f, err := Parse([]byte(sampleFile))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if f.Device != "dev8000" {
		t.Errorf("Device = %q, want dev8000", f.Device)
	}
	if len(f.Nodes) != 3 {
		t.Fatalf("len(Nodes) = %d, want 3", len(f.Nodes))
	}
	rate := f.Nodes["/dev8000/demods/0/rate"]
	if rate.Unit != "Hz" || rate.Type != "Double" {
		t.Errorf("rate entry wrong: %+v", rate)
	}
	if rate.Value != 1674.0 {
		t.Errorf("rate value = %v, want 1674.0", rate.Value)
	}
}

// Test_Parse_Empty tests rejection of files without nodes.
func Test_Parse_Empty(t *testing.T) {
	if _, err := Parse([]byte("device: dev8000")); err == nil {
		t.Fatal("expected error for empty node set")
	}
}

// Test_Parse_BadYAML tests rejection of malformed input.
func Test_Parse_BadYAML(t *testing.T) {
	if _, err := Parse([]byte("nodes: [not: a map")); err == nil {
		t.Fatal("expected parse error")
	}
}

// Test_Load tests reading a node file from disk.
func Test_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.yaml")
	if err := os.WriteFile(path, []byte(sampleFile), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(f.Nodes) != 3 {
		t.Errorf("len(Nodes) = %d, want 3", len(f.Nodes))
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

// Test_Defs tests conversion into the wire listing form.
func Test_Defs(t *testing.T) {
	f, err := Parse([]byte(sampleFile))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	defs := f.Defs()
	if len(defs) != 3 {
		t.Fatalf("len(Defs) = %d, want 3", len(defs))
	}
	enable := defs["/dev8000/demods/0/enable"]
	if enable.Node != "/dev8000/demods/0/enable" {
		t.Errorf("Node = %q", enable.Node)
	}
	if enable.Options["0"] != `"off": Disabled.` || enable.Options["1"] != `"on": Enabled.` {
		t.Errorf("Options = %v", enable.Options)
	}
}

// Test_Values tests extraction of the declared initial values.
func Test_Values(t *testing.T) {
	f, err := Parse([]byte(sampleFile))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	values := f.Values()
	if len(values) != 3 {
		t.Fatalf("len(Values) = %d, want 3", len(values))
	}
	if values["/dev8000/features/serial"] != "s2400" {
		t.Errorf("serial = %v", values["/dev8000/features/serial"])
	}
}

// Test_ParserUpdates tests compilation of the declared parser expressions.
func Test_ParserUpdates(t *testing.T) {
	f, err := Parse([]byte(sampleFile))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	updates, err := f.ParserUpdates()
	if err != nil {
		t.Fatalf("ParserUpdates failed: %v", err)
	}
	if len(updates) != 1 {
		t.Fatalf("len(updates) = %d, want 1", len(updates))
	}
	upd, ok := updates["/dev8000/demods/0/rate"]
	if !ok || upd.SetParser == nil || upd.GetParser != nil {
		t.Fatalf("unexpected update: %+v", upd)
	}

	out, err := upd.SetParser(5000.0)
	if err != nil {
		t.Fatalf("SetParser failed: %v", err)
	}
	if out != 2000.0 {
		t.Errorf("SetParser(5000.0) = %v, want 2000.0", out)
	}
}

// Test_ParserUpdates_BadExpression tests rejection of broken expressions.
func Test_ParserUpdates_BadExpression(t *testing.T) {
	f, err := Parse([]byte(`
nodes:
  /dev/a:
    type: Double
    getparser: "x +"
`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if _, err := f.ParserUpdates(); err == nil {
		t.Fatal("expected error for broken expression")
	}
}
