package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/typeforge/typecatalog/catalog"
	"github.com/typeforge/typecatalog/descriptor"
)

const sampleCatalog = `
[macros]
MAX_RETRIES = 5

[[enum]]
name = "state"
width = 4
  [[enum.member]]
  name = "idle"
  [[enum.member]]
  name = "running"
  [[enum.member]]
  name = "capped"
  macro = "MAX_RETRIES"

[[struct]]
name = "node"
  [[struct.field]]
  name = "value"
  type = "int64"
  [[struct.field]]
  name = "next"
  type = "pnode"

[[pointer]]
name = "pnode"
target = "node"

[[struct]]
name = "packet"
  [[struct.field]]
  name = "length"
  type = "uint16"
  [[struct.bitfield]]
  name = "version"
  offset = 16
  width = 4
  unsigned = true

[[array]]
name = "buf16"
elem = "uint8"
count = 16

[[function]]
name = "send"
returns = "int32"
cc = "cdecl"
vararg = true
  [[function.param]]
  name = "pkt"
  type = "packet"
`

func inlineConfig() Config {
	c := DefaultConfig()
	c.TreatAsFile = false
	return c
}

func TestParseDeclarationsInline(t *testing.T) {
	cat := catalog.Open()
	defer cat.Close()

	n, err := NewTOML(inlineConfig()).ParseDeclarations(sampleCatalog, cat)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if n != 6 {
		t.Fatalf("declarations = %d, want 6", n)
	}

	state := cat.LookupName("state")
	if state == 0 {
		t.Fatal("enum not registered")
	}
	d, _ := cat.Get(state)
	members := d.(descriptor.Enum).Members
	if len(members) != 3 || members[2].Value != 5 {
		t.Fatalf("members = %+v", members)
	}
	if members[1].Value != 1 {
		t.Fatalf("auto member value = %d, want 1", members[1].Value)
	}

	buf := cat.LookupName("buf16")
	if got := cat.TypeSize(buf); got != 16 {
		t.Fatalf("buf16 size = %d, want 16", got)
	}

	send := cat.LookupName("send")
	fd, _ := cat.Get(send)
	fn := fd.(descriptor.FuncSig)
	if !fn.CC.Vararg() || fn.CC&^descriptor.CCVarargBit != descriptor.CCCdecl {
		t.Fatalf("cc = %#x", fn.CC)
	}
	if len(fn.Params) != 1 || fn.Params[0].Name != "pkt" {
		t.Fatalf("params = %+v", fn.Params)
	}
}

func TestForwardReferenceAcrossDeclarations(t *testing.T) {
	cat := catalog.Open()
	defer cat.Close()

	if _, err := NewTOML(inlineConfig()).ParseDeclarations(sampleCatalog, cat); err != nil {
		t.Fatalf("parse: %v", err)
	}

	node := cat.LookupName("node")
	d, _ := cat.Get(node)
	next := d.(descriptor.Aggregate).Fields[1]
	pd, err := cat.Get(next.Type)
	if err != nil {
		t.Fatalf("resolve next: %v", err)
	}
	ptr, ok := pd.(descriptor.Pointer)
	if !ok || ptr.Target != node {
		t.Fatalf("next = %#v", pd)
	}
}

func TestParseDeclarationsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "types.toml")
	if err := os.WriteFile(path, []byte(sampleCatalog), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cat := catalog.Open()
	defer cat.Close()
	n, err := LoadCatalogFile(path, cat)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if n != 6 {
		t.Fatalf("declarations = %d, want 6", n)
	}
}

func TestUnknownTypeRejected(t *testing.T) {
	cat := catalog.Open()
	defer cat.Close()

	src := `
[[struct]]
name = "s"
  [[struct.field]]
  name = "x"
  type = "mystery"
`
	if _, err := NewTOML(inlineConfig()).ParseDeclarations(src, cat); err == nil {
		t.Fatal("unknown type accepted")
	}
}

func TestMacrosDisabled(t *testing.T) {
	cat := catalog.Open()
	defer cat.Close()

	cfg := inlineConfig()
	cfg.DefineMacros = false
	if _, err := NewTOML(cfg).ParseDeclarations(sampleCatalog, cat); err == nil {
		t.Fatal("macros accepted while disabled")
	}
}

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	if !c.TreatAsFile || !c.DefineMacros || !c.SuppressWarnings {
		t.Fatalf("defaults = %+v", c)
	}
}
