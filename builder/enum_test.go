package builder

import (
	"testing"

	"github.com/typeforge/typecatalog/descriptor"
)

func TestEnumBuilderAutoMembers(t *testing.T) {
	b := newBuilder(t)

	ord, err := NewEnum("state", 4).
		AutoMember("idle").
		AutoMember("running").
		Member("failed", 100).
		AutoMember("retrying").
		Build(b)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	d, _ := b.Catalog().Get(ord)
	members := d.(descriptor.Enum).Members
	want := []int64{0, 1, 100, 101}
	if len(members) != len(want) {
		t.Fatalf("members = %d, want %d", len(members), len(want))
	}
	for i, m := range members {
		if m.Value != want[i] {
			t.Fatalf("member %q = %d, want %d", m.Name, m.Value, want[i])
		}
	}
}

func TestEnumBuilderValidation(t *testing.T) {
	b := newBuilder(t)

	if _, err := NewEnum("", 4).AutoMember("a").Build(b); err == nil {
		t.Fatal("empty name accepted")
	}
	if _, err := NewEnum("w", 5).AutoMember("a").Build(b); err == nil {
		t.Fatal("invalid width accepted")
	}
	if _, err := NewEnum("d", 4).AutoMember("a").AutoMember("a").Build(b); err == nil {
		t.Fatal("duplicate member name accepted")
	}
}
