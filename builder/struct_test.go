package builder

import (
	"testing"

	"github.com/typeforge/typecatalog/descriptor"
	"github.com/typeforge/typecatalog/errors"
)

func TestStructBuilderAutoOffsets(t *testing.T) {
	b := newBuilder(t)

	ord, err := NewStruct("header").
		Prim("magic", descriptor.PrimUInt32).
		Prim("flags", descriptor.PrimUInt16).
		Prim("version", descriptor.PrimUInt16).
		Build(b)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	d, _ := b.Catalog().Get(ord)
	agg := d.(descriptor.Aggregate)
	offsets := []uint64{0, 32, 48}
	for i, f := range agg.Fields {
		if f.BitOffset != offsets[i] {
			t.Fatalf("field %d offset = %d, want %d", i, f.BitOffset, offsets[i])
		}
	}
	if got := b.TypeSize(ord); got != 8 {
		t.Fatalf("size = %d, want 8", got)
	}
}

func TestStructBuilderExplicitOffsets(t *testing.T) {
	b := newBuilder(t)
	i32 := mustIntern(t, b, descriptor.PrimInt32)

	ord, err := NewStruct("padded").
		FieldAt("a", i32, 0).
		FieldAt("b", i32, 16).
		Build(b)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got := b.TypeSize(ord); got != 20 {
		t.Fatalf("size = %d, want 20", got)
	}
}

func TestStructBuilderSelfRef(t *testing.T) {
	b := newBuilder(t)

	ord, err := NewStruct("node").
		Prim("value", descriptor.PrimInt64).
		SelfRef("next").
		Build(b)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	d, _ := b.Catalog().Get(ord)
	agg := d.(descriptor.Aggregate)
	next := agg.Fields[1]
	pd, err := b.Catalog().Get(next.Type)
	if err != nil {
		t.Fatalf("get next type: %v", err)
	}
	ptr, ok := pd.(descriptor.Pointer)
	if !ok {
		t.Fatalf("next is %T, want Pointer", pd)
	}
	if ptr.Target != ord {
		t.Fatalf("pointer target = %d, want %d", ptr.Target, ord)
	}
	if got := b.TypeSize(ord); got != 16 {
		t.Fatalf("size = %d, want 16", got)
	}
}

func TestStructBuilderBitfields(t *testing.T) {
	b := newBuilder(t)

	ord, err := NewStruct("packed").
		UnsignedBitfield("lo", 0, 4).
		UnsignedBitfield("hi", 4, 4).
		Build(b)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got := b.TypeSize(ord); got != 1 {
		t.Fatalf("size = %d, want 1", got)
	}
}

func TestStructBuilderValidation(t *testing.T) {
	b := newBuilder(t)
	i32 := mustIntern(t, b, descriptor.PrimInt32)

	if _, err := NewStruct("").Field("x", i32).Build(b); err == nil {
		t.Fatal("empty name accepted")
	}
	if _, err := NewStruct("dup").Field("x", i32).Field("x", i32).Build(b); err == nil {
		t.Fatal("duplicate field name accepted")
	}

	_, err := NewStruct("overlap").
		UnsignedBitfield("a", 0, 4).
		UnsignedBitfield("b", 2, 4).
		Build(b)
	if err == nil {
		t.Fatal("overlapping bitfields accepted")
	}
	if errKind(t, err) != errors.KindBuildFailure {
		t.Fatalf("kind = %v", errKind(t, err))
	}
}

func TestUnionBuilder(t *testing.T) {
	b := newBuilder(t)
	i8 := mustIntern(t, b, descriptor.PrimInt8)
	f64 := mustIntern(t, b, descriptor.PrimDouble)

	ord, err := NewUnion("scalar").
		Field("byte", i8).
		FieldAt("real", f64, 32).
		Build(b)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	d, _ := b.Catalog().Get(ord)
	agg := d.(descriptor.Aggregate)
	if !agg.Union {
		t.Fatal("not a union")
	}
	for i, f := range agg.Fields {
		if f.BitOffset != 0 {
			t.Fatalf("union field %d offset = %d, want 0", i, f.BitOffset)
		}
	}
	if got := b.TypeSize(ord); got != 8 {
		t.Fatalf("size = %d, want 8", got)
	}
}
