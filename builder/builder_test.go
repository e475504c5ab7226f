package builder

import (
	stderrors "errors"
	"testing"

	"github.com/typeforge/typecatalog/catalog"
	"github.com/typeforge/typecatalog/descriptor"
	"github.com/typeforge/typecatalog/errors"
)

func newBuilder(t *testing.T) *Builder {
	t.Helper()
	cat := catalog.Open()
	t.Cleanup(func() { cat.Close() })
	return New(cat)
}

func mustIntern(t *testing.T, b *Builder, kind descriptor.PrimKind) descriptor.Ordinal {
	t.Helper()
	ord, err := b.Catalog().Intern(kind)
	if err != nil {
		t.Fatalf("intern %v: %v", kind, err)
	}
	return ord
}

func errKind(t *testing.T, err error) errors.Kind {
	t.Helper()
	var e *errors.Error
	if !stderrors.As(err, &e) {
		t.Fatalf("expected *errors.Error, got %T: %v", err, err)
	}
	return e.Kind
}

func TestStructFieldsAndSize(t *testing.T) {
	b := newBuilder(t)
	i32 := mustIntern(t, b, descriptor.PrimInt32)

	ord, err := b.CreateStruct("point")
	if err != nil {
		t.Fatalf("create struct: %v", err)
	}
	if err := b.AddField(ord, "x", i32, 0); err != nil {
		t.Fatalf("add x: %v", err)
	}
	if err := b.AddField(ord, "y", i32, 4); err != nil {
		t.Fatalf("add y: %v", err)
	}

	if got := b.TypeSize(ord); got != 8 {
		t.Fatalf("size = %d, want 8", got)
	}

	d, err := b.Catalog().Get(ord)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	agg := d.(descriptor.Aggregate)
	if len(agg.Fields) != 2 {
		t.Fatalf("fields = %d, want 2", len(agg.Fields))
	}
	if agg.Fields[0].BitOffset != 0 || agg.Fields[1].BitOffset != 32 {
		t.Fatalf("bit offsets = %d,%d, want 0,32", agg.Fields[0].BitOffset, agg.Fields[1].BitOffset)
	}
	if agg.Fields[1].BitSize != 32 {
		t.Fatalf("bit size = %d, want 32", agg.Fields[1].BitSize)
	}
}

func TestOverlappingFieldsAccepted(t *testing.T) {
	b := newBuilder(t)
	i64 := mustIntern(t, b, descriptor.PrimInt64)

	ord, err := b.CreateStruct("overlap")
	if err != nil {
		t.Fatalf("create struct: %v", err)
	}
	if err := b.AddField(ord, "a", i64, 0); err != nil {
		t.Fatalf("add a: %v", err)
	}
	if err := b.AddField(ord, "b", i64, 4); err != nil {
		t.Fatalf("overlapping field rejected: %v", err)
	}
	if got := b.TypeSize(ord); got != 12 {
		t.Fatalf("size = %d, want 12", got)
	}
}

func TestAddFieldToNonAggregate(t *testing.T) {
	b := newBuilder(t)
	i32 := mustIntern(t, b, descriptor.PrimInt32)

	enum, err := b.CreateEnum("color", 4)
	if err != nil {
		t.Fatalf("create enum: %v", err)
	}
	err = b.AddField(enum, "x", i32, 0)
	if err == nil {
		t.Fatal("expected wrong-shape error")
	}
	if errKind(t, err) != errors.KindTypeNotFound {
		t.Fatalf("kind = %v", errKind(t, err))
	}
}

func TestAddFieldDanglingType(t *testing.T) {
	b := newBuilder(t)
	ord, err := b.CreateStruct("s")
	if err != nil {
		t.Fatalf("create struct: %v", err)
	}
	if err := b.AddField(ord, "x", 9999, 0); err == nil {
		t.Fatal("expected error for unregistered field type")
	}
}

func TestUnionSize(t *testing.T) {
	b := newBuilder(t)
	i8 := mustIntern(t, b, descriptor.PrimInt8)
	i64 := mustIntern(t, b, descriptor.PrimInt64)

	ord, err := b.CreateUnion("variant")
	if err != nil {
		t.Fatalf("create union: %v", err)
	}
	if err := b.AddField(ord, "small", i8, 0); err != nil {
		t.Fatalf("add small: %v", err)
	}
	if err := b.AddField(ord, "large", i64, 0); err != nil {
		t.Fatalf("add large: %v", err)
	}
	if got := b.TypeSize(ord); got != 8 {
		t.Fatalf("size = %d, want 8", got)
	}
}

func TestBitfieldContainerSizing(t *testing.T) {
	b := newBuilder(t)

	ord, err := b.CreateStruct("flags")
	if err != nil {
		t.Fatalf("create struct: %v", err)
	}
	if err := b.AddBitfieldField(ord, "lo", 0, 1, true); err != nil {
		t.Fatalf("add lo: %v", err)
	}
	if err := b.AddBitfieldField(ord, "hi", 1, 7, true); err != nil {
		t.Fatalf("add hi: %v", err)
	}
	if got := b.TypeSize(ord); got != 1 {
		t.Fatalf("size = %d, want 1", got)
	}

	wide, err := b.CreateStruct("wide")
	if err != nil {
		t.Fatalf("create struct: %v", err)
	}
	if err := b.AddBitfieldField(wide, "w", 12, 10, false); err != nil {
		t.Fatalf("add w: %v", err)
	}
	if got := b.TypeSize(wide); got != 4 {
		t.Fatalf("size = %d, want 4", got)
	}
}

func TestBitfieldInvalidWidth(t *testing.T) {
	b := newBuilder(t)
	ord, err := b.CreateStruct("s")
	if err != nil {
		t.Fatalf("create struct: %v", err)
	}

	err = b.AddBitfieldField(ord, "zero", 0, 0, true)
	if err == nil || errKind(t, err) != errors.KindInvalidWidth {
		t.Fatalf("zero width: %v", err)
	}
	err = b.AddBitfieldField(ord, "huge", 60, 10, true)
	if err == nil || errKind(t, err) != errors.KindInvalidWidth {
		t.Fatalf("past 64 bits: %v", err)
	}
}

func TestBitfieldDescriptorDeduped(t *testing.T) {
	b := newBuilder(t)

	a, err := b.CreateStruct("a")
	if err != nil {
		t.Fatalf("create a: %v", err)
	}
	c, err := b.CreateStruct("b")
	if err != nil {
		t.Fatalf("create b: %v", err)
	}
	if err := b.AddBitfieldField(a, "f", 0, 3, true); err != nil {
		t.Fatalf("add to a: %v", err)
	}
	if err := b.AddBitfieldField(c, "g", 0, 3, true); err != nil {
		t.Fatalf("add to b: %v", err)
	}

	da, _ := b.Catalog().Get(a)
	dc, _ := b.Catalog().Get(c)
	fa := da.(descriptor.Aggregate).Fields[0]
	fc := dc.(descriptor.Aggregate).Fields[0]
	if fa.Type != fc.Type {
		t.Fatalf("bitfield ordinals differ: %d vs %d", fa.Type, fc.Type)
	}
}

func TestBitfieldFailureLeavesCatalogUntouched(t *testing.T) {
	b := newBuilder(t)
	enum, err := b.CreateEnum("color", 4)
	if err != nil {
		t.Fatalf("create enum: %v", err)
	}

	before := b.Catalog().OrdinalLimit()
	if err := b.AddBitfieldField(9999, "f", 0, 3, true); err == nil {
		t.Fatal("expected error for unregistered struct ordinal")
	}
	if err := b.AddBitfieldField(enum, "f", 0, 3, true); err == nil {
		t.Fatal("expected error for non-aggregate target")
	}
	if got := b.Catalog().OrdinalLimit(); got != before {
		t.Fatalf("ordinal limit grew from %d to %d on failed bitfield adds", before, got)
	}
}

func TestEnumWidthValidation(t *testing.T) {
	b := newBuilder(t)

	if _, err := b.CreateEnum("bad", 3); err == nil {
		t.Fatal("expected invalid width error")
	} else if errKind(t, err) != errors.KindInvalidWidth {
		t.Fatalf("kind = %v", errKind(t, err))
	}

	for _, w := range EnumWidths {
		ord, err := b.CreateEnum("", w)
		if err != nil {
			t.Fatalf("width %d: %v", w, err)
		}
		if got := b.TypeSize(ord); got != uint64(w) {
			t.Fatalf("width %d: size = %d", w, got)
		}
	}
}

func TestEnumDuplicateValuesAccepted(t *testing.T) {
	b := newBuilder(t)
	ord, err := b.CreateEnum("dup", 4)
	if err != nil {
		t.Fatalf("create enum: %v", err)
	}
	if err := b.AddEnumMember(ord, "a", 1); err != nil {
		t.Fatalf("add a: %v", err)
	}
	if err := b.AddEnumMember(ord, "b", 1); err != nil {
		t.Fatalf("duplicate value rejected: %v", err)
	}

	d, _ := b.Catalog().Get(ord)
	if got := len(d.(descriptor.Enum).Members); got != 2 {
		t.Fatalf("members = %d, want 2", got)
	}
}

func TestArraySize(t *testing.T) {
	b := newBuilder(t)
	i32 := mustIntern(t, b, descriptor.PrimInt32)

	ord, err := b.CreateArray(i32, 10)
	if err != nil {
		t.Fatalf("create array: %v", err)
	}
	if got := b.TypeSize(ord); got != 40 {
		t.Fatalf("size = %d, want 40", got)
	}

	empty, err := b.CreateArray(i32, 0)
	if err != nil {
		t.Fatalf("create incomplete array: %v", err)
	}
	if got := b.TypeSize(empty); got != 0 {
		t.Fatalf("incomplete array size = %d, want 0", got)
	}

	if _, err := b.CreateArray(9999, 4); err == nil {
		t.Fatal("expected error for unregistered element type")
	}
}

func TestFunctionSignature(t *testing.T) {
	b := newBuilder(t)
	i32 := mustIntern(t, b, descriptor.PrimInt32)

	ord, err := b.CreateFunction(i32, descriptor.CCCdecl, true)
	if err != nil {
		t.Fatalf("create function: %v", err)
	}
	if err := b.AddParameter(ord, "fmt", i32, false); err != nil {
		t.Fatalf("add param: %v", err)
	}
	if err := b.AddParameter(ord, "this", i32, true); err != nil {
		t.Fatalf("add hidden param: %v", err)
	}

	d, _ := b.Catalog().Get(ord)
	fn := d.(descriptor.FuncSig)
	if fn.Ret != i32 {
		t.Fatalf("ret = %d, want %d", fn.Ret, i32)
	}
	if !fn.CC.Vararg() {
		t.Fatal("vararg bit not set")
	}
	if len(fn.Params) != 2 || !fn.Params[1].Hidden {
		t.Fatalf("params = %+v", fn.Params)
	}
	if got := b.TypeSize(ord); got != 0 {
		t.Fatalf("function size = %d, want 0", got)
	}
}

func TestFunctionAttributesAdditive(t *testing.T) {
	b := newBuilder(t)
	ord, err := b.CreateFunction(0, descriptor.CCUnknown, false)
	if err != nil {
		t.Fatalf("create function: %v", err)
	}
	if err := b.SetFunctionAttributes(ord, true, false, false, false, false, false, false); err != nil {
		t.Fatalf("set noreturn: %v", err)
	}
	if err := b.SetFunctionAttributes(ord, false, true, false, false, false, false, false); err != nil {
		t.Fatalf("set pure: %v", err)
	}

	d, _ := b.Catalog().Get(ord)
	attrs := d.(descriptor.FuncSig).Attrs
	if attrs&descriptor.AttrNoreturn == 0 || attrs&descriptor.AttrPure == 0 {
		t.Fatalf("attrs = %#x, want noreturn|pure", attrs)
	}
}

func TestPointerSizeIndependentOfTarget(t *testing.T) {
	b := newBuilder(t)
	i8 := mustIntern(t, b, descriptor.PrimInt8)

	s, err := b.CreateStruct("big")
	if err != nil {
		t.Fatalf("create struct: %v", err)
	}
	i64 := mustIntern(t, b, descriptor.PrimInt64)
	for i, name := range []string{"a", "b", "c", "d"} {
		if err := b.AddField(s, name, i64, uint64(i)*8); err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
	}

	p1, err := b.CreatePointer(i8)
	if err != nil {
		t.Fatalf("pointer to int8: %v", err)
	}
	p2, err := b.CreatePointer(s)
	if err != nil {
		t.Fatalf("pointer to struct: %v", err)
	}
	if b.TypeSize(p1) != descriptor.PointerSize || b.TypeSize(p2) != descriptor.PointerSize {
		t.Fatalf("pointer sizes = %d,%d, want %d", b.TypeSize(p1), b.TypeSize(p2), descriptor.PointerSize)
	}

	if _, err := b.CreatePointer(9999); err == nil {
		t.Fatal("expected error for unregistered target")
	}
}

func TestFinalizeKeepsShape(t *testing.T) {
	b := newBuilder(t)
	i32 := mustIntern(t, b, descriptor.PrimInt32)
	ord, err := b.CreateStruct("s")
	if err != nil {
		t.Fatalf("create struct: %v", err)
	}
	if err := b.AddField(ord, "x", i32, 0); err != nil {
		t.Fatalf("add field: %v", err)
	}

	before, _ := b.Catalog().Get(ord)
	if err := b.Finalize(ord); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	after, _ := b.Catalog().Get(ord)
	if !descriptor.Equal(before, after) {
		t.Fatal("finalize changed the descriptor")
	}
}
