package descriptor

import "testing"

func TestEqual(t *testing.T) {
	i32 := Primitive{Kind: PrimInt32}
	u32 := Primitive{Kind: PrimUInt32}

	if !Equal(i32, i32) {
		t.Error("identical primitives should be equal")
	}
	if Equal(i32, u32) {
		t.Error("different kinds should not be equal")
	}
	if Equal(i32, Pointer{Target: 1}) {
		t.Error("different shapes should not be equal")
	}

	a := Aggregate{Fields: []Field{{Name: "x", Type: 4, BitOffset: 0, BitSize: 32}}}
	b := Aggregate{Fields: []Field{{Name: "x", Type: 4, BitOffset: 0, BitSize: 32}}}
	if !Equal(a, b) {
		t.Error("structurally identical aggregates should be equal")
	}
	b.Fields[0].Name = "y"
	if Equal(a, b) {
		t.Error("field rename should break equality")
	}
	if Equal(a, Aggregate{Union: true, Fields: a.Fields}) {
		t.Error("struct and union with same fields should differ")
	}

	e1 := Enum{WidthBytes: 4, Members: []EnumMember{{Name: "RED", Value: 0}}}
	e2 := Enum{WidthBytes: 4, Members: []EnumMember{{Name: "RED", Value: 0}}}
	if !Equal(e1, e2) {
		t.Error("identical enums should be equal")
	}
	e2.WidthBytes = 8
	if Equal(e1, e2) {
		t.Error("width change should break equality")
	}

	f1 := FuncSig{Ret: 4, CC: CCCdecl, Params: []Param{{Name: "a", Type: 4}}}
	f2 := FuncSig{Ret: 4, CC: CCCdecl, Params: []Param{{Name: "a", Type: 4}}}
	if !Equal(f1, f2) {
		t.Error("identical signatures should be equal")
	}
	f2.CC |= CCVarargBit
	if Equal(f1, f2) {
		t.Error("vararg bit should break equality")
	}
}

func TestFingerprint_MatchesEquality(t *testing.T) {
	pairs := [][2]Descriptor{
		{Primitive{Kind: PrimInt32}, Primitive{Kind: PrimInt32}},
		{Array{Elem: 4, Count: 3}, Array{Elem: 4, Count: 3}},
		{Bitfield{WidthBytes: 1, BitWidth: 3, Unsigned: true}, Bitfield{WidthBytes: 1, BitWidth: 3, Unsigned: true}},
		{Pointer{Target: 7}, Pointer{Target: 7}},
	}
	for _, p := range pairs {
		if Fingerprint(p[0]) != Fingerprint(p[1]) {
			t.Errorf("equal descriptors %v and %v should share a fingerprint", p[0], p[1])
		}
	}

	distinct := []Descriptor{
		Primitive{Kind: PrimInt32},
		Primitive{Kind: PrimUInt32},
		Array{Elem: 4, Count: 3},
		Array{Elem: 4, Count: 4},
		Pointer{Target: 7},
		Pointer{Target: 8},
		Enum{WidthBytes: 4},
		Aggregate{},
		Aggregate{Union: true},
		FuncSig{Ret: 0, CC: CCCdecl},
		FuncSig{Ret: 0, CC: CCCdecl | CCVarargBit},
	}
	seen := make(map[string]Descriptor)
	for _, d := range distinct {
		fp := Fingerprint(d)
		if prev, ok := seen[fp]; ok {
			t.Errorf("fingerprint collision between %v and %v", prev, d)
		}
		seen[fp] = d
	}
}

func TestFingerprint_NameWithSeparators(t *testing.T) {
	crafted := Aggregate{Fields: []Field{
		{Name: "a#1@0:8;b", Type: 1, BitOffset: 0, BitSize: 8},
	}}
	plain := Aggregate{Fields: []Field{
		{Name: "a", Type: 1, BitOffset: 0, BitSize: 8},
		{Name: "b", Type: 1, BitOffset: 0, BitSize: 8},
	}}

	if Equal(crafted, plain) {
		t.Fatal("aggregates with different fields compared equal")
	}
	if Fingerprint(crafted) == Fingerprint(plain) {
		t.Fatalf("separator characters in a field name collided: %q", Fingerprint(crafted))
	}
}

func TestReferences(t *testing.T) {
	refs := References(FuncSig{Ret: 3, Params: []Param{{Type: 4}, {Type: 5}}})
	if len(refs) != 3 || refs[0] != 3 || refs[1] != 4 || refs[2] != 5 {
		t.Fatalf("func refs = %v", refs)
	}

	if refs := References(FuncSig{Ret: 0}); len(refs) != 0 {
		t.Fatalf("void return should not count as a reference: %v", refs)
	}

	if refs := References(Primitive{Kind: PrimInt8}); refs != nil {
		t.Fatalf("primitive refs = %v, want nil", refs)
	}

	refs = References(Aggregate{Fields: []Field{{Type: 9}}})
	if len(refs) != 1 || refs[0] != 9 {
		t.Fatalf("aggregate refs = %v", refs)
	}
}
