package descriptor

// Ordinal identifies a registered type in a catalog.
// Ordinal 0 is reserved and always invalid.
type Ordinal uint32

// PointerSize is the byte width of a pointer in the target address space.
const PointerSize = 8

// Resolver resolves an ordinal to its current descriptor. The catalog
// implements it; size computation and rendering use it to follow references.
type Resolver interface {
	Get(ord Ordinal) (Descriptor, error)
}

// Descriptor is the tagged variant over all type shapes.
type Descriptor interface {
	isDescriptor()
}

// PrimKind identifies a primitive type.
type PrimKind uint8

const (
	PrimVoid PrimKind = iota
	PrimInt8
	PrimInt16
	PrimInt32
	PrimInt64
	PrimUInt8
	PrimUInt16
	PrimUInt32
	PrimUInt64
	PrimFloat
	PrimDouble

	primKindCount
)

// Character and boolean storage share the 8-bit integer shapes.
const (
	PrimChar = PrimInt8
	PrimBool = PrimUInt8
)

// Primitive represents a fixed-width scalar or void.
type Primitive struct {
	Kind PrimKind
}

func (Primitive) isDescriptor() {}

// Aggregate represents a struct or union.
type Aggregate struct {
	Fields []Field
	Union  bool
}

func (Aggregate) isDescriptor() {}

// Field is a member of an aggregate. For ordinary members BitOffset and
// BitSize are byte-derived (offset*8, size-of-type*8); for bitfield members
// they are the raw bit values and Type references a Bitfield descriptor.
type Field struct {
	Name      string
	Type      Ordinal
	BitOffset uint64
	BitSize   uint64
}

// Enum represents an enumeration with a fixed storage width.
type Enum struct {
	Members    []EnumMember
	WidthBytes uint32
}

func (Enum) isDescriptor() {}

// EnumMember is a named constant. Values are not required to be unique.
type EnumMember struct {
	Name  string
	Value int64
}

// Array represents a fixed-length array. Count 0 denotes an incomplete
// (unbounded) array; its interpretation is left to the caller.
type Array struct {
	Elem  Ordinal
	Count uint32
}

func (Array) isDescriptor() {}

// Bitfield represents a sub-byte-width member type. It appears only as a
// Field's type inside an aggregate, never as a standalone named type.
type Bitfield struct {
	WidthBytes uint32
	BitWidth   uint32
	Unsigned   bool
}

func (Bitfield) isDescriptor() {}

// CallingConvention encodes argument passing. The vararg flag is OR-ed into
// the convention value.
type CallingConvention uint32

const (
	CCUnknown  CallingConvention = 0x10
	CCCdecl    CallingConvention = 0x30
	CCStdcall  CallingConvention = 0x50
	CCPascal   CallingConvention = 0x60
	CCFastcall CallingConvention = 0x70
	CCThiscall CallingConvention = 0x80
	CCSwift    CallingConvention = 0x90
	CCGolang   CallingConvention = 0xB0

	// CCVarargBit marks an ellipsis signature.
	CCVarargBit CallingConvention = 0x40
)

// Vararg reports whether the vararg bit is set.
func (cc CallingConvention) Vararg() bool {
	return cc&CCVarargBit != 0
}

// AttrFlags are function signature attributes. Bits are additive; there is
// no operation to clear a previously set attribute.
type AttrFlags uint32

const (
	AttrNoreturn AttrFlags = 1 << iota
	AttrPure
	AttrStatic
	AttrVirtual
	AttrConst
	AttrConstructor
	AttrDestructor
)

// FuncSig represents a function signature. Ret 0 means void/unspecified.
type FuncSig struct {
	Params []Param
	Ret    Ordinal
	CC     CallingConvention
	Attrs  AttrFlags
}

func (FuncSig) isDescriptor() {}

// Param is a function parameter. Hidden marks compiler-introduced arguments
// such as the this pointer.
type Param struct {
	Name   string
	Type   Ordinal
	Hidden bool
}

// Pointer represents a pointer to another registered type.
type Pointer struct {
	Target   Ordinal
	AttrBits uint32
}

func (Pointer) isDescriptor() {}

// primWidths maps each primitive kind to its byte width.
var primWidths = [primKindCount]uint64{
	PrimVoid:   0,
	PrimInt8:   1,
	PrimInt16:  2,
	PrimInt32:  4,
	PrimInt64:  8,
	PrimUInt8:  1,
	PrimUInt16: 2,
	PrimUInt32: 4,
	PrimUInt64: 8,
	PrimFloat:  4,
	PrimDouble: 8,
}

// Width returns the byte width of the primitive kind, 0 for void or an
// unknown kind.
func (k PrimKind) Width() uint64 {
	if k >= primKindCount {
		return 0
	}
	return primWidths[k]
}

// References returns the ordinals a descriptor refers to. Ret 0 in a
// function signature is not a reference.
func References(d Descriptor) []Ordinal {
	switch t := d.(type) {
	case Aggregate:
		refs := make([]Ordinal, 0, len(t.Fields))
		for _, f := range t.Fields {
			refs = append(refs, f.Type)
		}
		return refs
	case Array:
		return []Ordinal{t.Elem}
	case Pointer:
		return []Ordinal{t.Target}
	case FuncSig:
		var refs []Ordinal
		if t.Ret != 0 {
			refs = append(refs, t.Ret)
		}
		for _, p := range t.Params {
			refs = append(refs, p.Type)
		}
		return refs
	default:
		return nil
	}
}
