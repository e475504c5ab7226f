package builder

import (
	"go.uber.org/zap"

	"github.com/typeforge/typecatalog/catalog"
	"github.com/typeforge/typecatalog/descriptor"
	"github.com/typeforge/typecatalog/errors"
)

// EnumWidths are the supported enum storage widths in bytes.
var EnumWidths = []uint32{1, 2, 4, 8}

// Builder performs composite type construction against one catalog.
type Builder struct {
	cat *catalog.Catalog
}

// New creates a builder bound to cat.
func New(cat *catalog.Catalog) *Builder {
	return &Builder{cat: cat}
}

// Catalog returns the bound catalog.
func (b *Builder) Catalog() *catalog.Catalog {
	return b.cat
}

// createNamed allocates an ordinal and stores d under it. A failed store
// abandons the ordinal; the catalog is otherwise unchanged.
func (b *Builder) createNamed(d descriptor.Descriptor, name string) (descriptor.Ordinal, error) {
	ord, err := b.cat.AllocateOrdinal()
	if err != nil {
		return 0, err
	}
	if err := b.cat.StoreNew(ord, d, name); err != nil {
		return 0, err
	}
	return ord, nil
}

// CreateStruct registers an empty struct under name and returns its ordinal.
func (b *Builder) CreateStruct(name string) (descriptor.Ordinal, error) {
	ord, err := b.createNamed(descriptor.Aggregate{}, name)
	if err != nil {
		return 0, err
	}
	Logger().Debug("struct created", zap.String("name", name), zap.Uint32("ordinal", uint32(ord)))
	return ord, nil
}

// CreateUnion registers an empty union under name and returns its ordinal.
func (b *Builder) CreateUnion(name string) (descriptor.Ordinal, error) {
	ord, err := b.createNamed(descriptor.Aggregate{Union: true}, name)
	if err != nil {
		return 0, err
	}
	Logger().Debug("union created", zap.String("name", name), zap.Uint32("ordinal", uint32(ord)))
	return ord, nil
}

// AddField appends an ordinary member to a struct or union. byteOffset is
// converted to bits and the member's bit size is read from the referenced
// type. Fields keep call order; overlapping layouts are accepted.
func (b *Builder) AddField(structOrd descriptor.Ordinal, name string, fieldType descriptor.Ordinal, byteOffset uint64) error {
	return b.cat.Update(structOrd, func(d descriptor.Descriptor, r descriptor.Resolver) (descriptor.Descriptor, error) {
		agg, ok := d.(descriptor.Aggregate)
		if !ok {
			return nil, errors.WrongShape(errors.PhaseBuild, uint32(structOrd), "struct or union")
		}
		ft, err := r.Get(fieldType)
		if err != nil {
			return nil, err
		}
		agg.Fields = append(agg.Fields, descriptor.Field{
			Name:      name,
			Type:      fieldType,
			BitOffset: byteOffset * 8,
			BitSize:   descriptor.SizeOf(ft, r) * 8,
		})
		return agg, nil
	})
}

// AddBitfieldField appends a bitfield member. The container is the smallest
// power-of-two byte count covering bitOffset+bitWidth; offset and size are
// stored as the raw bit values.
func (b *Builder) AddBitfieldField(structOrd descriptor.Ordinal, name string, bitOffset, bitWidth uint32, unsigned bool) error {
	container := descriptor.BitfieldContainer(bitOffset + bitWidth)
	if bitWidth == 0 || container == 0 {
		return errors.InvalidWidth(errors.PhaseBuild, name, bitWidth)
	}

	// Check the target before registering the bitfield entry, so a call
	// against a bad ordinal leaves the catalog untouched.
	d, err := b.cat.Get(structOrd)
	if err != nil {
		return err
	}
	if _, ok := d.(descriptor.Aggregate); !ok {
		return errors.WrongShape(errors.PhaseBuild, uint32(structOrd), "struct or union")
	}

	bf := descriptor.Bitfield{WidthBytes: container, BitWidth: bitWidth, Unsigned: unsigned}
	bfOrd := b.cat.FindStructural(bf)
	if bfOrd == 0 {
		var err error
		bfOrd, err = b.createNamed(bf, "")
		if err != nil {
			return err
		}
	}

	return b.cat.Update(structOrd, func(d descriptor.Descriptor, r descriptor.Resolver) (descriptor.Descriptor, error) {
		agg, ok := d.(descriptor.Aggregate)
		if !ok {
			return nil, errors.WrongShape(errors.PhaseBuild, uint32(structOrd), "struct or union")
		}
		agg.Fields = append(agg.Fields, descriptor.Field{
			Name:      name,
			Type:      bfOrd,
			BitOffset: uint64(bitOffset),
			BitSize:   uint64(bitWidth),
		})
		return agg, nil
	})
}

// CreateEnum registers an empty enum with the given storage width.
func (b *Builder) CreateEnum(name string, widthBytes uint32) (descriptor.Ordinal, error) {
	if !validEnumWidth(widthBytes) {
		return 0, errors.InvalidWidth(errors.PhaseBuild, name, widthBytes)
	}
	ord, err := b.createNamed(descriptor.Enum{WidthBytes: widthBytes}, name)
	if err != nil {
		return 0, err
	}
	Logger().Debug("enum created", zap.String("name", name), zap.Uint32("ordinal", uint32(ord)))
	return ord, nil
}

func validEnumWidth(w uint32) bool {
	for _, v := range EnumWidths {
		if w == v {
			return true
		}
	}
	return false
}

// AddEnumMember appends a named constant. Member values are not required to
// be unique.
func (b *Builder) AddEnumMember(enumOrd descriptor.Ordinal, name string, value int64) error {
	return b.cat.Update(enumOrd, func(d descriptor.Descriptor, r descriptor.Resolver) (descriptor.Descriptor, error) {
		e, ok := d.(descriptor.Enum)
		if !ok {
			return nil, errors.WrongShape(errors.PhaseBuild, uint32(enumOrd), "enum")
		}
		e.Members = append(e.Members, descriptor.EnumMember{Name: name, Value: value})
		return e, nil
	})
}

// CreateArray registers an array of count elements. Count 0 is permitted
// and denotes an incomplete array.
func (b *Builder) CreateArray(elem descriptor.Ordinal, count uint32) (descriptor.Ordinal, error) {
	if _, err := b.cat.Get(elem); err != nil {
		return 0, err
	}
	return b.createNamed(descriptor.Array{Elem: elem, Count: count}, "")
}

// CreateFunction registers an empty function signature. ret 0 means void or
// unspecified; vararg is OR-ed into the calling convention.
func (b *Builder) CreateFunction(ret descriptor.Ordinal, cc descriptor.CallingConvention, vararg bool) (descriptor.Ordinal, error) {
	if ret != 0 {
		if _, err := b.cat.Get(ret); err != nil {
			return 0, err
		}
	}
	if vararg {
		cc |= descriptor.CCVarargBit
	}
	return b.createNamed(descriptor.FuncSig{Ret: ret, CC: cc}, "")
}

// AddParameter appends a parameter. Parameter order is call order; there is
// no removal or reordering.
func (b *Builder) AddParameter(funcOrd descriptor.Ordinal, name string, paramType descriptor.Ordinal, hidden bool) error {
	return b.cat.Update(funcOrd, func(d descriptor.Descriptor, r descriptor.Resolver) (descriptor.Descriptor, error) {
		fn, ok := d.(descriptor.FuncSig)
		if !ok {
			return nil, errors.WrongShape(errors.PhaseBuild, uint32(funcOrd), "function signature")
		}
		if _, err := r.Get(paramType); err != nil {
			return nil, err
		}
		fn.Params = append(fn.Params, descriptor.Param{Name: name, Type: paramType, Hidden: hidden})
		return fn, nil
	})
}

// SetFunctionAttributes ORs the requested attribute bits into a signature.
// Attributes are additive; there is no clear operation.
func (b *Builder) SetFunctionAttributes(funcOrd descriptor.Ordinal, noreturn, pure, static, virtual, konst, ctor, dtor bool) error {
	return b.cat.Update(funcOrd, func(d descriptor.Descriptor, r descriptor.Resolver) (descriptor.Descriptor, error) {
		fn, ok := d.(descriptor.FuncSig)
		if !ok {
			return nil, errors.WrongShape(errors.PhaseBuild, uint32(funcOrd), "function signature")
		}
		if noreturn {
			fn.Attrs |= descriptor.AttrNoreturn
		}
		if pure {
			fn.Attrs |= descriptor.AttrPure
		}
		if static {
			fn.Attrs |= descriptor.AttrStatic
		}
		if virtual {
			fn.Attrs |= descriptor.AttrVirtual
		}
		if konst {
			fn.Attrs |= descriptor.AttrConst
		}
		if ctor {
			fn.Attrs |= descriptor.AttrConstructor
		}
		if dtor {
			fn.Attrs |= descriptor.AttrDestructor
		}
		return fn, nil
	})
}

// CreatePointer registers a pointer to an existing type.
func (b *Builder) CreatePointer(target descriptor.Ordinal) (descriptor.Ordinal, error) {
	if _, err := b.cat.Get(target); err != nil {
		return 0, err
	}
	return b.createNamed(descriptor.Pointer{Target: target}, "")
}

// CreateFunctionPointer registers a pointer whose target is a function
// signature. The shape is a plain pointer; the name documents intent.
func (b *Builder) CreateFunctionPointer(funcOrd descriptor.Ordinal) (descriptor.Ordinal, error) {
	return b.CreatePointer(funcOrd)
}

// Finalize re-stores a descriptor unchanged, forcing any deferred
// synchronization in the underlying store.
func (b *Builder) Finalize(ord descriptor.Ordinal) error {
	return b.cat.Update(ord, func(d descriptor.Descriptor, r descriptor.Resolver) (descriptor.Descriptor, error) {
		return d, nil
	})
}

// TypeSize returns the byte size of the type under ord, 0 when unresolved.
func (b *Builder) TypeSize(ord descriptor.Ordinal) uint64 {
	return b.cat.TypeSize(ord)
}
