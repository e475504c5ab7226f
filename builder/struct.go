package builder

import (
	"fmt"

	"github.com/typeforge/typecatalog/descriptor"
	"github.com/typeforge/typecatalog/errors"
)

// StructBuilder accumulates a struct or union declaratively and registers
// it in one Build call. Unlike the ordinal operations it validates the
// whole configuration before touching the catalog.
type StructBuilder struct {
	name      string
	fields    []structField
	bitfields []bitfieldSpec
	union     bool
}

type structField struct {
	name      string
	ord       descriptor.Ordinal
	prim      descriptor.PrimKind
	offset    uint64
	isPrim    bool
	selfRef   bool
	hasOffset bool
}

type bitfieldSpec struct {
	name     string
	offset   uint32
	width    uint32
	unsigned bool
}

// NewStruct starts a struct builder.
func NewStruct(name string) *StructBuilder {
	return &StructBuilder{name: name}
}

// NewUnion starts a union builder.
func NewUnion(name string) *StructBuilder {
	return &StructBuilder{name: name, union: true}
}

// Field appends a member of an already registered type at the next free
// offset.
func (s *StructBuilder) Field(name string, typ descriptor.Ordinal) *StructBuilder {
	s.fields = append(s.fields, structField{name: name, ord: typ})
	return s
}

// FieldAt appends a member at an explicit byte offset. Unions ignore the
// offset; every union member starts at 0.
func (s *StructBuilder) FieldAt(name string, typ descriptor.Ordinal, byteOffset uint64) *StructBuilder {
	if s.union {
		return s.Field(name, typ)
	}
	s.fields = append(s.fields, structField{name: name, ord: typ, offset: byteOffset, hasOffset: true})
	return s
}

// Prim appends a member of a primitive kind, interning the primitive on
// Build.
func (s *StructBuilder) Prim(name string, kind descriptor.PrimKind) *StructBuilder {
	s.fields = append(s.fields, structField{name: name, prim: kind, isPrim: true})
	return s
}

// SelfRef appends a pointer-to-this-struct member, for linked lists and
// trees.
func (s *StructBuilder) SelfRef(name string) *StructBuilder {
	s.fields = append(s.fields, structField{name: name, selfRef: true})
	return s
}

// Bitfield appends a bitfield member. Unions do not carry bitfields; the
// call is a no-op for them.
func (s *StructBuilder) Bitfield(name string, bitOffset, bitWidth uint32, unsigned bool) *StructBuilder {
	if s.union {
		return s
	}
	s.bitfields = append(s.bitfields, bitfieldSpec{name: name, offset: bitOffset, width: bitWidth, unsigned: unsigned})
	return s
}

// UnsignedBitfield appends an unsigned bitfield member.
func (s *StructBuilder) UnsignedBitfield(name string, bitOffset, bitWidth uint32) *StructBuilder {
	return s.Bitfield(name, bitOffset, bitWidth, true)
}

// SignedBitfield appends a signed bitfield member.
func (s *StructBuilder) SignedBitfield(name string, bitOffset, bitWidth uint32) *StructBuilder {
	return s.Bitfield(name, bitOffset, bitWidth, false)
}

// Validate checks the configuration without touching the catalog.
func (s *StructBuilder) Validate() error {
	if s.name == "" {
		return errors.New(errors.PhaseBuild, errors.KindBuildFailure).
			Detail("struct/union name cannot be empty").
			Build()
	}

	seen := make(map[string]bool)
	for _, f := range s.fields {
		if seen[f.name] {
			return errors.New(errors.PhaseBuild, errors.KindBuildFailure).
				Name(s.name).
				Detail("duplicate field name %q", f.name).
				Build()
		}
		seen[f.name] = true
	}
	for _, bf := range s.bitfields {
		if seen[bf.name] {
			return errors.New(errors.PhaseBuild, errors.KindBuildFailure).
				Name(s.name).
				Detail("duplicate bitfield name %q", bf.name).
				Build()
		}
		seen[bf.name] = true
	}

	var ranges [][2]uint32
	for _, bf := range s.bitfields {
		start, end := bf.offset, bf.offset+bf.width
		for _, r := range ranges {
			if start < r[1] && end > r[0] {
				return errors.New(errors.PhaseBuild, errors.KindBuildFailure).
					Name(s.name).
					Detail("bitfield %q overlaps another bitfield (bits %d-%d)", bf.name, start, end).
					Build()
			}
		}
		ranges = append(ranges, [2]uint32{start, end})
	}
	return nil
}

// Build validates, registers the aggregate and appends every member.
func (s *StructBuilder) Build(b *Builder) (descriptor.Ordinal, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}

	var ord descriptor.Ordinal
	var err error
	if s.union {
		ord, err = b.CreateUnion(s.name)
	} else {
		ord, err = b.CreateStruct(s.name)
	}
	if err != nil {
		return 0, err
	}

	var cursor uint64
	for _, f := range s.fields {
		ft := f.ord
		switch {
		case f.isPrim:
			if ft, err = b.cat.Intern(f.prim); err != nil {
				return 0, err
			}
		case f.selfRef:
			if ft, err = b.CreatePointer(ord); err != nil {
				return 0, err
			}
		}
		if ft == 0 {
			return 0, errors.New(errors.PhaseBuild, errors.KindBuildFailure).
				Name(s.name).
				Detail("invalid type for field %q", f.name).
				Build()
		}

		offset := cursor
		if f.hasOffset {
			offset = f.offset
		}
		if err := b.AddField(ord, f.name, ft, offset); err != nil {
			return 0, fmt.Errorf("add field %q: %w", f.name, err)
		}
		if !s.union {
			size := b.cat.TypeSize(ft)
			if size == 0 {
				size = descriptor.PointerSize
			}
			cursor = offset + size
		}
	}

	for _, bf := range s.bitfields {
		if err := b.AddBitfieldField(ord, bf.name, bf.offset, bf.width, bf.unsigned); err != nil {
			return 0, fmt.Errorf("add bitfield %q: %w", bf.name, err)
		}
	}

	if err := b.Finalize(ord); err != nil {
		return 0, err
	}
	return ord, nil
}
