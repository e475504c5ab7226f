package catalog

import (
	"github.com/typeforge/typecatalog/descriptor"
	"github.com/typeforge/typecatalog/errors"
)

// wellKnown maps each primitive kind to the default ordinal it is seeded at
// when a catalog opens.
var wellKnown = map[descriptor.PrimKind]descriptor.Ordinal{
	descriptor.PrimVoid:   1,
	descriptor.PrimInt8:   2,
	descriptor.PrimInt16:  3,
	descriptor.PrimInt32:  4,
	descriptor.PrimInt64:  5,
	descriptor.PrimUInt8:  6,
	descriptor.PrimUInt16: 7,
	descriptor.PrimUInt32: 8,
	descriptor.PrimUInt64: 9,
	descriptor.PrimFloat:  10,
	descriptor.PrimDouble: 11,
}

func (c *Catalog) seedPrimitives() {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Ordinals are dense from 1, so seeding in ordinal order keeps the
	// table honest.
	kinds := []descriptor.PrimKind{
		descriptor.PrimVoid,
		descriptor.PrimInt8, descriptor.PrimInt16, descriptor.PrimInt32, descriptor.PrimInt64,
		descriptor.PrimUInt8, descriptor.PrimUInt16, descriptor.PrimUInt32, descriptor.PrimUInt64,
		descriptor.PrimFloat, descriptor.PrimDouble,
	}
	for _, k := range kinds {
		c.entries = append(c.entries, entry{})
		ord := descriptor.Ordinal(len(c.entries))
		c.writeLocked(ord, descriptor.Primitive{Kind: k}, "")
	}
}

// Intern returns the canonical ordinal for a primitive kind, creating it on
// first use. Structurally identical primitives always intern to the same
// ordinal: the well-known table answers the common kinds directly and the
// fingerprint index covers anything registered since.
func (c *Catalog) Intern(kind descriptor.PrimKind) (descriptor.Ordinal, error) {
	prim := descriptor.Primitive{Kind: kind}
	if kind.Width() == 0 && kind != descriptor.PrimVoid {
		return 0, errors.New(errors.PhaseIntern, errors.KindBuildFailure).
			Detail("unknown primitive kind %d", kind).
			Build()
	}

	if ord, ok := wellKnown[kind]; ok && c.IsValid(ord) {
		return ord, nil
	}
	if ord := c.FindStructural(prim); ord != 0 {
		return ord, nil
	}

	ord, err := c.AllocateOrdinal()
	if err != nil {
		return 0, err
	}
	if err := c.StoreNew(ord, prim, ""); err != nil {
		return 0, err
	}
	return ord, nil
}
