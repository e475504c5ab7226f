package descriptor

// SizeOf computes the byte size of a descriptor. Referenced types are
// resolved through r. Unresolvable references, reference cycles and void
// yield 0.
func SizeOf(d Descriptor, r Resolver) uint64 {
	return sizeOf(d, r, nil)
}

// sizeOf tracks the ordinals already followed; only the Array case recurses
// through the resolver, so that is the only place a stored cycle can loop.
func sizeOf(d Descriptor, r Resolver, seen map[Ordinal]bool) uint64 {
	switch t := d.(type) {
	case Primitive:
		return t.Kind.Width()
	case Aggregate:
		return aggregateSize(t)
	case Enum:
		return uint64(t.WidthBytes)
	case Array:
		if seen[t.Elem] {
			return 0
		}
		elem, err := r.Get(t.Elem)
		if err != nil {
			return 0
		}
		if seen == nil {
			seen = make(map[Ordinal]bool)
		}
		seen[t.Elem] = true
		return sizeOf(elem, r, seen) * uint64(t.Count)
	case Bitfield:
		return uint64(t.WidthBytes)
	case FuncSig:
		// A signature has no storage size; only pointers to it do.
		return 0
	case Pointer:
		return PointerSize
	default:
		return 0
	}
}

// aggregateSize is the byte span covering every member's bit range. Union
// members all start at bit 0, so the same computation covers both shapes.
func aggregateSize(a Aggregate) uint64 {
	var endBits uint64
	for _, f := range a.Fields {
		if end := f.BitOffset + f.BitSize; end > endBits {
			endBits = end
		}
	}
	return (endBits + 7) / 8
}

// BitfieldContainer returns the smallest power-of-two byte count (1, 2, 4
// or 8) whose bit capacity covers endBit, or 0 when endBit exceeds 64 bits.
func BitfieldContainer(endBit uint32) uint32 {
	switch {
	case endBit == 0 || endBit > 64:
		return 0
	case endBit > 32:
		return 8
	case endBit > 16:
		return 4
	case endBit > 8:
		return 2
	default:
		return 1
	}
}
