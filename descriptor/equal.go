package descriptor

import (
	"fmt"
	"strings"
)

// Equal reports structural equality: same kind and same constituents,
// independent of which ordinal holds either descriptor.
func Equal(a, b Descriptor) bool {
	switch x := a.(type) {
	case Primitive:
		y, ok := b.(Primitive)
		return ok && x.Kind == y.Kind
	case Aggregate:
		y, ok := b.(Aggregate)
		if !ok || x.Union != y.Union || len(x.Fields) != len(y.Fields) {
			return false
		}
		for i := range x.Fields {
			if x.Fields[i] != y.Fields[i] {
				return false
			}
		}
		return true
	case Enum:
		y, ok := b.(Enum)
		if !ok || x.WidthBytes != y.WidthBytes || len(x.Members) != len(y.Members) {
			return false
		}
		for i := range x.Members {
			if x.Members[i] != y.Members[i] {
				return false
			}
		}
		return true
	case Array:
		y, ok := b.(Array)
		return ok && x == y
	case Bitfield:
		y, ok := b.(Bitfield)
		return ok && x == y
	case FuncSig:
		y, ok := b.(FuncSig)
		if !ok || x.Ret != y.Ret || x.CC != y.CC || x.Attrs != y.Attrs || len(x.Params) != len(y.Params) {
			return false
		}
		for i := range x.Params {
			if x.Params[i] != y.Params[i] {
				return false
			}
		}
		return true
	case Pointer:
		y, ok := b.(Pointer)
		return ok && x == y
	default:
		return false
	}
}

// Fingerprint returns a canonical structural key for a descriptor. Two
// descriptors are structurally equal iff their fingerprints match, which
// gives the catalog an O(1) dedup and reverse-lookup index. Names are
// length-prefixed so separator characters inside a name cannot make two
// different shapes collide.
func Fingerprint(d Descriptor) string {
	switch t := d.(type) {
	case Primitive:
		return fmt.Sprintf("prim:%d", t.Kind)
	case Aggregate:
		var b strings.Builder
		if t.Union {
			b.WriteString("union{")
		} else {
			b.WriteString("struct{")
		}
		for _, f := range t.Fields {
			fmt.Fprintf(&b, "%d:%s#%d@%d:%d;", len(f.Name), f.Name, f.Type, f.BitOffset, f.BitSize)
		}
		b.WriteByte('}')
		return b.String()
	case Enum:
		var b strings.Builder
		fmt.Fprintf(&b, "enum%d{", t.WidthBytes)
		for _, m := range t.Members {
			fmt.Fprintf(&b, "%d:%s=%d;", len(m.Name), m.Name, m.Value)
		}
		b.WriteByte('}')
		return b.String()
	case Array:
		return fmt.Sprintf("arr:#%dx%d", t.Elem, t.Count)
	case Bitfield:
		return fmt.Sprintf("bf:%d:%d:%t", t.WidthBytes, t.BitWidth, t.Unsigned)
	case FuncSig:
		var b strings.Builder
		fmt.Fprintf(&b, "fn:#%d:%#x:%#x(", t.Ret, uint32(t.CC), uint32(t.Attrs))
		for _, p := range t.Params {
			fmt.Fprintf(&b, "%d:%s#%d:%t;", len(p.Name), p.Name, p.Type, p.Hidden)
		}
		b.WriteByte(')')
		return b.String()
	case Pointer:
		return fmt.Sprintf("ptr:#%d:%#x", t.Target, t.AttrBits)
	default:
		return ""
	}
}
