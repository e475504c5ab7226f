package descriptor

import (
	"fmt"
	"strings"
)

var primNames = [primKindCount]string{
	PrimVoid:   "void",
	PrimInt8:   "int8_t",
	PrimInt16:  "int16_t",
	PrimInt32:  "int32_t",
	PrimInt64:  "int64_t",
	PrimUInt8:  "uint8_t",
	PrimUInt16: "uint16_t",
	PrimUInt32: "uint32_t",
	PrimUInt64: "uint64_t",
	PrimFloat:  "float",
	PrimDouble: "double",
}

// Name returns the C spelling of the primitive kind.
func (k PrimKind) Name() string {
	if k >= primKindCount {
		return "?"
	}
	return primNames[k]
}

// Render formats a descriptor as a C-like declaration. name may be empty for
// an anonymous rendering. Referenced types are resolved through r; an
// unresolvable reference renders as "?".
func Render(d Descriptor, name string, r Resolver) string {
	switch t := d.(type) {
	case Primitive:
		return withName(t.Kind.Name(), name)
	case Aggregate:
		return renderAggregate(t, name, r)
	case Enum:
		return renderEnum(t, name)
	case Array:
		elem := refName(t.Elem, r)
		if name == "" {
			return fmt.Sprintf("%s[%d]", elem, t.Count)
		}
		return fmt.Sprintf("%s %s[%d]", elem, name, t.Count)
	case Bitfield:
		sign := "int"
		if t.Unsigned {
			sign = "unsigned int"
		}
		return withName(fmt.Sprintf("%s : %d", sign, t.BitWidth), name)
	case FuncSig:
		return renderFunc(t, name, r)
	case Pointer:
		return withName(refName(t.Target, r)+" *", name)
	default:
		return "?"
	}
}

func withName(typ, name string) string {
	if name == "" {
		return typ
	}
	return typ + " " + name
}

// refName renders a referenced type in its short form: primitives, enums and
// pointers inline; anything else as its tag. An ordinal revisited along the
// same reference chain renders as its bare tag, so self-referential pointers
// and arrays terminate.
func refName(ord Ordinal, r Resolver) string {
	return refNameGuard(ord, r, make(map[Ordinal]bool))
}

func refNameGuard(ord Ordinal, r Resolver, seen map[Ordinal]bool) string {
	if seen[ord] {
		return fmt.Sprintf("type #%d", ord)
	}
	seen[ord] = true

	d, err := r.Get(ord)
	if err != nil {
		return "?"
	}
	switch t := d.(type) {
	case Primitive:
		return t.Kind.Name()
	case Aggregate:
		if t.Union {
			return fmt.Sprintf("union #%d", ord)
		}
		return fmt.Sprintf("struct #%d", ord)
	case Enum:
		return fmt.Sprintf("enum #%d", ord)
	case Array:
		return fmt.Sprintf("%s[%d]", refNameGuard(t.Elem, r, seen), t.Count)
	case Pointer:
		return refNameGuard(t.Target, r, seen) + " *"
	case FuncSig:
		return fmt.Sprintf("fn #%d", ord)
	case Bitfield:
		return fmt.Sprintf("bitfield:%d", t.BitWidth)
	default:
		return "?"
	}
}

func renderAggregate(a Aggregate, name string, r Resolver) string {
	var b strings.Builder
	if a.Union {
		b.WriteString("union")
	} else {
		b.WriteString("struct")
	}
	if name != "" {
		b.WriteByte(' ')
		b.WriteString(name)
	}
	b.WriteString(" {\n")
	for _, f := range a.Fields {
		d, err := r.Get(f.Type)
		if err != nil {
			fmt.Fprintf(&b, "  ? %s;\n", f.Name)
			continue
		}
		if bf, ok := d.(Bitfield); ok {
			sign := "int"
			if bf.Unsigned {
				sign = "unsigned int"
			}
			fmt.Fprintf(&b, "  %s %s : %d;\n", sign, f.Name, bf.BitWidth)
			continue
		}
		fmt.Fprintf(&b, "  %s %s;\n", refName(f.Type, r), f.Name)
	}
	b.WriteByte('}')
	return b.String()
}

func renderEnum(e Enum, name string) string {
	var b strings.Builder
	b.WriteString("enum")
	if name != "" {
		b.WriteByte(' ')
		b.WriteString(name)
	}
	b.WriteString(" {\n")
	for _, m := range e.Members {
		fmt.Fprintf(&b, "  %s = %d,\n", m.Name, m.Value)
	}
	b.WriteByte('}')
	return b.String()
}

func renderFunc(f FuncSig, name string, r Resolver) string {
	ret := "void"
	if f.Ret != 0 {
		ret = refName(f.Ret, r)
	}
	if name == "" {
		name = "(*)"
	}

	params := make([]string, 0, len(f.Params)+1)
	for _, p := range f.Params {
		params = append(params, withName(refName(p.Type, r), p.Name))
	}
	if f.CC.Vararg() {
		params = append(params, "...")
	}
	if len(params) == 0 {
		params = append(params, "void")
	}

	return fmt.Sprintf("%s %s(%s)", ret, name, strings.Join(params, ", "))
}
