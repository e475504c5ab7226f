// Package importer loads declarative catalog files. The TOML format drives
// the same builder operations as manual construction; parsing C headers
// stays outside this module.
package importer

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"

	"github.com/typeforge/typecatalog/builder"
	"github.com/typeforge/typecatalog/catalog"
	"github.com/typeforge/typecatalog/descriptor"
	"github.com/typeforge/typecatalog/errors"
)

// TOML imports declarations from TOML catalog files.
type TOML struct {
	cfg Config
}

// NewTOML creates an importer with cfg.
func NewTOML(cfg Config) *TOML {
	return &TOML{cfg: cfg}
}

// LoadCatalogFile imports path into cat with the default configuration and
// returns the number of declarations registered.
func LoadCatalogFile(path string, cat *catalog.Catalog) (int, error) {
	return NewTOML(DefaultConfig()).ParseDeclarations(path, cat)
}

type catalogFile struct {
	Macros    map[string]int64 `toml:"macros"`
	Structs   []structDecl     `toml:"struct"`
	Unions    []structDecl     `toml:"union"`
	Enums     []enumDecl       `toml:"enum"`
	Arrays    []namedArray     `toml:"array"`
	Pointers  []namedPointer   `toml:"pointer"`
	Functions []funcDecl       `toml:"function"`
}

type structDecl struct {
	Name      string         `toml:"name"`
	Fields    []fieldDecl    `toml:"field"`
	Bitfields []bitfieldDecl `toml:"bitfield"`
}

type fieldDecl struct {
	Name   string  `toml:"name"`
	Type   string  `toml:"type"`
	Offset *uint64 `toml:"offset"`
}

type bitfieldDecl struct {
	Name     string `toml:"name"`
	Offset   uint32 `toml:"offset"`
	Width    uint32 `toml:"width"`
	Unsigned bool   `toml:"unsigned"`
}

type enumDecl struct {
	Name    string       `toml:"name"`
	Width   uint32       `toml:"width"`
	Members []memberDecl `toml:"member"`
}

type memberDecl struct {
	Name  string `toml:"name"`
	Value *int64 `toml:"value"`
	Macro string `toml:"macro"`
}

type namedArray struct {
	Name  string `toml:"name"`
	Elem  string `toml:"elem"`
	Count uint32 `toml:"count"`
}

type namedPointer struct {
	Name   string `toml:"name"`
	Target string `toml:"target"`
}

type funcDecl struct {
	Name    string      `toml:"name"`
	Returns string      `toml:"returns"`
	CC      string      `toml:"cc"`
	Vararg  bool        `toml:"vararg"`
	Params  []paramDecl `toml:"param"`

	Noreturn    bool `toml:"noreturn"`
	Pure        bool `toml:"pure"`
	Static      bool `toml:"static"`
	Virtual     bool `toml:"virtual"`
	Const       bool `toml:"const"`
	Constructor bool `toml:"constructor"`
	Destructor  bool `toml:"destructor"`
}

type paramDecl struct {
	Name   string `toml:"name"`
	Type   string `toml:"type"`
	Hidden bool   `toml:"hidden"`
}

var primNames = map[string]descriptor.PrimKind{
	"void":   descriptor.PrimVoid,
	"int8":   descriptor.PrimInt8,
	"char":   descriptor.PrimChar,
	"int16":  descriptor.PrimInt16,
	"int32":  descriptor.PrimInt32,
	"int64":  descriptor.PrimInt64,
	"uint8":  descriptor.PrimUInt8,
	"bool":   descriptor.PrimBool,
	"uint16": descriptor.PrimUInt16,
	"uint32": descriptor.PrimUInt32,
	"uint64": descriptor.PrimUInt64,
	"float":  descriptor.PrimFloat,
	"double": descriptor.PrimDouble,
}

var ccNames = map[string]descriptor.CallingConvention{
	"":         descriptor.CCUnknown,
	"unknown":  descriptor.CCUnknown,
	"cdecl":    descriptor.CCCdecl,
	"stdcall":  descriptor.CCStdcall,
	"pascal":   descriptor.CCPascal,
	"fastcall": descriptor.CCFastcall,
	"thiscall": descriptor.CCThiscall,
	"swift":    descriptor.CCSwift,
	"golang":   descriptor.CCGolang,
}

// ParseDeclarations imports the TOML source. When Config.TreatAsFile is set,
// source is a path; otherwise it is the document itself. Struct, union and
// enum shells are registered first and fields filled in last, so
// declarations may reference each other regardless of file order.
func (t *TOML) ParseDeclarations(source string, cat *catalog.Catalog) (int, error) {
	data := source
	if t.cfg.TreatAsFile {
		raw, err := os.ReadFile(source)
		if err != nil {
			return 0, errors.ImportFailed(source, err)
		}
		data = string(raw)
	}

	var file catalogFile
	if err := toml.Unmarshal([]byte(data), &file); err != nil {
		return 0, errors.ImportFailed(source, err)
	}
	if !t.cfg.DefineMacros && len(file.Macros) > 0 {
		return 0, errors.ImportFailed(source, fmt.Errorf("macros disabled by configuration"))
	}

	b := builder.New(cat)
	count := 0

	type shell struct {
		decl  structDecl
		ord   descriptor.Ordinal
		union bool
	}
	var shells []shell
	for _, s := range file.Structs {
		shells = append(shells, shell{decl: s})
	}
	for _, u := range file.Unions {
		shells = append(shells, shell{decl: u, union: true})
	}

	for i := range shells {
		var err error
		if shells[i].union {
			shells[i].ord, err = b.CreateUnion(shells[i].decl.Name)
		} else {
			shells[i].ord, err = b.CreateStruct(shells[i].decl.Name)
		}
		if err != nil {
			return count, errors.ImportFailed(source, err)
		}
	}
	enumOrds := make([]descriptor.Ordinal, len(file.Enums))
	for i, e := range file.Enums {
		ord, err := b.CreateEnum(e.Name, e.Width)
		if err != nil {
			return count, errors.ImportFailed(source, err)
		}
		enumOrds[i] = ord
	}

	for i, e := range file.Enums {
		next := int64(0)
		for _, m := range e.Members {
			value, err := t.memberValue(m, next, file.Macros)
			if err != nil {
				return count, errors.ImportFailed(source, err)
			}
			if err := b.AddEnumMember(enumOrds[i], m.Name, value); err != nil {
				return count, errors.ImportFailed(source, err)
			}
			next = value + 1
		}
		count++
	}

	for _, a := range file.Arrays {
		elem, err := t.resolveType(a.Elem, cat)
		if err != nil {
			return count, errors.ImportFailed(source, err)
		}
		ord, err := b.CreateArray(elem, a.Count)
		if err != nil {
			return count, errors.ImportFailed(source, err)
		}
		if a.Name != "" {
			if err := cat.SetName(ord, a.Name); err != nil {
				return count, errors.ImportFailed(source, err)
			}
		}
		count++
	}

	for _, p := range file.Pointers {
		target, err := t.resolveType(p.Target, cat)
		if err != nil {
			return count, errors.ImportFailed(source, err)
		}
		ord, err := b.CreatePointer(target)
		if err != nil {
			return count, errors.ImportFailed(source, err)
		}
		if p.Name != "" {
			if err := cat.SetName(ord, p.Name); err != nil {
				return count, errors.ImportFailed(source, err)
			}
		}
		count++
	}

	for _, s := range shells {
		cursor := uint64(0)
		for _, f := range s.decl.Fields {
			ft, err := t.resolveType(f.Type, cat)
			if err != nil {
				return count, errors.ImportFailed(source, err)
			}
			offset := cursor
			if f.Offset != nil {
				offset = *f.Offset
			}
			if err := b.AddField(s.ord, f.Name, ft, offset); err != nil {
				return count, errors.ImportFailed(source, err)
			}
			if !s.union {
				size := cat.TypeSize(ft)
				if size == 0 {
					size = descriptor.PointerSize
				}
				cursor = offset + size
			}
		}
		for _, bf := range s.decl.Bitfields {
			if err := b.AddBitfieldField(s.ord, bf.Name, bf.Offset, bf.Width, bf.Unsigned); err != nil {
				return count, errors.ImportFailed(source, err)
			}
		}
		if err := b.Finalize(s.ord); err != nil {
			return count, errors.ImportFailed(source, err)
		}
		count++
	}

	for _, fn := range file.Functions {
		fb := builder.NewFunction(fn.Name)
		if fn.Returns != "" && fn.Returns != "void" {
			ret, err := t.resolveType(fn.Returns, cat)
			if err != nil {
				return count, errors.ImportFailed(source, err)
			}
			fb.Returns(ret)
		}
		cc, ok := ccNames[fn.CC]
		if !ok {
			if !t.cfg.SuppressWarnings {
				Logger().Warn("unrecognized calling convention",
					zap.String("function", fn.Name),
					zap.String("cc", fn.CC))
			}
			cc = descriptor.CCUnknown
		}
		fb.CallingConvention(cc)
		if fn.Vararg {
			fb.Vararg()
		}
		for _, p := range fn.Params {
			pt, err := t.resolveType(p.Type, cat)
			if err != nil {
				return count, errors.ImportFailed(source, err)
			}
			if p.Hidden {
				fb.HiddenParam(p.Name, pt)
			} else {
				fb.Param(p.Name, pt)
			}
		}
		if fn.Noreturn {
			fb.Noreturn()
		}
		if fn.Pure {
			fb.Pure()
		}
		if fn.Static {
			fb.Static()
		}
		if fn.Virtual {
			fb.Virtual()
		}
		if fn.Const {
			fb.Const()
		}
		if fn.Constructor {
			fb.Constructor()
		}
		if fn.Destructor {
			fb.Destructor()
		}
		if _, err := fb.Build(b); err != nil {
			return count, errors.ImportFailed(source, err)
		}
		count++
	}

	Logger().Info("catalog imported",
		zap.String("source", source),
		zap.Int("declarations", count))
	return count, nil
}

// memberValue resolves an enum member's value: explicit value, macro
// reference, or one past the previous member.
func (t *TOML) memberValue(m memberDecl, next int64, macros map[string]int64) (int64, error) {
	switch {
	case m.Value != nil:
		return *m.Value, nil
	case m.Macro != "":
		if !t.cfg.DefineMacros {
			return 0, fmt.Errorf("member %q references macro %q with macros disabled", m.Name, m.Macro)
		}
		v, ok := macros[m.Macro]
		if !ok {
			return 0, fmt.Errorf("member %q references undefined macro %q", m.Name, m.Macro)
		}
		return v, nil
	default:
		return next, nil
	}
}

// resolveType maps a type name to an ordinal: primitive names intern, other
// names must already be registered in the catalog.
func (t *TOML) resolveType(name string, cat *catalog.Catalog) (descriptor.Ordinal, error) {
	if kind, ok := primNames[name]; ok {
		return cat.Intern(kind)
	}
	if ord := cat.LookupName(name); ord != 0 {
		return ord, nil
	}
	return 0, fmt.Errorf("unknown type %q", name)
}
