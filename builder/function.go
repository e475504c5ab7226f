package builder

import (
	"github.com/typeforge/typecatalog/descriptor"
	"github.com/typeforge/typecatalog/errors"
)

// FunctionBuilder accumulates a function signature and registers it in one
// Build call.
type FunctionBuilder struct {
	name   string
	ret    descriptor.Ordinal
	cc     descriptor.CallingConvention
	vararg bool
	params []funcParam

	noreturn, pure, static, virtual, konst, ctor, dtor bool
}

type funcParam struct {
	name   string
	typ    descriptor.Ordinal
	hidden bool
}

// NewFunction starts a function builder. The return type defaults to void
// and the calling convention to CCUnknown.
func NewFunction(name string) *FunctionBuilder {
	return &FunctionBuilder{name: name, cc: descriptor.CCUnknown}
}

// Returns sets the return type ordinal. Zero means void.
func (f *FunctionBuilder) Returns(typ descriptor.Ordinal) *FunctionBuilder {
	f.ret = typ
	return f
}

// Param appends a named parameter.
func (f *FunctionBuilder) Param(name string, typ descriptor.Ordinal) *FunctionBuilder {
	f.params = append(f.params, funcParam{name: name, typ: typ})
	return f
}

// HiddenParam appends a compiler-synthesized parameter such as a this
// pointer or sret slot.
func (f *FunctionBuilder) HiddenParam(name string, typ descriptor.Ordinal) *FunctionBuilder {
	f.params = append(f.params, funcParam{name: name, typ: typ, hidden: true})
	return f
}

// CallingConvention sets the calling convention.
func (f *FunctionBuilder) CallingConvention(cc descriptor.CallingConvention) *FunctionBuilder {
	f.cc = cc
	return f
}

// Vararg marks the signature as variadic.
func (f *FunctionBuilder) Vararg() *FunctionBuilder {
	f.vararg = true
	return f
}

// Noreturn marks the function as never returning.
func (f *FunctionBuilder) Noreturn() *FunctionBuilder { f.noreturn = true; return f }

// Pure marks the function as side-effect free.
func (f *FunctionBuilder) Pure() *FunctionBuilder { f.pure = true; return f }

// Static marks the function as static.
func (f *FunctionBuilder) Static() *FunctionBuilder { f.static = true; return f }

// Virtual marks the function as virtual.
func (f *FunctionBuilder) Virtual() *FunctionBuilder { f.virtual = true; return f }

// Const marks the function as const.
func (f *FunctionBuilder) Const() *FunctionBuilder { f.konst = true; return f }

// Constructor marks the function as a constructor.
func (f *FunctionBuilder) Constructor() *FunctionBuilder { f.ctor = true; return f }

// Destructor marks the function as a destructor.
func (f *FunctionBuilder) Destructor() *FunctionBuilder { f.dtor = true; return f }

// Validate checks the configuration without touching the catalog.
func (f *FunctionBuilder) Validate() error {
	if f.name == "" {
		return errors.New(errors.PhaseBuild, errors.KindBuildFailure).
			Detail("function name cannot be empty").
			Build()
	}
	if f.ctor && f.dtor {
		return errors.New(errors.PhaseBuild, errors.KindBuildFailure).
			Name(f.name).
			Detail("function cannot be both constructor and destructor").
			Build()
	}
	seen := make(map[string]bool)
	for _, p := range f.params {
		if p.name == "" {
			continue
		}
		if seen[p.name] {
			return errors.New(errors.PhaseBuild, errors.KindBuildFailure).
				Name(f.name).
				Detail("duplicate parameter name %q", p.name).
				Build()
		}
		seen[p.name] = true
	}
	return nil
}

// Build validates and registers the signature.
func (f *FunctionBuilder) Build(b *Builder) (descriptor.Ordinal, error) {
	if err := f.Validate(); err != nil {
		return 0, err
	}
	ord, err := b.CreateFunction(f.ret, f.cc, f.vararg)
	if err != nil {
		return 0, err
	}
	if f.name != "" {
		if err := b.cat.SetName(ord, f.name); err != nil {
			return 0, err
		}
	}
	for _, p := range f.params {
		if err := b.AddParameter(ord, p.name, p.typ, p.hidden); err != nil {
			return 0, err
		}
	}
	if f.noreturn || f.pure || f.static || f.virtual || f.konst || f.ctor || f.dtor {
		if err := b.SetFunctionAttributes(ord, f.noreturn, f.pure, f.static, f.virtual, f.konst, f.ctor, f.dtor); err != nil {
			return 0, err
		}
	}
	return ord, nil
}

// ArrayBuilder registers a fixed-length array type.
type ArrayBuilder struct {
	elem  descriptor.Ordinal
	count uint32
}

// NewArray starts an array builder.
func NewArray(elem descriptor.Ordinal, count uint32) *ArrayBuilder {
	return &ArrayBuilder{elem: elem, count: count}
}

// Build registers the array.
func (a *ArrayBuilder) Build(b *Builder) (descriptor.Ordinal, error) {
	return b.CreateArray(a.elem, a.count)
}

// PointerBuilder registers a pointer type.
type PointerBuilder struct {
	target descriptor.Ordinal
}

// NewPointer starts a pointer builder.
func NewPointer(target descriptor.Ordinal) *PointerBuilder {
	return &PointerBuilder{target: target}
}

// Build registers the pointer.
func (p *PointerBuilder) Build(b *Builder) (descriptor.Ordinal, error) {
	return b.CreatePointer(p.target)
}

// FunctionPointerBuilder registers a pointer to a function signature.
type FunctionPointerBuilder struct {
	funcOrd descriptor.Ordinal
}

// NewFunctionPointer starts a function pointer builder.
func NewFunctionPointer(funcOrd descriptor.Ordinal) *FunctionPointerBuilder {
	return &FunctionPointerBuilder{funcOrd: funcOrd}
}

// Build registers the pointer.
func (p *FunctionPointerBuilder) Build(b *Builder) (descriptor.Ordinal, error) {
	return b.CreateFunctionPointer(p.funcOrd)
}
