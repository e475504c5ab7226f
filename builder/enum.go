package builder

import (
	"github.com/typeforge/typecatalog/descriptor"
	"github.com/typeforge/typecatalog/errors"
)

// EnumBuilder accumulates enum members and registers them in one Build
// call.
type EnumBuilder struct {
	name    string
	width   uint32
	members []descriptor.EnumMember
	auto    int64
	hasAuto bool
}

// NewEnum starts an enum builder with the given storage width in bytes.
func NewEnum(name string, widthBytes uint32) *EnumBuilder {
	return &EnumBuilder{name: name, width: widthBytes}
}

// Member appends a member with an explicit value. Subsequent AutoMember
// calls continue from this value.
func (e *EnumBuilder) Member(name string, value int64) *EnumBuilder {
	e.members = append(e.members, descriptor.EnumMember{Name: name, Value: value})
	e.auto = value + 1
	e.hasAuto = true
	return e
}

// AutoMember appends a member one past the previous value, starting at 0.
func (e *EnumBuilder) AutoMember(name string) *EnumBuilder {
	if !e.hasAuto {
		e.auto = 0
		e.hasAuto = true
	}
	v := e.auto
	e.auto++
	e.members = append(e.members, descriptor.EnumMember{Name: name, Value: v})
	return e
}

// Validate checks the configuration without touching the catalog.
func (e *EnumBuilder) Validate() error {
	if e.name == "" {
		return errors.New(errors.PhaseBuild, errors.KindBuildFailure).
			Detail("enum name cannot be empty").
			Build()
	}
	if !validEnumWidth(e.width) {
		return errors.InvalidWidth(errors.PhaseBuild, e.name, e.width)
	}
	seen := make(map[string]bool)
	for _, m := range e.members {
		if seen[m.Name] {
			return errors.New(errors.PhaseBuild, errors.KindBuildFailure).
				Name(e.name).
				Detail("duplicate member name %q", m.Name).
				Build()
		}
		seen[m.Name] = true
	}
	return nil
}

// Build validates, registers the enum and appends every member.
func (e *EnumBuilder) Build(b *Builder) (descriptor.Ordinal, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}
	ord, err := b.CreateEnum(e.name, e.width)
	if err != nil {
		return 0, err
	}
	for _, m := range e.members {
		if err := b.AddEnumMember(ord, m.Name, m.Value); err != nil {
			return 0, err
		}
	}
	if err := b.Finalize(ord); err != nil {
		return 0, err
	}
	return ord, nil
}
