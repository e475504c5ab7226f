// Package binder applies catalog types to addresses through an AddressStore
// and guesses ordinals back from stored bindings.
package binder

import (
	"go.uber.org/zap"

	"github.com/typeforge/typecatalog"
	"github.com/typeforge/typecatalog/catalog"
	"github.com/typeforge/typecatalog/descriptor"
	"github.com/typeforge/typecatalog/errors"
)

// Binder connects one catalog to one address store. The store owns the
// address space; the binder only translates between ordinals and
// descriptors at the boundary.
type Binder struct {
	cat   *catalog.Catalog
	store typecatalog.AddressStore
}

// New creates a binder over cat and store.
func New(cat *catalog.Catalog, store typecatalog.AddressStore) *Binder {
	return &Binder{cat: cat, store: store}
}

// ApplyByOrdinal binds the type under ord to addr. flags is forwarded to the
// store unchanged.
func (b *Binder) ApplyByOrdinal(addr uint64, ord descriptor.Ordinal, flags uint32) error {
	d, err := b.cat.Get(ord)
	if err != nil {
		return err
	}
	if err := b.store.Apply(addr, d, flags); err != nil {
		return errors.New(errors.PhaseBind, errors.KindBuildFailure).
			Ordinal(uint32(ord)).
			Cause(err).
			Detail("apply type at %#x", addr).
			Build()
	}
	Logger().Debug("type applied",
		zap.Uint64("addr", addr),
		zap.Uint32("ordinal", uint32(ord)))
	return nil
}

// ApplyByDeclaration binds a raw declaration string to addr. The text goes
// straight to the store; the catalog is not consulted.
func (b *Binder) ApplyByDeclaration(addr uint64, decl string) error {
	if err := b.store.ApplyDeclaration(addr, decl); err != nil {
		return errors.New(errors.PhaseBind, errors.KindBuildFailure).
			Cause(err).
			Detail("apply declaration at %#x", addr).
			Build()
	}
	return nil
}

// GuessOrdinalAt asks the store for the type at addr and maps it back to a
// registered ordinal by structural shape. Returns 0 when the store has no
// binding or no registered type matches.
func (b *Binder) GuessOrdinalAt(addr uint64) descriptor.Ordinal {
	d, ok := b.store.Guess(addr)
	if !ok {
		return 0
	}
	if ord := b.cat.FindStructural(d); ord != 0 {
		return ord
	}

	var found descriptor.Ordinal
	b.cat.Each(func(ord descriptor.Ordinal, name string, reg descriptor.Descriptor) bool {
		if descriptor.Equal(d, reg) {
			found = ord
			return false
		}
		return true
	})
	return found
}

// DeclarationAt renders the store's binding at addr as a C-like declaration,
// "" when the address has none.
func (b *Binder) DeclarationAt(addr uint64) string {
	d, ok := b.store.Guess(addr)
	if !ok {
		return ""
	}
	name := ""
	if ord := b.GuessOrdinalAt(addr); ord != 0 {
		name = b.cat.TypeName(ord)
	}
	return descriptor.Render(d, name, b.cat.Resolver())
}
