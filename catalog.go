package typecatalog

import (
	"github.com/typeforge/typecatalog/catalog"
	"github.com/typeforge/typecatalog/descriptor"
)

// AddressStore is the boundary to the disassembly database. It owns the
// mapping from addresses to types; the catalog only resolves ordinals into
// descriptors for it.
type AddressStore interface {
	// Apply binds a descriptor to an address. flags is the store's own
	// behavioral bitmask (bit 0: overwrite an existing binding).
	Apply(addr uint64, d descriptor.Descriptor, flags uint32) error

	// ApplyDeclaration binds a raw C declaration string to an address,
	// bypassing the catalog entirely.
	ApplyDeclaration(addr uint64, decl string) error

	// Guess returns the store's best-effort descriptor for an address,
	// or (nil, false) when it has none.
	Guess(addr uint64) (descriptor.Descriptor, bool)
}

// Importer populates a catalog from declaration text. Implementations must
// drive the same builder surface as manual construction so that imported
// ordinals are indistinguishable from hand-built ones.
type Importer interface {
	// ParseDeclarations processes source (a file path or raw text,
	// depending on the implementation's configuration) and returns the
	// number of declarations registered.
	ParseDeclarations(source string, cat *catalog.Catalog) (int, error)
}
