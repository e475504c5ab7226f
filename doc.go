// Package typecatalog provides a catalog of C-model type descriptors for
// binary analysis tooling.
//
// The catalog stores structural descriptions of program types (primitives,
// structs, unions, enums, arrays, bitfields, function signatures, pointers)
// under stable integer ordinals and associates them with addresses in a
// disassembled program.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	typecatalog/         Root package with collaborator interfaces
//	├── descriptor/      Type descriptor variants, sizing, equality, rendering
//	├── catalog/         Ordinal-indexed descriptor store and primitive interner
//	├── builder/         Composite type construction and mutation operations
//	├── binder/          Address-to-type binding and reverse lookup
//	├── importer/        Declaration import boundary and catalog file loader
//	├── errors/          Structured error types for debugging
//	└── cmd/inspect/     Catalog browser CLI
//
// # Quick Start
//
// Build a struct type and bind it to an address:
//
//	cat := catalog.Open()
//	defer cat.Close()
//
//	b := builder.New(cat)
//	i32, _ := cat.Intern(descriptor.PrimInt32)
//
//	point, err := b.CreateStruct("Point")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	b.AddField(point, "x", i32, 0)
//	b.AddField(point, "y", i32, 4)
//
//	bind := binder.New(cat, store)
//	bind.ApplyByOrdinal(0x401000, point, binder.ApplyOverwrite)
//
// # Ordinals
//
// Every registered type is identified by a positive ordinal. Ordinal 0 is
// reserved and never resolves. Ordinals are issued monotonically and never
// reused for the lifetime of a catalog, so a failed build can abandon its
// ordinal without corrupting later allocations.
//
// # Thread Safety
//
// Catalog is safe for concurrent use: every builder operation, including the
// get/rebuild/replace sequence behind member addition, runs under the
// catalog's single writer lock.
package typecatalog
