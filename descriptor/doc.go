// Package descriptor defines the structural descriptions of program types
// held by a catalog: primitives, aggregates, enums, arrays, bitfields,
// function signatures and pointers.
//
// Descriptors reference other types by Ordinal, never by embedded copy, so
// replacing a type in the catalog is immediately visible to every composite
// that references it. The package also computes derived properties (byte
// size, structural equality, canonical fingerprints) and renders descriptors
// as C-like declaration strings.
package descriptor
