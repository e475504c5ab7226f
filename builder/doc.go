// Package builder constructs and mutates composite types in a catalog.
//
// Two surfaces are provided. The ordinal-based operations (CreateStruct,
// AddField, CreateEnum, ...) mirror the catalog's wire-level API: every
// operation takes and returns plain ordinals and performs its
// get/rebuild/replace sequence atomically under the catalog lock. The
// fluent builders (StructBuilder, EnumBuilder, FunctionBuilder, ...) sit on
// top, validate their configuration up front and drive the same operations,
// so a catalog populated either way is indistinguishable.
//
// Composites progress monotonically: created empty, grown one member at a
// time, never shrunk and never deleted.
package builder
