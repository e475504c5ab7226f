// Package catalog implements the ordinal-indexed store of type descriptors
// for one analysis session.
//
// A Catalog issues monotonically increasing ordinals that are never reused,
// registers descriptors under them, and maintains two secondary indexes: an
// optional name index (last writer wins) and a structural fingerprint index
// used for primitive interning and reverse lookup.
//
// All operations, including the get/rebuild/replace sequences performed by
// package builder, are serialized by the catalog's lock, so concurrent
// callers cannot lose updates.
package catalog
