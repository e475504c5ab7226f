package catalog

import (
	"math"
	"sync"

	"github.com/mitchellh/copystructure"
	"go.uber.org/zap"

	"github.com/typeforge/typecatalog/descriptor"
	"github.com/typeforge/typecatalog/errors"
)

// maxOrdinals bounds the identifier space. The last representable uint32
// stays unused so OrdinalLimit never overflows.
const maxOrdinals = math.MaxUint32 - 1

type entry struct {
	desc  descriptor.Descriptor
	name  string
	fp    string
	valid bool
}

// Catalog is the ordinal-indexed descriptor store. The zero value is not
// usable; call Open.
type Catalog struct {
	entries []entry
	names   map[string]descriptor.Ordinal
	byFP    map[string]descriptor.Ordinal
	mu      sync.RWMutex
	closed  bool
}

// Open creates a catalog seeded with the well-known primitive types at
// ordinals 1 through 11 (void, the eight fixed-width integers, float,
// double).
func Open() *Catalog {
	c := &Catalog{
		entries: make([]entry, 0, 64),
		names:   make(map[string]descriptor.Ordinal),
		byFP:    make(map[string]descriptor.Ordinal),
	}
	c.seedPrimitives()
	return c
}

// Close marks the catalog unavailable. Every subsequent operation fails
// with CatalogUnavailable. Ordinals issued before Close are not released.
func (c *Catalog) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// AllocateOrdinal returns a fresh, never-before-issued ordinal. The entry
// stays pending until StoreNew registers a descriptor for it; a pending
// ordinal that is never stored is simply abandoned.
func (c *Catalog) AllocateOrdinal() (descriptor.Ordinal, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, errors.CatalogUnavailable(errors.PhaseAllocate)
	}
	if len(c.entries) >= maxOrdinals {
		return 0, errors.OrdinalExhausted()
	}

	c.entries = append(c.entries, entry{})
	return descriptor.Ordinal(len(c.entries)), nil
}

// Get returns a deep copy of the descriptor registered under ord, so the
// caller's rebuild step can never alias stored state.
func (c *Catalog) Get(ord descriptor.Ordinal) (descriptor.Descriptor, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, errors.CatalogUnavailable(errors.PhaseResolve)
	}
	d, err := c.getLocked(ord)
	if err != nil {
		return nil, err
	}

	cp, cerr := copystructure.Copy(d)
	if cerr != nil {
		return nil, errors.Wrap(errors.PhaseResolve, errors.KindBuildFailure, cerr, "copy descriptor")
	}
	return cp.(descriptor.Descriptor), nil
}

// getLocked resolves an ordinal without copying. Callers hold c.mu.
func (c *Catalog) getLocked(ord descriptor.Ordinal) (descriptor.Descriptor, error) {
	if ord == 0 || int(ord) > len(c.entries) {
		return nil, errors.TypeNotFound(errors.PhaseResolve, uint32(ord))
	}
	e := c.entries[ord-1]
	if !e.valid {
		return nil, errors.TypeNotFound(errors.PhaseResolve, uint32(ord))
	}
	return e.desc, nil
}

// StoreNew registers a descriptor under a freshly allocated ordinal and
// optionally records name -> ord. Dangling inner references are rejected
// here, not discovered later.
func (c *Catalog) StoreNew(ord descriptor.Ordinal, d descriptor.Descriptor, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errors.CatalogUnavailable(errors.PhaseBuild)
	}
	if ord == 0 || int(ord) > len(c.entries) {
		return errors.BuildFailure(errors.PhaseBuild, uint32(ord), "ordinal was never allocated")
	}
	if c.entries[ord-1].valid {
		return errors.BuildFailure(errors.PhaseBuild, uint32(ord), "ordinal already registered")
	}
	if err := c.validateRefs(ord, d); err != nil {
		return err
	}

	c.writeLocked(ord, d, name)
	Logger().Debug("type registered",
		zap.Uint32("ordinal", uint32(ord)),
		zap.String("name", name))
	return nil
}

// Replace substitutes the descriptor under an existing ordinal. The ordinal
// keeps its identity; every reference by ordinal observes the new shape on
// its next lookup.
func (c *Catalog) Replace(ord descriptor.Ordinal, d descriptor.Descriptor) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errors.CatalogUnavailable(errors.PhaseBuild)
	}
	if ord == 0 || int(ord) > len(c.entries) || !c.entries[ord-1].valid {
		return errors.TypeNotFound(errors.PhaseBuild, uint32(ord))
	}
	if err := c.validateRefs(ord, d); err != nil {
		return err
	}

	old := c.entries[ord-1]
	if c.byFP[old.fp] == ord {
		delete(c.byFP, old.fp)
	}
	c.writeLocked(ord, d, old.name)
	Logger().Debug("type replaced", zap.Uint32("ordinal", uint32(ord)))
	return nil
}

// writeLocked stores the descriptor and refreshes the secondary indexes.
// The fingerprint index keeps the first ordinal seen for each shape.
func (c *Catalog) writeLocked(ord descriptor.Ordinal, d descriptor.Descriptor, name string) {
	fp := descriptor.Fingerprint(d)
	c.entries[ord-1] = entry{desc: d, name: name, fp: fp, valid: true}
	if _, taken := c.byFP[fp]; !taken {
		c.byFP[fp] = ord
	}
	if name != "" {
		c.names[name] = ord
	}
}

// validateRefs rejects descriptors referencing ordinals that are not yet
// registered. Self-references are permitted: a pointer stored under ord may
// target ord itself once the target entry exists.
func (c *Catalog) validateRefs(ord descriptor.Ordinal, d descriptor.Descriptor) error {
	for _, ref := range descriptor.References(d) {
		if ref == ord {
			continue
		}
		if ref == 0 || int(ref) > len(c.entries) || !c.entries[ref-1].valid {
			return errors.DanglingReference(errors.PhaseBuild, uint32(ord), uint32(ref))
		}
	}
	return nil
}

// Update runs a get/rebuild/replace sequence as a single critical section.
// fn receives a deep copy of the current descriptor plus a resolver for
// reading other entries, and returns the replacement. The catalog is left
// unchanged when fn fails.
func (c *Catalog) Update(ord descriptor.Ordinal, fn func(d descriptor.Descriptor, r descriptor.Resolver) (descriptor.Descriptor, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errors.CatalogUnavailable(errors.PhaseBuild)
	}
	if ord == 0 || int(ord) > len(c.entries) || !c.entries[ord-1].valid {
		return errors.TypeNotFound(errors.PhaseBuild, uint32(ord))
	}

	cp, cerr := copystructure.Copy(c.entries[ord-1].desc)
	if cerr != nil {
		return errors.Wrap(errors.PhaseBuild, errors.KindBuildFailure, cerr, "copy descriptor")
	}

	next, err := fn(cp.(descriptor.Descriptor), lockedResolver{c})
	if err != nil {
		return err
	}
	if err := c.validateRefs(ord, next); err != nil {
		return err
	}

	old := c.entries[ord-1]
	if c.byFP[old.fp] == ord {
		delete(c.byFP, old.fp)
	}
	c.writeLocked(ord, next, old.name)
	Logger().Debug("type updated", zap.Uint32("ordinal", uint32(ord)))
	return nil
}

// OrdinalLimit returns the exclusive upper bound for iterating currently
// assigned ordinals. Returns 1 (an empty range) when the catalog is closed.
func (c *Catalog) OrdinalLimit() descriptor.Ordinal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return 1
	}
	return descriptor.Ordinal(len(c.entries)) + 1
}

// IsValid reports whether ord resolves to a registered descriptor.
func (c *Catalog) IsValid(ord descriptor.Ordinal) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed || ord == 0 || int(ord) > len(c.entries) {
		return false
	}
	return c.entries[ord-1].valid
}

// TypeName returns the registered name for ord, or "" when the ordinal is
// invalid or anonymous.
func (c *Catalog) TypeName(ord descriptor.Ordinal) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed || ord == 0 || int(ord) > len(c.entries) {
		return ""
	}
	return c.entries[ord-1].name
}

// SetName renames a registered type. The previous name, if any, stops
// resolving; the new name maps to ord.
func (c *Catalog) SetName(ord descriptor.Ordinal, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.CatalogUnavailable(errors.PhaseBuild)
	}
	if ord == 0 || int(ord) > len(c.entries) || !c.entries[ord-1].valid {
		return errors.TypeNotFound(errors.PhaseBuild, uint32(ord))
	}
	e := &c.entries[ord-1]
	if e.name != "" && c.names[e.name] == ord {
		delete(c.names, e.name)
	}
	e.name = name
	if name != "" {
		c.names[name] = ord
	}
	return nil
}

// LookupName resolves a registered name to its ordinal, 0 when unknown.
func (c *Catalog) LookupName(name string) descriptor.Ordinal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return 0
	}
	return c.names[name]
}

// TypeSize returns the byte size of the type under ord, 0 when unresolved.
func (c *Catalog) TypeSize(ord descriptor.Ordinal) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return 0
	}
	d, err := c.getLocked(ord)
	if err != nil {
		return 0
	}
	return descriptor.SizeOf(d, lockedResolver{c})
}

// FindStructural returns the first ordinal whose descriptor is structurally
// equal to d, 0 when none is registered.
func (c *Catalog) FindStructural(d descriptor.Descriptor) descriptor.Ordinal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return 0
	}
	if ord, ok := c.byFP[descriptor.Fingerprint(d)]; ok {
		return ord
	}
	// The index keeps only the first ordinal per shape; duplicates stored
	// before a Replace freed their fingerprint slot need the full scan.
	for i := range c.entries {
		if c.entries[i].valid && descriptor.Equal(c.entries[i].desc, d) {
			return descriptor.Ordinal(i + 1)
		}
	}
	return 0
}

// Each calls fn for every registered ordinal in ascending order until fn
// returns false.
func (c *Catalog) Each(fn func(ord descriptor.Ordinal, name string, d descriptor.Descriptor) bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}
	for i := range c.entries {
		if !c.entries[i].valid {
			continue
		}
		if !fn(descriptor.Ordinal(i+1), c.entries[i].name, c.entries[i].desc) {
			return
		}
	}
}

// lockedResolver resolves references while c.mu is already held.
type lockedResolver struct {
	c *Catalog
}

func (r lockedResolver) Get(ord descriptor.Ordinal) (descriptor.Descriptor, error) {
	return r.c.getLocked(ord)
}

// Resolver returns a descriptor.Resolver view of the catalog for callers
// that render or size descriptors outside the catalog's lock.
func (c *Catalog) Resolver() descriptor.Resolver {
	return publicResolver{c}
}

type publicResolver struct {
	c *Catalog
}

func (r publicResolver) Get(ord descriptor.Ordinal) (descriptor.Descriptor, error) {
	return r.c.Get(ord)
}
