package binder

import (
	"fmt"
	"sync"

	"github.com/typeforge/typecatalog/descriptor"
)

// ApplyOverwrite allows Apply to replace an existing binding.
const ApplyOverwrite uint32 = 1 << 0

// MemStore is an in-memory AddressStore. It backs tests and the inspect
// command; a production store would wrap a disassembly database instead.
type MemStore struct {
	mu       sync.RWMutex
	bindings map[uint64]descriptor.Descriptor
	decls    map[uint64]string
}

// NewMemStore creates an empty store.
func NewMemStore() *MemStore {
	return &MemStore{
		bindings: make(map[uint64]descriptor.Descriptor),
		decls:    make(map[uint64]string),
	}
}

// Apply binds d to addr. Without ApplyOverwrite an occupied address is an
// error and the existing binding is kept.
func (s *MemStore) Apply(addr uint64, d descriptor.Descriptor, flags uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.bindings[addr]; taken && flags&ApplyOverwrite == 0 {
		return fmt.Errorf("address %#x already bound", addr)
	}
	s.bindings[addr] = d
	return nil
}

// ApplyDeclaration records a raw declaration string at addr. Declarations
// live beside descriptor bindings and never collide with them.
func (s *MemStore) ApplyDeclaration(addr uint64, decl string) error {
	if decl == "" {
		return fmt.Errorf("empty declaration at %#x", addr)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decls[addr] = decl
	return nil
}

// Guess returns the descriptor bound at addr.
func (s *MemStore) Guess(addr uint64) (descriptor.Descriptor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.bindings[addr]
	return d, ok
}

// Declaration returns the raw declaration recorded at addr, "" when none.
func (s *MemStore) Declaration(addr uint64) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.decls[addr]
}
