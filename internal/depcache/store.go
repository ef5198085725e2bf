// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package depcache

import (
	"fmt"

	"github.com/apex/log"
)

// Store is the dependency cache proper: a mapping of RemoteCookbook to
// Metadata. The zero value is not usable, use New or FromFile.
type Store struct {
	entries Entries
}

// New returns an empty Store.
func New() *Store {
	return &Store{entries: make(Entries)}
}

// Add inserts or overwrites the metadata for cb and returns the store's
// current mapping. Re-adding a known cookbook refreshes its metadata. The
// returned map is the store's own; callers outside the owning goroutine must
// Clone it.
func (s *Store) Add(cb RemoteCookbook, md Metadata) (Entries, error) {
	if !cb.Valid() {
		return s.entries, fmt.Errorf("%w: %s", ErrInvalidCookbook, cb)
	}
	s.entries[cb] = md.Clone()
	return s.entries, nil
}

// Remove deletes every entry with the given name and version, whatever its
// location. Removing an unknown pair is a no-op. It returns the store so calls
// can be chained.
func (s *Store) Remove(name, version string) *Store {
	for cb := range s.entries {
		if cb.Name == name && cb.Version == version {
			delete(s.entries, cb)
		}
	}
	return s
}

// Clear drops every entry and returns the now empty mapping.
func (s *Store) Clear() Entries {
	clear(s.entries)
	return s.entries
}

// Cookbooks returns every known cookbook, sorted.
func (s *Store) Cookbooks() []RemoteCookbook {
	cbs := make([]RemoteCookbook, 0, len(s.entries))
	for cb := range s.entries {
		cbs = append(cbs, cb)
	}
	SortCookbooks(cbs)
	return cbs
}

// Get returns a copy of the metadata stored for cb.
func (s *Store) Get(cb RemoteCookbook) (Metadata, bool) {
	md, ok := s.entries[cb]
	if !ok {
		return nil, false
	}
	return md.Clone(), true
}

// Has reports whether cb is known.
func (s *Store) Has(cb RemoteCookbook) bool {
	_, ok := s.entries[cb]
	return ok
}

// Len returns the number of entries.
func (s *Store) Len() int {
	return len(s.entries)
}

// Entries returns a deep copy of the mapping.
func (s *Store) Entries() Entries {
	return s.entries.Clone()
}

// Diff compares the store against upstream, the complete list of cookbooks
// currently known to exist. created holds the upstream cookbooks the store
// does not know, in upstream order with duplicates collapsed. deleted holds
// the known cookbooks missing from upstream, sorted. Upstream entries without
// a name or version are skipped. The store is not modified.
func (s *Store) Diff(upstream []RemoteCookbook) (created, deleted []RemoteCookbook) {
	seen := make(map[RemoteCookbook]struct{}, len(upstream))

	for _, cb := range upstream {
		if !cb.Valid() {
			log.WithField("cookbook", cb.String()).Warn("skipping malformed upstream cookbook")
			continue
		}
		if _, dup := seen[cb]; dup {
			continue
		}
		seen[cb] = struct{}{}

		if _, known := s.entries[cb]; !known {
			created = append(created, cb)
		}
	}

	for cb := range s.entries {
		if _, ok := seen[cb]; !ok {
			deleted = append(deleted, cb)
		}
	}
	SortCookbooks(deleted)

	return created, deleted
}
