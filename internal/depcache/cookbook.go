// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package depcache

import (
	"bytes"
	"fmt"
	"sort"
)

// Location describes where a cookbook was found, e.g. a supermarket site or a
// chef server endpoint. The cache never interprets it.
type Location struct {
	Type string `json:"location_type" yaml:"location_type"`
	Path string `json:"location_path" yaml:"location_path"`
}

// RemoteCookbook identifies one version of a cookbook at one location. It is a
// comparable value and is used directly as a map key, so two cookbooks are the
// same entry only when name, version and location all match.
type RemoteCookbook struct {
	Name     string
	Version  string
	Location Location
}

// NewRemoteCookbook is a convenience constructor.
func NewRemoteCookbook(name, version, locationType, locationPath string) RemoteCookbook {
	return RemoteCookbook{
		Name:     name,
		Version:  version,
		Location: Location{Type: locationType, Path: locationPath},
	}
}

// Valid reports whether the cookbook carries both a name and a version.
func (c RemoteCookbook) Valid() bool {
	return c.Name != "" && c.Version != ""
}

func (c RemoteCookbook) String() string {
	return fmt.Sprintf("%s (%s) [%s:%s]", c.Name, c.Version, c.Location.Type, c.Location.Path)
}

func (c RemoteCookbook) less(o RemoteCookbook) bool {
	if c.Name != o.Name {
		return c.Name < o.Name
	}
	if c.Version != o.Version {
		return c.Version < o.Version
	}
	if c.Location.Type != o.Location.Type {
		return c.Location.Type < o.Location.Type
	}
	return c.Location.Path < o.Location.Path
}

// SortCookbooks orders cookbooks by name, version and location, in place.
func SortCookbooks(cbs []RemoteCookbook) {
	sort.Slice(cbs, func(i, j int) bool { return cbs[i].less(cbs[j]) })
}

// Metadata is the descriptor payload stored for a cookbook. It is normally a
// JSON document but the cache treats it as opaque bytes.
type Metadata []byte

// Clone returns a copy that shares no memory with m.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	return bytes.Clone(m)
}

// Equal reports whether both payloads hold the same bytes.
func (m Metadata) Equal(o Metadata) bool {
	return bytes.Equal(m, o)
}

// Entries maps each known cookbook to its metadata.
type Entries map[RemoteCookbook]Metadata

// Clone returns a deep copy of e.
func (e Entries) Clone() Entries {
	out := make(Entries, len(e))
	for cb, md := range e {
		out[cb] = md.Clone()
	}
	return out
}
