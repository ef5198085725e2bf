// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package universe renders cached cookbooks as a universe document: every
// known cookbook version with its location and dependency constraints, keyed
// by name and then version.
package universe

import (
	"encoding/json"
	"fmt"

	"github.com/apex/log"
	"github.com/tidwall/gjson"

	"github.com/staranto/cerch/internal/depcache"
)

// Version is one cookbook version in the universe.
type Version struct {
	LocationType string            `json:"location_type"`
	LocationPath string            `json:"location_path"`
	Dependencies map[string]string `json:"dependencies"`
	Platforms    map[string]string `json:"platforms"`
}

// Universe maps cookbook name to version to details.
type Universe map[string]map[string]Version

// Build assembles the universe from cache entries. Dependencies and
// platforms are read from the "dependencies" and "platforms" objects of the
// JSON metadata; anything else is ignored. When the same name and version is
// cached at several locations the one sorting first wins.
func Build(entries depcache.Entries) Universe {
	cbs := make([]depcache.RemoteCookbook, 0, len(entries))
	for cb := range entries {
		cbs = append(cbs, cb)
	}
	depcache.SortCookbooks(cbs)

	u := make(Universe)
	for _, cb := range cbs {
		versions, ok := u[cb.Name]
		if !ok {
			versions = make(map[string]Version)
			u[cb.Name] = versions
		}
		if _, dup := versions[cb.Version]; dup {
			log.WithField("cookbook", cb.String()).Debug("version already present at another location")
			continue
		}

		md := entries[cb]
		versions[cb.Version] = Version{
			LocationType: cb.Location.Type,
			LocationPath: cb.Location.Path,
			Dependencies: constraints(md, "dependencies"),
			Platforms:    constraints(md, "platforms"),
		}
	}
	return u
}

// Render builds the universe and encodes it as JSON.
func Render(entries depcache.Entries) ([]byte, error) {
	data, err := json.Marshal(Build(entries))
	if err != nil {
		return nil, fmt.Errorf("failed to encode universe: %w", err)
	}
	return data, nil
}

// constraints extracts a name => constraint object from metadata. Non-string
// constraints are rendered with their raw JSON text.
func constraints(md depcache.Metadata, key string) map[string]string {
	out := map[string]string{}
	if len(md) == 0 || !gjson.ValidBytes(md) {
		return out
	}

	obj := gjson.GetBytes(md, key)
	if !obj.IsObject() {
		return out
	}
	obj.ForEach(func(k, v gjson.Result) bool {
		if v.Type == gjson.String {
			out[k.String()] = v.String()
		} else {
			out[k.String()] = v.Raw
		}
		return true
	})
	return out
}
