// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package snapdiff compares two cache snapshots entry by entry.
package snapdiff

import (
	"encoding/json"

	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"

	"github.com/staranto/cerch/internal/depcache"
)

// Change is an entry present in both snapshots whose metadata differs.
type Change struct {
	Cookbook depcache.RemoteCookbook `json:"cookbook"`
	Delta    string                  `json:"delta"`
}

// Report is the outcome of Compare. Every slice is sorted by cookbook.
type Report struct {
	Created []depcache.RemoteCookbook `json:"created"`
	Deleted []depcache.RemoteCookbook `json:"deleted"`
	Changed []Change                  `json:"changed"`
}

// Empty reports whether the snapshots hold identical entries.
func (r Report) Empty() bool {
	return len(r.Created) == 0 && len(r.Deleted) == 0 && len(r.Changed) == 0
}

// Compare returns what it takes to turn from into to.
func Compare(from, to *depcache.Store) Report {
	before, after := from.Entries(), to.Entries()

	var r Report
	for cb, md := range after {
		prev, ok := before[cb]
		switch {
		case !ok:
			r.Created = append(r.Created, cb)
		case !prev.Equal(md):
			r.Changed = append(r.Changed, Change{Cookbook: cb, Delta: delta(prev, md)})
		}
	}
	for cb := range before {
		if _, ok := after[cb]; !ok {
			r.Deleted = append(r.Deleted, cb)
		}
	}

	depcache.SortCookbooks(r.Created)
	depcache.SortCookbooks(r.Deleted)
	changed := make([]depcache.RemoteCookbook, len(r.Changed))
	byCookbook := make(map[depcache.RemoteCookbook]Change, len(r.Changed))
	for i, c := range r.Changed {
		changed[i] = c.Cookbook
		byCookbook[c.Cookbook] = c
	}
	depcache.SortCookbooks(changed)
	for i, cb := range changed {
		r.Changed[i] = byCookbook[cb]
	}

	return r
}

// delta renders the difference between two metadata documents. Payloads that
// are not JSON objects get a generic description.
func delta(before, after depcache.Metadata) string {
	const fallback = "metadata changed"

	var left map[string]any
	if err := json.Unmarshal(before, &left); err != nil {
		return fallback
	}

	d, err := gojsondiff.New().Compare(before, after)
	if err != nil || !d.Modified() {
		return fallback
	}

	out, err := formatter.NewAsciiFormatter(left, formatter.AsciiFormatterConfig{}).Format(d)
	if err != nil {
		return fallback
	}
	return out
}
