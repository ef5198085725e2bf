// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package manager

import (
	"context"
	"time"
)

// DefaultSaveInterval is how often a running manager autosaves when neither an
// option nor the config file says otherwise.
const DefaultSaveInterval = 30 * time.Second

// Mirror replicates the snapshot file somewhere off-host. Push is called after
// every successful save and Pull when no local snapshot exists at startup.
// Pull should return an error wrapping fs.ErrNotExist when there is nothing to
// restore.
type Mirror interface {
	Push(ctx context.Context, path string) error
	Pull(ctx context.Context, path string) error
}

// Option customizes a Manager at Start.
type Option func(*Manager)

// WithPath sets the snapshot file. Defaults to cacheutil.SnapshotPath().
func WithPath(path string) Option {
	return func(m *Manager) { m.path = path }
}

// WithSaveInterval sets the autosave period. Defaults to save-interval from the
// config file, then DefaultSaveInterval.
func WithSaveInterval(d time.Duration) Option {
	return func(m *Manager) { m.interval = d }
}

// WithMirror replicates snapshots through mr.
func WithMirror(mr Mirror) Option {
	return func(m *Manager) { m.mirror = mr }
}

// WithReadOnly disables autosave and the final save on Stop. Explicit Save
// calls fail with ErrReadOnly.
func WithReadOnly() Option {
	return func(m *Manager) { m.readOnly = true }
}
