// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package depcache

import "errors"

var (
	// ErrInvalidCookbook is returned when a cookbook without a name or version
	// is added.
	ErrInvalidCookbook = errors.New("invalid cookbook")

	// ErrSnapshotMissing is returned by FromFile when no snapshot exists at the
	// path.
	ErrSnapshotMissing = errors.New("snapshot not found")

	// ErrSnapshotCorrupt is returned by FromFile when the snapshot exists but
	// cannot be decoded or fails its integrity check.
	ErrSnapshotCorrupt = errors.New("snapshot corrupt or unreadable")
)
