// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cacheutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"

	"github.com/staranto/cerch/internal/config"
)

// defaultRelPath is where the snapshot lives beneath the user's home
// directory when nothing else is configured.
var defaultRelPath = filepath.Join(".berkshelf", "api-server", "cerch")

// SnapshotPath resolves the snapshot file.
// Precedence:
//  1. CERCH_SNAPSHOT, if set and non-empty
//  2. "snapshot" in the config file
//  3. ~/.berkshelf/api-server/cerch
//
// Returns "" if no home directory can be resolved and nothing is configured.
func SnapshotPath() string {
	if p, ok := os.LookupEnv("CERCH_SNAPSHOT"); ok && p != "" {
		return Expand(p)
	}
	if p, err := config.GetString("snapshot"); err == nil && p != "" {
		return Expand(p)
	}
	p, _ := DefaultSnapshotPath()
	return p
}

// DefaultSnapshotPath returns the snapshot location under the user's home
// directory and whether one could be resolved.
func DefaultSnapshotPath() (string, bool) {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "", false
	}
	return filepath.Join(home, defaultRelPath), true
}

// Expand replaces a leading ~ with the user's home directory.
func Expand(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

// EnsureBaseDir creates the directory holding the snapshot at p. Returns the
// directory, whether it is usable, and an error if creation failed.
func EnsureBaseDir(p string) (string, bool, error) {
	if p == "" {
		return "", false, nil
	}
	base := filepath.Dir(p)
	if err := os.MkdirAll(base, 0o755); err != nil { //nolint:mnd
		return base, false, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	log.Debugf("snapshot directory: %s", base)
	return base, true, nil
}
