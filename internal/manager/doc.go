// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package manager runs the dependency cache as a single-writer service.
//
// A Manager owns exactly one depcache.Store. Every operation, including the
// periodic autosave, is executed by one goroutine in the order it was
// received, so the store itself needs no locking. Start loads the configured
// snapshot (falling back to an empty cache when it is missing or corrupt) and
// Stop cancels the autosave timer before writing one final snapshot.
//
// Callers hold the *Manager returned by Start; there is no global registry.
package manager
