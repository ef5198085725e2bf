// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package depcache holds the dependency cache: an in-memory index of known
// remote cookbooks and their metadata, the diff against a full upstream
// catalog, and the on-disk snapshot format. A Store is not safe for concurrent
// use; the manager package owns the single instance and serializes access.
package depcache
