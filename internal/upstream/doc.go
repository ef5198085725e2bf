// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package upstream reads the cookbook listing reported by an upstream source
// so it can be diffed against the cache.
package upstream
