// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package mirror replicates the cache snapshot to S3 (or an S3 compatible
// store) so a fresh host can restore the cache instead of starting empty.
package mirror
