// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package depcache

import (
	_ "crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/opencontainers/go-digest"
)

const (
	snapshotFormat = 1

	// CompressedSuffix marks snapshot paths that are stored zstd compressed.
	CompressedSuffix = ".zst"
)

// snapshotEntry is the on-disk form of one cache entry. Metadata is encoded
// as base64 so any payload survives the round trip byte for byte.
type snapshotEntry struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Location
	Metadata []byte `json:"metadata"`
}

// envelope wraps the entries with enough information to detect a truncated
// or tampered snapshot. Digest covers the exact bytes of Entries.
type envelope struct {
	Format  int             `json:"format"`
	ID      string          `json:"id"`
	SavedAt time.Time       `json:"saved_at"`
	Digest  digest.Digest   `json:"digest"`
	Count   int             `json:"count"`
	Entries json.RawMessage `json:"entries"`
}

// SaveInfo describes a snapshot that was just written.
type SaveInfo struct {
	ID      string
	Path    string
	Count   int
	Size    int64
	Digest  digest.Digest
	SavedAt time.Time
}

// Save writes the whole store to path. The snapshot is written to a temporary
// file in the same directory and renamed over path, so a failed or
// interrupted save leaves any previous snapshot intact. Parent directories are
// created as needed.
func (s *Store) Save(path string) (SaveInfo, error) {
	cbs := s.Cookbooks()
	entries := make([]snapshotEntry, 0, len(cbs))
	for _, cb := range cbs {
		entries = append(entries, snapshotEntry{
			Name:     cb.Name,
			Version:  cb.Version,
			Location: cb.Location,
			Metadata: s.entries[cb],
		})
	}

	body, err := json.Marshal(entries)
	if err != nil {
		return SaveInfo{}, fmt.Errorf("failed to encode snapshot entries: %w", err)
	}

	env := envelope{
		Format:  snapshotFormat,
		ID:      uuid.NewString(),
		SavedAt: time.Now().UTC(),
		Digest:  digest.FromBytes(body),
		Count:   len(entries),
		Entries: body,
	}

	data, err := json.Marshal(env)
	if err != nil {
		return SaveInfo{}, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	if IsCompressed(path) {
		if data, err = compress(data); err != nil {
			return SaveInfo{}, fmt.Errorf("failed to compress snapshot: %w", err)
		}
	}

	if err := writeAtomic(path, data); err != nil {
		return SaveInfo{}, err
	}

	return SaveInfo{
		ID:      env.ID,
		Path:    path,
		Count:   env.Count,
		Size:    int64(len(data)),
		Digest:  env.Digest,
		SavedAt: env.SavedAt,
	}, nil
}

// FromFile rebuilds a Store from a snapshot written by Save. It returns
// ErrSnapshotMissing when path does not exist and ErrSnapshotCorrupt when the
// file cannot be decoded.
func FromFile(path string) (*Store, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is operator configuration
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSnapshotMissing, path)
		}
		return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}

	if IsCompressed(path) {
		if data, err = decompress(data); err != nil {
			return nil, corrupt(path, err)
		}
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, corrupt(path, err)
	}
	if env.Format != snapshotFormat {
		return nil, corrupt(path, fmt.Errorf("unsupported format %d", env.Format))
	}
	if err := env.Digest.Validate(); err != nil {
		return nil, corrupt(path, err)
	}
	verifier := env.Digest.Verifier()
	_, _ = verifier.Write(env.Entries)
	if !verifier.Verified() {
		return nil, corrupt(path, fmt.Errorf("digest mismatch, want %s", env.Digest))
	}

	var entries []snapshotEntry
	if err := json.Unmarshal(env.Entries, &entries); err != nil {
		return nil, corrupt(path, err)
	}
	if len(entries) != env.Count {
		return nil, corrupt(path, fmt.Errorf("expected %d entries, found %d", env.Count, len(entries)))
	}

	s := New()
	for _, e := range entries {
		cb := RemoteCookbook{Name: e.Name, Version: e.Version, Location: e.Location}
		if _, err := s.Add(cb, e.Metadata); err != nil {
			return nil, corrupt(path, err)
		}
	}

	return s, nil
}

// IsCompressed reports whether path names a zstd compressed snapshot.
func IsCompressed(path string) bool {
	return strings.HasSuffix(path, CompressedSuffix)
}

func corrupt(path string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrSnapshotCorrupt, path, err)
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary snapshot: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close snapshot: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

func compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

func decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}
