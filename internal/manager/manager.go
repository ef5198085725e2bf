// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package manager

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"

	"github.com/staranto/cerch/internal/cacheutil"
	"github.com/staranto/cerch/internal/config"
	"github.com/staranto/cerch/internal/depcache"
	"github.com/staranto/cerch/internal/universe"
)

// Manager serializes all access to one depcache.Store.
type Manager struct {
	path     string
	interval time.Duration
	mirror   Mirror
	readOnly bool

	// ctx carries values for background work (autosave, mirror pushes) but is
	// never cancelled.
	ctx context.Context

	mu    sync.Mutex
	state State

	// store is touched only by the loop goroutine while running, and by Stop
	// once the loop has exited.
	store *depcache.Store

	requests chan request
	quit     chan struct{}
	done     chan struct{}
	// stopped is closed once Stop has finished the final save.
	stopped chan struct{}
}

type request struct {
	fn    func() error
	reply chan error
}

// Start builds a Manager, loads its snapshot and starts the autosave timer. A
// missing or unreadable snapshot is not an error; the manager starts empty.
// Start fails only on invalid configuration.
func Start(ctx context.Context, opts ...Option) (*Manager, error) {
	m := &Manager{
		path:     cacheutil.SnapshotPath(),
		interval: configuredInterval(),
		ctx:      context.WithoutCancel(ctx),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.path == "" {
		return nil, errors.New("cache manager: snapshot path is empty")
	}
	if !m.readOnly && m.interval <= 0 {
		return nil, fmt.Errorf("cache manager: invalid save interval %s", m.interval)
	}

	m.setState(Starting)
	log.WithField("path", m.path).Info("cache manager starting")

	m.store = m.load(ctx)
	m.requests = make(chan request)
	m.quit = make(chan struct{})
	m.done = make(chan struct{})
	m.stopped = make(chan struct{})

	var ticker *time.Ticker
	if !m.readOnly {
		ticker = time.NewTicker(m.interval)
		log.Debugf("autosave every %s", m.interval)
	}

	m.setState(Running)
	go m.loop(ticker)

	return m, nil
}

// Stop cancels autosave, writes a final snapshot and releases the store. The
// final save is best effort: its error is returned but the manager is stopped
// regardless. Stop on a nil or already stopped manager does nothing. A Stop
// racing another one waits until the first has finished.
func (m *Manager) Stop(ctx context.Context) error {
	if m == nil {
		return nil
	}

	m.mu.Lock()
	switch m.state {
	case Running:
		m.state = Stopping
		m.mu.Unlock()
	case Stopping:
		// Another caller is stopping; return only once its final save is done.
		m.mu.Unlock()
		select {
		case <-m.stopped:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	default:
		m.mu.Unlock()
		return nil
	}

	log.Info("cache manager shutting down")

	// The loop stops the ticker on its way out; no autosave can begin after
	// this point.
	close(m.quit)
	<-m.done

	var err error
	if !m.readOnly {
		err = m.apply(func() error {
			_, err := m.save(ctx)
			return err
		})
		if err != nil {
			log.WithError(err).WithField("path", m.path).Error("final save failed")
		}
	}

	m.mu.Lock()
	m.store = nil
	m.state = Stopped
	m.mu.Unlock()
	close(m.stopped)

	return err
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	if m == nil {
		return Stopped
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Path returns the snapshot file the manager reads and writes.
func (m *Manager) Path() string {
	return m.path
}

// Add stores metadata for cb, overwriting any previous entry, and returns a
// copy of the full mapping.
func (m *Manager) Add(ctx context.Context, cb depcache.RemoteCookbook, md depcache.Metadata) (depcache.Entries, error) {
	var out depcache.Entries
	err := m.do(ctx, func() error {
		entries, err := m.store.Add(cb, md)
		if err != nil {
			return err
		}
		out = entries.Clone()
		return nil
	})
	return out, err
}

// Remove drops every entry for name and version, whatever its location, and
// returns a copy of what remains.
func (m *Manager) Remove(ctx context.Context, name, version string) (depcache.Entries, error) {
	var out depcache.Entries
	err := m.do(ctx, func() error {
		out = m.store.Remove(name, version).Entries()
		return nil
	})
	return out, err
}

// Clear empties the cache.
func (m *Manager) Clear(ctx context.Context) (depcache.Entries, error) {
	var out depcache.Entries
	err := m.do(ctx, func() error {
		out = m.store.Clear().Clone()
		return nil
	})
	return out, err
}

// Cookbooks lists every cached cookbook.
func (m *Manager) Cookbooks(ctx context.Context) ([]depcache.RemoteCookbook, error) {
	var out []depcache.RemoteCookbook
	err := m.do(ctx, func() error {
		out = m.store.Cookbooks()
		return nil
	})
	return out, err
}

// Get returns the metadata cached for cb.
func (m *Manager) Get(ctx context.Context, cb depcache.RemoteCookbook) (depcache.Metadata, bool, error) {
	var (
		md depcache.Metadata
		ok bool
	)
	err := m.do(ctx, func() error {
		md, ok = m.store.Get(cb)
		return nil
	})
	return md, ok, err
}

// Len returns the number of cached entries.
func (m *Manager) Len(ctx context.Context) (int, error) {
	var n int
	err := m.do(ctx, func() error {
		n = m.store.Len()
		return nil
	})
	return n, err
}

// Entries returns a copy of the full mapping.
func (m *Manager) Entries(ctx context.Context) (depcache.Entries, error) {
	var out depcache.Entries
	err := m.do(ctx, func() error {
		out = m.store.Entries()
		return nil
	})
	return out, err
}

// Diff compares the cache with upstream, the full list of cookbooks on the
// indexed site. created are upstream cookbooks not cached yet; deleted are
// cached cookbooks no longer upstream. The cache is left untouched.
func (m *Manager) Diff(ctx context.Context, upstream []depcache.RemoteCookbook) (created, deleted []depcache.RemoteCookbook, err error) {
	err = m.do(ctx, func() error {
		created, deleted = m.store.Diff(upstream)
		return nil
	})
	return created, deleted, err
}

// Universe renders the cache as a universe document.
func (m *Manager) Universe(ctx context.Context) ([]byte, error) {
	var out []byte
	err := m.do(ctx, func() error {
		var err error
		out, err = universe.Render(m.store.Entries())
		return err
	})
	return out, err
}

// Save writes the snapshot now, in order with other operations.
func (m *Manager) Save(ctx context.Context) (depcache.SaveInfo, error) {
	var info depcache.SaveInfo
	err := m.do(ctx, func() error {
		var err error
		info, err = m.save(ctx)
		return err
	})
	return info, err
}

// Reload replaces the cache with the contents of the snapshot file. On error
// the current contents are kept.
func (m *Manager) Reload(ctx context.Context) error {
	return m.do(ctx, func() error {
		store, err := depcache.FromFile(m.path)
		if err != nil {
			return err
		}
		m.store = store
		log.WithField("cookbooks", store.Len()).Info("cache reloaded")
		return nil
	})
}

// do hands fn to the loop goroutine and waits for it to finish. ctx bounds
// only the wait for the loop to accept the request.
func (m *Manager) do(ctx context.Context, fn func() error) error {
	if m.State() != Running {
		return ErrNotRunning
	}

	req := request{fn: fn, reply: make(chan error, 1)}
	select {
	case m.requests <- req:
	case <-m.quit:
		return ErrNotRunning
	case <-ctx.Done():
		return ctx.Err()
	}

	// Once accepted the operation runs to completion; fn writes into the
	// caller's variables so we must not return before it has finished.
	return <-req.reply
}

func (m *Manager) loop(ticker *time.Ticker) {
	defer close(m.done)

	var tick <-chan time.Time
	if ticker != nil {
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-m.quit:
			return
		case req := <-m.requests:
			req.reply <- m.apply(req.fn)
		case <-tick:
			// A tick and a stop request can be ready together; stopping wins.
			select {
			case <-m.quit:
				return
			default:
			}
			err := m.apply(func() error {
				_, err := m.save(m.ctx)
				return err
			})
			if err != nil {
				log.WithError(err).WithField("path", m.path).Error("autosave failed")
			}
		}
	}
}

func (m *Manager) apply(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("cache operation panicked")
			err = fmt.Errorf("cache operation panicked: %v", r)
		}
	}()
	return fn()
}

func (m *Manager) save(ctx context.Context) (depcache.SaveInfo, error) {
	if m.readOnly {
		return depcache.SaveInfo{}, ErrReadOnly
	}

	log.WithField("path", m.path).Info("saving the cache")
	info, err := m.store.Save(m.path)
	if err != nil {
		return info, err
	}
	log.WithFields(log.Fields{
		"cookbooks": humanize.Comma(int64(info.Count)),
		"size":      humanize.Bytes(uint64(info.Size)), //nolint:gosec // size is never negative
		"id":        info.ID,
	}).Info("cache saved")

	if m.mirror != nil {
		if err := m.mirror.Push(ctx, m.path); err != nil {
			log.WithError(err).Warn("failed to push snapshot to mirror")
		}
	}

	return info, nil
}

func (m *Manager) load(ctx context.Context) *depcache.Store {
	if _, err := os.Stat(m.path); errors.Is(err, fs.ErrNotExist) {
		if m.mirror == nil {
			log.Info("no snapshot found, starting with an empty cache")
			return depcache.New()
		}
		if err := m.mirror.Pull(ctx, m.path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				log.Info("no snapshot found locally or in the mirror, starting with an empty cache")
			} else {
				log.WithError(err).Warn("failed to pull snapshot from mirror, starting with an empty cache")
			}
			return depcache.New()
		}
		log.WithField("path", m.path).Info("restored snapshot from mirror")
	}

	store, err := depcache.FromFile(m.path)
	if err != nil {
		log.WithError(err).WithField("path", m.path).Warn("failed to load snapshot, starting with an empty cache")
		return depcache.New()
	}

	log.WithField("cookbooks", humanize.Comma(int64(store.Len()))).Info("snapshot loaded")
	return store
}

// configuredInterval reads save-interval from the config file, falling back to
// DefaultSaveInterval when it is absent or unreadable.
func configuredInterval() time.Duration {
	d, err := config.GetDuration("save-interval", DefaultSaveInterval)
	if err != nil {
		log.WithError(err).Warn("ignoring save-interval from config")
		return DefaultSaveInterval
	}
	return d
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}
