// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/staranto/cerch/internal/cacheutil"
	mylog "github.com/staranto/cerch/internal/log"
	"github.com/staranto/cerch/internal/manager"
	"github.com/staranto/cerch/internal/meta"
	"github.com/staranto/cerch/internal/mirror"
)

// ServeCommandAction runs the cache service until SIGINT or SIGTERM. SIGHUP
// reloads the snapshot from disk. Stopping performs a final save.
func ServeCommandAction(ctx context.Context, cmd *cli.Command) (err error) {
	// A long running service reports its lifecycle unless CERCH_LOG says
	// otherwise.
	mylog.InitLogger("info")

	path := SnapshotPath(cmd)
	if _, _, err := cacheutil.EnsureBaseDir(path); err != nil {
		log.WithError(err).WithField("path", path).Warn("snapshot directory is not usable")
	}

	opts := []manager.Option{
		manager.WithPath(path),
		manager.WithSaveInterval(cmd.Duration("save-interval")),
	}

	mr, err := newMirror(ctx, cmd)
	if err != nil {
		return err
	}
	if mr != nil {
		opts = append(opts, manager.WithMirror(mr))
	}

	m, err := manager.Start(ctx, opts...)
	if err != nil {
		return err
	}
	// Deferred so the final save also runs while a panic unwinds.
	defer func() {
		log.Info("stopping cache service")
		err = errors.Join(err, m.Stop(context.WithoutCancel(ctx)))
	}()

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	n, _ := m.Len(sigCtx)
	log.WithFields(log.Fields{
		"snapshot": m.Path(),
		"entries":  n,
		"interval": cmd.Duration("save-interval").String(),
	}).Info("cache service running")

	g, gctx := errgroup.WithContext(sigCtx)
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-hup:
				if err := m.Reload(gctx); err != nil {
					log.WithError(err).Error("reload failed")
					continue
				}
				log.Info("snapshot reloaded")
			}
		}
	})

	return g.Wait()
}

// newMirror returns the S3 mirror configured by the --mirror-* flags, or nil
// when no bucket is set.
func newMirror(ctx context.Context, cmd *cli.Command) (manager.Mirror, error) {
	bucket := cmd.String("mirror-bucket")
	if bucket == "" {
		return nil, nil
	}

	var opts []mirror.Option
	if r := cmd.String("mirror-region"); r != "" {
		opts = append(opts, mirror.WithRegion(r))
	}
	if p := cmd.String("mirror-profile"); p != "" {
		opts = append(opts, mirror.WithProfile(p))
	}
	if e := cmd.String("mirror-endpoint"); e != "" {
		opts = append(opts, mirror.WithEndpoint(e))
	}

	mr, err := mirror.NewS3Mirror(ctx, bucket, cmd.String("mirror-key"), opts...)
	if err != nil {
		return nil, err
	}
	return mr, nil
}

// ServeCommandBuilder constructs the cli.Command definition for "serve".
func ServeCommandBuilder(m meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "serve",
		Usage:     "run the cache service with periodic snapshots",
		UsageText: `cerch serve [options]`,
		Flags:     NewServeFlags(m.Config.Source),
		Action:    ServeCommandAction,
		Meta:      m,
	}).Build()
}
