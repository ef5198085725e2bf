// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/cerch/internal/depcache"
	"github.com/staranto/cerch/internal/manager"
	"github.com/staranto/cerch/internal/meta"
)

// AddCommandAction caches one cookbook version, replacing any existing entry
// with the same name, version and location.
func AddCommandAction(ctx context.Context, cmd *cli.Command) error {
	cb := depcache.NewRemoteCookbook(
		cmd.Args().Get(0),
		cmd.Args().Get(1),
		cmd.String("location-type"),
		cmd.String("location-path"),
	)

	md, err := readMetadata(cmd.String("metadata"))
	if err != nil {
		return err
	}

	return WithManager(ctx, cmd, false, func(m *manager.Manager) error {
		entries, err := m.Add(ctx, cb, md)
		if err != nil {
			return err
		}
		log.WithFields(log.Fields{
			"cookbook": cb.String(),
			"entries":  len(entries),
		}).Info("cookbook added")
		return emit(cmd, []map[string]any{cookbookRow(cb)}, cookbookColumns)
	})
}

// readMetadata loads the metadata payload from path, stdin for "-". An empty
// path yields an empty JSON object.
func readMetadata(path string) (depcache.Metadata, error) {
	var (
		data []byte
		err  error
	)
	switch path {
	case "":
		return depcache.Metadata("{}"), nil
	case "-":
		data, err = io.ReadAll(os.Stdin)
	default:
		data, err = os.ReadFile(path) //nolint:gosec // operator supplied
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}
	return depcache.Metadata(data), nil
}

// AddCommandBuilder constructs the cli.Command definition for "add".
func AddCommandBuilder(m meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "add",
		Usage:     "add a cookbook version to the cache",
		UsageText: `cerch add NAME VERSION [options]`,
		Args:      2,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "location-type",
				Usage: "kind of location the cookbook was found at",
				Value: "supermarket",
			},
			&cli.StringFlag{
				Name:  "location-path",
				Usage: "where the cookbook was found",
			},
			&cli.StringFlag{
				Name:  "metadata",
				Usage: "file holding the cookbook metadata, - for stdin",
			},
		},
		Action: AddCommandAction,
		Meta:   m,
	}).Build()
}
