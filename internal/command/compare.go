// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/staranto/cerch/internal/cacheutil"
	"github.com/staranto/cerch/internal/depcache"
	"github.com/staranto/cerch/internal/meta"
	"github.com/staranto/cerch/internal/output"
	"github.com/staranto/cerch/internal/snapdiff"
)

var compareColumns = append(append(output.Columns{}, diffColumns...), output.Column{Key: "delta", Title: "delta"})

// CompareCommandAction reports how the snapshot NEW differs from OLD. The
// metadata delta of changed entries is hidden in text output unless asked for
// with --columns delta.
func CompareCommandAction(ctx context.Context, cmd *cli.Command) error {
	paths := []string{cacheutil.Expand(cmd.Args().Get(0)), cacheutil.Expand(cmd.Args().Get(1))}
	stores := make([]*depcache.Store, len(paths))

	g, _ := errgroup.WithContext(ctx)
	for i, p := range paths {
		g.Go(func() error {
			s, err := depcache.FromFile(p)
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", p, err)
			}
			stores[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	report := snapdiff.Compare(stores[0], stores[1])

	rows := changeRows(report.Created, report.Deleted)
	for _, c := range report.Changed {
		row := cookbookRow(c.Cookbook)
		row["change"] = changeChanged
		row["delta"] = c.Delta
		rows = append(rows, row)
	}

	return emit(cmd, rows, compareColumns)
}

// CompareCommandBuilder constructs the cli.Command definition for "compare".
func CompareCommandBuilder(m meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "compare",
		Usage:     "compare two snapshot files",
		UsageText: `cerch compare OLD NEW [options]`,
		Args:      2,
		Action:    CompareCommandAction,
		Meta:      m,
	}).Build()
}
