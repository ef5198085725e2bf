// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/cerch/internal/depcache"
	"github.com/staranto/cerch/internal/manager"
	"github.com/staranto/cerch/internal/meta"
	"github.com/staranto/cerch/internal/output"
	"github.com/staranto/cerch/internal/upstream"
)

// Change kinds reported by diff and compare.
const (
	changeCreated = "created"
	changeDeleted = "deleted"
	changeChanged = "changed"
)

var diffColumns = append(output.NewColumns("change"), cookbookColumns...)

// DiffCommandAction compares the cache with an upstream listing. Created
// cookbooks are in the listing but not the cache; deleted ones are cached but
// gone upstream.
func DiffCommandAction(ctx context.Context, cmd *cli.Command) error {
	listing, err := upstream.ReadFile(cmd.Args().First())
	if err != nil {
		return err
	}
	log.WithField("count", len(listing)).Debug("upstream listing read")

	return WithManager(ctx, cmd, true, func(m *manager.Manager) error {
		created, deleted, err := m.Diff(ctx, listing)
		if err != nil {
			return err
		}
		return emit(cmd, changeRows(created, deleted), diffColumns)
	})
}

func changeRows(created, deleted []depcache.RemoteCookbook) []map[string]any {
	rows := make([]map[string]any, 0, len(created)+len(deleted))
	for _, cb := range created {
		row := cookbookRow(cb)
		row["change"] = changeCreated
		rows = append(rows, row)
	}
	for _, cb := range deleted {
		row := cookbookRow(cb)
		row["change"] = changeDeleted
		rows = append(rows, row)
	}
	return rows
}

// DiffCommandBuilder constructs the cli.Command definition for "diff".
func DiffCommandBuilder(m meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "diff",
		Usage:     "compare the cache with an upstream listing",
		UsageText: `cerch diff UPSTREAM [options]`,
		Args:      1,
		Action:    DiffCommandAction,
		Meta:      m,
	}).Build()
}
