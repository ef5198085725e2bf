// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/staranto/cerch/internal/manager"
	"github.com/staranto/cerch/internal/meta"
	"github.com/staranto/cerch/internal/output"
)

// ListCommandAction prints every cached cookbook.
func ListCommandAction(ctx context.Context, cmd *cli.Command) error {
	return WithManager(ctx, cmd, true, func(m *manager.Manager) error {
		entries, err := m.Entries(ctx)
		if err != nil {
			return err
		}
		cols := append(output.Columns{}, cookbookColumns...)
		cols = append(cols, output.Column{Key: "size", Include: true, Title: "size"})
		return emit(cmd, entryRows(entries), cols)
	})
}

// ListCommandBuilder constructs the cli.Command definition for "list".
func ListCommandBuilder(m meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "list",
		Usage:     "list cached cookbooks",
		UsageText: `cerch list [options]`,
		Action:    ListCommandAction,
		Meta:      m,
	}).Build()
}
