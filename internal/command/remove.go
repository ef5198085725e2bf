// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/staranto/cerch/internal/manager"
	"github.com/staranto/cerch/internal/meta"
)

// RemoveCommandAction drops every cached location of a cookbook version.
func RemoveCommandAction(ctx context.Context, cmd *cli.Command) error {
	name, version := cmd.Args().Get(0), cmd.Args().Get(1)

	return WithManager(ctx, cmd, false, func(m *manager.Manager) error {
		before, err := m.Len(ctx)
		if err != nil {
			return err
		}
		entries, err := m.Remove(ctx, name, version)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(Writer(cmd), "removed %d entries for %s (%s)\n", before-len(entries), name, version)
		return err
	})
}

// RemoveCommandBuilder constructs the cli.Command definition for "remove".
func RemoveCommandBuilder(m meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "remove",
		Usage:     "remove a cookbook version from the cache",
		UsageText: `cerch remove NAME VERSION [options]`,
		Args:      2,
		Action:    RemoveCommandAction,
		Meta:      m,
	}).Build()
}
