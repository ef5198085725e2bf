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

// ClearCommandAction empties the cache.
func ClearCommandAction(ctx context.Context, cmd *cli.Command) error {
	return WithManager(ctx, cmd, false, func(m *manager.Manager) error {
		before, err := m.Len(ctx)
		if err != nil {
			return err
		}
		if _, err := m.Clear(ctx); err != nil {
			return err
		}
		_, err = fmt.Fprintf(Writer(cmd), "cleared %d entries\n", before)
		return err
	})
}

// ClearCommandBuilder constructs the cli.Command definition for "clear".
func ClearCommandBuilder(m meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "clear",
		Usage:     "remove every cookbook from the cache",
		UsageText: `cerch clear [options]`,
		Action:    ClearCommandAction,
		Meta:      m,
	}).Build()
}
