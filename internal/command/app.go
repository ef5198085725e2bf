// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"os"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/cerch/internal/config"
	"github.com/staranto/cerch/internal/meta"
)

// InitApp builds the root command. args[1], when it is not a flag, names the
// subcommand and is also the namespace consulted first for config values.
func InitApp(ctx context.Context, args []string) (*cli.Command, error) {
	sd, _ := os.Getwd()

	var ns string
	if len(args) > 1 && !strings.HasPrefix(args[1], "-") {
		ns = args[1]
	}

	cfg, _ := config.Load(ns)
	m := meta.Meta{
		Args:        args,
		Config:      cfg,
		Context:     ctx,
		StartingDir: sd,
	}

	app := &cli.Command{
		Name:    "cerch",
		Usage:   "Berkshelf dependency cache",
		Version: meta.Version,
	}

	app.Commands = append(app.Commands,
		AddCommandBuilder(m),
		ClearCommandBuilder(m),
		CompletionCommandBuilder(m),
		CompareCommandBuilder(m),
		DiffCommandBuilder(m),
		ListCommandBuilder(m),
		RemoveCommandBuilder(m),
		ServeCommandBuilder(m),
		UniverseCommandBuilder(m),
	)

	// Make sure flags are sorted for the --help text.
	for _, cmd := range app.Commands {
		sort.Slice(cmd.Flags, func(i, j int) bool {
			return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
		})
	}

	return app, nil
}
