// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/staranto/cerch/internal/manager"
	"github.com/staranto/cerch/internal/meta"
	"github.com/staranto/cerch/internal/output"
)

// UniverseCommandAction prints the cache as a Berkshelf universe document.
// Text output is indented JSON.
func UniverseCommandAction(ctx context.Context, cmd *cli.Command) error {
	return WithManager(ctx, cmd, true, func(m *manager.Manager) error {
		doc, err := m.Universe(ctx)
		if err != nil {
			return err
		}

		if cmd.String("output") == output.FormatYAML {
			var v map[string]any
			if err := json.Unmarshal(doc, &v); err != nil {
				return fmt.Errorf("failed to decode universe: %w", err)
			}
			return output.EmitDocument(v, output.FormatYAML, Writer(cmd))
		}

		var buf bytes.Buffer
		if err := json.Indent(&buf, doc, "", "  "); err != nil {
			return fmt.Errorf("failed to format universe: %w", err)
		}
		buf.WriteByte('\n')
		_, err = buf.WriteTo(Writer(cmd))
		return err
	})
}

// UniverseCommandBuilder constructs the cli.Command definition for "universe".
func UniverseCommandBuilder(m meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "universe",
		Usage:     "print the cache as a universe document",
		UsageText: `cerch universe [options]`,
		Action:    UniverseCommandAction,
		Meta:      m,
	}).Build()
}
