// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/staranto/cerch/internal/cacheutil"
	"github.com/staranto/cerch/internal/depcache"
	"github.com/staranto/cerch/internal/manager"
	"github.com/staranto/cerch/internal/meta"
	"github.com/staranto/cerch/internal/output"
)

// CommandBuilder constructs a cli.Command using a consistent pattern. It wires
// metadata, applies the global flags, and validates positional arguments.
type CommandBuilder struct {
	Name      string
	Usage     string
	UsageText string
	Args      int
	Flags     []cli.Flag
	Action    func(context.Context, *cli.Command) error
	Meta      meta.Meta
}

// Build returns a configured cli.Command from the builder.
func (cb *CommandBuilder) Build() *cli.Command {
	return &cli.Command{
		Name:      cb.Name,
		Usage:     cb.Usage,
		UsageText: cb.UsageText,
		Metadata: map[string]any{
			"meta": cb.Meta,
		},
		Flags:  append(cb.Flags, NewGlobalFlags(cb.Name, cb.Meta.Config.Source)...),
		Before: ArgCountValidator(cb.Args),
		Action: cb.Action,
	}
}

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// BuildColumns constructs the column set from defaults and merges --columns.
func BuildColumns(cmd *cli.Command, defaults output.Columns) (output.Columns, error) {
	cols := append(output.Columns{}, defaults...)
	if err := cols.Set(cmd.String("columns")); err != nil {
		return nil, err
	}
	log.Debugf("columns: %v", cols.String())
	return cols, nil
}

// SnapshotPath returns the expanded --snapshot value.
func SnapshotPath(cmd *cli.Command) string {
	return cacheutil.Expand(cmd.String("snapshot"))
}

// Writer is where command results go.
func Writer(cmd *cli.Command) io.Writer {
	if root := cmd.Root(); root != nil && root.Writer != nil {
		return root.Writer
	}
	return os.Stdout
}

// WithManager starts a manager over the command's snapshot, runs fn and stops
// the manager again. Read-only runs never write the snapshot; the others
// persist their changes through the final save on stop.
func WithManager(ctx context.Context, cmd *cli.Command, readOnly bool, fn func(*manager.Manager) error) (err error) {
	opts := []manager.Option{manager.WithPath(SnapshotPath(cmd))}
	if readOnly {
		opts = append(opts, manager.WithReadOnly())
	}

	m, err := manager.Start(ctx, opts...)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, m.Stop(context.WithoutCancel(ctx)))
	}()

	return fn(m)
}

var cookbookColumns = output.NewColumns("name", "version", "location_type", "location_path")

func cookbookRow(cb depcache.RemoteCookbook) map[string]any {
	return map[string]any{
		"name":          cb.Name,
		"version":       cb.Version,
		"location_type": cb.Location.Type,
		"location_path": cb.Location.Path,
	}
}

// entryRows flattens entries into sorted rows carrying the metadata size.
func entryRows(entries depcache.Entries) []map[string]any {
	cbs := make([]depcache.RemoteCookbook, 0, len(entries))
	for cb := range entries {
		cbs = append(cbs, cb)
	}
	depcache.SortCookbooks(cbs)

	rows := make([]map[string]any, 0, len(cbs))
	for _, cb := range cbs {
		row := cookbookRow(cb)
		row["size"] = humanize.Bytes(uint64(len(entries[cb])))
		rows = append(rows, row)
	}
	return rows
}

func emit(cmd *cli.Command, rows []map[string]any, defaults output.Columns) error {
	cols, err := BuildColumns(cmd, defaults)
	if err != nil {
		return err
	}
	return output.SliceDiceSpit(rows, cols, output.OptionsFromCommand(cmd), Writer(cmd))
}
