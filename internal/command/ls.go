// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/staranto/fcache/internal/filecache"
	"github.com/staranto/fcache/internal/meta"
	"github.com/staranto/fcache/internal/output"
)

var lsColumns = []string{"name", "size", "modified", "expires", "state"}

// textFormatters humanize sizes and times in text output.
var textFormatters = map[string]func(interface{}) string{
	"size":       humanSize,
	"total_size": humanSize,
	"modified":   humanTime,
	"expires":    humanTime,
}

func humanSize(v interface{}) string {
	switch n := v.(type) {
	case int64:
		return humanize.Bytes(uint64(n))
	case int:
		return humanize.Bytes(uint64(n))
	}
	return output.InterfaceToString(v, "-")
}

func humanTime(v interface{}) string {
	if t, ok := v.(time.Time); ok && !t.IsZero() {
		return humanize.Time(t)
	}
	return "-"
}

// entryRows flattens entries into output rows.
func entryRows(infos []filecache.EntryInfo) []map[string]interface{} {
	rows := make([]map[string]interface{}, 0, len(infos))
	for _, info := range infos {
		row := map[string]interface{}{
			"name":     info.Name,
			"path":     info.Path,
			"size":     info.Size,
			"modified": info.ModTime,
			"state":    string(info.State),
		}
		if !info.ExpiresAt.IsZero() {
			row["expires"] = info.ExpiresAt
		}
		rows = append(rows, row)
	}
	return rows
}

// LsCommandAction lists the entries in the cache directory.
func LsCommandAction(ctx context.Context, cmd *cli.Command) error {
	if _, err := requireArgs(cmd, 0, 0); err != nil {
		return err
	}

	c, err := openCache(ctx, cmd, false)
	if err != nil {
		return err
	}

	infos, err := c.List()
	if err != nil {
		return err
	}

	o := output.NewOptions(cmd)
	o.Formatters = textFormatters
	return output.SliceDiceSpit(writer(cmd), entryRows(infos), lsColumns, o)
}

// LsCommandBuilder constructs the cli.Command definition for the "ls"
// command.
func LsCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "ls",
		Usage:     "list cache entries",
		UsageText: `fcache ls [--filter SPEC] [--sort SPEC] [--titles] [--output text|json|yaml]`,
		Flags:     NewOutputFlags("ls", meta.Config.Source),
		Action:    LsCommandAction,
		Meta:      meta,
	}).Build()
}
