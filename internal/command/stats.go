// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/staranto/fcache/internal/meta"
	"github.com/staranto/fcache/internal/output"
)

var statsColumns = []string{"dir", "entries", "valid", "expired", "corrupt", "total_size", "temp_files"}

// StatsCommandAction summarizes the cache directory.
func StatsCommandAction(ctx context.Context, cmd *cli.Command) error {
	if _, err := requireArgs(cmd, 0, 0); err != nil {
		return err
	}

	c, err := openCache(ctx, cmd, false)
	if err != nil {
		return err
	}

	s, err := c.Stats()
	if err != nil {
		return err
	}

	v := map[string]interface{}{
		"dir":        c.Dir(),
		"entries":    s.Entries,
		"valid":      s.Valid,
		"expired":    s.Expired,
		"corrupt":    s.Corrupt,
		"total_size": s.TotalSize,
		"temp_files": s.TempFiles,
	}

	o := output.NewOptions(cmd)
	o.Formatters = textFormatters
	return output.SpitValue(writer(cmd), v, statsColumns, o)
}

// StatsCommandBuilder constructs the cli.Command definition for the "stats"
// command.
func StatsCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "stats",
		Usage:     "summarize the cache directory",
		UsageText: `fcache stats [--output text|json|yaml]`,
		Flags:     NewOutputFlags("stats", meta.Config.Source),
		Action:    StatsCommandAction,
		Meta:      meta,
	}).Build()
}
