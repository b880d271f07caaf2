// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/staranto/fcache/internal/meta"
	"github.com/staranto/fcache/internal/output"
)

// PurgeCommandAction removes expired and undecryptable entries and stale
// temp files.
func PurgeCommandAction(ctx context.Context, cmd *cli.Command) error {
	if _, err := requireArgs(cmd, 0, 0); err != nil {
		return err
	}

	c, err := openCache(ctx, cmd, false)
	if err != nil {
		return err
	}

	r, err := c.Purge()
	if err != nil {
		return err
	}

	o := output.NewOptions(cmd)
	if o.Format == "text" {
		_, err = fmt.Fprintf(writer(cmd), "purged %d expired, %d corrupt, %d temp files\n", r.Expired, r.Corrupt, r.TempFiles)
		return err
	}
	v := map[string]interface{}{
		"expired":    r.Expired,
		"corrupt":    r.Corrupt,
		"temp_files": r.TempFiles,
	}
	return output.SpitValue(writer(cmd), v, nil, o)
}

// PurgeCommandBuilder constructs the cli.Command definition for the "purge"
// command.
func PurgeCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "purge",
		Usage:     "remove expired and unreadable entries",
		UsageText: `fcache purge [--output text|json|yaml]`,
		Flags:     NewOutputFlags("purge", meta.Config.Source),
		Action:    PurgeCommandAction,
		Meta:      meta,
	}).Build()
}
