// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/staranto/fcache/internal/meta"
)

// ClearCommandAction removes every entry. It refuses to run without --yes.
func ClearCommandAction(ctx context.Context, cmd *cli.Command) error {
	if _, err := requireArgs(cmd, 0, 0); err != nil {
		return err
	}
	if err := MustBeTrueValidator(cmd.Bool("yes")); err != nil {
		return fmt.Errorf("--yes %w to clear the cache", err)
	}

	c, err := openCache(ctx, cmd, false)
	if err != nil {
		return err
	}

	n, err := c.Clear()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(writer(cmd), "removed %d entries\n", n)
	return err
}

// ClearCommandBuilder constructs the cli.Command definition for the "clear"
// command.
func ClearCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "clear",
		Usage:     "remove every cache entry",
		UsageText: `fcache clear --yes`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "confirm removing all entries",
			},
		},
		Action: ClearCommandAction,
		Meta:   meta,
	}).Build()
}
