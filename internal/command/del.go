// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"math"

	"github.com/urfave/cli/v3"

	"github.com/staranto/fcache/internal/meta"
)

// DelCommandAction removes the entries for each KEY. Keys that are not cached
// are ignored.
func DelCommandAction(ctx context.Context, cmd *cli.Command) error {
	args, err := requireArgs(cmd, 1, math.MaxInt)
	if err != nil {
		return err
	}

	c, err := openCache(ctx, cmd, false)
	if err != nil {
		return err
	}
	for _, key := range args {
		if err := c.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

// DelCommandBuilder constructs the cli.Command definition for the "del"
// command.
func DelCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "del",
		Usage:     "delete cached values",
		UsageText: `fcache del KEY...`,
		Action:    DelCommandAction,
		Meta:      meta,
	}).Build()
}
