// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/fcache/internal/cacheutil"
	"github.com/staranto/fcache/internal/meta"
)

// SetCommandAction stores VALUE, or stdin when VALUE is omitted or "-", under
// KEY.
func SetCommandAction(ctx context.Context, cmd *cli.Command) error {
	args, err := requireArgs(cmd, 1, 2)
	if err != nil {
		return err
	}

	ttl, err := ParseTTL(cmd.String("ttl"))
	if err != nil {
		return err
	}

	var raw string
	if len(args) == 2 && args[1] != "-" {
		raw = args[1]
	} else {
		b, err := io.ReadAll(reader(cmd))
		if err != nil {
			return fmt.Errorf("failed to read value from stdin: %w", err)
		}
		raw = strings.TrimSuffix(string(b), "\n")
	}

	if !cacheutil.Enabled() {
		log.Debug("cache disabled, set is a no-op")
		return nil
	}

	c, err := openCache(ctx, cmd, false)
	if err != nil {
		return err
	}
	return c.Set(args[0], ParseValue(raw), ttl)
}

// SetCommandBuilder constructs the cli.Command definition for the "set"
// command.
func SetCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "set",
		Usage:     "store a value",
		UsageText: `fcache set KEY [VALUE|-] [--ttl SECONDS|DURATION]`,
		Flags: []cli.Flag{
			NewTTLFlag("set", meta.Config.Source),
		},
		Action: SetCommandAction,
		Meta:   meta,
	}).Build()
}
