// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"sort"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/fcache/internal/config"
	"github.com/staranto/fcache/internal/meta"
)

// InitApp builds the fcache command tree for args.
func InitApp(ctx context.Context, args []string) (*cli.Command, error) {
	// The arg[1] immediately following the binary (arg[0]) is the fcache
	// subcommand and also represents the namespace key to be used when
	// retrieving config values. arg[1] could be -h/--help, so ignore it if it
	// appears to be a flag.
	var ns string
	if len(args) > 1 && !strings.HasPrefix(args[1], "-") {
		ns = args[1]
	}

	// A missing config file is normal.
	cfg, err := config.Load(ns)
	if err != nil {
		log.WithError(err).Debug("no config loaded")
	}

	m := meta.Meta{
		Args:    args,
		Config:  cfg,
		Context: ctx,
	}

	app := &cli.Command{
		Name:                  "fcache",
		Usage:                 "encrypted file-backed key/value cache",
		UsageText:             "fcache [global options] command [options] [arguments...]",
		Flags:                 NewGlobalFlags(ns, cfg.Source),
		EnableShellCompletion: false,
		Metadata: map[string]any{
			"meta": m,
		},
	}

	app.Commands = append(app.Commands,
		SetCommandBuilder(m),
		GetCommandBuilder(m),
		DelCommandBuilder(m),
		FetchCommandBuilder(m),
		LsCommandBuilder(m),
		StatsCommandBuilder(m),
		PurgeCommandBuilder(m),
		ClearCommandBuilder(m),
		CompletionCommandBuilder(m),
	)

	// Make sure flags are sorted for the --help text.
	for _, cmd := range app.Commands {
		sort.Slice(cmd.Flags, func(i, j int) bool {
			return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
		})
	}

	return app, nil
}
