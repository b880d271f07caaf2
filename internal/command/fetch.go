// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"

	"github.com/urfave/cli/v3"

	"github.com/staranto/fcache/internal/meta"
)

// FetchCommandAction writes the resource at URI to stdout, from the cache
// when possible. With --json the resource is decoded and pretty-printed.
func FetchCommandAction(ctx context.Context, cmd *cli.Command) error {
	args, err := requireArgs(cmd, 1, 1)
	if err != nil {
		return err
	}

	ttl, err := ParseTTL(cmd.String("ttl"))
	if err != nil {
		return err
	}

	c, err := openCache(ctx, cmd, true)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		var v json.RawMessage
		if err := c.FetchJSON(ctx, args[0], ttl, &v); err != nil {
			return err
		}
		return emitDocument(cmd, v)
	}

	body, err := c.Fetch(ctx, args[0], ttl)
	if err != nil {
		return err
	}
	_, err = writer(cmd).Write(body)
	return err
}

// FetchCommandBuilder constructs the cli.Command definition for the "fetch"
// command.
func FetchCommandBuilder(meta meta.Meta) *cli.Command {
	flags := []cli.Flag{
		NewTTLFlag("fetch", meta.Config.Source),
		&cli.BoolFlag{
			Name:    "json",
			Aliases: []string{"j"},
			Usage:   "decode the resource as JSON and pretty-print it",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format with --json",
			Sources: configSources("fetch", meta.Config.Source, "output"),
			Value:   "json",
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
	}
	flags = append(flags, NewFetchFlags("fetch", meta.Config.Source)...)

	return (&CommandBuilder{
		Name:      "fetch",
		Usage:     "fetch a URI through the cache",
		UsageText: `fcache fetch URI [--ttl SECONDS|DURATION] [--json]`,
		Flags:     flags,
		Action:    FetchCommandAction,
		Meta:      meta,
	}).Build()
}
