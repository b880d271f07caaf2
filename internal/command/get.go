// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/staranto/fcache/internal/cacheutil"
	"github.com/staranto/fcache/internal/filecache"
	"github.com/staranto/fcache/internal/meta"
)

// GetCommandAction prints the value stored under KEY. Every kind of miss is
// returned as an error wrapping filecache.ErrMiss.
func GetCommandAction(ctx context.Context, cmd *cli.Command) error {
	args, err := requireArgs(cmd, 1, 1)
	if err != nil {
		return err
	}

	if !cacheutil.Enabled() {
		return filecache.ErrNotFound
	}

	c, err := openCache(ctx, cmd, false)
	if err != nil {
		return err
	}

	data, err := c.GetRaw(args[0])
	if err != nil {
		return err
	}

	if q := cmd.String("query"); q != "" {
		r := gjson.GetBytes(data, q)
		if !r.Exists() {
			return fmt.Errorf("query %q matched nothing", q)
		}
		if cmd.Bool("raw") && r.Type == gjson.String {
			_, err = fmt.Fprintln(writer(cmd), r.Str)
			return err
		}
		data = json.RawMessage(r.Raw)
	} else if cmd.Bool("raw") {
		if r := gjson.ParseBytes(data); r.Type == gjson.String {
			_, err = fmt.Fprintln(writer(cmd), r.Str)
			return err
		}
	}

	return emitDocument(cmd, data)
}

// emitDocument writes a JSON document as indented JSON or as YAML.
func emitDocument(cmd *cli.Command, data []byte) error {
	w := writer(cmd)

	if cmd.String("output") == "yaml" {
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("failed to decode value: %w", err)
		}
		out, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal yaml: %w", err)
		}
		_, err = w.Write(out)
		return err
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return fmt.Errorf("failed to format value: %w", err)
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(w)
	return err
}

// GetCommandBuilder constructs the cli.Command definition for the "get"
// command.
func GetCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "get",
		Usage:     "print a cached value, exit status 3 on a miss",
		UsageText: `fcache get KEY [--query PATH] [--raw] [--output json|yaml]`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "gjson path to extract from the value",
			},
			&cli.BoolFlag{
				Name:    "raw",
				Aliases: []string{"r"},
				Usage:   "print string results without quotes",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "output format",
				Sources: configSources("get", meta.Config.Source, "output"),
				Value:   "json",
				Validator: func(value string) error {
					return FlagValidators(value, OutputValidator)
				},
			},
		},
		Action: GetCommandAction,
		Meta:   meta,
	}).Build()
}
