// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/fcache/internal/cacheutil"
	"github.com/staranto/fcache/internal/fetcher"
	"github.com/staranto/fcache/internal/filecache"
	"github.com/staranto/fcache/internal/keysource"
	"github.com/staranto/fcache/internal/meta"
)

// defaultTTL is the --ttl default, in seconds.
const defaultTTL = "3600"

// ErrUsage is returned for missing or surplus positional arguments.
var ErrUsage = errors.New("usage")

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

// ParseTTL parses whole seconds ("3600") or a Go duration ("1h"). Empty means
// the default of one hour.
func ParseTTL(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		s = defaultTTL
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid ttl %q: want seconds or a duration such as 90m", s)
	}
	return d, nil
}

// ParseValue interprets a value given on the command line. Valid JSON is
// stored as is; anything else is stored as a JSON string.
func ParseValue(s string) any {
	trimmed := strings.TrimSpace(s)
	if trimmed != "" && json.Valid([]byte(trimmed)) {
		return json.RawMessage(trimmed)
	}
	return s
}

// writer returns the output stream of the root command.
func writer(cmd *cli.Command) io.Writer {
	if root := cmd.Root(); root != nil && root.Writer != nil {
		return root.Writer
	}
	return os.Stdout
}

// reader returns the input stream of the root command.
func reader(cmd *cli.Command) io.Reader {
	if root := cmd.Root(); root != nil && root.Reader != nil {
		return root.Reader
	}
	return os.Stdin
}

// errWriter returns the error stream of the root command.
func errWriter(cmd *cli.Command) io.Writer {
	if root := cmd.Root(); root != nil && root.ErrWriter != nil {
		return root.ErrWriter
	}
	return os.Stderr
}

// requireArgs checks the positional argument count against min and max.
func requireArgs(cmd *cli.Command, lo, hi int) ([]string, error) {
	args := cmd.Args().Slice()
	if len(args) < lo || len(args) > hi {
		return nil, fmt.Errorf("%w: %s", ErrUsage, cmd.UsageText)
	}
	return args, nil
}

// openCache builds the Cache described by the global flags. The fetcher is
// only wired for commands that fetch.
func openCache(ctx context.Context, cmd *cli.Command, withFetcher bool) (*filecache.Cache, error) {
	dir, err := cacheutil.EnsureDir(cmd.String("dir"))
	if err != nil {
		return nil, err
	}

	opts := keysource.Options{
		Key:        cmd.String("key"),
		Passphrase: cmd.String("passphrase"),
	}
	if f, ok := reader(cmd).(*os.File); ok {
		opts.Prompt = keysource.TerminalPrompt(f, errWriter(cmd))
	}
	key, err := keysource.Resolve(opts)
	if err != nil {
		return nil, err
	}

	conf := &filecache.Config{
		Dir:         dir,
		Key:         key,
		LegacyCBC:   cmd.Bool("legacy-cbc"),
		LockTimeout: cmd.Duration("lock-timeout"),
	}
	if withFetcher {
		conf.Fetcher = fetcher.NewDefault(fetcher.Options{
			HTTPRetryMax: int(cmd.Int("retry-max")),
			HTTPTimeout:  cmd.Duration("http-timeout"),
			AWSProfile:   cmd.String("aws-profile"),
			AWSRegion:    cmd.String("aws-region"),
			S3Endpoint:   cmd.String("s3-endpoint"),
			S3PathStyle:  cmd.Bool("s3-path-style"),
		})
	}

	log.WithFields(log.Fields{
		"dir":    dir,
		"legacy": conf.LegacyCBC,
		"config": GetMeta(cmd).Config.Source,
	}).Debug("opening cache")
	return filecache.NewWithConfig(conf)
}

// CommandBuilder constructs a cli.Command for an fcache subcommand using a
// consistent pattern: metadata, the caller's flags plus any flag groups, and
// the action.
type CommandBuilder struct {
	Name      string
	Usage     string
	UsageText string
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
		Flags:  cb.Flags,
		Action: cb.Action,
	}
}
