// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"
)

// configSources returns the value sources for a flag, in precedence order:
// the env vars, then <ns>.<name> and <name> in the config file at path.
func configSources(ns, path, name string, envs ...string) cli.ValueSourceChain {
	var sources []cli.ValueSource
	for _, e := range envs {
		sources = append(sources, cli.EnvVar(e))
	}
	if path != "" {
		if ns != "" {
			sources = append(sources, yaml.YAML(ns+"."+name, altsrc.StringSourcer(path)))
		}
		sources = append(sources, yaml.YAML(name, altsrc.StringSourcer(path)))
	}
	return cli.NewValueSourceChain(sources...)
}

// NewGlobalFlags returns the flags shared by every command: where the cache
// lives and how it is keyed. ns is the running subcommand, used as the config
// file namespace, and path is the config file.
func NewGlobalFlags(ns, path string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "dir",
			Aliases: []string{"d"},
			Usage:   "cache directory",
			Sources: configSources(ns, path, "dir", "FCACHE_DIR"),
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator)
			},
		},
		&cli.StringFlag{
			Name:    "key",
			Usage:   "encryption key: 32 raw bytes, hex:<64 hex digits> or base64:<...>",
			Sources: cli.NewValueSourceChain(cli.EnvVar("FCACHE_KEY")),
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator)
			},
		},
		&cli.StringFlag{
			Name:    "passphrase",
			Aliases: []string{"p"},
			Usage:   "passphrase the encryption key is derived from",
			Sources: cli.NewValueSourceChain(cli.EnvVar("FCACHE_PASSPHRASE")),
		},
		&cli.BoolFlag{
			Name:    "legacy-cbc",
			Usage:   "read and write entries with unauthenticated AES-256-CBC",
			Sources: configSources(ns, path, "legacy-cbc", "FCACHE_LEGACY_CBC"),
		},
		&cli.DurationFlag{
			Name:    "lock-timeout",
			Usage:   "longest wait for an entry lock, 0 waits forever",
			Sources: configSources(ns, path, "lock-timeout", "FCACHE_LOCK_TIMEOUT"),
		},
		&cli.BoolFlag{
			Name:        "version",
			Aliases:     []string{"v"},
			Usage:       "fcache version info",
			HideDefault: true,
		},
	}
}

// NewTTLFlag returns the --ttl flag. Values are seconds or Go durations.
func NewTTLFlag(ns, path string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "ttl",
		Usage:   "time to live, in seconds or as a duration such as 90m",
		Sources: configSources(ns, path, "ttl", "FCACHE_TTL"),
		Value:   defaultTTL,
		Validator: func(value string) error {
			return FlagValidators(value, TTLValidator)
		},
	}
}

// NewOutputFlags returns the flags that shape command output.
func NewOutputFlags(ns, path string) []cli.Flag {
	return []cli.Flag{
		&cli.BoolWithInverseFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Sources: configSources(ns, path, "color"),
			Value:   false,
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of filters to apply to results",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format",
			Sources: configSources(ns, path, "output"),
			Value:   "text",
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "comma-separated list of attributes to sort the results by",
			Sources: configSources(ns, path, "sort"),
		},
		&cli.BoolWithInverseFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Sources: configSources(ns, path, "titles"),
			Value:   false,
		},
	}
}

// NewFetchFlags returns the flags that configure remote fetching.
func NewFetchFlags(ns, path string) []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "retry-max",
			Usage:   "retries for HTTP and S3 fetches, -1 disables",
			Sources: configSources(ns, path, "retry-max", "FCACHE_RETRY_MAX"),
		},
		&cli.DurationFlag{
			Name:    "http-timeout",
			Usage:   "timeout for each HTTP attempt",
			Sources: configSources(ns, path, "http-timeout", "FCACHE_HTTP_TIMEOUT"),
		},
		&cli.StringFlag{
			Name:    "aws-profile",
			Usage:   "AWS shared config profile for s3:// URIs",
			Sources: configSources(ns, path, "aws-profile", "AWS_PROFILE"),
		},
		&cli.StringFlag{
			Name:    "aws-region",
			Usage:   "AWS region for s3:// URIs",
			Sources: configSources(ns, path, "aws-region"),
		},
		&cli.StringFlag{
			Name:    "s3-endpoint",
			Usage:   "S3-compatible endpoint URL",
			Sources: configSources(ns, path, "s3-endpoint", "FCACHE_S3_ENDPOINT"),
		},
		&cli.BoolFlag{
			Name:    "s3-path-style",
			Usage:   "use path-style S3 addressing",
			Sources: configSources(ns, path, "s3-path-style"),
		},
	}
}
