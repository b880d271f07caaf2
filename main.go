// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/apex/log"

	"github.com/staranto/fcache/internal/command"
	"github.com/staranto/fcache/internal/config"
	"github.com/staranto/fcache/internal/filecache"
	mylog "github.com/staranto/fcache/internal/log"
	"github.com/staranto/fcache/internal/version"
)

// Process exit codes.
const (
	exitOK   = 0
	exitInit = 1
	exitRun  = 2
	exitMiss = 3
)

var ctx = context.Background()

func main() {
	os.Exit(realMain(os.Args, os.Stdout, os.Stderr))
}

func realMain(args []string, stdout, stderr io.Writer) int {
	mylog.InitLogger()

	if len(args) < 2 {
		fmt.Fprintln(stderr, "No command specified.")
		args = append(args, "--help")
	} else {
		args = mangleArguments(args)
	}

	// Short-circuit --version/-v.
	for _, a := range args {
		if a == "--version" || a == "-v" {
			fmt.Fprintln(stdout, version.Version)
			return exitOK
		}
	}

	app, err := command.InitApp(ctx, args)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitInit
	}
	app.Writer = stdout
	app.ErrWriter = stderr

	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintln(stderr, err)
		if filecache.IsMiss(err) {
			return exitMiss
		}
		return exitRun
	}

	return exitOK
}

// mangleArguments expands an argument set from the config file. A set is
// named by an @name token directly after the command; without one the
// "defaults" set is used. The set's entries for <command>.<name> are inserted
// right after the command so explicit flags still win.
func mangleArguments(args []string) []string {
	// We know the first two args are going to be the executable and command.
	preamble := make([]string, 2)
	copy(preamble, args[:2])

	// Short-circuit for --help/-h. If help is requested, just keep the preamble
	// and add --help flag.
	for _, a := range args {
		if a == "--help" || a == "-h" {
			return append(preamble, "--help")
		}
	}

	// Flags before the command mean there is no command to key a set on.
	if strings.HasPrefix(args[1], "-") {
		return args
	}

	set := "defaults"
	rest := args[2:]
	if len(rest) > 0 && strings.HasPrefix(rest[0], "@") && len(rest[0]) > 1 {
		set = rest[0][1:]
		rest = rest[1:]
	}

	out := preamble
	setArgs, _ := config.GetStringSlice(args[1] + "." + set)
	for _, arg := range setArgs {
		out = append(out, strings.Fields(arg)...)
	}
	out = append(out, rest...)

	log.Debugf("set=%s, args=%v", set, out)
	return out
}
