// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	md2man "github.com/cpuguy83/go-md2man/v2/md2man"
	"github.com/urfave/cli/v3"

	"github.com/staranto/fcache/internal/command"
)

// docgen renders the fcache command tree:
//   - docs/commands/<cmd>.md from each command's usage and flags
//   - docs/man/share/man1/fcache-<cmd>.1 from that markdown via md2man
func main() {
	var (
		repoRoot           string
		writeOnlyIfChanged bool
	)

	flag.StringVar(&repoRoot, "root", ".", "repo root (default current dir)")
	flag.BoolVar(&writeOnlyIfChanged, "only-if-changed", true, "only write files if content changed")
	flag.Parse()

	commandsDir := filepath.Join(repoRoot, "docs", "commands")
	manOutDir := filepath.Join(repoRoot, "docs", "man", "share", "man1")

	for _, d := range []string{commandsDir, manOutDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			fatalf("creating output dir %s: %v", d, err)
		}
	}

	app, err := command.InitApp(context.Background(), []string{"fcache"})
	if err != nil {
		fatalf("building command tree: %v", err)
	}

	for _, cmd := range app.Commands {
		md := renderMarkdown(app, cmd)
		mdPath := filepath.Join(commandsDir, cmd.Name+".md")
		if err := writeFileIfChanged(mdPath, md, writeOnlyIfChanged); err != nil {
			fatalf("writing markdown for %s: %v", cmd.Name, err)
		}

		manPath := filepath.Join(manOutDir, fmt.Sprintf("fcache-%s.1", cmd.Name))
		if err := writeFileIfChanged(manPath, md2man.Render(md), writeOnlyIfChanged); err != nil {
			fatalf("writing man page for %s: %v", cmd.Name, err)
		}
	}
}

func fatalf(f string, a ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", a...)
	os.Exit(1)
}

func writeFileIfChanged(path string, new []byte, onlyIfChanged bool) error {
	if !onlyIfChanged {
		return os.WriteFile(path, new, 0o644)
	}
	old, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return os.WriteFile(path, new, 0o644)
		}
		return err
	}
	if bytes.Equal(bytes.TrimSpace(old), bytes.TrimSpace(new)) {
		return nil
	}
	return os.WriteFile(path, new, 0o644)
}

// usager is implemented by every urfave/cli flag type.
type usager interface {
	GetUsage() string
}

// renderMarkdown writes the page for one subcommand. Global flags come from
// root.
func renderMarkdown(root, cmd *cli.Command) []byte {
	var b bytes.Buffer

	fmt.Fprintf(&b, "# fcache %s\n\n", cmd.Name)
	fmt.Fprintf(&b, "## NAME\n\nfcache-%s - %s\n\n", cmd.Name, cmd.Usage)
	if cmd.UsageText != "" {
		fmt.Fprintf(&b, "## SYNOPSIS\n\n```\n%s\n```\n\n", cmd.UsageText)
	}

	writeFlags(&b, "OPTIONS", cmd.Flags)
	writeFlags(&b, "GLOBAL OPTIONS", root.Flags)

	b.WriteString("## EXIT STATUS\n\n")
	b.WriteString("0 on success, 1 when fcache cannot start, 2 on errors and 3 on a cache miss.\n")
	return b.Bytes()
}

func writeFlags(b *bytes.Buffer, title string, flags []cli.Flag) {
	if len(flags) == 0 {
		return
	}

	lines := make([]string, 0, len(flags))
	for _, f := range flags {
		names := f.Names()
		parts := make([]string, 0, len(names))
		for _, n := range names {
			if len(n) == 1 {
				parts = append(parts, "-"+n)
			} else {
				parts = append(parts, "--"+n)
			}
		}
		usage := ""
		if u, ok := f.(usager); ok {
			usage = u.GetUsage()
		}
		lines = append(lines, fmt.Sprintf("- `%s`: %s", strings.Join(parts, ", "), usage))
	}
	sort.Strings(lines)

	fmt.Fprintf(b, "## %s\n\n%s\n\n", title, strings.Join(lines, "\n"))
}
