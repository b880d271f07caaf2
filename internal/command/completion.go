// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/fcache/internal/meta"
)

const bashCompletionScript = `# bash completion for fcache
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_fcache()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "set get del fetch ls stats purge clear completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local global="--dir -d --key --passphrase -p --legacy-cbc --lock-timeout"
    local listing="--color -c --filter -f --output -o --sort -s --titles -t"

    case "$cmd" in
        set)
            local opts="$global --ttl"
            ;;
        get)
            local opts="$global --query -q --raw -r --output -o"
            ;;
        del)
            local opts="$global"
            ;;
        fetch)
            local opts="$global --ttl --json -j --output -o --retry-max --http-timeout --aws-profile --aws-region --s3-endpoint --s3-path-style"
            ;;
        ls|stats|purge)
            local opts="$global $listing"
            ;;
        clear)
            local opts="$global --yes -y"
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$global"
            ;;
    esac

    if [[ "$prev" == "--output" || "$prev" == "-o" ]]; then
        COMPREPLY=( $(compgen -W "text json yaml" -- "$cur") )
        return 0
    fi

    if [[ "$prev" == "--dir" || "$prev" == "-d" ]]; then
        COMPREPLY=( $(compgen -o dirnames -- "$cur") )
        return 0
    fi

    if [[ "$cur" == -* ]]; then
        COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
        return 0
    fi

    # fetch takes a URI or a local path.
    if [[ "$cmd" == "fetch" ]]; then
        COMPREPLY=( $(compgen -f -- "$cur") )
    fi
    return 0
}

complete -F _fcache fcache
`

const zshCompletionScript = `#compdef fcache

_fcache() {
  local -a cmds
  cmds=(
    'set:store a value'
    'get:print a cached value'
    'del:delete cached values'
    'fetch:fetch a URI through the cache'
    'ls:list cache entries'
    'stats:summarize the cache directory'
    'purge:remove expired and unreadable entries'
    'clear:remove every cache entry'
    'completion:generate shell completion script'
  )

  local -a global
  global=(
  '(-d --dir)'{-d,--dir}'[cache directory]:dir:_directories'
  '--key[encryption key]:key'
  '(-p --passphrase)'{-p,--passphrase}'[passphrase]:passphrase'
  '--legacy-cbc[use AES-256-CBC entries]'
  '--lock-timeout[lock wait]:duration'
  )

  local -a listing
  listing=(
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
  '(-o --output)'{-o,--output}'[output format]:format:(text json yaml)'
  '(-s --sort)'{-s,--sort}'[sort attributes]:attrs'
  '(-t --titles)'{-t,--titles}'[show titles]'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'fcache commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    set)
      _arguments -C $global '--ttl[time to live]:ttl' '1:key' '2::value'
      ;;
    get)
      _arguments -C $global \
        '(-q --query)'{-q,--query}'[gjson path]:path' \
        '(-r --raw)'{-r,--raw}'[unquoted strings]' \
        '(-o --output)'{-o,--output}'[output format]:format:(json yaml)' \
        '1:key'
      ;;
    del)
      _arguments -C $global '*:key'
      ;;
    fetch)
      _arguments -C $global \
        '--ttl[time to live]:ttl' \
        '(-j --json)'{-j,--json}'[decode as JSON]' \
        '(-o --output)'{-o,--output}'[output format]:format:(json yaml)' \
        '--retry-max[HTTP retries]:n' \
        '--http-timeout[HTTP timeout]:duration' \
        '--aws-profile[AWS profile]:profile' \
        '--aws-region[AWS region]:region' \
        '--s3-endpoint[S3 endpoint]:url' \
        '--s3-path-style[path-style S3]' \
        '1:uri:_files'
      ;;
    ls|stats|purge)
      _arguments -C $global $listing
      ;;
    clear)
      _arguments -C $global '(-y --yes)'{-y,--yes}'[confirm]'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
    *)
      _arguments -C $global
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _fcache fcache
`

func CompletionCommandAction(ctx context.Context, cmd *cli.Command) error {
	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	if shell == "" {
		// Try to detect from SHELL.
		sh := os.Getenv("SHELL")
		switch {
		case strings.HasSuffix(sh, "zsh"):
			shell = "zsh"
		case strings.HasSuffix(sh, "bash"):
			shell = "bash"
		}
	}

	w := writer(cmd)
	switch shell {
	case "bash":
		fmt.Fprint(w, bashCompletionScript)
	case "zsh":
		fmt.Fprint(w, zshCompletionScript)
	default:
		return fmt.Errorf("%w: fcache completion [bash|zsh]", ErrUsage)
	}
	return nil
}

func CompletionCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "fcache completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: CompletionCommandAction,
	}
}
