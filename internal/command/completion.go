// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/template"

	"github.com/urfave/cli/v3"

	"github.com/staranto/cerch/internal/meta"
	"github.com/staranto/cerch/internal/output"
)

// completionCommand is what the scripts know about one subcommand.
type completionCommand struct {
	Name  string
	Usage string
	Flags []completionFlag
}

type completionFlag struct {
	Names []string
	Usage string
}

// Long returns the flag names with their dashes, e.g. "--output -o".
func (f completionFlag) Long() string {
	parts := make([]string, 0, len(f.Names))
	for _, n := range f.Names {
		if len(n) == 1 {
			parts = append(parts, "-"+n)
		} else {
			parts = append(parts, "--"+n)
		}
	}
	return strings.Join(parts, " ")
}

// Zsh returns the _arguments spec for the flag.
func (f completionFlag) Zsh() string {
	dashed := strings.Fields(f.Long())
	if len(dashed) == 1 {
		return fmt.Sprintf("'%s[%s]'", dashed[0], f.Usage)
	}
	return fmt.Sprintf("'(%s)'{%s}'[%s]'", f.Long(), strings.Join(dashed, ","), f.Usage)
}

var bashCompletion = template.Must(template.New("bash").Parse(`# bash completion for cerch
_cerch()
{
    local cur prev cmd opts
    COMPREPLY=()
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "{{range .Commands}}{{.Name}} {{end}}--help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    case "$cmd" in
{{- range .Commands}}
    {{.Name}})
        opts="{{range $i, $f := .Flags}}{{if $i}} {{end}}{{$f.Long}}{{end}}"
        ;;
{{- end}}
    esac

    if [[ "$prev" == "--output" || "$prev" == "-o" ]]; then
        COMPREPLY=( $(compgen -W "{{.Formats}}" -- "$cur") )
        return 0
    fi

    if [[ "$cur" == -* ]]; then
        COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
        return 0
    fi

    COMPREPLY=( $(compgen -f -- "$cur") )
    return 0
}

complete -F _cerch cerch
`))

var zshCompletion = template.Must(template.New("zsh").Parse(`#compdef cerch

_cerch() {
  local -a cmds
  cmds=(
{{- range .Commands}}
    '{{.Name}}:{{.Usage}}'
{{- end}}
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'cerch commands' cmds
    return
  fi

  case $words[2] in
{{- range .Commands}}
    {{.Name}})
      _arguments -C \
{{- range .Flags}}
        {{.Zsh}} \
{{- end}}
        '*:file:_files'
      ;;
{{- end}}
  esac
}

if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _cerch cerch
`))

// CompletionScript renders the completion script for shell from the command
// tree rooted at root.
func CompletionScript(root *cli.Command, shell string) (string, error) {
	var tmpl *template.Template
	switch shell {
	case "bash":
		tmpl = bashCompletion
	case "zsh":
		tmpl = zshCompletion
	default:
		return "", fmt.Errorf("unsupported shell %q, must be bash or zsh", shell)
	}

	data := struct {
		Commands []completionCommand
		Formats  string
	}{
		Commands: completionCommands(root),
		Formats:  strings.Join([]string{output.FormatText, output.FormatJSON, output.FormatYAML}, " "),
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to render %s completion: %w", shell, err)
	}
	return b.String(), nil
}

func completionCommands(root *cli.Command) []completionCommand {
	var cmds []completionCommand
	for _, c := range root.Commands {
		if c.Hidden {
			continue
		}
		cc := completionCommand{Name: c.Name, Usage: strings.ReplaceAll(c.Usage, "'", "")}
		for _, f := range c.Flags {
			usage := ""
			if d, ok := f.(cli.DocGenerationFlag); ok {
				usage = d.GetUsage()
			}
			cc.Flags = append(cc.Flags, completionFlag{
				Names: f.Names(),
				Usage: strings.NewReplacer("'", "", "[", "(", "]", ")").Replace(usage),
			})
		}
		cmds = append(cmds, cc)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
	return cmds
}

// CompletionCommandAction prints the script for the requested shell, falling
// back to $SHELL.
func CompletionCommandAction(ctx context.Context, cmd *cli.Command) error {
	shell := cmd.Args().First()
	if shell == "" {
		sh := os.Getenv("SHELL")
		switch {
		case strings.HasSuffix(sh, "zsh"):
			shell = "zsh"
		case strings.HasSuffix(sh, "bash"):
			shell = "bash"
		default:
			fmt.Fprintln(os.Stderr, "usage: cerch completion [bash|zsh]")
			return nil
		}
	}

	script, err := CompletionScript(cmd.Root(), shell)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(Writer(cmd), script)
	return err
}

// CompletionCommandBuilder constructs the cli.Command definition for
// "completion".
func CompletionCommandBuilder(m meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "cerch completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": m,
		},
		Action: CompletionCommandAction,
	}
}
