package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash       Shell = "bash"
	ShellZsh        Shell = "zsh"
	ShellFish       Shell = "fish"
	ShellPowerShell Shell = "powershell"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = errors.New("unsupported shell")

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota // default
	flagBool
	flagInt
	flagEnum // has predefined values
	flagFile // file with glob pattern
	flagDir  // directory
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string   // --output
	Short    string   // -o (empty if none)
	Type     flagType // completion type
	Desc     string   // help text
	Values   []string // for enum flags
	FileGlob string   // for file flags
}

// commandDef describes a command for completion.
type commandDef struct {
	Name        string
	Desc        string
	Flags       []flagDef
	TakesFiles  bool   // accepts file arguments
	FilePattern string // glob for file arguments (e.g., "*.md")
}

// completionMeta holds completion-specific metadata for flags.
// This is the ONLY place where completion hints are defined.
// Flag names, types, and descriptions come from the FlagSet.
type completionMeta struct {
	Values   []string // enum values
	FileGlob string   // file glob pattern
	IsDir    bool     // directory completion
}

// flagCompletionMeta maps flag names to their completion metadata.
var flagCompletionMeta = map[string]completionMeta{
	// File flags with glob patterns
	"config": {FileGlob: "*.yaml,*.yml"},
	"style":  {FileGlob: "*.css"},
	"cache":  {FileGlob: "*.cache"},

	// Directory flags
	"output": {IsDir: true},
}

// extractFlagsFromFlagSet extracts flag definitions from a pflag.FlagSet,
// enriched with completion metadata from flagCompletionMeta.
func extractFlagsFromFlagSet(fs *flag.FlagSet) []flagDef {
	var flags []flagDef

	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{
			Long:  f.Name,
			Short: f.Shorthand,
			Desc:  f.Usage,
		}

		switch f.Value.Type() {
		case "bool":
			fd.Type = flagBool
		case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64":
			fd.Type = flagInt
		default:
			fd.Type = flagString
		}

		if meta, ok := flagCompletionMeta[f.Name]; ok {
			switch {
			case len(meta.Values) > 0:
				fd.Type = flagEnum
				fd.Values = meta.Values
			case meta.FileGlob != "":
				fd.Type = flagFile
				fd.FileGlob = meta.FileGlob
			case meta.IsDir:
				fd.Type = flagDir
			}
		}

		flags = append(flags, fd)
	})

	return flags
}

// getCommands returns the command registry for completion.
// Render flags are extracted from the actual FlagSet - single source of truth.
func getCommands() []commandDef {
	renderFlagDefs := extractFlagsFromFlagSet(newRenderFlagSet(&renderFlags{}))

	return []commandDef{
		{
			Name:        "render",
			Desc:        "Render markdown with embedded LaTeX to HTML",
			Flags:       renderFlagDefs,
			TakesFiles:  true,
			FilePattern: "*.md,*.markdown",
		},
		{
			Name:  "doctor",
			Desc:  "Check that latex and dvipng are usable",
			Flags: []flagDef{{Long: "json", Type: flagBool, Desc: "machine-readable output"}},
		},
		{
			Name: "completion",
			Desc: "Generate shell completion script",
		},
		{
			Name: "version",
			Desc: "Show version information",
		},
		{
			Name: "help",
			Desc: "Show help for a command",
		},
	}
}

// commandNames returns the names of all commands in registry order.
func commandNames(commands []commandDef) []string {
	names := make([]string, len(commands))
	for i, c := range commands {
		names[i] = c.Name
	}
	return names
}

// flagWords returns "--long" forms, plus "-s" shorthands when includeShort.
func flagWords(flags []flagDef, includeShort bool) []string {
	words := make([]string, 0, len(flags)*2)
	for _, f := range flags {
		words = append(words, "--"+f.Long)
		if includeShort && f.Short != "" {
			words = append(words, "-"+f.Short)
		}
	}
	return words
}

// GenerateCompletion writes a shell completion script to w.
// Returns an error if the shell is unsupported or the write fails.
func GenerateCompletion(w io.Writer, shell Shell) error {
	switch shell {
	case ShellBash:
		return generateBash(w)
	case ShellZsh:
		return generateZsh(w)
	case ShellFish:
		return generateFish(w)
	case ShellPowerShell:
		return generatePowerShell(w)
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish, powershell)", ErrUnsupportedShell, shell)
	}
}

// generateBash writes the bash completion script.
func generateBash(w io.Writer) error {
	commands := getCommands()

	var b strings.Builder
	b.WriteString("# bash completion for mdtex\n\n")
	b.WriteString("_mdtex_completions() {\n")
	b.WriteString("    local cur prev\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n\n")
	fmt.Fprintf(&b, "    local commands=\"%s\"\n\n", strings.Join(commandNames(commands), " "))
	b.WriteString("    if [[ $COMP_CWORD -eq 1 ]]; then\n")
	b.WriteString("        COMPREPLY=($(compgen -W \"$commands\" -- \"$cur\"))\n")
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")
	b.WriteString("    case \"${COMP_WORDS[1]}\" in\n")

	for _, cmd := range commands {
		fmt.Fprintf(&b, "    %s)\n", cmd.Name)
		switch cmd.Name {
		case "completion":
			b.WriteString("        COMPREPLY=($(compgen -W \"bash zsh fish powershell\" -- \"$cur\"))\n")
		case "help":
			b.WriteString("        COMPREPLY=($(compgen -W \"$commands\" -- \"$cur\"))\n")
		default:
			writeBashCommandBody(&b, cmd)
		}
		b.WriteString("        ;;\n")
	}

	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("complete -F _mdtex_completions mdtex\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// writeBashCommandBody emits flag-value completion, then flag-name
// completion, then file completion for one command.
func writeBashCommandBody(b *strings.Builder, cmd commandDef) {
	var valueCases []string
	for _, fd := range cmd.Flags {
		var action string
		switch fd.Type {
		case flagEnum:
			action = fmt.Sprintf("COMPREPLY=($(compgen -W \"%s\" -- \"$cur\"))", strings.Join(fd.Values, " "))
		case flagFile:
			action = "COMPREPLY=($(compgen -f -- \"$cur\"))"
		case flagDir:
			action = "COMPREPLY=($(compgen -d -- \"$cur\"))"
		default:
			continue
		}
		valueCases = append(valueCases,
			fmt.Sprintf("        --%s)\n            %s\n            return\n            ;;", fd.Long, action))
	}

	if len(valueCases) > 0 {
		b.WriteString("        case \"$prev\" in\n")
		b.WriteString(strings.Join(valueCases, "\n"))
		b.WriteString("\n        esac\n")
	}

	if len(cmd.Flags) > 0 {
		fmt.Fprintf(b, "        if [[ \"$cur\" == -* ]]; then\n")
		fmt.Fprintf(b, "            COMPREPLY=($(compgen -W \"%s\" -- \"$cur\"))\n",
			strings.Join(flagWords(cmd.Flags, true), " "))
		fmt.Fprintf(b, "            return\n")
		fmt.Fprintf(b, "        fi\n")
	}

	if cmd.TakesFiles {
		b.WriteString("        COMPREPLY=($(compgen -f -- \"$cur\"))\n")
	}
}

// generateZsh writes the zsh completion script.
func generateZsh(w io.Writer) error {
	commands := getCommands()

	var b strings.Builder
	b.WriteString("#compdef mdtex\n\n")
	b.WriteString("_mdtex() {\n")
	b.WriteString("    local -a commands\n")
	b.WriteString("    commands=(\n")
	for _, cmd := range commands {
		fmt.Fprintf(&b, "        '%s:%s'\n", cmd.Name, cmd.Desc)
	}
	b.WriteString("    )\n\n")
	b.WriteString("    _arguments -C \\\n")
	b.WriteString("        '1: :->command' \\\n")
	b.WriteString("        '*:: :->args'\n\n")
	b.WriteString("    case $state in\n")
	b.WriteString("    command)\n")
	b.WriteString("        _describe 'command' commands\n")
	b.WriteString("        ;;\n")
	b.WriteString("    args)\n")
	b.WriteString("        case $words[1] in\n")

	for _, cmd := range commands {
		switch cmd.Name {
		case "completion":
			b.WriteString("        completion)\n")
			b.WriteString("            _values 'shell' bash zsh fish powershell\n")
			b.WriteString("            ;;\n")
		case "help":
			b.WriteString("        help)\n")
			b.WriteString("            _describe 'command' commands\n")
			b.WriteString("            ;;\n")
		default:
			if len(cmd.Flags) == 0 && !cmd.TakesFiles {
				continue
			}
			fmt.Fprintf(&b, "        %s)\n", cmd.Name)
			b.WriteString("            _arguments \\\n")
			var specs []string
			for _, fd := range cmd.Flags {
				specs = append(specs, "                "+zshFlagSpec(fd))
			}
			if cmd.TakesFiles {
				specs = append(specs, "                '*:markdown file:_files -g \"*.md\"'")
			}
			b.WriteString(strings.Join(specs, " \\\n"))
			b.WriteString("\n            ;;\n")
		}
	}

	b.WriteString("        esac\n")
	b.WriteString("        ;;\n")
	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("_mdtex \"$@\"\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// zshFlagSpec renders one _arguments spec for a flag.
func zshFlagSpec(fd flagDef) string {
	switch fd.Type {
	case flagBool:
		return fmt.Sprintf("'--%s[%s]'", fd.Long, fd.Desc)
	case flagEnum:
		return fmt.Sprintf("'--%s[%s]:value:(%s)'", fd.Long, fd.Desc, strings.Join(fd.Values, " "))
	case flagFile:
		return fmt.Sprintf("'--%s[%s]:file:_files'", fd.Long, fd.Desc)
	case flagDir:
		return fmt.Sprintf("'--%s[%s]:directory:_files -/'", fd.Long, fd.Desc)
	default:
		return fmt.Sprintf("'--%s[%s]:value:'", fd.Long, fd.Desc)
	}
}

// generateFish writes the fish completion script.
func generateFish(w io.Writer) error {
	commands := getCommands()

	var b strings.Builder
	b.WriteString("# fish completion for mdtex\n\n")
	b.WriteString("function __fish_mdtex_needs_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -eq 1\n")
	b.WriteString("end\n\n")
	b.WriteString("function __fish_mdtex_using_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -gt 1; and test $cmd[2] = $argv[1]\n")
	b.WriteString("end\n\n")

	for _, cmd := range commands {
		fmt.Fprintf(&b, "complete -c mdtex -f -n __fish_mdtex_needs_command -a %s -d '%s'\n",
			cmd.Name, cmd.Desc)
	}
	b.WriteString("\n")

	for _, cmd := range commands {
		for _, fd := range cmd.Flags {
			fmt.Fprintf(&b, "complete -c mdtex -n '__fish_mdtex_using_command %s' -l %s", cmd.Name, fd.Long)
			if fd.Short != "" {
				fmt.Fprintf(&b, " -s %s", fd.Short)
			}
			if fd.Type != flagBool {
				b.WriteString(" -r")
			}
			if fd.Type == flagEnum {
				fmt.Fprintf(&b, " -a '%s'", strings.Join(fd.Values, " "))
			}
			fmt.Fprintf(&b, " -d '%s'\n", fd.Desc)
		}
	}

	b.WriteString("\ncomplete -c mdtex -n '__fish_mdtex_using_command completion' -a 'bash zsh fish powershell'\n")
	fmt.Fprintf(&b, "complete -c mdtex -n '__fish_mdtex_using_command help' -a '%s'\n",
		strings.Join(commandNames(commands), " "))

	_, err := io.WriteString(w, b.String())
	return err
}

// generatePowerShell writes the PowerShell completion script.
func generatePowerShell(w io.Writer) error {
	commands := getCommands()

	var b strings.Builder
	b.WriteString("# powershell completion for mdtex\n\n")
	b.WriteString("Register-ArgumentCompleter -Native -CommandName mdtex -ScriptBlock {\n")
	b.WriteString("    param($wordToComplete, $commandAst, $cursorPosition)\n\n")
	b.WriteString("    $commands = [ordered]@{\n")
	for _, cmd := range commands {
		fmt.Fprintf(&b, "        '%s' = '%s'\n", cmd.Name, cmd.Desc)
	}
	b.WriteString("    }\n\n")
	b.WriteString("    $elements = $commandAst.CommandElements\n")
	b.WriteString("    if ($elements.Count -le 2) {\n")
	b.WriteString("        $commands.GetEnumerator() | Where-Object { $_.Key -like \"$wordToComplete*\" } | ForEach-Object {\n")
	b.WriteString("            [System.Management.Automation.CompletionResult]::new($_.Key, $_.Key, 'ParameterValue', $_.Value)\n")
	b.WriteString("        }\n")
	b.WriteString("        return\n")
	b.WriteString("    }\n\n")
	b.WriteString("    switch ($elements[1].Value) {\n")

	for _, cmd := range commands {
		switch cmd.Name {
		case "completion":
			b.WriteString("        'completion' {\n")
			b.WriteString("            'bash', 'zsh', 'fish', 'powershell' | Where-Object { $_ -like \"$wordToComplete*\" } | ForEach-Object {\n")
			b.WriteString("                [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)\n")
			b.WriteString("            }\n")
			b.WriteString("        }\n")
		case "help":
			b.WriteString("        'help' {\n")
			b.WriteString("            $commands.Keys | Where-Object { $_ -like \"$wordToComplete*\" } | ForEach-Object {\n")
			b.WriteString("                [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)\n")
			b.WriteString("            }\n")
			b.WriteString("        }\n")
		default:
			if len(cmd.Flags) == 0 {
				continue
			}
			fmt.Fprintf(&b, "        '%s' {\n", cmd.Name)
			fmt.Fprintf(&b, "            '%s' | Where-Object { $_ -like \"$wordToComplete*\" } | ForEach-Object {\n",
				strings.Join(flagWords(cmd.Flags, false), "', '"))
			b.WriteString("                [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterName', $_)\n")
			b.WriteString("            }\n")
			b.WriteString("        }\n")
		}
	}

	b.WriteString("    }\n")
	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}

	shell := Shell(args[0])
	return GenerateCompletion(env.Stdout, shell)
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdtex completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate a shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w, "  powershell  PowerShell completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(mdtex completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (before compinit):")
	fmt.Fprintln(w, "    eval \"$(mdtex completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    mdtex completion fish > ~/.config/fish/completions/mdtex.fish")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  PowerShell:")
	fmt.Fprintln(w, "    # Add to $PROFILE:")
	fmt.Fprintln(w, "    mdtex completion powershell | Out-String | Invoke-Expression")
}
