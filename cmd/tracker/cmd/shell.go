package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

const shellFunctionMarkerBegin = "# >>> tracker shell function >>>"
const shellFunctionMarkerEnd = "# <<< tracker shell function <<<"

const bashZshFunction = `
tracker() {
	if [ "$1" = "checkout" ]; then
		local dir
		dir="$(command tracker checkout "${@:2}")" || return $?
		cd "$dir" || return $?
	else
		command tracker "$@"
	fi
}
`

var (
	shellAuto bool
	shellKind string
)

var shellCmd = &cobra.Command{
	Use:   "install-shell-function [--auto] [--bash|--zsh]",
	Short: "Print (or install) a shell function that makes \"tracker checkout\" cd",
	Long: `The tracker binary is a subprocess and cannot change its parent
shell's working directory, so "tracker checkout <id>" only prints a
path. This command prints a shell function that wraps the tracker
binary and cds into that path, for sourcing from your shell's rc file.
With --auto, appends it to ~/.bashrc or ~/.zshrc instead of printing it.`,
	RunE: runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
	shellCmd.Flags().BoolVar(&shellAuto, "auto", false, "append the function to the shell rc file instead of printing it")
	shellCmd.Flags().StringVar(&shellKind, "shell", "", "target shell: bash or zsh (default: $SHELL)")
}

func runShell(_ *cobra.Command, _ []string) error {
	kind := shellKind
	if kind == "" {
		kind = detectShell()
	}
	if kind != "bash" && kind != "zsh" {
		err := fmt.Errorf("unsupported or undetected shell %q, pass --shell bash or --shell zsh", kind)
		printErr(err)
		return err
	}

	snippet := shellFunctionMarkerBegin + "\n" + bashZshFunction + shellFunctionMarkerEnd + "\n"

	if !shellAuto {
		fmt.Print(snippet)
		return nil
	}

	rcPath, err := rcFilePath(kind)
	if err != nil {
		printErr(err)
		return err
	}

	existing, err := os.ReadFile(rcPath)
	if err != nil && !os.IsNotExist(err) {
		printErr(err)
		return err
	}
	if strings.Contains(string(existing), shellFunctionMarkerBegin) {
		printInfo("shell function already installed in %s", rcPath)
		return nil
	}

	f, err := os.OpenFile(rcPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		printErr(err)
		return err
	}
	defer f.Close()

	if _, err := f.WriteString("\n" + snippet); err != nil {
		printErr(err)
		return err
	}

	printInfo("installed shell function in %s, restart your shell or source it", rcPath)
	return nil
}

func detectShell() string {
	shell := os.Getenv("SHELL")
	switch {
	case strings.Contains(shell, "zsh"):
		return "zsh"
	case strings.Contains(shell, "bash"):
		return "bash"
	default:
		return ""
	}
}

func rcFilePath(kind string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	name := ".bashrc"
	if kind == "zsh" {
		name = ".zshrc"
	}
	return filepath.Join(home, name), nil
}
