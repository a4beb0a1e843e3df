// Package cli implements the cobra-based CLI commands for tabsync.
//
// Each subcommand (run, sync, list, remove) is defined in its own file
// within this package. This file defines the root command that serves as
// the parent for all subcommands and handles global flags.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/shinji-kodama/tabsync/internal/model"
)

// Global flag variables shared across all subcommands.
var (
	// jsonOutput switches all command output to JSON.
	jsonOutput bool

	// verbose enables the zap-backed debug logger.
	verbose bool
)

// logger is replaced in PersistentPreRunE once flags are parsed.
var logger = logr.Discard()

// Build information injected from the main package.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// NewRootCommand creates and configures the root cobra command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tabsync",
		Short: "Keep content and its containers in sync",
		Long: `tabsync keeps a list of content items and a set of container wrappers
in a 1:1 correspondence, creating a container for every new item and
destroying it when the item goes away.

Scenarios can be replayed against an in-memory toolkit or against Docker,
where every content item is backed by a real container.`,

		// Errors are printed by Execute in text or JSON form.
		SilenceUsage:  true,
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := newLogger(verbose)
			if err != nil {
				return model.WrapCLIError(model.ExitGeneralError, "failed to create logger", err)
			}
			logger = l
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewSyncCommand())
	rootCmd.AddCommand(NewListCommand())
	rootCmd.AddCommand(NewRemoveCommand())

	return rootCmd
}

// Execute runs the root command and translates errors into exit codes.
// CLIError values carry their own code; anything else exits with 1.
func Execute(rootCmd *cobra.Command) {
	err := rootCmd.Execute()
	syncLogger()
	if err == nil {
		return
	}

	var cliErr *model.CLIError
	if errors.As(err, &cliErr) {
		printError(cliErr.Message, cliErr.Err)
		os.Exit(int(cliErr.Code))
	}

	printError(err.Error(), nil)
	os.Exit(int(model.ExitGeneralError))
}

// printError writes an error to stderr, as JSON when --json is set.
func printError(message string, underlying error) {
	if jsonOutput {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
			},
		}
		if underlying != nil {
			if errMap, ok := errObj["error"].(map[string]interface{}); ok {
				errMap["detail"] = underlying.Error()
			}
		}
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(os.Stderr, string(data))
		return
	}

	if underlying != nil {
		fmt.Fprintf(os.Stderr, "%s %s: %v\n", Red("Error:"), message, underlying)
	} else {
		fmt.Fprintf(os.Stderr, "%s %s\n", Red("Error:"), message)
	}
}

// VerboseLog writes a debug message through the logger. It is silent
// unless --verbose is set.
func VerboseLog(format string, args ...interface{}) {
	logger.Info(fmt.Sprintf(format, args...))
}

// IsJSONOutput returns whether the --json flag is set.
func IsJSONOutput() bool {
	return jsonOutput
}
