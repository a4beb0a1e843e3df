// Package cli: remove.go implements the "tabsync remove" command.
//
// The remove command stops tracking one content item and removes the
// Docker container that wraps it. By default it asks for confirmation;
// --force skips the prompt.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/tabsync/internal/docker"
	"github.com/shinji-kodama/tabsync/internal/model"
)

type removeFlags struct {
	force bool
}

// NewRemoveCommand creates the "remove" cobra command.
func NewRemoveCommand() *cobra.Command {
	flags := &removeFlags{}

	cmd := &cobra.Command{
		Use:   "remove <content>",
		Short: "Remove a content item and its container",
		Long: `Remove a content item and the Docker container that wraps it.

Unless --force is specified, the command prompts for confirmation.

Examples:
  tabsync remove clock
  tabsync remove --force clock`,

		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(cmd.Context(), args[0], flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Remove without confirmation")

	return cmd
}

func runRemove(ctx context.Context, content string, flags *removeFlags) error {
	if err := model.ValidateContentID(content); err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "invalid content", err)
	}

	sess, err := openDockerSession(ctx, docker.DefaultImage)
	if err != nil {
		return err
	}
	defer sess.Close()

	containerID, ok := sess.engine.ContainerOf(content)
	if !ok {
		return model.NewCLIError(model.ExitContentNotFound,
			fmt.Sprintf("content %q has no managed container", content))
	}

	if !flags.force {
		confirmed, err := promptConfirmation(os.Stdin, content, containerID)
		if err != nil {
			return model.WrapCLIError(model.ExitGeneralError, "failed to read user input", err)
		}
		if !confirmed {
			return model.NewCLIError(model.ExitUserCancelled, "operation cancelled by user")
		}
	}

	// RemoveTab detaches the content (renaming the container to a vacant
	// name) and only then removes the container.
	VerboseLog("Removing container %s for %q", ShortID(containerID), content)
	if _, err := sess.engine.RemoveTab(content); err != nil {
		return model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("failed to remove %q", content), err)
	}

	printRemoveResult(content, containerID)
	return nil
}

// promptConfirmation asks the user to confirm and reads one line from in.
// Only "y" and "yes" confirm; EOF counts as no.
func promptConfirmation(in io.Reader, content, containerID string) (bool, error) {
	fmt.Printf("About to remove %q and its container %s.\n", content, ShortID(containerID))
	fmt.Print("Continue? [y/N] ")

	scanner := bufio.NewScanner(in)
	if scanner.Scan() {
		answer := strings.TrimSpace(strings.ToLower(scanner.Text()))
		return answer == "y" || answer == "yes", nil
	}
	return false, scanner.Err()
}

func printRemoveResult(content, containerID string) {
	if IsJSONOutput() {
		printJSON(map[string]interface{}{
			"content":     content,
			"action":      "removed",
			"containerId": containerID,
		})
		return
	}
	fmt.Printf("%s Removed %q (container %s)\n", Green("✔"), content, ShortID(containerID))
}
