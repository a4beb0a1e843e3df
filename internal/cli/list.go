// Package cli: list.go implements the "tabsync list" command.
//
// The list command shows every container carrying the tabsync management
// label, as a text table or JSON array depending on --json. --status
// filters by running, stopped, vacant or all.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/tabsync/internal/docker"
	"github.com/shinji-kodama/tabsync/internal/model"
)

type listFlags struct {
	status string
}

// NewListCommand creates the "list" cobra command.
func NewListCommand() *cobra.Command {
	flags := &listFlags{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List managed containers",
		Long: `List all containers managed by tabsync and the content each one wraps.

Examples:
  tabsync list
  tabsync list --status vacant
  tabsync list --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.status, "status", "all",
		"Filter by status: running, stopped, vacant, all (default: all)")

	return cmd
}

func runList(ctx context.Context, flags *listFlags) error {
	statusFilter := flags.status
	if statusFilter != "all" {
		if _, err := model.ParseContainerStatus(statusFilter); err != nil {
			return model.WrapCLIError(model.ExitGeneralError,
				fmt.Sprintf("invalid status filter %q: valid values are running, stopped, vacant, all", statusFilter), err)
		}
	}

	api, closeFn, err := dockerConnect(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()

	containers, err := docker.ListManagedContainers(ctx, api)
	if err != nil {
		return err
	}
	VerboseLog("Found %d managed containers", len(containers))

	printListResult(FilterByStatus(containers, statusFilter))
	return nil
}

// FilterByStatus keeps the containers whose status matches filter.
// "all" keeps everything.
func FilterByStatus(containers []model.ContainerInfo, filter string) []model.ContainerInfo {
	if filter == "all" {
		return containers
	}
	out := make([]model.ContainerInfo, 0, len(containers))
	for _, c := range containers {
		if c.Status().String() == filter {
			out = append(out, c)
		}
	}
	return out
}

type listContainerJSON struct {
	Content     string `json:"content"`
	ContainerID string `json:"containerId"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	Image       string `json:"image"`
}

func printListResult(containers []model.ContainerInfo) {
	if IsJSONOutput() {
		result := struct {
			Containers []listContainerJSON `json:"containers"`
		}{
			// Empty slice, not nil, so the JSON shows [] instead of null.
			Containers: make([]listContainerJSON, 0, len(containers)),
		}
		for _, c := range containers {
			result.Containers = append(result.Containers, listContainerJSON{
				Content:     c.Content,
				ContainerID: c.ContainerID,
				Name:        c.ContainerName,
				Status:      c.Status().String(),
				Image:       c.Image,
			})
		}
		printJSON(result)
		return
	}

	if len(containers) == 0 {
		fmt.Println("No managed containers found.")
		return
	}

	fmt.Printf("%-24s %-14s %-10s %s\n", "CONTENT", "CONTAINER", "STATUS", "IMAGE")
	for _, c := range containers {
		content := c.Content
		if content == "" {
			content = "-"
		}
		fmt.Printf("%-24s %-14s %-10s %s\n", content, ShortID(c.ContainerID), c.Status(), c.Image)
	}
}

// ShortID truncates a container ID to the 12 characters Docker shows.
func ShortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
