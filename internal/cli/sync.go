// Package cli: sync.go implements the "tabsync sync" command.
//
// The sync command reconciles Docker against a list of content IDs: every
// listed item gets a running container, and with --prune (the default)
// managed containers for items no longer listed are removed. The engine is
// seeded from the containers that already exist, so repeated runs with the
// same list change nothing.
//
// Order of work:
//  1. Seed the engine from the managed containers on the daemon.
//  2. With --prune, remove vacant leftovers, then Reconcile (prune and
//     ensure). Without it, only EnsureContainers.
//  3. Start listed containers that were adopted in a stopped state, e.g.
//     after a host reboot or a manual "docker stop".
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/tabsync/internal/docker"
	"github.com/shinji-kodama/tabsync/internal/model"
)

type syncFlags struct {
	image string
	prune bool
}

// NewSyncCommand creates the "sync" cobra command.
func NewSyncCommand() *cobra.Command {
	flags := &syncFlags{}

	cmd := &cobra.Command{
		Use:   "sync <content>...",
		Short: "Reconcile Docker containers against a content list",
		Long: `Make sure every listed content has exactly one managed container.

Containers are created in list order. Existing containers for listed
content are kept and started if they are stopped. With --prune (default),
containers for content that is not listed are removed, together with any
vacant containers left by an interrupted run.

Examples:
  tabsync sync clock now-playing
  tabsync sync --prune=false clock
  tabsync sync --image busybox:latest clock`,

		Args: cobra.MinimumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd.Context(), args, flags)
		},
	}

	cmd.Flags().StringVar(&flags.image, "image", docker.DefaultImage, "Image for new containers")
	cmd.Flags().BoolVar(&flags.prune, "prune", true, "Remove containers for content not listed")

	return cmd
}

// syncResult is what one sync run changed.
type syncResult struct {
	Created int `json:"created"`
	Started int `json:"started"`
	Removed int `json:"removed"`
}

// Changed reports whether the run touched any container.
func (r syncResult) Changed() bool {
	return r.Created > 0 || r.Started > 0 || r.Removed > 0
}

func runSync(ctx context.Context, contents []string, flags *syncFlags) error {
	if err := model.ValidateContentIDs(contents); err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "invalid content list", err)
	}

	sess, err := openDockerSession(ctx, flags.image)
	if err != nil {
		return err
	}
	defer sess.Close()

	var res syncResult
	if flags.prune {
		for _, id := range sess.vacant {
			VerboseLog("Removing vacant container %s", ShortID(id))
			if err := docker.RemoveContainer(ctx, sess.api, id, true); err != nil {
				return err
			}
			res.Removed++
		}
		r, err := sess.engine.Reconcile(contents)
		res.Created += r.Created
		res.Removed += r.Pruned
		if err != nil {
			return model.WrapCLIError(model.ExitGeneralError, "reconcile failed", err)
		}
	} else {
		res.Created, err = sess.engine.EnsureContainers(contents)
		if err != nil {
			return model.WrapCLIError(model.ExitGeneralError, "ensure failed", err)
		}
	}

	// Only listed content is woken; with --prune=false unlisted
	// containers are left exactly as they are.
	started, err := sess.toolkit.Wake(sess.engine, containersFor(sess.containers, contents))
	res.Started = len(started)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to start stopped containers", err)
	}
	for _, c := range started {
		VerboseLog("Started stopped container for %q", c)
	}

	printSyncResult(res, sess.engine.Contents())
	return nil
}

// containersFor keeps the containers whose content is in contents.
func containersFor(containers []model.ContainerInfo, contents []string) []model.ContainerInfo {
	want := make(map[string]struct{}, len(contents))
	for _, c := range contents {
		want[c] = struct{}{}
	}
	var out []model.ContainerInfo
	for _, c := range containers {
		if _, ok := want[c.Content]; ok {
			out = append(out, c)
		}
	}
	return out
}

func printSyncResult(res syncResult, contents []string) {
	if IsJSONOutput() {
		printJSON(map[string]interface{}{
			"created":  res.Created,
			"started":  res.Started,
			"removed":  res.Removed,
			"contents": append([]string{}, contents...),
		})
		return
	}

	if !res.Changed() {
		fmt.Printf("%s %s\n", Green("✔"), "Already in sync")
	} else {
		var parts []string
		if res.Created > 0 || res.Removed > 0 {
			parts = append(parts, FormatDelta(res.Created, res.Removed))
		}
		if res.Started > 0 {
			parts = append(parts, Yellow(fmt.Sprintf("%d started", res.Started)))
		}
		fmt.Printf("%s Synced: %s\n", Green("✔"), strings.Join(parts, ", "))
	}
	fmt.Printf("  Contents: %s\n", FormatContents(contents))
}
