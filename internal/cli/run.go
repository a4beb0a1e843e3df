// Package cli: run.go implements the "tabsync run" command.
//
// The run command replays a scenario file against a toolkit and checks the
// expectations attached to each step. With --toolkit memory (the default)
// nothing outside the process is touched; with --toolkit docker every
// container is a real Docker container.
//
// A Docker run starts from the daemon's current state: containers left by
// "tabsync sync" (or a run with --keep) are adopted, not recreated. When
// the run ends, the containers it created are removed again unless --keep
// is given; adopted ones are left alone.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/tabsync/internal/docker"
	"github.com/shinji-kodama/tabsync/internal/model"
	"github.com/shinji-kodama/tabsync/internal/scenario"
	"github.com/shinji-kodama/tabsync/internal/tabsync"
	"github.com/shinji-kodama/tabsync/internal/toolkit/memory"
)

// Toolkit names accepted by --toolkit.
const (
	toolkitMemory = "memory"
	toolkitDocker = "docker"
)

type runFlags struct {
	toolkit  string
	image    string
	capacity int
	keep     bool
}

// NewRunCommand creates the "run" cobra command.
func NewRunCommand() *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run <scenario>",
		Short: "Replay a scenario file",
		Long: `Replay a YAML or JSONC scenario against a container toolkit and check
the expectations of every step.

With --toolkit docker, managed containers that already exist are adopted
before the first step, so their content counts as tracked and gets no new
container. Scenarios that expect a given "created" count should run against
a daemon without tabsync containers. Containers created by the run are
removed when it ends unless --keep is given; adopted ones are kept.

Examples:
  tabsync run scenarios/tabs.yaml
  tabsync run --toolkit docker scenarios/tabs.jsonc
  tabsync run --capacity 2 --json scenarios/tabs.yaml`,

		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(cmd.Context(), args[0], flags)
		},
	}

	cmd.Flags().StringVar(&flags.toolkit, "toolkit", toolkitMemory, "Container toolkit: memory or docker")
	cmd.Flags().StringVar(&flags.image, "image", docker.DefaultImage, "Image for Docker containers")
	cmd.Flags().IntVar(&flags.capacity, "capacity", 0, "Maximum live containers for the memory toolkit (0 = unlimited)")
	cmd.Flags().BoolVar(&flags.keep, "keep", false, "Keep Docker containers after the run")

	return cmd
}

func runScenario(ctx context.Context, path string, flags *runFlags) error {
	sc, err := scenario.Load(path)
	if err != nil {
		return err
	}
	VerboseLog("Loaded scenario %q with %d steps", sc.Name, len(sc.Steps))

	var report *scenario.Report
	switch flags.toolkit {
	case toolkitMemory:
		report = runOnMemory(sc, flags)
	case toolkitDocker:
		report, err = runOnDocker(ctx, sc, flags)
		if err != nil {
			return err
		}
	default:
		return model.NewCLIError(model.ExitGeneralError,
			fmt.Sprintf("invalid toolkit %q: valid values are memory, docker", flags.toolkit))
	}

	printRunResult(report)

	if !report.Passed() {
		return model.NewCLIError(model.ExitExpectationFailed,
			fmt.Sprintf("scenario %q: %d of %d steps failed", sc.Name, report.Failures(), len(sc.Steps)))
	}
	return nil
}

func runOnMemory(sc *scenario.Scenario, flags *runFlags) *scenario.Report {
	tk := memory.New(memory.WithCapacity(flags.capacity))
	s := tabsync.New[string, *memory.Container](tk,
		tabsync.WithLogger[string, *memory.Container](logger))

	report := scenario.Run(s, sc)
	VerboseLog("Memory toolkit: %d events, %d live containers", len(tk.Events()), tk.Live())
	return report
}

func runOnDocker(ctx context.Context, sc *scenario.Scenario, flags *runFlags) (*scenario.Report, error) {
	sess, err := openDockerSession(ctx, flags.image)
	if err != nil {
		return nil, err
	}
	defer sess.Close()
	if len(sess.adopted) > 0 {
		VerboseLog("Adopted existing containers for %v", sess.adopted)
	}

	report := scenario.Run(sess.engine, sc)

	if !flags.keep {
		if err := cleanupRun(sess); err != nil {
			VerboseLog("Warning: cleanup after scenario failed: %v", err)
		}
	}
	return report, nil
}

// cleanupRun removes every content the run added, together with its
// container. Content adopted when the session opened is kept.
func cleanupRun(sess *dockerSession) error {
	keep := make(map[string]struct{}, len(sess.adopted))
	for _, c := range sess.adopted {
		keep[c] = struct{}{}
	}
	var errs []error
	for _, c := range sess.engine.Contents() {
		if _, ok := keep[c]; ok {
			continue
		}
		if _, err := sess.engine.RemoveTab(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// printRunResult outputs the report in text or JSON format.
func printRunResult(report *scenario.Report) {
	if IsJSONOutput() {
		printJSON(report)
		return
	}

	fmt.Printf("Scenario %s\n", Bold(report.Scenario))
	for _, st := range report.Steps {
		mark := Green("✔")
		if !st.Passed() {
			mark = Red("✘")
		}
		fmt.Printf("  %s %2d %-16s %-20s %-8s %s\n",
			mark, st.Index, st.Op, st.Target,
			FormatDelta(st.Created, st.Pruned),
			Dim(FormatContents(st.Contents)))
		for _, f := range st.Failures {
			fmt.Printf("       %s %s\n", Yellow("expected"), f)
		}
		if st.Err != "" {
			fmt.Printf("       %s %s\n", Red("error"), st.Err)
		}
	}

	if report.Passed() {
		fmt.Printf("%s all %d steps passed\n", Green("PASS"), len(report.Steps))
	} else {
		fmt.Printf("%s %d of %d steps failed\n", Red("FAIL"), report.Failures(), len(report.Steps))
	}
}
