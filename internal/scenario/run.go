package scenario

import (
	"fmt"
	"slices"

	"github.com/shinji-kodama/tabsync/internal/tabsync"
)

// StepResult is the outcome of one step.
type StepResult struct {
	Index  int    `json:"index"`
	Op     Op     `json:"op"`
	Target string `json:"target"`

	// Result is the boolean returned by single-item operations.
	Result  bool `json:"result"`
	Created int  `json:"created"`
	Pruned  int  `json:"pruned"`

	// State after the step.
	Contents   []string `json:"contents"`
	Containers int      `json:"containers"`
	Current    string   `json:"current,omitempty"`

	Failures []string `json:"failures,omitempty"`
	Err      string   `json:"error,omitempty"`
}

// Passed reports whether the step ran and met its expectations.
func (r StepResult) Passed() bool {
	return r.Err == "" && len(r.Failures) == 0
}

// Report is the outcome of a whole run.
type Report struct {
	Scenario string       `json:"scenario"`
	Steps    []StepResult `json:"steps"`
}

// Passed reports whether every step passed.
func (r *Report) Passed() bool {
	for _, st := range r.Steps {
		if !st.Passed() {
			return false
		}
	}
	return true
}

// Failures returns the number of failed steps.
func (r *Report) Failures() int {
	n := 0
	for _, st := range r.Steps {
		if !st.Passed() {
			n++
		}
	}
	return n
}

// Run replays sc against s. Expectation failures are recorded and the run
// continues; a toolkit error is recorded and stops the run, since later
// steps would act on a state nobody planned for.
func Run[W comparable](s *tabsync.Sync[string, W], sc *Scenario) *Report {
	report := &Report{Scenario: sc.Name}
	for i, st := range sc.Steps {
		res := apply(s, st)
		res.Index = i + 1
		report.Steps = append(report.Steps, res)
		if res.Err != "" {
			break
		}
	}
	return report
}

func apply[W comparable](s *tabsync.Sync[string, W], st Step) StepResult {
	res := StepResult{Op: st.Op, Target: st.Target()}

	var err error
	switch st.Op {
	case OpEnsure:
		res.Created, err = s.EnsureContainers(st.Contents)
	case OpAdd:
		res.Result = s.AddContent(st.Content)
	case OpAddTab:
		res.Result, err = s.AddTab(st.Content)
		if res.Result && err == nil {
			res.Created = 1
		}
	case OpRemove:
		res.Result, err = s.RemoveTab(st.Content)
		if res.Result {
			res.Pruned = 1
		}
	case OpRemoveContainer:
		if w, ok := s.ContainerOf(st.Content); ok {
			res.Result, err = s.RemoveContainer(w)
			if res.Result {
				res.Pruned = 1
			}
		}
	case OpPrune:
		res.Pruned, err = s.Prune(st.Contents)
	case OpReconcile:
		var r tabsync.Result
		r, err = s.Reconcile(st.Contents)
		res.Created, res.Pruned = r.Created, r.Pruned
	case OpSelect:
		res.Result = s.SetCurrent(st.Content)
	case OpMove:
		res.Result = s.MoveContent(st.Content, *st.Index)
	default:
		err = fmt.Errorf("unknown op %q", st.Op)
	}
	if err != nil {
		res.Err = err.Error()
	}

	res.Contents = s.Contents()
	res.Containers = len(s.Containers())
	res.Current, _ = s.Current()
	res.Failures = check(st.Expect, res)
	return res
}

// check compares res against exp and describes every mismatch.
func check(exp *Expect, res StepResult) []string {
	if exp == nil {
		return nil
	}
	var failures []string
	if exp.Created != nil && *exp.Created != res.Created {
		failures = append(failures, fmt.Sprintf("created: want %d, got %d", *exp.Created, res.Created))
	}
	if exp.Pruned != nil && *exp.Pruned != res.Pruned {
		failures = append(failures, fmt.Sprintf("pruned: want %d, got %d", *exp.Pruned, res.Pruned))
	}
	if exp.Result != nil && *exp.Result != res.Result {
		failures = append(failures, fmt.Sprintf("result: want %t, got %t", *exp.Result, res.Result))
	}
	if exp.Contents != nil && !slices.Equal(exp.Contents, res.Contents) {
		failures = append(failures, fmt.Sprintf("contents: want %v, got %v", exp.Contents, res.Contents))
	}
	if exp.Containers != nil && *exp.Containers != res.Containers {
		failures = append(failures, fmt.Sprintf("containers: want %d, got %d", *exp.Containers, res.Containers))
	}
	if exp.Current != nil && *exp.Current != res.Current {
		failures = append(failures, fmt.Sprintf("current: want %q, got %q", *exp.Current, res.Current))
	}
	return failures
}
