package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/tabsync/internal/tabsync"
	"github.com/shinji-kodama/tabsync/internal/toolkit/memory"
)

func ptr[T any](v T) *T { return &v }

func newEngine(opts ...memory.Option) *tabsync.Sync[string, *memory.Container] {
	return tabsync.New[string, *memory.Container](memory.New(opts...))
}

func TestRun_ReferenceScenario(t *testing.T) {
	sc, err := Parse([]byte(yamlScenario), FormatYAML)
	require.NoError(t, err)

	report := Run(newEngine(), sc)

	assert.True(t, report.Passed(), "%+v", report.Steps)
	require.Len(t, report.Steps, 3)
	assert.Equal(t, []string{"B", "A"}, report.Steps[2].Contents)
	assert.Equal(t, 2, report.Steps[2].Containers)
	assert.Equal(t, 3, report.Steps[2].Index)
}

func TestRun_AllOps(t *testing.T) {
	sc := &Scenario{Name: "all", Steps: []Step{
		{Op: OpAdd, Content: "a", Expect: &Expect{Result: ptr(true), Containers: ptr(0)}},
		{Op: OpAdd, Content: "a", Expect: &Expect{Result: ptr(false)}},
		{Op: OpEnsure, Contents: []string{"a", "b", "c"}, Expect: &Expect{Created: ptr(3), Current: ptr("a")}},
		{Op: OpAddTab, Content: "d", Expect: &Expect{Result: ptr(true), Created: ptr(1)}},
		{Op: OpSelect, Content: "b", Expect: &Expect{Result: ptr(true), Current: ptr("b")}},
		{Op: OpRemoveContainer, Content: "b", Expect: &Expect{
			Result: ptr(true), Contents: []string{"a", "c", "d"}, Current: ptr("c"),
		}},
		{Op: OpRemoveContainer, Content: "b", Expect: &Expect{Result: ptr(false)}},
		{Op: OpPrune, Contents: []string{"a", "d"}, Expect: &Expect{Pruned: ptr(1), Containers: ptr(2)}},
		{Op: OpReconcile, Contents: []string{"d", "e"}, Expect: &Expect{
			Created: ptr(1), Pruned: ptr(1), Contents: []string{"d", "e"},
		}},
		{Op: OpRemove, Content: "zzz", Expect: &Expect{Result: ptr(false), Pruned: ptr(0)}},
		{Op: OpPrune, Contents: nil, Expect: &Expect{Pruned: ptr(2), Contents: []string{}, Current: ptr("")}},
	}}

	report := Run(newEngine(), sc)

	for _, st := range report.Steps {
		assert.True(t, st.Passed(), "step %d %s %s: %v %s", st.Index, st.Op, st.Target, st.Failures, st.Err)
	}
	assert.Len(t, report.Steps, len(sc.Steps))
}

func TestRun_ExpectationFailure(t *testing.T) {
	sc := &Scenario{Name: "wrong", Steps: []Step{
		{Op: OpEnsure, Contents: []string{"a"}, Expect: &Expect{Created: ptr(2), Contents: []string{"b"}}},
		{Op: OpEnsure, Contents: []string{"a"}, Expect: &Expect{Created: ptr(0)}},
	}}

	report := Run(newEngine(), sc)

	assert.False(t, report.Passed())
	assert.Equal(t, 1, report.Failures())
	require.Len(t, report.Steps, 2, "expectation failures do not stop the run")
	assert.Equal(t, []string{
		"created: want 2, got 1",
		"contents: want [b], got [a]",
	}, report.Steps[0].Failures)
	assert.True(t, report.Steps[1].Passed())
}

func TestRun_ToolkitErrorStops(t *testing.T) {
	sc := &Scenario{Name: "full", Steps: []Step{
		{Op: OpEnsure, Contents: []string{"a", "b"}},
		{Op: OpEnsure, Contents: []string{"a"}},
	}}

	report := Run(newEngine(memory.WithCapacity(1)), sc)

	require.Len(t, report.Steps, 1)
	assert.Contains(t, report.Steps[0].Err, "capacity exhausted")
	assert.Equal(t, 1, report.Steps[0].Created)
	assert.False(t, report.Passed())
}

func TestRun_BundledScenarios(t *testing.T) {
	for _, path := range []string{
		"../../scenarios/tabs.yaml",
		"../../scenarios/prune.jsonc",
	} {
		t.Run(path, func(t *testing.T) {
			sc, err := Load(path)
			require.NoError(t, err)

			report := Run(newEngine(), sc)
			assert.True(t, report.Passed(), "%+v", report.Steps)
			assert.Len(t, report.Steps, len(sc.Steps))
		})
	}
}

func TestRun_Move(t *testing.T) {
	sc, err := Parse([]byte(`
steps:
  - op: ensure
    contents: [A, B, C]
  - op: move
    content: C
    index: 0
    expect: {result: true, contents: [C, A, B], current: A}
  - op: move
    content: Z
    index: 0
    expect: {result: false, contents: [C, A, B]}
`), FormatYAML)
	require.NoError(t, err)

	report := Run(newEngine(), sc)
	assert.True(t, report.Passed(), "%+v", report.Steps)
}
