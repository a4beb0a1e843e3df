package scenario

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/tabsync/internal/model"
)

const yamlScenario = `
name: remove and re-ensure
steps:
  - op: ensure
    contents: [A, B]
    expect: {created: 2, containers: 2}
  - op: remove
    content: A
    expect:
      result: true
      contents: [B]
  - op: ensure
    contents: [A, B]
    expect: {created: 1}
`

const jsoncScenario = `{
  // comments are allowed
  "name": "jsonc",
  "steps": [
    {"op": "add-tab", "content": "clock"},
    {"op": "select", "content": "clock", "expect": {"result": true, "current": "clock"}},
  ],
}`

func TestParse_YAML(t *testing.T) {
	sc, err := Parse([]byte(yamlScenario), FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, "remove and re-ensure", sc.Name)
	require.Len(t, sc.Steps, 3)
	assert.Equal(t, OpEnsure, sc.Steps[0].Op)
	assert.Equal(t, []string{"A", "B"}, sc.Steps[0].Contents)
	require.NotNil(t, sc.Steps[0].Expect.Created)
	assert.Equal(t, 2, *sc.Steps[0].Expect.Created)
	assert.Nil(t, sc.Steps[0].Expect.Pruned)
	assert.Equal(t, []string{"B"}, sc.Steps[1].Expect.Contents)
}

func TestParse_JSONC(t *testing.T) {
	sc, err := Parse([]byte(jsoncScenario), FormatJSONC)
	require.NoError(t, err)

	require.Len(t, sc.Steps, 2)
	assert.Equal(t, OpAddTab, sc.Steps[0].Op)
	assert.Equal(t, "clock", sc.Steps[0].Content)
	require.NotNil(t, sc.Steps[1].Expect.Current)
	assert.Equal(t, "clock", *sc.Steps[1].Expect.Current)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"no steps", "name: empty\n", "no steps"},
		{"unknown op", "steps: [{op: explode, content: a}]", "unknown op"},
		{"missing content", "steps: [{op: remove}]", "must not be empty"},
		{"list op with content", "steps: [{op: ensure, content: a}]", "takes contents"},
		{"single op with list", "steps: [{op: remove, contents: [a]}]", "takes content"},
		{"bad content id", "steps: [{op: ensure, contents: [ok, 'not ok']}]", "invalid content ID"},
		{"move without index", "steps: [{op: move, content: a}]", "needs an index"},
		{"index on other op", "steps: [{op: remove, content: a, index: 0}]", "takes no index"},
		{"malformed yaml", "steps: [", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), FormatYAML)
			require.Error(t, err)
			if tt.want != "" {
				assert.ErrorContains(t, err, tt.want)
			}
		})
	}
}

func TestParse_UnknownFormat(t *testing.T) {
	_, err := Parse([]byte(yamlScenario), Format("toml"))
	assert.ErrorContains(t, err, "unsupported")
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatJSONC, FormatFromPath("a.json"))
	assert.Equal(t, FormatJSONC, FormatFromPath("a.JSONC"))
	assert.Equal(t, FormatYAML, FormatFromPath("a.yaml"))
	assert.Equal(t, FormatYAML, FormatFromPath("a.yml"))
	assert.Equal(t, FormatYAML, FormatFromPath("scenario"))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "tabs.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(jsoncScenario), 0o644))
	sc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "jsonc", sc.Name)

	unnamed := filepath.Join(dir, "unnamed.yaml")
	require.NoError(t, os.WriteFile(unnamed, []byte("steps: [{op: add, content: a}]"), 0o644))
	sc, err = Load(unnamed)
	require.NoError(t, err)
	assert.Equal(t, "unnamed", sc.Name, "name defaults to the file name")
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitScenarioNotFound, cliErr.Code)
}

func TestStep_Target(t *testing.T) {
	assert.Equal(t, "[A B]", Step{Op: OpEnsure, Contents: []string{"A", "B"}}.Target())
	assert.Equal(t, "[]", Step{Op: OpPrune}.Target())
	assert.Equal(t, "A", Step{Op: OpRemove, Content: "A"}.Target())
	assert.Equal(t, "A@2", Step{Op: OpMove, Content: "A", Index: ptr(2)}.Target())
}
