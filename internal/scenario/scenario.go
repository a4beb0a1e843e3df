package scenario

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/tabsync/internal/model"
)

// Op is a step operation.
type Op string

const (
	OpEnsure          Op = "ensure"
	OpAdd             Op = "add"
	OpAddTab          Op = "add-tab"
	OpRemove          Op = "remove"
	OpRemoveContainer Op = "remove-container"
	OpPrune           Op = "prune"
	OpReconcile       Op = "reconcile"
	OpSelect          Op = "select"
	OpMove            Op = "move"
)

// takesList reports whether op works on a list of contents rather than a
// single one.
func (o Op) takesList() bool {
	switch o {
	case OpEnsure, OpPrune, OpReconcile:
		return true
	default:
		return false
	}
}

// IsValid reports whether o is a known operation.
func (o Op) IsValid() bool {
	switch o {
	case OpEnsure, OpAdd, OpAddTab, OpRemove, OpRemoveContainer, OpPrune, OpReconcile, OpSelect, OpMove:
		return true
	default:
		return false
	}
}

// Scenario is a named list of steps.
type Scenario struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Steps       []Step `yaml:"steps" json:"steps"`
}

// Step is a single operation.
type Step struct {
	Op Op `yaml:"op" json:"op"`

	// Content is the target of single-item operations.
	Content string `yaml:"content,omitempty" json:"content,omitempty"`

	// Contents is the authoritative list for ensure, prune and reconcile.
	Contents []string `yaml:"contents,omitempty" json:"contents,omitempty"`

	// Index is the destination position of a move step.
	Index *int `yaml:"index,omitempty" json:"index,omitempty"`

	Expect *Expect `yaml:"expect,omitempty" json:"expect,omitempty"`
}

// Target returns a short description of what the step acts on.
func (s Step) Target() string {
	if s.Op.takesList() {
		return "[" + strings.Join(s.Contents, " ") + "]"
	}
	if s.Op == OpMove && s.Index != nil {
		return fmt.Sprintf("%s@%d", s.Content, *s.Index)
	}
	return s.Content
}

// Expect lists what must hold after a step. Nil fields are not checked.
type Expect struct {
	// Created is the number of containers the step created.
	Created *int `yaml:"created,omitempty" json:"created,omitempty"`

	// Pruned is the number of contents the step removed.
	Pruned *int `yaml:"pruned,omitempty" json:"pruned,omitempty"`

	// Result is the boolean an add, add-tab, remove, remove-container,
	// select or move step returned.
	Result *bool `yaml:"result,omitempty" json:"result,omitempty"`

	// Contents is the full tracked content list, in order.
	Contents []string `yaml:"contents,omitempty" json:"contents,omitempty"`

	// Containers is the number of tracked containers.
	Containers *int `yaml:"containers,omitempty" json:"containers,omitempty"`

	// Current is the selected content; "" expects no selection.
	Current *string `yaml:"current,omitempty" json:"current,omitempty"`
}

// Format is a scenario file encoding.
type Format string

const (
	FormatYAML  Format = "yaml"
	FormatJSONC Format = "jsonc"
)

// FormatFromPath picks the format from the file extension. Anything that
// is not .json or .jsonc is read as YAML.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		return FormatJSONC
	default:
		return FormatYAML
	}
}

// Load reads, parses and validates the scenario at path.
//
// Returns a CLIError with ExitScenarioNotFound if the file does not exist.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, model.WrapCLIError(
				model.ExitScenarioNotFound,
				fmt.Sprintf("scenario not found: %s", path),
				err,
			)
		}
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}

	sc, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse scenario at %s: %w", path, err)
	}
	if sc.Name == "" {
		sc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return sc, nil
}

// Parse decodes and validates a scenario.
func Parse(data []byte, format Format) (*Scenario, error) {
	var sc Scenario
	switch format {
	case FormatJSONC:
		if err := json.Unmarshal(jsonc.ToJSON(data), &sc); err != nil {
			return nil, err
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &sc); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported scenario format %q", format)
	}

	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks every step for a known op, the target it needs, and
// well-formed content IDs.
func (sc *Scenario) Validate() error {
	if len(sc.Steps) == 0 {
		return fmt.Errorf("scenario %q has no steps", sc.Name)
	}
	for i, st := range sc.Steps {
		if err := st.validate(); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return nil
}

func (s Step) validate() error {
	if !s.Op.IsValid() {
		return fmt.Errorf("unknown op %q", s.Op)
	}
	switch {
	case s.Op == OpMove && s.Index == nil:
		return fmt.Errorf("move needs an index")
	case s.Op != OpMove && s.Index != nil:
		return fmt.Errorf("%s takes no index", s.Op)
	}
	if s.Op.takesList() {
		if s.Content != "" {
			return fmt.Errorf("%s takes contents, not content", s.Op)
		}
		return model.ValidateContentIDs(s.Contents)
	}
	if len(s.Contents) > 0 {
		return fmt.Errorf("%s takes content, not contents", s.Op)
	}
	return model.ValidateContentID(s.Content)
}
