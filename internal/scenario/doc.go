// Package scenario loads scripted sequences of tabsync operations and
// replays them against an engine.
//
// Scenario files are YAML (.yaml, .yml) or JSONC (.json, .jsonc). JSONC
// comments and trailing commas are stripped with github.com/tidwall/jsonc
// before the standard encoding/json parser runs.
//
// A scenario is a list of steps. Each step names an operation and its
// target, and may carry expectations that are checked right after the
// step runs:
//
//	name: remove and re-ensure
//	steps:
//	  - op: ensure
//	    contents: [A, B]
//	    expect: {created: 2}
//	  - op: remove
//	    content: A
//	    expect: {contents: [B]}
//	  - op: ensure
//	    contents: [A, B]
//	    expect: {created: 1}
package scenario
