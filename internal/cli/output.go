package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Color helpers for text output. fatih/color disables itself when stdout
// is not a terminal.
var (
	Bold   = color.New(color.Bold).SprintFunc()
	Dim    = color.New(color.Faint).SprintFunc()
	Green  = color.New(color.FgGreen).SprintFunc()
	Yellow = color.New(color.FgYellow).SprintFunc()
	Red    = color.New(color.FgRed).SprintFunc()
)

// printJSON writes v as indented JSON on stdout.
func printJSON(v interface{}) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(data))
}

// FormatContents renders a content list as "[a b c]", or "-" when empty.
func FormatContents(contents []string) string {
	if len(contents) == 0 {
		return "-"
	}
	return "[" + strings.Join(contents, " ") + "]"
}

// FormatDelta renders created/removed counts as "+2 -1", or "=" when
// nothing changed.
func FormatDelta(created, removed int) string {
	var parts []string
	if created > 0 {
		parts = append(parts, Green(fmt.Sprintf("+%d", created)))
	}
	if removed > 0 {
		parts = append(parts, Red(fmt.Sprintf("-%d", removed)))
	}
	if len(parts) == 0 {
		return Dim("=")
	}
	return strings.Join(parts, " ")
}
