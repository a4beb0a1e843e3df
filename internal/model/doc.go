// Package model defines the domain types shared by the tabsync packages.
//
// It holds the content ID rules, the runtime view of a managed Docker
// container, and the CLI exit codes together with CLIError, the error
// type the CLI layer translates into a process exit status.
package model
