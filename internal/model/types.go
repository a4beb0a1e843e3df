package model

import (
	"fmt"
	"regexp"
	"strings"
)

// ContainerStatus is the coarse state of a managed container.
type ContainerStatus string

const (
	// StatusRunning means the container's process is up.
	StatusRunning ContainerStatus = "running"

	// StatusStopped covers created, exited and paused containers.
	StatusStopped ContainerStatus = "stopped"

	// StatusVacant means the container exists but wraps no content.
	StatusVacant ContainerStatus = "vacant"
)

// String returns the string representation of ContainerStatus.
func (s ContainerStatus) String() string {
	return string(s)
}

// IsValid checks whether the ContainerStatus value is one of the
// predefined valid states.
func (s ContainerStatus) IsValid() bool {
	switch s {
	case StatusRunning, StatusStopped, StatusVacant:
		return true
	default:
		return false
	}
}

// ParseContainerStatus converts a string to a ContainerStatus.
// Returns an error if the string does not match any valid status.
func ParseContainerStatus(s string) (ContainerStatus, error) {
	status := ContainerStatus(strings.ToLower(s))
	if !status.IsValid() {
		return "", fmt.Errorf("invalid container status: %q (valid: running, stopped, vacant)", s)
	}
	return status, nil
}

// contentIDRegex matches content IDs: alphanumeric, dots, underscores
// and hyphens, starting and ending with alphanumeric. The same rules make
// an ID safe to embed in a Docker container name.
var contentIDRegex = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9._-]*[a-zA-Z0-9])?$`)

// maxContentIDLen keeps generated container names well under Docker's limit.
const maxContentIDLen = 63

// ValidateContentID checks if id is usable as a content handle.
func ValidateContentID(id string) error {
	if id == "" {
		return fmt.Errorf("content ID must not be empty")
	}
	if len(id) > maxContentIDLen {
		return fmt.Errorf("content ID %q is longer than %d characters", id, maxContentIDLen)
	}
	if !contentIDRegex.MatchString(id) {
		return fmt.Errorf("invalid content ID %q: must contain only alphanumerics, '.', '_' and '-', and start/end with alphanumeric", id)
	}
	return nil
}

// ValidateContentIDs validates every ID in ids.
func ValidateContentIDs(ids []string) error {
	for _, id := range ids {
		if err := ValidateContentID(id); err != nil {
			return err
		}
	}
	return nil
}

// ContainerInfo holds runtime information about a managed Docker container.
// It is fetched from the Docker API, never persisted.
type ContainerInfo struct {
	// ContainerID is the Docker container identifier.
	ContainerID string `json:"containerId"`

	// ContainerName is the Docker name without the leading "/".
	ContainerName string `json:"containerName"`

	// Content is the content the container wraps, empty when vacant.
	Content string `json:"content,omitempty"`

	// State is the raw Docker state ("running", "exited", "created", ...).
	State string `json:"state"`

	// Image is the image the container was created from.
	Image string `json:"image,omitempty"`

	// Labels is the full set of Docker labels on the container.
	Labels map[string]string `json:"labels,omitempty"`
}

// Status folds the Docker state and the content into a ContainerStatus.
func (c ContainerInfo) Status() ContainerStatus {
	if c.Content == "" {
		return StatusVacant
	}
	if c.State == "running" {
		return StatusRunning
	}
	return StatusStopped
}

// ExitCode defines the CLI exit codes.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitScenarioNotFound indicates the scenario file does not exist.
	ExitScenarioNotFound ExitCode = 2

	// ExitDockerNotRunning indicates the Docker daemon is not accessible.
	ExitDockerNotRunning ExitCode = 3

	// ExitExpectationFailed indicates a scenario ran but at least one
	// expectation did not hold.
	ExitExpectationFailed ExitCode = 4

	// ExitContentNotFound indicates the named content is not tracked.
	ExitContentNotFound ExitCode = 5

	// ExitUserCancelled indicates the user cancelled an interactive prompt.
	ExitUserCancelled ExitCode = 6
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
