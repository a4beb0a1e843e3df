// Package memory implements an in-process container toolkit.
//
// It stands in for a host UI toolkit: containers are plain structs with a
// single child slot, and every call is appended to an event log so callers
// can inspect exactly what the engine asked for.
package memory

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrExhausted is returned by Create when the capacity is reached.
	ErrExhausted = errors.New("container capacity exhausted")

	// ErrDestroyed is returned when a destroyed container is used again.
	ErrDestroyed = errors.New("container already destroyed")

	// ErrOccupied is returned by Attach when the container already holds
	// a different child.
	ErrOccupied = errors.New("container already holds a child")
)

// Op names a toolkit call in the event log.
type Op string

const (
	OpCreate  Op = "create"
	OpAttach  Op = "attach"
	OpDetach  Op = "detach"
	OpDestroy Op = "destroy"
)

// Event is one entry of the log.
type Event struct {
	Op        Op     `json:"op" yaml:"op"`
	Container string `json:"container" yaml:"container"`
	Content   string `json:"content,omitempty" yaml:"content,omitempty"`
}

// Container is a wrapper with at most one child.
type Container struct {
	ID        string
	child     string
	hasChild  bool
	destroyed bool
}

// Child returns the content this container holds.
func (c *Container) Child() (string, bool) {
	return c.child, c.hasChild
}

// Destroyed reports whether the toolkit has released the container.
func (c *Container) Destroyed() bool {
	return c.destroyed
}

func (c *Container) String() string {
	return c.ID
}

// Toolkit creates and tracks Containers. Contents are plain strings.
type Toolkit struct {
	capacity int
	live     int
	events   []Event
}

// Option configures a Toolkit.
type Option func(*Toolkit)

// WithCapacity limits the number of live containers. Zero means no limit.
func WithCapacity(n int) Option {
	return func(t *Toolkit) {
		t.capacity = n
	}
}

// New returns an empty Toolkit.
func New(opts ...Option) *Toolkit {
	t := &Toolkit{}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Create allocates a container with a random ID.
func (t *Toolkit) Create() (*Container, error) {
	if t.capacity > 0 && t.live >= t.capacity {
		return nil, fmt.Errorf("%w: %d live", ErrExhausted, t.live)
	}
	c := &Container{ID: uuid.NewString()}
	t.live++
	t.record(OpCreate, c, "")
	return c, nil
}

// Attach makes content the child of c.
func (t *Toolkit) Attach(content string, c *Container) error {
	if c.destroyed {
		return fmt.Errorf("attach %q to %s: %w", content, c.ID, ErrDestroyed)
	}
	if c.hasChild && c.child != content {
		return fmt.Errorf("attach %q to %s: %w", content, c.ID, ErrOccupied)
	}
	c.child, c.hasChild = content, true
	t.record(OpAttach, c, content)
	return nil
}

// Detach clears the child of c.
func (t *Toolkit) Detach(content string, c *Container) error {
	if c.destroyed {
		return fmt.Errorf("detach %q from %s: %w", content, c.ID, ErrDestroyed)
	}
	c.child, c.hasChild = "", false
	t.record(OpDetach, c, content)
	return nil
}

// Destroy releases c.
func (t *Toolkit) Destroy(c *Container) error {
	if c.destroyed {
		return fmt.Errorf("destroy %s: %w", c.ID, ErrDestroyed)
	}
	c.destroyed = true
	c.hasChild = false
	t.live--
	t.record(OpDestroy, c, "")
	return nil
}

// Live returns the number of containers created and not yet destroyed.
func (t *Toolkit) Live() int {
	return t.live
}

// Events returns a copy of the event log.
func (t *Toolkit) Events() []Event {
	return append([]Event(nil), t.events...)
}

// Count returns how many events of the given op were recorded.
func (t *Toolkit) Count(op Op) int {
	n := 0
	for _, e := range t.events {
		if e.Op == op {
			n++
		}
	}
	return n
}

func (t *Toolkit) record(op Op, c *Container, content string) {
	t.events = append(t.events, Event{Op: op, Container: c.ID, Content: content})
}
