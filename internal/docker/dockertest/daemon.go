// Package dockertest provides an in-memory Docker daemon for tests.
//
// Daemon implements the subset of the Docker SDK client that tabsync calls
// (docker.API). It keeps containers in a slice, honours label filters on
// list, and reports missing objects and name clashes with the containerd
// error classes the real client uses, so callers can branch on
// cerrdefs.IsNotFound and cerrdefs.IsConflict exactly as they would in
// production.
package dockertest

import (
	"context"
	"fmt"
	"io"
	"strings"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// Container is one container known to a Daemon. Tests may change State
// directly, e.g. to simulate a host reboot.
type Container struct {
	ID      string
	Name    string
	Image   string
	State   string
	Labels  map[string]string
	Restart string

	removed bool
}

// Daemon is an in-memory Docker daemon.
type Daemon struct {
	Containers []*Container
	Images     map[string]bool

	// Pulls records every image reference passed to ImagePull.
	Pulls []string
	// Calls records every call in order ("list", "create <name>",
	// "start <id>", "rename <name>", "remove <id>").
	Calls []string

	// FailStart and FailRename make the matching call fail.
	FailStart  bool
	FailRename bool

	nextID int
}

// New returns a Daemon with the given images already present.
func New(images ...string) *Daemon {
	d := &Daemon{Images: make(map[string]bool)}
	for _, img := range images {
		d.Images[img] = true
	}
	return d
}

// Live returns the containers that have not been removed.
func (d *Daemon) Live() []*Container {
	var out []*Container
	for _, c := range d.Containers {
		if !c.removed {
			out = append(out, c)
		}
	}
	return out
}

// Names returns the names of the live containers.
func (d *Daemon) Names() []string {
	var out []string
	for _, c := range d.Live() {
		out = append(out, c.Name)
	}
	return out
}

// ByName returns the live container called name.
func (d *Daemon) ByName(name string) (*Container, bool) {
	for _, c := range d.Live() {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

func (d *Daemon) find(id string) (*Container, error) {
	for _, c := range d.Live() {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, fmt.Errorf("no such container: %s: %w", id, cerrdefs.ErrNotFound)
}

// ContainerList returns the live containers matching the label filters.
func (d *Daemon) ContainerList(_ context.Context, options container.ListOptions) ([]container.Summary, error) {
	d.Calls = append(d.Calls, "list")
	var out []container.Summary
	for _, c := range d.Live() {
		if !matchLabels(options, c.Labels) {
			continue
		}
		sum := container.Summary{
			ID:     c.ID,
			Names:  []string{"/" + c.Name},
			Image:  c.Image,
			Labels: c.Labels,
		}
		setString(&sum.State, c.State)
		out = append(out, sum)
	}
	return out, nil
}

// setString assigns v to a string-kinded field whatever its named type.
func setString[T ~string](dst *T, v string) {
	*dst = T(v)
}

func matchLabels(options container.ListOptions, labels map[string]string) bool {
	for _, want := range options.Filters.Get("label") {
		k, v, _ := strings.Cut(want, "=")
		if labels[k] != v {
			return false
		}
	}
	return true
}

// ContainerCreate adds a container in the "created" state. It fails with
// a not-found error when the image is absent and with a conflict when the
// name is taken.
func (d *Daemon) ContainerCreate(_ context.Context, config *container.Config, hostConfig *container.HostConfig,
	_ *network.NetworkingConfig, _ *ocispec.Platform, containerName string) (container.CreateResponse, error) {
	d.Calls = append(d.Calls, "create "+containerName)
	if !d.Images[config.Image] {
		return container.CreateResponse{}, fmt.Errorf("no such image: %s: %w", config.Image, cerrdefs.ErrNotFound)
	}
	if _, taken := d.ByName(containerName); taken {
		return container.CreateResponse{}, fmt.Errorf("name in use: %s: %w", containerName, cerrdefs.ErrConflict)
	}
	d.nextID++
	c := &Container{
		ID:     fmt.Sprintf("%064d", d.nextID),
		Name:   containerName,
		Image:  config.Image,
		State:  "created",
		Labels: config.Labels,
	}
	if hostConfig != nil {
		c.Restart = string(hostConfig.RestartPolicy.Name)
	}
	d.Containers = append(d.Containers, c)
	return container.CreateResponse{ID: c.ID}, nil
}

// ContainerStart moves the container to "running".
func (d *Daemon) ContainerStart(_ context.Context, containerID string, _ container.StartOptions) error {
	d.Calls = append(d.Calls, "start "+containerID)
	if d.FailStart {
		return fmt.Errorf("start failed")
	}
	c, err := d.find(containerID)
	if err != nil {
		return err
	}
	c.State = "running"
	return nil
}

// ContainerRename renames the container, failing with a conflict when
// another live container already has the name.
func (d *Daemon) ContainerRename(_ context.Context, containerID, newContainerName string) error {
	d.Calls = append(d.Calls, "rename "+newContainerName)
	if d.FailRename {
		return fmt.Errorf("rename failed")
	}
	c, err := d.find(containerID)
	if err != nil {
		return err
	}
	if other, taken := d.ByName(newContainerName); taken && other != c {
		return fmt.Errorf("name in use: %s: %w", newContainerName, cerrdefs.ErrConflict)
	}
	c.Name = newContainerName
	return nil
}

// ContainerRemove marks the container removed.
func (d *Daemon) ContainerRemove(_ context.Context, containerID string, _ container.RemoveOptions) error {
	d.Calls = append(d.Calls, "remove "+containerID)
	c, err := d.find(containerID)
	if err != nil {
		return err
	}
	c.removed = true
	return nil
}

// ImagePull makes refStr available and returns a one-line progress stream.
func (d *Daemon) ImagePull(_ context.Context, refStr string, _ image.PullOptions) (io.ReadCloser, error) {
	d.Pulls = append(d.Pulls, refStr)
	d.Images[refStr] = true
	return io.NopCloser(strings.NewReader(`{"status":"Downloaded"}`)), nil
}
