// container.go implements the Docker container operations tabsync needs:
// list managed containers, create-and-start, rename and remove.
//
// All managed containers carry the "tabsync.managed-by" label, which keeps
// them apart from unrelated containers on the same host.
package docker

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"

	"github.com/shinji-kodama/tabsync/internal/model"
)

// DefaultImage is the image vacant and attached containers run. It only
// needs to stay alive; the pause image does exactly that.
const DefaultImage = "registry.k8s.io/pause:3.10"

// ListManagedContainers returns every container carrying the tabsync
// management label, stopped ones included, sorted by name.
func ListManagedContainers(ctx context.Context, api API) ([]model.ContainerInfo, error) {
	containers, err := api.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: ManagedFilter(),
	})
	if err != nil {
		return nil, model.WrapCLIError(
			model.ExitDockerNotRunning,
			"failed to list Docker containers",
			err,
		)
	}

	result := make([]model.ContainerInfo, 0, len(containers))
	for _, c := range containers {
		result = append(result, containerToInfo(c))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ContainerName < result[j].ContainerName
	})
	return result, nil
}

// containerToInfo converts a Docker API summary to a ContainerInfo.
func containerToInfo(c container.Summary) model.ContainerInfo {
	name := ""
	if len(c.Names) > 0 {
		name = strings.TrimPrefix(c.Names[0], "/")
	}
	content, _ := ContentFromName(name)

	return model.ContainerInfo{
		ContainerID:   c.ID,
		ContainerName: name,
		Content:       content,
		State:         string(c.State),
		Image:         c.Image,
		Labels:        c.Labels,
	}
}

// FindByContent returns the container wrapping content.
func FindByContent(containers []model.ContainerInfo, content string) (model.ContainerInfo, bool) {
	for _, c := range containers {
		if c.Content == content {
			return c, true
		}
	}
	return model.ContainerInfo{}, false
}

// CreateContainer creates a labeled container from imageName and starts
// it. When the image is not present locally it is pulled and the create
// is retried once. It returns the container ID.
//
// The container gets the "unless-stopped" restart policy, so the daemon
// brings it back after its own restart or a host reboot. A container that
// is stopped anyway (by hand, or created while the daemon was going down)
// is started again by Toolkit.Wake on the next sync.
func CreateContainer(ctx context.Context, api API, imageName, name string, labels map[string]string) (string, error) {
	cfg := &container.Config{
		Image:  imageName,
		Labels: labels,
	}
	hostCfg := &container.HostConfig{
		RestartPolicy: container.RestartPolicy{Name: container.RestartPolicyUnlessStopped},
	}

	resp, err := api.ContainerCreate(ctx, cfg, hostCfg, nil, nil, name)
	if cerrdefs.IsNotFound(err) {
		// The daemon reports a missing image as not-found. Pull it and
		// try once more; any other failure is returned as is.
		if pullErr := pullImage(ctx, api, imageName); pullErr != nil {
			return "", pullErr
		}
		resp, err = api.ContainerCreate(ctx, cfg, hostCfg, nil, nil, name)
	}
	if err != nil {
		return "", model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to create container %q", name),
			err,
		)
	}

	if err := api.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		// Do not leave a created-but-dead container behind.
		_ = api.ContainerRemove(ctx, resp.ID, container.RemoveOptions{Force: true})
		return "", model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to start container %q", name),
			err,
		)
	}
	return resp.ID, nil
}

// StartContainer starts an existing container. Starting a container that
// is already running is not an error for the Docker API.
func StartContainer(ctx context.Context, api API, containerID string) error {
	if err := api.ContainerStart(ctx, containerID, container.StartOptions{}); err != nil {
		return model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to start container %q", shortID(containerID)),
			err,
		)
	}
	return nil
}

// pullImage pulls ref and drains the progress stream, which is what
// actually drives the pull to completion.
func pullImage(ctx context.Context, api API, ref string) error {
	rc, err := api.ImagePull(ctx, ref, image.PullOptions{})
	if err != nil {
		return model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to pull image %q", ref),
			err,
		)
	}
	defer rc.Close()

	if _, err := io.Copy(io.Discard, rc); err != nil {
		return fmt.Errorf("reading pull progress for %q: %w", ref, err)
	}
	return nil
}

// RenameContainer renames the container with the given ID.
func RenameContainer(ctx context.Context, api API, containerID, name string) error {
	if err := api.ContainerRename(ctx, containerID, name); err != nil {
		return model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to rename container %q to %q", shortID(containerID), name),
			err,
		)
	}
	return nil
}

// RemoveContainer removes a container by its ID. With force, a running
// container is killed first.
func RemoveContainer(ctx context.Context, api API, containerID string, force bool) error {
	err := api.ContainerRemove(ctx, containerID, container.RemoveOptions{
		Force: force,
	})
	if err != nil {
		return model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to remove container %q", shortID(containerID)),
			err,
		)
	}
	return nil
}

// shortID truncates a container ID to the 12 characters Docker shows.
func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
