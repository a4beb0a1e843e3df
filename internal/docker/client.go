package docker

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/shinji-kodama/tabsync/internal/model"
)

// API is the subset of the Docker SDK client tabsync calls.
// *client.Client satisfies it; tests substitute a fake daemon.
type API interface {
	ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error)
	ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig,
		networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, containerName string) (container.CreateResponse, error)
	ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error
	ContainerRename(ctx context.Context, containerID, newContainerName string) error
	ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error
	ImagePull(ctx context.Context, refStr string, options image.PullOptions) (io.ReadCloser, error)
}

var _ API = (*client.Client)(nil)

// defaultPingTimeout bounds a Ping. Docker Desktop on macOS can be slow
// to answer, so this is generous.
const defaultPingTimeout = 5 * time.Second

// Client owns a Docker SDK client connected to the detected daemon.
//
//	c, err := docker.NewClient()
//	if err != nil { /* handle */ }
//	defer c.Close()
//	if err := c.Ping(ctx); err != nil { /* Docker not running */ }
type Client struct {
	inner *client.Client
}

// NewClient connects to DOCKER_HOST when set, otherwise to the first
// platform default socket that exists:
//   - Linux: /var/run/docker.sock
//   - macOS: /var/run/docker.sock, then ~/.docker/run/docker.sock
//   - Windows: npipe:////./pipe/docker_engine
//
// Errors are model.CLIError values with ExitDockerNotRunning.
func NewClient() (*Client, error) {
	// An explicit DOCKER_HOST wins, as with the docker CLI. It may point
	// at a remote daemon (tcp://, ssh://), so no local probing is done.
	if host := os.Getenv("DOCKER_HOST"); host != "" {
		return newClientWithHost(host)
	}

	host, err := detectDockerHost()
	if err != nil {
		return nil, model.WrapCLIError(model.ExitDockerNotRunning, "Docker socket not found", err)
	}
	return newClientWithHost(host)
}

func newClientWithHost(host string) (*Client, error) {
	// Version negotiation lets one binary talk to older daemons; without
	// it the client pins its own API version and old daemons reject it.
	c, err := client.NewClientWithOpts(
		client.WithHost(host),
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to create Docker client for host %q", host),
			err,
		)
	}
	return &Client{inner: c}, nil
}

// detectDockerHost returns the Docker host URI for the current platform.
// Unix sockets are checked for existence only; Ping verifies the daemon.
func detectDockerHost() (string, error) {
	switch runtime.GOOS {
	case "linux":
		// Docker Engine and Docker Desktop for Linux both expose the
		// daemon here (Desktop through a symlink).
		return detectUnixSocket([]string{"/var/run/docker.sock"})

	case "darwin":
		// Docker Desktop creates /var/run/docker.sock only when it is
		// allowed to install its privileged helper. Without it, the
		// socket lives under the user's home directory instead.
		paths := []string{"/var/run/docker.sock"}
		if home, err := os.UserHomeDir(); err == nil {
			paths = append(paths, home+"/.docker/run/docker.sock")
		}
		return detectUnixSocket(paths)

	case "windows":
		// Named pipes cannot be stat'ed; Ping reports a missing daemon.
		return "npipe:////./pipe/docker_engine", nil

	default:
		return "", fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

// detectUnixSocket returns the URI of the first existing path.
func detectUnixSocket(paths []string) (string, error) {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return "unix://" + path, nil
		}
	}
	return "", fmt.Errorf("Docker socket not found at any of: %v; is Docker running?", paths)
}

// Ping verifies that the Docker daemon is reachable.
func (c *Client) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	if _, err := c.inner.Ping(pingCtx); err != nil {
		return model.WrapCLIError(
			model.ExitDockerNotRunning,
			"Docker daemon is not responding; is Docker running?",
			err,
		)
	}
	return nil
}

// Close releases the client. It is safe to call more than once.
func (c *Client) Close() error {
	if c.inner != nil {
		return c.inner.Close()
	}
	return nil
}

// API returns the SDK client as the narrow API used by this package.
func (c *Client) API() API {
	return c.inner
}
