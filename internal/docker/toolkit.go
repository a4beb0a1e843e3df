package docker

import (
	"context"
	"errors"
	"time"

	"github.com/go-logr/logr"

	"github.com/shinji-kodama/tabsync/internal/model"
	"github.com/shinji-kodama/tabsync/internal/tabsync"
)

// Engine is a tabsync engine whose contents are content IDs and whose
// containers are Docker container IDs.
type Engine = tabsync.Sync[string, string]

// Toolkit implements tabsync.Toolkit on top of the Docker daemon.
//
// The engine's parenting calls map onto container names:
//
//	Create  → create and start "tabsync--vacant-<uuid>"
//	Attach  → rename to "tabsync-<content>"
//	Detach  → rename back to a fresh vacant name
//	Destroy → force remove
//
// Labels would be the natural place to record the parent, but Docker does
// not allow changing them after create, and a rename is a single atomic
// call. Because the daemon rejects duplicate names, two containers can
// never both claim the same content, even across concurrent runs.
//
// The toolkit callbacks carry no context, so the one given to NewToolkit
// bounds every daemon call.
type Toolkit struct {
	ctx   context.Context
	api   API
	image string
	log   logr.Logger
	now   func() time.Time
}

var _ tabsync.Toolkit[string, string] = (*Toolkit)(nil)

// ToolkitOption configures a Toolkit.
type ToolkitOption func(*Toolkit)

// WithImage overrides DefaultImage.
func WithImage(image string) ToolkitOption {
	return func(t *Toolkit) {
		if image != "" {
			t.image = image
		}
	}
}

// WithToolkitLogger sets the logger used for daemon calls.
func WithToolkitLogger(log logr.Logger) ToolkitOption {
	return func(t *Toolkit) {
		t.log = log
	}
}

// NewToolkit returns a Toolkit issuing calls through api under ctx.
func NewToolkit(ctx context.Context, api API, opts ...ToolkitOption) *Toolkit {
	t := &Toolkit{
		ctx:   ctx,
		api:   api,
		image: DefaultImage,
		log:   logr.Discard(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Create starts a new vacant container and returns its ID.
func (t *Toolkit) Create() (string, error) {
	name := BuildVacantName()
	id, err := CreateContainer(t.ctx, t.api, t.image, name, BuildLabels(t.image, t.now()))
	if err != nil {
		return "", err
	}
	t.log.V(1).Info("docker container created", "id", shortID(id), "name", name)
	return id, nil
}

// Attach names the container after content.
func (t *Toolkit) Attach(content, containerID string) error {
	return RenameContainer(t.ctx, t.api, containerID, BuildContainerName(content))
}

// Detach gives the container a vacant name again. The engine destroys the
// container right after, but renaming first frees "tabsync-<content>" even
// if that removal fails, so a later Attach for the same content does not
// hit a name conflict.
func (t *Toolkit) Detach(_ string, containerID string) error {
	return RenameContainer(t.ctx, t.api, containerID, BuildVacantName())
}

// Destroy force-removes the container.
func (t *Toolkit) Destroy(containerID string) error {
	if err := RemoveContainer(t.ctx, t.api, containerID, true); err != nil {
		return err
	}
	t.log.V(1).Info("docker container removed", "id", shortID(containerID))
	return nil
}

// Seed adopts every attached container into s, so a fresh engine starts
// from what the daemon already runs. It returns the IDs of the vacant
// containers, which nothing can adopt; they are leftovers of a run that
// was interrupted between Create and Attach, or between Detach and
// Destroy.
//
// Seed only records ownership. Adopted containers may be stopped; Wake
// starts them.
func Seed(s *Engine, containers []model.ContainerInfo) []string {
	var vacant []string
	for _, c := range containers {
		if c.Content == "" {
			vacant = append(vacant, c.ContainerID)
			continue
		}
		s.Adopt(c.Content, c.ContainerID)
	}
	return vacant
}

// Wake starts every container in containers that s still tracks for its
// content and that is not running, and returns those contents in the
// order given. Containers s no longer tracks (pruned since Seed) are
// skipped. A failed start does not stop the others; all failures are
// returned together.
func (t *Toolkit) Wake(s *Engine, containers []model.ContainerInfo) ([]string, error) {
	var started []string
	var errs []error
	for _, c := range containers {
		if c.Status() != model.StatusStopped {
			continue
		}
		if id, ok := s.ContainerOf(c.Content); !ok || id != c.ContainerID {
			continue
		}
		if err := StartContainer(t.ctx, t.api, c.ContainerID); err != nil {
			errs = append(errs, err)
			continue
		}
		t.log.V(1).Info("docker container started", "id", shortID(c.ContainerID), "content", c.Content)
		started = append(started, c.Content)
	}
	return started, errors.Join(errs...)
}
