package cli

import (
	"context"

	"github.com/shinji-kodama/tabsync/internal/docker"
	"github.com/shinji-kodama/tabsync/internal/model"
	"github.com/shinji-kodama/tabsync/internal/tabsync"
)

// dockerConnect opens the daemon connection behind every Docker-backed
// command and returns the API plus a function that closes it. Tests swap
// it for an in-memory daemon.
var dockerConnect = func(ctx context.Context) (docker.API, func() error, error) {
	cli, err := docker.NewClient()
	if err != nil {
		return nil, nil, err
	}
	if err := cli.Ping(ctx); err != nil {
		_ = cli.Close()
		return nil, nil, err
	}
	VerboseLog("Connected to Docker daemon")
	return cli.API(), cli.Close, nil
}

// dockerSession is a daemon connection plus an engine seeded from the
// daemon's current state.
type dockerSession struct {
	api     docker.API
	close   func() error
	toolkit *docker.Toolkit
	engine  *docker.Engine

	// containers is the managed set as listed when the session opened.
	containers []model.ContainerInfo
	// vacant holds the IDs of managed containers that wrap nothing.
	vacant []string
	// adopted holds the contents whose containers existed before the
	// session, in list order.
	adopted []string
}

func (d *dockerSession) Close() {
	_ = d.close()
}

// openDockerSession connects to Docker, lists managed containers and
// adopts the attached ones into a new engine. New containers use image.
func openDockerSession(ctx context.Context, image string) (*dockerSession, error) {
	api, closeFn, err := dockerConnect(ctx)
	if err != nil {
		return nil, err
	}

	containers, err := docker.ListManagedContainers(ctx, api)
	if err != nil {
		_ = closeFn()
		return nil, err
	}
	VerboseLog("Found %d managed containers", len(containers))

	tk := docker.NewToolkit(ctx, api,
		docker.WithImage(image),
		docker.WithToolkitLogger(logger))
	engine := tabsync.New[string, string](tk, tabsync.WithLogger[string, string](logger))
	vacant := docker.Seed(engine, containers)

	return &dockerSession{
		api:        api,
		close:      closeFn,
		toolkit:    tk,
		engine:     engine,
		containers: containers,
		vacant:     vacant,
		adopted:    engine.Contents(),
	}, nil
}
