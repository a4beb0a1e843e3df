package docker

import (
	"context"
	"testing"

	"github.com/docker/docker/api/types/container"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/tabsync/internal/docker/dockertest"
	"github.com/shinji-kodama/tabsync/internal/model"
)

var _ API = (*dockertest.Daemon)(nil)

func TestContainerToInfo(t *testing.T) {
	info := containerToInfo(container.Summary{
		ID:     "abc123",
		Names:  []string{"/tabsync-clock"},
		Image:  DefaultImage,
		State:  "running",
		Labels: map[string]string{LabelManagedBy: ManagedByValue},
	})

	assert.Equal(t, "abc123", info.ContainerID)
	assert.Equal(t, "tabsync-clock", info.ContainerName, "leading slash is stripped")
	assert.Equal(t, "clock", info.Content)
	assert.Equal(t, model.StatusRunning, info.Status())

	vacant := containerToInfo(container.Summary{ID: "def", Names: []string{"/tabsync--vacant-x"}})
	assert.Empty(t, vacant.Content)
	assert.Equal(t, model.StatusVacant, vacant.Status())

	nameless := containerToInfo(container.Summary{ID: "ghi"})
	assert.Empty(t, nameless.ContainerName)
}

func TestListManagedContainers(t *testing.T) {
	ctx := context.Background()
	api := dockertest.New(DefaultImage)

	_, err := CreateContainer(ctx, api, DefaultImage, "tabsync-b", BuildLabels(DefaultImage, testNow))
	require.NoError(t, err)
	_, err = CreateContainer(ctx, api, DefaultImage, "tabsync-a", BuildLabels(DefaultImage, testNow))
	require.NoError(t, err)
	_, err = CreateContainer(ctx, api, DefaultImage, "unrelated", map[string]string{"other": "x"})
	require.NoError(t, err)

	got, err := ListManagedContainers(ctx, api)
	require.NoError(t, err)
	require.Len(t, got, 2, "unmanaged containers are filtered out")
	assert.Equal(t, "a", got[0].Content, "sorted by name")
	assert.Equal(t, "b", got[1].Content)
}

func TestFindByContent(t *testing.T) {
	containers := []model.ContainerInfo{
		{ContainerID: "1", Content: "a"},
		{ContainerID: "2"},
		{ContainerID: "3", Content: "b"},
	}

	c, ok := FindByContent(containers, "b")
	assert.True(t, ok)
	assert.Equal(t, "3", c.ContainerID)

	_, ok = FindByContent(containers, "zzz")
	assert.False(t, ok)
}

func TestCreateContainer_PullsMissingImage(t *testing.T) {
	api := dockertest.New()

	id, err := CreateContainer(context.Background(), api, "busybox:latest", "tabsync-a", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, []string{"busybox:latest"}, api.Pulls)
	assert.Equal(t, "running", api.Live()[0].State)
}

func TestCreateContainer_StartFailureCleansUp(t *testing.T) {
	api := dockertest.New(DefaultImage)
	api.FailStart = true

	_, err := CreateContainer(context.Background(), api, DefaultImage, "tabsync-a", nil)
	require.Error(t, err)

	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitDockerNotRunning, cliErr.Code)
	assert.Empty(t, api.Live(), "the half-created container is removed")
}

func TestRemoveContainer_Missing(t *testing.T) {
	err := RemoveContainer(context.Background(), dockertest.New(), "nope", true)
	assert.Error(t, err)
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "0123456789ab", shortID("0123456789abcdef"))
	assert.Equal(t, "abc", shortID("abc"))
}
