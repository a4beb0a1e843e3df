package docker

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/tabsync/internal/model"
)

// TestBuildLabels verifies the label map put on every new container.
func TestBuildLabels(t *testing.T) {
	createdAt := time.Date(2026, 2, 28, 19, 0, 0, 0, time.FixedZone("JST", 9*60*60))

	labels := BuildLabels("busybox:latest", createdAt)

	assert.Equal(t, ManagedByValue, labels[LabelManagedBy],
		"managed-by label should always be set to the constant value")
	assert.Equal(t, "busybox:latest", labels[LabelImage])
	assert.Equal(t, "2026-02-28T10:00:00Z", labels[LabelCreatedAt], "timestamps are stored in UTC")
	assert.Len(t, labels, 3)
}

func TestParseCreatedAt(t *testing.T) {
	want := time.Date(2026, 2, 28, 10, 0, 0, 0, time.UTC)

	got, err := ParseCreatedAt(BuildLabels("img", want))
	require.NoError(t, err)
	assert.True(t, want.Equal(got))

	_, err = ParseCreatedAt(map[string]string{})
	assert.ErrorContains(t, err, LabelCreatedAt)

	_, err = ParseCreatedAt(map[string]string{LabelCreatedAt: "yesterday"})
	assert.Error(t, err)
}

func TestContentFromName(t *testing.T) {
	tests := []struct {
		name        string
		wantContent string
		wantOK      bool
	}{
		{"tabsync-clock", "clock", true},
		{"/tabsync-now-playing", "now-playing", true},
		{"tabsync--vacant-1234", "", false},
		{"/tabsync--vacant-1234", "", false},
		{"tabsync-vacant-clock", "vacant-clock", true},
		{"tabsync-", "", false},
		{"tabsync--clock", "", false},
		{"postgres", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, ok := ContentFromName(tt.name)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantContent, content)
		})
	}
}

func TestBuildContainerName_RoundTrip(t *testing.T) {
	content, ok := ContentFromName(BuildContainerName("pairs.v2"))
	require.True(t, ok)
	assert.Equal(t, "pairs.v2", content)
}

func TestBuildContainerName_VacantLookalike(t *testing.T) {
	// A valid content ID that starts like the vacant prefix still maps
	// back to itself.
	require.NoError(t, model.ValidateContentID("vacant-clock"))

	name := BuildContainerName("vacant-clock")
	assert.False(t, strings.HasPrefix(name, VacantPrefix))

	content, ok := ContentFromName(name)
	require.True(t, ok)
	assert.Equal(t, "vacant-clock", content)
}

func TestBuildVacantName(t *testing.T) {
	a, b := BuildVacantName(), BuildVacantName()
	assert.True(t, strings.HasPrefix(a, VacantPrefix))
	assert.NotEqual(t, a, b, "vacant names must not collide")

	_, ok := ContentFromName(a)
	assert.False(t, ok)
}

func TestManagedFilter(t *testing.T) {
	f := ManagedFilter()
	assert.Equal(t, []string{LabelManagedBy + "=" + ManagedByValue}, f.Get("label"))
}
