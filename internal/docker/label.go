package docker

import (
	"fmt"
	"strings"
	"time"

	"github.com/docker/docker/api/types/filters"
	"github.com/google/uuid"

	"github.com/shinji-kodama/tabsync/internal/model"
)

// Label keys put on every container tabsync creates. All keys share the
// "tabsync." prefix to avoid collisions with labels set by other tools.
const (
	// LabelPrefix is the common prefix for all tabsync labels.
	LabelPrefix = "tabsync."

	// LabelManagedBy identifies containers managed by tabsync.
	// Key: "tabsync.managed-by", Value: always ManagedByValue.
	LabelManagedBy = LabelPrefix + "managed-by"

	// LabelImage records the image the container was created from.
	LabelImage = LabelPrefix + "image"

	// LabelCreatedAt stores the RFC3339 creation timestamp.
	LabelCreatedAt = LabelPrefix + "created-at"
)

// ManagedByValue is the constant value for the LabelManagedBy label.
const ManagedByValue = "tabsync"

// Container name prefixes.
//
// Docker labels cannot change after create, so the container name is what
// records which content a container wraps:
//
//	attached: "tabsync-<content>"        e.g. "tabsync-clock"
//	vacant:   "tabsync--vacant-<uuid>"   e.g. "tabsync--vacant-0b6f..."
//
// The double dash keeps the two name spaces apart. A content ID always
// starts with a letter or digit (see model.ValidateContentID), so no
// attached name can begin with VacantPrefix, not even for content such as
// "vacant-clock".
const (
	NamePrefix   = "tabsync-"
	VacantPrefix = NamePrefix + "-vacant-"
)

// BuildLabels constructs the label map for a new container.
func BuildLabels(image string, createdAt time.Time) map[string]string {
	return map[string]string{
		LabelManagedBy: ManagedByValue,
		LabelImage:     image,
		// UTC keeps the value independent of the host's timezone.
		LabelCreatedAt: createdAt.UTC().Format(time.RFC3339),
	}
}

// ParseCreatedAt reads the creation timestamp back from labels.
func ParseCreatedAt(labels map[string]string) (time.Time, error) {
	raw, ok := labels[LabelCreatedAt]
	if !ok {
		return time.Time{}, fmt.Errorf("missing required Docker label: %s", LabelCreatedAt)
	}
	createdAt, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid label %s: %w", LabelCreatedAt, err)
	}
	return createdAt, nil
}

// BuildContainerName returns the name of the container wrapping content.
//
//	BuildContainerName("clock") → "tabsync-clock"
func BuildContainerName(content string) string {
	return NamePrefix + content
}

// BuildVacantName returns a fresh, unique name for a container that wraps
// nothing.
func BuildVacantName() string {
	return VacantPrefix + uuid.NewString()
}

// ContentFromName extracts the content from a container name. The Docker
// API reports names with a leading "/", which is ignored. It returns false
// for vacant containers and for names tabsync did not generate.
//
//	ContentFromName("/tabsync-clock")        → "clock", true
//	ContentFromName("tabsync-vacant-clock")  → "vacant-clock", true
//	ContentFromName("tabsync--vacant-0b6f")  → "", false
func ContentFromName(name string) (string, bool) {
	name = strings.TrimPrefix(name, "/")
	if strings.HasPrefix(name, VacantPrefix) {
		return "", false
	}
	content, ok := strings.CutPrefix(name, NamePrefix)
	if !ok {
		return "", false
	}
	// Anything that is not a valid content ID was not built by
	// BuildContainerName.
	if model.ValidateContentID(content) != nil {
		return "", false
	}
	return content, true
}

// ManagedFilter returns the Docker API filter selecting tabsync containers.
// Docker performs the filtering server-side.
func ManagedFilter() filters.Args {
	return filters.NewArgs(
		filters.Arg("label", LabelManagedBy+"="+ManagedByValue),
	)
}
