// Package docker provides Docker Engine API wrappers and a container
// toolkit for the tabsync engine.
//
// This package handles:
//   - Docker client initialization with automatic socket detection
//     (Linux, macOS, Windows)
//   - Container labels and names (the name carries the content a
//     container wraps, since labels cannot change after creation)
//   - Container lifecycle operations: create, rename, list, remove
//   - Toolkit, which lets a tabsync.Sync create and destroy real
//     containers, and Seed, which rebuilds a Sync from what the daemon
//     already runs
//
// The package uses github.com/docker/docker/client as the underlying
// Docker SDK, with version negotiation enabled for broad compatibility.
package docker
