// Package tabsync keeps a list of content handles and a parallel set of
// container wrappers in a 1:1 correspondence.
//
// The engine never constructs content and never owns the container
// implementation. Containers come from an injected Toolkit which supplies
// the factory, the destructor and the parenting relation (attach/detach).
// Typical toolkits are a UI tab widget, the in-memory toolkit used by the
// scenario runner, or Docker (see internal/docker).
//
// A Sync is driven synchronously from a single event loop. It is not safe
// for concurrent use, and toolkit callbacks must not re-enter it.
package tabsync
