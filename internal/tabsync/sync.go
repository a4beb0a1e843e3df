package tabsync

import (
	"errors"
	"fmt"
	"slices"

	"github.com/go-logr/logr"
)

// ErrContainerInUse is returned when the toolkit factory hands back a
// container that is already tracked.
var ErrContainerInUse = errors.New("container already tracked")

// Toolkit is the boundary to whatever owns the real container objects.
//
// All four calls are synchronous: when one returns, its effect must be
// complete. Re-entering the Sync from inside a callback is not supported.
type Toolkit[K, W comparable] interface {
	// Create returns a freshly allocated container.
	Create() (W, error)

	// Attach re-parents content under container.
	Attach(content K, container W) error

	// Detach clears the parent of content. The engine calls it right
	// before releasing the container that held it.
	Detach(content K, container W) error

	// Destroy releases a container the engine no longer references.
	// It is called exactly once per released container.
	Destroy(container W) error
}

// Result summarizes a Reconcile pass.
type Result struct {
	Created int `json:"created"`
	Pruned  int `json:"pruned"`
}

// Changed reports whether the pass created or removed anything, which is
// the caller's cue to relayout.
func (r Result) Changed() bool {
	return r.Created > 0 || r.Pruned > 0
}

// slot is the arena entry for one container.
type slot[K, W comparable] struct {
	container W
	child     K
	hasChild  bool
}

// Sync tracks contents and their containers.
type Sync[K, W comparable] struct {
	toolkit Toolkit[K, W]
	log     logr.Logger

	// contents is in insertion order; tracked mirrors it for O(1) lookup.
	contents []K
	tracked  map[K]struct{}

	// containers is in creation order.
	containers  []*slot[K, W]
	byContent   map[K]*slot[K, W]
	byContainer map[W]*slot[K, W]

	current    K
	hasCurrent bool
}

// Option configures a Sync.
type Option[K, W comparable] func(*Sync[K, W])

// WithLogger sets the logger. Creation and destruction are logged at V(1).
func WithLogger[K, W comparable](log logr.Logger) Option[K, W] {
	return func(s *Sync[K, W]) {
		s.log = log
	}
}

// New returns an empty Sync driving the given toolkit.
func New[K, W comparable](toolkit Toolkit[K, W], opts ...Option[K, W]) *Sync[K, W] {
	s := &Sync[K, W]{
		toolkit:     toolkit,
		log:         logr.Discard(),
		tracked:     make(map[K]struct{}),
		byContent:   make(map[K]*slot[K, W]),
		byContainer: make(map[W]*slot[K, W]),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HasContainer reports whether some tracked container currently wraps k.
func (s *Sync[K, W]) HasContainer(k K) bool {
	_, ok := s.byContent[k]
	return ok
}

// AddContent starts tracking k. It returns false, and changes nothing,
// if k is already tracked.
func (s *Sync[K, W]) AddContent(k K) bool {
	if _, ok := s.tracked[k]; ok {
		return false
	}
	s.contents = append(s.contents, k)
	s.tracked[k] = struct{}{}
	return true
}

// EnsureContainers tracks every item of list, front to back, and gives a
// container to each one that lacks it. It returns how many containers were
// created. Calling it again with the same list creates nothing.
//
// On a toolkit error the items before the failing one are fully processed,
// the failing item stays tracked without a container, and the rest of the
// list is left untouched. A later call retries it.
func (s *Sync[K, W]) EnsureContainers(list []K) (int, error) {
	created := 0
	for _, k := range list {
		s.AddContent(k)
		if s.HasContainer(k) {
			continue
		}
		if err := s.wrap(k); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// AddTab tracks k and, if it was not tracked before, wraps it in a new
// container. It returns whether k was newly added.
func (s *Sync[K, W]) AddTab(k K) (bool, error) {
	if !s.AddContent(k) {
		return false, nil
	}
	return true, s.wrap(k)
}

// RemoveTab stops tracking k. If a container wraps k, k is detached from
// it and the container is destroyed. It returns false when k was not
// tracked.
func (s *Sync[K, W]) RemoveTab(k K) (bool, error) {
	idx := slices.Index(s.contents, k)
	if idx < 0 {
		return false, nil
	}
	s.contents = slices.Delete(s.contents, idx, idx+1)
	delete(s.tracked, k)
	// The selection moves before any toolkit call, so a failing Detach
	// or Destroy cannot leave it pointing at removed content.
	s.moveCurrent(k, idx)

	sl, ok := s.byContent[k]
	if !ok {
		return true, nil
	}
	delete(s.byContent, k)
	sl.hasChild = false

	var errs []error
	if err := s.toolkit.Detach(k, sl.container); err != nil {
		errs = append(errs, fmt.Errorf("detach %v: %w", k, err))
	}
	if err := s.release(sl); err != nil {
		errs = append(errs, err)
	}
	return true, errors.Join(errs...)
}

// RemoveContainer releases w. When w still wraps a content, that content
// is removed with RemoveTab first, so both sides stay consistent. It
// returns false when w is not tracked.
func (s *Sync[K, W]) RemoveContainer(w W) (bool, error) {
	sl, ok := s.byContainer[w]
	if !ok {
		return false, nil
	}
	if sl.hasChild {
		return s.RemoveTab(sl.child)
	}
	return true, s.release(sl)
}

// Prune removes every tracked content that is not in list and returns
// how many were removed.
func (s *Sync[K, W]) Prune(list []K) (int, error) {
	keep := make(map[K]struct{}, len(list))
	for _, k := range list {
		keep[k] = struct{}{}
	}

	var stale []K
	for _, k := range s.contents {
		if _, ok := keep[k]; !ok {
			stale = append(stale, k)
		}
	}

	pruned := 0
	var errs []error
	for _, k := range stale {
		removed, err := s.RemoveTab(k)
		if removed {
			pruned++
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return pruned, errors.Join(errs...)
}

// Reconcile prunes what list no longer names, then ensures containers for
// everything it does.
func (s *Sync[K, W]) Reconcile(list []K) (Result, error) {
	var res Result
	pruned, err := s.Prune(list)
	res.Pruned = pruned
	if err != nil {
		return res, err
	}
	res.Created, err = s.EnsureContainers(list)
	return res, err
}

// Adopt tracks an existing container w that already wraps k, without
// going through the factory. Attach is not called. It returns false if k
// already has a container or w is already tracked.
func (s *Sync[K, W]) Adopt(k K, w W) bool {
	if s.HasContainer(k) {
		return false
	}
	if _, ok := s.byContainer[w]; ok {
		return false
	}
	s.AddContent(k)
	s.track(k, w)
	return true
}

// MoveContent moves k to position index of the content order; the items
// in between shift by one. Containers and the selection are untouched and
// no toolkit call is made. It returns false if k is not tracked or index
// is outside [0, Len()).
func (s *Sync[K, W]) MoveContent(k K, index int) bool {
	from := slices.Index(s.contents, k)
	if from < 0 || index < 0 || index >= len(s.contents) {
		return false
	}
	if from != index {
		s.contents = slices.Delete(s.contents, from, from+1)
		s.contents = slices.Insert(s.contents, index, k)
	}
	return true
}

// SetCurrent selects k. It returns false if k has no container.
func (s *Sync[K, W]) SetCurrent(k K) bool {
	if !s.HasContainer(k) {
		return false
	}
	s.current, s.hasCurrent = k, true
	return true
}

// Current returns the selected content, if any.
func (s *Sync[K, W]) Current() (K, bool) {
	return s.current, s.hasCurrent
}

// Contents returns the tracked contents in insertion order.
func (s *Sync[K, W]) Contents() []K {
	return slices.Clone(s.contents)
}

// Containers returns the tracked containers in creation order.
func (s *Sync[K, W]) Containers() []W {
	out := make([]W, 0, len(s.containers))
	for _, sl := range s.containers {
		out = append(out, sl.container)
	}
	return out
}

// ContainerOf returns the container wrapping k.
func (s *Sync[K, W]) ContainerOf(k K) (W, bool) {
	sl, ok := s.byContent[k]
	if !ok {
		var zero W
		return zero, false
	}
	return sl.container, true
}

// ContentOf returns the content w currently wraps.
func (s *Sync[K, W]) ContentOf(w W) (K, bool) {
	sl, ok := s.byContainer[w]
	if !ok || !sl.hasChild {
		var zero K
		return zero, false
	}
	return sl.child, true
}

// Len returns the number of tracked contents.
func (s *Sync[K, W]) Len() int {
	return len(s.contents)
}

// wrap creates a container for k and attaches k to it.
func (s *Sync[K, W]) wrap(k K) error {
	w, err := s.toolkit.Create()
	if err != nil {
		return fmt.Errorf("create container for %v: %w", k, err)
	}
	if _, dup := s.byContainer[w]; dup {
		// Still owned by another slot, so it must not be destroyed here.
		return fmt.Errorf("create container for %v: %w", k, ErrContainerInUse)
	}
	if err := s.toolkit.Attach(k, w); err != nil {
		return errors.Join(
			fmt.Errorf("attach %v: %w", k, err),
			s.toolkit.Destroy(w),
		)
	}
	s.track(k, w)
	s.log.V(1).Info("container created", "content", k, "container", w)
	return nil
}

func (s *Sync[K, W]) track(k K, w W) {
	sl := &slot[K, W]{container: w, child: k, hasChild: true}
	s.containers = append(s.containers, sl)
	s.byContent[k] = sl
	s.byContainer[w] = sl
	if !s.hasCurrent {
		s.current, s.hasCurrent = k, true
	}
}

// release drops every reference to sl and only then destroys its
// container.
//
// Ownership moves in one direction: once the slot is out of containers and
// both lookup maps, the engine holds nothing that points at the container
// and Destroy is its sole owner. If Destroy fails, the engine state is
// already final and the container is never released a second time.
func (s *Sync[K, W]) release(sl *slot[K, W]) error {
	if idx := slices.Index(s.containers, sl); idx >= 0 {
		s.containers = slices.Delete(s.containers, idx, idx+1)
	}
	delete(s.byContainer, sl.container)
	if sl.hasChild {
		delete(s.byContent, sl.child)
		sl.hasChild = false
	}

	w := sl.container
	if err := s.toolkit.Destroy(w); err != nil {
		return fmt.Errorf("destroy %v: %w", w, err)
	}
	s.log.V(1).Info("container destroyed", "container", w)
	return nil
}

// moveCurrent fixes the selection after the content at idx was removed.
func (s *Sync[K, W]) moveCurrent(removed K, idx int) {
	if !s.hasCurrent || s.current != removed {
		return
	}
	var zero K
	s.current, s.hasCurrent = zero, false
	for i := idx; i < len(s.contents); i++ {
		if s.SetCurrent(s.contents[i]) {
			return
		}
	}
	for i := min(idx, len(s.contents)) - 1; i >= 0; i-- {
		if s.SetCurrent(s.contents[i]) {
			return
		}
	}
}
