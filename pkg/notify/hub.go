package notify

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/utkarsh5026/gitgo/pkg/common/logger"
	"github.com/utkarsh5026/gitgo/pkg/objects"
	"github.com/utkarsh5026/gitgo/pkg/refs/branch"
)

// Topic names.
const (
	TopicCommits  = "commits"
	TopicTrees    = "trees"
	TopicBlobs    = "blobs"
	TopicBranches = "branches"
)

// ObjectProbe re-enumerates the object database and returns what changed.
type ObjectProbe func(ctx context.Context) (objects.Delta, error)

// BranchProbe lists local and remote branches.
type BranchProbe func(ctx context.Context) (BranchChange, error)

// BranchChange is the payload of the branches topic.
type BranchChange struct {
	Local  []branch.Info `json:"local"`
	Remote []branch.Info `json:"remote"`
}

// Equal reports whether both listings are identical.
func (c BranchChange) Equal(o BranchChange) bool {
	return slices.Equal(c.Local, o.Local) && slices.Equal(c.Remote, o.Remote)
}

// HubConfig wires a Hub to a repository.
type HubConfig struct {
	ObjectsDir string
	RefsDir    string
	Factory    WatchFactory
	Objects    ObjectProbe
	Branches   BranchProbe
	Logger     *slog.Logger
}

// Hub owns one topic per change category.
//
// Commits, Trees and Blobs each run their own watcher on the objects
// directory. A change re-runs the object probe once however many object
// watchers saw it, and every object topic receives its slice of the delta.
type Hub struct {
	Commits  *Topic[objects.Delta]
	Trees    *Topic[objects.Delta]
	Blobs    *Topic[objects.Delta]
	Branches *Topic[BranchChange]

	cfg    HubConfig
	log    *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc
	group  singleflight.Group

	mu           sync.Mutex
	lastBranches BranchChange
}

// NewHub creates a hub whose probes run under ctx until Close.
func NewHub(ctx context.Context, cfg HubConfig) *Hub {
	h := &Hub{cfg: cfg, log: logger.OrDefault(cfg.Logger)}
	h.ctx, h.cancel = context.WithCancel(ctx)

	h.Commits = NewTopic[objects.Delta](TopicCommits, h.watch(cfg.ObjectsDir, h.onObjects), h.log)
	h.Trees = NewTopic[objects.Delta](TopicTrees, h.watch(cfg.ObjectsDir, h.onObjects), h.log)
	h.Blobs = NewTopic[objects.Delta](TopicBlobs, h.watch(cfg.ObjectsDir, h.onObjects), h.log)
	h.Branches = NewTopic[BranchChange](TopicBranches, h.watch(cfg.RefsDir, h.onRefs), h.log)
	return h
}

func (h *Hub) watch(root string, onChange func()) ActivateFunc {
	if h.cfg.Factory == nil || root == "" {
		return nil
	}
	return func() (func() error, error) {
		w, e := h.cfg.Factory(root)
		if e != nil {
			return nil, e
		}
		if e := w.Start(onChange); e != nil {
			_ = w.Close()
			return nil, e
		}
		return w.Close, nil
	}
}

func (h *Hub) onObjects() {
	if _, e := h.RefreshObjects(h.ctx); e != nil {
		h.log.Warn("object refresh failed", "error", e)
	}
}

func (h *Hub) onRefs() {
	if _, e := h.RefreshBranches(h.ctx); e != nil {
		h.log.Warn("branch refresh failed", "error", e)
	}
}

// RefreshObjects runs the object probe and publishes the delta. Concurrent
// calls share one probe run.
func (h *Hub) RefreshObjects(ctx context.Context) (objects.Delta, error) {
	if h.cfg.Objects == nil {
		return objects.Delta{}, nil
	}

	v, e, _ := h.group.Do(TopicCommits, func() (any, error) {
		d, e := h.cfg.Objects(ctx)
		if e != nil {
			return objects.Delta{}, e
		}
		h.publishObjects(d)
		return d, nil
	})
	if e != nil {
		return objects.Delta{}, e
	}
	return v.(objects.Delta), nil
}

func (h *Hub) publishObjects(d objects.Delta) {
	if d.Empty() {
		return
	}
	for _, p := range []struct {
		topic *Topic[objects.Delta]
		kind  objects.ObjectType
	}{
		{h.Commits, objects.CommitType},
		{h.Trees, objects.TreeType},
		{h.Blobs, objects.BlobType},
	} {
		if part := d.Filter(p.kind); !part.Empty() {
			p.topic.Publish(part)
		}
	}
}

// RefreshBranches runs the branch probe and publishes the listing when it
// differs from the previous one.
func (h *Hub) RefreshBranches(ctx context.Context) (BranchChange, error) {
	if h.cfg.Branches == nil {
		return BranchChange{}, nil
	}

	v, e, _ := h.group.Do(TopicBranches, func() (any, error) {
		c, e := h.cfg.Branches(ctx)
		if e != nil {
			return BranchChange{}, e
		}

		h.mu.Lock()
		changed := !c.Equal(h.lastBranches)
		h.lastBranches = c
		h.mu.Unlock()

		if changed {
			h.Branches.Publish(c)
		}
		return c, nil
	})
	if e != nil {
		return BranchChange{}, e
	}
	return v.(BranchChange), nil
}

// Close stops every watcher and drops all subscribers.
func (h *Hub) Close() error {
	h.cancel()
	var first error
	for _, fn := range []func() error{h.Commits.Close, h.Trees.Close, h.Blobs.Close, h.Branches.Close} {
		if e := fn(); e != nil && first == nil {
			first = e
		}
	}
	return first
}
