package artifacts

import (
	"context"
	"sort"
	"time"

	"github.com/utkarsh5026/gitgo/pkg/objects"
	"github.com/utkarsh5026/gitgo/pkg/objects/commit"
	"github.com/utkarsh5026/gitgo/pkg/objects/tree"
	"github.com/utkarsh5026/gitgo/pkg/store"
)

// Snapshot is a serialisable copy of one settled graph. Blob contents are
// left out; only their handles are kept.
type Snapshot struct {
	Repository string                 `json:"repository"`
	CreatedAt  time.Time              `json:"created_at"`
	Stats      store.Stats            `json:"stats"`
	Roots      []objects.ObjectHash   `json:"roots"`
	Commits    []*commit.Record       `json:"commits"`
	Trees      []*tree.Record         `json:"trees"`
	Blobs      []objects.ObjectHandle `json:"blobs"`
}

// TakeSnapshot waits for the latest batch of s and copies it.
func TakeSnapshot(ctx context.Context, s *store.Store, repo string) (*Snapshot, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return nil, err
	}
	roots, err := s.RootCommits(ctx)
	if err != nil {
		return nil, err
	}
	commits, err := s.Commits(ctx)
	if err != nil {
		return nil, err
	}
	trees, err := s.Trees(ctx)
	if err != nil {
		return nil, err
	}
	blobs, err := s.Blobs(ctx)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Repository: repo,
		CreatedAt:  time.Now().UTC(),
		Stats:      stats,
		Roots:      roots,
		Commits:    make([]*commit.Record, 0, len(commits)),
		Trees:      make([]*tree.Record, 0, len(trees)),
		Blobs:      make([]objects.ObjectHandle, 0, len(blobs)),
	}
	for _, c := range commits {
		snap.Commits = append(snap.Commits, c)
	}
	for _, t := range trees {
		snap.Trees = append(snap.Trees, t)
	}
	for _, b := range blobs {
		snap.Blobs = append(snap.Blobs, b.Handle())
	}

	sort.Slice(snap.Commits, func(i, j int) bool { return snap.Commits[i].Hash < snap.Commits[j].Hash })
	sort.Slice(snap.Trees, func(i, j int) bool { return snap.Trees[i].Hash < snap.Trees[j].Hash })
	sort.Slice(snap.Blobs, func(i, j int) bool { return snap.Blobs[i].Hash < snap.Blobs[j].Hash })
	return snap, nil
}
