package store

import (
	"context"
	"time"

	"github.com/utkarsh5026/gitgo/pkg/objects"
	"github.com/utkarsh5026/gitgo/pkg/objects/blob"
	"github.com/utkarsh5026/gitgo/pkg/objects/commit"
	"github.com/utkarsh5026/gitgo/pkg/objects/tree"
)

// batch is one population pass. Its maps are written only by the run
// goroutine and become read-only once done is closed.
type batch struct {
	id      uint64
	handles objects.HandleSet
	cancel  context.CancelFunc
	done    chan struct{}

	commits map[objects.ObjectHash]*commit.Record
	trees   map[objects.ObjectHash]*tree.Record
	blobs   map[objects.ObjectHash]*blob.Record
	failed  map[objects.ObjectHash]error

	roots []objects.ObjectHash
	root  objects.ObjectHash

	err     error
	started time.Time
	elapsed time.Duration
}

var emptyBatch = func() *batch {
	b := newBatch(0, objects.HandleSet{}, func() {})
	close(b.done)
	return b
}()

func newBatch(id uint64, set objects.HandleSet, cancel context.CancelFunc) *batch {
	return &batch{
		id:      id,
		handles: set,
		cancel:  cancel,
		done:    make(chan struct{}),
		commits: make(map[objects.ObjectHash]*commit.Record, len(set.Commits)),
		trees:   make(map[objects.ObjectHash]*tree.Record, len(set.Trees)),
		blobs:   make(map[objects.ObjectHash]*blob.Record, len(set.Blobs)),
		failed:  make(map[objects.ObjectHash]error),
		started: time.Now(),
	}
}

// put files rec under its own hash.
func (b *batch) put(rec objects.Record) {
	switch r := rec.(type) {
	case *commit.Record:
		b.commits[r.Hash] = r
		if r.IsRoot() {
			b.roots = append(b.roots, r.Hash)
			b.root = r.Hash
		}
	case *tree.Record:
		b.trees[r.Hash] = r
	case *blob.Record:
		b.blobs[r.Hash] = r
	}
}
