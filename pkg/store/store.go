// Package store holds the in-memory object graph built from one enumeration
// of a repository.
//
// Every RecordAll call starts a new batch that replaces the previous one.
// Accessors block until the most recent batch has settled, so callers never
// see a graph older than the last RecordAll nor a partially filled one.
package store

import (
	"context"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/utkarsh5026/gitgo/pkg/common/logger"
	"github.com/utkarsh5026/gitgo/pkg/gitexec"
	"github.com/utkarsh5026/gitgo/pkg/objects"
	"github.com/utkarsh5026/gitgo/pkg/objects/blob"
	"github.com/utkarsh5026/gitgo/pkg/objects/commit"
	"github.com/utkarsh5026/gitgo/pkg/objects/tree"
)

// Fetcher reads and parses the details of one object.
type Fetcher interface {
	Fetch(ctx context.Context, h objects.ObjectHandle) (objects.Record, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, h objects.ObjectHandle) (objects.Record, error)

// Fetch implements Fetcher.
func (f FetcherFunc) Fetch(ctx context.Context, h objects.ObjectHandle) (objects.Record, error) {
	return f(ctx, h)
}

// ProgressFunc is called after each object settles.
type ProgressFunc func(done, total int)

// DefaultConcurrency is the number of detail reads allowed in flight.
func DefaultConcurrency() int {
	return 4 * runtime.NumCPU()
}

// Store is the object graph. The zero value is not usable; call New.
type Store struct {
	fetcher  Fetcher
	limit    int
	log      *slog.Logger
	progress ProgressFunc

	// progressMu serializes progress calls across batches.
	progressMu sync.Mutex

	mu      sync.Mutex
	current *batch
	seq     uint64
}

// Option configures a Store.
type Option func(*Store)

// WithConcurrency limits how many objects are fetched at once.
func WithConcurrency(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.limit = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.log = l
	}
}

// WithProgress registers a callback invoked as objects settle. Calls never
// overlap, and a superseded batch stops reporting.
func WithProgress(fn ProgressFunc) Option {
	return func(s *Store) {
		s.progress = fn
	}
}

// New creates an empty Store.
func New(fetcher Fetcher, opts ...Option) *Store {
	s := &Store{fetcher: fetcher, limit: DefaultConcurrency()}
	for _, opt := range opts {
		opt(s)
	}
	s.log = logger.OrDefault(s.log)
	return s
}

// RecordAll starts populating a fresh graph from set and returns at once.
// A batch still in flight is cancelled and superseded.
func (s *Store) RecordAll(ctx context.Context, set objects.HandleSet) {
	bctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	if s.current != nil {
		s.current.cancel()
	}
	s.seq++
	b := newBatch(s.seq, set, cancel)
	s.current = b
	s.mu.Unlock()

	go s.run(bctx, b)
}

func (s *Store) run(ctx context.Context, b *batch) {
	defer close(b.done)
	defer b.cancel()

	all := b.handles.All()
	total := len(all)
	var (
		mu      sync.Mutex
		settled int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)

	for _, h := range all {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			rec, e := s.fetcher.Fetch(gctx, h)

			mu.Lock()
			defer mu.Unlock()
			settled++
			s.report(b, settled, total)

			switch {
			case e == nil:
				b.put(rec)
				return nil
			case gitexec.IsFatal(e):
				return e
			case gctx.Err() != nil:
				return gctx.Err()
			}
			b.failed[h.Hash] = e
			s.log.Debug("object omitted", "hash", h.Hash.Short(), "type", h.Type, "error", e)
			return nil
		})
	}

	b.err = g.Wait()
	if b.err == nil && ctx.Err() != nil {
		b.err = ctx.Err()
	}
	b.elapsed = time.Since(b.started)

	s.log.Debug("batch settled",
		"batch", b.id,
		"commits", len(b.commits),
		"trees", len(b.trees),
		"blobs", len(b.blobs),
		"failed", len(b.failed),
		"duration", b.elapsed,
		"error", b.err,
	)
}

// report forwards progress for b while it is still the most recent batch.
func (s *Store) report(b *batch, done, total int) {
	if s.progress == nil {
		return
	}
	s.progressMu.Lock()
	defer s.progressMu.Unlock()
	if s.latest() != b {
		return
	}
	s.progress(done, total)
}

// Err returns the error of the most recent batch once it has settled. It
// does not block; a batch still in flight reports nil.
func (s *Store) Err() error {
	b := s.latest()
	if b == nil {
		return nil
	}
	select {
	case <-b.done:
		return b.err
	default:
		return nil
	}
}

// latest returns the batch started by the most recent RecordAll.
func (s *Store) latest() *batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// settled waits for the most recent batch. If a newer batch starts while
// waiting, it waits for that one instead.
func (s *Store) settled(ctx context.Context) (*batch, error) {
	for {
		b := s.latest()
		if b == nil {
			return emptyBatch, nil
		}

		select {
		case <-b.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		if s.latest() == b {
			if b.err != nil {
				return nil, b.err
			}
			return b, nil
		}
	}
}

// Wait blocks until the most recent batch has settled and returns its
// batch-level error, if any.
func (s *Store) Wait(ctx context.Context) error {
	_, e := s.settled(ctx)
	return e
}

// Commits returns the commit records of the latest batch keyed by hash.
// The map must not be modified.
func (s *Store) Commits(ctx context.Context) (map[objects.ObjectHash]*commit.Record, error) {
	b, e := s.settled(ctx)
	if e != nil {
		return nil, e
	}
	return b.commits, nil
}

// Trees returns the tree records of the latest batch keyed by hash.
// The map must not be modified.
func (s *Store) Trees(ctx context.Context) (map[objects.ObjectHash]*tree.Record, error) {
	b, e := s.settled(ctx)
	if e != nil {
		return nil, e
	}
	return b.trees, nil
}

// Blobs returns the blob records of the latest batch keyed by hash.
// The map must not be modified.
func (s *Store) Blobs(ctx context.Context) (map[objects.ObjectHash]*blob.Record, error) {
	b, e := s.settled(ctx)
	if e != nil {
		return nil, e
	}
	return b.blobs, nil
}

// RootCommit returns the parentless commit recorded last. The second
// result is false when the graph has no root commit.
func (s *Store) RootCommit(ctx context.Context) (objects.ObjectHash, bool, error) {
	b, e := s.settled(ctx)
	if e != nil {
		return "", false, e
	}
	return b.root, b.root != "", nil
}

// RootCommits returns every parentless commit sorted by hash.
func (s *Store) RootCommits(ctx context.Context) ([]objects.ObjectHash, error) {
	b, e := s.settled(ctx)
	if e != nil {
		return nil, e
	}
	roots := make([]objects.ObjectHash, 0, len(b.roots))
	roots = append(roots, b.roots...)
	sort.Slice(roots, func(i, j int) bool { return roots[i] < roots[j] })
	return roots, nil
}

// Commit returns one commit record.
func (s *Store) Commit(ctx context.Context, hash objects.ObjectHash) (*commit.Record, error) {
	commits, e := s.Commits(ctx)
	if e != nil {
		return nil, e
	}
	c, ok := commits[hash]
	if !ok {
		return nil, NewNotFoundError(objects.CommitType, hash)
	}
	return c, nil
}

// TreeEntries returns the entries of one tree.
func (s *Store) TreeEntries(ctx context.Context, hash objects.ObjectHash) ([]tree.Entry, error) {
	trees, e := s.Trees(ctx)
	if e != nil {
		return nil, e
	}
	t, ok := trees[hash]
	if !ok {
		return nil, NewNotFoundError(objects.TreeType, hash)
	}
	return t.Entries, nil
}

// Blob returns one blob record.
func (s *Store) Blob(ctx context.Context, hash objects.ObjectHash) (*blob.Record, error) {
	blobs, e := s.Blobs(ctx)
	if e != nil {
		return nil, e
	}
	b, ok := blobs[hash]
	if !ok {
		return nil, NewNotFoundError(objects.BlobType, hash)
	}
	return b, nil
}

// Lookup returns the record for hash whatever its type.
func (s *Store) Lookup(ctx context.Context, hash objects.ObjectHash) (objects.Record, error) {
	b, e := s.settled(ctx)
	if e != nil {
		return nil, e
	}
	if c, ok := b.commits[hash]; ok {
		return c, nil
	}
	if t, ok := b.trees[hash]; ok {
		return t, nil
	}
	if bl, ok := b.blobs[hash]; ok {
		return bl, nil
	}
	return nil, NewNotFoundError("", hash)
}

// History walks first parents starting at from, newest first. A limit of
// zero or less means no limit. The walk stops at a root or at a parent that
// is not in the graph.
func (s *Store) History(ctx context.Context, from objects.ObjectHash, limit int) ([]*commit.Record, error) {
	commits, e := s.Commits(ctx)
	if e != nil {
		return nil, e
	}

	start, ok := commits[from]
	if !ok {
		return nil, NewNotFoundError(objects.CommitType, from)
	}

	var (
		out  []*commit.Record
		seen = make(map[objects.ObjectHash]bool)
	)
	for c := start; c != nil && !seen[c.Hash]; {
		if limit > 0 && len(out) >= limit {
			break
		}
		seen[c.Hash] = true
		out = append(out, c)

		parent, ok := c.ParentHash()
		if !ok {
			break
		}
		c = commits[parent]
	}
	return out, nil
}

// Handles returns the handle set passed to the latest RecordAll without
// waiting for it to settle.
func (s *Store) Handles() objects.HandleSet {
	b := s.latest()
	if b == nil {
		return objects.HandleSet{}
	}
	return b.handles
}

// Failed returns the objects of the latest batch that could not be read,
// with the error each one hit.
func (s *Store) Failed(ctx context.Context) (map[objects.ObjectHash]error, error) {
	b, e := s.settled(ctx)
	if e != nil {
		return nil, e
	}
	return b.failed, nil
}

// Stats summarises the latest batch.
type Stats struct {
	Batch    uint64        `json:"batch"`
	Handles  int           `json:"handles"`
	Commits  int           `json:"commits"`
	Trees    int           `json:"trees"`
	Blobs    int           `json:"blobs"`
	Roots    int           `json:"roots"`
	Failed   int           `json:"failed"`
	Duration time.Duration `json:"duration"`
}

// Stats waits for the latest batch and returns its counters.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	b, e := s.settled(ctx)
	if e != nil {
		return Stats{}, e
	}
	return Stats{
		Batch:    b.id,
		Handles:  b.handles.Len(),
		Commits:  len(b.commits),
		Trees:    len(b.trees),
		Blobs:    len(b.blobs),
		Roots:    len(b.roots),
		Failed:   len(b.failed),
		Duration: b.elapsed,
	}, nil
}
