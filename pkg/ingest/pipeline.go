// Package ingest wires the git runner, the object enumerator, the detail
// parser and the object graph store into one pipeline per repository.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/utkarsh5026/gitgo/pkg/catfile"
	"github.com/utkarsh5026/gitgo/pkg/common/logger"
	"github.com/utkarsh5026/gitgo/pkg/config"
	"github.com/utkarsh5026/gitgo/pkg/gitexec"
	"github.com/utkarsh5026/gitgo/pkg/notify"
	"github.com/utkarsh5026/gitgo/pkg/objects"
	"github.com/utkarsh5026/gitgo/pkg/refs/branch"
	"github.com/utkarsh5026/gitgo/pkg/repository"
	"github.com/utkarsh5026/gitgo/pkg/store"
)

// Config holds what a pipeline needs besides the repository path.
type Config struct {
	Settings config.Settings

	// Runner overrides the git runner built from Settings.
	Runner gitexec.Runner

	// Progress is called as objects settle during a batch.
	Progress store.ProgressFunc

	Logger *slog.Logger
}

// Pipeline ingests the object database of one repository.
//
// Load and Refresh enumerate every object and hand the handle set to the
// store, which reads details in the background. The store's accessors wait
// for that work, so callers may query right after Load or Refresh returns.
type Pipeline struct {
	repo       *repository.Repository
	runner     gitexec.Runner
	enumerator *catfile.Enumerator
	parser     *catfile.Parser
	store      *store.Store
	branches   *branch.Manager
	log        *slog.Logger

	// batches run under ctx so they outlive the call that started them.
	ctx    context.Context
	cancel context.CancelFunc

	mu   sync.Mutex
	last objects.HandleSet
}

// Open validates dir as a repository and builds a pipeline for it. Nothing
// is spawned until Load or Refresh. Batches run until ctx is done or Close
// is called.
func Open(ctx context.Context, cfg Config, dir string) (*Pipeline, error) {
	repo, e := repository.Open(dir)
	if e != nil {
		return nil, e
	}

	mode, e := catfile.ParseBlobMode(cfg.Settings.BlobMode)
	if e != nil {
		return nil, e
	}

	log := logger.OrDefault(cfg.Logger).With("repo", repo.WorkDir)

	runner := cfg.Runner
	if runner == nil {
		runner = gitexec.New(
			gitexec.WithBinary(cfg.Settings.GitBinary),
			gitexec.WithTimeout(cfg.Settings.Timeout),
			gitexec.WithLogger(log),
		)
	}

	p := &Pipeline{
		repo:   repo,
		runner: runner,
		enumerator: catfile.NewEnumerator(runner,
			catfile.WithUnordered(cfg.Settings.Unordered),
			catfile.WithEnumeratorLogger(log),
		),
		parser: catfile.NewParser(runner,
			catfile.WithBlobMode(mode),
			catfile.WithParserLogger(log),
		),
		branches: branch.NewManager(runner, repo.WorkDir),
		log:      log,
	}
	p.ctx, p.cancel = context.WithCancel(ctx)
	p.store = store.New(p,
		store.WithConcurrency(cfg.Settings.Concurrency),
		store.WithProgress(cfg.Progress),
		store.WithLogger(log),
	)
	return p, nil
}

// Fetch implements store.Fetcher by parsing one object with git cat-file.
func (p *Pipeline) Fetch(ctx context.Context, h objects.ObjectHandle) (objects.Record, error) {
	return p.parser.ParseObject(ctx, h, p.repo.WorkDir)
}

// Load enumerates the repository, records every object and waits for the
// graph to settle.
func (p *Pipeline) Load(ctx context.Context) error {
	set, e := p.enumerator.EnumerateAll(ctx, p.repo.WorkDir)
	if e != nil {
		return fmt.Errorf("enumerate objects: %w", e)
	}

	p.mu.Lock()
	p.last = set
	p.mu.Unlock()

	p.log.Info("objects enumerated", "commits", len(set.Commits), "trees", len(set.Trees), "blobs", len(set.Blobs))
	p.store.RecordAll(p.ctx, set)
	return p.store.Wait(ctx)
}

// Refresh re-enumerates the repository and returns what changed since the
// previous enumeration. When anything changed, or the last batch failed, the
// store is repopulated; the call does not wait for that.
func (p *Pipeline) Refresh(ctx context.Context) (objects.Delta, error) {
	set, e := p.enumerator.EnumerateAll(ctx, p.repo.WorkDir)
	if e != nil {
		return objects.Delta{}, fmt.Errorf("enumerate objects: %w", e)
	}

	p.mu.Lock()
	delta := set.Diff(p.last)
	p.last = set
	p.mu.Unlock()

	if delta.Empty() {
		failed := p.store.Err()
		if failed == nil || p.ctx.Err() != nil {
			return delta, nil
		}
		p.log.Info("retrying failed batch", "error", failed)
	} else {
		p.log.Debug("objects changed", "added", len(delta.Added), "removed", len(delta.Removed))
	}
	p.store.RecordAll(p.ctx, set)
	return delta, nil
}

// Branches lists local and remote branches.
func (p *Pipeline) Branches(ctx context.Context) (notify.BranchChange, error) {
	local, e := p.branches.Local(ctx)
	if e != nil {
		return notify.BranchChange{}, e
	}
	remote, e := p.branches.Remote(ctx)
	if e != nil {
		return notify.BranchChange{}, e
	}
	return notify.BranchChange{Local: local, Remote: remote}, nil
}

// Hub builds a change hub whose probes are this pipeline's Refresh and
// Branches.
func (p *Pipeline) Hub(factory notify.WatchFactory) *notify.Hub {
	return notify.NewHub(p.ctx, notify.HubConfig{
		ObjectsDir: p.repo.ObjectsDir,
		RefsDir:    p.repo.RefsDir,
		Factory:    factory,
		Objects:    p.Refresh,
		Branches:   p.Branches,
		Logger:     p.log,
	})
}

// Store returns the object graph.
func (p *Pipeline) Store() *store.Store {
	return p.store
}

// Repository returns the validated repository layout.
func (p *Pipeline) Repository() *repository.Repository {
	return p.repo
}

// Runner returns the git runner used by the pipeline.
func (p *Pipeline) Runner() gitexec.Runner {
	return p.runner
}

// BranchManager returns the branch manager for the repository.
func (p *Pipeline) BranchManager() *branch.Manager {
	return p.branches
}

// Close cancels any batch in flight.
func (p *Pipeline) Close() {
	p.cancel()
}
