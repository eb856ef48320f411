// Package catfile lists the objects of a repository and reads their details
// through `git cat-file`.
package catfile

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/utkarsh5026/gitgo/pkg/common/logger"
	"github.com/utkarsh5026/gitgo/pkg/gitexec"
	"github.com/utkarsh5026/gitgo/pkg/objects"
)

// ParseBatchCheckLine parses one `<hash> <type> <size>` line.
//
// Lines that do not split into exactly three fields, whose size is not an
// integer or whose type is outside the commit/tree/blob graph are rejected.
func ParseBatchCheckLine(line string) (objects.ObjectHandle, bool) {
	fields := strings.Fields(gitexec.NormalizeTabs(line))
	if len(fields) != 3 {
		return objects.ObjectHandle{}, false
	}

	objType, e := objects.ParseObjectType(fields[1])
	if e != nil || !objType.IsGraphType() {
		return objects.ObjectHandle{}, false
	}

	size, e := strconv.ParseInt(fields[2], 10, 64)
	if e != nil || size < 0 {
		return objects.ObjectHandle{}, false
	}

	return objects.ObjectHandle{
		Hash: objects.ObjectHash(strings.ToLower(fields[0])),
		Type: objType,
		Size: size,
	}, true
}

// Enumerator lists every object in a repository's object database.
type Enumerator struct {
	runner    gitexec.Runner
	unordered bool
	log       *slog.Logger
}

// EnumeratorOption configures an Enumerator.
type EnumeratorOption func(*Enumerator)

// WithUnordered toggles `--unordered`, which lets git skip sorting.
func WithUnordered(on bool) EnumeratorOption {
	return func(e *Enumerator) {
		e.unordered = on
	}
}

// WithEnumeratorLogger sets the logger.
func WithEnumeratorLogger(l *slog.Logger) EnumeratorOption {
	return func(e *Enumerator) {
		e.log = l
	}
}

// NewEnumerator creates an Enumerator. Listing is unordered unless
// WithUnordered(false) is given.
func NewEnumerator(runner gitexec.Runner, opts ...EnumeratorOption) *Enumerator {
	en := &Enumerator{runner: runner, unordered: true}
	for _, opt := range opts {
		opt(en)
	}
	en.log = logger.OrDefault(en.log)
	return en
}

// Args returns the argument vector used for enumeration.
func (en *Enumerator) Args() []string {
	args := []string{"cat-file", "--batch-check", "--batch-all-objects"}
	if en.unordered {
		args = append(args, "--unordered")
	}
	return args
}

// EnumerateAll returns the handles of every commit, tree and blob in dir.
// It returns once the listing has ended and every line has been classified.
func (en *Enumerator) EnumerateAll(ctx context.Context, dir string) (objects.HandleSet, error) {
	var (
		set     objects.HandleSet
		dropped int
	)

	e := en.runner.Stream(ctx, dir, en.Args(), func(line string) error {
		h, ok := ParseBatchCheckLine(line)
		if !ok || !set.Add(h) {
			dropped++
		}
		return nil
	})
	if e != nil {
		return objects.HandleSet{}, e
	}

	en.log.Debug("enumerated objects",
		"dir", dir,
		"commits", len(set.Commits),
		"trees", len(set.Trees),
		"blobs", len(set.Blobs),
		"dropped", dropped,
	)
	return set, nil
}
