package catfile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utkarsh5026/gitgo/pkg/common/err"
	"github.com/utkarsh5026/gitgo/pkg/common/logger"
	"github.com/utkarsh5026/gitgo/pkg/gitexec"
	"github.com/utkarsh5026/gitgo/pkg/objects"
	"github.com/utkarsh5026/gitgo/pkg/objects/blob"
	"github.com/utkarsh5026/gitgo/pkg/objects/commit"
	"github.com/utkarsh5026/gitgo/pkg/objects/tree"
)

const pkgName = "catfile"

// CodeUnsupportedType is returned for objects outside the graph (tags).
const CodeUnsupportedType = "UNSUPPORTED_TYPE"

// BlobMode selects how blob contents are captured.
type BlobMode string

const (
	// BlobFull keeps the exact blob bytes.
	BlobFull BlobMode = "full"
	// BlobLastLine keeps only the final line of output. Lossy.
	BlobLastLine BlobMode = "last-line"
	// BlobNone records metadata only.
	BlobNone BlobMode = "none"
)

// ParseBlobMode converts a configuration value to a BlobMode.
func ParseBlobMode(s string) (BlobMode, error) {
	switch BlobMode(s) {
	case BlobFull, BlobLastLine, BlobNone:
		return BlobMode(s), nil
	case "":
		return BlobFull, nil
	default:
		return "", err.New(pkgName, err.CodeInvalidInput, "parse blob mode",
			fmt.Sprintf("unknown blob mode %q (want full, last-line or none)", s), nil)
	}
}

// Parser reads one object with `git cat-file -p` and parses it.
type Parser struct {
	runner   gitexec.Runner
	blobMode BlobMode
	log      *slog.Logger
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithBlobMode sets how blob contents are captured.
func WithBlobMode(m BlobMode) ParserOption {
	return func(p *Parser) {
		if m != "" {
			p.blobMode = m
		}
	}
}

// WithParserLogger sets the logger.
func WithParserLogger(l *slog.Logger) ParserOption {
	return func(p *Parser) {
		p.log = l
	}
}

// NewParser creates a Parser capturing full blob contents by default.
func NewParser(runner gitexec.Runner, opts ...ParserOption) *Parser {
	p := &Parser{runner: runner, blobMode: BlobFull}
	for _, opt := range opts {
		opt(p)
	}
	p.log = logger.OrDefault(p.log)
	return p
}

// BlobMode returns the configured blob capture mode.
func (p *Parser) BlobMode() BlobMode {
	return p.blobMode
}

// ParseObject reads the object identified by h in dir and returns its record.
// Runner errors are returned unchanged.
func (p *Parser) ParseObject(ctx context.Context, h objects.ObjectHandle, dir string) (objects.Record, error) {
	args := []string{"cat-file", "-p", h.Hash.String()}

	switch h.Type {
	case objects.CommitType:
		lp := commit.NewLineParser(h)
		if e := p.runner.Stream(ctx, dir, args, lineFunc(lp.Line)); e != nil {
			return nil, e
		}
		return lp.Record(), nil

	case objects.TreeType:
		lp := tree.NewLineParser(h)
		if e := p.runner.Stream(ctx, dir, args, lineFunc(lp.Line)); e != nil {
			return nil, e
		}
		if n := lp.Skipped(); n > 0 {
			p.log.Debug("skipped tree entries", "tree", h.Hash.Short(), "count", n)
		}
		return lp.Record(), nil

	case objects.BlobType:
		return p.parseBlob(ctx, h, dir, args)

	default:
		return nil, unsupportedType(h)
	}
}

func (p *Parser) parseBlob(ctx context.Context, h objects.ObjectHandle, dir string, args []string) (objects.Record, error) {
	switch p.blobMode {
	case BlobNone:
		return blob.MetadataOnly(h), nil
	case BlobLastLine:
		lp := blob.NewLineParser(h)
		if e := p.runner.Stream(ctx, dir, args, lineFunc(lp.Line)); e != nil {
			return nil, e
		}
		return lp.Record(), nil
	default:
		data, e := p.runner.Output(ctx, dir, args...)
		if e != nil {
			return nil, e
		}
		return blob.New(h, data), nil
	}
}

// ParseObjectLines parses already captured `cat-file -p` output. Blobs are
// captured line-wise and therefore marked lossy.
func ParseObjectLines(h objects.ObjectHandle, lines []string) (objects.Record, error) {
	switch h.Type {
	case objects.CommitType:
		return commit.Parse(h, lines), nil
	case objects.TreeType:
		return tree.Parse(h, lines), nil
	case objects.BlobType:
		lp := blob.NewLineParser(h)
		for _, line := range lines {
			lp.Line(line)
		}
		return lp.Record(), nil
	default:
		return nil, unsupportedType(h)
	}
}

func unsupportedType(h objects.ObjectHandle) error {
	return err.New(pkgName, CodeUnsupportedType, "parse object",
		fmt.Sprintf("object %s has unsupported type %q", h.Hash.Short(), h.Type), nil)
}

func lineFunc(consume func(string)) gitexec.LineFunc {
	return func(line string) error {
		consume(line)
		return nil
	}
}
