package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"

	"github.com/utkarsh5026/gitgo/pkg/artifacts"
	"github.com/utkarsh5026/gitgo/pkg/common/logger"
	"github.com/utkarsh5026/gitgo/pkg/config"
	"github.com/utkarsh5026/gitgo/pkg/ingest"
	"github.com/utkarsh5026/gitgo/pkg/repository"
	"github.com/utkarsh5026/gitgo/pkg/store"
)

// loadConfig reads every configuration layer for the repository at
// flags.repo and applies the command-line overrides. Outside a repository
// only the system and user files are read.
func loadConfig(ctx context.Context, flags *globalFlags) (*config.Manager, error) {
	repoDir := ""
	if repo, e := repository.Open(flags.repo); e == nil {
		repoDir = repo.WorkDir
	}

	mgr := config.NewManager(config.DefaultPaths(repoDir), logger.Default)
	if e := mgr.Load(ctx); e != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", e)
	}

	for _, override := range flags.overrides {
		key, value, ok := strings.Cut(override, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --config value %q: expected key=value", override)
		}
		if e := mgr.SetCommandLine(strings.TrimSpace(key), value); e != nil {
			return nil, e
		}
	}
	return mgr, nil
}

// resolveSettings loads the configuration and installs the logger it
// describes. Explicit log flags win over configuration files.
func resolveSettings(ctx context.Context, flags *globalFlags) (config.Settings, error) {
	mgr, e := loadConfig(ctx, flags)
	if e != nil {
		return config.Settings{}, e
	}

	settings := config.NewTypedConfig(mgr).Settings()
	if flags.logLevel != "" {
		settings.LogLevel = flags.logLevel
	}
	if flags.logFormat != "" {
		settings.LogFormat = flags.logFormat
	}
	if flags.verbose {
		settings.LogLevel = "debug"
	}

	if e := setupLogging(settings); e != nil {
		return config.Settings{}, e
	}
	return settings, nil
}

func setupLogging(settings config.Settings) error {
	level, e := logger.ParseLevel(settings.LogLevel)
	if e != nil {
		return e
	}
	format, e := logger.ParseFormat(settings.LogFormat)
	if e != nil {
		return e
	}

	logger.Default = logger.New(logger.Config{
		Level:  level,
		Format: format,
		Output: os.Stderr,
	})
	return nil
}

// openPipeline resolves settings and opens the repository. The caller must
// Close the pipeline.
func openPipeline(ctx context.Context, flags *globalFlags, progress store.ProgressFunc) (*ingest.Pipeline, config.Settings, error) {
	settings, e := resolveSettings(ctx, flags)
	if e != nil {
		return nil, settings, e
	}

	p, e := ingest.Open(ctx, ingest.Config{
		Settings: settings,
		Progress: progress,
		Logger:   logger.Default,
	}, flags.repo)
	if e != nil {
		return nil, settings, e
	}
	return p, settings, nil
}

// loadGraph opens the repository and waits for its first batch.
func loadGraph(ctx context.Context, flags *globalFlags, showProgress bool) (*ingest.Pipeline, config.Settings, error) {
	var progress store.ProgressFunc
	bar := newProgressBar()
	if showProgress {
		progress = bar.update
	}

	p, settings, e := openPipeline(ctx, flags, progress)
	if e != nil {
		return nil, settings, e
	}

	e = p.Load(ctx)
	bar.finish()
	if e != nil {
		p.Close()
		return nil, settings, fmt.Errorf("failed to load object graph: %w", e)
	}
	return p, settings, nil
}

func artifactWriter(settings config.Settings, log *slog.Logger) *artifacts.Writer {
	return artifacts.NewWriter(settings.ArtifactsDir, settings.ArtifactsEnabled, log)
}

// progressBar draws a bar on stderr for the first batch only. The store
// never overlaps update calls, even across batches, and drops calls from a
// superseded batch. Once the bar finishes, later batches are not drawn.
type progressBar struct {
	bar  *progressbar.ProgressBar
	done bool
}

func newProgressBar() *progressBar {
	return &progressBar{}
}

func (p *progressBar) update(done, total int) {
	if p.done {
		return
	}
	if p.bar == nil {
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("reading objects"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionClearOnFinish(),
		)
	}
	_ = p.bar.Set(done)
}

func (p *progressBar) finish() {
	if p.bar != nil && !p.done {
		_ = p.bar.Finish()
	}
	p.done = true
}
