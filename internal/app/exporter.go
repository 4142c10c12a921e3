package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/quantmind-br/codedoc-go/internal/acquire"
	"github.com/quantmind-br/codedoc-go/internal/cache"
	"github.com/quantmind-br/codedoc-go/internal/config"
	"github.com/quantmind-br/codedoc-go/internal/document"
	"github.com/quantmind-br/codedoc-go/internal/domain"
	"github.com/quantmind-br/codedoc-go/internal/highlight"
	"github.com/quantmind-br/codedoc-go/internal/output"
	"github.com/quantmind-br/codedoc-go/internal/utils"
	"github.com/quantmind-br/codedoc-go/internal/walker"
)

// Exporter runs the resolve, walk and compose pipeline for one source
type Exporter struct {
	config      *config.Config
	resolver    *Resolver
	walker      *walker.Walker
	highlighter domain.Highlighter
	cache       domain.Cache
	progress    utils.ProgressOptions
	logger      *utils.Logger
}

// ExporterOptions contains options for creating an exporter
type ExporterOptions struct {
	Config  *config.Config
	Verbose bool

	// Overrides, mostly for tests
	Acquirer       domain.Acquirer
	Highlighter    domain.Highlighter
	HTTPClient     *http.Client
	TempBase       string
	Logger         *utils.Logger
	ProgressOutput io.Writer
}

// NewExporter creates an exporter from the configuration
func NewExporter(opts ExporterOptions) (*Exporter, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = utils.NewLogger(utils.LoggerOptions{
			Level:   cfg.Logging.Level,
			Format:  cfg.Logging.Format,
			Verbose: opts.Verbose,
		})
	}

	progress := utils.ProgressOptions{
		Output:  opts.ProgressOutput,
		Enabled: cfg.Output.Progress,
	}

	e := &Exporter{
		config:   cfg,
		progress: progress,
		logger:   logger,
		walker: walker.New(walker.Options{
			Extensions:  cfg.Walk.Extensions,
			ExcludeDirs: cfg.Walk.ExcludeDirs,
			Sort:        cfg.Walk.Sort,
			Logger:      logger.WithComponent("walker"),
		}),
		highlighter: opts.Highlighter,
	}
	if e.highlighter == nil {
		e.highlighter = highlight.New()
	}

	acquirer := opts.Acquirer
	if acquirer == nil {
		if cfg.Cache.Enabled {
			c, err := cache.NewBadgerCache(cache.Options{
				Directory: utils.ExpandPath(cfg.Cache.Directory),
			})
			if err != nil {
				return nil, fmt.Errorf("failed to open cache: %w", err)
			}
			e.cache = c
		}

		acquirer = acquire.New(acquire.Options{
			DefaultRef: cfg.Acquire.DefaultRef,
			Method:     cfg.Acquire.Method,
			KeepTemp:   cfg.Acquire.KeepTemp,
			TempBase:   opts.TempBase,
			HTTPClient: opts.HTTPClient,
			Timeout:    cfg.Acquire.Timeout,
			MaxRetries: cfg.Acquire.MaxRetries,
			UserAgent:  cfg.Acquire.UserAgent,
			Cache:      e.cache,
			CacheTTL:   cfg.Cache.TTL,
			Progress:   progress,
			Logger:     logger.WithComponent("acquire"),
		})
	}
	e.resolver = NewResolver(acquirer, logger.WithComponent("resolver"))

	return e, nil
}

// Run exports source into a document at outputPath.
//
// Nothing is written when resolution or walking fails. When composing fails
// part-way and output.save_partial is set, the files completed so far are
// saved and the returned summary is marked partial; the error is still
// returned.
func (e *Exporter) Run(ctx context.Context, source, outputPath string) (*domain.Summary, error) {
	start := time.Now()
	logger := e.logger.WithSource(source)

	logger.Info().Str("output", outputPath).Msg("Starting export")

	checkout, err := e.resolver.Resolve(ctx, source)
	if err != nil {
		if ctx.Err() != nil {
			logger.Warn().Msg("Export cancelled")
			return nil, ctx.Err()
		}
		return nil, err
	}
	defer func() {
		if err := checkout.Close(); err != nil {
			logger.Warn().Err(err).Str("dir", checkout.Dir).Msg("Failed to remove temp dir")
		} else if checkout.Keep && checkout.Dir != "" {
			logger.Info().Str("dir", checkout.Dir).Msg("Keeping temp dir")
		}
	}()

	entries, err := e.walker.Collect(checkout.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", checkout.Root, err)
	}
	if len(entries) == 0 {
		logger.Warn().Err(domain.ErrNoFiles).Str("root", checkout.Root).Msg("Document will only contain the title")
	}

	writer := output.NewWriter(output.WriterOptions{
		Path:        outputPath,
		JSONSummary: e.config.Output.JSONSummary,
		DryRun:      e.config.Output.DryRun,
	})
	composer := document.NewComposer(document.ComposerOptions{
		Title:           e.config.Output.Title,
		Font:            e.config.Output.Font,
		FontSize:        e.config.Output.FontSize,
		CheckpointEvery: e.config.Output.CheckpointEvery,
		Writer:          writer,
		Highlighter:     e.highlighter,
		Logger:          logger.WithComponent("composer"),
	})

	summary := &domain.Summary{
		Source: source,
		Root:   checkout.Root,
		Output: outputPath,
		Method: checkout.Method,
	}

	bar := utils.NewProgressBar(len(entries), utils.DescComposing, e.progress)
	for _, entry := range entries {
		if err := composer.AddFile(ctx, entry); err != nil {
			_ = bar.Exit()
			summary.Files = composer.Files()
			summary.FailedAt = entry.RelPath
			return e.fail(logger, composer, writer, summary, err)
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	if err := composer.Save(); err != nil {
		return nil, err
	}
	summary.Files = composer.Files()

	if err := writer.WriteSummary(summary); err != nil {
		logger.Warn().Err(err).Msg("Failed to write summary")
	}

	logger.Info().
		Int("files", len(summary.Files)).
		Str("method", summary.Method).
		Bool("dry_run", writer.IsDryRun()).
		Dur("duration", time.Since(start)).
		Msg("Export completed")

	return summary, nil
}

// fail saves whatever was composed before err, when allowed, and logs where
// a rerun would pick up
func (e *Exporter) fail(logger *utils.Logger, composer *document.Composer, writer *output.Writer, summary *domain.Summary, err error) (*domain.Summary, error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		logger.Warn().Msg("Export cancelled")
	}

	if !e.config.Output.SavePartial || composer.Len() == 0 {
		return nil, err
	}

	if serr := composer.Save(); serr != nil {
		logger.Error().Err(serr).Msg("Failed to save partial document")
		return nil, err
	}
	summary.Partial = true

	if serr := writer.WriteSummary(summary); serr != nil {
		logger.Warn().Err(serr).Msg("Failed to write summary")
	}

	logger.Warn().
		Err(err).
		Int("files", composer.Len()).
		Str("last_completed", composer.Last()).
		Str("failed_at", summary.FailedAt).
		Str("output", summary.Output).
		Msg("Saved partial document")

	return summary, err
}

// Close releases resources held by the exporter
func (e *Exporter) Close() error {
	if e.cache != nil {
		return e.cache.Close()
	}
	return nil
}
