package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"ownmap/internal/core/config"
	"ownmap/internal/core/scan"
	"ownmap/internal/data/cache"
	"ownmap/internal/data/history"
	"ownmap/internal/engine/parser"
	"ownmap/internal/shared/util"
	"ownmap/internal/ui/report"
	"ownmap/internal/views"
)

const Version = "1.0.0"

// App wires the scan pipeline together for one invocation: parser and
// scanner construction, cache short-circuit, report generation and the
// optional history trail.
type App struct {
	Config  *config.Config
	Root    string
	scanner *scan.Scanner
	history *history.Store
}

type RunOptions struct {
	// NoCache bypasses a present cache without deleting it.
	NoCache bool
}

type RunResult struct {
	Result   *scan.Result
	CacheHit bool
	Duration time.Duration
}

func New(cfg *config.Config, root string) (*App, error) {
	specs := dialectSpecs(cfg)
	loader, err := parser.NewGrammarLoader(specs)
	if err != nil {
		return nil, err
	}
	p := parser.NewParser(loader, specs)
	slog.Debug("grammars ready", "dialects", loader.DialectNames(), "extensions", p.SupportedExtensions())

	a := &App{
		Config:  cfg,
		Root:    root,
		scanner: scan.NewScanner(p, cfg),
	}

	if cfg.History.IsEnabled() {
		store, err := history.Open(filepath.Join(cfg.Output.Dir, cfg.History.Path))
		if err != nil {
			// History is a convenience trail, never a reason to refuse a scan.
			slog.Warn("failed to open history store", "error", err)
		} else {
			a.history = store
		}
	}

	return a, nil
}

func dialectSpecs(cfg *config.Config) []parser.DialectSpec {
	names := util.SortedStringKeys(cfg.Dialects)
	specs := make([]parser.DialectSpec, 0, len(names))
	for _, name := range names {
		d := cfg.Dialects[name]
		specs = append(specs, parser.DialectSpec{
			Name:       name,
			Family:     parser.FamilyFor(name),
			Extensions: d.Extensions,
			Enabled:    d.IsEnabled(),
		})
	}
	return specs
}

func (a *App) cachePath() string {
	return filepath.Join(a.Config.Output.Dir, a.Config.Output.CacheFile)
}

func (a *App) reportPath() string {
	return filepath.Join(a.Config.Output.Dir, a.Config.Output.ReportFile)
}

// Run resolves the fact store: from the cache when a valid envelope exists,
// otherwise by a fresh scan followed by a cache write. The cache read
// happens before any tree I/O; a hit performs zero file reads.
func (a *App) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	started := time.Now()
	key := cache.Key(a.Root, Version)

	if !opts.NoCache {
		if result, ok := cache.Load(a.cachePath(), key); ok {
			slog.Info("cache hit, skipping scan", "path", a.cachePath())
			run := &RunResult{Result: result, CacheHit: true, Duration: time.Since(started)}
			a.recordSnapshot(run)
			return run, nil
		}
	}

	result, err := a.scanner.Run(ctx, a.Root)
	if err != nil {
		return nil, err
	}

	if err := cache.Save(a.cachePath(), key, result); err != nil {
		slog.Warn("failed to write cache", "path", a.cachePath(), "error", err)
	}

	run := &RunResult{Result: result, Duration: time.Since(started)}
	a.recordSnapshot(run)
	return run, nil
}

func (a *App) recordSnapshot(run *RunResult) {
	if a.history == nil {
		return
	}
	snap := history.Snapshot{
		Timestamp:   time.Now().UTC(),
		Root:        a.Root,
		FileCount:   run.Result.Files,
		RecordCount: run.Result.Store.Len(),
		DomainCount: len(views.DomainBuckets(run.Result.Store)),
		CacheHit:    run.CacheHit,
		Duration:    run.Duration,
	}
	if err := a.history.SaveSnapshot(snap); err != nil {
		slog.Warn("failed to record scan snapshot", "error", err)
		return
	}
	if err := a.history.Prune(a.Root, a.Config.History.Keep); err != nil {
		slog.Warn("failed to prune scan history", "error", err)
	}
}

// GenerateReport renders the aggregation views into the HTML report file.
func (a *App) GenerateReport(result *scan.Result) error {
	buckets := views.DomainBuckets(result.Store)
	listing := views.SortedListing(result.Store)
	ranking := views.UsageRanking(result.Store, result.Usages)

	title := filepath.Base(a.Root)
	if abs, err := filepath.Abs(a.Root); err == nil {
		title = filepath.Base(abs)
	}

	html := report.GenerateHTML(title, buckets, listing, ranking)
	return util.WriteStringWithDirs(a.reportPath(), html, 0o644)
}

// PrintSummary writes the post-run console summary.
func (a *App) PrintSummary(w io.Writer, run *RunResult) {
	source := "scan"
	if run.CacheHit {
		source = "cache"
	}
	fmt.Fprintf(w, "ownmap v%s (%s, %s)\n", Version, source, run.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "  files:   %d\n", run.Result.Files)
	fmt.Fprintf(w, "  records: %d\n", run.Result.Store.Len())

	buckets := views.DomainBuckets(run.Result.Store)
	fmt.Fprintf(w, "  domains: %d\n", len(buckets))
	top := buckets
	if len(top) > 5 {
		top = top[:5]
	}
	for _, b := range top {
		fmt.Fprintf(w, "    %-24s %5d  %5.1f%%\n", b.Domain, b.Count, b.Percent)
	}
	fmt.Fprintf(w, "  report:  %s\n", a.reportPath())
}

// PrintHistory writes recent snapshots for the scan root, newest first.
func (a *App) PrintHistory(w io.Writer, limit int) error {
	if a.history == nil {
		return fmt.Errorf("history store is disabled")
	}
	snapshots, err := a.history.RecentSnapshots(a.Root, limit)
	if err != nil {
		return err
	}
	for _, s := range snapshots {
		source := "scan"
		if s.CacheHit {
			source = "cache"
		}
		fmt.Fprintf(w, "%s  files=%d records=%d domains=%d (%s, %s)\n",
			s.Timestamp.Format(time.RFC3339), s.FileCount, s.RecordCount,
			s.DomainCount, source, s.Duration.Round(time.Millisecond))
	}
	return nil
}

func (a *App) Close() error {
	if a.history != nil {
		return a.history.Close()
	}
	return nil
}
