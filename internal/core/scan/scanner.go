package scan

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gobwas/glob"
	ignore "github.com/sabhiram/go-gitignore"
	"golang.org/x/sync/errgroup"

	"ownmap/internal/core/config"
	"ownmap/internal/core/errors"
	"ownmap/internal/engine/extract"
	"ownmap/internal/engine/parser"
	"ownmap/internal/shared/observability"
	"ownmap/internal/shared/util"
)

// Scanner drives one scan: enumerate candidate files under a root, dispatch
// each to the extractor matching its dialect, and accumulate the results
// into a fresh FactStore and UsageIndex.
type Scanner struct {
	parser *parser.Parser
	cfg    *config.Config
}

// Result is what one completed scan hands to the cache writer and the
// aggregation views.
type Result struct {
	Store  *FactStore
	Usages *UsageIndex
	Files  int
}

func NewScanner(p *parser.Parser, cfg *config.Config) *Scanner {
	return &Scanner{parser: p, cfg: cfg}
}

// Run performs a full scan of root. Read failures are logged and skipped;
// a parse failure aborts the whole run.
func (s *Scanner) Run(ctx context.Context, root string) (*Result, error) {
	started := time.Now()

	files, err := s.enumerate(root)
	if err != nil {
		return nil, err
	}

	store := NewFactStore()
	var usages *UsageIndex
	if s.cfg.Scan.UsagesEnabled() {
		usages = NewUsageIndex()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Scan.Workers)

	for _, relPath := range files {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			return s.processFile(root, relPath, store, usages)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	observability.ScanDuration.Observe(time.Since(started).Seconds())
	observability.DefinitionRecords.Set(float64(store.Len()))

	return &Result{Store: store, Usages: usages, Files: len(files)}, nil
}

// enumerate walks root and returns scan-relative paths of every candidate
// file. Unrecognized extensions never appear in the result; dispatch later
// on relies on that.
func (s *Scanner) enumerate(root string) ([]string, error) {
	dirGlobs, err := compileGlobs(s.cfg.Exclude.Dirs)
	if err != nil {
		return nil, fmt.Errorf("invalid exclude dir pattern: %w", err)
	}
	fileGlobs, err := compileGlobs(s.cfg.Exclude.Files)
	if err != nil {
		return nil, fmt.Errorf("invalid exclude file pattern: %w", err)
	}

	var scopes []ignoreScope

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		base := filepath.Base(path)

		if d.IsDir() {
			if rel != "." {
				for _, g := range dirGlobs {
					if g.Match(base) {
						return filepath.SkipDir
					}
				}
				if !s.cfg.Scan.IncludeTests && isTestSegment(base) {
					return filepath.SkipDir
				}
				if ignoredBy(scopes, rel) {
					return filepath.SkipDir
				}
			}
			// A directory's own ignore file governs its contents, so
			// its scope starts after the directory itself passed.
			if s.cfg.Scan.GitignoreEnabled() {
				if gi, err := ignore.CompileIgnoreFile(filepath.Join(path, ".gitignore")); err == nil {
					scopes = append(scopes, ignoreScope{base: rel, rules: gi})
				}
			}
			return nil
		}

		if !s.parser.IsSupportedPath(path) {
			return nil
		}
		if !s.cfg.Scan.IncludeTests && util.HasTestSegment(rel) {
			return nil
		}
		for _, g := range fileGlobs {
			if g.Match(base) {
				return nil
			}
		}
		if ignoredBy(scopes, rel) {
			return nil
		}

		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

func (s *Scanner) processFile(root, relPath string, store *FactStore, usages *UsageIndex) error {
	content, err := os.ReadFile(filepath.Join(root, relPath))
	if err != nil {
		// Read failures are per-file nuisances; the scan continues.
		observability.ReadFailuresTotal.Inc()
		slog.Warn("failed to read file, skipping", "path", relPath, "error", err)
		return nil
	}

	started := time.Now()
	parsed, err := s.parser.Parse(relPath, content)
	if err != nil {
		// Corrupt input indicates a tool/grammar mismatch worth
		// stopping for, not a per-file nuisance.
		return errors.AddContext(err, errors.CtxPath, relPath)
	}
	defer parsed.Close()
	observability.ParsingDuration.WithLabelValues(parsed.Dialect).Observe(time.Since(started).Seconds())

	extractor := extract.ForFamily(parsed.Family)
	rec, err := extractor.Extract(s.parser.Definitions(parsed), relPath)
	if err != nil {
		return errors.AddContext(err, errors.CtxPath, relPath)
	}
	if rec != nil {
		store.Insert(*rec)
	}

	if usages != nil {
		for _, c := range s.parser.Usages(parsed) {
			if c.Name != "reference" {
				continue
			}
			name := strings.TrimPrefix(strings.TrimSpace(c.Text), extract.KeySeparator)
			if name == "" {
				continue
			}
			usages.Add(name, relPath)
		}
	}

	observability.FilesScannedTotal.WithLabelValues(parsed.Dialect).Inc()
	return nil
}

// ignoreScope is one .gitignore discovered during the walk, applied to the
// subtree below the directory that carries it.
type ignoreScope struct {
	base  string // scan-relative directory, "." at the root
	rules *ignore.GitIgnore
}

// ignoredBy matches rel against every scope whose subtree contains it,
// with the path rewritten relative to the scope's directory.
func ignoredBy(scopes []ignoreScope, rel string) bool {
	for _, sc := range scopes {
		sub := rel
		if sc.base != "." {
			if !strings.HasPrefix(rel, sc.base+"/") {
				continue
			}
			sub = strings.TrimPrefix(rel, sc.base+"/")
		}
		if sc.rules.MatchesPath(sub) {
			return true
		}
	}
	return false
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

func isTestSegment(name string) bool {
	switch strings.ToLower(name) {
	case "test", "tests":
		return true
	}
	return false
}
