package cache

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/cespare/xxhash/v2"

	"ownmap/internal/core/scan"
	"ownmap/internal/engine/extract"
	"ownmap/internal/shared/observability"
)

const envelopeVersion = 1

// Envelope is the on-disk form of a completed scan: definitions and usages
// as ordered key/value pair sequences, reconstructible into the same maps.
type Envelope struct {
	Version     int          `json:"version"`
	Key         string       `json:"key"`
	Files       int          `json:"files"`
	Definitions []defEntry   `json:"definitions"`
	Usages      []usageEntry `json:"usages,omitempty"`
}

type defEntry struct {
	Key    string
	Record extract.DefinitionRecord
}

func (e defEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{e.Key, e.Record})
}

func (e *defEntry) UnmarshalJSON(data []byte) error {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[0], &e.Key); err != nil {
		return err
	}
	return json.Unmarshal(raw[1], &e.Record)
}

type usageEntry struct {
	Name  string
	Files []string
}

func (e usageEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{e.Name, e.Files})
}

func (e *usageEntry) UnmarshalJSON(data []byte) error {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[0], &e.Name); err != nil {
		return err
	}
	return json.Unmarshal(raw[1], &e.Files)
}

// Key derives the cache invalidation key for a scan root. Different roots
// (or tool versions) produce different keys, so a stale cache from another
// project is rejected instead of silently reused.
func Key(root, toolVersion string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	h := xxhash.New()
	_, _ = h.WriteString(abs)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(toolVersion)
	return fmt.Sprintf("%016x", h.Sum64())
}

// Load reads the envelope at path and reconstructs the stores. Any failure
// (missing file, malformed content, version or key mismatch) means "no
// cache"; the caller resolves that by scanning.
func Load(path, key string) (*scan.Result, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		observability.CacheLoadsTotal.WithLabelValues("miss").Inc()
		return nil, false
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		observability.CacheLoadsTotal.WithLabelValues("corrupt").Inc()
		slog.Debug("cache unreadable, rescanning", "path", path, "error", err)
		return nil, false
	}
	if env.Version != envelopeVersion {
		observability.CacheLoadsTotal.WithLabelValues("corrupt").Inc()
		slog.Debug("cache version mismatch, rescanning", "path", path, "version", env.Version)
		return nil, false
	}
	if env.Key != key {
		observability.CacheLoadsTotal.WithLabelValues("key_mismatch").Inc()
		slog.Debug("cache key mismatch, rescanning", "path", path)
		return nil, false
	}
	observability.CacheLoadsTotal.WithLabelValues("hit").Inc()

	store := scan.NewFactStore()
	for _, entry := range env.Definitions {
		store.Insert(entry.Record)
	}

	var usages *scan.UsageIndex
	if env.Usages != nil {
		usages = scan.NewUsageIndex()
		for _, entry := range env.Usages {
			for _, file := range entry.Files {
				usages.Add(entry.Name, file)
			}
		}
	}

	return &scan.Result{Store: store, Usages: usages, Files: env.Files}, true
}

// Save serializes the result to path, writing to a temp file first and
// renaming so an interrupted run never leaves a truncated envelope.
func Save(path, key string, result *scan.Result) error {
	env := Envelope{Version: envelopeVersion, Key: key, Files: result.Files}

	records := result.Store.Records()
	sort.Slice(records, func(i, j int) bool {
		return records[i].QualifiedKey < records[j].QualifiedKey
	})
	env.Definitions = make([]defEntry, 0, len(records))
	for _, rec := range records {
		env.Definitions = append(env.Definitions, defEntry{Key: rec.QualifiedKey, Record: rec})
	}

	if result.Usages != nil {
		entries := result.Usages.Entries()
		names := make([]string, 0, len(entries))
		for name := range entries {
			names = append(names, name)
		}
		sort.Strings(names)
		env.Usages = make([]usageEntry, 0, len(names))
		for _, name := range names {
			env.Usages = append(env.Usages, usageEntry{Name: name, Files: entries[name]})
		}
	}

	data, err := json.Marshal(env)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".cache-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
