package scan

import (
	"sync"

	"ownmap/internal/engine/extract"
)

// FactStore is the sole mutable aggregate built during a scan: one record
// per qualified key, insert-or-overwrite, no deletion. A store lives for
// exactly one scan invocation and is handed read-only to the cache writer
// and the aggregation step afterwards.
type FactStore struct {
	mu      sync.RWMutex
	records map[string]extract.DefinitionRecord
}

func NewFactStore() *FactStore {
	return &FactStore{records: make(map[string]extract.DefinitionRecord)}
}

// Insert stores the record under its qualified key. A later insert with the
// same key silently replaces the earlier one (last write wins).
func (s *FactStore) Insert(rec extract.DefinitionRecord) {
	s.mu.Lock()
	s.records[rec.QualifiedKey] = rec
	s.mu.Unlock()
}

func (s *FactStore) Get(key string) (extract.DefinitionRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[key]
	return rec, ok
}

func (s *FactStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Records returns a snapshot slice in unspecified order; consumers that
// need a stable order sort it themselves.
func (s *FactStore) Records() []extract.DefinitionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]extract.DefinitionRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	return out
}

// UsageIndex maps a referenced type name, as written at the use site, to the
// files that reference it. Duplicate file entries for repeated uses within
// one file are intentionally retained: the report ranks by frequency.
type UsageIndex struct {
	mu    sync.Mutex
	files map[string][]string
}

func NewUsageIndex() *UsageIndex {
	return &UsageIndex{files: make(map[string][]string)}
}

func (u *UsageIndex) Add(name, file string) {
	u.mu.Lock()
	u.files[name] = append(u.files[name], file)
	u.mu.Unlock()
}

func (u *UsageIndex) Files(name string) []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]string, len(u.files[name]))
	copy(out, u.files[name])
	return out
}

func (u *UsageIndex) Len() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.files)
}

// Entries returns a deep-copied snapshot of the whole index.
func (u *UsageIndex) Entries() map[string][]string {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make(map[string][]string, len(u.files))
	for name, files := range u.files {
		copied := make([]string, len(files))
		copy(copied, files)
		out[name] = copied
	}
	return out
}
