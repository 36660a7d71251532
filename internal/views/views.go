// Package views derives report-ready groupings from a completed fact
// store. Everything here is a pure function; no view mutates the store.
package views

import (
	"sort"
	"strings"

	"ownmap/internal/core/scan"
	"ownmap/internal/engine/extract"
)

// UnknownDomain is the explicit bucket for records without an ownership tag.
const UnknownDomain = "unknown"

type DomainBucket struct {
	Domain  string
	Count   int
	Percent float64
}

// DomainBuckets groups records by domain, sorted by descending count.
// Percentages are of the store total and sum to 100 within rounding.
func DomainBuckets(store *scan.FactStore) []DomainBucket {
	records := store.Records()
	if len(records) == 0 {
		return nil
	}

	counts := make(map[string]int)
	for _, rec := range records {
		domain := rec.Domain
		if domain == "" {
			domain = UnknownDomain
		}
		counts[domain]++
	}

	buckets := make([]DomainBucket, 0, len(counts))
	total := float64(len(records))
	for domain, count := range counts {
		buckets = append(buckets, DomainBucket{
			Domain:  domain,
			Count:   count,
			Percent: float64(count) / total * 100,
		})
	}

	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Count != buckets[j].Count {
			return buckets[i].Count > buckets[j].Count
		}
		return buckets[i].Domain < buckets[j].Domain
	})
	return buckets
}

// SortedListing orders all records case-insensitively by namespace where
// present, else by file name. Scanning the listing visually surfaces
// domain drifts within one namespace.
func SortedListing(store *scan.FactStore) []extract.DefinitionRecord {
	records := store.Records()
	sort.Slice(records, func(i, j int) bool {
		a := strings.ToLower(listingKey(records[i]))
		b := strings.ToLower(listingKey(records[j]))
		if a != b {
			return a < b
		}
		return records[i].QualifiedKey < records[j].QualifiedKey
	})
	return records
}

func listingKey(rec extract.DefinitionRecord) string {
	if rec.Namespace != "" {
		return rec.Namespace
	}
	return rec.FileName
}

type UsageEntry struct {
	Name  string
	Count int
	Files []string
	// Record is the matching definition when the name resolves by exact
	// qualified-key match; unresolved names stay nil.
	Record *extract.DefinitionRecord
}

// UsageRanking orders tracked names by descending reference count and
// pairs each with its definition record where resolvable.
func UsageRanking(store *scan.FactStore, usages *scan.UsageIndex) []UsageEntry {
	if usages == nil {
		return nil
	}

	entries := usages.Entries()
	ranking := make([]UsageEntry, 0, len(entries))
	for name, files := range entries {
		entry := UsageEntry{Name: name, Count: len(files), Files: files}
		if rec, ok := store.Get(name); ok {
			entry.Record = &rec
		}
		ranking = append(ranking, entry)
	}

	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Count != ranking[j].Count {
			return ranking[i].Count > ranking[j].Count
		}
		return ranking[i].Name < ranking[j].Name
	})
	return ranking
}
