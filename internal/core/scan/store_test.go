package scan

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ownmap/internal/engine/extract"
)

func TestFactStoreLastWriteWins(t *testing.T) {
	store := NewFactStore()

	first := extract.DefinitionRecord{QualifiedKey: `Foo\Bar\Baz`, Domain: "checkout"}
	second := extract.DefinitionRecord{QualifiedKey: `Foo\Bar\Baz`, Domain: "storefront"}

	store.Insert(first)
	store.Insert(second)

	require.Equal(t, 1, store.Len())
	rec, ok := store.Get(`Foo\Bar\Baz`)
	require.True(t, ok)
	assert.Equal(t, "storefront", rec.Domain)
}

func TestFactStoreRecordsSnapshot(t *testing.T) {
	store := NewFactStore()
	store.Insert(extract.DefinitionRecord{QualifiedKey: "a"})
	store.Insert(extract.DefinitionRecord{QualifiedKey: "b"})

	records := store.Records()
	assert.Len(t, records, 2)

	// Mutating the snapshot must not touch the store.
	records[0].QualifiedKey = "mutated"
	_, ok := store.Get("mutated")
	assert.False(t, ok)
}

func TestFactStoreConcurrentInserts(t *testing.T) {
	store := NewFactStore()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				store.Insert(extract.DefinitionRecord{
					QualifiedKey: string(rune('a'+n)) + "-key",
				})
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 8, store.Len())
}

func TestUsageIndexRetainsDuplicates(t *testing.T) {
	usages := NewUsageIndex()
	usages.Add(`Acme\Core\Cart`, "src/a.php")
	usages.Add(`Acme\Core\Cart`, "src/a.php")
	usages.Add(`Acme\Core\Cart`, "src/b.php")

	files := usages.Files(`Acme\Core\Cart`)
	assert.Equal(t, []string{"src/a.php", "src/a.php", "src/b.php"}, files)
	assert.Equal(t, 1, usages.Len())
}

func TestUsageIndexEntriesIsACopy(t *testing.T) {
	usages := NewUsageIndex()
	usages.Add("X", "one.php")

	entries := usages.Entries()
	entries["X"][0] = "tampered"

	assert.Equal(t, []string{"one.php"}, usages.Files("X"))
}
