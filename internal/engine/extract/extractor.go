package extract

import (
	"ownmap/internal/engine/parser"
)

// Extractor reduces one file's capture multiset to zero or one record.
// A nil record with a nil error means the file legitimately contributes
// nothing (e.g. a class-dialect file that declares no class).
type Extractor interface {
	Extract(captures []parser.Capture, filePath string) (*DefinitionRecord, error)
}

// ForFamily selects the extractor for a dialect family. The mapping is
// fixed: extension filtering upstream guarantees every dispatched file
// belongs to one of the two families.
func ForFamily(family string) Extractor {
	if family == parser.FamilyClass {
		return &ClassExtractor{}
	}
	return &ScriptExtractor{}
}
