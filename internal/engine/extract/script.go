package extract

import (
	"ownmap/internal/engine/parser"
)

// ScriptExtractor handles the dynamically-typed scripting dialect. There is
// no declaration concept, so every file contributes exactly one record
// keyed by its scan-relative path.
type ScriptExtractor struct{}

func (e *ScriptExtractor) Extract(captures []parser.Capture, filePath string) (*DefinitionRecord, error) {
	var comments []string
	for _, c := range captures {
		if c.Name == "comment" {
			comments = append(comments, c.Text)
		}
	}

	return &DefinitionRecord{
		QualifiedKey: filePath,
		FileName:     filePath,
		Domain:       firstPackageToken(comments),
		IsInternal:   anyContainsMarker(comments, internalMarker, privateMarker),
		// Sealing is not a concept in this dialect.
		IsFinal: nil,
	}, nil
}
