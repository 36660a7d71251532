package extract

import (
	"strings"

	"ownmap/internal/engine/parser"
)

// ClassExtractor handles the attribute-bearing, class-based dialect. It
// contributes one record per compilation unit that declares both a
// namespace and a named class; anything less is silently skipped. The
// record describes the first declared class; facts from sibling classes
// in the same unit never leak into it.
type ClassExtractor struct{}

func (e *ClassExtractor) Extract(captures []parser.Capture, filePath string) (*DefinitionRecord, error) {
	var (
		namespace   string
		className   string
		structFinal bool
		domain      string
		comments    []string
	)

	// Attribute and final captures arrive before the @class.name that
	// closes their match. They stay pending until that name decides
	// whether they belong to the recorded class.
	var (
		pendingAttr   string
		pendingDomain string
		pendingFinal  bool
	)

	for _, c := range captures {
		switch c.Name {
		case "namespace":
			if namespace == "" {
				namespace = strings.TrimSpace(c.Text)
			}
		case "comment":
			comments = append(comments, c.Text)
		case "attribute.name":
			pendingAttr = strings.TrimSpace(c.Text)
		case "attribute.value":
			// The value capture follows its attribute's name capture
			// within the same match; only the ownership attribute counts.
			if pendingAttr == packageAttribute && pendingDomain == "" {
				pendingDomain = strings.TrimSpace(c.Text)
			}
		case "class.final":
			pendingFinal = true
		case "class.name":
			name := strings.TrimSpace(c.Text)
			if className == "" {
				className = name
			}
			if name == className {
				if domain == "" {
					domain = pendingDomain
				}
				structFinal = structFinal || pendingFinal
			}
			pendingAttr, pendingDomain, pendingFinal = "", "", false
		}
	}

	// A declaration without a resolvable name is dropped, not recorded
	// as a partial record.
	if namespace == "" || className == "" {
		return nil, nil
	}

	isFinal := structFinal || anyContainsMarker(comments, finalMarker)

	return &DefinitionRecord{
		QualifiedKey: namespace + KeySeparator + className,
		Namespace:    namespace,
		ClassName:    className,
		FileName:     filePath,
		Domain:       domain,
		IsInternal:   anyContainsMarker(comments, internalMarker),
		IsFinal:      &isFinal,
	}, nil
}
