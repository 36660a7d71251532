package extract

// DefinitionRecord is the dialect-independent fact shape: one per declared
// class (class dialect) or one per file (scripting dialect).
type DefinitionRecord struct {
	// QualifiedKey is Namespace\ClassName for the class dialect and the
	// scan-relative file path for the scripting dialect. Unique per store.
	QualifiedKey string `json:"qualifiedKey"`
	Namespace    string `json:"namespace,omitempty"`
	ClassName    string `json:"className,omitempty"`
	FileName     string `json:"fileName"`
	// Domain is the ownership tag; absent (empty) when no tag was found,
	// never an empty-but-present string in serialized form.
	Domain     string `json:"domain,omitempty"`
	IsInternal bool   `json:"isInternal"`
	// IsFinal is nil where the dialect has no sealing concept.
	IsFinal *bool `json:"isFinal,omitempty"`
}

// KeySeparator joins namespace and class name into a qualified key.
const KeySeparator = `\`
