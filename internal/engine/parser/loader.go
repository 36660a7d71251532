package parser

import (
	"embed"
	"fmt"
	"sort"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"ownmap/internal/core/errors"
)

//go:embed queries/*.scm
var queryFiles embed.FS

// Dialect families decide which extractor consumes a file's captures.
const (
	FamilyClass  = "class"
	FamilyScript = "script"
)

type DialectSpec struct {
	Name       string
	Family     string
	Extensions []string
	Enabled    bool
}

type dialectRuntime struct {
	spec        DialectSpec
	language    *sitter.Language
	pool        *ParserPool
	definitions *sitter.Query
	usages      *sitter.Query
}

// GrammarLoader owns the statically linked grammars and their compiled
// structural queries. One instance serves a whole scan; all of its pieces
// are safe for concurrent use.
type GrammarLoader struct {
	dialects map[string]*dialectRuntime
}

func NewGrammarLoader(specs []DialectSpec) (*GrammarLoader, error) {
	gl := &GrammarLoader{dialects: make(map[string]*dialectRuntime)}

	for _, spec := range specs {
		if !spec.Enabled {
			continue
		}

		var language *sitter.Language
		switch spec.Name {
		case "php":
			language = sitter.NewLanguage(tree_sitter_php.LanguagePHP())
		case "javascript":
			language = sitter.NewLanguage(tree_sitter_javascript.Language())
		case "typescript":
			language = sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
		default:
			return nil, errors.New(errors.CodeNotSupported,
				fmt.Sprintf("dialect %q is enabled but no grammar is linked for it", spec.Name))
		}

		definitions, err := compileQuery(language, spec.Name)
		if err != nil {
			return nil, err
		}

		rt := &dialectRuntime{
			spec:        spec,
			language:    language,
			pool:        NewParserPool(language),
			definitions: definitions,
		}

		// Usage tracking only exists where a usages query file is shipped.
		if usages, err := compileQuery(language, spec.Name+"_usages"); err == nil {
			rt.usages = usages
		}

		gl.dialects[spec.Name] = rt
	}

	return gl, nil
}

func compileQuery(language *sitter.Language, name string) (*sitter.Query, error) {
	src, err := queryFiles.ReadFile("queries/" + name + ".scm")
	if err != nil {
		return nil, err
	}
	query, qerr := sitter.NewQuery(language, string(src))
	if qerr != nil {
		return nil, errors.Wrap(fmt.Errorf("%s", qerr.Message), errors.CodeInternal,
			fmt.Sprintf("invalid query %s.scm", name))
	}
	return query, nil
}

func (gl *GrammarLoader) Dialect(name string) (*dialectRuntime, bool) {
	rt, ok := gl.dialects[name]
	return rt, ok
}

func (gl *GrammarLoader) DialectNames() []string {
	names := make([]string, 0, len(gl.dialects))
	for name := range gl.dialects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FamilyFor maps a dialect name onto its extractor family.
func FamilyFor(name string) string {
	if name == "php" {
		return FamilyClass
	}
	return FamilyScript
}
