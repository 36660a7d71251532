package parser

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"ownmap/internal/core/errors"
)

// Capture is one named syntax-tree fragment produced by a structural query,
// with its source text already resolved. Captures arrive in document order;
// consumers must expect multiple captures per name.
type Capture struct {
	Name string
	Node *sitter.Node
	Text string
}

// Parsed wraps one file's syntax tree. The tree stays valid until Close;
// captures taken from it must not outlive the Parsed value.
type Parsed struct {
	Dialect string
	Family  string
	tree    *sitter.Tree
	source  []byte
}

func (p *Parsed) Close() {
	if p.tree != nil {
		p.tree.Close()
		p.tree = nil
	}
}

// Parser dispatches files to the grammar matching their extension and runs
// the dialect's structural queries against the resulting tree.
type Parser struct {
	loader     *GrammarLoader
	extensions map[string]string // ".php" -> "php"
}

func NewParser(loader *GrammarLoader, specs []DialectSpec) *Parser {
	p := &Parser{
		loader:     loader,
		extensions: make(map[string]string),
	}
	for _, spec := range specs {
		if !spec.Enabled {
			continue
		}
		if _, ok := loader.Dialect(spec.Name); !ok {
			continue
		}
		for _, ext := range spec.Extensions {
			p.extensions[strings.ToLower(ext)] = spec.Name
		}
	}
	return p
}

// DialectFor returns the dialect name for a path, or "" when the extension
// is not recognized. Unrecognized files are filtered at enumeration, so a
// "" here during a scan indicates a driver bug.
func (p *Parser) DialectFor(path string) string {
	return p.extensions[strings.ToLower(filepath.Ext(path))]
}

func (p *Parser) IsSupportedPath(path string) bool {
	return p.DialectFor(path) != ""
}

func (p *Parser) SupportedExtensions() []string {
	exts := make([]string, 0, len(p.extensions))
	for ext := range p.extensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Parse turns one file's content into a tree. A nil tree from the grammar
// is a ParseFailure; callers treat it as fatal for the whole run.
func (p *Parser) Parse(path string, content []byte) (*Parsed, error) {
	dialect := p.DialectFor(path)
	if dialect == "" {
		return nil, errors.New(errors.CodeNotSupported,
			fmt.Sprintf("no dialect registered for %s", filepath.Ext(path)))
	}

	rt, ok := p.loader.Dialect(dialect)
	if !ok {
		return nil, errors.New(errors.CodeInternal, fmt.Sprintf("grammar not loaded: %s", dialect))
	}

	sp := rt.pool.Get()
	defer rt.pool.Put(sp)

	tree := sp.Parse(content, nil)
	if tree == nil {
		err := errors.New(errors.CodeParseFailure, "parse produced no tree")
		err = errors.AddContext(err, errors.CtxPath, path)
		return nil, errors.AddContext(err, errors.CtxDialect, dialect)
	}

	return &Parsed{
		Dialect: dialect,
		Family:  rt.spec.Family,
		tree:    tree,
		source:  content,
	}, nil
}

// Definitions runs the dialect's definition query and returns its captures.
func (p *Parser) Definitions(parsed *Parsed) []Capture {
	rt, ok := p.loader.Dialect(parsed.Dialect)
	if !ok {
		return nil
	}
	return runQuery(rt.definitions, parsed)
}

// Usages runs the dialect's usage query, if the dialect ships one.
func (p *Parser) Usages(parsed *Parsed) []Capture {
	rt, ok := p.loader.Dialect(parsed.Dialect)
	if !ok || rt.usages == nil {
		return nil
	}
	return runQuery(rt.usages, parsed)
}

func runQuery(query *sitter.Query, parsed *Parsed) []Capture {
	cursor := sitter.NewQueryCursor()
	defer cursor.Close()

	var captures []Capture
	names := query.CaptureNames()
	matches := cursor.Matches(query, parsed.tree.RootNode(), parsed.source)
	for match := matches.Next(); match != nil; match = matches.Next() {
		for _, c := range match.Captures {
			captures = append(captures, Capture{
				Name: names[c.Index],
				Node: &c.Node,
				Text: c.Node.Utf8Text(parsed.source),
			})
		}
	}
	return captures
}
