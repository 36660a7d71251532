package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSpecs() []DialectSpec {
	return []DialectSpec{
		{Name: "php", Family: FamilyClass, Extensions: []string{".php"}, Enabled: true},
		{Name: "javascript", Family: FamilyScript, Extensions: []string{".js", ".mjs"}, Enabled: true},
		{Name: "typescript", Family: FamilyScript, Extensions: []string{".ts"}, Enabled: true},
	}
}

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	specs := testSpecs()
	loader, err := NewGrammarLoader(specs)
	require.NoError(t, err)
	return NewParser(loader, specs)
}

func capturesByName(captures []Capture, name string) []string {
	var out []string
	for _, c := range captures {
		if c.Name == name {
			out = append(out, c.Text)
		}
	}
	return out
}

func TestDialectFor(t *testing.T) {
	p := newTestParser(t)

	assert.Equal(t, "php", p.DialectFor("src/Checkout/Cart.php"))
	assert.Equal(t, "javascript", p.DialectFor("src/app/index.js"))
	assert.Equal(t, "javascript", p.DialectFor("src/app/worker.MJS"))
	assert.Equal(t, "typescript", p.DialectFor("src/app/plugin.ts"))
	assert.Equal(t, "", p.DialectFor("README.md"))
	assert.False(t, p.IsSupportedPath("composer.json"))
}

func TestParsePHPDefinitionCaptures(t *testing.T) {
	p := newTestParser(t)

	source := []byte(`<?php

namespace Foo\Bar;

/**
 * @internal
 */
#[Package('checkout')]
final class Baz
{
}
`)

	parsed, err := p.Parse("src/Baz.php", source)
	require.NoError(t, err)
	defer parsed.Close()

	assert.Equal(t, FamilyClass, parsed.Family)

	captures := p.Definitions(parsed)
	assert.Equal(t, []string{`Foo\Bar`}, capturesByName(captures, "namespace"))
	assert.Equal(t, []string{"Baz"}, capturesByName(captures, "class.name"))
	assert.Len(t, capturesByName(captures, "class.final"), 1)
	assert.Equal(t, []string{"Package"}, capturesByName(captures, "attribute.name"))
	assert.Equal(t, []string{"checkout"}, capturesByName(captures, "attribute.value"))
	assert.NotEmpty(t, capturesByName(captures, "comment"))
}

func TestParsePHPFactsAnchorToTheirClass(t *testing.T) {
	p := newTestParser(t)

	source := []byte(`<?php

namespace Foo\Bar;

class Plain
{
}

#[Package('checkout')]
final class Sealed
{
}
`)

	parsed, err := p.Parse("src/classes.php", source)
	require.NoError(t, err)
	defer parsed.Close()

	captures := p.Definitions(parsed)
	assert.Equal(t, []string{"Plain", "Sealed"}, capturesByName(captures, "class.name"))
	assert.Len(t, capturesByName(captures, "class.final"), 1)
	assert.Equal(t, []string{"checkout"}, capturesByName(captures, "attribute.value"))

	// Plain's match closes before any of Sealed's facts appear, so a
	// consumer pairing facts with the following class name cannot
	// attribute Sealed's modifier or attribute to Plain.
	plainAt, valueAt, finalAt := -1, -1, -1
	for i, c := range captures {
		switch {
		case c.Name == "class.name" && c.Text == "Plain":
			plainAt = i
		case c.Name == "attribute.value":
			valueAt = i
		case c.Name == "class.final":
			finalAt = i
		}
	}
	require.NotEqual(t, -1, plainAt)
	assert.Less(t, plainAt, valueAt)
	assert.Less(t, plainAt, finalAt)
}

func TestParsePHPMethodAttributeNotCaptured(t *testing.T) {
	p := newTestParser(t)

	source := []byte(`<?php

namespace Foo\Bar;

class Handler
{
    #[Package('other')]
    public function handle(): void
    {
    }
}
`)

	parsed, err := p.Parse("src/Handler.php", source)
	require.NoError(t, err)
	defer parsed.Close()

	captures := p.Definitions(parsed)
	assert.Equal(t, []string{"Handler"}, capturesByName(captures, "class.name"))
	assert.Empty(t, capturesByName(captures, "attribute.name"))
	assert.Empty(t, capturesByName(captures, "attribute.value"))
}

func TestParsePHPWithoutClassYieldsNoClassCaptures(t *testing.T) {
	p := newTestParser(t)

	source := []byte(`<?php

namespace Foo\Bar;

function helper(): void {}
`)

	parsed, err := p.Parse("src/functions.php", source)
	require.NoError(t, err)
	defer parsed.Close()

	captures := p.Definitions(parsed)
	assert.Empty(t, capturesByName(captures, "class.name"))
	assert.Equal(t, []string{`Foo\Bar`}, capturesByName(captures, "namespace"))
}

func TestParseJavaScriptTopLevelComments(t *testing.T) {
	p := newTestParser(t)

	source := []byte(`/* @sw-package storefront */
// second top-level comment

function render() {
    // nested comment must not be captured
    return 1;
}
`)

	parsed, err := p.Parse("src/app/index.js", source)
	require.NoError(t, err)
	defer parsed.Close()

	assert.Equal(t, FamilyScript, parsed.Family)

	comments := capturesByName(p.Definitions(parsed), "comment")
	require.Len(t, comments, 2)
	assert.Contains(t, comments[0], "@sw-package storefront")
	assert.Contains(t, comments[1], "second top-level comment")
}

func TestUsageCaptures(t *testing.T) {
	p := newTestParser(t)

	source := []byte(`<?php

namespace Acme\Checkout;

class CartService
{
    public function build(): \Acme\Core\Cart
    {
        return \Acme\Core\Cart::create();
    }
}
`)

	parsed, err := p.Parse("src/CartService.php", source)
	require.NoError(t, err)
	defer parsed.Close()

	refs := capturesByName(p.Usages(parsed), "reference")
	require.NotEmpty(t, refs)
	for _, ref := range refs {
		assert.Contains(t, ref, `Acme\Core\Cart`)
	}
	// Repeated uses inside one file are retained, frequency matters.
	assert.GreaterOrEqual(t, len(refs), 2)
}

func TestScriptDialectHasNoUsageQuery(t *testing.T) {
	p := newTestParser(t)

	parsed, err := p.Parse("src/app/index.js", []byte("const a = 1;\n"))
	require.NoError(t, err)
	defer parsed.Close()

	assert.Empty(t, p.Usages(parsed))
}

func TestParserPoolReuse(t *testing.T) {
	specs := testSpecs()
	loader, err := NewGrammarLoader(specs)
	require.NoError(t, err)

	rt, ok := loader.Dialect("php")
	require.True(t, ok)

	first := rt.pool.Get()
	rt.pool.Put(first)
	second := rt.pool.Get()
	defer rt.pool.Put(second)

	tree := second.Parse([]byte("<?php $a = 1;"), nil)
	require.NotNil(t, tree)
	tree.Close()
}
