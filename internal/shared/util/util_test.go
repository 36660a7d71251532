package util

import "testing"

func TestNormalizePatternPath(t *testing.T) {
	cases := map[string]string{
		"./src/Checkout":    "src/Checkout",
		"src\\Core\\Cart":   "src/Core/Cart",
		"  src/Storefront ": "src/Storefront",
		".":                 "",
	}
	for in, want := range cases {
		if got := NormalizePatternPath(in); got != want {
			t.Errorf("NormalizePatternPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHasTestSegment(t *testing.T) {
	cases := map[string]bool{
		"src/Checkout/Test/CartTest.php": true,
		"src/Checkout/tests/cart.spec.js": true,
		"src/TESTS/foo.php":               true,
		"src/Checkout/Cart.php":           false,
		"src/testing/helper.php":          false,
		"contest/entry.js":                false,
	}
	for in, want := range cases {
		if got := HasTestSegment(in); got != want {
			t.Errorf("HasTestSegment(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSortedStringKeys(t *testing.T) {
	m := map[string]int{"b": 1, "a": 2, "c": 3}
	keys := SortedStringKeys(m)
	if len(keys) != 3 || keys[0] != "a" || keys[1] != "b" || keys[2] != "c" {
		t.Errorf("unexpected key order: %v", keys)
	}
}
