package extract

import (
	"regexp"
	"strings"
)

// Marker tokens mined from free-form comments. They are matched as plain
// substrings; surrounding docblock syntax is irrelevant.
const (
	internalMarker   = "@internal"
	privateMarker    = "@private"
	finalMarker      = "@final"
	packageAttribute = "Package"
)

// swPackagePattern extracts the ownership token from scripting-dialect
// comments, e.g. "/* @sw-package storefront */".
var swPackagePattern = regexp.MustCompile(`@sw-package\s+([A-Za-z0-9._-]+)`)

func containsMarker(comment, marker string) bool {
	return strings.Contains(comment, marker)
}

func anyContainsMarker(comments []string, markers ...string) bool {
	for _, comment := range comments {
		for _, marker := range markers {
			if containsMarker(comment, marker) {
				return true
			}
		}
	}
	return false
}

// firstPackageToken returns the first @sw-package token across the comments
// in order, or "" when none match.
func firstPackageToken(comments []string) string {
	for _, comment := range comments {
		if m := swPackagePattern.FindStringSubmatch(comment); m != nil {
			return m[1]
		}
	}
	return ""
}
