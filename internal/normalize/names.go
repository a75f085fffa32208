package normalize

import (
	"regexp"
	"strings"
)

var multiSpace = regexp.MustCompile(`\s+`)

// CollapseSpace trims and collapses internal whitespace without changing case.
func CollapseSpace(s string) string {
	return multiSpace.ReplaceAllString(strings.TrimSpace(s), " ")
}
