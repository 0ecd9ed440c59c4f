package deploy

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxSlugLen = 40

var (
	// Legal-entity suffixes that add nothing to a preview URL.
	legalSuffixes = regexp.MustCompile(`(?i)\b(b\.?v\.?|n\.?v\.?|v\.?o\.?f\.?|bvba|ltd|gmbh)\b`)
	nonAlnum      = regexp.MustCompile(`[^a-z0-9]+`)
)

// accentFolder decomposes accented characters and drops the combining marks,
// so "café" becomes "cafe".
var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify converts a business display name into a URL-safe site slug.
// Idempotent on already-clean lowercase-hyphen input.
func Slugify(name string) string {
	name = legalSuffixes.ReplaceAllString(name, "")

	if folded, _, err := transform.String(accentFolder, name); err == nil {
		name = folded
	}

	name = nonAlnum.ReplaceAllString(strings.ToLower(name), "-")
	name = strings.Trim(name, "-")
	if len(name) > maxSlugLen {
		name = strings.Trim(name[:maxSlugLen], "-")
	}
	return name
}
