package articles

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

const (
	maxSlugLength = 200
	fallbackSlug  = "article"
)

// Slugify lowercases the title and joins its letter and digit runs with dashes.
func Slugify(title string) string {
	var b strings.Builder
	pendingDash := false

	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}

	slug := b.String()
	if len(slug) > maxSlugLength {
		slug = strings.TrimRight(truncateUTF8(slug, maxSlugLength), "-")
	}
	if slug == "" {
		return fallbackSlug
	}
	return slug
}

// withSuffix appends a short random fragment, used when the plain slug is taken.
func withSuffix(slug string) string {
	return slug + "-" + uuid.NewString()[:8]
}

func truncateUTF8(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8Start(s[max]) {
		max--
	}
	return s[:max]
}

func utf8Start(b byte) bool {
	return b&0xC0 != 0x80
}
