package service

import (
	"html"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

// Texts are timed against an average reading speed of 200 words per minute.
const wordsPerMinute = 200

const slugMaxLen = 100

var (
	slugInvalidChars = regexp.MustCompile(`[^\w\s-]`)
	slugWhitespace   = regexp.MustCompile(`\s+`)

	excerptSanitizer = bluemonday.StrictPolicy()
)

// makeSlug derives the URL slug for a title: lowercase, strip everything
// outside word characters/whitespace/hyphens, collapse whitespace to hyphens,
// truncate to 100 characters and append an 8-character random suffix. The
// suffix makes collisions negligible without a uniqueness-retry loop; the DB
// unique index remains the authoritative guard.
func makeSlug(title string) string {
	slug := strings.ToLower(title)
	slug = slugInvalidChars.ReplaceAllString(slug, "")
	slug = slugWhitespace.ReplaceAllString(slug, "-")
	if len(slug) > slugMaxLen {
		slug = slug[:slugMaxLen]
	}
	return slug + "-" + uuid.New().String()[:8]
}

// contentMetrics computes the derived word count and reading time for a text
// body. Words are whitespace-delimited tokens of the trimmed content.
func contentMetrics(content string) (wordCount, readingTimeMinutes int) {
	wordCount = len(strings.Fields(content))
	if wordCount == 0 {
		return 0, 0
	}
	readingTimeMinutes = (wordCount + wordsPerMinute - 1) / wordsPerMinute
	return wordCount, readingTimeMinutes
}

// makeExcerpt strips any markup from the source and clips it for list views.
func makeExcerpt(source string, maxLen int) string {
	clean := excerptSanitizer.Sanitize(source)
	clean = html.UnescapeString(clean)
	clean = strings.Join(strings.Fields(clean), " ")
	if len(clean) <= maxLen {
		return clean
	}
	clipped := clean[:maxLen]
	if idx := strings.LastIndex(clipped, " "); idx > 0 {
		clipped = clipped[:idx]
	}
	return clipped + "…"
}
