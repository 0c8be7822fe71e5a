// Package sanitize cleans free text submitted through the public forms
// before it is stored or echoed back to the salon team.
package sanitize

import (
	"html"
	"regexp"
	"strings"
	"unicode"
)

var (
	htmlTagRegex    = regexp.MustCompile(`<[^>]*>`)
	blankLinesRegex = regexp.MustCompile(`\n{3,}`)
)

// StripHTML removes markup, decodes entities and removes any tags the
// decoding revealed.
func StripHTML(s string) string {
	result := htmlTagRegex.ReplaceAllString(s, "")
	result = html.UnescapeString(result)
	return htmlTagRegex.ReplaceAllString(result, "")
}

// Text cleans a single-line field such as a name or a reason. Every run
// of whitespace becomes one space.
func Text(s string) string {
	cleaned := dropControl(StripHTML(s), false)
	return strings.Join(strings.Fields(cleaned), " ")
}

// Message cleans a multi-line field such as an enquiry message or booking
// notes. Line breaks survive, at most one blank line in a row.
func Message(s string) string {
	cleaned := strings.ReplaceAll(StripHTML(s), "\r\n", "\n")
	cleaned = dropControl(cleaned, true)

	lines := strings.Split(cleaned, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	cleaned = blankLinesRegex.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(cleaned)
}

func dropControl(s string, keepNewlines bool) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' && keepNewlines {
			return r
		}
		if r == '\t' || r == '\n' || r == '\r' {
			return ' '
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
