// Package postprocess cleans raw transcripts: filler words out, whitespace
// normalized, empty segments dropped. Timing is never touched.
package postprocess

import (
	"regexp"
	"strings"

	"github.com/nguyentantai21042004/minutes-flow/internal/models"
)

// DefaultFillers are removed as whole words, case-insensitively.
var DefaultFillers = []string{"um", "uh", "like", "you know", "i mean", "sort of", "kind of", "right", "okay"}

var (
	reSpaces       = regexp.MustCompile(`\s+`)
	reSpacePunct   = regexp.MustCompile(`\s+([,.;:!?])`)
	reLeadingPunct = regexp.MustCompile(`^[\s,.;:]+`)
	reRepeatComma  = regexp.MustCompile(`,(\s*,)+`)
)

// Cleaner removes a fixed set of filler phrases.
type Cleaner struct {
	fillers *regexp.Regexp
}

// NewCleaner builds a Cleaner for the given filler phrases.
func NewCleaner(fillers []string) *Cleaner {
	parts := make([]string, 0, len(fillers))
	for _, f := range fillers {
		words := strings.Fields(regexp.QuoteMeta(strings.ToLower(f)))
		if len(words) > 0 {
			parts = append(parts, strings.Join(words, `\s+`))
		}
	}
	if len(parts) == 0 {
		return &Cleaner{}
	}
	return &Cleaner{fillers: regexp.MustCompile(`(?i)\b(?:` + strings.Join(parts, "|") + `)\b,?`)}
}

var defaultCleaner = NewCleaner(DefaultFillers)

// Clean applies the default filler list.
func Clean(text string, segments []models.TranscriptSegment) models.CleanedTranscript {
	return defaultCleaner.Clean(text, segments)
}

// CleanText applies the default filler list to a single string.
func CleanText(s string) string {
	return defaultCleaner.CleanText(s)
}

// Clean returns the cleaned transcript. When segments exist the full text
// is their cleaned texts joined by newlines; otherwise text itself is
// cleaned. Clean(Clean(x)) == Clean(x).
func (c *Cleaner) Clean(text string, segments []models.TranscriptSegment) models.CleanedTranscript {
	out := models.CleanedTranscript{Segments: []models.TranscriptSegment{}}

	lines := make([]string, 0, len(segments))
	for _, s := range segments {
		t := c.CleanText(s.Text)
		if t == "" {
			continue
		}
		out.Segments = append(out.Segments, models.TranscriptSegment{Start: s.Start, End: s.End, Text: t})
		lines = append(lines, t)
	}

	if len(segments) > 0 {
		out.Text = strings.Join(lines, "\n")
	} else {
		out.Text = c.CleanText(text)
	}
	return out
}

// CleanText removes fillers and normalizes whitespace until nothing changes.
func (c *Cleaner) CleanText(s string) string {
	for {
		next := c.pass(s)
		if next == s {
			return s
		}
		s = next
	}
}

func (c *Cleaner) pass(s string) string {
	if c.fillers != nil {
		s = c.fillers.ReplaceAllString(s, " ")
	}
	s = reSpaces.ReplaceAllString(s, " ")
	s = reSpacePunct.ReplaceAllString(s, "$1")
	s = reRepeatComma.ReplaceAllString(s, ",")
	s = reLeadingPunct.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
