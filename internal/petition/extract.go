package petition

import (
	"regexp"
	"strconv"
	"strings"
)

// Counts outside this range are treated as page noise (years, pixel sizes,
// ad identifiers) rather than signature tallies.
const (
	minPlausibleCount = 1
	maxPlausibleCount = 1000000
)

// Patterns against the JSON state Change.org embeds in its pages. These are
// the most accurate source; the first one that matches wins and its first
// capture is the count.
var structuredPatterns = []*regexp.Regexp{
	regexp.MustCompile(`"signatureCount":\s*\{\s*"displayed":\s*(\d+),`),
	regexp.MustCompile(`"signatureCount":\s*\{\s*"total":\s*(\d+),`),
	regexp.MustCompile(`"signatureState":\s*\{\s*"signatureCount":\s*\{\s*"total":\s*(\d+),`),
	regexp.MustCompile(`"signatureState":\s*\{\s*"signatureCount":\s*\{\s*"displayed":\s*(\d+),`),
}

// Free-text and attribute patterns, tried only when no structured JSON
// matched. The first pattern yielding any plausible candidate wins, and the
// largest candidate from that pattern is taken.
var freeTextPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d{1,3}(?:,\d{3})*)\s*signatures?`),
	regexp.MustCompile(`(?i)(\d{1,3}(?:,\d{3})*)\s*people\s*signed`),
	regexp.MustCompile(`(?i)(\d{1,3}(?:,\d{3})*)\s*supporters`),
	regexp.MustCompile(`(?i)data-signature-count="(\d+)"`),
	regexp.MustCompile(`(?i)signature-count[^>]*>(\d+)`),
	regexp.MustCompile(`(?i)petition-signatures[^>]*>(\d+)`),
}

// ExtractSignatureCount searches page HTML for a signature count: embedded
// JSON state first, visible text second. Returns found=false when no
// pattern family produces a plausible number.
func ExtractSignatureCount(html string) (count int, found bool) {
	for _, pattern := range structuredPatterns {
		m := pattern.FindStringSubmatch(html)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		return n, true
	}

	for _, pattern := range freeTextPatterns {
		matches := pattern.FindAllStringSubmatch(html, -1)
		if matches == nil {
			continue
		}

		best := 0
		for _, m := range matches {
			n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
			if err != nil {
				continue
			}
			if n < minPlausibleCount || n > maxPlausibleCount {
				continue
			}
			if n > best {
				best = n
			}
		}
		if best > 0 {
			return best, true
		}
	}

	return 0, false
}
