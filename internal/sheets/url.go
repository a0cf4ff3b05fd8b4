package sheets

import (
	"fmt"
	"strings"
)

// SpreadsheetRef identifies a spreadsheet resolved from a shareable URL.
// Published ("/e/") URLs can be resolved but not written to; the Sheets API
// only accepts the document ID from the edit ("/d/") form.
type SpreadsheetRef struct {
	ID        string
	Published bool
}

// ResolveSpreadsheetRef extracts the spreadsheet ID from either an edit URL
// (.../d/<id>/...) or a published URL (.../d/e/<id>/... or .../e/<id>/...).
// The published form is checked first: its path also contains "/d/", and
// matching that segment would misread the literal "e" as the ID.
func ResolveSpreadsheetRef(rawURL string) (SpreadsheetRef, error) {
	if idx := strings.Index(rawURL, "/e/"); idx >= 0 {
		id := segmentAfter(rawURL, idx+len("/e/"))
		if id == "" {
			return SpreadsheetRef{}, fmt.Errorf("no spreadsheet ID after /e/ in %q", rawURL)
		}
		return SpreadsheetRef{ID: id, Published: true}, nil
	}
	if idx := strings.Index(rawURL, "/d/"); idx >= 0 {
		id := segmentAfter(rawURL, idx+len("/d/"))
		if id == "" {
			return SpreadsheetRef{}, fmt.Errorf("no spreadsheet ID after /d/ in %q", rawURL)
		}
		return SpreadsheetRef{ID: id}, nil
	}
	return SpreadsheetRef{}, fmt.Errorf("could not extract spreadsheet ID from %q", rawURL)
}

// ExportCSVURL returns the CSV export endpoint for the spreadsheet.
func (r SpreadsheetRef) ExportCSVURL() string {
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/export?format=csv", r.ID)
}

func segmentAfter(s string, start int) string {
	rest := s[start:]
	if end := strings.IndexAny(rest, "/?#"); end >= 0 {
		rest = rest[:end]
	}
	return rest
}
