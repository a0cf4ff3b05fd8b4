package processing

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"petition_tally/internal/config"
	"petition_tally/internal/petition"
	"petition_tally/internal/retry"
	"petition_tally/internal/sheets"

	"github.com/rs/zerolog/log"
	gsheets "google.golang.org/api/sheets/v4"
)

// Sheet columns the pipeline reads and writes.
const (
	TitleColumn  = "Title_Eng"
	URLColumn    = "VoteForm - Eng"
	TargetHeader = "VoteTally - Eng"
)

// SignResult pairs a row's title with its scraped signature count. A nil
// count means the row was skipped or the scrape found nothing; the row
// still occupies its slot so write positions line up with the input order.
type SignResult struct {
	Title string
	Count *int
}

// SignatureScraper extracts a signature count from a petition page.
type SignatureScraper interface {
	SignatureCount(ctx context.Context, pageURL string) (count int, found bool)
}

// CollectSignCounts scrapes every row with a supported petition URL,
// keeping one result per input row in input order. The delay applies only
// between scrape attempts; skipped rows don't wait.
func CollectSignCounts(ctx context.Context, rows []sheets.Row, scraper SignatureScraper, delay time.Duration) []SignResult {
	results := make([]SignResult, 0, len(rows))

	for _, row := range rows {
		title := row[TitleColumn]
		if title == "" {
			title = "Unknown"
		}
		pageURL := strings.TrimSpace(row[URLColumn])

		if pageURL == "" {
			log.Debug().Str("title", title).Msg("No petition URL for row")
			results = append(results, SignResult{Title: title})
			continue
		}
		if !petition.IsPetitionURL(pageURL) {
			log.Debug().Str("title", title).Str("url", pageURL).Msg("Skipping unsupported petition URL")
			results = append(results, SignResult{Title: title})
			continue
		}

		log.Info().Str("title", title).Str("url", pageURL).Msg("Scraping signature count")
		result := SignResult{Title: title}
		if count, found := scraper.SignatureCount(ctx, pageURL); found {
			log.Info().Str("title", title).Int("count", count).Msg("Found signature count")
			result.Count = &count
		}
		results = append(results, result)

		select {
		case <-ctx.Done():
			return results
		case <-time.After(delay):
		}
	}

	return results
}

// WriteSignCounts locates (or appends) the tally column and writes all
// non-nil counts in one batched call. Returns false when the write fails;
// individual cells are never retried.
func WriteSignCounts(ctx context.Context, client *sheets.Client, spreadsheetID string, results []SignResult) bool {
	headers, err := retry.WithRetry(ctx, config.DefaultResilienceConfig.SheetRead, func(ctx context.Context) ([]string, error) {
		return client.ReadHeaderRow(ctx, spreadsheetID)
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to read sheet header row")
		return false
	}

	column, found := sheets.FindTargetColumn(headers, TargetHeader)
	if !found {
		log.Info().Str("column", column).Msgf("Adding %s column", TargetHeader)
		if err := client.UpdateCell(ctx, spreadsheetID, column+"1", TargetHeader); err != nil {
			log.Error().Err(err).Msg("Failed to add tally header")
			return false
		}
	}

	updates := BuildCountUpdates(column, results)
	if len(updates) == 0 {
		log.Warn().Msg("No sign counts to update")
		return true
	}

	log.Info().Int("cells", len(updates)).Str("column", column).Msg("Updating sign counts")
	if err := client.BatchUpdate(ctx, spreadsheetID, updates); err != nil {
		log.Error().Err(err).Msg("Failed to update sheet")
		return false
	}

	log.Info().Int("updated", len(updates)).Msg("Sheet update complete")
	return true
}

// BuildCountUpdates converts results to single-cell value ranges in the
// tally column. Row numbers are offset by two: one for the header row, one
// for A1 addressing being 1-based.
func BuildCountUpdates(column string, results []SignResult) []*gsheets.ValueRange {
	var updates []*gsheets.ValueRange
	for i, result := range results {
		if result.Count == nil {
			continue
		}
		updates = append(updates, &gsheets.ValueRange{
			Range:  fmt.Sprintf("%s%d", column, i+2),
			Values: [][]interface{}{{strconv.Itoa(*result.Count)}},
		})
	}
	return updates
}

// CountFound reports how many results carry a non-nil count.
func CountFound(results []SignResult) int {
	n := 0
	for _, r := range results {
		if r.Count != nil {
			n++
		}
	}
	return n
}
