package sheets

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"petition_tally/internal/config"
	"petition_tally/internal/retry"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// Row maps a header cell to the row's value in that column.
type Row map[string]string

var exportClient = resty.New().
	SetTimeout(30 * time.Second).
	SetHeader("Accept", "text/csv,text/plain,*/*")

// FetchRows downloads the CSV export of a spreadsheet and parses it into
// header-keyed rows. Transient fetch failures are retried within the
// CSVFetch budget; anything still failing is logged and yields an empty
// slice, leaving the caller to decide whether an empty sheet is fatal.
func FetchRows(ctx context.Context, exportURL string) []Row {
	log.Debug().Str("url", exportURL).Msg("Fetching CSV export")

	body, err := retry.WithRetry(ctx, config.DefaultResilienceConfig.CSVFetch, func(ctx context.Context) (string, error) {
		return fetchExport(ctx, exportURL)
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch CSV export")
		return nil
	}

	rows, err := ParseRows(strings.NewReader(body))
	if err != nil {
		log.Error().Err(err).Msg("Failed to parse CSV export")
		return nil
	}

	log.Debug().Int("rows", len(rows)).Msg("Parsed CSV export")
	return rows
}

func fetchExport(ctx context.Context, exportURL string) (string, error) {
	resp, err := exportClient.R().SetContext(ctx).Get(exportURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch CSV export: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("CSV export returned status %d", resp.StatusCode())
	}
	return resp.String(), nil
}

// ParseRows reads CSV data where the first record is the header row.
// Short records are padded so every row has a value for every header.
func ParseRows(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}

		row := make(Row, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = record[i]
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
