package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/sheets/v4"
)

// Client wraps the Sheets API service with the handful of value operations
// the pipeline needs.
type Client struct {
	service *sheets.Service
}

func NewClient(service *sheets.Service) *Client {
	return &Client{service: service}
}

// ReadHeaderRow returns the first row of the spreadsheet (A1:Z1) as
// strings. Missing cells come back as empty strings.
func (c *Client) ReadHeaderRow(ctx context.Context, spreadsheetID string) ([]string, error) {
	resp, err := c.service.Spreadsheets.Values.Get(spreadsheetID, "A1:Z1").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}
	if len(resp.Values) == 0 {
		return nil, nil
	}

	headers := make([]string, 0, len(resp.Values[0]))
	for _, cell := range resp.Values[0] {
		headers = append(headers, fmt.Sprintf("%v", cell))
	}
	return headers, nil
}

// UpdateCell writes a single value at cellRange (e.g. "H1") with RAW input.
func (c *Client) UpdateCell(ctx context.Context, spreadsheetID, cellRange string, value interface{}) error {
	valueRange := &sheets.ValueRange{
		Values: [][]interface{}{{value}},
	}

	_, err := c.service.Spreadsheets.Values.Update(spreadsheetID, cellRange, valueRange).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to update cell %s: %w", cellRange, err)
	}
	return nil
}

// BatchUpdate issues one batchUpdate call covering all given ranges.
func (c *Client) BatchUpdate(ctx context.Context, spreadsheetID string, data []*sheets.ValueRange) error {
	req := &sheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}

	_, err := c.service.Spreadsheets.Values.BatchUpdate(spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to batch update values: %w", err)
	}
	return nil
}
