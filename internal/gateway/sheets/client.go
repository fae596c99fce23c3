package sheets

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"deltawatch/internal/config"
)

// Client persists alert rule rows in one worksheet of a Google spreadsheet.
// It implements alert.Backend: reads return the raw cell grid, writes clear
// the worksheet and rewrite it wholesale.
type Client struct {
	service       *sheets.Service
	spreadsheetID string
	worksheet     string
}

// NewClient builds a sheets client from configuration. Credentials come from
// an inline service-account JSON blob when set, otherwise a credentials file.
func NewClient(ctx context.Context, cfg config.SheetsConfig) (*Client, error) {
	var opts []option.ClientOption
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	opts = append(opts, option.WithScopes(sheets.SpreadsheetsScope))
	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service failed: %w", err)
	}
	return &Client{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		worksheet:     cfg.Worksheet,
	}, nil
}

// Read returns every row of the worksheet. A missing worksheet reads as
// empty so a fresh spreadsheet starts with zero rules.
func (c *Client) Read(ctx context.Context) ([][]string, error) {
	resp, err := c.service.Spreadsheets.Values.Get(c.spreadsheetID, c.worksheet).Context(ctx).Do()
	if err != nil {
		if isMissingWorksheet(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading worksheet %q failed: %w", c.worksheet, err)
	}
	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, 0, len(raw))
		for _, cell := range raw {
			row = append(row, fmt.Sprint(cell))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Write replaces the worksheet contents with the given rows. The worksheet
// is created on first write if it does not exist yet.
func (c *Client) Write(ctx context.Context, rows [][]string) error {
	_, err := c.service.Spreadsheets.Values.Clear(c.spreadsheetID, c.worksheet, &sheets.ClearValuesRequest{}).Context(ctx).Do()
	if err != nil {
		if !isMissingWorksheet(err) {
			return fmt.Errorf("clearing worksheet %q failed: %w", c.worksheet, err)
		}
		if err := c.addWorksheet(ctx); err != nil {
			return err
		}
	}

	values := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		cells := make([]interface{}, 0, len(row))
		for _, cell := range row {
			cells = append(cells, cell)
		}
		values = append(values, cells)
	}
	_, err = c.service.Spreadsheets.Values.
		Update(c.spreadsheetID, c.worksheet+"!A1", &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("writing worksheet %q failed: %w", c.worksheet, err)
	}
	return nil
}

// Title probes spreadsheet access and returns its title.
func (c *Client) Title(ctx context.Context) (string, error) {
	meta, err := c.service.Spreadsheets.Get(c.spreadsheetID).Fields("properties.title").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("fetching spreadsheet metadata failed: %w", err)
	}
	if meta.Properties == nil {
		return "", nil
	}
	return meta.Properties.Title, nil
}

func (c *Client) addWorksheet(ctx context.Context) error {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: c.worksheet},
			},
		}},
	}
	_, err := c.service.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("creating worksheet %q failed: %w", c.worksheet, err)
	}
	return nil
}

// The values API reports a nonexistent worksheet as a 400 range parse error.
func isMissingWorksheet(err error) bool {
	apiErr, ok := err.(*googleapi.Error)
	if !ok {
		return false
	}
	return apiErr.Code == 400 && strings.Contains(apiErr.Message, "Unable to parse range")
}
