// Package sheet implements the directory's record store on top of the
// Google Sheets API. The first worksheet of one fixed spreadsheet is the
// source of truth: row 1 is the header, every following row is one member.
//
// The API client is constructed once at startup and shared for the life of
// the process; the sheet data itself is never cached here.
package sheet

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/jspark-dev/rollbook/internal/config"
	"github.com/jspark-dev/rollbook/internal/directory"
)

// lastColumn bounds the A1 ranges we request. ZZ is 702 columns, far beyond
// any plausible directory schema.
const lastColumn = "ZZ"

// Client talks to one spreadsheet. It implements directory.Store.
type Client struct {
	service        *sheets.Service
	spreadsheetID  string
	sheetName      string
	maxRetries     int
	requestTimeout time.Duration
}

// New builds a Client from config. The underlying Sheets service holds the
// authenticated HTTP client, which is expensive to construct and safe to
// reuse across sequential requests.
func New(ctx context.Context, cfg config.SheetConfig) (*Client, error) {
	var opts []option.ClientOption
	if cfg.CredentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	} else {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	opts = append(opts, option.WithScopes(sheets.SpreadsheetsScope))

	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets client: %w", err)
	}

	return &Client{
		service:        srv,
		spreadsheetID:  cfg.SpreadsheetID,
		sheetName:      cfg.Name,
		maxRetries:     cfg.MaxRetries,
		requestTimeout: cfg.RequestTimeout,
	}, nil
}

// LoadAll fetches the header row and every data row.
func (c *Client) LoadAll(ctx context.Context) (directory.Header, [][]string, error) {
	var resp *sheets.ValueRange
	err := c.withRetry(ctx, func(callCtx context.Context) error {
		var err error
		resp, err = c.service.Spreadsheets.Values.Get(
			c.spreadsheetID,
			c.rangeRef(fmt.Sprintf("A1:%s", lastColumn)),
		).Context(callCtx).Do()
		return err
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", directory.ErrConnection, err)
	}

	if len(resp.Values) == 0 {
		return directory.Header{}, nil, nil
	}

	header := directory.Header(stringRow(resp.Values[0]))
	rows := make([][]string, 0, len(resp.Values)-1)
	for _, raw := range resp.Values[1:] {
		rows = append(rows, stringRow(raw))
	}
	return header, rows, nil
}

// ReadRow fetches the single data row at rowIndex.
func (c *Client) ReadRow(ctx context.Context, rowIndex int) ([]string, error) {
	n := RowNumber(rowIndex)
	var resp *sheets.ValueRange
	err := c.withRetry(ctx, func(callCtx context.Context) error {
		var err error
		resp, err = c.service.Spreadsheets.Values.Get(
			c.spreadsheetID,
			c.rangeRef(fmt.Sprintf("A%d:%s%d", n, lastColumn, n)),
		).Context(callCtx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", directory.ErrConnection, err)
	}

	if len(resp.Values) == 0 {
		return nil, nil
	}
	return stringRow(resp.Values[0]), nil
}

// WriteRow overwrites the data row at rowIndex, or appends when rowIndex is
// negative. Values must already be in header order. The write is immediately
// visible to subsequent LoadAll calls; there is no local buffering.
func (c *Client) WriteRow(ctx context.Context, rowIndex int, values []string) error {
	payload := &sheets.ValueRange{Values: [][]interface{}{cellRow(values)}}

	var err error
	if rowIndex < 0 {
		err = c.withRetry(ctx, func(callCtx context.Context) error {
			_, err := c.service.Spreadsheets.Values.Append(
				c.spreadsheetID,
				c.rangeRef(fmt.Sprintf("A:%s", lastColumn)),
				payload,
			).ValueInputOption("USER_ENTERED").
				InsertDataOption("INSERT_ROWS").
				Context(callCtx).Do()
			return err
		})
	} else {
		n := RowNumber(rowIndex)
		err = c.withRetry(ctx, func(callCtx context.Context) error {
			_, err := c.service.Spreadsheets.Values.Update(
				c.spreadsheetID,
				c.rangeRef(fmt.Sprintf("A%d:%s%d", n, lastColumn, n)),
				payload,
			).ValueInputOption("USER_ENTERED").
				Context(callCtx).Do()
			return err
		})
	}
	if err != nil {
		return fmt.Errorf("%w: %v", directory.ErrWrite, err)
	}
	return nil
}

// withRetry runs call with a per-attempt timeout, backing off exponentially
// on Sheets API rate-limit responses.
func (c *Client) withRetry(ctx context.Context, call func(context.Context) error) error {
	var err error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)
		err = call(callCtx)
		cancel()
		if err == nil {
			return nil
		}
		if !isRateLimited(err) {
			return err
		}

		backoff := backoffFor(attempt)
		slog.Warn("sheets API rate limited, backing off",
			"attempt", attempt+1,
			"backoff", backoff,
		)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("after %d attempts: %w", c.maxRetries, err)
}

const maxBackoff = 60 * time.Second

func backoffFor(attempt int) time.Duration {
	d := time.Second << uint(attempt)
	if d > maxBackoff || d <= 0 {
		return maxBackoff
	}
	return d
}

// isRateLimited reports whether err is a Sheets API quota response worth
// retrying. 403 is included because the API signals some quota exhaustion
// with it.
func isRateLimited(err error) bool {
	if gErr, ok := err.(*googleapi.Error); ok {
		return gErr.Code == 429 || gErr.Code == 403
	}
	return false
}

// RowNumber maps a zero-based data row index to its 1-based physical sheet
// row. Row 1 is the header, so data row i lives at sheet row i+2.
func RowNumber(rowIndex int) int {
	return rowIndex + 2
}

// rangeRef prefixes an A1 range with the worksheet title when one is
// configured. Without a prefix the API targets the first worksheet.
func (c *Client) rangeRef(a1 string) string {
	if c.sheetName == "" {
		return a1
	}
	return c.sheetName + "!" + a1
}

// stringRow converts an API row of interface{} cells to strings.
func stringRow(raw []interface{}) []string {
	row := make([]string, len(raw))
	for i, v := range raw {
		if s, ok := v.(string); ok {
			row[i] = s
		} else {
			row[i] = fmt.Sprint(v)
		}
	}
	return row
}

// cellRow converts a string row to the interface{} cells the API wants.
func cellRow(values []string) []interface{} {
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return row
}
