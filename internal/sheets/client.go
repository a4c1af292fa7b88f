// Package sheets reads tabular site data from Google Sheets with an API key.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/msomdec/gallery-admin/internal/domain"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// Config holds the API key and an optional endpoint override.
type Config struct {
	APIKey   string
	Endpoint string // e.g. a test server URL; empty uses the public API
}

// Client reads sheet values and spreadsheet metadata.
type Client struct {
	svc *sheetsapi.Service
}

// New creates a Client. An empty API key returns domain.ErrNotConfigured.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: sheets api key", domain.ErrNotConfigured)
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		if !strings.HasSuffix(endpoint, "/") {
			endpoint += "/"
		}
		opts = append(opts, option.WithEndpoint(endpoint))
	}

	svc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// Values returns the data rows of a range as strings. The header row and
// rows whose first cell is empty are dropped.
func (c *Client) Values(ctx context.Context, spreadsheetID, rng string) ([][]string, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, translate(err, "read values "+rng)
	}
	return DataRows(resp.Values), nil
}

// SheetTitles returns the titles of every sheet in the spreadsheet, in tab order.
func (c *Client) SheetTitles(ctx context.Context, spreadsheetID string) ([]string, error) {
	resp, err := c.svc.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return nil, translate(err, "read spreadsheet")
	}
	titles := make([]string, 0, len(resp.Sheets))
	for _, s := range resp.Sheets {
		if s.Properties != nil && s.Properties.Title != "" {
			titles = append(titles, s.Properties.Title)
		}
	}
	return titles, nil
}

// DataRows converts raw cell values to strings, skipping the header row
// and any row whose first cell is blank.
func DataRows(values [][]any) [][]string {
	if len(values) < 2 {
		return nil
	}
	rows := make([][]string, 0, len(values)-1)
	for _, raw := range values[1:] {
		row := make([]string, len(raw))
		for i, v := range raw {
			row[i] = strings.TrimSpace(fmt.Sprint(v))
		}
		if len(row) == 0 || row[0] == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

func translate(err error, op string) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusNotFound:
			return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
		case http.StatusForbidden, http.StatusUnauthorized:
			return fmt.Errorf("%s: %w", op, domain.ErrUnauthorized)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
