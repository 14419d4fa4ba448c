package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gdxsv_chatops/internal/masterdata"
	"gdxsv_chatops/internal/retry"

	"github.com/rs/zerolog/log"
	"google.golang.org/api/googleapi"
)

// Source downloads every tab of the masterdata spreadsheet as raw grids.
type Source struct {
	client *Client
	config Config
	retry  retry.Config
}

func NewSource(client *Client, config Config, retryConfig retry.Config) *Source {
	return &Source{client: client, config: config, retry: retryConfig}
}

// Grids returns one grid per tab, in tab order.
func (s *Source) Grids(ctx context.Context) ([]masterdata.RawGrid, error) {
	log.Debug().Str("spreadsheet_id", s.config.SpreadsheetID).Msg("Downloading masterdata")

	titles := s.config.Tabs
	if len(titles) == 0 {
		var err error
		titles, err = retry.WithRetry(ctx, s.retry, func(ctx context.Context) ([]string, error) {
			titles, err := s.client.SheetTitles(ctx, s.config.SpreadsheetID)
			return titles, permanentOnClientError(err)
		})
		if err != nil {
			return nil, err
		}
	}
	if len(titles) == 0 {
		log.Warn().Msg("Spreadsheet has no tabs")
		return nil, nil
	}

	ranges := make([]string, len(titles))
	for i, title := range titles {
		ranges[i] = A1Range(title, s.config.cellRange())
	}

	values, err := retry.WithRetry(ctx, s.retry, func(ctx context.Context) ([][][]interface{}, error) {
		values, err := s.client.BatchRead(ctx, s.config.SpreadsheetID, ranges)
		return values, permanentOnClientError(err)
	})
	if err != nil {
		return nil, err
	}
	if len(values) != len(ranges) {
		return nil, fmt.Errorf("requested %d ranges, got %d", len(ranges), len(values))
	}

	grids := make([]masterdata.RawGrid, len(values))
	for i, v := range values {
		grids[i] = ToGrid(v)
		log.Debug().
			Str("tab", titles[i]).
			Int("rows", len(grids[i])).
			Msg("Retrieved tab")
	}
	return grids, nil
}

// permanentOnClientError stops retries for 4xx API errors other than 429.
func permanentOnClientError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) &&
		apiErr.Code >= 400 && apiErr.Code < 500 &&
		apiErr.Code != http.StatusTooManyRequests {
		return retry.Permanent(err)
	}
	return err
}

// A1Range builds "'<title>'!<cells>", escaping quotes in the title.
func A1Range(title, cells string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'!" + cells
}

// ToGrid stringifies the cell values returned by the Sheets API.
func ToGrid(values [][]interface{}) masterdata.RawGrid {
	grid := make(masterdata.RawGrid, len(values))
	for i, row := range values {
		cells := make(masterdata.RawRow, len(row))
		for j := range row {
			cells[j] = extractStringField(row, j)
		}
		grid[i] = cells
	}
	return grid
}

// extractStringField safely extracts a string field from a row at the given index
func extractStringField(row []interface{}, index int) string {
	if len(row) > index && row[index] != nil {
		return fmt.Sprintf("%v", row[index])
	}
	return ""
}
