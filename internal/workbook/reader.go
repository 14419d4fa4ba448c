// Package workbook reads masterdata grids from a local xlsx export of the
// masterdata spreadsheet.
package workbook

import (
	"context"
	"fmt"

	"gdxsv_chatops/internal/masterdata"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

// Source reads every sheet of an xlsx file.
type Source struct {
	Path string
}

// Grids returns one grid per sheet, in workbook order.
func (s Source) Grids(ctx context.Context) ([]masterdata.RawGrid, error) {
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	var grids []masterdata.RawGrid
	for _, name := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
		}

		grid := make(masterdata.RawGrid, len(rows))
		for i, row := range rows {
			grid[i] = masterdata.RawRow(row)
		}
		grids = append(grids, grid)

		log.Debug().
			Str("sheet", name).
			Int("rows", len(rows)).
			Msg("Read workbook sheet")
	}
	return grids, nil
}
