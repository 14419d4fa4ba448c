package masterdata

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// Extractor finds marker-delimited tables in spreadsheet grids.
//
// A marker cell ("@m_<name>") names a table. The row below the marker is the
// header; its first empty cell at or after the marker column fixes the right
// edge of the table. Data rows follow until the first row that is blank within
// the table's columns.
//
// In the default mode a row with several markers uses the rightmost one and a
// repeated table name replaces the earlier table. Strict turns both cases into
// ErrExtractionAmbiguity.
type Extractor struct {
	Strict bool
}

// NormalizeTables extracts the tables of all grids with the default Extractor.
func NormalizeTables(grids []RawGrid) Tables {
	tables, _ := Extractor{}.Extract(grids...)
	return tables
}

// Extract returns the union of the tables found in grids. Later grids win on
// name collisions. The grids are not modified.
func (e Extractor) Extract(grids ...RawGrid) (Tables, error) {
	tables := make(Tables)
	for gi, grid := range grids {
		if err := e.extractGrid(gi, grid, tables); err != nil {
			return nil, err
		}
	}
	log.Debug().
		Int("grids", len(grids)).
		Int("tables", len(tables)).
		Msg("Extracted tables")
	return tables, nil
}

func (e Extractor) extractGrid(gridIndex int, grid RawGrid, tables Tables) error {
	var (
		reading     bool
		left, right int
		name        string
	)

	for i := 0; i < len(grid); {
		row := grid[i]

		if !reading {
			var markers int
			left, markers = findMarker(row)
			if left < 0 {
				i++
				continue
			}
			if markers > 1 {
				if e.Strict {
					return fmt.Errorf("%w: grid %d row %d has %d markers", ErrExtractionAmbiguity, gridIndex, i+1, markers)
				}
				log.Warn().
					Int("grid", gridIndex).
					Int("row", i+1).
					Int("markers", markers).
					Msg("Several table markers in one row, using the rightmost")
			}

			name = strings.TrimSpace(strings.TrimPrefix(row[left], MarkerPrefix))
			i++
			if i >= len(grid) {
				log.Debug().Str("table", name).Msg("Marker on the last row, no table")
				continue
			}
			if name == "" {
				log.Warn().Int("grid", gridIndex).Int("row", i).Msg("Table marker without a name, skipping")
				continue
			}

			right = headerBoundary(grid[i], left)
			if right <= left {
				log.Warn().Str("table", name).Int("row", i+1).Msg("Table header is empty, skipping")
				continue
			}

			if _, dup := tables[name]; dup {
				if e.Strict {
					return fmt.Errorf("%w: table %q declared more than once", ErrExtractionAmbiguity, name)
				}
				log.Warn().Str("table", name).Msg("Table declared more than once, replacing earlier rows")
			}
			tables[name] = Table{}
			reading = true
			continue
		}

		cells := sliceRow(row, left, right)
		if isBlank(cells) {
			// the blank row may itself carry the next marker
			reading = false
			continue
		}

		table := tables[name]
		if len(table) > 0 {
			for len(cells) < len(table[0]) {
				cells = append(cells, "")
			}
		}
		tables[name] = append(table, cells)
		i++
	}
	return nil
}

// findMarker returns the column of the rightmost marker cell in row, or -1,
// together with the number of marker cells.
func findMarker(row RawRow) (int, int) {
	left, count := -1, 0
	for j, cell := range row {
		if strings.HasPrefix(cell, MarkerPrefix) {
			left = j
			count++
		}
	}
	return left, count
}

// headerBoundary returns the exclusive right edge of a table whose header is
// row and whose left edge is left.
func headerBoundary(row RawRow, left int) int {
	for j := left; j < len(row); j++ {
		if row[j] == "" {
			return j
		}
	}
	return len(row)
}

// sliceRow copies row[left:right], clipped to the row's length.
func sliceRow(row RawRow, left, right int) []string {
	if right > len(row) {
		right = len(row)
	}
	if left >= right {
		return []string{}
	}
	cells := make([]string, right-left)
	copy(cells, row[left:right])
	return cells
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
