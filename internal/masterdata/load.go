package masterdata

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// Column is one row of SQLite's PRAGMA table_info.
type Column struct {
	CID     int            `db:"cid"`
	Name    string         `db:"name"`
	Type    string         `db:"type"`
	NotNull int            `db:"notnull"`
	Default sql.NullString `db:"dflt_value"`
	PK      int            `db:"pk"`
}

// IsInteger reports whether the declared type contains INTEGER.
func (c Column) IsInteger() bool {
	return strings.Contains(strings.ToUpper(c.Type), "INTEGER")
}

// Loader replaces the rows of destination tables with extracted tables.
//
// Columns are bound by position: the header of an extracted table must list
// the destination columns in their declared order. The Loader does not manage
// transactions; callers pass a *sqlx.Tx to make a multi-table load atomic.
type Loader struct {
	// TablePrefix is prepended to every extracted table name to form the
	// destination table name.
	TablePrefix string
}

// NewLoader creates a Loader writing to tables named prefix+name.
func NewLoader(prefix string) *Loader {
	return &Loader{TablePrefix: prefix}
}

// Destination returns the destination table for an extracted table name.
func (l *Loader) Destination(name string) string {
	return l.TablePrefix + name
}

// Load loads every table in name order and stops at the first failure.
func (l *Loader) Load(ctx context.Context, db sqlx.ExtContext, tables Tables) ([]TableResult, error) {
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]TableResult, 0, len(names))
	for _, name := range names {
		n, err := l.LoadTable(ctx, db, name, tables[name])
		if err != nil {
			return results, err
		}
		results = append(results, TableResult{Table: l.Destination(name), Rows: n})
	}
	return results, nil
}

// LoadTable deletes all rows of the destination table and inserts the data
// rows of table. It returns the number of inserted rows. Values are coerced
// before anything is written, so a conversion failure leaves the table as is.
func (l *Loader) LoadTable(ctx context.Context, db sqlx.ExtContext, name string, table Table) (int, error) {
	dest := l.Destination(name)
	if len(table) == 0 {
		return 0, newLoadError(dest, ErrSchemaMismatch, fmt.Errorf("table has no header row"))
	}

	columns, err := TableColumns(ctx, db, dest)
	if err != nil {
		return 0, err
	}
	header := table.Header()
	if len(header) != len(columns) {
		return 0, newLoadError(dest, ErrSchemaMismatch,
			fmt.Errorf("header has %d columns, table has %d", len(header), len(columns)))
	}

	ints := make(map[string]bool)
	for _, c := range columns {
		if c.IsInteger() {
			ints[c.Name] = true
		}
	}

	rows, err := coerceRows(dest, header, table.Rows(), ints)
	if err != nil {
		return 0, err
	}

	if _, err := db.ExecContext(ctx, "DELETE FROM "+quoteIdent(dest)); err != nil {
		return 0, newLoadError(dest, ErrStoreIO, err)
	}

	insert := fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoteIdent(dest), placeholders(len(header)))
	for i, args := range rows {
		if _, err := db.ExecContext(ctx, insert, args...); err != nil {
			return 0, &LoadError{Table: dest, Row: i + 1, Kind: ErrStoreIO, Err: err}
		}
	}

	log.Debug().
		Str("table", dest).
		Int("rows", len(rows)).
		Int("integer_columns", len(ints)).
		Msg("Loaded table")
	return len(rows), nil
}

// TableColumns returns the declared columns of table. A table without
// columns does not exist and yields ErrSchemaMismatch.
func TableColumns(ctx context.Context, db sqlx.QueryerContext, table string) ([]Column, error) {
	var columns []Column
	if err := sqlx.SelectContext(ctx, db, &columns, "PRAGMA table_info("+quoteIdent(table)+")"); err != nil {
		return nil, newLoadError(table, ErrStoreIO, err)
	}
	if len(columns) == 0 {
		return nil, newLoadError(table, ErrSchemaMismatch, fmt.Errorf("no such table"))
	}
	return columns, nil
}

// coerceRows converts the cells of integer columns. Empty cells become 0.
func coerceRows(table string, header []string, data [][]string, ints map[string]bool) ([][]any, error) {
	rows := make([][]any, len(data))
	for i, row := range data {
		if len(row) != len(header) {
			return nil, &LoadError{
				Table: table,
				Row:   i + 1,
				Kind:  ErrSchemaMismatch,
				Err:   fmt.Errorf("row has %d cells, header has %d", len(row), len(header)),
			}
		}
		args := make([]any, len(row))
		for j, cell := range row {
			if !ints[header[j]] {
				args[j] = cell
				continue
			}
			v, err := parseInteger(cell)
			if err != nil {
				return nil, &LoadError{Table: table, Row: i + 1, Column: header[j], Kind: ErrValueConversion, Err: err}
			}
			args[j] = v
		}
		rows[i] = args
	}
	return rows, nil
}

func parseInteger(cell string) (int64, error) {
	if cell == "" {
		return 0, nil
	}
	return strconv.ParseInt(strings.TrimSpace(cell), 10, 64)
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
