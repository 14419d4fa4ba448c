package sheets

import "errors"

// DefaultCellRange is read from every tab.
const DefaultCellRange = "A1:Z1000"

// Config selects the masterdata spreadsheet.
type Config struct {
	CredentialsFile string
	SpreadsheetID   string
	CellRange       string
	Tabs            []string // empty means every tab
}

func (c Config) Validate() error {
	var errs []error
	if c.CredentialsFile == "" {
		errs = append(errs, errors.New("sheets credentials file is required"))
	}
	if c.SpreadsheetID == "" {
		errs = append(errs, errors.New("spreadsheet id is required"))
	}
	return errors.Join(errs...)
}

func (c Config) cellRange() string {
	if c.CellRange == "" {
		return DefaultCellRange
	}
	return c.CellRange
}
